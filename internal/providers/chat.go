package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/emandor/mcq_mentor/internal/config"
	"github.com/emandor/mcq_mentor/internal/telemetry"
)

// Chat talks to a bare OpenAI-style /chat/completions endpoint with a
// bearer key. Cotype and Perplexity are both served by it.
type Chat struct {
	vendor   SourceName
	endpoint string
	key      string
	params   Params
	prompt   Prompt
	client   *http.Client
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewCotype(v config.Vendor) (*Chat, error) {
	return newChat(SourceCotype, v, CotypePrompt)
}

func NewPerplexity(v config.Vendor) (*Chat, error) {
	return newChat(SourcePerplexity, v, MentorPrompt)
}

func newChat(vendor SourceName, v config.Vendor, p Prompt) (*Chat, error) {
	if v.Key == "" {
		return nil, ErrConfigurationMissing
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.Proxy = nil
	transport := &bearer{
		src:  oauth2.StaticTokenSource(&oauth2.Token{AccessToken: v.Key, TokenType: "Bearer"}),
		base: base,
	}
	return &Chat{
		vendor:   vendor,
		endpoint: v.Endpoint,
		key:      v.Key,
		params:   Params{Model: v.Model, Temperature: v.Temperature, MaxTokens: v.MaxTokens},
		prompt:   p,
		client:   &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

func (c *Chat) Name() SourceName { return c.vendor }

func (c *Chat) Generate(ctx context.Context, topic string) (string, error) {
	payload := chatRequest{
		Model:       c.params.Model,
		Messages:    c.prompt.Messages(topic),
		Temperature: c.params.Temperature,
		MaxTokens:   c.params.MaxTokens,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	name := strings.ToLower(string(c.vendor))
	log := telemetry.L().With().Str("provider", string(c.vendor)).Logger()
	log.Debug().RawJSON("payload", telemetry.Redact(b, c.key)).Msg(name + "_request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &TransportError{Vendor: c.vendor, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg(name + "_request_failed")
		return "", &TransportError{Vendor: c.vendor, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg(name + "_read_failed")
		return "", &TransportError{Vendor: c.vendor, Err: err}
	}
	body := telemetry.Redact(raw, c.key)
	log.Debug().
		Int("status_code", resp.StatusCode).
		Int("latency_ms", int(time.Since(t0)/time.Millisecond)).
		Bytes("body", body).
		Msg(name + "_response")

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status_code", resp.StatusCode).Bytes("body", body).Msg(name + "_http_error")
		return "", &RequestFailedError{Vendor: c.vendor, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", malformed(c.vendor, "body is not json")
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", malformed(c.vendor, "no choices[0].message.content")
	}
	return *out.Choices[0].Message.Content, nil
}

// bearer sets Authorization on a clone of each request so the key never
// passes through request-building or logging code. Cancellation goes
// through the request context only.
type bearer struct {
	src  oauth2.TokenSource
	base http.RoundTripper
}

func (b *bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := b.src.Token()
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	r := req.Clone(req.Context())
	tok.SetAuthHeader(r)
	return b.base.RoundTrip(r)
}
