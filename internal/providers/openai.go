package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/emandor/mcq_mentor/internal/config"
	"github.com/emandor/mcq_mentor/internal/telemetry"
)

type OpenAI struct {
	key    string
	params Params
	prompt Prompt
	client *openai.Client
}

// NewOpenAI builds the OpenAI client. An empty ProxyURL means a direct
// connection: no proxy, not even one taken from HTTP_PROXY.
func NewOpenAI(v config.Vendor) (*OpenAI, error) {
	if v.Key == "" {
		return nil, ErrConfigurationMissing
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if v.ProxyURL != "" {
		u, err := url.Parse(v.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("openai proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	cc := openai.DefaultConfig(v.Key)
	if v.Endpoint != "" {
		cc.BaseURL = v.Endpoint
	}
	cc.HTTPClient = &http.Client{Timeout: timeout, Transport: &recorder{base: transport, key: v.Key}}

	return &OpenAI{
		key:    v.Key,
		params: Params{Model: v.Model, Temperature: v.Temperature, MaxTokens: v.MaxTokens},
		prompt: MentorPrompt,
		client: openai.NewClientWithConfig(cc),
	}, nil
}

func (c *OpenAI) Name() SourceName { return SourceOpenAI }

func (c *OpenAI) Generate(ctx context.Context, topic string) (string, error) {
	msgs := c.prompt.Messages(topic)
	req := openai.ChatCompletionRequest{
		Model:       c.params.Model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(msgs)),
		Temperature: float32(c.params.Temperature),
		MaxTokens:   c.params.MaxTokens,
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	log := telemetry.L().With().Str("provider", string(SourceOpenAI)).Logger()
	if b, err := json.Marshal(req); err == nil {
		log.Debug().RawJSON("payload", telemetry.Redact(b, c.key)).Msg("openai_request")
	}

	ex := &exchange{}
	resp, err := c.client.CreateChatCompletion(context.WithValue(ctx, exchangeKey{}, ex), req)
	if err != nil {
		err = classify(err, ex)
		log.Error().Err(err).Str("kind", Kind(err)).Msg("openai_request_failed")
		return "", err
	}

	// go-openai turns a missing content field into "", so presence is
	// checked on the raw body
	if ex.body != nil {
		var out chatResponse
		if err := json.Unmarshal(ex.body, &out); err != nil {
			return "", malformed(SourceOpenAI, "body is not json")
		}
		if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
			return "", malformed(SourceOpenAI, "no choices[0].message.content")
		}
		return *out.Choices[0].Message.Content, nil
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", malformed(SourceOpenAI, "no choices[0].message.content")
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai errors onto the provider taxonomy. The body
// stored in RequestFailedError is the one the vendor sent.
func classify(err error, ex *exchange) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		body := string(ex.body)
		if ex.body == nil {
			b, _ := json.Marshal(openai.ErrorResponse{Error: apiErr})
			body = string(b)
		}
		return &RequestFailedError{Vendor: SourceOpenAI, StatusCode: apiErr.HTTPStatusCode, Body: body}
	case errors.As(err, &reqErr):
		body := string(reqErr.Body)
		if ex.body != nil {
			body = string(ex.body)
		}
		return &RequestFailedError{Vendor: SourceOpenAI, StatusCode: reqErr.HTTPStatusCode, Body: body}
	case errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &TransportError{Vendor: SourceOpenAI, Err: err}
	default:
		return fmt.Errorf("%w: openai %v", ErrMalformedResponse, err)
	}
}

type exchangeKey struct{}

// exchange holds the raw reply of one CreateChatCompletion call.
type exchange struct {
	body []byte
}

// recorder buffers every response body, logs it redacted and hands the
// bytes to the exchange found on the request context.
type recorder struct {
	base http.RoundTripper
	key  string
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	t0 := time.Now()
	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	if ex, ok := req.Context().Value(exchangeKey{}).(*exchange); ok {
		ex.body = raw
	}

	log := telemetry.L().With().Str("provider", string(SourceOpenAI)).Logger()
	body := telemetry.Redact(raw, r.key)
	log.Debug().
		Int("status_code", resp.StatusCode).
		Int("latency_ms", int(time.Since(t0)/time.Millisecond)).
		Bytes("body", body).
		Msg("openai_response")
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status_code", resp.StatusCode).Bytes("body", body).Msg("openai_http_error")
	}
	return resp, nil
}
