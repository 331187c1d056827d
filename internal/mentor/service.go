package mentor

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/emandor/mcq_mentor/internal/format"
	"github.com/emandor/mcq_mentor/internal/providers"
	"github.com/emandor/mcq_mentor/internal/telemetry"
)

var ErrEmptyTopic = errors.New("mentor: empty topic")

// FailureMessage is the only thing a user sees when generation fails.
const FailureMessage = "Не удалось сгенерировать вопросы. Попробуйте ещё раз."

type Result struct {
	Variant Variant             `json:"variant"`
	Topic   string              `json:"topic"`
	Raw     string              `json:"raw"`
	Lines   []format.TaggedLine `json:"lines,omitempty"`
	HTML    template.HTML       `json:"html"`
}

type Service struct {
	clients map[providers.SourceName]providers.Client
}

func NewService(clients []providers.Client) *Service {
	m := make(map[providers.SourceName]providers.Client, len(clients))
	for _, c := range clients {
		m[c.Name()] = c
	}
	return &Service{clients: m}
}

// Available reports whether the variant's vendor has a client.
func (s *Service) Available(v Variant) bool {
	_, ok := s.clients[v.Vendor]
	return ok
}

// Generate makes exactly one vendor call for topic and formats the answer
// for v. The topic goes to the vendor as typed; only a blank one is
// refused. Nothing is kept after it returns.
func (s *Service) Generate(ctx context.Context, v Variant, topic string) (Result, error) {
	if strings.TrimSpace(topic) == "" {
		return Result{}, ErrEmptyTopic
	}
	cli, ok := s.clients[v.Vendor]
	if !ok {
		return Result{}, providers.ErrConfigurationMissing
	}

	log := telemetry.L().With().Str("variant", v.Slug).Str("provider", string(cli.Name())).Logger()
	log.Info().Int("topic_len", len(topic)).Msg("mcq_generate")

	t0 := time.Now()
	raw, err := cli.Generate(ctx, topic)
	if err != nil {
		log.Error().Err(err).Str("kind", providers.Kind(err)).Msg("mcq_generate_failed")
		return Result{}, err
	}

	res := Result{Variant: v, Topic: topic, Raw: raw}
	if v.Styled {
		res.Lines = format.Classify(raw)
		res.HTML = format.RenderHTML(res.Lines)
	} else {
		html, err := format.Markdown(raw)
		if err != nil {
			return Result{}, err
		}
		res.HTML = html
	}
	log.Info().
		Int("len", len(raw)).
		Int("lines", len(res.Lines)).
		Int("latency_ms", int(time.Since(t0)/time.Millisecond)).
		Msg("mcq_generated")
	return res, nil
}

// ErrorCode maps a Generate error to a stable code and HTTP status.
func ErrorCode(err error) (string, int) {
	if errors.Is(err, ErrEmptyTopic) {
		return "empty_topic", 400
	}
	switch k := providers.Kind(err); k {
	case providers.KindConfigurationMissing:
		return k, 503
	case providers.KindTransport, providers.KindRequestFailed, providers.KindMalformedResponse:
		return k, 502
	default:
		return "internal_error", 500
	}
}
