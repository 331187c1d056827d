package providers

import (
	"errors"

	"github.com/emandor/mcq_mentor/internal/config"
	"github.com/emandor/mcq_mentor/internal/telemetry"
)

// Build returns one client per vendor that has a credential. Vendors
// without one are skipped; other construction errors are returned.
func Build(cfg *config.Config) ([]Client, error) {
	log := telemetry.L()
	var list []Client

	oa, err := NewOpenAI(cfg.OpenAI)
	switch {
	case err == nil:
		list = append(list, oa)
	case errors.Is(err, ErrConfigurationMissing):
		log.Warn().Str("provider", string(SourceOpenAI)).Msg("provider_disabled_no_key")
	default:
		return nil, err
	}

	if ct, err := NewCotype(cfg.Cotype); err == nil {
		list = append(list, ct)
	} else {
		log.Warn().Str("provider", string(SourceCotype)).Msg("provider_disabled_no_key")
	}

	if px, err := NewPerplexity(cfg.Perplexity); err == nil {
		list = append(list, px)
	} else {
		log.Warn().Str("provider", string(SourcePerplexity)).Msg("provider_disabled_no_key")
	}
	return list, nil
}
