package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// applyParamsFile overlays per-vendor request parameters from a YAML file:
//
//	cotype:
//	  model: cotype_pro_16k_1.1
//	  temperature: 0.2
//	  max_tokens: 1500
//	  endpoint: https://...
func applyParamsFile(c *Config, path string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("config: params file %s: %w", path, err)
	}
	overlay(k, "openai", &c.OpenAI)
	overlay(k, "cotype", &c.Cotype)
	overlay(k, "perplexity", &c.Perplexity)
	return nil
}

func overlay(k *koanf.Koanf, prefix string, v *Vendor) {
	if k.Exists(prefix + ".model") {
		v.Model = k.String(prefix + ".model")
	}
	if k.Exists(prefix + ".temperature") {
		v.Temperature = k.Float64(prefix + ".temperature")
	}
	if k.Exists(prefix + ".max_tokens") {
		v.MaxTokens = k.Int(prefix + ".max_tokens")
	}
	if k.Exists(prefix + ".endpoint") {
		v.Endpoint = k.String(prefix + ".endpoint")
	}
	if k.Exists(prefix + ".timeout") {
		if d := k.Duration(prefix + ".timeout"); d > 0 {
			v.Timeout = d
		}
	}
}
