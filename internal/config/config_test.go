package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envOf(m map[string]string) func(string, string) string {
	return func(k, d string) string {
		if v, ok := m[k]; ok && v != "" {
			return v
		}
		return d
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse(envOf(map[string]string{"COTYPE_API_KEY": "ct"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.AppPort != "8080" || c.DefaultVariant != "openai" {
		t.Errorf("unexpected app defaults: %+v", c)
	}
	if c.Cotype.Model != "cotype_pro_16k_1.1" {
		t.Errorf("expected cotype model, got %q", c.Cotype.Model)
	}
	if c.Cotype.Endpoint != "https://demo5-fundres.dev.mts.ai/v1/chat/completions" {
		t.Errorf("unexpected cotype endpoint %q", c.Cotype.Endpoint)
	}
	if c.Cotype.Temperature != 0.2 || c.Cotype.MaxTokens != 1500 {
		t.Errorf("expected 0.2/1500, got %v/%d", c.Cotype.Temperature, c.Cotype.MaxTokens)
	}
	if c.Cotype.Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", c.Cotype.Timeout)
	}
	if c.OpenAI.Model != "gpt-4-turbo-preview" || c.Perplexity.Model != "pplx-70b-online" {
		t.Errorf("unexpected models: %q %q", c.OpenAI.Model, c.Perplexity.Model)
	}
}

func TestParsePerplexityFallsBackToOpenAIKey(t *testing.T) {
	c, err := Parse(envOf(map[string]string{"OPENAI_API_KEY": "sk-1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Perplexity.Key != "sk-1" {
		t.Errorf("expected perplexity to reuse OpenAI key, got %q", c.Perplexity.Key)
	}

	c, err = Parse(envOf(map[string]string{"OPENAI_API_KEY": "sk-1", "PERPLEXITY_API_KEY": "pplx"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Perplexity.Key != "pplx" {
		t.Errorf("expected explicit perplexity key, got %q", c.Perplexity.Key)
	}
}

func TestParseRequiresSomeVendor(t *testing.T) {
	_, err := Parse(envOf(nil))
	if !errors.Is(err, ErrNoVendor) {
		t.Fatalf("expected ErrNoVendor, got %v", err)
	}
}

func TestParseRejectsInvalidProxy(t *testing.T) {
	_, err := Parse(envOf(map[string]string{
		"OPENAI_API_KEY":   "sk-1",
		"OPENAI_PROXY_URL": "not a url",
	}))
	if err == nil {
		t.Fatal("expected error for invalid proxy url")
	}
}

func TestParseBadNumbersKeepDefaults(t *testing.T) {
	c, err := Parse(envOf(map[string]string{
		"COTYPE_API_KEY":   "ct",
		"MCQ_TEMPERATURE":  "warm",
		"MCQ_MAX_TOKENS":   "many",
		"PROVIDER_TIMEOUT": "-5s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Cotype.Temperature != 0.2 || c.Cotype.MaxTokens != 1500 || c.Cotype.Timeout != 60*time.Second {
		t.Errorf("expected defaults, got %+v", c.Cotype)
	}
}

func TestParamsFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	yml := `cotype:
  model: cotype_lite
  temperature: 0.5
  max_tokens: 800
perplexity:
  endpoint: http://localhost:9999/chat/completions
  timeout: 15s
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Parse(envOf(map[string]string{"COTYPE_API_KEY": "ct", "MCQ_PARAMS_FILE": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Cotype.Model != "cotype_lite" || c.Cotype.Temperature != 0.5 || c.Cotype.MaxTokens != 800 {
		t.Errorf("overlay not applied: %+v", c.Cotype)
	}
	if c.Perplexity.Endpoint != "http://localhost:9999/chat/completions" || c.Perplexity.Timeout != 15*time.Second {
		t.Errorf("overlay not applied: %+v", c.Perplexity)
	}
	if c.OpenAI.Model != "gpt-4-turbo-preview" {
		t.Errorf("openai should be untouched, got %q", c.OpenAI.Model)
	}
}

func TestParamsFileMissing(t *testing.T) {
	_, err := Parse(envOf(map[string]string{
		"COTYPE_API_KEY":  "ct",
		"MCQ_PARAMS_FILE": filepath.Join(t.TempDir(), "nope.yaml"),
	}))
	if err == nil {
		t.Fatal("expected error for missing params file")
	}
}

func TestMaxTimeout(t *testing.T) {
	c := &Config{
		OpenAI:     Vendor{Timeout: 60 * time.Second},
		Cotype:     Vendor{Timeout: 120 * time.Second},
		Perplexity: Vendor{Timeout: 30 * time.Second},
	}
	if got := c.MaxTimeout(); got != 120*time.Second {
		t.Errorf("expected 120s, got %v", got)
	}
}
