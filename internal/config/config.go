package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vendor holds everything needed to reach one chat-completion API.
type Vendor struct {
	Key         string
	Endpoint    string
	ProxyURL    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type Config struct {
	AppEnv, AppPort string
	CORSOrigins     []string
	DefaultVariant  string

	OpenAI     Vendor
	Cotype     Vendor
	Perplexity Vendor

	ParamsFile string
}

// MaxTimeout is the longest outbound timeout across all vendors.
func (c *Config) MaxTimeout() time.Duration {
	m := c.OpenAI.Timeout
	for _, v := range []Vendor{c.Cotype, c.Perplexity} {
		if v.Timeout > m {
			m = v.Timeout
		}
	}
	return m
}

var ErrNoVendor = errors.New("config: no vendor credential configured")

// Load reads .env and the process environment once. Any error is fatal.
func Load() *Config {
	_ = godotenv.Load()

	c, err := Parse(GetEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

// Parse builds a Config from get, then applies the optional params file.
func Parse(get func(string, string) string) (*Config, error) {
	temperature := parseFloat(get("MCQ_TEMPERATURE", "0.2"), 0.2)
	maxTokens := atoi(get("MCQ_MAX_TOKENS", "1500"), 1500)
	timeout := duration(get("PROVIDER_TIMEOUT", "60s"), 60*time.Second)

	openaiKey := get("OPENAI_API_KEY", "")

	c := &Config{
		AppEnv:         get("APP_ENV", "dev"),
		AppPort:        get("APP_PORT", "8080"),
		CORSOrigins:    split(get("CORS_ORIGINS", "")),
		DefaultVariant: get("DEFAULT_VARIANT", "openai"),
		OpenAI: Vendor{
			Key:         openaiKey,
			Endpoint:    get("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			ProxyURL:    get("OPENAI_PROXY_URL", ""),
			Model:       get("OPENAI_MODEL", "gpt-4-turbo-preview"),
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     timeout,
		},
		Cotype: Vendor{
			Key:         get("COTYPE_API_KEY", ""),
			Endpoint:    get("COTYPE_ENDPOINT", "https://demo5-fundres.dev.mts.ai/v1/chat/completions"),
			Model:       get("COTYPE_MODEL", "cotype_pro_16k_1.1"),
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     timeout,
		},
		Perplexity: Vendor{
			// the perplexity page has always been run with the OpenAI key
			Key:         get("PERPLEXITY_API_KEY", openaiKey),
			Endpoint:    get("PERPLEXITY_ENDPOINT", "https://api.perplexity.ai/chat/completions"),
			Model:       get("PERPLEXITY_MODEL", "pplx-70b-online"),
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     timeout,
		},
		ParamsFile: get("MCQ_PARAMS_FILE", ""),
	}

	if c.ParamsFile != "" {
		if err := applyParamsFile(c, c.ParamsFile); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.OpenAI.Key == "" && c.Cotype.Key == "" && c.Perplexity.Key == "" {
		return ErrNoVendor
	}
	if c.OpenAI.ProxyURL != "" {
		u, err := url.Parse(c.OpenAI.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: invalid OPENAI_PROXY_URL %q", c.OpenAI.ProxyURL)
		}
	}
	return nil
}

func GetEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}

func atoi(s string, d int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return i
}
func parseFloat(s string, d float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return d
	}
	return f
}
func duration(s string, d time.Duration) time.Duration {
	v, err := time.ParseDuration(s)
	if err != nil || v <= 0 {
		return d
	}
	return v
}
func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
