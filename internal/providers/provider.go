package providers

import (
	"context"
)

type SourceName string

const (
	SourceOpenAI     SourceName = "OPENAI"
	SourceCotype     SourceName = "COTYPE"
	SourcePerplexity SourceName = "PERPLEXITY"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Params are fixed per vendor for the lifetime of the process.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client turns a topic into one chat-completion call and returns the
// answer text unmodified. Exactly one attempt is made per call.
type Client interface {
	Name() SourceName
	Generate(ctx context.Context, topic string) (string, error)
}
