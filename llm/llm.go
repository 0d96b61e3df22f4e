// Package llm defines the minimal chat-completion contract the classifier
// depends on; providers implement Client.
package llm

import (
	"context"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Result struct {
	Text     string
	Usage    Usage
	Duration time.Duration
}

type Request struct {
	Model     string
	Messages  []Message
	ForceJSON bool
}

type Client interface {
	Chat(ctx context.Context, req Request) (Result, error)
}
