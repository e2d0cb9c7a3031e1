// Package ai contains the text-generation providers used for narrative insights.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AIProvider generates a completion for a conversation
type AIProvider interface {
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Name() string
}

// Message is one conversation turn
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral completion request
type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ChatResponse is a provider-neutral completion
type ChatResponse struct {
	Content    string
	TokensUsed int
	Provider   string
}

// ErrEmptyResponse is returned when a provider answers without any text
var ErrEmptyResponse = errors.New("empty response from AI provider")

// ProviderError describes a failed provider call
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether the call may succeed if repeated:
// transport failures, throttling and server errors.
func (e *ProviderError) IsRetryable() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, ErrEmptyResponse) && !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// splitSystem separates system turns from the rest of the conversation
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
