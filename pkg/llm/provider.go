// Package llm provides abstractions for LLM provider integration.
//
// Providers handle API communication with LLM services and nothing else.
// The navigation agent is responsible for prompt construction, decision
// parsing, and step orchestration; this separation keeps providers reusable
// and independently testable.
package llm

import "context"

// MessageRole identifies the author of a message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat message exchanged with the model.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// Usage reports token counts for a single completion, as returned by the
// provider's API. Zero values mean the provider did not report usage.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Provider defines the interface for LLM integrations.
type Provider interface {
	// Complete sends messages to the LLM and returns the assistant's
	// response along with token usage for the call. Blocking; honors ctx
	// cancellation and deadlines.
	Complete(ctx context.Context, messages []*Message) (*Message, Usage, error)

	// GetModel returns the model name being used.
	GetModel() string
}
