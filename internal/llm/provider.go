package llm

import "context"

// Provider is the abstraction over hosted chat-completion APIs.
type Provider interface {
	// Generate sends one chat request and returns the model's text.
	// Extracting structured data from that text is the caller's job.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one chat completion.
type Request struct {
	// System is the system message.
	System string

	// Messages follow the system message in order.
	Messages []Message

	// JSON asks the provider for a JSON object when it has a native switch
	// for it (OpenAI json_object, Gemini response MIME type). Providers
	// without one rely on the prompt.
	JSON bool

	// Schema, when set, requests native structured output. Tutor prompts
	// do not use it; see ValidateJSON for post-extraction checks.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is a single chat turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	// Name identifies the schema and keys the compile cache.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model's reply.
type Response struct {
	// Text is choices[0].message.content or the provider's equivalent.
	Text string

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// User is shorthand for a single-user-message conversation.
func User(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}
