// Package llm defines the text generation boundary.
//
// The memory core treats generation as an opaque function from prompt
// to text; it is used only to distill memories into reflections.
package llm

import "context"

// Provider generates text from prompts or conversation history.
type Provider interface {
	// Generate generates text from a single prompt.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// GenerateWithMessages generates text from a conversation history.
	GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error)

	// Close releases provider resources.
	Close() error
}

// Message is a single message in a conversation.
type Message struct {
	// Role is "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// GenerateOptions contains options for text generation.
type GenerateOptions struct {
	// Temperature controls randomness (0.0-2.0).
	Temperature float64

	// MaxTokens limits the response length.
	MaxTokens int

	// TopP controls nucleus sampling (0.0-1.0).
	TopP float64

	// Stop contains sequences that end generation.
	Stop []string
}

// GenerateOption is a function type for configuring generation options.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = temperature
	}
}

// WithMaxTokens limits the maximum number of tokens in the response.
func WithMaxTokens(maxTokens int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxTokens = maxTokens
	}
}

// WithTopP sets the nucleus sampling parameter.
func WithTopP(topP float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.TopP = topP
	}
}

// WithStop sets stop sequences that end generation.
func WithStop(stop []string) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Stop = stop
	}
}

// ApplyGenerateOptions resolves a slice of options against defaults:
// Temperature 0.7, MaxTokens 500, TopP 0.9.
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   500,
		TopP:        0.9,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
