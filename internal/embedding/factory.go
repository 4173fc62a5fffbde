package embedding

import (
	"context"
	"fmt"
	"time"
)

// Provider identifies a Vectorizer backend.
type Provider string

// Supported providers.
const (
	ProviderONNX   Provider = "onnx"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderMock   Provider = "mock"
)

// ProviderOptions carries backend settings. Fields irrelevant to the chosen
// provider are ignored.
type ProviderOptions struct {
	ModelPath  string        // onnx: path to the exported model file
	Model      string        // openai/gemini: remote model name
	Dimensions int           // embedding width, default 384
	MaxTokens  int           // onnx: tokenizer window
	APIKey     string        // openai/gemini: credential
	Timeout    time.Duration // openai/gemini: per-request timeout
}

// NewVectorizer constructs the Vectorizer for provider. An empty provider
// selects the mock backend.
func NewVectorizer(ctx context.Context, provider Provider, opts ProviderOptions) (Vectorizer, error) {
	switch provider {
	case ProviderONNX:
		v, err := NewONNXVectorizer(opts.ModelPath, opts.Dimensions, opts.MaxTokens)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ProviderOpenAI:
		v, err := NewOpenAIVectorizer(opts.APIKey, opts.Model, opts.Dimensions, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ProviderGemini:
		v, err := NewGeminiVectorizer(ctx, opts.APIKey, opts.Model, opts.Dimensions, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ProviderMock, "":
		return NewMockVectorizer(opts.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}
