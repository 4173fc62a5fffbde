package embedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-embedding-001"

// GeminiVectorizer calls the Gemini embeddings API through the genai SDK.
type GeminiVectorizer struct {
	client  *genai.Client
	model   string
	dims    int
	timeout time.Duration
}

// NewGeminiVectorizer creates a Gemini-backed vectorizer.
func NewGeminiVectorizer(ctx context.Context, apiKey, model string, dimensions int, timeout time.Duration) (*GeminiVectorizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiVectorizer{
		client:  client,
		model:   model,
		dims:    dimensions,
		timeout: timeout,
	}, nil
}

// Vectorize embeds all texts in a single API request.
func (v *GeminiVectorizer) Vectorize(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{
				{Text: text},
			},
		}
	}
	dims := int32(v.dims)
	result, err := v.client.Models.EmbedContent(ctx, v.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings request failed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini returned empty embedding at index %d", i)
		}
		vec := make([]float32, len(emb.Values))
		copy(vec, emb.Values)
		// Normalize to unit length for cosine similarity.
		NormalizeL2(vec)
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the embedding width.
func (v *GeminiVectorizer) Dimensions() int {
	return v.dims
}

// Close is a no-op; the underlying client holds no persistent connections.
func (v *GeminiVectorizer) Close() error {
	return nil
}
