package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultRequestTimeout = 30 * time.Second

// OpenAIVectorizer calls OpenAI's embeddings API. The requested width is
// passed through the dimensions parameter so remote vectors line up with the
// local model width.
type OpenAIVectorizer struct {
	client  openai.Client
	model   openai.EmbeddingModel
	dims    int
	timeout time.Duration
}

// NewOpenAIVectorizer creates an OpenAI-backed vectorizer.
func NewOpenAIVectorizer(apiKey, model string, dimensions int, timeout time.Duration) (*OpenAIVectorizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key required")
	}
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &OpenAIVectorizer{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   openai.EmbeddingModel(model),
		dims:    dimensions,
		timeout: timeout,
	}, nil
}

// Vectorize embeds all texts in a single API request.
func (v *OpenAIVectorizer) Vectorize(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	resp, err := v.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:      v.model,
		Dimensions: openai.Int(int64(v.dims)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	// Responses carry an explicit index; place by it rather than trusting order.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(vectors) {
			return nil, fmt.Errorf("openai returned out-of-range embedding index %d", idx)
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		// Normalize to unit length for cosine similarity.
		NormalizeL2(vec)
		vectors[idx] = vec
	}
	return vectors, nil
}

// Dimensions returns the embedding width.
func (v *OpenAIVectorizer) Dimensions() int {
	return v.dims
}

// Close is a no-op; the underlying client holds no persistent connections.
func (v *OpenAIVectorizer) Close() error {
	return nil
}
