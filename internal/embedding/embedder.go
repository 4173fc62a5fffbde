package embedding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultBatchSize is the number of texts sent to the Vectorizer per call.
const DefaultBatchSize = 32

// Embedder turns texts into embeddings through the cache and a shared
// Vectorizer. Uncached texts are batched to amortize inference cost. The
// Embedder references the Vectorizer but does not own it; the composition
// that built both is responsible for closing it.
//
// Embedding never fails from the caller's point of view: empty input and
// every Vectorizer failure mode degrade to the zero sentinel vector, logged
// but never propagated, so one bad chunk cannot abort a larger workflow.
type Embedder struct {
	vectorizer Vectorizer
	cache      *Cache
	batchSize  int
	dims       int
	logger     *zap.Logger
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithBatchSize sets the Vectorizer chunk size (default 32).
func WithBatchSize(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithLogger sets the logger for degraded-embedding warnings.
func WithLogger(l *zap.Logger) EmbedderOption {
	return func(e *Embedder) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEmbedder creates an Embedder over vectorizer and cache. A nil cache
// gets a default-capacity one.
func NewEmbedder(vectorizer Vectorizer, cache *Cache, opts ...EmbedderOption) *Embedder {
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	e := &Embedder{
		vectorizer: vectorizer,
		cache:      cache,
		batchSize:  DefaultBatchSize,
		dims:       vectorizer.Dimensions(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedBatch embeds texts and returns one vector per input, in input order.
// Texts are expected to be normalized already; blank text maps straight to
// the zero sentinel without touching the cache or the Vectorizer.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	return e.embedChunked(ctx, texts, e.batchSize)
}

// Embed embeds a single text. It is EmbedBatch of one, not a separate code
// path, so single and batched calls cache and normalize identically.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	return e.embedChunked(ctx, []string{text}, 1)[0]
}

type pendingText struct {
	index int
	fp    uint64
	text  string
}

func (e *Embedder) embedChunked(ctx context.Context, texts []string, batchSize int) [][]float32 {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results
	}

	// Partition into sentinel slots, cache hits, and misses to vectorize.
	var misses []pendingText
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = Zero(e.dims)
			continue
		}
		fp := Fingerprint(text)
		if vec, ok := e.cache.Get(fp); ok {
			results[i] = vec
			continue
		}
		misses = append(misses, pendingText{index: i, fp: fp, text: text})
	}
	if len(misses) == 0 {
		return results
	}
	e.logger.Debug("embedding uncached texts",
		zap.Int("total", len(texts)),
		zap.Int("misses", len(misses)),
		zap.Int("batch_size", batchSize))

	// The cache lock is never held here: Get and Put above and below are
	// point operations, so slow inference cannot block unrelated readers.
	for start := 0; start < len(misses); start += batchSize {
		end := min(start+batchSize, len(misses))
		chunk := misses[start:end]

		chunkTexts := make([]string, len(chunk))
		for j, p := range chunk {
			chunkTexts[j] = p.text
		}
		vectors, err := e.vectorizer.Vectorize(ctx, chunkTexts)
		if err == nil && len(vectors) != len(chunkTexts) {
			err = fmt.Errorf("vectorizer returned %d vectors for %d texts", len(vectors), len(chunkTexts))
		}
		if err != nil {
			e.logger.Warn("vectorize chunk failed, degrading to zero embeddings",
				zap.Int("chunk_size", len(chunkTexts)),
				zap.Error(err))
			for _, p := range chunk {
				results[p.index] = Zero(e.dims)
			}
			continue
		}
		for j, p := range chunk {
			vec := vectors[j]
			if len(vec) != e.dims {
				e.logger.Warn("vectorizer returned wrong width, degrading to zero embedding",
					zap.Int("got", len(vec)),
					zap.Int("want", e.dims))
				results[p.index] = Zero(e.dims)
				continue
			}
			e.cache.Put(p.fp, vec)
			results[p.index] = vec
		}
	}
	return results
}

// Dimensions returns the width of produced embeddings.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// CacheStats returns a snapshot of the underlying cache counters.
func (e *Embedder) CacheStats() Stats {
	return e.cache.Stats()
}
