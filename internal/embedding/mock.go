package embedding

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
)

// MockVectorizer is a deterministic in-process Vectorizer. It derives each
// vector from the text hash so the same text always produces the same
// embedding, which makes it usable both as a test double and as a degraded
// runtime fallback when no real model is available.
type MockVectorizer struct {
	dims    int
	calls   atomic.Int64
	texts   atomic.Int64
	failing atomic.Bool
	closed  atomic.Bool
}

// NewMockVectorizer returns a deterministic Vectorizer of the given width.
func NewMockVectorizer(dims int) *MockVectorizer {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &MockVectorizer{dims: dims}
}

// Vectorize produces one unit-length vector per text.
func (m *MockVectorizer) Vectorize(_ context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	m.texts.Add(int64(len(texts)))
	if m.closed.Load() {
		return nil, ErrVectorizerClosed
	}
	if m.failing.Load() {
		return nil, errors.New("mock vectorizer failing")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = mockVector(text, m.dims)
	}
	return vectors, nil
}

// Dimensions returns the embedding width.
func (m *MockVectorizer) Dimensions() int {
	return m.dims
}

// Close marks the vectorizer closed; further Vectorize calls fail.
func (m *MockVectorizer) Close() error {
	m.closed.Store(true)
	return nil
}

// Calls returns how many Vectorize invocations were made.
func (m *MockVectorizer) Calls() int {
	return int(m.calls.Load())
}

// Texts returns the total number of texts passed across all calls.
func (m *MockVectorizer) Texts() int {
	return int(m.texts.Load())
}

// SetFailing toggles error injection for subsequent Vectorize calls.
func (m *MockVectorizer) SetFailing(failing bool) {
	m.failing.Store(failing)
}

func mockVector(text string, dims int) []float32 {
	h := HashString(text)
	vec := make([]float32, dims)
	for i := 0; i < dims; i++ {
		vec[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	NormalizeL2(vec)
	return vec
}
