package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrVectorizerClosed is returned for calls made after Close.
var ErrVectorizerClosed = errors.New("vectorizer closed")

// Vectorizer encodes a batch of strings into fixed-length vectors. Output
// index i always corresponds to texts[i]. Implementations may be slow (model
// load, inference, network) and may fail; callers control batch size.
type Vectorizer interface {
	Vectorize(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the width of produced vectors.
	Dimensions() int
	// Close releases model resources.
	Close() error
}

// LazyVectorizer defers construction of a shared Vectorizer until first use.
// Model loading can block for seconds, so the first acquisition runs the
// constructor exactly once while concurrent first callers wait; a
// construction failure is terminal and returned to every later call without
// retrying the load. Dimensions are known up front so dependents can size
// buffers before the model exists.
type LazyVectorizer struct {
	construct func() (Vectorizer, error)
	dims      int

	once   sync.Once
	mu     sync.Mutex
	v      Vectorizer
	err    error
	closed bool
}

// NewLazyVectorizer wraps construct, which will be invoked at most once.
// dims is the dimension the constructed vectorizer must report.
func NewLazyVectorizer(dims int, construct func() (Vectorizer, error)) *LazyVectorizer {
	if dims < 1 {
		dims = DefaultDimensions
	}
	return &LazyVectorizer{construct: construct, dims: dims}
}

func (l *LazyVectorizer) acquire() (Vectorizer, error) {
	l.once.Do(func() {
		v, err := l.construct()
		if err == nil && v.Dimensions() != l.dims {
			got := v.Dimensions()
			_ = v.Close()
			v = nil
			err = fmt.Errorf("vectorizer produces %d-dimension vectors, want %d", got, l.dims)
		}
		l.mu.Lock()
		if l.closed && v != nil {
			_ = v.Close()
			v, err = nil, ErrVectorizerClosed
		}
		l.v, l.err = v, err
		l.mu.Unlock()
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrVectorizerClosed
	}
	return l.v, l.err
}

// Vectorize initializes the underlying vectorizer on first call and
// delegates to it.
func (l *LazyVectorizer) Vectorize(ctx context.Context, texts []string) ([][]float32, error) {
	v, err := l.acquire()
	if err != nil {
		return nil, err
	}
	return v.Vectorize(ctx, texts)
}

// Dimensions returns the configured vector width without forcing
// initialization.
func (l *LazyVectorizer) Dimensions() int {
	return l.dims
}

// Ready forces initialization and reports its (possibly terminal) outcome.
// Useful as a health probe before serving traffic.
func (l *LazyVectorizer) Ready() error {
	_, err := l.acquire()
	return err
}

// Close releases the constructed vectorizer, if any. A LazyVectorizer that
// never initialized closes without constructing.
func (l *LazyVectorizer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.v != nil {
		err := l.v.Close()
		l.v = nil
		return err
	}
	return nil
}
