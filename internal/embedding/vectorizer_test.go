package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLazyVectorizer_ConstructsOnce(t *testing.T) {
	var constructions atomic.Int32
	l := NewLazyVectorizer(8, func() (Vectorizer, error) {
		constructions.Add(1)
		return NewMockVectorizer(8), nil
	})
	defer l.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Vectorize(ctx, []string{"x"}); err != nil {
				t.Errorf("Vectorize: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := constructions.Load(); got != 1 {
		t.Errorf("constructions = %d, want 1", got)
	}
}

func TestLazyVectorizer_NoConstructionBeforeUse(t *testing.T) {
	var constructions atomic.Int32
	l := NewLazyVectorizer(8, func() (Vectorizer, error) {
		constructions.Add(1)
		return NewMockVectorizer(8), nil
	})
	if l.Dimensions() != 8 {
		t.Errorf("Dimensions = %d, want 8", l.Dimensions())
	}
	if constructions.Load() != 0 {
		t.Error("Dimensions should not trigger construction")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if constructions.Load() != 0 {
		t.Error("Close should not trigger construction")
	}
}

func TestLazyVectorizer_InitFailureIsTerminal(t *testing.T) {
	var constructions atomic.Int32
	initErr := errors.New("model file missing")
	l := NewLazyVectorizer(8, func() (Vectorizer, error) {
		constructions.Add(1)
		return nil, initErr
	})
	ctx := context.Background()
	if _, err := l.Vectorize(ctx, []string{"x"}); !errors.Is(err, initErr) {
		t.Fatalf("first call: got %v, want %v", err, initErr)
	}
	if _, err := l.Vectorize(ctx, []string{"x"}); !errors.Is(err, initErr) {
		t.Fatalf("second call: got %v, want %v", err, initErr)
	}
	if got := constructions.Load(); got != 1 {
		t.Errorf("constructions = %d, want 1 (failure must not retry)", got)
	}
}

func TestLazyVectorizer_ClosedRejectsCalls(t *testing.T) {
	l := NewLazyVectorizer(8, func() (Vectorizer, error) {
		return NewMockVectorizer(8), nil
	})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := l.Vectorize(context.Background(), []string{"x"}); !errors.Is(err, ErrVectorizerClosed) {
		t.Errorf("got %v, want ErrVectorizerClosed", err)
	}
}

func TestLazyVectorizer_CloseReleasesConstructed(t *testing.T) {
	mock := NewMockVectorizer(8)
	l := NewLazyVectorizer(8, func() (Vectorizer, error) {
		return mock, nil
	})
	if err := l.Ready(); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := mock.Vectorize(context.Background(), []string{"x"}); !errors.Is(err, ErrVectorizerClosed) {
		t.Error("underlying vectorizer should have been closed")
	}
}

func TestLazyVectorizer_DimensionMismatch(t *testing.T) {
	l := NewLazyVectorizer(128, func() (Vectorizer, error) {
		return NewMockVectorizer(384), nil
	})
	defer l.Close()
	if _, err := l.Vectorize(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if err := l.Ready(); err == nil {
		t.Error("mismatch should be terminal")
	}
}

func TestLazyVectorizer_Ready(t *testing.T) {
	var constructions atomic.Int32
	l := NewLazyVectorizer(8, func() (Vectorizer, error) {
		constructions.Add(1)
		return NewMockVectorizer(8), nil
	})
	defer l.Close()
	if err := l.Ready(); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if _, err := l.Vectorize(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("Vectorize after Ready: %v", err)
	}
	if constructions.Load() != 1 {
		t.Errorf("constructions = %d, want 1", constructions.Load())
	}
}
