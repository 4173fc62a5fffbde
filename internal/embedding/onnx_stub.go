//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errONNXUnavailable = errors.New("ONNX vectorizer requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXVectorizer stub type when built without CGO (see onnx.go for the real
// implementation).
type ONNXVectorizer struct{}

// NewONNXVectorizer returns an error when built without CGO.
func NewONNXVectorizer(_ string, _, _ int) (*ONNXVectorizer, error) {
	return nil, errONNXUnavailable
}

// Vectorize always fails on the stub.
func (v *ONNXVectorizer) Vectorize(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errONNXUnavailable
}

// Dimensions returns zero on the stub.
func (v *ONNXVectorizer) Dimensions() int { return 0 }

// Close is a no-op on the stub.
func (v *ONNXVectorizer) Close() error { return nil }
