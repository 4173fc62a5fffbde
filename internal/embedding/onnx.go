//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXVectorizer runs a local sentence-embedding model through ONNX Runtime.
// It requires CGO and the onnxruntime shared library.
//
// Tensors are allocated once at shape (1, maxTokens) and reused for every
// inference, so Vectorize serializes calls with a mutex and feeds the model
// one text at a time within a batch.
type ONNXVectorizer struct {
	session    *ort.AdvancedSession
	tokenizer  Tokenizer
	dimensions int
	maxTokens  int

	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXVectorizer loads the model at modelPath. InitializeEnvironment is
// called if not already done.
func NewONNXVectorizer(modelPath string, dimensions, maxTokens int) (*ONNXVectorizer, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}

	tokenizer := &SimpleTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tokenizer.Tokenize("", maxTokens)

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), attentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), tokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	outputData := make([]float32, dimensions)
	outputTensor, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), outputData)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	inputs := []ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}
	outputs := []ort.ArbitraryTensor{outputTensor}
	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		inputs,
		outputs,
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXVectorizer{
		session:             session,
		tokenizer:           tokenizer,
		dimensions:          dimensions,
		maxTokens:           maxTokens,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		outputTensor:        outputTensor,
	}, nil
}

// Vectorize runs inference for each text and returns unit-normalized vectors
// in input order.
func (v *ONNXVectorizer) Vectorize(ctx context.Context, texts []string) ([][]float32, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := v.vectorizeLocked(text)
		if err != nil {
			return nil, fmt.Errorf("inference failed at text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (v *ONNXVectorizer) vectorizeLocked(text string) ([]float32, error) {
	inputIDs, attentionMask, tokenTypeIDs := v.tokenizer.Tokenize(text, v.maxTokens)

	copy(v.inputIDsTensor.GetData(), inputIDs)
	copy(v.attentionMaskTensor.GetData(), attentionMask)
	copy(v.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

	if err := v.session.Run(); err != nil {
		return nil, err
	}

	outputData := v.outputTensor.GetData()
	vec := make([]float32, v.dimensions)
	copy(vec, outputData[:v.dimensions])
	NormalizeL2(vec)
	return vec, nil
}

// Dimensions returns the embedding width.
func (v *ONNXVectorizer) Dimensions() int {
	return v.dimensions
}

// Close destroys the session and tensors.
func (v *ONNXVectorizer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var err error
	if v.session != nil {
		err = v.session.Destroy()
		v.session = nil
	}
	if v.inputIDsTensor != nil {
		_ = v.inputIDsTensor.Destroy()
		v.inputIDsTensor = nil
	}
	if v.attentionMaskTensor != nil {
		_ = v.attentionMaskTensor.Destroy()
		v.attentionMaskTensor = nil
	}
	if v.tokenTypeIDsTensor != nil {
		_ = v.tokenTypeIDsTensor.Destroy()
		v.tokenTypeIDsTensor = nil
	}
	if v.outputTensor != nil {
		_ = v.outputTensor.Destroy()
		v.outputTensor = nil
	}
	return err
}
