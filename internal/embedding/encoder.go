package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/telemetry"
)

const (
	// Dimensions is the vector length every stored embedding must have.
	Dimensions = 1536
	// MaxChars is the character budget submitted per text; the tail is dropped.
	MaxChars = 30000

	DefaultModel = string(openai.SmallEmbedding3)
)

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrService           = errors.New("embedding service error")
)

type embeddingsAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Encoder turns text into fixed-length vectors through an OpenAI-compatible API.
type Encoder struct {
	client embeddingsAPI
	model  openai.EmbeddingModel
}

// NewOpenAIEncoder builds an Encoder. baseURL overrides the API endpoint when set.
func NewOpenAIEncoder(apiKey, baseURL, model string) (*Encoder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Encoder{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(model),
	}, nil
}

// Embed submits one text and returns its vector.
func (e *Encoder) Embed(ctx context.Context, text string) ([]float32, error) {
	input, _ := truncateLogged(text, 0)

	telemetry.Debug("embedding.request", map[string]any{
		"mode":  "single",
		"chars": utf8.RuneCountInString(input),
		"model": string(e.model),
	})
	resp, err := e.create(ctx, []string{input})
	if err != nil {
		metrics.IncEmbeddingCall("single", "error")
		return nil, err
	}
	if len(resp.Data) != 1 {
		metrics.IncEmbeddingCall("single", "error")
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrService, len(resp.Data))
	}
	vec := resp.Data[0].Embedding
	if err := checkDimensions(vec, 0); err != nil {
		metrics.IncEmbeddingCall("single", "dimension_mismatch")
		return nil, err
	}

	metrics.IncEmbeddingCall("single", "ok")
	telemetry.Info("embedding.generated", map[string]any{
		"mode":       "single",
		"dimensions": len(vec),
	})
	return vec, nil
}

// EmbedBatch submits texts in one call. Output position i holds the vector for texts[i].
func (e *Encoder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}
	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i], _ = truncateLogged(text, i)
	}

	telemetry.Debug("embedding.request", map[string]any{
		"mode":  "batch",
		"count": len(inputs),
		"model": string(e.model),
	})
	resp, err := e.create(ctx, inputs)
	if err != nil {
		metrics.IncEmbeddingCall("batch", "error")
		return nil, err
	}
	if len(resp.Data) != len(inputs) {
		metrics.IncEmbeddingCall("batch", "error")
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrService, len(inputs), len(resp.Data))
	}

	out := make([][]float32, len(inputs))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) || out[item.Index] != nil {
			metrics.IncEmbeddingCall("batch", "error")
			return nil, fmt.Errorf("%w: invalid embedding index %d", ErrService, item.Index)
		}
		if err := checkDimensions(item.Embedding, item.Index); err != nil {
			metrics.IncEmbeddingCall("batch", "dimension_mismatch")
			return nil, err
		}
		out[item.Index] = item.Embedding
	}

	metrics.IncEmbeddingCall("batch", "ok")
	telemetry.Info("embedding.generated", map[string]any{
		"mode":  "batch",
		"count": len(out),
	})
	return out, nil
}

func (e *Encoder) create(ctx context.Context, inputs []string) (openai.EmbeddingResponse, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          inputs,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		telemetry.Error("embedding.failed", map[string]any{
			"count": len(inputs),
			"err":   err,
		})
		return openai.EmbeddingResponse{}, fmt.Errorf("%w: %w", ErrService, err)
	}
	return resp, nil
}

// Truncate cuts text to its first MaxChars characters and reports whether it did.
func Truncate(text string) (string, bool) {
	if len(text) <= MaxChars {
		return text, false
	}
	count := 0
	for i := range text {
		if count == MaxChars {
			return text[:i], true
		}
		count++
	}
	return text, false
}

func truncateLogged(text string, index int) (string, bool) {
	out, truncated := Truncate(text)
	if truncated {
		metrics.IncEmbeddingTruncation()
		telemetry.Warn("embedding.truncated", map[string]any{
			"index":           index,
			"original_chars":  utf8.RuneCountInString(text),
			"truncated_chars": MaxChars,
		})
	}
	return out, truncated
}

func checkDimensions(vec []float32, index int) error {
	if len(vec) != Dimensions {
		return fmt.Errorf("%w: index %d has %d components, want %d", ErrDimensionMismatch, index, len(vec), Dimensions)
	}
	return nil
}
