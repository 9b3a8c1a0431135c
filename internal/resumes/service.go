package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/extract"
	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/telemetry"
)

// MaxUploadBytes is the largest accepted document.
const MaxUploadBytes = 10 << 20 // 10MB

const acceptedExt = ".pdf"

// Extractor turns raw document bytes into text.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// Encoder turns text into a fixed-length vector.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service runs the ingestion pipeline and owner-scoped record access.
type Service struct {
	Repo      Repo
	Extractor Extractor
	Encoder   Encoder
}

// NewService constructs a Service.
func NewService(repo Repo, extractor Extractor, encoder Encoder) *Service {
	return &Service{Repo: repo, Extractor: extractor, Encoder: encoder}
}

// Upload validates, extracts, embeds and persists one document for ownerID.
// Nothing is stored unless every stage succeeds.
func (s *Service) Upload(ctx context.Context, ownerID, filename string, r io.Reader) (out Summary, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveUpload(outcome(err), time.Since(start))
	}()

	if strings.TrimSpace(ownerID) == "" {
		return Summary{}, ErrOwnerRequired
	}
	if !strings.EqualFold(filepath.Ext(filename), acceptedExt) {
		s.logStage(ctx, ownerID, "rejected", start, map[string]any{"filename": filename, "reason": "type"})
		return Summary{}, ErrUnsupportedType
	}
	s.logStage(ctx, ownerID, "type_validated", start, map[string]any{"filename": filename})

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return Summary{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		s.logStage(ctx, ownerID, "rejected", start, map[string]any{"filename": filename, "reason": "size"})
		return Summary{}, ErrPayloadTooLarge
	}
	size := int64(len(data))
	s.logStage(ctx, ownerID, "size_validated", start, map[string]any{"byte_size": size})

	text, err := s.Extractor.Extract(ctx, bytes.NewReader(data))
	if err != nil {
		return Summary{}, err
	}
	s.logStage(ctx, ownerID, "extracted", start, map[string]any{"chars": len([]rune(text))})

	vec, err := s.Encoder.Embed(ctx, text)
	if err != nil {
		return Summary{}, err
	}
	if len(vec) != embedding.Dimensions {
		return Summary{}, fmt.Errorf("%w: got %d", embedding.ErrDimensionMismatch, len(vec))
	}
	s.logStage(ctx, ownerID, "embedded", start, map[string]any{"dimensions": len(vec)})

	// Stored text is the untruncated extraction; only the encoder input is cut.
	ack, err := s.Repo.Insert(ctx, NewResume{
		OwnerID:       ownerID,
		Filename:      filename,
		ExtractedText: text,
		Embedding:     vec,
		ByteSize:      size,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if ack.ID == "" {
		return Summary{}, fmt.Errorf("%w: empty acknowledgment", ErrPersistence)
	}
	s.logStage(ctx, ownerID, "persisted", start, map[string]any{"resume_id": ack.ID})

	return ack, nil
}

// List returns the caller's records, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Summary, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	return s.Repo.ListByOwner(ctx, ownerID)
}

// Get returns one record owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Resume, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Resume{}, ErrOwnerRequired
	}
	return s.Repo.GetByID(ctx, ownerID, id)
}

// Delete removes a record after confirming ownerID owns it.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	telemetry.Info("resume.deleted", map[string]any{
		"request_id": telemetry.RequestID(ctx),
		"user_id":    ownerID,
		"resume_id":  id,
	})
	return nil
}

func (s *Service) logStage(ctx context.Context, ownerID, stage string, start time.Time, extra map[string]any) {
	fields := map[string]any{
		"request_id":  telemetry.RequestID(ctx),
		"user_id":     ownerID,
		"stage":       stage,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("resume.upload", fields)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "acknowledged"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, extract.ErrFormat):
		return "format_error"
	case errors.Is(err, extract.ErrEmptyContent):
		return "empty_content"
	case errors.Is(err, embedding.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, embedding.ErrService):
		return "embedding_service_error"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}
