package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	seq  uint64
	data map[string]memoryRecord // id -> record
	now  func() time.Time
}

type memoryRecord struct {
	Resume
	seq uint64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]memoryRecord),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Insert stores a resume under a fresh UUID.
func (r *MemoryRepo) Insert(ctx context.Context, in NewResume) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	now := r.now()
	rec := Resume{
		ID:            uuid.NewString(),
		OwnerID:       in.OwnerID,
		Filename:      in.Filename,
		ExtractedText: in.ExtractedText,
		Embedding:     append([]float32(nil), in.Embedding...),
		ByteSize:      in.ByteSize,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	r.mu.Lock()
	r.seq++
	r.data[rec.ID] = memoryRecord{Resume: rec, seq: r.seq}
	r.mu.Unlock()

	return summarize(rec), nil
}

// ListByOwner returns an owner's resumes newest first. Ties keep insertion order reversed.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	owned := make([]memoryRecord, 0)
	for _, rec := range r.data {
		if rec.OwnerID == ownerID {
			owned = append(owned, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].seq > owned[j].seq
	})

	out := make([]Summary, 0, len(owned))
	for _, rec := range owned {
		out = append(out, summarize(rec.Resume))
	}
	return out, nil
}

// GetByID returns a resume for its owner without the embedding.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	rec, ok := r.data[id]
	r.mu.RUnlock()
	if !ok || rec.OwnerID != ownerID {
		return Resume{}, ErrNotFound
	}
	out := rec.Resume
	out.Embedding = nil
	return out, nil
}

// DeleteByID removes a resume.
func (r *MemoryRepo) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func summarize(r Resume) Summary {
	return Summary{
		ID:        r.ID,
		Filename:  r.Filename,
		ByteSize:  r.ByteSize,
		CreatedAt: r.CreatedAt,
	}
}

var _ Repo = (*MemoryRepo)(nil)
