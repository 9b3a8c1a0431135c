package resumes

import "context"

// Repo is the record store. Every read is scoped by owner; DeleteByID is not,
// so callers verify ownership first.
type Repo interface {
	Insert(ctx context.Context, r NewResume) (Summary, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Summary, error)
	// GetByID returns the record without its embedding.
	GetByID(ctx context.Context, ownerID, id string) (Resume, error)
	DeleteByID(ctx context.Context, id string) error
}
