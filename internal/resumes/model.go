package resumes

import "time"

// Resume is a persisted document record owned by exactly one user.
type Resume struct {
	ID            string
	OwnerID       string
	Filename      string
	ExtractedText string
	Embedding     []float32
	ByteSize      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Summary is the metadata projection used by list and the upload acknowledgment.
type Summary struct {
	ID        string
	Filename  string
	ByteSize  int64
	CreatedAt time.Time
}

// NewResume carries the fields assembled by the ingestion pipeline for insert.
// The store assigns ID and timestamps.
type NewResume struct {
	OwnerID       string
	Filename      string
	ExtractedText string
	Embedding     []float32
	ByteSize      int64
}
