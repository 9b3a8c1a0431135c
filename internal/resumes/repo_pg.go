package resumes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// PGRepo implements Repo using Postgres with the pgvector extension.
type PGRepo struct {
	DB *sql.DB
}

// Insert stores a new resume and returns the store-assigned metadata.
func (r *PGRepo) Insert(ctx context.Context, in NewResume) (Summary, error) {
	const query = `
INSERT INTO resumes (
    user_id,
    filename,
    parsed_text,
    embedding,
    file_size
) VALUES ($1, $2, $3, $4, $5)
RETURNING id, filename, file_size, created_at`

	var out Summary
	err := r.DB.QueryRowContext(
		ctx,
		query,
		in.OwnerID,
		in.Filename,
		in.ExtractedText,
		pgvector.NewVector(in.Embedding),
		in.ByteSize,
	).Scan(&out.ID, &out.Filename, &out.ByteSize, &out.CreatedAt)
	if err != nil {
		return Summary{}, err
	}
	return out, nil
}

// ListByOwner returns metadata for an owner's resumes, newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Summary, error) {
	const query = `
SELECT id, filename, file_size, created_at
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Filename, &s.ByteSize, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches one resume for its owner. The embedding column is not selected.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Resume, error) {
	// A malformed id cannot exist; checking here avoids a uuid cast error from Postgres.
	if _, err := uuid.Parse(id); err != nil {
		return Resume{}, ErrNotFound
	}
	const query = `
SELECT id, user_id, filename, parsed_text, file_size, created_at, updated_at
FROM resumes
WHERE id = $1 AND user_id = $2
LIMIT 1`

	var res Resume
	err := r.DB.QueryRowContext(ctx, query, id, ownerID).Scan(
		&res.ID,
		&res.OwnerID,
		&res.Filename,
		&res.ExtractedText,
		&res.ByteSize,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// DeleteByID permanently removes a resume.
func (r *PGRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
