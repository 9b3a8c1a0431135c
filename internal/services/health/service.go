package health

import (
	"context"
	"database/sql"
	"time"

	"jobmatch-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. A nil database reports the memory store.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database}
}

// Status returns the health payload. ok stays true while the process serves requests;
// store reports whether the record store answers.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true, "store": "memory"}
	if s.DB == nil {
		return out
	}
	if err := db.Ping(ctx, s.DB, pingTimeout); err != nil {
		out["store"] = "unreachable"
		return out
	}
	out["store"] = "postgres"
	return out
}
