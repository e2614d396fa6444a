package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. db may be nil when the app runs
// on the in-memory stores.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status reports overall health plus the database state.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"status": "ok"}
	if s.DB == nil {
		out["database"] = "memory"
		return out
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		out["status"] = "degraded"
		out["database"] = "down"
		return out
	}
	out["database"] = "up"
	return out
}
