// Package health backs the /healthz (liveness) and /readyz (readiness) probes.
package health

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    Status    `json:"status"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

type ReadyResponse struct {
	Ready     bool          `json:"ready"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// Service reports liveness unconditionally and readiness based on the
// database connection only, per SPEC_FULL.md's "/readyz 503 on DB ping
// failure" contract.
type Service struct {
	db        *sql.DB
	startTime time.Time
	log       *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	return &Service{db: db, startTime: time.Now(), log: log}
}

func (s *Service) Health(_ context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	check := CheckResult{Name: "database", Status: StatusHealthy}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
		s.log.Warn("readiness check failed", zap.Error(err))
	}

	return &ReadyResponse{
		Ready:     check.Status == StatusHealthy,
		Timestamp: time.Now(),
		Checks:    []CheckResult{check},
	}
}
