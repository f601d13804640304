package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/doctaba/telehealth-api/internal/repository"
	"github.com/doctaba/telehealth-api/pkg/metrics"
)

// SessionSweeper periodically deletes expired sessions
type SessionSweeper struct {
	repo     repository.SessionRepository
	interval time.Duration
	metrics  *metrics.Metrics
}

func NewSessionSweeper(repo repository.SessionRepository, interval time.Duration, m *metrics.Metrics) *SessionSweeper {
	return &SessionSweeper{
		repo:     repo,
		interval: interval,
		metrics:  m,
	}
}

func (w *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				// Log error but continue
				log.Error().Err(err).Msg("session sweep failed")
			}
		}
	}
}

func (w *SessionSweeper) Sweep(ctx context.Context) (int64, error) {
	now := time.Now()

	rows, err := w.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}

	if w.metrics != nil {
		w.metrics.SessionsSwept.Add(float64(rows))
	}
	log.Info().Int64("removed", rows).Msg("expired sessions swept")
	return rows, nil
}
