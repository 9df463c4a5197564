package lfg

import (
	"context"
	"time"

	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"go.uber.org/zap"
)

// Restorer rebuilds in-memory state from durable storage at startup.
type Restorer struct {
	Store     Store
	Registry  *Registry
	Scheduler *Scheduler
	Lifecycle *Lifecycle
	Logger    *zap.Logger
}

// Restore loads every active row. Rows already past their deadline are
// soft-deleted and skipped; the rest are placed back in the registry with
// their participants re-indexed and their TTL timer re-armed with the
// remaining time.
func (r *Restorer) Restore(ctx context.Context) error {
	sessions, err := r.Store.LoadActive(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	restored := 0
	var expired []string

	for _, s := range sessions {
		if s.Expired(now) {
			expired = append(expired, s.ID)
			continue
		}

		// A zero-player session never exists while live; a row without a
		// readable roster is unrecoverable and gets soft-deleted instead.
		if len(s.Players) == 0 {
			r.Logger.Warn("session row has no roster, deactivating",
				zap.String("session_id", s.ID))
			expired = append(expired, s.ID)
			continue
		}

		r.Registry.Restore(s)

		// Full sessions have no pending TTL; everyone else gets the
		// remainder of their original deadline.
		if s.Status != domain.StatusFull {
			id := s.ID
			r.Scheduler.ScheduleExpiry(id, time.Until(s.ExpiresAt), func(string) {
				r.Lifecycle.Expire(context.Background(), id)
			})
		}

		restored++
	}

	if err := r.Store.DeactivateBatch(ctx, expired); err != nil {
		r.Logger.Warn("failed to deactivate expired session rows",
			zap.Strings("session_ids", expired), zap.Error(err))
	}

	r.Logger.Info("restored sessions from durable storage",
		zap.Int("restored", restored),
		zap.Int("skipped_expired", len(expired)))

	return nil
}

// Sweeper is the safety net for timers lost between process restarts: a
// low-frequency scan that expires any registry session past its deadline.
// Timers remain the primary expiry path.
type Sweeper struct {
	Registry  *Registry
	Lifecycle *Lifecycle
	Interval  time.Duration
	Logger    *zap.Logger
}

// Run blocks until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now()
	for _, session := range s.Registry.All() {
		if session.Status == domain.StatusFull || !session.Expired(now) {
			continue
		}

		s.Logger.Info("sweeper found overdue session",
			zap.String("session_id", session.ID))
		s.Lifecycle.Expire(ctx, session.ID)
	}
}
