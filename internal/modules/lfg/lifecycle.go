package lfg

import (
	"context"

	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"go.uber.org/zap"
)

// Store is the durable session adapter. Writes are best-effort relative to
// in-memory state: callers log failures and carry on, the registry stays
// authoritative. Rows are soft-deleted - Deactivate flips is_active.
type Store interface {
	Upsert(ctx context.Context, s domain.Session) error
	Deactivate(ctx context.Context, id string) error
	DeactivateBatch(ctx context.Context, ids []string) error
	LoadActive(ctx context.Context) ([]domain.Session, error)
}

// Provisioner creates and destroys the private voice room for a filled
// session. Both calls are safe against already-deleted targets.
type Provisioner interface {
	ProvisionRoom(ctx context.Context, s domain.Session) (string, error)
	DestroyRoom(ctx context.Context, roomID string) error
}

// Renderer is the presentation collaborator: it owns the session card
// message and the fill announcement. Everything here is best-effort.
type Renderer interface {
	PostCard(ctx context.Context, s domain.Session) (channelID, messageID string, err error)
	UpdateCard(ctx context.Context, s domain.Session) error
	DeleteCard(ctx context.Context, s domain.Session) error
	NotifyFilled(ctx context.Context, s domain.Session) error
}

// Lifecycle bundles the shared teardown used by the leave-empty, terminate
// and expire transitions, plus the expiry entry point the scheduler and
// sweeper fire into.
type Lifecycle struct {
	Registry    *Registry
	Scheduler   *Scheduler
	Store       Store
	Provisioner Provisioner
	Renderer    Renderer
	Logger      *zap.Logger
}

// Destroy removes the session from the registry (clearing every
// participant's index entry) and tears down its external resources.
// A missing session is a silent no-op.
func (l *Lifecycle) Destroy(ctx context.Context, id string) (domain.Session, bool) {
	s, ok := l.Registry.Remove(id)
	if !ok {
		return domain.Session{}, false
	}

	l.Cleanup(ctx, s)
	return s, true
}

// Cleanup tears down the external resources of a session that has already
// left the registry: pending timers, the durable row, the card message and
// the voice room. Every step is best-effort and existence-checked.
func (l *Lifecycle) Cleanup(ctx context.Context, s domain.Session) {
	l.Scheduler.CancelExpiry(s.ID)

	if err := l.Store.Deactivate(ctx, s.ID); err != nil {
		l.Logger.Warn("failed to deactivate session row",
			zap.String("session_id", s.ID), zap.Error(err))
	}

	if s.MessageID != "" {
		if err := l.Renderer.DeleteCard(ctx, s); err != nil {
			l.Logger.Warn("failed to delete session card",
				zap.String("session_id", s.ID), zap.Error(err))
		}
	}

	if s.VoiceChannelID != "" {
		l.Scheduler.CancelRoomCleanup(s.VoiceChannelID)
		if err := l.Provisioner.DestroyRoom(ctx, s.VoiceChannelID); err != nil {
			l.Logger.Warn("failed to destroy voice room",
				zap.String("session_id", s.ID),
				zap.String("voice_channel_id", s.VoiceChannelID), zap.Error(err))
		}
	}
}

// Expire applies the expiry transition. Idempotent: a session already gone
// from the registry is a no-op, not an error.
func (l *Lifecycle) Expire(ctx context.Context, id string) {
	s, ok := l.Destroy(ctx, id)
	if !ok {
		return
	}

	l.Logger.Info("session expired",
		zap.String("session_id", s.ID),
		zap.String("game", s.Game),
		zap.Int("players", len(s.Players)))
}
