package commands

import (
	"context"
	"fmt"

	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"go.uber.org/zap"
)

type JoinSessionCommand struct {
	SessionID string
	UserID    string
	Username  string
}

func (c JoinSessionCommand) Validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("invalid SessionID - '%s'", c.SessionID)
	}

	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

type JoinSessionResponse struct {
	Session domain.Session
	Filled  bool
}

type JoinSessionCommandHandler struct {
	registry    *lfg.Registry
	scheduler   *lfg.Scheduler
	store       lfg.Store
	provisioner lfg.Provisioner
	renderer    lfg.Renderer
	logger      *zap.Logger
}

func NewJoinSessionCommandHandler(
	registry *lfg.Registry,
	scheduler *lfg.Scheduler,
	store lfg.Store,
	provisioner lfg.Provisioner,
	renderer lfg.Renderer,
	logger *zap.Logger,
) *JoinSessionCommandHandler {
	return &JoinSessionCommandHandler{registry, scheduler, store, provisioner, renderer, logger}
}

func (h *JoinSessionCommandHandler) Handle(
	ctx context.Context,
	request JoinSessionCommand,
) (JoinSessionResponse, error) {
	result, err := h.registry.Join(request.SessionID, domain.Player{
		ID:       request.UserID,
		Username: request.Username,
	})
	if err != nil {
		return JoinSessionResponse{}, err
	}

	session := result.Session

	if result.Filled {
		// This goroutine saw the fill flip, so it alone cancels the TTL
		// and provisions the room.
		h.scheduler.CancelExpiry(session.ID)
		session = h.provision(ctx, session)
	}

	if err := h.store.Upsert(ctx, session); err != nil {
		h.logger.Warn("failed to persist session after join",
			zap.String("session_id", session.ID), zap.Error(err))
	}

	if err := h.renderer.UpdateCard(ctx, session); err != nil {
		h.logger.Warn("failed to update session card",
			zap.String("session_id", session.ID), zap.Error(err))
	}

	return JoinSessionResponse{Session: session, Filled: result.Filled}, nil
}

// provision creates the voice room for a freshly filled session. Failure
// is logged and the session stays full without a room - no retry, no
// membership rollback.
func (h *JoinSessionCommandHandler) provision(ctx context.Context, session domain.Session) domain.Session {
	roomID, err := h.provisioner.ProvisionRoom(ctx, session)
	if err != nil {
		h.logger.Error("voice room provisioning failed",
			zap.String("session_id", session.ID), zap.Error(err))
		return session
	}

	// Provisioning suspended; the session may have been torn down in the
	// meantime. The orphaned room is destroyed rather than leaked.
	if ok := h.registry.SetVoiceChannel(session.ID, roomID); !ok {
		h.logger.Info("session vanished during provisioning, destroying room",
			zap.String("session_id", session.ID), zap.String("room_id", roomID))
		if err := h.provisioner.DestroyRoom(ctx, roomID); err != nil {
			h.logger.Warn("failed to destroy orphaned room",
				zap.String("room_id", roomID), zap.Error(err))
		}
		return session
	}

	current, ok := h.registry.Get(session.ID)
	if ok {
		session = current
	}

	if err := h.renderer.NotifyFilled(ctx, session); err != nil {
		h.logger.Warn("failed to notify participants",
			zap.String("session_id", session.ID), zap.Error(err))
	}

	return session
}
