package commands

import (
	"context"
	"fmt"

	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"go.uber.org/zap"
)

type EndSessionCommand struct {
	UserID string
}

func (c EndSessionCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

type EndSessionResponse struct {
	Session domain.Session
}

// EndSessionCommandHandler applies the creator-only terminate transition
// to the caller's active session.
type EndSessionCommandHandler struct {
	registry  *lfg.Registry
	lifecycle *lfg.Lifecycle
	logger    *zap.Logger
}

func NewEndSessionCommandHandler(
	registry *lfg.Registry,
	lifecycle *lfg.Lifecycle,
	logger *zap.Logger,
) *EndSessionCommandHandler {
	return &EndSessionCommandHandler{registry, lifecycle, logger}
}

func (h *EndSessionCommandHandler) Handle(
	ctx context.Context,
	request EndSessionCommand,
) (EndSessionResponse, error) {
	session, ok := h.registry.SessionFor(request.UserID)
	if !ok {
		return EndSessionResponse{}, domain.NotFoundError{UserID: request.UserID}
	}

	if session.CreatorID != request.UserID {
		return EndSessionResponse{}, domain.PermissionError{
			UserID:    request.UserID,
			SessionID: session.ID,
		}
	}

	destroyed, ok := h.lifecycle.Destroy(ctx, session.ID)
	if !ok {
		// Torn down by a concurrent path between lookup and destroy.
		return EndSessionResponse{}, domain.NotFoundError{SessionID: session.ID}
	}

	h.logger.Info("session ended by creator",
		zap.String("session_id", destroyed.ID),
		zap.String("creator_id", request.UserID))

	return EndSessionResponse{Session: destroyed}, nil
}
