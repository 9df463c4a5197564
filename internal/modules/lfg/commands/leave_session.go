package commands

import (
	"context"
	"fmt"

	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"go.uber.org/zap"
)

type LeaveSessionCommand struct {
	SessionID string
	UserID    string
}

func (c LeaveSessionCommand) Validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("invalid SessionID - '%s'", c.SessionID)
	}

	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

type LeaveSessionResponse struct {
	Session   domain.Session
	Destroyed bool
}

type LeaveSessionCommandHandler struct {
	registry  *lfg.Registry
	store     lfg.Store
	renderer  lfg.Renderer
	lifecycle *lfg.Lifecycle
	logger    *zap.Logger
}

func NewLeaveSessionCommandHandler(
	registry *lfg.Registry,
	store lfg.Store,
	renderer lfg.Renderer,
	lifecycle *lfg.Lifecycle,
	logger *zap.Logger,
) *LeaveSessionCommandHandler {
	return &LeaveSessionCommandHandler{registry, store, renderer, lifecycle, logger}
}

func (h *LeaveSessionCommandHandler) Handle(
	ctx context.Context,
	request LeaveSessionCommand,
) (LeaveSessionResponse, error) {
	result, err := h.registry.Leave(request.SessionID, request.UserID)
	if err != nil {
		return LeaveSessionResponse{}, err
	}

	// Last player out destroys the session outright, bypassing the TTL.
	// The registry entry is already gone; only external teardown remains.
	if result.Empty {
		h.lifecycle.Cleanup(ctx, result.Session)
		return LeaveSessionResponse{Session: result.Session, Destroyed: true}, nil
	}

	if result.CreatorChanged {
		h.logger.Info("session ownership transferred",
			zap.String("session_id", result.Session.ID),
			zap.String("new_creator_id", result.Session.CreatorID))
	}

	if err := h.store.Upsert(ctx, result.Session); err != nil {
		h.logger.Warn("failed to persist session after leave",
			zap.String("session_id", result.Session.ID), zap.Error(err))
	}

	if err := h.renderer.UpdateCard(ctx, result.Session); err != nil {
		h.logger.Warn("failed to update session card",
			zap.String("session_id", result.Session.ID), zap.Error(err))
	}

	return LeaveSessionResponse{Session: result.Session}, nil
}
