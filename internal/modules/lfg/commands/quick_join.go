package commands

import (
	"context"
	"fmt"

	"github.com/mkaric/squadup/internal/modules/lfg/domain"
)

type QuickJoinCommand struct {
	GuildID  string
	UserID   string
	Username string

	Game          string
	PreferredMode string
}

func (c QuickJoinCommand) Validate() error {
	if c.UserID == "" || c.GuildID == "" {
		return fmt.Errorf("missing caller identifiers")
	}

	if _, ok := domain.FindGame(c.Game); !ok {
		return fmt.Errorf("unsupported game - '%s'", c.Game)
	}

	return nil
}

// QuickJoinCommandHandler selects the best open session for the requested
// game and delegates to the join transition. Earliest CreatedAt wins, with
// sessions matching the preferred gamemode taking priority.
type QuickJoinCommandHandler struct {
	join *JoinSessionCommandHandler
}

func NewQuickJoinCommandHandler(join *JoinSessionCommandHandler) *QuickJoinCommandHandler {
	return &QuickJoinCommandHandler{join}
}

func (h *QuickJoinCommandHandler) Handle(
	ctx context.Context,
	request QuickJoinCommand,
) (JoinSessionResponse, error) {
	if existing, ok := h.join.registry.SessionFor(request.UserID); ok {
		return JoinSessionResponse{}, domain.DuplicateSessionError{
			UserID:    request.UserID,
			SessionID: existing.ID,
		}
	}

	game, _ := domain.FindGame(request.Game)

	session, ok := h.join.registry.QuickMatch(request.GuildID, game.Name, request.PreferredMode)
	if !ok {
		return JoinSessionResponse{}, domain.NotFoundError{UserID: request.UserID}
	}

	return h.join.Handle(ctx, JoinSessionCommand{
		SessionID: session.ID,
		UserID:    request.UserID,
		Username:  request.Username,
	})
}
