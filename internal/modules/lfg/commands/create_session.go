package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateSessionCommand struct {
	UserID    string
	Username  string
	GuildID   string
	ChannelID string

	Game          string
	Gamemode      string
	PlayersNeeded int
	Info          string
}

func (c CreateSessionCommand) Validate() error {
	if c.UserID == "" || c.GuildID == "" || c.ChannelID == "" {
		return fmt.Errorf("missing caller identifiers")
	}

	if c.PlayersNeeded < domain.MinPlayers || c.PlayersNeeded > domain.MaxPlayers {
		return fmt.Errorf(
			"invalid PlayersNeeded - %d, must be between %d and %d",
			c.PlayersNeeded, domain.MinPlayers, domain.MaxPlayers,
		)
	}

	if _, ok := domain.FindGame(c.Game); !ok {
		return fmt.Errorf("unsupported game - '%s'", c.Game)
	}

	if !domain.ValidMode(c.Game, c.Gamemode) {
		return fmt.Errorf("invalid gamemode '%s' for game '%s'", c.Gamemode, c.Game)
	}

	return nil
}

type CreateSessionResponse struct {
	Session domain.Session
}

type CreateSessionCommandHandler struct {
	registry  *lfg.Registry
	scheduler *lfg.Scheduler
	store     lfg.Store
	renderer  lfg.Renderer
	lifecycle *lfg.Lifecycle
	ttl       time.Duration
	logger    *zap.Logger
}

func NewCreateSessionCommandHandler(
	registry *lfg.Registry,
	scheduler *lfg.Scheduler,
	store lfg.Store,
	renderer lfg.Renderer,
	lifecycle *lfg.Lifecycle,
	ttl time.Duration,
	logger *zap.Logger,
) *CreateSessionCommandHandler {
	return &CreateSessionCommandHandler{registry, scheduler, store, renderer, lifecycle, ttl, logger}
}

func (h *CreateSessionCommandHandler) Handle(
	ctx context.Context,
	request CreateSessionCommand,
) (CreateSessionResponse, error) {
	// Canonical catalog names go into the session so quick-match can
	// compare with plain equality.
	game, _ := domain.FindGame(request.Game)
	gamemode, _ := domain.CanonicalMode(request.Game, request.Gamemode)

	now := time.Now()
	session := domain.Session{
		ID:            uuid.NewString(),
		CreatorID:     request.UserID,
		GuildID:       request.GuildID,
		ChannelID:     request.ChannelID,
		Game:          game.Name,
		Gamemode:      gamemode,
		PlayersNeeded: request.PlayersNeeded,
		Info:          request.Info,
		Status:        domain.StatusWaiting,
		Players:       []domain.Player{{ID: request.UserID, Username: request.Username}},
		CreatedAt:     now,
		ExpiresAt:     now.Add(h.ttl),
	}

	if err := h.registry.Create(session); err != nil {
		return CreateSessionResponse{}, err
	}

	id := session.ID
	h.scheduler.ScheduleExpiry(id, h.ttl, func(string) {
		h.lifecycle.Expire(context.Background(), id)
	})

	if err := h.store.Upsert(ctx, session); err != nil {
		h.logger.Warn("failed to persist new session",
			zap.String("session_id", session.ID), zap.Error(err))
	}

	// Posting the card suspends; the session may expire or be torn down
	// before the message id comes back, in which case the ref is dropped.
	channelID, messageID, err := h.renderer.PostCard(ctx, session)
	if err != nil {
		h.logger.Warn("failed to post session card",
			zap.String("session_id", session.ID), zap.Error(err))
		return CreateSessionResponse{Session: session}, nil
	}

	updated, ok := h.registry.SetMessageRef(id, channelID, messageID)
	if !ok {
		return CreateSessionResponse{Session: session}, nil
	}

	if err := h.store.Upsert(ctx, updated); err != nil {
		h.logger.Warn("failed to persist session message ref",
			zap.String("session_id", session.ID), zap.Error(err))
	}

	return CreateSessionResponse{Session: updated}, nil
}
