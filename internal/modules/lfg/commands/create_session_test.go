package commands

import (
	"context"
	"testing"
	"time"

	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/stretchr/testify/require"
)

func Test_CreateSessionCommand_Validate(t *testing.T) {
	valid := createCommand("u1", 5)
	require.NoError(t, valid.Validate())

	missingUser := valid
	missingUser.UserID = ""
	require.Error(t, missingUser.Validate())

	tooFew := valid
	tooFew.PlayersNeeded = 1
	require.Error(t, tooFew.Validate())

	tooMany := valid
	tooMany.PlayersNeeded = 11
	require.Error(t, tooMany.Validate())

	unknownGame := valid
	unknownGame.Game = "Chess"
	require.Error(t, unknownGame.Validate())

	wrongMode := valid
	wrongMode.Gamemode = "ARAM"
	require.Error(t, wrongMode.Validate())
}

func Test_CreateSession_Registers_Persists_And_Posts_Card(t *testing.T) {
	// Arrange
	h := newHarness(30 * time.Minute)
	defer h.stop()

	// Act
	response, err := h.create.Handle(context.Background(), createCommand("u1", 5))

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, response.Session.ID)
	require.Equal(t, domain.StatusWaiting, response.Session.Status)
	require.Equal(t, []domain.Player{{ID: "u1", Username: "user-u1"}}, response.Session.Players)
	require.Equal(t, "msg-"+response.Session.ID, response.Session.MessageID)

	stored, ok := h.registry.Get(response.Session.ID)
	require.True(t, ok)
	require.Equal(t, response.Session.MessageID, stored.MessageID)

	// Persisted once on create, again once the card ref is known.
	persisted, ok := h.store.lastUpserted()
	require.True(t, ok)
	require.Equal(t, response.Session.MessageID, persisted.MessageID)
}

func Test_CreateSession_Canonicalizes_Game_Name(t *testing.T) {
	// Arrange
	h := newHarness(30 * time.Minute)
	defer h.stop()

	cmd := createCommand("u1", 5)
	cmd.Game = "vAlOrAnT"
	cmd.Gamemode = "competitive"

	// Act
	response, err := h.create.Handle(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "Valorant", response.Session.Game)
	require.Equal(t, "Competitive", response.Session.Gamemode)
}

func Test_CreateSession_Rejects_User_With_Active_Session(t *testing.T) {
	// Arrange
	h := newHarness(30 * time.Minute)
	defer h.stop()

	_, err := h.create.Handle(context.Background(), createCommand("u1", 5))
	require.NoError(t, err)

	// Act
	_, err = h.create.Handle(context.Background(), createCommand("u1", 5))

	// Assert
	require.ErrorAs(t, err, &domain.DuplicateSessionError{})
	require.Equal(t, 1, h.registry.Len())
}

func Test_CreateSession_Survives_Card_Post_Failure(t *testing.T) {
	// Arrange
	h := newHarness(30 * time.Minute)
	defer h.stop()

	h.renderer.postErr = context.DeadlineExceeded

	// Act
	response, err := h.create.Handle(context.Background(), createCommand("u1", 5))

	// Assert - the session lives on without a card ref
	require.NoError(t, err)
	require.Empty(t, response.Session.MessageID)

	_, ok := h.registry.Get(response.Session.ID)
	require.True(t, ok)
}

func Test_CreateSession_TTL_Expires_The_Session(t *testing.T) {
	// Arrange
	h := newHarness(20 * time.Millisecond)
	defer h.stop()

	// Act
	response, err := h.create.Handle(context.Background(), createCommand("u1", 5))
	require.NoError(t, err)

	// Assert
	require.Eventually(t, func() bool {
		_, ok := h.registry.Get(response.Session.ID)
		return !ok
	}, time.Second, 5*time.Millisecond)

	// Creator is free to start over.
	_, err = h.create.Handle(context.Background(), createCommand("u1", 5))
	require.NoError(t, err)
}
