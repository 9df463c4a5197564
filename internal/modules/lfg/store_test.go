package lfg

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_Row_Mapping_Round_Trips_A_Session(t *testing.T) {
	// Arrange
	now := time.Now().UTC().Truncate(time.Millisecond)
	session := domain.Session{
		ID:             "s1",
		CreatorID:      "u1",
		GuildID:        "guild-1",
		ChannelID:      "channel-1",
		MessageID:      "msg-1",
		Game:           "Valorant",
		Gamemode:       "Competitive",
		PlayersNeeded:  5,
		Info:           "diamond+",
		Status:         domain.StatusWaiting,
		Players:        []domain.Player{{ID: "u1", Username: "alice"}, {ID: "u2", Username: "bob"}},
		VoiceChannelID: "vc-1",
		CreatedAt:      now,
		ExpiresAt:      now.Add(30 * time.Minute),
	}

	store := NewSessionStore(nil, zap.NewNop())

	// Act
	row, err := toRow(session)
	require.NoError(t, err)
	restored := store.fromRow(row)

	// Assert
	require.Equal(t, session, restored)
	require.True(t, row.IsActive)
	require.JSONEq(t, `[]`, string(row.ConfirmedPlayers))
}

func Test_Row_Mapping_Empty_Optionals_Map_To_Null(t *testing.T) {
	// Arrange
	session := domain.Session{
		ID:        "s1",
		CreatorID: "u1",
		Players:   []domain.Player{{ID: "u1"}},
	}

	// Act
	row, err := toRow(session)

	// Assert
	require.NoError(t, err)
	require.False(t, row.MessageID.Valid)
	require.False(t, row.Info.Valid)
	require.False(t, row.VoiceChannelID.Valid)
}

func Test_FromRow_Defaults_Malformed_Roster_To_Empty(t *testing.T) {
	// Arrange
	store := NewSessionStore(nil, zap.NewNop())
	row := sessionRow{
		ID:             "s1",
		CurrentPlayers: []byte(`{"not":"an array"}`),
	}

	// Act
	restored := store.fromRow(row)

	// Assert
	require.Empty(t, restored.Players)
}

func Test_FromRow_Empty_Column_Yields_Empty_Roster(t *testing.T) {
	store := NewSessionStore(nil, zap.NewNop())

	restored := store.fromRow(sessionRow{ID: "s1"})

	require.Equal(t, []domain.Player{}, restored.Players)
}

func Test_NullString_Tracks_Presence(t *testing.T) {
	require.Equal(t, sql.NullString{String: "x", Valid: true}, nullString("x"))
	require.Equal(t, sql.NullString{}, nullString(""))
}
