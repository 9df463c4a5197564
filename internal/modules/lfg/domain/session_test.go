package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_ShortCode_Is_Last_Six_Characters(t *testing.T) {
	s := Session{ID: "3f2a9c1e-5b7d-4e8f-9a0b-c1d2e3f4a5b6"}

	require.Equal(t, "f4a5b6", s.ShortCode())
}

func Test_ShortCode_Handles_Short_IDs(t *testing.T) {
	s := Session{ID: "abc"}

	require.Equal(t, "abc", s.ShortCode())
}

func Test_AtCapacity_Tracks_Roster_Against_Target(t *testing.T) {
	s := Session{
		PlayersNeeded: 2,
		Players:       []Player{{ID: "u1"}},
	}

	require.False(t, s.AtCapacity())

	s.Players = append(s.Players, Player{ID: "u2"})
	require.True(t, s.AtCapacity())
}

func Test_Expired_Compares_Against_Deadline(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Minute)}

	require.False(t, s.Expired(now))
	require.True(t, s.Expired(now.Add(2*time.Minute)))
}

func Test_Clone_Roster_Is_Independent(t *testing.T) {
	// Arrange
	s := Session{
		ID:      "s1",
		Players: []Player{{ID: "u1", Username: "alice"}},
	}

	// Act
	clone := s.Clone()
	clone.Players[0].Username = "mallory"
	clone.Players = append(clone.Players, Player{ID: "u2"})

	// Assert
	require.Equal(t, "alice", s.Players[0].Username)
	require.Len(t, s.Players, 1)
}
