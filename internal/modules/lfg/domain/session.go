package domain

import (
	"time"
)

const (
	MinPlayers = 2
	MaxPlayers = 10
)

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusFull    Status = "full"
)

// Player is a single roster entry. Roster order is join order and the
// first entry is the displayed host.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Session is a single LFG post: the desired game, the target headcount and
// the current roster. In-memory state is authoritative for live operation;
// the durable row exists for crash recovery only.
type Session struct {
	ID             string
	CreatorID      string
	GuildID        string
	ChannelID      string
	MessageID      string
	Game           string
	Gamemode       string
	PlayersNeeded  int
	Info           string
	Status         Status
	Players        []Player
	VoiceChannelID string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// ShortCode is the human-readable tail of the session id. Display-only;
// collisions are cosmetic.
func (s *Session) ShortCode() string {
	id := s.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return id
}

// AtCapacity is the single capacity check used at every mutation site.
func (s *Session) AtCapacity() bool {
	return len(s.Players) >= s.PlayersNeeded
}

func (s *Session) HasPlayer(userID string) bool {
	for _, p := range s.Players {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Clone returns a defensive copy with its own roster slice. The registry
// hands out clones so callers can never mutate shared state outside the
// registry lock.
func (s *Session) Clone() Session {
	c := *s
	c.Players = make([]Player, len(s.Players))
	copy(c.Players, s.Players)
	return c
}
