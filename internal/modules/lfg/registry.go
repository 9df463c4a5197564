package lfg

import (
	"strings"
	"sync"

	"github.com/mkaric/squadup/internal/modules/lfg/domain"
)

// Registry is the authoritative in-memory table of live sessions plus the
// user->session index enforcing "one active session per user". One mutex
// guards both maps; every compound transition (create, join and the fill
// flip, leave and ownership transfer, remove) runs atomically under it.
// All methods hand out clones - callers never see shared state.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	byUser   map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*domain.Session),
		byUser:   make(map[string]string),
	}
}

// JoinResult reports the session state after a join and whether this join
// was the one that filled it. Exactly one join can observe Filled for a
// given session because the flip happens under the registry lock.
type JoinResult struct {
	Session domain.Session
	Filled  bool
}

// LeaveResult reports the session state after a leave. When Empty is set
// the session has already been removed from the registry and the index.
type LeaveResult struct {
	Session        domain.Session
	Empty          bool
	CreatorChanged bool
}

// Create inserts a new session with its creator as sole player and indexes
// the creator. Fails with DuplicateSessionError if the creator already
// belongs to a session.
func (r *Registry) Create(s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byUser[s.CreatorID]; ok {
		return domain.DuplicateSessionError{UserID: s.CreatorID, SessionID: existing}
	}

	stored := s.Clone()
	r.sessions[s.ID] = &stored
	r.byUser[s.CreatorID] = s.ID

	return nil
}

// Restore inserts a session rebuilt from durable storage and indexes every
// listed participant. Startup only - it does not check for duplicates.
func (r *Registry) Restore(s domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := s.Clone()
	r.sessions[s.ID] = &stored
	for _, p := range s.Players {
		r.byUser[p.ID] = s.ID
	}
}

func (r *Registry) Get(id string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return s.Clone(), true
}

func (r *Registry) All() []domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s.Clone())
	}
	return all
}

// Remove deletes the session and clears the index entry of every
// participant. Returns the removed session, or false if it was already
// gone (a benign race with another cleanup path).
func (r *Registry) Remove(id string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}

	delete(r.sessions, id)
	for _, p := range s.Players {
		delete(r.byUser, p.ID)
	}

	return s.Clone(), true
}

// SessionFor resolves a user's active session through the index.
func (r *Registry) SessionFor(userID string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUser[userID]
	if !ok {
		return domain.Session{}, false
	}

	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return s.Clone(), true
}

// Join appends a player to a waiting session and indexes them. When the
// join brings the roster to capacity the status flips to full in the same
// critical section and Filled is reported to exactly one caller.
func (r *Registry) Join(id string, p domain.Player) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return JoinResult{}, domain.NotFoundError{SessionID: id}
	}

	if existing, ok := r.byUser[p.ID]; ok {
		return JoinResult{}, domain.DuplicateSessionError{UserID: p.ID, SessionID: existing}
	}

	if s.Status != domain.StatusWaiting || s.AtCapacity() {
		return JoinResult{}, domain.CapacityError{SessionID: id}
	}

	s.Players = append(s.Players, p)
	r.byUser[p.ID] = id

	filled := s.AtCapacity()
	if filled {
		s.Status = domain.StatusFull
	}

	return JoinResult{Session: s.Clone(), Filled: filled}, nil
}

// Leave removes a player and clears their index entry. If the leaving
// player was the creator and others remain, ownership transfers to the
// first remaining player. If the roster empties, the session is removed
// from the registry in the same critical section - an empty session never
// exists observably.
func (r *Registry) Leave(id, userID string) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return LeaveResult{}, domain.NotFoundError{SessionID: id}
	}

	idx := -1
	for i, p := range s.Players {
		if p.ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return LeaveResult{}, domain.NotFoundError{SessionID: id, UserID: userID}
	}

	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	delete(r.byUser, userID)

	if len(s.Players) == 0 {
		delete(r.sessions, id)
		return LeaveResult{Session: s.Clone(), Empty: true}, nil
	}

	creatorChanged := false
	if s.CreatorID == userID {
		s.CreatorID = s.Players[0].ID
		creatorChanged = true
	}

	return LeaveResult{Session: s.Clone(), CreatorChanged: creatorChanged}, nil
}

// SetVoiceChannel records the provisioned room id, at most once. Returns
// false if the session disappeared while the room was being created or a
// room was already recorded.
func (r *Registry) SetVoiceChannel(id, channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.VoiceChannelID != "" {
		return false
	}

	s.VoiceChannelID = channelID
	return true
}

// SetMessageRef records where the session card was posted. Returns the
// updated session, or false if it disappeared while the card was posting.
func (r *Registry) SetMessageRef(id, channelID, messageID string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}

	s.ChannelID = channelID
	s.MessageID = messageID
	return s.Clone(), true
}

// HasVoiceChannel reports whether any live session owns the given room.
func (r *Registry) HasVoiceChannel(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.VoiceChannelID == channelID {
			return true
		}
	}
	return false
}

// QuickMatch picks the best open session in a guild for the requested
// game: a session matching the preferred gamemode if any exists, otherwise
// any open session of that game. Ties break on earliest CreatedAt so the
// result is deterministic regardless of map iteration order.
func (r *Registry) QuickMatch(guildID, game, preferredMode string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best, bestPreferred *domain.Session
	for _, s := range r.sessions {
		if s.GuildID != guildID || s.Status != domain.StatusWaiting || s.AtCapacity() {
			continue
		}
		if s.Game != game {
			continue
		}

		if preferredMode != "" && strings.EqualFold(s.Gamemode, preferredMode) {
			if bestPreferred == nil || s.CreatedAt.Before(bestPreferred.CreatedAt) {
				bestPreferred = s
			}
		}
		if best == nil || s.CreatedAt.Before(best.CreatedAt) {
			best = s
		}
	}

	if bestPreferred != nil {
		return bestPreferred.Clone(), true
	}
	if best != nil {
		return best.Clone(), true
	}
	return domain.Session{}, false
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
