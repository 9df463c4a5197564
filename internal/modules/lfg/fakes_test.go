package lfg

import (
	"context"
	"sync"

	"github.com/mkaric/squadup/internal/modules/lfg/domain"
)

type fakeStore struct {
	mu          sync.Mutex
	active      []domain.Session
	upserted    []domain.Session
	deactivated []string
	loadErr     error
	upsertErr   error
}

func (f *fakeStore) Upsert(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, s)
	return nil
}

func (f *fakeStore) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeStore) DeactivateBatch(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deactivated = append(f.deactivated, ids...)
	return nil
}

func (f *fakeStore) LoadActive(_ context.Context) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.active, nil
}

func (f *fakeStore) deactivatedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.deactivated))
	copy(out, f.deactivated)
	return out
}

type fakeProvisioner struct {
	mu           sync.Mutex
	provisioned  []string
	destroyed    []string
	provisionErr error
	nextRoomID   string
}

func (f *fakeProvisioner) ProvisionRoom(_ context.Context, s domain.Session) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.provisionErr != nil {
		return "", f.provisionErr
	}

	roomID := f.nextRoomID
	if roomID == "" {
		roomID = "vc-" + s.ID
	}
	f.provisioned = append(f.provisioned, roomID)
	return roomID, nil
}

func (f *fakeProvisioner) DestroyRoom(_ context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.destroyed = append(f.destroyed, roomID)
	return nil
}

func (f *fakeProvisioner) destroyedRooms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.destroyed))
	copy(out, f.destroyed)
	return out
}

type fakeRenderer struct {
	mu       sync.Mutex
	posted   []domain.Session
	updated  []domain.Session
	deleted  []domain.Session
	notified []domain.Session
	postErr  error
}

func (f *fakeRenderer) PostCard(_ context.Context, s domain.Session) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.postErr != nil {
		return "", "", f.postErr
	}
	f.posted = append(f.posted, s)
	return s.ChannelID, "msg-" + s.ID, nil
}

func (f *fakeRenderer) UpdateCard(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updated = append(f.updated, s)
	return nil
}

func (f *fakeRenderer) DeleteCard(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, s)
	return nil
}

func (f *fakeRenderer) NotifyFilled(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notified = append(f.notified, s)
	return nil
}

func (f *fakeRenderer) deletedCards() []domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Session, len(f.deleted))
	copy(out, f.deleted)
	return out
}
