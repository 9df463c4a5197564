package commands

import (
	"context"
	"sync"
	"time"

	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"go.uber.org/zap"
)

type stubStore struct {
	mu          sync.Mutex
	upserted    []domain.Session
	deactivated []string
}

func (f *stubStore) Upsert(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, s)
	return nil
}

func (f *stubStore) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *stubStore) DeactivateBatch(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, ids...)
	return nil
}

func (f *stubStore) LoadActive(context.Context) ([]domain.Session, error) {
	return nil, nil
}

func (f *stubStore) lastUpserted() (domain.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.upserted) == 0 {
		return domain.Session{}, false
	}
	return f.upserted[len(f.upserted)-1], true
}

type stubProvisioner struct {
	mu           sync.Mutex
	provisions   int
	destroyed    []string
	provisionErr error

	// beforeRecord runs after the room is created but before the result is
	// recorded in the registry, mimicking a suspension point.
	beforeRecord func()
}

func (f *stubProvisioner) ProvisionRoom(_ context.Context, s domain.Session) (string, error) {
	f.mu.Lock()
	f.provisions++
	err := f.provisionErr
	hook := f.beforeRecord
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	if hook != nil {
		hook()
	}
	return "vc-" + s.ID, nil
}

func (f *stubProvisioner) DestroyRoom(_ context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, roomID)
	return nil
}

func (f *stubProvisioner) provisionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.provisions
}

type stubRenderer struct {
	mu       sync.Mutex
	posted   int
	updated  []domain.Session
	deleted  []domain.Session
	notified []domain.Session
	postErr  error
}

func (f *stubRenderer) PostCard(_ context.Context, s domain.Session) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return "", "", f.postErr
	}
	f.posted++
	return s.ChannelID, "msg-" + s.ID, nil
}

func (f *stubRenderer) UpdateCard(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, s)
	return nil
}

func (f *stubRenderer) DeleteCard(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, s)
	return nil
}

func (f *stubRenderer) NotifyFilled(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, s)
	return nil
}

func (f *stubRenderer) notifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notified)
}

// harness wires a full command stack against in-memory collaborators.
type harness struct {
	registry    *lfg.Registry
	scheduler   *lfg.Scheduler
	store       *stubStore
	provisioner *stubProvisioner
	renderer    *stubRenderer
	lifecycle   *lfg.Lifecycle

	create *CreateSessionCommandHandler
	join   *JoinSessionCommandHandler
	leave  *LeaveSessionCommandHandler
	end    *EndSessionCommandHandler
	quick  *QuickJoinCommandHandler
}

func newHarness(ttl time.Duration) *harness {
	registry := lfg.NewRegistry()
	scheduler := lfg.NewScheduler()
	store := &stubStore{}
	provisioner := &stubProvisioner{}
	renderer := &stubRenderer{}
	logger := zap.NewNop()

	lifecycle := &lfg.Lifecycle{
		Registry:    registry,
		Scheduler:   scheduler,
		Store:       store,
		Provisioner: provisioner,
		Renderer:    renderer,
		Logger:      logger,
	}

	join := NewJoinSessionCommandHandler(registry, scheduler, store, provisioner, renderer, logger)

	return &harness{
		registry:    registry,
		scheduler:   scheduler,
		store:       store,
		provisioner: provisioner,
		renderer:    renderer,
		lifecycle:   lifecycle,
		create:      NewCreateSessionCommandHandler(registry, scheduler, store, renderer, lifecycle, ttl, logger),
		join:        join,
		leave:       NewLeaveSessionCommandHandler(registry, store, renderer, lifecycle, logger),
		end:         NewEndSessionCommandHandler(registry, lifecycle, logger),
		quick:       NewQuickJoinCommandHandler(join),
	}
}

func (h *harness) stop() {
	h.scheduler.Stop()
}

func createCommand(userID string, needed int) CreateSessionCommand {
	return CreateSessionCommand{
		UserID:        userID,
		Username:      "user-" + userID,
		GuildID:       "guild-1",
		ChannelID:     "channel-1",
		Game:          "Valorant",
		Gamemode:      "Competitive",
		PlayersNeeded: needed,
	}
}
