package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/mkaric/squadup/internal/config"
	"github.com/mkaric/squadup/internal/discord"
	"github.com/mkaric/squadup/internal/health"
	"github.com/mkaric/squadup/internal/modules/core"
	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/commands"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const httpShutdownTimeout = 5 * time.Second

// BotServer is the composition root: it owns the database, the in-memory
// session state, the Discord gateway and the health endpoint, and wires
// the command handlers into the mediator.
type BotServer struct {
	config config.Config

	db        *sql.DB
	scheduler *lfg.Scheduler
	gateway   *discord.Gateway
	health    *http.Server
	sweeper   *lfg.Sweeper

	stopSweeper context.CancelFunc
}

func NewBotServer(cfg config.Config) (*BotServer, error) {
	baseCtx := context.Background()
	logger := cfg.Logger

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(baseCtx); err != nil {
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	registry := lfg.NewRegistry()
	scheduler := lfg.NewScheduler()
	store := lfg.NewSessionStore(db, logger)

	discordSession, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	renderer := discord.NewRenderer(discordSession, logger)
	provisioner := discord.NewProvisioner(discordSession, logger)

	lifecycle := &lfg.Lifecycle{
		Registry:    registry,
		Scheduler:   scheduler,
		Store:       store,
		Provisioner: provisioner,
		Renderer:    renderer,
		Logger:      logger,
	}

	// handler registration

	createHandler := commands.NewCreateSessionCommandHandler(
		registry, scheduler, store, renderer, lifecycle, cfg.SessionTTL, logger,
	)
	err = mediator.RegisterRequestHandler[commands.CreateSessionCommand, commands.CreateSessionResponse](
		createHandler,
	)
	if err != nil {
		return nil, err
	}

	joinHandler := commands.NewJoinSessionCommandHandler(
		registry, scheduler, store, provisioner, renderer, logger,
	)
	err = mediator.RegisterRequestHandler[commands.JoinSessionCommand, commands.JoinSessionResponse](
		joinHandler,
	)
	if err != nil {
		return nil, err
	}

	quickJoinHandler := commands.NewQuickJoinCommandHandler(joinHandler)
	err = mediator.RegisterRequestHandler[commands.QuickJoinCommand, commands.JoinSessionResponse](
		quickJoinHandler,
	)
	if err != nil {
		return nil, err
	}

	leaveHandler := commands.NewLeaveSessionCommandHandler(
		registry, store, renderer, lifecycle, logger,
	)
	err = mediator.RegisterRequestHandler[commands.LeaveSessionCommand, commands.LeaveSessionResponse](
		leaveHandler,
	)
	if err != nil {
		return nil, err
	}

	endHandler := commands.NewEndSessionCommandHandler(registry, lifecycle, logger)
	err = mediator.RegisterRequestHandler[commands.EndSessionCommand, commands.EndSessionResponse](
		endHandler,
	)
	if err != nil {
		return nil, err
	}

	// Rebuild in-memory state before the gateway starts taking traffic.
	restorer := &lfg.Restorer{
		Store:     store,
		Registry:  registry,
		Scheduler: scheduler,
		Lifecycle: lifecycle,
		Logger:    logger,
	}
	if err := restorer.Restore(baseCtx); err != nil {
		return nil, err
	}

	gateway := discord.NewGateway(
		discordSession, registry, scheduler, provisioner, cfg.EmptyRoomDelay, logger,
	)

	sweeper := &lfg.Sweeper{
		Registry:  registry,
		Lifecycle: lifecycle,
		Interval:  cfg.SweepInterval,
		Logger:    logger,
	}

	return &BotServer{
		config:    cfg,
		db:        db,
		scheduler: scheduler,
		gateway:   gateway,
		health:    health.NewServer(cfg.HealthPort),
		sweeper:   sweeper,
	}, nil
}

func (s *BotServer) Start(ctx context.Context) error {
	if err := s.gateway.Start(ctx); err != nil {
		return err
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	s.stopSweeper = cancel
	go s.sweeper.Run(sweepCtx)

	go func() {
		if err := s.health.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.config.Logger.Error("health server failed", zap.Error(err))
		}
	}()

	s.config.Logger.Info("bot server started",
		zap.Int("health_port", s.config.HealthPort))

	return nil
}

func (s *BotServer) Stop() error {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}

	s.scheduler.Stop()

	if err := s.gateway.Stop(); err != nil {
		s.config.Logger.Warn("failed to close gateway", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := s.health.Shutdown(shutdownCtx); err != nil {
		s.config.Logger.Warn("failed to shut down health server", zap.Error(err))
	}

	return s.db.Close()
}
