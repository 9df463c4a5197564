package config

import (
	"path"
	"time"

	"github.com/mkaric/squadup/internal/env"

	"go.uber.org/zap"
)

const (
	DiscordTokenEnv = "DISCORD_TOKEN"
	DatabaseURLEnv  = "DATABASE_URL"
	RootPathEnv     = "ROOT_PATH"
	HealthPortEnv   = "HEALTH_PORT"

	SessionTTLEnv     = "SESSION_TTL"
	EmptyRoomDelayEnv = "EMPTY_ROOM_DELAY"
	SweepIntervalEnv  = "SWEEP_INTERVAL"
)

type Config struct {
	Logger *zap.Logger

	DiscordToken   string
	DatabaseURL    string
	MigrationsPath string
	HealthPort     int

	// SessionTTL is how long an unfilled session lives. EmptyRoomDelay is
	// the grace period before an abandoned voice room is deleted.
	SessionTTL     time.Duration
	EmptyRoomDelay time.Duration
	SweepInterval  time.Duration
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, err
	}

	token, err := env.GetString(DiscordTokenEnv)
	if err != nil {
		return Config{}, err
	}

	dbURL, err := env.GetString(DatabaseURLEnv)
	if err != nil {
		return Config{}, err
	}

	rootPath := env.GetStringOrDefault(RootPathEnv, ".")

	healthPort, err := env.GetIntOrDefault(HealthPortEnv, 8080)
	if err != nil {
		return Config{}, err
	}

	sessionTTL, err := env.GetDurationOrDefault(SessionTTLEnv, 30*time.Minute)
	if err != nil {
		return Config{}, err
	}

	emptyRoomDelay, err := env.GetDurationOrDefault(EmptyRoomDelayEnv, time.Minute)
	if err != nil {
		return Config{}, err
	}

	sweepInterval, err := env.GetDurationOrDefault(SweepIntervalEnv, 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Logger:         logger,
		DiscordToken:   token,
		DatabaseURL:    dbURL,
		MigrationsPath: path.Join(rootPath, "db", "migrations"),
		HealthPort:     healthPort,
		SessionTTL:     sessionTTL,
		EmptyRoomDelay: emptyRoomDelay,
		SweepInterval:  sweepInterval,
	}, nil
}
