package lfg

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mkaric/squadup/internal/modules/core"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/eskrenkovic/tql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SessionStore persists session rows for crash recovery. It never
// hard-deletes - Deactivate flips the is_active flag.
type SessionStore struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ Store = (*SessionStore)(nil)

func NewSessionStore(db *sql.DB, logger *zap.Logger) *SessionStore {
	return &SessionStore{db: db, logger: logger}
}

type sessionRow struct {
	ID               string         `db:"id"`
	CreatorID        string         `db:"creator_id"`
	GuildID          string         `db:"guild_id"`
	ChannelID        string         `db:"channel_id"`
	MessageID        sql.NullString `db:"message_id"`
	Game             string         `db:"game"`
	Gamemode         string         `db:"gamemode"`
	PlayersNeeded    int            `db:"players_needed"`
	Info             sql.NullString `db:"info"`
	Status           string         `db:"status"`
	CurrentPlayers   []byte         `db:"current_players"`
	ConfirmedPlayers []byte         `db:"confirmed_players"`
	VoiceChannelID   sql.NullString `db:"voice_channel_id"`
	CreatedAt        time.Time      `db:"created_at"`
	ExpiresAt        time.Time      `db:"expires_at"`
	IsActive         bool           `db:"is_active"`
}

func (s *SessionStore) Upsert(ctx context.Context, session domain.Session) error {
	row, err := toRow(session)
	if err != nil {
		return err
	}

	const stmt = `
		INSERT INTO lfg_session (
			id, creator_id, guild_id, channel_id, message_id,
			game, gamemode, players_needed, info, status,
			current_players, confirmed_players, voice_channel_id,
			created_at, expires_at, is_active
		)
		VALUES (
			:id, :creator_id, :guild_id, :channel_id, :message_id,
			:game, :gamemode, :players_needed, :info, :status,
			:current_players, :confirmed_players, :voice_channel_id,
			:created_at, :expires_at, :is_active
		)
		ON CONFLICT (id)
		DO
		UPDATE
		SET creator_id=:creator_id, channel_id=:channel_id, message_id=:message_id,
			status=:status, current_players=:current_players,
			voice_channel_id=:voice_channel_id, is_active=:is_active
		WHERE lfg_session.id=:id;`

	_, err = tql.Exec(ctx, s.db, stmt, row)
	return err
}

// DeactivateBatch soft-deletes several rows in one transaction. Used by
// the startup restore when it finds rows that expired while the process
// was down.
func (s *SessionStore) DeactivateBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		const stmt = `
			UPDATE
				lfg_session
			SET
				is_active = false
			WHERE
				id = $1;`

		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return errors.Wrapf(err, "deactivate session %s", id)
			}
		}
		return nil
	})
}

func (s *SessionStore) Deactivate(ctx context.Context, id string) error {
	const stmt = `
		UPDATE
			lfg_session
		SET
			is_active = false
		WHERE
			id = $1;`

	_, err := tql.Exec(ctx, s.db, stmt, id)
	return err
}

// LoadActive returns every session row still marked active. Malformed or
// partially written rows are tolerated: a bad player array decodes to an
// empty roster instead of failing the whole restore.
func (s *SessionStore) LoadActive(ctx context.Context) ([]domain.Session, error) {
	const query = `
		SELECT
			*
		FROM
			lfg_session
		WHERE
			is_active = true;`

	rows, err := tql.Query[sessionRow](ctx, s.db, query)
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, s.fromRow(row))
	}
	return sessions, nil
}

func toRow(s domain.Session) (sessionRow, error) {
	players, err := json.Marshal(s.Players)
	if err != nil {
		return sessionRow{}, err
	}

	// Reserved column - persisted as an empty array, never populated.
	confirmed := []byte("[]")

	return sessionRow{
		ID:               s.ID,
		CreatorID:        s.CreatorID,
		GuildID:          s.GuildID,
		ChannelID:        s.ChannelID,
		MessageID:        nullString(s.MessageID),
		Game:             s.Game,
		Gamemode:         s.Gamemode,
		PlayersNeeded:    s.PlayersNeeded,
		Info:             nullString(s.Info),
		Status:           string(s.Status),
		CurrentPlayers:   players,
		ConfirmedPlayers: confirmed,
		VoiceChannelID:   nullString(s.VoiceChannelID),
		CreatedAt:        s.CreatedAt,
		ExpiresAt:        s.ExpiresAt,
		IsActive:         true,
	}, nil
}

func (s *SessionStore) fromRow(row sessionRow) domain.Session {
	players := []domain.Player{}
	if len(row.CurrentPlayers) > 0 {
		if err := json.Unmarshal(row.CurrentPlayers, &players); err != nil {
			s.logger.Warn("malformed player array in session row, defaulting to empty",
				zap.String("session_id", row.ID), zap.Error(err))
			players = []domain.Player{}
		}
	}

	return domain.Session{
		ID:             row.ID,
		CreatorID:      row.CreatorID,
		GuildID:        row.GuildID,
		ChannelID:      row.ChannelID,
		MessageID:      row.MessageID.String,
		Game:           row.Game,
		Gamemode:       row.Gamemode,
		PlayersNeeded:  row.PlayersNeeded,
		Info:           row.Info.String,
		Status:         domain.Status(row.Status),
		Players:        players,
		VoiceChannelID: row.VoiceChannelID.String,
		CreatedAt:      row.CreatedAt,
		ExpiresAt:      row.ExpiresAt,
	}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
