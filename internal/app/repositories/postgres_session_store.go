package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/visitportal/internal/db"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
	"github.com/yigit/visitportal/internal/pkg/dberrors"
	"github.com/yigit/visitportal/internal/pkg/logger"
)

const sessionsTable = "portal_sessions"

// PostgresSessionStore keeps session records in PostgreSQL
type PostgresSessionStore struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPostgresSessionStore creates a new PostgresSessionStore
func NewPostgresSessionStore(database *db.PostgresDB) *PostgresSessionStore {
	return &PostgresSessionStore{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get loads a session record by id
func (r *PostgresSessionStore) Get(ctx context.Context, id string) (*SessionRecord, error) {
	sql, args, err := r.sb.Select("id", "identity", "api_cookies", "flashes", "setup_prompted", "confirmed_at", "generation", "updated_at").
		From(sessionsTable).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get session SQL")
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	var (
		rec                        SessionRecord
		identity, cookies, flashes []byte
	)
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&rec.ID, &identity, &cookies, &flashes, &rec.SetupPrompted, &rec.ConfirmedAt, &rec.Generation, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error retrieving session: %w", dberrors.Classify(err))
	}

	if err := unmarshalNullable(identity, &rec.Identity); err != nil {
		return nil, fmt.Errorf("error decoding session identity: %w", err)
	}
	if err := unmarshalNullable(cookies, &rec.APICookies); err != nil {
		return nil, fmt.Errorf("error decoding session cookies: %w", err)
	}
	if err := unmarshalNullable(flashes, &rec.Flashes); err != nil {
		return nil, fmt.Errorf("error decoding session flashes: %w", err)
	}
	return &rec, nil
}

// Set upserts a session record
func (r *PostgresSessionStore) Set(ctx context.Context, record *SessionRecord) error {
	if record == nil || record.ID == "" {
		return apperrors.NewBadRequestError("session record requires an id")
	}

	var identity []byte
	if record.Identity != nil {
		b, err := json.Marshal(record.Identity)
		if err != nil {
			return fmt.Errorf("error encoding session identity: %w", err)
		}
		identity = b
	}
	cookies, err := json.Marshal(nonNilMap(record.APICookies))
	if err != nil {
		return fmt.Errorf("error encoding session cookies: %w", err)
	}
	flashes, err := json.Marshal(nonNilFlashes(record.Flashes))
	if err != nil {
		return fmt.Errorf("error encoding session flashes: %w", err)
	}

	now := time.Now()
	sql, args, err := r.sb.Insert(sessionsTable).
		Columns("id", "identity", "api_cookies", "flashes", "setup_prompted", "confirmed_at", "generation", "updated_at").
		Values(record.ID, identity, cookies, flashes, record.SetupPrompted, record.ConfirmedAt, record.Generation, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			identity = EXCLUDED.identity,
			api_cookies = EXCLUDED.api_cookies,
			flashes = EXCLUDED.flashes,
			setup_prompted = EXCLUDED.setup_prompted,
			confirmed_at = EXCLUDED.confirmed_at,
			generation = EXCLUDED.generation,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert session SQL")
		return fmt.Errorf("failed to build upsert session query: %w", err)
	}

	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		logger.Error().Err(err).Str("sessionID", record.ID).Msg("Error executing upsert session query")
		return fmt.Errorf("error saving session: %w", dberrors.Classify(err))
	}
	record.UpdatedAt = now
	return nil
}

// Clear deletes a session record
func (r *PostgresSessionStore) Clear(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete(sessionsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete session SQL")
		return fmt.Errorf("failed to build delete session query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("sessionID", id).Msg("Error executing delete session query")
		return fmt.Errorf("error deleting session: %w", dberrors.Classify(err))
	}
	return nil
}

// PurgeBefore deletes records not updated since cutoff
func (r *PostgresSessionStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := r.sb.Delete(sessionsTable).
		Where(squirrel.Lt{"updated_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge sessions query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Time("cutoff", cutoff).Msg("Error purging sessions")
		return 0, fmt.Errorf("error purging sessions: %w", dberrors.Classify(err))
	}
	return tag.RowsAffected(), nil
}

func unmarshalNullable(data []byte, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilFlashes(f []Flash) []Flash {
	if f == nil {
		return []Flash{}
	}
	return f
}
