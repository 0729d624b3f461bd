package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-konvo/internal/logger"
)

const (
	kvTable         = "kv_entries"
	kvNameColumn    = "name"
	kvValueColumn   = "value"
	kvUpdatedColumn = "updated_at"

	lockedWriteAttempts = 3
	lockedWriteBackoff  = 20 * time.Millisecond
)

// sqliteStore is the SQLite implementation of [KeyValueStore]. Queries are
// rendered with squirrel using '?' placeholders.
type sqliteStore struct {
	db      *DB
	builder sq.StatementBuilderType
	logger  *logger.Logger
}

// NewSQLiteStore returns a [KeyValueStore] over an open and migrated
// database.
func NewSQLiteStore(db *DB, log *logger.Logger) KeyValueStore {
	return &sqliteStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger:  log,
	}
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	query, args, err := s.builder.
		Select(kvValueColumn).
		From(kvTable).
		Where(sq.Eq{kvNameColumn: key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		s.logger.Err(err).Str("func", "sqliteStore.Get").Str("key", key).Msg("error reading value")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, nil
}

func (s *sqliteStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}

	query, args, err := s.builder.
		Insert(kvTable).
		Columns(kvNameColumn, kvValueColumn, kvUpdatedColumn).
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT(" + kvNameColumn + ") DO UPDATE SET " +
			kvValueColumn + " = excluded." + kvValueColumn + ", " +
			kvUpdatedColumn + " = excluded." + kvUpdatedColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err = s.exec(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "sqliteStore.Set").Str("key", key).Msg("error writing value")
		return err
	}

	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	query, args, err := s.builder.
		Delete(kvTable).
		Where(sq.Eq{kvNameColumn: key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err = s.exec(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "sqliteStore.Delete").Str("key", key).Msg("error deleting value")
		return err
	}

	return nil
}

func (s *sqliteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	selectKeys := s.builder.
		Select(kvNameColumn).
		From(kvTable).
		OrderBy(kvNameColumn)
	if prefix != "" {
		// a byte range instead of LIKE: LIKE ignores ASCII case and treats
		// '%' and '_' in the prefix as wildcards
		selectKeys = selectKeys.Where(sq.And{
			sq.GtOrEq{kvNameColumn: prefix},
			sq.Lt{kvNameColumn: prefixUpperBound(prefix)},
		})
	}

	query, args, err := selectKeys.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Err(err).Str("func", "sqliteStore.Keys").Str("prefix", prefix).Msg("error listing keys")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		keys = append(keys, key)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return keys, nil
}

// prefixUpperBound returns the smallest string greater than every key that
// starts with prefix. Keys are valid UTF-8, which never holds the byte 0xff.
func prefixUpperBound(prefix string) string {
	return prefix + "\xff"
}

// exec runs a write statement, retrying while the database is locked by
// another connection.
func (s *sqliteStore) exec(ctx context.Context, query string, args ...any) error {
	backoff := retry.WithMaxRetries(lockedWriteAttempts, retry.NewExponential(lockedWriteBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query, args...)
		if err == nil {
			return nil
		}
		if s.db.errorClassificator.Classify(err) == Retryable {
			s.logger.Warn().Err(err).Str("func", "sqliteStore.exec").Msg("database is busy, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
