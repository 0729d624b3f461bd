package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
)

// ClientStorage is the key-value store handed to the client services
// together with the database it owns.
type ClientStorage struct {
	KeyValueStore

	db *DB
}

// Close releases the underlying database. It is a no-op for the in-memory
// store.
func (c *ClientStorage) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// NewClientStorage initialises the client storage layer:
//  1. opens the SQLite file named by cfg.DB.DSN (or an in-memory store when
//     cfg.Ephemeral is set),
//  2. runs pending schema migrations,
//  3. wraps the store with value sealing when cfg.SealSecret is set.
func NewClientStorage(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorage, error) {
	log.Info().Bool("ephemeral", cfg.Ephemeral).Bool("sealed", cfg.SealSecret != "").Msg("creating client storage...")

	var (
		kv KeyValueStore
		db *DB
	)

	if cfg.Ephemeral {
		kv = NewMemoryStore()
	} else {
		var err error
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}

		if err = db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		kv = NewSQLiteStore(db, log)
	}

	if cfg.SealSecret != "" {
		sealed, err := NewSealedStore(kv, cfg.SealSecret)
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("sealing storage: %w", err)
		}
		kv = sealed
	}

	return &ClientStorage{KeyValueStore: kv, db: db}, nil
}
