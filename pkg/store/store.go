// Package store implements the typed entity store over the local SQLite
// database: CRUD and indexed range queries per collection, cross-collection
// transactions, and change signaling for live queries.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	pkgdb "github.com/QinMou000/SuiJi/pkg/db"
	"github.com/QinMou000/SuiJi/pkg/live"
)

// Store is the process-wide handle to the journal database. Open it once at
// startup and inject it into callers; there is no module-level global.
type Store struct {
	db  *sql.DB
	bus *live.Bus
}

// Open opens (creating if necessary) the SQLite database at path, applies
// pending schema migrations, and returns a ready store. A migration failure
// is fatal: no handle is returned and the database stays at its pre-failure
// version, to be retried on the next open.
func Open(path string) (*Store, error) {
	conn, err := pkgdb.OpenDBConnection(path, true, "NORMAL")
	if err != nil {
		return nil, err
	}

	if err := pkgdb.UpgradeDB(context.Background(), conn, path, pkgdb.TargetSchemaVersion); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database '%s': %w", path, err)
	}

	return &Store{db: conn, bus: live.NewBus()}, nil
}

// Bus returns the change-signal bus for live queries.
func (s *Store) Bus() *live.Bus {
	return s.bus
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	// TRUNCATE mode waits for transactions and writes the WAL back to the main DB.
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: WAL checkpoint failed during close: %v\n", err)
	}
	return s.db.Close()
}

// WithTransaction runs fn inside a single database transaction spanning the
// given collections. Any error from fn rolls every write back and propagates
// to the caller unmodified. Change signals for the named collections publish
// only after a successful commit, so subscribers never observe a partial
// multi-collection write.
func (s *Store) WithTransaction(ctx context.Context, cols []live.Collection, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if len(cols) > 0 {
		s.bus.Publish(cols...)
	}
	return nil
}
