package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
)

const (
	// TargetSchemaVersion is the highest schema version this version of the
	// code supports for the suijidb component.
	TargetSchemaVersion int64 = 5
	// StoreComponent is the name for the journal store database component.
	StoreComponent = "suijidb"

	// untitledPlaceholder is the literal title given to a note whose first
	// content line is empty during the title backfill.
	untitledPlaceholder = "无标题"

	// titleMaxRunes bounds backfilled titles.
	titleMaxRunes = 20
)

// Querier is the subset of *sql.DB and *sql.Tx the migration transforms and
// seeding helpers need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migration is one versioned schema step. SQL runs first, then the optional
// Transform, then the version bump — all inside a single transaction, so a
// crash mid-step never leaves a half-applied schema behind.
type Migration struct {
	Version   int64
	Name      string
	SQL       string
	Transform func(ctx context.Context, q Querier) error
}

// Migrations returns the ordered migration steps for the suijidb component.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "notes and media collections", SQL: schemaV1},
		{Version: 2, Name: "note titles", SQL: schemaV2, Transform: backfillNoteTitles},
		{Version: 3, Name: "tag dictionary and note tag index", SQL: schemaV3},
		{Version: 4, Name: "finance collections", SQL: schemaV4, Transform: seedDefaultsTransform},
		{Version: 5, Name: "countdown collection", SQL: schemaV5},
	}
}

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found, the versions table is
// uninitialized, or the table doesn't exist.
func GetComponentSchemaVersion(db *sql.DB, componentName string) (int64, error) {
	query := `SELECT version FROM suiji_versions WHERE component = ?;`
	row := db.QueryRow(query, componentName)

	var version int64
	err := row.Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "suiji_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// UpgradeDB applies the pending migration steps to bring the suijidb
// component up to appTargetSchemaVersion. A database already at or above a
// step's version skips it. Any step failure aborts the upgrade: the database
// stays at its pre-failure version and the error propagates, which makes the
// surrounding open fail rather than exposing a partially migrated schema.
// dbIdentifierForLog is used for logging purposes only.
func UpgradeDB(ctx context.Context, db *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64) error {
	currentDBVersion, err := GetComponentSchemaVersion(db, StoreComponent)
	if err != nil {
		return err
	}

	if currentDBVersion > appTargetSchemaVersion {
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", StoreComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}

	if currentDBVersion == appTargetSchemaVersion {
		fmt.Fprintf(os.Stderr, "Component %s in database '%s' is already up to date (schema version %d).\n", StoreComponent, dbIdentifierForLog, currentDBVersion)
		return nil
	}

	if _, err := db.ExecContext(ctx, versionsTableSQL); err != nil {
		return fmt.Errorf("failed to create versions table: %w", err)
	}

	for _, m := range Migrations() {
		if m.Version <= currentDBVersion || m.Version > appTargetSchemaVersion {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration to version %d (%s) failed for database '%s': %w", m.Version, m.Name, dbIdentifierForLog, err)
		}
		fmt.Fprintf(os.Stderr, "Component %s in database '%s' migrated to schema version %d (%s).\n", StoreComponent, dbIdentifierForLog, m.Version, m.Name)
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("schema statements: %w", err)
	}

	if m.Transform != nil {
		if err := m.Transform(ctx, tx); err != nil {
			return fmt.Errorf("data transform: %w", err)
		}
	}

	setVersionSQL := `
INSERT INTO suiji_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch() * 1000;`
	if _, err := tx.ExecContext(ctx, setVersionSQL, StoreComponent, m.Version); err != nil {
		return fmt.Errorf("failed to record version %d: %w", m.Version, err)
	}

	return tx.Commit()
}

// backfillNoteTitles derives a title for every note that lacks one. Reading
// the current row state (rather than assuming a prior schema) keeps the
// transform re-runnable.
func backfillNoteTitles(ctx context.Context, q Querier) error {
	rows, err := q.QueryContext(ctx, `SELECT id, content FROM notes WHERE title IS NULL OR title = ''`)
	if err != nil {
		return fmt.Errorf("failed to list untitled notes: %w", err)
	}
	defer rows.Close()

	type pending struct {
		id      string
		content string
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.content); err != nil {
			return fmt.Errorf("failed to scan untitled note: %w", err)
		}
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating untitled notes: %w", err)
	}

	for _, p := range todo {
		if _, err := q.ExecContext(ctx, `UPDATE notes SET title = ? WHERE id = ?`, DeriveTitle(p.content), p.id); err != nil {
			return fmt.Errorf("failed to backfill title for note %s: %w", p.id, err)
		}
	}
	return nil
}

// DeriveTitle returns the first line of content truncated to 20 runes, or
// the literal placeholder when the first line is empty.
func DeriveTitle(content string) string {
	firstLine := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		firstLine = content[:i]
	}
	if firstLine == "" {
		return untitledPlaceholder
	}
	r := []rune(firstLine)
	if len(r) > titleMaxRunes {
		r = r[:titleMaxRunes]
	}
	return string(r)
}

func seedDefaultsTransform(ctx context.Context, q Querier) error {
	_, _, err := SeedDefaults(ctx, q)
	return err
}
