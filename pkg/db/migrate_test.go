package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver, needed for tests
)

// checkTableExists is a test helper to verify if a table exists in the database.
func checkTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()
	query := fmt.Sprintf("SELECT name FROM sqlite_master WHERE type='table' AND name='%s';", tableName)
	var name string
	err := db.QueryRow(query).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			t.Errorf("Table '%s' does not exist, but it should.", tableName)
			return
		}
		t.Fatalf("Error checking if table '%s' exists: %v", tableName, err)
	}
	if name != tableName {
		t.Errorf("Table check query returned '%s' but expected '%s'", name, tableName)
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDBConnection(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("OpenDBConnection failed for in-memory DB: %v", err)
	}
	// The pool must not spin up a second connection: each in-memory
	// connection is its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpgradeDB_NewDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion)
	if err != nil {
		t.Fatalf("UpgradeDB failed on a new in-memory database: %v", err)
	}

	expectedTables := []string{"suiji_versions", "notes", "media", "tags", "note_tags", "transactions", "categories", "accounts", "countdowns"}
	for _, tableName := range expectedTables {
		checkTableExists(t, db, tableName)
	}

	version, err := GetComponentSchemaVersion(db, StoreComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed after UpgradeDB: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", StoreComponent, TargetSchemaVersion, version)
	}

	if got := countRows(t, db, "categories"); got != int64(len(DefaultCategories)) {
		t.Errorf("Expected %d seeded categories, got %d", len(DefaultCategories), got)
	}
	if got := countRows(t, db, "accounts"); got != int64(len(DefaultAccounts)) {
		t.Errorf("Expected %d seeded accounts, got %d", len(DefaultAccounts), got)
	}
}

func TestUpgradeDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("First UpgradeDB failed: %v", err)
	}

	categoriesBefore := countRows(t, db, "categories")
	accountsBefore := countRows(t, db, "accounts")

	if err := UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("Second UpgradeDB failed: %v", err)
	}

	if got := countRows(t, db, "categories"); got != categoriesBefore {
		t.Errorf("Category count changed from %d to %d after re-running an up-to-date migration", categoriesBefore, got)
	}
	if got := countRows(t, db, "accounts"); got != accountsBefore {
		t.Errorf("Account count changed from %d to %d after re-running an up-to-date migration", accountsBefore, got)
	}

	version, err := GetComponentSchemaVersion(db, StoreComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected version %d after re-run, got %d", TargetSchemaVersion, version)
	}
}

func TestUpgradeDB_TitleBackfill(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Bring the database to version 1 only: notes exist, no title column yet.
	if err := UpgradeDB(ctx, db, ":memory:", 1); err != nil {
		t.Fatalf("UpgradeDB to version 1 failed: %v", err)
	}

	insert := `INSERT INTO notes (id, content, content_format, created_at, updated_at) VALUES (?, ?, 'plain', 1000, 1000)`
	seedNotes := map[string]string{
		"n1": "Hello\nWorld",
		"n2": "\nbody only",
		"n3": "这是一条非常长的第一行内容超过二十个字符需要截断",
	}
	for id, content := range seedNotes {
		if _, err := db.Exec(insert, id, content); err != nil {
			t.Fatalf("Failed to insert v1 note %s: %v", id, err)
		}
	}

	if err := UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB to target failed: %v", err)
	}

	wantTitles := map[string]string{
		"n1": "Hello",
		"n2": untitledPlaceholder,
		"n3": string([]rune(seedNotes["n3"])[:titleMaxRunes]),
	}
	for id, want := range wantTitles {
		var got string
		if err := db.QueryRow(`SELECT title FROM notes WHERE id = ?`, id).Scan(&got); err != nil {
			t.Fatalf("Failed to read backfilled title for %s: %v", id, err)
		}
		if got != want {
			t.Errorf("Note %s: expected backfilled title %q, got %q", id, want, got)
		}
	}
}

func TestSeedDefaults_IndependentChecks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}

	// A user-added category must survive re-seeding.
	if _, err := db.Exec(`INSERT INTO categories (id, name, icon, type, color, is_default) VALUES ('c_custom', '自定义', 'Star', 'expense', '#000000', 0)`); err != nil {
		t.Fatalf("Failed to insert custom category: %v", err)
	}
	categoriesBefore := countRows(t, db, "categories")

	// Wipe accounts only; the category check and the account check are
	// independent of each other.
	if _, err := db.Exec(`DELETE FROM accounts`); err != nil {
		t.Fatalf("Failed to delete accounts: %v", err)
	}

	seededCats, seededAccts, err := SeedDefaults(ctx, db)
	if err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	if seededCats {
		t.Errorf("SeedDefaults reseeded categories even though the collection was non-empty")
	}
	if !seededAccts {
		t.Errorf("SeedDefaults did not reseed the emptied account collection")
	}

	if got := countRows(t, db, "categories"); got != categoriesBefore {
		t.Errorf("Category count changed from %d to %d across SeedDefaults", categoriesBefore, got)
	}
	if got := countRows(t, db, "accounts"); got != int64(len(DefaultAccounts)) {
		t.Errorf("Expected %d reseeded accounts, got %d", len(DefaultAccounts), got)
	}

	var name string
	if err := db.QueryRow(`SELECT name FROM categories WHERE id = 'c_custom'`).Scan(&name); err != nil {
		t.Fatalf("Custom category lost after SeedDefaults: %v", err)
	}
}

func TestUpgradeDB_NewerVersionUnsupported(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Exec(versionsTableSQL); err != nil {
		t.Fatalf("Failed to create versions table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO suiji_versions (component, version) VALUES (?, ?)`, StoreComponent, TargetSchemaVersion+1); err != nil {
		t.Fatalf("Failed to set future version: %v", err)
	}

	err := UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion)
	if err == nil {
		t.Fatalf("UpgradeDB should have failed for a newer DB version, but it did not")
	}
	if !strings.Contains(err.Error(), "newer than application's target schema version") {
		t.Errorf("UpgradeDB error message mismatch, got: %v", err)
	}

	currentVersion, getErr := GetComponentSchemaVersion(db, StoreComponent)
	if getErr != nil {
		t.Fatalf("GetComponentSchemaVersion failed after attempted upgrade: %v", getErr)
	}
	if currentVersion != TargetSchemaVersion+1 {
		t.Errorf("Database schema version changed from %d to %d after a failed upgrade attempt that should have been a no-op.", TargetSchemaVersion+1, currentVersion)
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"Hello\nWorld", "Hello"},
		{"", untitledPlaceholder},
		{"\nsecond line", untitledPlaceholder},
		{"short", "short"},
		{"一二三四五六七八九十一二三四五六七八九十超出", "一二三四五六七八九十一二三四五六七八九十"},
	}
	for _, c := range cases {
		if got := DeriveTitle(c.content); got != c.want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", c.content, got, c.want)
		}
	}
}
