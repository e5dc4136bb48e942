package db

// The schema evolves through ordered migration steps. Each constant below is
// the DDL for exactly one step; the step's optional data transform lives in
// migrate.go. Timestamps are stored as millisecond epoch integers.

const (
	// versionsTableSQL tracks the schema version per component. The journal
	// store is the only component today ('suijidb').
	versionsTableSQL = `
CREATE TABLE IF NOT EXISTS suiji_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at INTEGER DEFAULT (unixepoch() * 1000)
);
`

	// schemaV1 establishes the base note and media collections with indexes
	// on the creation/update timestamps.
	schemaV1 = `
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL DEFAULT '',
    content_format TEXT NOT NULL DEFAULT 'plain',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at);
CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at);

CREATE TABLE IF NOT EXISTS media (
    id TEXT PRIMARY KEY,
    note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
    media_type TEXT NOT NULL,
    payload TEXT NOT NULL DEFAULT '',
    link_metadata TEXT,
    duration_seconds INTEGER,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_media_note_id ON media(note_id);
CREATE INDEX IF NOT EXISTS idx_media_media_type ON media(media_type);
CREATE INDEX IF NOT EXISTS idx_media_created_at ON media(created_at);
`

	// schemaV2 adds the note title column. Existing rows are backfilled from
	// the first line of their content (see backfillNoteTitles).
	schemaV2 = `
ALTER TABLE notes ADD COLUMN title TEXT;

CREATE INDEX IF NOT EXISTS idx_notes_title ON notes(title);
`

	// schemaV3 adds the tag dictionary and the multi-valued tag index on
	// notes. note_tags.tag deliberately carries no foreign key to the
	// dictionary: notes reference tags by value, so removing a dictionary
	// row must not touch notes already carrying that string.
	schemaV3 = `
CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS note_tags (
    note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
    tag TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (note_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag);
`

	// schemaV4 adds the finance collections. Default categories and accounts
	// are seeded by the step's transform, guarded by emptiness checks.
	schemaV4 = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    amount REAL NOT NULL,
    type TEXT NOT NULL,
    category_id TEXT NOT NULL,
    account_id TEXT NOT NULL,
    date INTEGER NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type);
CREATE INDEX IF NOT EXISTS idx_transactions_category_id ON transactions(category_id);
CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);

CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '',
    is_default INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_categories_type ON categories(type);
CREATE INDEX IF NOT EXISTS idx_categories_is_default ON categories(is_default);

CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    balance REAL NOT NULL DEFAULT 0,
    icon TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_accounts_type ON accounts(type);
`

	// schemaV5 adds the countdown collection.
	schemaV5 = `
CREATE TABLE IF NOT EXISTS countdowns (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date INTEGER NOT NULL,
    type TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_countdowns_date ON countdowns(date);
CREATE INDEX IF NOT EXISTS idx_countdowns_type ON countdowns(type);
`
)
