package store

import (
	"github.com/QinMou000/SuiJi/pkg/blocks"
)

// Note is a journal entry. Content holds either freeform text/markdown
// (FormatPlain) or a JSON-serialized block sequence (FormatBlocks). Tags are
// referenced by value in insertion order; the order matters for display
// only, never for querying.
type Note struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Content   string        `json:"content"`
	Format    blocks.Format `json:"contentFormat"`
	Tags      []string      `json:"tags,omitempty"`
	CreatedAt int64         `json:"createdAt"`
	UpdatedAt int64         `json:"updatedAt"`
}

// MediaType enumerates the media attachment variants.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVoice MediaType = "voice"
	MediaLink  MediaType = "link"
)

// Media is a binary or link attachment owned by exactly one note. Payload is
// a base64 data URI for photo/voice rows and the raw URL for link rows.
// Deleting the parent note cascades to its media rows.
type Media struct {
	ID              string               `json:"id"`
	NoteID          string               `json:"noteId"`
	Type            MediaType            `json:"mediaType"`
	Payload         string               `json:"payload"`
	LinkMetadata    *blocks.LinkMetadata `json:"linkMetadata,omitempty"`
	DurationSeconds int                  `json:"durationSeconds,omitempty"`
	CreatedAt       int64                `json:"createdAt"`
}

// Tag is one row of the global tag dictionary. Notes carry tag names by
// value, so the dictionary is a lookup aid, not a referential dependency.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TransactionType enumerates ledger entry directions.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Transaction is one finance ledger entry. Date is the user-chosen
// transaction date, distinct from CreatedAt.
type Transaction struct {
	ID         string          `json:"id"`
	Amount     float64         `json:"amount"`
	Type       TransactionType `json:"type"`
	CategoryID string          `json:"categoryId"`
	AccountID  string          `json:"accountId"`
	Date       int64           `json:"date"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  int64           `json:"createdAt"`
	UpdatedAt  int64           `json:"updatedAt"`
}

// Category classifies transactions. The default set is seeded on first run;
// users may add more.
type Category struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Icon      string          `json:"icon"`
	Type      TransactionType `json:"type"`
	Color     string          `json:"color,omitempty"`
	IsDefault bool            `json:"isDefault"`
}

// AccountType enumerates the supported account kinds.
type AccountType string

const (
	AccountCash   AccountType = "cash"
	AccountBank   AccountType = "bank"
	AccountWeChat AccountType = "wechat"
	AccountAlipay AccountType = "alipay"
	AccountOther  AccountType = "other"
)

// Account is a money source. Balance is informational only: nothing in the
// store recomputes it from transactions.
type Account struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    AccountType `json:"type"`
	Balance float64     `json:"balance"`
	Icon    string      `json:"icon,omitempty"`
}

// CountdownType is the user-chosen label for a countdown. Display math
// always trusts the sign of date minus now, never the label, so the two may
// disagree.
type CountdownType string

const (
	CountdownAnniversary CountdownType = "anniversary"
	CountdownCountdown   CountdownType = "countdown"
)

// Countdown is a countdown or anniversary event anchored to a target date
// normalized to local midnight.
type Countdown struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Date      int64         `json:"date"`
	Type      CountdownType `json:"type"`
	Note      string        `json:"note,omitempty"`
	CreatedAt int64         `json:"createdAt"`
}
