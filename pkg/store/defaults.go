package store

import (
	"context"
	"database/sql"

	pkgdb "github.com/QinMou000/SuiJi/pkg/db"
	"github.com/QinMou000/SuiJi/pkg/live"
)

// EnsureDefaults guarantees the category and account collections are
// non-empty, seeding the fixed default sets when (and only when) the
// respective collection is empty. The two emptiness checks are independent
// and both run on every call. Safe to invoke on every application start:
// after the first successful seed it is a no-op and never touches user rows.
//
// Migration step 4 runs the same seeding, so a freshly opened store is
// already bootstrapped; this entry point covers re-invocation at runtime.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	var seededCategories, seededAccounts bool
	err := s.WithTransaction(ctx, nil, func(tx *sql.Tx) error {
		var err error
		seededCategories, seededAccounts, err = pkgdb.SeedDefaults(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}

	if seededCategories {
		s.bus.Publish(live.Categories)
	}
	if seededAccounts {
		s.bus.Publish(live.Accounts)
	}
	return nil
}
