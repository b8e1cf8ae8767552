package data

import (
	"context"
	"database/sql"

	"github.com/noe-create/medidhub-cpv-sub001/internal/migrate"
)

// RunMigrations applies pending schema migrations by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return ErrNilDB
	}
	return migrate.Run(ctx, db)
}
