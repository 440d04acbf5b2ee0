package data

import (
	"context"
	"database/sql"

	"github.com/workspace-secretary/secretary-go/internal/migrate"
)

// RunMigrations sets up the required schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
