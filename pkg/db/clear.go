package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clearLogPrefix = "db:clear"

// ClearSettings removes all module properties and license types. The schema and the
// migration history are kept.
func ClearSettings(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Clearing settings tables", clearLogPrefix))

	_, err := pool.Exec(ctx, `TRUNCATE TABLE module_properties, license_types RESTART IDENTITY`)
	if err != nil {
		return fmt.Errorf("%s - truncate failed: %w", clearLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Settings cleared", clearLogPrefix))
	return nil
}
