package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storeLogPrefix = "db:store"

// PropertyStore keeps module properties in module_properties. It implements
// settings.Store.
type PropertyStore struct {
	pool *pgxpool.Pool
}

// NewPropertyStore creates a PropertyStore with the given connection pool.
func NewPropertyStore(pool *pgxpool.Pool) *PropertyStore {
	return &PropertyStore{pool: pool}
}

// Properties returns all properties of module.
func (s *PropertyStore) Properties(ctx context.Context, module string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT module, key, value, modified FROM module_properties WHERE module = $1`, module)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to query properties of %s: %w", storeLogPrefix, module, err)
	}
	props, err := pgx.CollectRows(rows, scanPropertyRow)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to read properties of %s: %w", storeLogPrefix, module, err)
	}
	out := make(map[string]string, len(props))
	for _, p := range props {
		out[p.Key] = p.Value
	}
	return out, nil
}

func scanPropertyRow(row pgx.CollectableRow) (PropertyRow, error) {
	var p PropertyRow
	err := row.Scan(&p.Module, &p.Key, &p.Value, &p.Modified)
	return p, err
}

// SetProperties upserts values in one transaction.
func (s *PropertyStore) SetProperties(ctx context.Context, module string, values map[string]string) error {
	slog.Debug(fmt.Sprintf("%s - SetProperties module=%s keys=%d", storeLogPrefix, module, len(values)))
	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(
			`INSERT INTO module_properties (module, key, value, modified)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (module, key) DO UPDATE SET value = EXCLUDED.value, modified = EXCLUDED.modified`,
			module, k, v, now)
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("%s - failed to save properties of %s: %w", storeLogPrefix, module, err)
	}
	return nil
}

// RemoveProperties deletes the given keys of module.
func (s *PropertyStore) RemoveProperties(ctx context.Context, module string, keys []string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM module_properties WHERE module = $1 AND key = ANY($2)`, module, keys)
	if err != nil {
		return fmt.Errorf("%s - failed to remove properties of %s: %w", storeLogPrefix, module, err)
	}
	return nil
}
