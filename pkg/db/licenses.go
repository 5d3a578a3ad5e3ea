package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openolat/olat-gateway/pkg/license"
)

const licensesLogPrefix = "db:licenses"

// LicenseRepository keeps license types in license_types. It implements
// license.Repository.
type LicenseRepository struct {
	pool *pgxpool.Pool
}

// NewLicenseRepository creates a LicenseRepository with the given connection pool.
func NewLicenseRepository(pool *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{pool: pool}
}

// LicenseTypeExists reports whether a type with name exists.
func (r *LicenseRepository) LicenseTypeExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM license_types WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s - failed to check license type %q: %w", licensesLogPrefix, name, err)
	}
	return exists, nil
}

// CreateLicenseType inserts lt. An empty ID is replaced by a new uuid.
func (r *LicenseRepository) CreateLicenseType(ctx context.Context, lt license.LicenseType) (*license.LicenseType, error) {
	slog.Info(fmt.Sprintf("%s - CreateLicenseType name=%s", licensesLogPrefix, lt.Name))
	if lt.ID == "" {
		lt.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO license_types (id, name, css_class, text, predefined, sort_order, created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, name, css_class, text, predefined, sort_order, created`,
		lt.ID, lt.Name, nullable(lt.CSSClass), nullable(lt.Text), lt.Predefined, lt.SortOrder, time.Now().UTC())

	created, err := scanLicenseTypeRow(row)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to create license type %q: %w", licensesLogPrefix, lt.Name, err)
	}
	out := created.toLicenseType()
	return &out, nil
}

// ListLicenseTypes returns all types by sort order, then name.
func (r *LicenseRepository) ListLicenseTypes(ctx context.Context) ([]license.LicenseType, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, css_class, text, predefined, sort_order, created
		 FROM license_types ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to list license types: %w", licensesLogPrefix, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (LicenseTypeRow, error) {
		return scanLicenseTypeRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to read license types: %w", licensesLogPrefix, err)
	}
	out := make([]license.LicenseType, len(list))
	for i, lt := range list {
		out[i] = lt.toLicenseType()
	}
	return out, nil
}

func scanLicenseTypeRow(row pgx.Row) (LicenseTypeRow, error) {
	var lt LicenseTypeRow
	err := row.Scan(&lt.ID, &lt.Name, &lt.CSSClass, &lt.Text, &lt.Predefined, &lt.SortOrder, &lt.Created)
	return lt, err
}

func (lt LicenseTypeRow) toLicenseType() license.LicenseType {
	out := license.LicenseType{
		ID:         lt.ID,
		Name:       lt.Name,
		Predefined: lt.Predefined,
		SortOrder:  lt.SortOrder,
	}
	if lt.CSSClass != nil {
		out.CSSClass = *lt.CSSClass
	}
	if lt.Text != nil {
		out.Text = *lt.Text
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
