// Package license seeds the predefined license types that content can be published
// under.
package license

import (
	"context"
	"fmt"
	"log/slog"
)

const logPrefix = "license:license"

// Names of the license types with special handling.
const (
	NoLicenseName = "no.license"
	FreetextName  = "freetext"
)

// LicenseType is a stored license type.
type LicenseType struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CSSClass   string `json:"cssClass,omitempty"`
	Text       string `json:"text,omitempty"`
	Predefined bool   `json:"predefined"`
	SortOrder  int    `json:"sortOrder"`
}

// Repository persists license types. The Postgres implementation lives in pkg/db.
type Repository interface {
	LicenseTypeExists(ctx context.Context, name string) (bool, error)
	CreateLicenseType(ctx context.Context, lt LicenseType) (*LicenseType, error)
	ListLicenseTypes(ctx context.Context) ([]LicenseType, error)
}

// Predefined returns the license types every installation starts with, in display
// order.
func Predefined() []LicenseType {
	types := []LicenseType{
		{Name: NoLicenseName},
		{Name: FreetextName},
		{Name: "public domain", CSSClass: "o_lic_public_domain", Text: "https://creativecommons.org/share-your-work/public-domain/pdm/"},
		{Name: "CC0", CSSClass: "o_icon_lic_cc0", Text: "https://creativecommons.org/share-your-work/public-domain/cc0/"},
		{Name: "CC BY", CSSClass: "o_icon_lic_by", Text: "https://creativecommons.org/licenses/by/4.0/"},
		{Name: "CC BY-SA", CSSClass: "o_icon_lic_by_sa", Text: "https://creativecommons.org/licenses/by-sa/4.0/"},
		{Name: "CC BY-ND", CSSClass: "o_icon_lic_by_nd", Text: "https://creativecommons.org/licenses/by-nd/4.0/"},
		{Name: "CC BY-NC", CSSClass: "o_icon_ic_by_nc", Text: "https://creativecommons.org/licenses/by-nc/4.0/"},
		{Name: "CC BY-NC-SA", CSSClass: "o_icon_lic_by_nc_sa", Text: "https://creativecommons.org/licenses/by-nc-sa/4.0/"},
		{Name: "CC BY-NC-ND", CSSClass: "o_licon_ic_by_nc_nd", Text: "https://creativecommons.org/licenses/by-nc-nd/4.0/"},
		{Name: "all rights reserved", CSSClass: "o_icon_lic_all_rights_reserved"},
	}
	for i := range types {
		types[i].Predefined = true
		types[i].SortOrder = i + 1
	}
	return types
}

// InitPredefined creates the predefined license types that do not exist yet and
// returns how many were created. Existing types are never modified.
func InitPredefined(ctx context.Context, repo Repository) (int, error) {
	created := 0
	for _, lt := range Predefined() {
		exists, err := repo.LicenseTypeExists(ctx, lt.Name)
		if err != nil {
			return created, fmt.Errorf("%s - failed to check license type %q: %w", logPrefix, lt.Name, err)
		}
		if exists {
			continue
		}
		if _, err := repo.CreateLicenseType(ctx, lt); err != nil {
			return created, fmt.Errorf("%s - failed to create license type %q: %w", logPrefix, lt.Name, err)
		}
		created++
	}
	if created > 0 {
		slog.Info(fmt.Sprintf("%s - Created %d predefined license types", logPrefix, created))
	}
	return created, nil
}
