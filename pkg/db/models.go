package db

import "time"

// PropertyRow is a row of module_properties.
type PropertyRow struct {
	Module   string
	Key      string
	Value    string
	Modified time.Time
}

// LicenseTypeRow is a row of license_types.
type LicenseTypeRow struct {
	ID         string
	Name       string
	CSSClass   *string
	Text       *string
	Predefined bool
	SortOrder  int
	Created    time.Time
}
