package license

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository, used when no database is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	types map[string]LicenseType
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{types: make(map[string]LicenseType)}
}

func (r *MemoryRepository) LicenseTypeExists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok, nil
}

func (r *MemoryRepository) CreateLicenseType(_ context.Context, lt LicenseType) (*LicenseType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lt.ID == "" {
		lt.ID = uuid.NewString()
	}
	r.types[lt.Name] = lt
	return &lt, nil
}

// ListLicenseTypes returns all types by sort order, then name.
func (r *MemoryRepository) ListLicenseTypes(_ context.Context) ([]LicenseType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LicenseType, 0, len(r.types))
	for _, lt := range r.types {
		out = append(out, lt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
