package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/openolat/olat-gateway/pkg/settings"
)

const applyLogPrefix = "seed:apply"

// Apply writes the seed properties that are not present in the store yet and returns
// how many were written. Stored values are never overwritten.
func Apply(ctx context.Context, store settings.Store, f *File) (int, error) {
	modules := make([]string, 0, len(f.Modules))
	for m := range f.Modules {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	written := 0
	for _, module := range modules {
		existing, err := store.Properties(ctx, module)
		if err != nil {
			return written, fmt.Errorf("%s - failed to read module %s: %w", applyLogPrefix, module, err)
		}
		missing := make(map[string]string)
		for k, v := range f.Modules[module] {
			if _, ok := existing[k]; !ok {
				missing[k] = v
			}
		}
		if len(missing) == 0 {
			continue
		}
		if err := store.SetProperties(ctx, module, missing); err != nil {
			return written, fmt.Errorf("%s - failed to seed module %s: %w", applyLogPrefix, module, err)
		}
		written += len(missing)
		slog.Info(fmt.Sprintf("%s - Seeded %d properties of module %s", applyLogPrefix, len(missing), module))
	}
	return written, nil
}
