package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openolat/olat-gateway/pkg/events"
)

const logPrefix = "settings:properties"

// NewNodeID returns a fresh origin id for this process. Change events carry it so a
// node can skip its own notifications.
func NewNodeID() string {
	return uuid.NewString()
}

// Properties is the cached view of one module's properties. Reads are served from
// memory; writes go to the store first and are then announced to other nodes.
type Properties struct {
	module    string
	store     Store
	publisher events.EventPublisher
	origin    string

	mu     sync.RWMutex
	values map[string]string
}

// PropertiesParams holds parameters for NewProperties.
type PropertiesParams struct {
	Module    string
	Store     Store
	Publisher events.EventPublisher
	Origin    string
}

// NewProperties creates an empty view; call Load before reading.
func NewProperties(params PropertiesParams) *Properties {
	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}
	return &Properties{
		module:    params.Module,
		store:     params.Store,
		publisher: pub,
		origin:    params.Origin,
		values:    make(map[string]string),
	}
}

// Module returns the module name.
func (p *Properties) Module() string { return p.module }

// Load replaces the cache with the store's current content.
func (p *Properties) Load(ctx context.Context) error {
	values, err := p.store.Properties(ctx, p.module)
	if err != nil {
		return fmt.Errorf("%s - failed to load module %s: %w", logPrefix, p.module, err)
	}
	p.mu.Lock()
	p.values = values
	p.mu.Unlock()
	slog.Debug(fmt.Sprintf("%s - Loaded %d properties for module %s", logPrefix, len(values), p.module))
	return nil
}

// Has reports whether key is set.
func (p *Properties) Has(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.values[key]
	return ok
}

// String returns the value of key or def when unset.
func (p *Properties) String(key, def string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// Int returns the integer value of key or def when unset or malformed.
func (p *Properties) Int(key string, def int) int {
	v := p.String(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - %s.%s is not an integer: %q", logPrefix, p.module, key, v))
		return def
	}
	return n
}

// Bool returns the boolean value of key or def when unset or malformed.
func (p *Properties) Bool(key string, def bool) bool {
	v := p.String(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - %s.%s is not a boolean: %q", logPrefix, p.module, key, v))
		return def
	}
	return b
}

// Float returns the float value of key or def when unset or malformed.
func (p *Properties) Float(key string, def float64) float64 {
	v := p.String(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - %s.%s is not a number: %q", logPrefix, p.module, key, v))
		return def
	}
	return f
}

// SetString persists a single string property.
func (p *Properties) SetString(ctx context.Context, key, value string) error {
	return p.Set(ctx, map[string]string{key: value})
}

// SetInt persists a single integer property.
func (p *Properties) SetInt(ctx context.Context, key string, value int) error {
	return p.Set(ctx, map[string]string{key: strconv.Itoa(value)})
}

// SetBool persists a single boolean property.
func (p *Properties) SetBool(ctx context.Context, key string, value bool) error {
	return p.Set(ctx, map[string]string{key: strconv.FormatBool(value)})
}

// SetFloat persists a single float property.
func (p *Properties) SetFloat(ctx context.Context, key string, value float64) error {
	return p.Set(ctx, map[string]string{key: strconv.FormatFloat(value, 'f', -1, 64)})
}

// Set persists several properties at once and publishes one change event.
func (p *Properties) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := p.store.SetProperties(ctx, p.module, values); err != nil {
		return fmt.Errorf("%s - failed to save module %s: %w", logPrefix, p.module, err)
	}
	p.mu.Lock()
	for k, v := range values {
		p.values[k] = v
	}
	p.mu.Unlock()
	p.announce(ctx, keysOf(values), false)
	return nil
}

// Remove deletes properties and publishes one change event.
func (p *Properties) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := p.store.RemoveProperties(ctx, p.module, keys); err != nil {
		return fmt.Errorf("%s - failed to remove properties of module %s: %w", logPrefix, p.module, err)
	}
	p.mu.Lock()
	for _, k := range keys {
		delete(p.values, k)
	}
	p.mu.Unlock()
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	p.announce(ctx, sorted, true)
	return nil
}

// announce publishes a change event. Publish failures are logged, not returned.
func (p *Properties) announce(ctx context.Context, keys []string, removed bool) {
	event := &events.ModuleChangedEvent{
		Module:    p.module,
		Keys:      keys,
		Removed:   removed,
		Origin:    p.origin,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.publisher.PublishChanged(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to publish change of module %s: %v", logPrefix, p.module, err))
	}
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
