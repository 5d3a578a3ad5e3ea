// Package onlyoffice holds the admin settings of the ONLYOFFICE document editor
// integration.
package onlyoffice

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/openolat/olat-gateway/pkg/settings"
)

const logPrefix = "onlyoffice:module"

// ModuleName is the settings module the editor settings are stored under.
const ModuleName = "onlyoffice"

const (
	keyEnabled = "onlyoffice.enabled"
	keyAPIURL  = "onlyoffice.api.url"
)

// MaxAPIURLLength is the longest accepted API URL.
const MaxAPIURLLength = 128

// FieldAPIURL is the form field name of the API URL.
const FieldAPIURL = "apiUrl"

// Settings of the editor integration.
type Settings struct {
	Enabled bool   `json:"enabled"`
	APIURL  string `json:"apiUrl"`
}

// Form is the admin input.
type Form struct {
	Enabled bool   `json:"enabled"`
	APIURL  string `json:"apiUrl"`
}

// Validate checks the API URL. It is mandatory only while the editor is enabled but
// is always checked when given.
func (f Form) Validate() settings.FieldErrors {
	raw := strings.TrimSpace(f.APIURL)
	if raw == "" {
		if f.Enabled {
			return settings.FieldErrors{{Field: FieldAPIURL, Key: settings.ErrKeyMandatory}}
		}
		return nil
	}
	if len(raw) > MaxAPIURLLength {
		return settings.FieldErrors{{Field: FieldAPIURL, Key: settings.ErrKeyTooLong, Args: []string{fmt.Sprint(MaxAPIURLLength)}}}
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return settings.FieldErrors{{Field: FieldAPIURL, Key: settings.ErrKeyInvalidURL}}
	}
	return nil
}

// Module serves the editor settings from a cached snapshot.
type Module struct {
	props *settings.Properties

	mu       sync.RWMutex
	settings Settings
}

// NewModule creates the module; call Load before use.
func NewModule(props *settings.Properties) *Module {
	return &Module{props: props}
}

// Module returns the settings module name.
func (m *Module) Module() string { return m.props.Module() }

// Load reads the properties from the store.
func (m *Module) Load(ctx context.Context) error {
	if err := m.props.Load(ctx); err != nil {
		return fmt.Errorf("%s - failed to load editor settings: %w", logPrefix, err)
	}
	m.refresh()
	return nil
}

// Reload is called when another node changed the editor settings.
func (m *Module) Reload(ctx context.Context) error {
	return m.Load(ctx)
}

func (m *Module) refresh() {
	s := Settings{
		Enabled: m.props.Bool(keyEnabled, false),
		APIURL:  m.props.String(keyAPIURL, ""),
	}
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
}

// Settings returns the current settings.
func (m *Module) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// IsEnabled reports whether the editor can be used.
func (m *Module) IsEnabled() bool {
	s := m.Settings()
	return s.Enabled && s.APIURL != ""
}

// Apply validates and stores f.
func (m *Module) Apply(ctx context.Context, f Form) (Settings, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return m.Settings(), errs
	}
	values := map[string]string{
		keyEnabled: fmt.Sprint(f.Enabled),
		keyAPIURL:  strings.TrimSpace(f.APIURL),
	}
	if err := m.props.Set(ctx, values); err != nil {
		return m.Settings(), fmt.Errorf("%s - failed to save editor settings: %w", logPrefix, err)
	}
	m.refresh()
	slog.Info(fmt.Sprintf("%s - Editor settings saved (enabled=%t)", logPrefix, f.Enabled))
	return m.Settings(), nil
}
