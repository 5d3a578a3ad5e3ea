package lecture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/openolat/olat-gateway/pkg/settings"
)

const logPrefix = "lecture:module"

// User tool registration. Enabling lectures adds the lectures tool to the list of
// available user tools when that list is restricted.
const (
	UserToolsModule     = "usertools"
	KeyAvailableTools   = "user.tools.available"
	LecturesUserToolKey = "home:lectures"
)

// Module serves the lecture defaults from a cached snapshot.
type Module struct {
	props     *settings.Properties
	userTools *settings.Properties

	// writeMu serializes Apply, including the user tool read-modify-write.
	writeMu sync.Mutex

	mu       sync.RWMutex
	settings Settings
}

// NewModule creates the module. userTools may be nil when the user tool list is not
// managed by this service.
func NewModule(props, userTools *settings.Properties) *Module {
	return &Module{props: props, userTools: userTools, settings: Defaults()}
}

// Module returns the settings module name.
func (m *Module) Module() string { return m.props.Module() }

// Load reads the properties from the store.
func (m *Module) Load(ctx context.Context) error {
	if err := m.props.Load(ctx); err != nil {
		return fmt.Errorf("%s - failed to load lecture settings: %w", logPrefix, err)
	}
	if m.userTools != nil {
		if err := m.userTools.Load(ctx); err != nil {
			return fmt.Errorf("%s - failed to load user tools: %w", logPrefix, err)
		}
	}
	m.refresh()
	return nil
}

// Reload is called when another node changed the lecture settings.
func (m *Module) Reload(ctx context.Context) error {
	return m.Load(ctx)
}

func (m *Module) refresh() {
	s := readSettings(m.props)
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
}

// Settings returns the current defaults.
func (m *Module) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Form returns the admin form filled with the current defaults.
func (m *Module) Form() Form {
	return FormFromSettings(m.Settings())
}

// Apply validates f and stores it. Validation failures are returned as FieldErrors and
// nothing is written.
func (m *Module) Apply(ctx context.Context, f Form) (Settings, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return m.Settings(), errs
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := m.props.Set(ctx, f.values()); err != nil {
		return m.Settings(), fmt.Errorf("%s - failed to save lecture settings: %w", logPrefix, err)
	}
	if f.Enabled {
		if err := m.registerUserTool(ctx); err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to register lectures user tool: %v", logPrefix, err))
		}
	}
	m.refresh()
	slog.Info(fmt.Sprintf("%s - Lecture settings saved (enabled=%t)", logPrefix, f.Enabled))
	return m.Settings(), nil
}

// registerUserTool adds the lectures tool to a non empty list of available tools. An
// empty list means all tools are available and is left alone.
func (m *Module) registerUserTool(ctx context.Context) error {
	if m.userTools == nil {
		return nil
	}
	available := m.userTools.String(KeyAvailableTools, "")
	if strings.TrimSpace(available) == "" {
		return nil
	}
	var tools []string
	for _, tool := range strings.Split(available, ",") {
		tool = strings.TrimSpace(tool)
		if tool == LecturesUserToolKey {
			return nil
		}
		if tool != "" {
			tools = append(tools, tool)
		}
	}
	tools = append(tools, LecturesUserToolKey)
	return m.userTools.SetString(ctx, KeyAvailableTools, strings.Join(tools, ","))
}
