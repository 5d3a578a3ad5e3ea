package help

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/openolat/olat-gateway/pkg/settings"
)

const logPrefix = "help:module"

// ModuleName is the settings module the help configuration is stored under.
const ModuleName = "help"

// Defaults.
const (
	DefaultIcon            = "o_icon_help"
	DefaultAcademyLink     = "https://www.openolat.org/academy"
	DefaultAcademyIcon     = "o_icon_video"
	DefaultConfluenceIcon  = "o_icon_manual"
	DefaultSupportEmail    = "mail@your.domain"
	DefaultCourseSoftkey   = "OLAT::help-course_de.zip"
	defaultEnabledSurfaces = "usertool,authorsite"
)

const (
	keyEnabled = "help.enabled"
	keyPlugins = "help.plugin"
)

func propKey(p Plugin, field string) string {
	return "help." + string(p) + "." + field
}

// pluginFields lists the stored fields of p.
func pluginFields(p Plugin) []string {
	switch {
	case p == Academy:
		return []string{"link", "icon", "enabled", "pos"}
	case p == Support:
		return []string{"email", "icon", "enabled", "pos"}
	case p == Course:
		return []string{"softkey", "icon", "enabled", "pos"}
	case p.isCustom():
		return []string{"link", "new.window", "icon", "enabled", "pos"}
	default:
		return []string{"icon", "enabled", "pos"}
	}
}

// SaveInput is the admin form for one plugin. Input holds the plugin specific value:
// the link for academy and custom links, the address for support and the soft key for
// the help course. It is ignored for the manual.
type SaveInput struct {
	Icon       string `json:"icon"`
	Input      string `json:"input"`
	UserTool   bool   `json:"usertool"`
	AuthorSite bool   `json:"authorsite"`
	Login      bool   `json:"login"`
	NewWindow  bool   `json:"newWindow"`
}

// Module holds the help configuration. It is rebuilt from its properties on Load and
// on every change made here or announced by another node.
type Module struct {
	props    *settings.Properties
	registry *Registry

	// writeMu serializes read-modify-write sequences on the plugin list.
	writeMu sync.Mutex

	mu      sync.RWMutex
	enabled bool
	order   []Plugin
	configs map[Plugin]PluginConfig
}

// NewModule creates the module; call Load before use.
func NewModule(props *settings.Properties, registry *Registry) *Module {
	return &Module{
		props:    props,
		registry: registry,
		enabled:  true,
		configs:  make(map[Plugin]PluginConfig),
	}
}

// Module returns the settings module name.
func (m *Module) Module() string { return m.props.Module() }

// Load reads the properties from the store and rebuilds the configuration.
func (m *Module) Load(ctx context.Context) error {
	if err := m.props.Load(ctx); err != nil {
		return fmt.Errorf("%s - failed to load help settings: %w", logPrefix, err)
	}
	m.rebuild()
	return nil
}

// Reload is called when another node changed the help settings.
func (m *Module) Reload(ctx context.Context) error {
	return m.Load(ctx)
}

func (m *Module) rebuild() {
	enabled := m.props.Bool(keyEnabled, true)

	configs := make(map[Plugin]PluginConfig)
	var order []Plugin
	for _, key := range strings.Split(m.props.String(keyPlugins, Confluence.Key()), ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		p, ok := PluginForKey(key)
		if !ok {
			slog.Warn(fmt.Sprintf("%s - Ignoring unknown help plugin key %q", logPrefix, key))
			continue
		}
		if _, dup := configs[p]; dup {
			continue
		}
		configs[p] = m.readConfig(p)
		order = append(order, p)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return configs[order[i]].Common().Position < configs[order[j]].Common().Position
	})

	m.mu.Lock()
	m.enabled = enabled
	m.order = order
	m.configs = configs
	m.mu.Unlock()
	slog.Debug(fmt.Sprintf("%s - Help %s with %d plugins", logPrefix, enabledLabel(enabled), len(order)))
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func (m *Module) readConfig(p Plugin) PluginConfig {
	base := func(icon, surfaces string) Base {
		return Base{
			Icon:     m.props.String(propKey(p, "icon"), icon),
			Surfaces: parseSurfaces(m.props.String(propKey(p, "enabled"), surfaces)),
			Position: m.props.Int(propKey(p, "pos"), 0),
		}
	}
	switch p {
	case Academy:
		return AcademyConfig{
			Base: base(DefaultAcademyIcon, defaultEnabledSurfaces),
			Link: m.props.String(propKey(p, "link"), DefaultAcademyLink),
		}
	case Confluence:
		return ConfluenceConfig{Base: base(DefaultConfluenceIcon, defaultEnabledSurfaces)}
	case Support:
		return SupportConfig{
			Base:  base(DefaultIcon, ""),
			Email: m.props.String(propKey(p, "email"), DefaultSupportEmail),
		}
	case Course:
		return CourseConfig{
			Base:    base(DefaultIcon, ""),
			Softkey: m.props.String(propKey(p, "softkey"), DefaultCourseSoftkey),
		}
	default:
		return CustomLinkConfig{
			Base:      base(DefaultIcon, ""),
			Slot:      p,
			Link:      m.props.String(propKey(p, "link"), ""),
			NewWindow: m.props.Bool(propKey(p, "new.window"), false),
		}
	}
}

// IsHelpEnabled reports the global help switch.
func (m *Module) IsHelpEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SetHelpEnabled persists the global help switch.
func (m *Module) SetHelpEnabled(ctx context.Context, enabled bool) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := m.props.SetBool(ctx, keyEnabled, enabled); err != nil {
		return err
	}
	m.rebuild()
	return nil
}

// IsManualEnabled reports whether help is on and the online manual is configured.
func (m *Module) IsManualEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.configs[Confluence]
	return m.enabled && ok
}

// ManualProvider returns the manual link builder, or nil when no manual provider is
// registered.
func (m *Module) ManualProvider() *ManualProvider {
	p, ok := m.registry.Provider(Confluence)
	if !ok {
		return nil
	}
	mp, _ := p.(*ManualProvider)
	return mp
}

// PluginList returns the configured plugins ordered by position.
func (m *Module) PluginList() []Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Plugin(nil), m.order...)
}

// RemainingPlugins returns the plugins that are not configured yet.
func (m *Module) RemainingPlugins() []Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Plugin
	for _, p := range allPlugins {
		if _, ok := m.configs[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// Config returns the configuration of a configured plugin.
func (m *Module) Config(name string) (PluginConfig, error) {
	p, err := ParsePlugin(name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[p]
	if !ok {
		return nil, ErrUnknownPlugin
	}
	return cfg, nil
}

// Plugins renders the links enabled on surface, in position order. Nothing is
// returned while help is disabled.
func (m *Module) Plugins(surface Surface) []Link {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.enabled {
		return nil
	}
	var links []Link
	for _, p := range m.order {
		cfg := m.configs[p]
		if !cfg.Common().EnabledOn(surface) {
			continue
		}
		provider, ok := m.registry.Provider(p)
		if !ok {
			slog.Warn(fmt.Sprintf("%s - No provider registered for help plugin %s", logPrefix, p))
			continue
		}
		link, err := provider.Link(cfg)
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to render help plugin %s: %v", logPrefix, p, err))
			continue
		}
		links = append(links, link)
	}
	return links
}

// SavePlugin stores the settings of one plugin and adds it to the plugin list if it
// is new. New plugins are appended at the last position.
func (m *Module) SavePlugin(ctx context.Context, name string, in SaveInput) error {
	p, err := ParsePlugin(name)
	if err != nil {
		return err
	}
	input := strings.TrimSpace(in.Input)
	if p != Confluence && input == "" {
		return fmt.Errorf("%w: %s requires a value", ErrInvalidInput, p)
	}
	if p == Support && !strings.Contains(input, "@") {
		return fmt.Errorf("%w: %q is not a mail address", ErrInvalidInput, input)
	}

	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = DefaultIcon
	}
	values := map[string]string{
		propKey(p, "icon"):    icon,
		propKey(p, "enabled"): formatSurfaces(surfacesFromFlags(in.UserTool, in.AuthorSite, in.Login)),
	}
	switch {
	case p == Academy:
		values[propKey(p, "link")] = input
	case p == Support:
		values[propKey(p, "email")] = input
	case p == Course:
		values[propKey(p, "softkey")] = input
	case p.isCustom():
		values[propKey(p, "link")] = input
		values[propKey(p, "new.window")] = strconv.FormatBool(in.NewWindow)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	order := m.PluginList()
	if !containsPlugin(order, p) {
		values[propKey(p, "pos")] = strconv.Itoa(len(order))
		values[keyPlugins] = joinKeys(append(order, p))
	}

	if err := m.props.Set(ctx, values); err != nil {
		return err
	}
	m.rebuild()
	slog.Info(fmt.Sprintf("%s - Saved help plugin %s", logPrefix, p))
	return nil
}

// DeletePlugin removes a plugin with all of its properties. Plugins positioned after
// it move up by one. The plugin list is written before the plugin's own keys are
// removed, so a failed removal leaves only unreferenced keys behind.
func (m *Module) DeletePlugin(ctx context.Context, name string) error {
	p, err := ParsePlugin(name)
	if err != nil {
		return err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.mu.RLock()
	cfg, ok := m.configs[p]
	order := append([]Plugin(nil), m.order...)
	configs := make(map[Plugin]PluginConfig, len(m.configs))
	for k, v := range m.configs {
		configs[k] = v
	}
	m.mu.RUnlock()
	if !ok {
		return ErrUnknownPlugin
	}

	removed := cfg.Common().Position
	var remaining []Plugin
	updates := make(map[string]string)
	for _, other := range order {
		if other == p {
			continue
		}
		remaining = append(remaining, other)
		if pos := configs[other].Common().Position; pos > removed {
			updates[propKey(other, "pos")] = strconv.Itoa(pos - 1)
		}
	}
	updates[keyPlugins] = joinKeys(remaining)

	keys := make([]string, 0, len(pluginFields(p)))
	for _, field := range pluginFields(p) {
		keys = append(keys, propKey(p, field))
	}
	if err := m.props.Set(ctx, updates); err != nil {
		return err
	}
	m.rebuild()
	if err := m.props.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("%s - help plugin %s delisted but its properties remain: %w", logPrefix, p, err)
	}
	slog.Info(fmt.Sprintf("%s - Deleted help plugin %s", logPrefix, p))
	return nil
}

// SetPosition stores the position of a configured plugin.
func (m *Module) SetPosition(ctx context.Context, name string, pos int) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if _, err := m.Config(name); err != nil {
		return err
	}
	if pos < 0 {
		return fmt.Errorf("%w: negative position %d", ErrInvalidInput, pos)
	}
	if err := m.props.SetInt(ctx, propKey(Plugin(name), "pos"), pos); err != nil {
		return err
	}
	m.rebuild()
	return nil
}

func containsPlugin(list []Plugin, p Plugin) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

func joinKeys(list []Plugin) string {
	keys := make([]string, len(list))
	for i, p := range list {
		keys[i] = p.Key()
	}
	return strings.Join(keys, ",")
}

// PluginEntry is one configured plugin in a Snapshot.
type PluginEntry struct {
	Name   Plugin       `json:"name"`
	Key    string       `json:"key"`
	Config PluginConfig `json:"config"`
}

// Snapshot is the admin view of the help configuration.
type Snapshot struct {
	Enabled   bool          `json:"enabled"`
	Plugins   []PluginEntry `json:"plugins"`
	Remaining []Plugin      `json:"remaining"`
}

// Snapshot returns the current configuration in position order.
func (m *Module) Snapshot() Snapshot {
	m.mu.RLock()
	s := Snapshot{Enabled: m.enabled, Plugins: make([]PluginEntry, 0, len(m.order))}
	for _, p := range m.order {
		s.Plugins = append(s.Plugins, PluginEntry{Name: p, Key: p.Key(), Config: m.configs[p]})
	}
	m.mu.RUnlock()
	s.Remaining = m.RemainingPlugins()
	return s
}
