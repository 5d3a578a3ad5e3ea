package help

import (
	"fmt"
	"net/url"
	"strings"
)

// Link is a rendered help entry.
type Link struct {
	Plugin    Plugin `json:"plugin"`
	Kind      string `json:"kind"`
	Href      string `json:"href"`
	Icon      string `json:"icon"`
	NewWindow bool   `json:"newWindow"`
}

// Link kinds.
const (
	KindURL    = "url"
	KindMail   = "mailto"
	KindCourse = "course"
)

// Provider renders the link of one plugin from its configuration.
type Provider interface {
	Plugin() Plugin
	Link(cfg PluginConfig) (Link, error)
}

// Registry holds the provider of every plugin. It is built once at startup.
type Registry struct {
	providers map[Plugin]Provider
}

// NewRegistry indexes providers by plugin; a later provider replaces an earlier one
// for the same plugin.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[Plugin]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Plugin()] = p
	}
	return r
}

// Provider returns the provider for p.
func (r *Registry) Provider(p Plugin) (Provider, bool) {
	pr, ok := r.providers[p]
	return pr, ok
}

// DefaultManualURL is the root of the online manual.
const DefaultManualURL = "https://docs.openolat.org/manual/"

// DefaultProviders returns one provider per plugin.
func DefaultProviders(manualBaseURL string) []Provider {
	if manualBaseURL == "" {
		manualBaseURL = DefaultManualURL
	}
	return []Provider{
		urlProvider{plugin: Academy},
		&ManualProvider{BaseURL: manualBaseURL},
		mailProvider{},
		courseProvider{},
		urlProvider{plugin: Custom1},
		urlProvider{plugin: Custom2},
		urlProvider{plugin: Custom3},
	}
}

// ManualProvider links to pages of the online manual.
type ManualProvider struct {
	BaseURL string
}

func (m *ManualProvider) Plugin() Plugin { return Confluence }

func (m *ManualProvider) Link(cfg PluginConfig) (Link, error) {
	if _, ok := cfg.(ConfluenceConfig); !ok {
		return Link{}, fmt.Errorf("manual provider got %T", cfg)
	}
	return Link{Plugin: Confluence, Kind: KindURL, Href: m.BaseURL, Icon: cfg.Common().Icon, NewWindow: true}, nil
}

// PageURL returns the manual URL of page. Spaces become dashes.
func (m *ManualProvider) PageURL(page string) string {
	page = strings.Trim(strings.TrimSpace(page), "/")
	if page == "" {
		return m.BaseURL
	}
	base := strings.TrimSuffix(m.BaseURL, "/")
	return base + "/" + url.PathEscape(strings.ReplaceAll(page, " ", "-")) + "/"
}

type urlProvider struct {
	plugin Plugin
}

func (u urlProvider) Plugin() Plugin { return u.plugin }

func (u urlProvider) Link(cfg PluginConfig) (Link, error) {
	switch c := cfg.(type) {
	case AcademyConfig:
		return Link{Plugin: Academy, Kind: KindURL, Href: c.Link, Icon: c.Icon, NewWindow: true}, nil
	case CustomLinkConfig:
		return Link{Plugin: c.Slot, Kind: KindURL, Href: c.Link, Icon: c.Icon, NewWindow: c.NewWindow}, nil
	default:
		return Link{}, fmt.Errorf("link provider for %s got %T", u.plugin, cfg)
	}
}

type mailProvider struct{}

func (mailProvider) Plugin() Plugin { return Support }

func (mailProvider) Link(cfg PluginConfig) (Link, error) {
	c, ok := cfg.(SupportConfig)
	if !ok {
		return Link{}, fmt.Errorf("support provider got %T", cfg)
	}
	return Link{Plugin: Support, Kind: KindMail, Href: "mailto:" + c.Email, Icon: c.Icon}, nil
}

type courseProvider struct{}

func (courseProvider) Plugin() Plugin { return Course }

func (courseProvider) Link(cfg PluginConfig) (Link, error) {
	c, ok := cfg.(CourseConfig)
	if !ok {
		return Link{}, fmt.Errorf("course provider got %T", cfg)
	}
	return Link{Plugin: Course, Kind: KindCourse, Href: c.Softkey, Icon: c.Icon}, nil
}
