// Package help manages the help links shown in the user tool, the authoring site and
// the login page (dmz).
package help

import (
	"errors"
	"strings"
)

// ErrUnknownPlugin is returned for plugin names outside the fixed set.
var ErrUnknownPlugin = errors.New("unknown help plugin")

// ErrInvalidInput is returned when a plugin is saved without its mandatory value.
var ErrInvalidInput = errors.New("invalid help plugin input")

// Plugin names a help plugin.
type Plugin string

// Help plugins.
const (
	Academy    Plugin = "academy"
	Confluence Plugin = "confluence"
	Support    Plugin = "support"
	Course     Plugin = "course"
	Custom1    Plugin = "custom1"
	Custom2    Plugin = "custom2"
	Custom3    Plugin = "custom3"
)

// allPlugins is the canonical order used when offering plugins that are not configured.
var allPlugins = []Plugin{Academy, Confluence, Support, Course, Custom1, Custom2, Custom3}

var pluginKeys = map[Plugin]string{
	Academy:    "ooAcademyLinkHelp",
	Confluence: "ooConfluenceLinkHelp",
	Support:    "supportMailHelp",
	Course:     "courseHelp",
	Custom1:    "customLink1Help",
	Custom2:    "customLink2Help",
	Custom3:    "customLink3Help",
}

// ParsePlugin validates a plugin name.
func ParsePlugin(name string) (Plugin, error) {
	p := Plugin(name)
	if _, ok := pluginKeys[p]; !ok {
		return "", ErrUnknownPlugin
	}
	return p, nil
}

// Key returns the stable key under which the plugin is stored in the plugin list.
func (p Plugin) Key() string { return pluginKeys[p] }

// PluginForKey maps a stored key back to its plugin.
func PluginForKey(key string) (Plugin, bool) {
	for p, k := range pluginKeys {
		if k == key {
			return p, true
		}
	}
	return "", false
}

func (p Plugin) isCustom() bool {
	return p == Custom1 || p == Custom2 || p == Custom3
}

// Surface is a place where help links are rendered.
type Surface string

// Surfaces.
const (
	UserTool   Surface = "usertool"
	AuthorSite Surface = "authorsite"
	DMZ        Surface = "dmz"
)

var allSurfaces = []Surface{UserTool, AuthorSite, DMZ}

// parseSurfaces reads a comma separated surface list; unknown entries are skipped.
func parseSurfaces(s string) []Surface {
	var out []Surface
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		for _, known := range allSurfaces {
			if part == string(known) {
				out = append(out, known)
			}
		}
	}
	return out
}

func formatSurfaces(surfaces []Surface) string {
	parts := make([]string, 0, len(surfaces))
	for _, known := range allSurfaces {
		for _, s := range surfaces {
			if s == known {
				parts = append(parts, string(s))
				break
			}
		}
	}
	return strings.Join(parts, ",")
}

func surfacesFromFlags(usertool, authorsite, login bool) []Surface {
	var out []Surface
	if usertool {
		out = append(out, UserTool)
	}
	if authorsite {
		out = append(out, AuthorSite)
	}
	if login {
		out = append(out, DMZ)
	}
	return out
}

// Base holds the settings every plugin has.
type Base struct {
	Icon     string    `json:"icon"`
	Surfaces []Surface `json:"surfaces"`
	Position int       `json:"position"`
}

// EnabledOn reports whether the plugin is shown on surface.
func (b Base) EnabledOn(surface Surface) bool {
	for _, s := range b.Surfaces {
		if s == surface {
			return true
		}
	}
	return false
}

// PluginConfig is the typed configuration of one plugin. The concrete type is fixed
// by the plugin: AcademyConfig, ConfluenceConfig, SupportConfig, CourseConfig or
// CustomLinkConfig.
type PluginConfig interface {
	Plugin() Plugin
	Common() Base
	isPluginConfig()
}

// AcademyConfig links to the video academy.
type AcademyConfig struct {
	Base
	Link string `json:"link"`
}

// ConfluenceConfig enables the online manual.
type ConfluenceConfig struct {
	Base
}

// SupportConfig opens a mail to the support address.
type SupportConfig struct {
	Base
	Email string `json:"email"`
}

// CourseConfig opens a help course identified by its soft key.
type CourseConfig struct {
	Base
	Softkey string `json:"softkey"`
}

// CustomLinkConfig is one of the three free links.
type CustomLinkConfig struct {
	Base
	Slot      Plugin `json:"slot"`
	Link      string `json:"link"`
	NewWindow bool   `json:"newWindow"`
}

func (AcademyConfig) Plugin() Plugin      { return Academy }
func (ConfluenceConfig) Plugin() Plugin   { return Confluence }
func (SupportConfig) Plugin() Plugin      { return Support }
func (CourseConfig) Plugin() Plugin       { return Course }
func (c CustomLinkConfig) Plugin() Plugin { return c.Slot }

func (c AcademyConfig) Common() Base    { return c.Base }
func (c ConfluenceConfig) Common() Base { return c.Base }
func (c SupportConfig) Common() Base    { return c.Base }
func (c CourseConfig) Common() Base     { return c.Base }
func (c CustomLinkConfig) Common() Base { return c.Base }

func (AcademyConfig) isPluginConfig()    {}
func (ConfluenceConfig) isPluginConfig() {}
func (SupportConfig) isPluginConfig()    {}
func (CourseConfig) isPluginConfig()     {}
func (CustomLinkConfig) isPluginConfig() {}
