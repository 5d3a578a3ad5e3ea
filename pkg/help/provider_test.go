package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DefaultProviders(t *testing.T) {
	r := NewRegistry(DefaultProviders("")...)
	for _, p := range allPlugins {
		provider, ok := r.Provider(p)
		require.True(t, ok, "no provider for %s", p)
		assert.Equal(t, p, provider.Plugin())
	}
}

func TestProviders_Link(t *testing.T) {
	r := NewRegistry(DefaultProviders("https://manual.example.org/")...)
	tests := []struct {
		name string
		cfg  PluginConfig
		want Link
	}{
		{"academy", AcademyConfig{Base: Base{Icon: "i"}, Link: "https://a"}, Link{Plugin: Academy, Kind: KindURL, Href: "https://a", Icon: "i", NewWindow: true}},
		{"manual", ConfluenceConfig{Base: Base{Icon: "m"}}, Link{Plugin: Confluence, Kind: KindURL, Href: "https://manual.example.org/", Icon: "m", NewWindow: true}},
		{"support", SupportConfig{Email: "s@x.org"}, Link{Plugin: Support, Kind: KindMail, Href: "mailto:s@x.org"}},
		{"course", CourseConfig{Softkey: "OLAT::c"}, Link{Plugin: Course, Kind: KindCourse, Href: "OLAT::c"}},
		{"custom", CustomLinkConfig{Slot: Custom3, Link: "https://c"}, Link{Plugin: Custom3, Kind: KindURL, Href: "https://c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, ok := r.Provider(tt.cfg.Plugin())
			require.True(t, ok)
			got, err := provider.Link(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_WrongConfig(t *testing.T) {
	r := NewRegistry(DefaultProviders("")...)
	provider, _ := r.Provider(Support)
	_, err := provider.Link(CourseConfig{})
	assert.Error(t, err)
}

func TestManualProvider_PageURL(t *testing.T) {
	m := &ManualProvider{BaseURL: "https://docs.example.org/manual/"}
	assert.Equal(t, "https://docs.example.org/manual/", m.PageURL(""))
	assert.Equal(t, "https://docs.example.org/manual/Course-Editor/", m.PageURL("Course Editor"))
}

func TestPluginKeys(t *testing.T) {
	p, ok := PluginForKey("customLink2Help")
	require.True(t, ok)
	assert.Equal(t, Custom2, p)
	_, ok = PluginForKey("nope")
	assert.False(t, ok)

	_, err := ParsePlugin("wiki")
	assert.ErrorIs(t, err, ErrUnknownPlugin)
}

func TestSurfaces(t *testing.T) {
	assert.Equal(t, []Surface{UserTool, DMZ}, parseSurfaces(" usertool , x,dmz"))
	assert.Equal(t, "usertool,authorsite", formatSurfaces([]Surface{AuthorSite, UserTool}))
	assert.Equal(t, "", formatSurfaces(nil))
}
