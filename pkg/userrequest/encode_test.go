package userrequest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSegment(t *testing.T) {
	tests := []struct {
		name string
		in   Dispatch
		want string
	}{
		{
			name: "all set",
			in:   Dispatch{WindowID: "92", TimestampID: "20", ComponentID: "15", ComponentVersion: "1", Mode: 0, Params: map[string]string{"lang": "en"}},
			want: "92:20:15:1:0:lang:en",
		},
		{
			name: "unset ids",
			in:   Dispatch{ComponentVersion: "3", Mode: 1},
			want: "0:0:0:3:1",
		},
		{
			name: "params sorted",
			in:   Dispatch{ComponentVersion: "1", Params: map[string]string{"view": "list", "lang": "de"}},
			want: "0:0:0:1:0:lang:de:view:list",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeSegment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeSegment_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   Dispatch
	}{
		{"missing version", Dispatch{WindowID: "1"}},
		{"delimiter in id", Dispatch{WindowID: "a:b", ComponentVersion: "1"}},
		{"slash in value", Dispatch{ComponentVersion: "1", Params: map[string]string{"p": "a/b"}}},
		{"empty value", Dispatch{ComponentVersion: "1", Params: map[string]string{"p": ""}}},
		{"empty key", Dispatch{ComponentVersion: "1", Params: map[string]string{"": "v"}}},
		{"window id is the unset token", Dispatch{WindowID: "0", ComponentVersion: "1"}},
		{"timestamp id is the unset token", Dispatch{TimestampID: "0", ComponentVersion: "1"}},
		{"component id is the unset token", Dispatch{ComponentID: "0", ComponentVersion: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeSegment(tt.in)
			assert.ErrorIs(t, err, ErrUnencodable)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := []Dispatch{
		{WindowID: "92", TimestampID: "20", ComponentID: "15", ComponentVersion: "1", Mode: 0, Params: map[string]string{"lang": "en"}},
		{ComponentVersion: "17", Mode: 1, Params: map[string]string{"a": "1", "b": "2", "c": "3"}},
		{WindowID: "007", ComponentVersion: "01", Mode: 42},
	}
	for _, in := range inputs {
		seg, err := EncodeSegment(in)
		require.NoError(t, err)

		req, err := Parse(prefix, prefix+seg+"/", nil)
		require.NoError(t, err)
		require.True(t, req.IsValidDispatchURI())

		got := req.Dispatch()
		if in.Params == nil {
			in.Params = map[string]string{}
		}
		assert.Equal(t, in, got)
	}
}

func TestBuildURI(t *testing.T) {
	d := Dispatch{WindowID: "9", ComponentVersion: "2", Mode: 1, Params: map[string]string{"q": "grüezi"}}
	uri, err := BuildURI("/olat/", d, "course/my file.html")
	require.NoError(t, err)
	assert.Equal(t, "/olat/9:0:0:2:1:q:gr%C3%BCezi/course/my%20file.html", uri)

	decoded, err := url.PathUnescape(uri)
	require.NoError(t, err)
	req, err := Parse("/olat/", decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, "course/my file.html", req.ModuleURI())
	v, _ := req.Parameter("q")
	assert.Equal(t, "grüezi", v)
}
