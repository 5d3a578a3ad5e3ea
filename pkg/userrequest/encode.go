package userrequest

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const encodeLogPrefix = "userrequest:encode"

// ErrUnencodable is returned when a Dispatch holds a value the wire format cannot carry.
var ErrUnencodable = errors.New("value cannot be encoded")

// Dispatch is the part of a request that travels in the encoded segment.
// Empty ids mean unset.
type Dispatch struct {
	WindowID         string            `json:"windowId,omitempty"`
	TimestampID      string            `json:"timestampId,omitempty"`
	ComponentID      string            `json:"componentId,omitempty"`
	ComponentVersion string            `json:"componentVersion"`
	Mode             int               `json:"mode"`
	Params           map[string]string `json:"params,omitempty"`
}

// EncodeSegment renders d as an encoded segment. Parameters are written in key order so
// the output is deterministic.
func EncodeSegment(d Dispatch) (string, error) {
	if d.ComponentVersion == "" {
		return "", fmt.Errorf("%s - component version is required: %w", encodeLogPrefix, ErrUnencodable)
	}
	for _, id := range []string{d.WindowID, d.TimestampID, d.ComponentID} {
		if id == unsetToken {
			return "", fmt.Errorf("%s - id %q is reserved for unset: %w", encodeLogPrefix, id, ErrUnencodable)
		}
	}
	tokens := []string{
		orUnset(d.WindowID),
		orUnset(d.TimestampID),
		orUnset(d.ComponentID),
		d.ComponentVersion,
		strconv.Itoa(d.Mode),
	}
	keys := make([]string, 0, len(d.Params))
	for k := range d.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if d.Params[k] == "" || k == "" {
			return "", fmt.Errorf("%s - empty parameter %q: %w", encodeLogPrefix, k, ErrUnencodable)
		}
		tokens = append(tokens, k, d.Params[k])
	}
	for _, t := range tokens {
		if strings.ContainsAny(t, ParamDelim+"/") {
			return "", fmt.Errorf("%s - token %q contains a reserved character: %w", encodeLogPrefix, t, ErrUnencodable)
		}
	}
	return strings.Join(tokens, ParamDelim), nil
}

// BuildURI returns uriPrefix followed by the encoded segment of d and moduleURI. Each
// part is path escaped; the result is suitable for an href.
func BuildURI(uriPrefix string, d Dispatch, moduleURI string) (string, error) {
	segment, err := EncodeSegment(d)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(uriPrefix)
	sb.WriteString(url.PathEscape(segment))
	sb.WriteString("/")
	if moduleURI != "" {
		parts := strings.Split(moduleURI, "/")
		for i, p := range parts {
			parts[i] = url.PathEscape(p)
		}
		sb.WriteString(strings.Join(parts, "/"))
	}
	return sb.String(), nil
}

func orUnset(id string) string {
	if id == "" {
		return unsetToken
	}
	return id
}
