// Package userrequest decodes the dispatch tokens encoded in request paths.
//
// A dispatch URI looks like
//
//	/olat/92:20:15:1:0:lang:en/course/run
//	^^^^^^ uriPrefix (mount point of the gateway)
//	      ^^^^^^^^^^^^^^^^^^^^ encoded segment
//	                           ^^^^^^^^^^ module URI (without leading slash)
//
// The encoded segment carries window id, timestamp id, component id, component
// version and mode, followed by key/value pairs. Everything is separated by ParamDelim.
package userrequest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ParamDelim separates the tokens of the encoded segment.
const ParamDelim = ":"

// unsetToken marks an absent window, timestamp or component id on the wire.
const unsetToken = "0"

var count atomic.Int64

// UserRequest is the decoded form of one inbound request. It is built once by Parse
// and never modified afterwards.
type UserRequest struct {
	uuid             string
	requestTimestamp time.Time

	uriPrefix      string
	nonParsedURI   string
	encodedSegment string
	hasSegment     bool
	moduleURI      string

	windowID         string
	timestampID      string
	componentID      string
	componentVersion string
	mode             int

	params map[string]string

	isValidDispatchURI bool
}

func newUserRequest(uriPrefix string, params map[string]string) *UserRequest {
	p := make(map[string]string, len(params)+4)
	for k, v := range params {
		p[k] = v
	}
	return &UserRequest{
		uriPrefix:        uriPrefix,
		params:           p,
		requestTimestamp: time.Now().UTC(),
	}
}

// UUID returns the process-unique id of the request.
func (r *UserRequest) UUID() string { return r.uuid }

// RequestTimestamp returns when the request was decoded.
func (r *UserRequest) RequestTimestamp() time.Time { return r.requestTimestamp }

// URIPrefix returns the mount point the request was decoded against.
func (r *UserRequest) URIPrefix() string { return r.uriPrefix }

// NonParsedURI returns the decoded path without the prefix; never nil, may be empty.
func (r *UserRequest) NonParsedURI() string { return r.nonParsedURI }

// EncodedSegment returns the first path segment after the prefix. The second value
// is false when no slash followed the prefix.
func (r *UserRequest) EncodedSegment() (string, bool) { return r.encodedSegment, r.hasSegment }

// ModuleURI returns the path remainder after the encoded segment, or "" if absent.
func (r *UserRequest) ModuleURI() string { return r.moduleURI }

// WindowID returns the window id, or "" if unset.
func (r *UserRequest) WindowID() string { return r.windowID }

// TimestampID returns the timestamp id, or "" if unset.
func (r *UserRequest) TimestampID() string { return r.timestampID }

// ComponentID returns the component id, or "" if unset.
func (r *UserRequest) ComponentID() string { return r.componentID }

// ComponentVersion returns the component version token exactly as sent.
func (r *UserRequest) ComponentVersion() string { return r.componentVersion }

// Mode returns the dispatch mode.
func (r *UserRequest) Mode() int { return r.mode }

// IsValidDispatchURI reports whether the encoded segment carried the framework tokens.
// It is false for plain resource URLs such as /olat/auth/go/course.
func (r *UserRequest) IsValidDispatchURI() bool { return r.isValidDispatchURI }

// Parameter returns the value for key from the query, form or encoded segment.
func (r *UserRequest) Parameter(key string) (string, bool) {
	v, ok := r.params[key]
	return v, ok
}

// Parameters returns a copy of all parameters.
func (r *UserRequest) Parameters() map[string]string {
	out := make(map[string]string, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

// ParameterKeys returns the parameter names in sorted order.
func (r *UserRequest) ParameterKeys() []string {
	keys := make([]string, 0, len(r.params))
	for k := range r.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dispatch returns the encodable part of the request.
func (r *UserRequest) Dispatch() Dispatch {
	return Dispatch{
		WindowID:         r.windowID,
		TimestampID:      r.timestampID,
		ComponentID:      r.componentID,
		ComponentVersion: r.componentVersion,
		Mode:             r.mode,
		Params:           r.Parameters(),
	}
}

func (r *UserRequest) String() string {
	var sb strings.Builder
	sb.WriteString("w:" + orNull(r.windowID))
	sb.WriteString(", t:" + orNull(r.timestampID))
	sb.WriteString(", c:" + orNull(r.componentID))
	sb.WriteString(", ct:" + orNull(r.componentVersion))
	sb.WriteString(", m:" + strconv.Itoa(r.mode))
	sb.WriteString(", uri:" + r.uriPrefix + r.nonParsedURI)
	sb.WriteString(", params: {")
	for i, k := range r.ParameterKeys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", k, r.params[k])
	}
	sb.WriteString("}")
	return sb.String()
}

func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}
