package userrequest

import "time"

// Descriptor is the JSON form of a decoded request.
type Descriptor struct {
	UUID               string            `json:"uuid"`
	RequestTimestamp   time.Time         `json:"requestTimestamp"`
	URIPrefix          string            `json:"uriPrefix"`
	NonParsedURI       string            `json:"nonParsedUri"`
	ModuleURI          string            `json:"moduleUri"`
	IsValidDispatchURI bool              `json:"validDispatchUri"`
	WindowID           string            `json:"windowId,omitempty"`
	TimestampID        string            `json:"timestampId,omitempty"`
	ComponentID        string            `json:"componentId,omitempty"`
	ComponentVersion   string            `json:"componentVersion,omitempty"`
	Mode               int               `json:"mode"`
	Params             map[string]string `json:"params"`
}

// Descriptor returns a snapshot of r for serialization.
func (r *UserRequest) Descriptor() Descriptor {
	return Descriptor{
		UUID:               r.uuid,
		RequestTimestamp:   r.requestTimestamp,
		URIPrefix:          r.uriPrefix,
		NonParsedURI:       r.nonParsedURI,
		ModuleURI:          r.moduleURI,
		IsValidDispatchURI: r.isValidDispatchURI,
		WindowID:           r.windowID,
		TimestampID:        r.timestampID,
		ComponentID:        r.componentID,
		ComponentVersion:   r.componentVersion,
		Mode:               r.mode,
		Params:             r.Parameters(),
	}
}
