// Package dispatcher routes incoming COMMS messages to the gateway's admin and decode
// methods.
package dispatcher

import "encoding/json"

// Request is the JSON envelope for incoming COMMS gateway requests.
type Request struct {
	ID     string             `json:"id"`
	Method string             `json:"method"`
	Params json.RawMessage    `json:"params"`
	Ctx    *InvocationContext `json:"ctx,omitempty"`
}

// Response is the JSON envelope for COMMS gateway responses.
type Response struct {
	ID     string       `json:"id"`
	Ok     bool         `json:"ok"`
	Result interface{}  `json:"result,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail holds structured error information.
type ErrorDetail struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable"`
}

// InvocationContext holds context from the caller.
type InvocationContext struct {
	UserID        string   `json:"userId,omitempty"`
	RequestID     string   `json:"requestId,omitempty"`
	CorrelationID string   `json:"correlationId,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	TimeoutMs     int      `json:"timeoutMs,omitempty"`
}

// Error codes.
const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeMethodNotFound   = "METHOD_NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeRejected         = "REJECTED"
	CodeInternal         = "INTERNAL_ERROR"
)

// Method names.
const (
	MethodURIDecode       = "uri.decode"
	MethodHelpList        = "help.list"
	MethodHelpSave        = "help.save"
	MethodHelpDelete      = "help.delete"
	MethodHelpSetPosition = "help.setPosition"
	MethodHelpSetEnabled  = "help.setEnabled"
	MethodLectureGet      = "lecture.get"
	MethodLectureApply    = "lecture.apply"
	MethodOnlyOfficeGet   = "onlyoffice.get"
	MethodOnlyOfficeApply = "onlyoffice.apply"
	MethodLicenseList     = "license.list"
	MethodHealth          = "health"
)

// DecodeParams are the params of uri.decode.
type DecodeParams struct {
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// HelpListParams are the params of help.list. Without a surface the full admin view
// is returned.
type HelpListParams struct {
	Surface string `json:"surface,omitempty"`
}

// HelpSaveParams are the params of help.save.
type HelpSaveParams struct {
	Plugin     string `json:"plugin"`
	Icon       string `json:"icon,omitempty"`
	Input      string `json:"input,omitempty"`
	UserTool   bool   `json:"usertool"`
	AuthorSite bool   `json:"authorsite"`
	Login      bool   `json:"login"`
	NewWindow  bool   `json:"newWindow"`
}

// HelpPluginParams are the params of help.delete and help.setPosition.
type HelpPluginParams struct {
	Plugin   string `json:"plugin"`
	Position *int   `json:"position,omitempty"`
}

// EnabledParams are the params of help.setEnabled.
type EnabledParams struct {
	Enabled *bool `json:"enabled"`
}
