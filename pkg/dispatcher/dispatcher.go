package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openolat/olat-gateway/pkg/help"
	"github.com/openolat/olat-gateway/pkg/lecture"
	"github.com/openolat/olat-gateway/pkg/license"
	"github.com/openolat/olat-gateway/pkg/onlyoffice"
	"github.com/openolat/olat-gateway/pkg/settings"
	"github.com/openolat/olat-gateway/pkg/userrequest"
)

const logPrefix = "dispatcher:dispatch"

// HealthFunc reports the health of the service.
type HealthFunc func(ctx context.Context) map[string]interface{}

// Services are the components the dispatcher routes to. Nil components answer with
// METHOD_NOT_FOUND.
type Services struct {
	Decoder    *userrequest.Decoder
	Help       *help.Module
	Lecture    *lecture.Module
	OnlyOffice *onlyoffice.Module
	Licenses   license.Repository
	Health     HealthFunc
}

// Dispatcher routes COMMS requests to gateway methods.
type Dispatcher struct {
	svc Services
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(svc Services) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Dispatch routes a request to the appropriate method and returns a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) *Response {
	slog.Debug(fmt.Sprintf("%s - method=%s id=%s", logPrefix, req.Method, req.ID))

	handler := d.route(req.Method)
	if handler == nil {
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Unknown method: %s", req.Method), false)
	}
	return handler(ctx, req)
}

type handlerFunc func(ctx context.Context, req *Request) *Response

func (d *Dispatcher) route(method string) handlerFunc {
	switch {
	case method == MethodHealth:
		return d.handleHealth
	case method == MethodURIDecode && d.svc.Decoder != nil:
		return d.handleDecode
	case method == MethodHelpList && d.svc.Help != nil:
		return d.handleHelpList
	case method == MethodHelpSave && d.svc.Help != nil:
		return d.handleHelpSave
	case method == MethodHelpDelete && d.svc.Help != nil:
		return d.handleHelpDelete
	case method == MethodHelpSetPosition && d.svc.Help != nil:
		return d.handleHelpSetPosition
	case method == MethodHelpSetEnabled && d.svc.Help != nil:
		return d.handleHelpSetEnabled
	case method == MethodLectureGet && d.svc.Lecture != nil:
		return d.handleLectureGet
	case method == MethodLectureApply && d.svc.Lecture != nil:
		return d.handleLectureApply
	case method == MethodOnlyOfficeGet && d.svc.OnlyOffice != nil:
		return d.handleOnlyOfficeGet
	case method == MethodOnlyOfficeApply && d.svc.OnlyOffice != nil:
		return d.handleOnlyOfficeApply
	case method == MethodLicenseList && d.svc.Licenses != nil:
		return d.handleLicenseList
	default:
		return nil
	}
}

func (d *Dispatcher) handleDecode(_ context.Context, req *Request) *Response {
	var input DecodeParams
	if err := unmarshalParams(req.Params, &input); err != nil || input.Path == "" {
		return errorResponse(req.ID, CodeInvalidArgument, "uri.decode requires a path", false)
	}
	ur, err := d.svc.Decoder.DecodePath(input.Path, input.Params)
	if err != nil {
		var ae *userrequest.AssertError
		if errors.As(err, &ae) {
			return &Response{ID: req.ID, Error: &ErrorDetail{
				Code:    CodeRejected,
				Message: ae.Error(),
				Details: map[string]string{"reason": userrequest.ReasonCode(err), "input": ae.Input},
			}}
		}
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: ur.Descriptor()}
}

func (d *Dispatcher) handleHelpList(_ context.Context, req *Request) *Response {
	var input HelpListParams
	if err := unmarshalParams(req.Params, &input); err != nil {
		return errorResponse(req.ID, CodeInvalidArgument, "Failed to parse help.list params", false)
	}
	if input.Surface == "" {
		return &Response{ID: req.ID, Ok: true, Result: d.svc.Help.Snapshot()}
	}
	links := d.svc.Help.Plugins(help.Surface(input.Surface))
	if links == nil {
		links = []help.Link{}
	}
	return &Response{ID: req.ID, Ok: true, Result: map[string]interface{}{
		"enabled": d.svc.Help.IsHelpEnabled(),
		"links":   links,
	}}
}

func (d *Dispatcher) handleHelpSave(ctx context.Context, req *Request) *Response {
	var input HelpSaveParams
	if err := unmarshalParams(req.Params, &input); err != nil || input.Plugin == "" {
		return errorResponse(req.ID, CodeInvalidArgument, "help.save requires a plugin", false)
	}
	err := d.svc.Help.SavePlugin(ctx, input.Plugin, help.SaveInput{
		Icon:       input.Icon,
		Input:      input.Input,
		UserTool:   input.UserTool,
		AuthorSite: input.AuthorSite,
		Login:      input.Login,
		NewWindow:  input.NewWindow,
	})
	if err != nil {
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: d.svc.Help.Snapshot()}
}

func (d *Dispatcher) handleHelpDelete(ctx context.Context, req *Request) *Response {
	var input HelpPluginParams
	if err := unmarshalParams(req.Params, &input); err != nil || input.Plugin == "" {
		return errorResponse(req.ID, CodeInvalidArgument, "help.delete requires a plugin", false)
	}
	if err := d.svc.Help.DeletePlugin(ctx, input.Plugin); err != nil {
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: d.svc.Help.Snapshot()}
}

func (d *Dispatcher) handleHelpSetPosition(ctx context.Context, req *Request) *Response {
	var input HelpPluginParams
	if err := unmarshalParams(req.Params, &input); err != nil || input.Plugin == "" || input.Position == nil {
		return errorResponse(req.ID, CodeInvalidArgument, "help.setPosition requires a plugin and a position", false)
	}
	if err := d.svc.Help.SetPosition(ctx, input.Plugin, *input.Position); err != nil {
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: d.svc.Help.Snapshot()}
}

func (d *Dispatcher) handleHelpSetEnabled(ctx context.Context, req *Request) *Response {
	var input EnabledParams
	if err := unmarshalParams(req.Params, &input); err != nil || input.Enabled == nil {
		return errorResponse(req.ID, CodeInvalidArgument, "help.setEnabled requires enabled", false)
	}
	if err := d.svc.Help.SetHelpEnabled(ctx, *input.Enabled); err != nil {
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: d.svc.Help.Snapshot()}
}

func (d *Dispatcher) handleLectureGet(_ context.Context, req *Request) *Response {
	return &Response{ID: req.ID, Ok: true, Result: map[string]interface{}{
		"settings": d.svc.Lecture.Settings(),
		"form":     d.svc.Lecture.Form(),
	}}
}

func (d *Dispatcher) handleLectureApply(ctx context.Context, req *Request) *Response {
	var input lecture.Form
	if err := unmarshalParams(req.Params, &input); err != nil {
		return errorResponse(req.ID, CodeInvalidArgument, "Failed to parse lecture.apply params", false)
	}
	s, err := d.svc.Lecture.Apply(ctx, input)
	if err != nil {
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: s}
}

func (d *Dispatcher) handleOnlyOfficeGet(_ context.Context, req *Request) *Response {
	return &Response{ID: req.ID, Ok: true, Result: d.svc.OnlyOffice.Settings()}
}

func (d *Dispatcher) handleOnlyOfficeApply(ctx context.Context, req *Request) *Response {
	var input onlyoffice.Form
	if err := unmarshalParams(req.Params, &input); err != nil {
		return errorResponse(req.ID, CodeInvalidArgument, "Failed to parse onlyoffice.apply params", false)
	}
	s, err := d.svc.OnlyOffice.Apply(ctx, input)
	if err != nil {
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: s}
}

func (d *Dispatcher) handleLicenseList(ctx context.Context, req *Request) *Response {
	types, err := d.svc.Licenses.ListLicenseTypes(ctx)
	if err != nil {
		return toErrorResponse(req.ID, err)
	}
	return &Response{ID: req.ID, Ok: true, Result: map[string]interface{}{"licenseTypes": types}}
}

func (d *Dispatcher) handleHealth(ctx context.Context, req *Request) *Response {
	result := map[string]interface{}{"status": "ok"}
	if d.svc.Health != nil {
		result = d.svc.Health(ctx)
	}
	return &Response{ID: req.ID, Ok: true, Result: result}
}

// --- helpers ---

// unmarshalParams accepts missing params as an empty object.
func unmarshalParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func errorResponse(id, code, message string, retryable bool) *Response {
	return &Response{
		ID: id,
		Ok: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Retryable: retryable,
		},
	}
}

// toErrorResponse maps domain errors to error codes. Anything unknown is an internal,
// retryable error.
func toErrorResponse(id string, err error) *Response {
	var fieldErrs settings.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return &Response{ID: id, Error: &ErrorDetail{
			Code:    CodeValidationFailed,
			Message: fieldErrs.Error(),
			Details: []settings.FieldError(fieldErrs),
		}}
	case errors.Is(err, help.ErrUnknownPlugin):
		return errorResponse(id, CodeNotFound, err.Error(), false)
	case errors.Is(err, help.ErrInvalidInput):
		return errorResponse(id, CodeValidationFailed, err.Error(), false)
	default:
		slog.Error(fmt.Sprintf("%s - request %s failed: %v", logPrefix, id, err))
		return errorResponse(id, CodeInternal, err.Error(), true)
	}
}
