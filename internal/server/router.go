package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openolat/olat-gateway/pkg/dispatcher"
	"github.com/openolat/olat-gateway/pkg/userrequest"
)

const routerLogPrefix = "server:router"

// maxAdminBody bounds admin request bodies.
const maxAdminBody = 1 << 20

// RouterParams holds parameters for NewRouter.
type RouterParams struct {
	Components *Components
	Dispatcher *dispatcher.Dispatcher
	Health     dispatcher.HealthFunc
	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer           prometheus.Gatherer
	StaticDir          string
	HealthCheckTimeout time.Duration
}

type router struct {
	params RouterParams
	static http.Handler
}

// NewRouter builds the HTTP front: health, metrics, admin endpoints and the decoding
// catch-all under the URI prefix.
func NewRouter(params RouterParams) http.Handler {
	if params.HealthCheckTimeout <= 0 {
		params.HealthCheckTimeout = 5 * time.Second
	}
	rt := &router{params: params}
	prefix := params.Components.Decoder.URIPrefix()
	if params.StaticDir != "" {
		rt.static = http.StripPrefix(prefix, http.FileServer(http.Dir(params.StaticDir)))
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", rt.handleHealth)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if params.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/admin", func(r chi.Router) {
		r.Get("/help", rt.handleHelpList)
		r.Post("/help", rt.adminCall(dispatcher.MethodHelpSave))
		r.Put("/help/enabled", rt.adminCall(dispatcher.MethodHelpSetEnabled))
		r.Delete("/help/{plugin}", rt.handleHelpDelete)
		r.Put("/help/{plugin}/position", rt.handleHelpPosition)
		r.Get("/lecture", rt.adminCall(dispatcher.MethodLectureGet))
		r.Post("/lecture", rt.adminCall(dispatcher.MethodLectureApply))
		r.Get("/onlyoffice", rt.adminCall(dispatcher.MethodOnlyOfficeGet))
		r.Post("/onlyoffice", rt.adminCall(dispatcher.MethodOnlyOfficeApply))
		r.Get("/licenses", rt.adminCall(dispatcher.MethodLicenseList))
	})

	r.Handle(prefix+"*", http.HandlerFunc(rt.handleDecode))
	if prefix != "/" {
		r.Handle(prefix[:len(prefix)-1], http.RedirectHandler(prefix, http.StatusMovedPermanently))
	}
	return r
}

func (rt *router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), rt.params.HealthCheckTimeout)
	defer cancel()

	result := map[string]interface{}{"status": "healthy"}
	if rt.params.Health != nil {
		result = rt.params.Health(ctx)
	}
	status := http.StatusOK
	if result["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

// handleDecode decodes every request under the URI prefix. Protocol violations are
// answered with 400 and never produce a descriptor.
func (rt *router) handleDecode(w http.ResponseWriter, r *http.Request) {
	req, err := rt.params.Components.Decoder.Decode(r)
	if err != nil {
		var ae *userrequest.AssertError
		if errors.As(err, &ae) {
			slog.Warn(fmt.Sprintf("%s - rejected %s: %v", routerLogPrefix, r.URL.EscapedPath(), err))
			writeJSON(w, http.StatusBadRequest, &dispatcher.Response{Error: &dispatcher.ErrorDetail{
				Code:    dispatcher.CodeRejected,
				Message: ae.Error(),
				Details: map[string]string{"reason": userrequest.ReasonCode(err), "input": ae.Input},
			}})
			return
		}
		writeJSON(w, http.StatusBadRequest, &dispatcher.Response{Error: &dispatcher.ErrorDetail{
			Code:    dispatcher.CodeInvalidArgument,
			Message: err.Error(),
		}})
		return
	}

	if req.IsValidDispatchURI() {
		slog.Debug(fmt.Sprintf("%s - %s", routerLogPrefix, req))
		writeJSON(w, http.StatusOK, req.Descriptor())
		return
	}
	if rt.static != nil {
		rt.static.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func (rt *router) handleHelpList(w http.ResponseWriter, r *http.Request) {
	var params interface{}
	if surface := r.URL.Query().Get("surface"); surface != "" {
		params = dispatcher.HelpListParams{Surface: surface}
	}
	rt.call(w, r, dispatcher.MethodHelpList, params)
}

func (rt *router) handleHelpDelete(w http.ResponseWriter, r *http.Request) {
	rt.call(w, r, dispatcher.MethodHelpDelete, dispatcher.HelpPluginParams{Plugin: chi.URLParam(r, "plugin")})
}

func (rt *router) handleHelpPosition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position *int `json:"position"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAdminBody)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, &dispatcher.Response{Error: &dispatcher.ErrorDetail{
			Code:    dispatcher.CodeInvalidArgument,
			Message: "Failed to decode request body",
		}})
		return
	}
	rt.call(w, r, dispatcher.MethodHelpSetPosition, dispatcher.HelpPluginParams{
		Plugin:   chi.URLParam(r, "plugin"),
		Position: body.Position,
	})
}

// adminCall forwards the request body as params of method.
func (rt *router) adminCall(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if r.Method != http.MethodGet && r.Body != nil {
			data, err := io.ReadAll(io.LimitReader(r.Body, maxAdminBody))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, &dispatcher.Response{Error: &dispatcher.ErrorDetail{
					Code:    dispatcher.CodeInvalidArgument,
					Message: "Failed to read request body",
				}})
				return
			}
			if len(data) > 0 {
				if !json.Valid(data) {
					writeJSON(w, http.StatusBadRequest, &dispatcher.Response{Error: &dispatcher.ErrorDetail{
						Code:    dispatcher.CodeInvalidArgument,
						Message: "Request body is not valid JSON",
					}})
					return
				}
				raw = data
			}
		}
		rt.dispatch(w, r, &dispatcher.Request{ID: uuid.NewString(), Method: method, Params: raw})
	}
}

func (rt *router) call(w http.ResponseWriter, r *http.Request, method string, params interface{}) {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode params for %s: %v", routerLogPrefix, method, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		raw = data
	}
	rt.dispatch(w, r, &dispatcher.Request{ID: uuid.NewString(), Method: method, Params: raw})
}

func (rt *router) dispatch(w http.ResponseWriter, r *http.Request, req *dispatcher.Request) {
	resp := rt.params.Dispatcher.Dispatch(r.Context(), req)
	writeJSON(w, statusFor(resp), resp)
}

// statusFor maps a dispatcher response to an HTTP status.
func statusFor(resp *dispatcher.Response) int {
	if resp.Ok || resp.Error == nil {
		return http.StatusOK
	}
	switch resp.Error.Code {
	case dispatcher.CodeInvalidArgument, dispatcher.CodeRejected:
		return http.StatusBadRequest
	case dispatcher.CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case dispatcher.CodeNotFound, dispatcher.CodeMethodNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(fmt.Sprintf("%s - response encode: %v", routerLogPrefix, err))
	}
}
