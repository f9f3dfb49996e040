package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/render"
)

// ErrorResponse is the envelope every failed API call returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// errorPage is the template context for a negotiated HTML error.
type errorPage struct {
	Status     int
	StatusText string
	Error      ErrorResponse
}

// writeJSON sends a JSON response. Headers must be set before the
// first body write; after that they are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error to its HTTP status and machine tag.
// The service layer never sees status codes; this switch is the whole
// translation.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, "internal_error"
}

// responder writes negotiated responses. API handlers share one
// instance so every endpoint formats success and failure the same way.
type responder struct {
	renderer *render.Renderer
	logger   *slog.Logger
}

// respond sends a success payload. Browsers get the browsable API page
// for the resource; everything else gets plain JSON. A render failure
// falls back to JSON, which is always available.
func (rp *responder) respond(w http.ResponseWriter, r *http.Request, status int, title string, methods []string, payload any) {
	if render.Negotiate(r) == render.FormatHTML {
		err := rp.renderer.APIPage(w, status, title, methods, payload)
		if err == nil {
			return
		}
		rp.logger.Error("failed to render API page",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, payload)
}

// respondError translates a domain error into the envelope and sends
// it in the negotiated format. Unrecognized errors surface as a
// generic 500; the details go to the log, not the client.
func (rp *responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal_error", Message: "an internal error occurred"}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, resp.Error = errorStatus(err)
		resp.Message = appErr.Message
		resp.Field = appErr.Field
	} else {
		rp.logger.Error("unhandled error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	if render.Negotiate(r) == render.FormatHTML {
		page := errorPage{Status: status, StatusText: http.StatusText(status), Error: resp}
		if rerr := rp.renderer.Page(w, status, "error.html", page); rerr == nil {
			return
		}
	}
	writeJSON(w, status, resp)
}

// listParams reads limit and offset from the query string. Anything
// unparseable comes back as zero and the service applies its defaults.
func listParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
