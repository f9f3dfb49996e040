// Package handler wires HTTP requests to the service layer. Handlers
// parse the request, call one service method, and hand the result to
// the shared responder; they carry no business rules of their own.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/dto"
	"github.com/wabain/codekeeper/internal/render"
	"github.com/wabain/codekeeper/internal/service"
)

var (
	collectionMethods = []string{http.MethodGet, http.MethodPost}
	instanceMethods   = []string{http.MethodGet, http.MethodPut, http.MethodDelete}
)

// SnippetHandler serves /api/snippets.
type SnippetHandler struct {
	snippets *service.SnippetService
	resp     *responder
	logger   *slog.Logger
}

func NewSnippetHandler(snippets *service.SnippetService, renderer *render.Renderer, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{
		snippets: snippets,
		resp:     &responder{renderer: renderer, logger: logger},
		logger:   logger,
	}
}

// HandleList serves GET /api/snippets. Supports limit/offset paging
// and ?search= on the title.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	search := r.URL.Query().Get("search")

	snippets, err := h.snippets.List(r.Context(), limit, offset, search)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Snippet List", collectionMethods, snippets)
}

// HandleCreate serves POST /api/snippets.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input dto.SnippetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	snippet, err := h.snippets.Create(r.Context(), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGet serves GET /api/snippets/{id}.
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Snippet Instance", instanceMethods, snippet)
}

// HandleUpdate serves PUT /api/snippets/{id} as a full update.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input dto.SnippetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	snippet, err := h.snippets.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete serves DELETE /api/snippets/{id}.
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.snippets.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
