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

// LanguageHandler serves /api/languages.
type LanguageHandler struct {
	languages *service.LanguageService
	resp      *responder
	logger    *slog.Logger
}

func NewLanguageHandler(languages *service.LanguageService, renderer *render.Renderer, logger *slog.Logger) *LanguageHandler {
	return &LanguageHandler{
		languages: languages,
		resp:      &responder{renderer: renderer, logger: logger},
		logger:    logger,
	}
}

func (h *LanguageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	languages, err := h.languages.List(r.Context(), limit, offset)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Language List", collectionMethods, languages)
}

func (h *LanguageHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input dto.LanguageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	language, err := h.languages.Create(r.Context(), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, language)
}

func (h *LanguageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	language, err := h.languages.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Language Instance", instanceMethods, language)
}

func (h *LanguageHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input dto.LanguageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	language, err := h.languages.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, language)
}

// HandleDelete serves DELETE /api/languages/{id}. A language snippets
// still use comes back as a 409.
func (h *LanguageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.languages.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
