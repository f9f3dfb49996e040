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

// TagHandler serves /api/tags.
type TagHandler struct {
	tags   *service.TagService
	resp   *responder
	logger *slog.Logger
}

func NewTagHandler(tags *service.TagService, renderer *render.Renderer, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tags:   tags,
		resp:   &responder{renderer: renderer, logger: logger},
		logger: logger,
	}
}

func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	tags, err := h.tags.List(r.Context(), limit, offset)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Tag List", collectionMethods, tags)
}

func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input dto.TagInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	tag, err := h.tags.Create(r.Context(), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tags.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Tag Instance", instanceMethods, tag)
}

func (h *TagHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input dto.TagInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	tag, err := h.tags.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
