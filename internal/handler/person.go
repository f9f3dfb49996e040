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

// PersonHandler serves /api/people.
type PersonHandler struct {
	people *service.PersonService
	resp   *responder
	logger *slog.Logger
}

func NewPersonHandler(people *service.PersonService, renderer *render.Renderer, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{
		people: people,
		resp:   &responder{renderer: renderer, logger: logger},
		logger: logger,
	}
}

func (h *PersonHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	people, err := h.people.List(r.Context(), limit, offset)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Person List", collectionMethods, people)
}

func (h *PersonHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input dto.PersonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	person, err := h.people.Create(r.Context(), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (h *PersonHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	person, err := h.people.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.resp.respond(w, r, http.StatusOK, "Person Instance", instanceMethods, person)
}

func (h *PersonHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input dto.PersonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.resp.respondError(w, r, apperror.ValidationFailed("", "request body is not valid JSON"))
		return
	}

	person, err := h.people.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// HandleDelete serves DELETE /api/people/{id}. A person still credited
// on snippets comes back as a 409.
func (h *PersonHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.people.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
