package handler

import (
	"log/slog"
	"net/http"

	"github.com/wabain/codekeeper/internal/dto"
	"github.com/wabain/codekeeper/internal/render"
	"github.com/wabain/codekeeper/internal/service"
)

const homePageSize = 10

// PagesHandler serves the server-rendered site: home, snippet list and
// detail, person detail.
type PagesHandler struct {
	snippets *service.SnippetService
	people   *service.PersonService
	renderer *render.Renderer
	resp     *responder
	logger   *slog.Logger
}

func NewPagesHandler(
	snippets *service.SnippetService,
	people *service.PersonService,
	renderer *render.Renderer,
	logger *slog.Logger,
) *PagesHandler {
	return &PagesHandler{
		snippets: snippets,
		people:   people,
		renderer: renderer,
		resp:     &responder{renderer: renderer, logger: logger},
		logger:   logger,
	}
}

type homePage struct {
	Title    string
	Snippets []dto.SnippetRepr
}

type snippetListPage struct {
	Title    string
	Search   string
	Snippets []dto.SnippetRepr
}

type snippetDetailPage struct {
	Title   string
	Snippet *dto.SnippetRepr
}

type personDetailPage struct {
	Title    string
	Person   *dto.PersonRepr
	Snippets []dto.SnippetRepr
}

// renderPage executes a site template; a render failure after the
// service call succeeded is a plain 500.
func (h *PagesHandler) renderPage(w http.ResponseWriter, page string, payload any) {
	if err := h.renderer.Page(w, http.StatusOK, page, payload); err != nil {
		h.logger.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleHome serves GET / with the most recent snippets.
func (h *PagesHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	snippets, err := h.snippets.List(r.Context(), homePageSize, 0, "")
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.renderPage(w, "index.html", homePage{Title: "codekeeper", Snippets: snippets})
}

// HandleSnippetList serves GET /snippets, with the same ?search= the
// API offers.
func (h *PagesHandler) HandleSnippetList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	search := r.URL.Query().Get("search")

	snippets, err := h.snippets.List(r.Context(), limit, offset, search)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.renderPage(w, "snippet_list.html", snippetListPage{
		Title:    "Snippets",
		Search:   search,
		Snippets: snippets,
	})
}

// HandleSnippetDetail serves GET /snippets/{id}.
func (h *PagesHandler) HandleSnippetDetail(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}
	h.renderPage(w, "snippet_detail.html", snippetDetailPage{
		Title:   snippet.Title,
		Snippet: snippet,
	})
}

// HandlePersonDetail serves GET /people/{id} with the person's
// snippets underneath.
func (h *PagesHandler) HandlePersonDetail(w http.ResponseWriter, r *http.Request) {
	person, err := h.people.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}

	snippets, err := h.snippets.ListByCreator(r.Context(), person.ID, 0, 0)
	if err != nil {
		h.resp.respondError(w, r, err)
		return
	}

	title := person.FullName
	if title == "" {
		title = "Person"
	}
	h.renderPage(w, "person_detail.html", personDetailPage{
		Title:    title,
		Person:   person,
		Snippets: snippets,
	})
}
