package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/auth"
	"github.com/wabain/codekeeper/internal/dto"
	"github.com/wabain/codekeeper/internal/render"
	"github.com/wabain/codekeeper/internal/service"
)

// AdminHandler serves the session-protected management area: a
// dashboard with record counts and list/new/edit/delete forms for each
// record type.
type AdminHandler struct {
	snippets  *service.SnippetService
	people    *service.PersonService
	tags      *service.TagService
	languages *service.LanguageService
	auth      *service.AuthService
	renderer  *render.Renderer
	logger    *slog.Logger
}

func NewAdminHandler(
	snippets *service.SnippetService,
	people *service.PersonService,
	tags *service.TagService,
	languages *service.LanguageService,
	authSvc *service.AuthService,
	renderer *render.Renderer,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		snippets:  snippets,
		people:    people,
		tags:      tags,
		languages: languages,
		auth:      authSvc,
		renderer:  renderer,
		logger:    logger,
	}
}

// --- template contexts ---

type adminLoginPage struct {
	Title string
	Error string
}

type adminTypeCount struct {
	Label  string
	Plural string
	Count  int64
}

type adminDashboardPage struct {
	Title string
	Types []adminTypeCount
}

type adminRow struct {
	ID    string
	Cells []string
}

type adminListPage struct {
	Title   string
	Plural  string
	Headers []string
	Rows    []adminRow
	Error   string
}

type adminOption struct {
	Value    string
	Label    string
	Selected bool
}

type adminField struct {
	Name    string
	Label   string
	Kind    string // text, textarea, select, multiselect
	Value   string
	Options []adminOption
}

type adminFormPage struct {
	Title  string
	Plural string
	Action string
	Error  string
	Fields []adminField
}

func (h *AdminHandler) renderAdmin(w http.ResponseWriter, status int, page string, payload any) {
	if err := h.renderer.Page(w, status, page, payload); err != nil {
		h.logger.Error("failed to render admin page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// formError turns a domain error into the banner text shown above an
// admin form. Anything unrecognized stays generic.
func formError(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "something went wrong, try again"
}

// --- session ---

func (h *AdminHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, http.StatusOK, "admin_login.html", adminLoginPage{Title: "Log in"})
}

func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.auth.Login(r.Context(), dto.LoginInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	})
	if err != nil {
		h.renderAdmin(w, http.StatusUnauthorized, "admin_login.html", adminLoginPage{
			Title: "Log in",
			Error: "Invalid username or password.",
		})
		return
	}

	auth.SetSessionCookie(w, result.Token)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// --- dashboard ---

func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts := []struct {
		label  string
		plural string
		count  func() (int64, error)
	}{
		{"Snippets", "snippets", func() (int64, error) { return h.snippets.Count(ctx) }},
		{"People", "people", func() (int64, error) { return h.people.Count(ctx) }},
		{"Tags", "tags", func() (int64, error) { return h.tags.Count(ctx) }},
		{"Languages", "languages", func() (int64, error) { return h.languages.Count(ctx) }},
	}

	page := adminDashboardPage{Title: "Administration"}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			h.logger.Error("failed to count records",
				slog.String("type", c.plural),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		page.Types = append(page.Types, adminTypeCount{Label: c.label, Plural: c.plural, Count: n})
	}

	h.renderAdmin(w, http.StatusOK, "admin_dashboard.html", page)
}

// --- snippets ---

func (h *AdminHandler) HandleSnippetTable(w http.ResponseWriter, r *http.Request) {
	snippets, err := h.snippets.List(r.Context(), service.MaxListLimit, 0, "")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := adminListPage{
		Title:   "Snippets",
		Plural:  "snippets",
		Headers: []string{"Title", "Creator", "Language", "Tags"},
	}
	for _, s := range snippets {
		tags := ""
		for i, t := range s.Tags {
			if i > 0 {
				tags += ", "
			}
			tags += t.Name
		}
		page.Rows = append(page.Rows, adminRow{
			ID:    s.ID,
			Cells: []string{s.Title, s.Creator.FullName, s.Language.Name, tags},
		})
	}
	h.renderAdmin(w, http.StatusOK, "admin_list.html", page)
}

// snippetFormFields builds the snippet form: text inputs plus selects
// backed by the current people, languages, and tags.
func (h *AdminHandler) snippetFormFields(r *http.Request, input dto.SnippetInput) ([]adminField, error) {
	ctx := r.Context()

	people, err := h.people.List(ctx, service.MaxListLimit, 0)
	if err != nil {
		return nil, err
	}
	languages, err := h.languages.List(ctx, service.MaxListLimit, 0)
	if err != nil {
		return nil, err
	}
	tags, err := h.tags.List(ctx, service.MaxListLimit, 0)
	if err != nil {
		return nil, err
	}

	selectedTags := make(map[string]bool, len(input.TagIDs))
	for _, id := range input.TagIDs {
		selectedTags[id] = true
	}

	creatorOpts := make([]adminOption, 0, len(people))
	for _, p := range people {
		creatorOpts = append(creatorOpts, adminOption{
			Value:    p.ID,
			Label:    p.FullName,
			Selected: p.ID == input.CreatorID,
		})
	}
	languageOpts := make([]adminOption, 0, len(languages))
	for _, l := range languages {
		languageOpts = append(languageOpts, adminOption{
			Value:    l.ID,
			Label:    l.Name,
			Selected: l.ID == input.LanguageID,
		})
	}
	tagOpts := make([]adminOption, 0, len(tags))
	for _, t := range tags {
		tagOpts = append(tagOpts, adminOption{
			Value:    t.ID,
			Label:    t.Name,
			Selected: selectedTags[t.ID],
		})
	}

	return []adminField{
		{Name: "title", Label: "Title", Kind: "text", Value: input.Title},
		{Name: "content", Label: "Content", Kind: "textarea", Value: input.Content},
		{Name: "creator_id", Label: "Creator", Kind: "select", Options: creatorOpts},
		{Name: "language_id", Label: "Language", Kind: "select", Options: languageOpts},
		{Name: "tag_ids", Label: "Tags", Kind: "multiselect", Options: tagOpts},
	}, nil
}

func parseSnippetForm(r *http.Request) dto.SnippetInput {
	return dto.SnippetInput{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		CreatorID:  r.FormValue("creator_id"),
		LanguageID: r.FormValue("language_id"),
		TagIDs:     r.Form["tag_ids"],
	}
}

func (h *AdminHandler) renderSnippetForm(w http.ResponseWriter, r *http.Request, status int, action, title, errMsg string, input dto.SnippetInput) {
	fields, err := h.snippetFormFields(r, input)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderAdmin(w, status, "admin_form.html", adminFormPage{
		Title:  title,
		Plural: "snippets",
		Action: action,
		Error:  errMsg,
		Fields: fields,
	})
}

func (h *AdminHandler) HandleSnippetNew(w http.ResponseWriter, r *http.Request) {
	h.renderSnippetForm(w, r, http.StatusOK, "/admin/snippets/new", "Add snippet", "", dto.SnippetInput{})
}

func (h *AdminHandler) HandleSnippetCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	input := parseSnippetForm(r)

	if _, err := h.snippets.Create(r.Context(), input); err != nil {
		h.renderSnippetForm(w, r, http.StatusBadRequest, "/admin/snippets/new", "Add snippet", formError(err), input)
		return
	}
	http.Redirect(w, r, "/admin/snippets", http.StatusSeeOther)
}

func (h *AdminHandler) HandleSnippetEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snippet, err := h.snippets.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	input := dto.SnippetInput{
		Title:      snippet.Title,
		Content:    snippet.Content,
		CreatorID:  snippet.Creator.ID,
		LanguageID: snippet.Language.ID,
	}
	for _, t := range snippet.Tags {
		input.TagIDs = append(input.TagIDs, t.ID)
	}

	action := fmt.Sprintf("/admin/snippets/%s/edit", id)
	h.renderSnippetForm(w, r, http.StatusOK, action, "Edit snippet", "", input)
}

func (h *AdminHandler) HandleSnippetUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	input := parseSnippetForm(r)

	if _, err := h.snippets.Update(r.Context(), id, input); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		action := fmt.Sprintf("/admin/snippets/%s/edit", id)
		h.renderSnippetForm(w, r, http.StatusBadRequest, action, "Edit snippet", formError(err), input)
		return
	}
	http.Redirect(w, r, "/admin/snippets", http.StatusSeeOther)
}

func (h *AdminHandler) HandleSnippetDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.snippets.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/snippets", http.StatusSeeOther)
}

// --- people ---

// personListPage shows each person surname-first, matching the order
// the repository lists them in.
func personListPage(people []dto.PersonRepr, errMsg string) adminListPage {
	page := adminListPage{
		Title:   "People",
		Plural:  "people",
		Headers: []string{"Person"},
		Error:   errMsg,
	}
	for _, p := range people {
		page.Rows = append(page.Rows, adminRow{
			ID:    p.ID,
			Cells: []string{p.LastName + ", " + p.FirstName},
		})
	}
	return page
}

func (h *AdminHandler) HandlePersonTable(w http.ResponseWriter, r *http.Request) {
	people, err := h.people.List(r.Context(), service.MaxListLimit, 0)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderAdmin(w, http.StatusOK, "admin_list.html", personListPage(people, ""))
}

func personFormFields(input dto.PersonInput) []adminField {
	return []adminField{
		{Name: "first_name", Label: "First name", Kind: "text", Value: input.FirstName},
		{Name: "last_name", Label: "Last name", Kind: "text", Value: input.LastName},
	}
}

func (h *AdminHandler) HandlePersonNew(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, http.StatusOK, "admin_form.html", adminFormPage{
		Title:  "Add person",
		Plural: "people",
		Action: "/admin/people/new",
		Fields: personFormFields(dto.PersonInput{}),
	})
}

func (h *AdminHandler) HandlePersonCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	input := dto.PersonInput{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	}

	if _, err := h.people.Create(r.Context(), input); err != nil {
		h.renderAdmin(w, http.StatusBadRequest, "admin_form.html", adminFormPage{
			Title:  "Add person",
			Plural: "people",
			Action: "/admin/people/new",
			Error:  formError(err),
			Fields: personFormFields(input),
		})
		return
	}
	http.Redirect(w, r, "/admin/people", http.StatusSeeOther)
}

func (h *AdminHandler) HandlePersonEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	person, err := h.people.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.renderAdmin(w, http.StatusOK, "admin_form.html", adminFormPage{
		Title:  "Edit person",
		Plural: "people",
		Action: fmt.Sprintf("/admin/people/%s/edit", id),
		Fields: personFormFields(dto.PersonInput{
			FirstName: person.FirstName,
			LastName:  person.LastName,
		}),
	})
}

func (h *AdminHandler) HandlePersonUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	input := dto.PersonInput{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	}

	if _, err := h.people.Update(r.Context(), id, input); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderAdmin(w, http.StatusBadRequest, "admin_form.html", adminFormPage{
			Title:  "Edit person",
			Plural: "people",
			Action: fmt.Sprintf("/admin/people/%s/edit", id),
			Error:  formError(err),
			Fields: personFormFields(input),
		})
		return
	}
	http.Redirect(w, r, "/admin/people", http.StatusSeeOther)
}

// HandlePersonDelete refuses, with a banner on the list page, when the
// person is still credited on snippets.
func (h *AdminHandler) HandlePersonDelete(w http.ResponseWriter, r *http.Request) {
	err := h.people.Delete(r.Context(), r.PathValue("id"))
	if err == nil {
		http.Redirect(w, r, "/admin/people", http.StatusSeeOther)
		return
	}
	if errors.Is(err, apperror.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, apperror.ErrConflict) {
		h.personTableWithError(w, r, formError(err))
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (h *AdminHandler) personTableWithError(w http.ResponseWriter, r *http.Request, errMsg string) {
	people, err := h.people.List(r.Context(), service.MaxListLimit, 0)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderAdmin(w, http.StatusConflict, "admin_list.html", personListPage(people, errMsg))
}

// --- tags ---

func nameFormFields(value string) []adminField {
	return []adminField{
		{Name: "name", Label: "Name", Kind: "text", Value: value},
	}
}

func (h *AdminHandler) HandleTagTable(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context(), service.MaxListLimit, 0)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := adminListPage{Title: "Tags", Plural: "tags", Headers: []string{"Name"}}
	for _, t := range tags {
		page.Rows = append(page.Rows, adminRow{ID: t.ID, Cells: []string{t.Name}})
	}
	h.renderAdmin(w, http.StatusOK, "admin_list.html", page)
}

func (h *AdminHandler) HandleTagNew(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, http.StatusOK, "admin_form.html", adminFormPage{
		Title:  "Add tag",
		Plural: "tags",
		Action: "/admin/tags/new",
		Fields: nameFormFields(""),
	})
}

func (h *AdminHandler) HandleTagCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name := r.FormValue("name")

	if _, err := h.tags.Create(r.Context(), dto.TagInput{Name: name}); err != nil {
		h.renderAdmin(w, http.StatusBadRequest, "admin_form.html", adminFormPage{
			Title:  "Add tag",
			Plural: "tags",
			Action: "/admin/tags/new",
			Error:  formError(err),
			Fields: nameFormFields(name),
		})
		return
	}
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

func (h *AdminHandler) HandleTagEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tag, err := h.tags.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.renderAdmin(w, http.StatusOK, "admin_form.html", adminFormPage{
		Title:  "Edit tag",
		Plural: "tags",
		Action: fmt.Sprintf("/admin/tags/%s/edit", id),
		Fields: nameFormFields(tag.Name),
	})
}

func (h *AdminHandler) HandleTagUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	name := r.FormValue("name")

	if _, err := h.tags.Update(r.Context(), id, dto.TagInput{Name: name}); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderAdmin(w, http.StatusBadRequest, "admin_form.html", adminFormPage{
			Title:  "Edit tag",
			Plural: "tags",
			Action: fmt.Sprintf("/admin/tags/%s/edit", id),
			Error:  formError(err),
			Fields: nameFormFields(name),
		})
		return
	}
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

func (h *AdminHandler) HandleTagDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

// --- languages ---

func languageListPage(languages []dto.LanguageRepr, errMsg string) adminListPage {
	page := adminListPage{Title: "Languages", Plural: "languages", Headers: []string{"Name"}, Error: errMsg}
	for _, l := range languages {
		page.Rows = append(page.Rows, adminRow{ID: l.ID, Cells: []string{l.Name}})
	}
	return page
}

func (h *AdminHandler) HandleLanguageTable(w http.ResponseWriter, r *http.Request) {
	languages, err := h.languages.List(r.Context(), service.MaxListLimit, 0)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderAdmin(w, http.StatusOK, "admin_list.html", languageListPage(languages, ""))
}

func (h *AdminHandler) HandleLanguageNew(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, http.StatusOK, "admin_form.html", adminFormPage{
		Title:  "Add language",
		Plural: "languages",
		Action: "/admin/languages/new",
		Fields: nameFormFields(""),
	})
}

func (h *AdminHandler) HandleLanguageCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name := r.FormValue("name")

	if _, err := h.languages.Create(r.Context(), dto.LanguageInput{Name: name}); err != nil {
		h.renderAdmin(w, http.StatusBadRequest, "admin_form.html", adminFormPage{
			Title:  "Add language",
			Plural: "languages",
			Action: "/admin/languages/new",
			Error:  formError(err),
			Fields: nameFormFields(name),
		})
		return
	}
	http.Redirect(w, r, "/admin/languages", http.StatusSeeOther)
}

func (h *AdminHandler) HandleLanguageEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	language, err := h.languages.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.renderAdmin(w, http.StatusOK, "admin_form.html", adminFormPage{
		Title:  "Edit language",
		Plural: "languages",
		Action: fmt.Sprintf("/admin/languages/%s/edit", id),
		Fields: nameFormFields(language.Name),
	})
}

func (h *AdminHandler) HandleLanguageUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	name := r.FormValue("name")

	if _, err := h.languages.Update(r.Context(), id, dto.LanguageInput{Name: name}); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderAdmin(w, http.StatusBadRequest, "admin_form.html", adminFormPage{
			Title:  "Edit language",
			Plural: "languages",
			Action: fmt.Sprintf("/admin/languages/%s/edit", id),
			Error:  formError(err),
			Fields: nameFormFields(name),
		})
		return
	}
	http.Redirect(w, r, "/admin/languages", http.StatusSeeOther)
}

// HandleLanguageDelete refuses, with a banner on the list page, when
// snippets still use the language.
func (h *AdminHandler) HandleLanguageDelete(w http.ResponseWriter, r *http.Request) {
	err := h.languages.Delete(r.Context(), r.PathValue("id"))
	if err == nil {
		http.Redirect(w, r, "/admin/languages", http.StatusSeeOther)
		return
	}
	if errors.Is(err, apperror.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, apperror.ErrConflict) {
		languages, lerr := h.languages.List(r.Context(), service.MaxListLimit, 0)
		if lerr != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.renderAdmin(w, http.StatusConflict, "admin_list.html", languageListPage(languages, formError(err)))
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
