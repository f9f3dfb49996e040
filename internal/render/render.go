// Package render decides how a response leaves the server: JSON for
// API clients, HTML for browsers. It owns the parsed templates for the
// site pages, the admin forms, and the browsable API view.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// Format is the negotiated response representation.
type Format int

const (
	FormatJSON Format = iota
	FormatHTML
)

// Negotiate picks a Format for the request. A ?format= query value
// (json, html, api) overrides the Accept header; otherwise the first
// recognized media type in the Accept header wins, and anything else
// falls back to JSON.
func Negotiate(r *http.Request) Format {
	switch r.URL.Query().Get("format") {
	case "json":
		return FormatJSON
	case "html", "api":
		return FormatHTML
	}

	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := strings.TrimSpace(part)
		if i := strings.Index(mediaType, ";"); i >= 0 {
			mediaType = strings.TrimSpace(mediaType[:i])
		}
		switch mediaType {
		case "text/html", "application/xhtml+xml":
			return FormatHTML
		case "application/json", "*/*":
			return FormatJSON
		}
	}
	return FormatJSON
}

// templateContext is what every template executes against. The page
// payload always sits under Content; that one substitution is the
// renderer's whole contract, the rest belongs to the templates.
type templateContext struct {
	Content any
}

// Renderer holds the parsed template set. Each page file is parsed
// together with base.html so its {{define "content"}} block fills the
// layout's placeholder.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parses base.html plus every sibling *.html page in templateDir.
func New(templateDir string, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(templateDir, "base.html")

	files, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("render: listing templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, file := range files {
		name := filepath.Base(file)
		if name == "base.html" {
			continue
		}
		tmpl, err := template.ParseFiles(base, file)
		if err != nil {
			return nil, fmt.Errorf("render: parsing %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("render: no page templates in %s", templateDir)
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Page renders one page template inside the base layout, with payload
// wrapped under the Content key.
//
// The page renders into a buffer first; a template error halfway
// through must not leak a torn page behind an already-sent status.
func (rd *Renderer) Page(w http.ResponseWriter, status int, page string, payload any) error {
	tmpl, ok := rd.pages[page]
	if !ok {
		return fmt.Errorf("render: unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", templateContext{Content: payload}); err != nil {
		return fmt.Errorf("render: executing %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.Error("failed to write rendered page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// APIPayload is the context for the browsable API page: the resource
// title, the allowed methods, the response status, and the same JSON
// an API client would have received, pretty-printed.
type APIPayload struct {
	Title      string
	Methods    []string
	Status     int
	StatusText string
	Body       string
}

// APIPage renders the browsable HTML view of an API response.
func (rd *Renderer) APIPage(w http.ResponseWriter, status int, title string, methods []string, payload any) error {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("render: encoding API body: %w", err)
	}

	return rd.Page(w, status, "api.html", APIPayload{
		Title:      title,
		Methods:    methods,
		Status:     status,
		StatusText: http.StatusText(status),
		Body:       string(body),
	})
}
