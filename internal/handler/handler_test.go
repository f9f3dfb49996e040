package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/wabain/codekeeper/internal/auth"
	"github.com/wabain/codekeeper/internal/dto"
	"github.com/wabain/codekeeper/internal/handler"
	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/render"
	"github.com/wabain/codekeeper/internal/repository/gormdb"
	"github.com/wabain/codekeeper/internal/service"
)

// templateDir points at the real site templates, so these tests catch
// template drift along with handler bugs.
const templateDir = "../../web/templates"

// testEnv is the server's dependency chain over an in-memory database,
// minus the router. Handlers are invoked directly; path parameters go
// in with SetPathValue.
type testEnv struct {
	snippets  *service.SnippetService
	people    *service.PersonService
	tags      *service.TagService
	languages *service.LanguageService
	users     *gormdb.UserRepo
	passwords *auth.PasswordService

	snippetHandler  *handler.SnippetHandler
	personHandler   *handler.PersonHandler
	tagHandler      *handler.TagHandler
	languageHandler *handler.LanguageHandler
	pagesHandler    *handler.PagesHandler
	adminHandler    *handler.AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := gormdb.Open(":memory:", logger)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	renderer, err := render.New(templateDir, logger)
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	tokens, err := auth.NewTokenService("handler-test-secret-1234")
	if err != nil {
		t.Fatalf("building token service: %v", err)
	}

	snippetRepo := gormdb.NewSnippetRepo(db)
	personRepo := gormdb.NewPersonRepo(db)
	tagRepo := gormdb.NewTagRepo(db)
	languageRepo := gormdb.NewLanguageRepo(db)
	userRepo := gormdb.NewUserRepo(db)

	env := &testEnv{
		snippets:  service.NewSnippetService(snippetRepo, personRepo, tagRepo, languageRepo, logger),
		people:    service.NewPersonService(personRepo, logger),
		tags:      service.NewTagService(tagRepo, logger),
		languages: service.NewLanguageService(languageRepo, logger),
		users:     userRepo,
		passwords: auth.NewPasswordServiceForTest(bcrypt.MinCost),
	}
	authService := service.NewAuthService(userRepo, tokens, env.passwords, logger)

	env.snippetHandler = handler.NewSnippetHandler(env.snippets, renderer, logger)
	env.personHandler = handler.NewPersonHandler(env.people, renderer, logger)
	env.tagHandler = handler.NewTagHandler(env.tags, renderer, logger)
	env.languageHandler = handler.NewLanguageHandler(env.languages, renderer, logger)
	env.pagesHandler = handler.NewPagesHandler(env.snippets, env.people, renderer, logger)
	env.adminHandler = handler.NewAdminHandler(
		env.snippets, env.people, env.tags, env.languages, authService, renderer, logger)

	return env
}

// --- seed helpers ---

func (e *testEnv) seedPerson(t *testing.T, first, last string) *dto.PersonRepr {
	t.Helper()
	person, err := e.people.Create(context.Background(), dto.PersonInput{FirstName: first, LastName: last})
	if err != nil {
		t.Fatalf("seeding person: %v", err)
	}
	return person
}

func (e *testEnv) seedLanguage(t *testing.T, name string) *dto.LanguageRepr {
	t.Helper()
	language, err := e.languages.Create(context.Background(), dto.LanguageInput{Name: name})
	if err != nil {
		t.Fatalf("seeding language: %v", err)
	}
	return language
}

func (e *testEnv) seedTag(t *testing.T, name string) *dto.TagRepr {
	t.Helper()
	tag, err := e.tags.Create(context.Background(), dto.TagInput{Name: name})
	if err != nil {
		t.Fatalf("seeding tag: %v", err)
	}
	return tag
}

func (e *testEnv) seedSnippet(t *testing.T, title string, creator *dto.PersonRepr, language *dto.LanguageRepr, tags ...*dto.TagRepr) *dto.SnippetRepr {
	t.Helper()
	input := dto.SnippetInput{
		Title:      title,
		Content:    "print('hello')",
		CreatorID:  creator.ID,
		LanguageID: language.ID,
	}
	for _, tag := range tags {
		input.TagIDs = append(input.TagIDs, tag.ID)
	}
	snippet, err := e.snippets.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("seeding snippet: %v", err)
	}
	return snippet
}

func (e *testEnv) seedAdmin(t *testing.T, username, password string) {
	t.Helper()
	hash, err := e.passwords.Hash(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &model.User{Username: username, PasswordHash: hash}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}
}

// --- request helpers ---

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
