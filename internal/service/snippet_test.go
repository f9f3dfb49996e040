package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/dto"
)

type snippetTestEnv struct {
	svc       *SnippetService
	snippets  *mockSnippetRepo
	people    *mockPersonRepo
	tags      *mockTagRepo
	languages *mockLanguageRepo
}

func newSnippetTestEnv(t *testing.T) *snippetTestEnv {
	t.Helper()
	people := newMockPersonRepo()
	languages := newMockLanguageRepo()
	tags := newMockTagRepo()
	snippets := newMockSnippetRepo(people, languages)
	svc := NewSnippetService(snippets, people, tags, languages, testLogger())
	return &snippetTestEnv{
		svc:       svc,
		snippets:  snippets,
		people:    people,
		tags:      tags,
		languages: languages,
	}
}

// validInput seeds a creator and language and returns an input that
// references them.
func (env *snippetTestEnv) validInput(t *testing.T) dto.SnippetInput {
	t.Helper()
	creator := seedPerson(t, env.people, "Ada", "Lovelace")
	lang := seedLanguage(t, env.languages, "python")
	return dto.SnippetInput{
		Title:      "hello world",
		Content:    "print('hi')",
		CreatorID:  creator.ID,
		LanguageID: lang.ID,
	}
}

// =========================================================================
// CREATE
// =========================================================================

func TestSnippetServiceCreate(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.TagIDs = []string{
		seedTag(t, env.tags, "web").ID,
		seedTag(t, env.tags, "cli").ID,
	}

	repr, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if repr.ID == "" {
		t.Error("expected snippet to have an ID")
	}
	if repr.Title != "hello world" {
		t.Errorf("Title = %q, want %q", repr.Title, "hello world")
	}
	if repr.Creator.FullName != "Ada Lovelace" {
		t.Errorf("Creator.FullName = %q, want %q", repr.Creator.FullName, "Ada Lovelace")
	}
	if repr.Language.Name != "python" {
		t.Errorf("Language.Name = %q, want %q", repr.Language.Name, "python")
	}
	if len(repr.Tags) != 2 || repr.Tags[0].Name != "cli" || repr.Tags[1].Name != "web" {
		t.Errorf("Tags = %+v, want [cli web]", repr.Tags)
	}
}

func TestSnippetServiceCreate_TrimsTitle(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.Title = "  spaced out  "

	repr, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if repr.Title != "spaced out" {
		t.Errorf("Title = %q, want trimmed %q", repr.Title, "spaced out")
	}
}

func TestSnippetServiceCreate_MissingTitle(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.Title = "   "

	_, err := env.svc.Create(context.Background(), input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "title" {
		t.Errorf("Field = %q, want %q", appErr.Field, "title")
	}
}

func TestSnippetServiceCreate_TitleTooLong(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.Title = strings.Repeat("a", 257)

	_, err := env.svc.Create(context.Background(), input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestSnippetServiceCreate_UnknownCreator(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.CreatorID = "nope"

	_, err := env.svc.Create(context.Background(), input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "creator_id" {
		t.Errorf("Field = %q, want %q", appErr.Field, "creator_id")
	}
}

func TestSnippetServiceCreate_UnknownLanguage(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.LanguageID = "nope"

	_, err := env.svc.Create(context.Background(), input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "language_id" {
		t.Errorf("Field = %q, want %q", appErr.Field, "language_id")
	}
}

func TestSnippetServiceCreate_UnknownTag(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.TagIDs = []string{seedTag(t, env.tags, "real").ID, "ghost"}

	_, err := env.svc.Create(context.Background(), input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Field != "tag_ids" {
			t.Errorf("Field = %q, want %q", appErr.Field, "tag_ids")
		}
		if !strings.Contains(appErr.Message, "ghost") {
			t.Errorf("Message = %q, want it to name the missing tag", appErr.Message)
		}
	}
}

func TestSnippetServiceCreate_DuplicateTagIDsCollapse(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	tag := seedTag(t, env.tags, "web")
	input.TagIDs = []string{tag.ID, tag.ID, tag.ID}

	repr, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(repr.Tags) != 1 {
		t.Errorf("got %d tags, want 1", len(repr.Tags))
	}
}

// =========================================================================
// GET
// =========================================================================

func TestSnippetServiceGet(t *testing.T) {
	env := newSnippetTestEnv(t)
	created, err := env.svc.Create(context.Background(), env.validInput(t))
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	repr, err := env.svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if repr.Title != "hello world" {
		t.Errorf("Title = %q, want %q", repr.Title, "hello world")
	}
	if repr.Creator.FullName != "Ada Lovelace" {
		t.Errorf("Creator.FullName = %q, want %q", repr.Creator.FullName, "Ada Lovelace")
	}
	if repr.Tags == nil {
		t.Error("Tags should be an empty slice, not nil")
	}
}

func TestSnippetServiceGet_NotFound(t *testing.T) {
	env := newSnippetTestEnv(t)

	_, err := env.svc.Get(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST
// =========================================================================

func TestSnippetServiceList_NewestFirst(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)

	for _, title := range []string{"first", "second", "third"} {
		input.Title = title
		if _, err := env.svc.Create(context.Background(), input); err != nil {
			t.Fatalf("setup: Create(%q) error = %v", title, err)
		}
	}

	reprs, err := env.svc.List(context.Background(), 0, 0, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reprs) != 3 {
		t.Fatalf("got %d snippets, want 3", len(reprs))
	}
	if reprs[0].Title != "third" || reprs[2].Title != "first" {
		t.Errorf("order = [%s %s %s], want newest first", reprs[0].Title, reprs[1].Title, reprs[2].Title)
	}
}

func TestSnippetServiceList_Search(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)

	for _, title := range []string{"binary search", "linear search", "quicksort"} {
		input.Title = title
		if _, err := env.svc.Create(context.Background(), input); err != nil {
			t.Fatalf("setup: Create(%q) error = %v", title, err)
		}
	}

	reprs, err := env.svc.List(context.Background(), 0, 0, "search")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reprs) != 2 {
		t.Errorf("got %d snippets, want 2", len(reprs))
	}
}

func TestSnippetServiceList_Pagination(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)

	for _, title := range []string{"a", "b", "c", "d"} {
		input.Title = title
		if _, err := env.svc.Create(context.Background(), input); err != nil {
			t.Fatalf("setup: Create(%q) error = %v", title, err)
		}
	}

	reprs, err := env.svc.List(context.Background(), 2, 1, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reprs) != 2 {
		t.Fatalf("got %d snippets, want 2", len(reprs))
	}
	// Newest first is [d c b a]; offset 1 limit 2 is [c b].
	if reprs[0].Title != "c" || reprs[1].Title != "b" {
		t.Errorf("page = [%s %s], want [c b]", reprs[0].Title, reprs[1].Title)
	}
}

func TestSnippetServiceListByCreator(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	other := seedPerson(t, env.people, "Grace", "Hopper")

	if _, err := env.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}
	input.Title = "other snippet"
	input.CreatorID = other.ID
	if _, err := env.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	reprs, err := env.svc.ListByCreator(context.Background(), other.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListByCreator() error = %v", err)
	}
	if len(reprs) != 1 || reprs[0].Title != "other snippet" {
		t.Errorf("got %+v, want just the other snippet", reprs)
	}
}

// =========================================================================
// UPDATE
// =========================================================================

func TestSnippetServiceUpdate(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)
	input.TagIDs = []string{seedTag(t, env.tags, "old").ID}

	created, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	newLang := seedLanguage(t, env.languages, "go")
	input.Title = "updated"
	input.Content = ""
	input.LanguageID = newLang.ID
	input.TagIDs = []string{seedTag(t, env.tags, "new").ID}

	repr, err := env.svc.Update(context.Background(), created.ID, input)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if repr.Title != "updated" {
		t.Errorf("Title = %q, want %q", repr.Title, "updated")
	}
	if repr.Content != "" {
		t.Errorf("Content = %q, want empty", repr.Content)
	}
	if repr.Language.Name != "go" {
		t.Errorf("Language.Name = %q, want %q", repr.Language.Name, "go")
	}
	if len(repr.Tags) != 1 || repr.Tags[0].Name != "new" {
		t.Errorf("Tags = %+v, want [new]", repr.Tags)
	}
}

func TestSnippetServiceUpdate_NotFoundBeatsBadPayload(t *testing.T) {
	env := newSnippetTestEnv(t)

	// Both the ID and the payload are bad; the URL error wins.
	_, err := env.svc.Update(context.Background(), "nonexistent", dto.SnippetInput{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSnippetServiceUpdate_UnknownTag(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)

	created, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	input.TagIDs = []string{"ghost"}
	_, err = env.svc.Update(context.Background(), created.ID, input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// DELETE
// =========================================================================

func TestSnippetServiceDelete(t *testing.T) {
	env := newSnippetTestEnv(t)
	created, err := env.svc.Create(context.Background(), env.validInput(t))
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if err := env.svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = env.svc.Get(context.Background(), created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}

func TestSnippetServiceDelete_NotFound(t *testing.T) {
	env := newSnippetTestEnv(t)

	if err := env.svc.Delete(context.Background(), "nonexistent"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSnippetServiceCount(t *testing.T) {
	env := newSnippetTestEnv(t)
	input := env.validInput(t)

	for _, title := range []string{"one", "two"} {
		input.Title = title
		if _, err := env.svc.Create(context.Background(), input); err != nil {
			t.Fatalf("setup: Create(%q) error = %v", title, err)
		}
	}

	n, err := env.svc.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
