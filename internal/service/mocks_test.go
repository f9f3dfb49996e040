package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/repository"
)

// Hand-written in-memory fakes for the repository interfaces. The
// services only see the interfaces, so tests swap SQLite out entirely
// and run in microseconds.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paginate[T any](items []T, opts repository.ListOptions) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

// --- people ---

type mockPersonRepo struct {
	people map[string]*model.Person
	nextID int
}

func newMockPersonRepo() *mockPersonRepo {
	return &mockPersonRepo{people: make(map[string]*model.Person)}
}

func (m *mockPersonRepo) Create(_ context.Context, person *model.Person) error {
	m.nextID++
	if person.ID == "" {
		person.ID = fmt.Sprintf("person-%d", m.nextID)
	}
	person.CreatedAt = time.Now()
	person.UpdatedAt = person.CreatedAt
	stored := *person
	m.people[person.ID] = &stored
	return nil
}

func (m *mockPersonRepo) GetByID(_ context.Context, id string) (*model.Person, error) {
	person, ok := m.people[id]
	if !ok {
		return nil, apperror.NotFound("person", id)
	}
	result := *person
	return &result, nil
}

func (m *mockPersonRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Person, error) {
	result := make([]model.Person, 0, len(m.people))
	for _, p := range m.people {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})
	return paginate(result, opts), nil
}

func (m *mockPersonRepo) Update(_ context.Context, person *model.Person) error {
	if _, ok := m.people[person.ID]; !ok {
		return apperror.NotFound("person", person.ID)
	}
	person.UpdatedAt = time.Now()
	stored := *person
	m.people[person.ID] = &stored
	return nil
}

func (m *mockPersonRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.people[id]; !ok {
		return apperror.NotFound("person", id)
	}
	delete(m.people, id)
	return nil
}

func (m *mockPersonRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.people)), nil
}

// --- tags ---

type mockTagRepo struct {
	tags   map[string]*model.Tag
	nextID int
}

func newMockTagRepo() *mockTagRepo {
	return &mockTagRepo{tags: make(map[string]*model.Tag)}
}

func (m *mockTagRepo) Create(_ context.Context, tag *model.Tag) error {
	for _, t := range m.tags {
		if t.Name == tag.Name {
			return apperror.Conflict("tag", fmt.Sprintf("name %q already exists", tag.Name))
		}
	}
	m.nextID++
	if tag.ID == "" {
		tag.ID = fmt.Sprintf("tag-%d", m.nextID)
	}
	tag.CreatedAt = time.Now()
	tag.UpdatedAt = tag.CreatedAt
	stored := *tag
	m.tags[tag.ID] = &stored
	return nil
}

func (m *mockTagRepo) GetByID(_ context.Context, id string) (*model.Tag, error) {
	tag, ok := m.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag", id)
	}
	result := *tag
	return &result, nil
}

func (m *mockTagRepo) GetByIDs(_ context.Context, ids []string) ([]model.Tag, error) {
	result := make([]model.Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := m.tags[id]; ok {
			result = append(result, *tag)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockTagRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Tag, error) {
	result := make([]model.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, opts), nil
}

func (m *mockTagRepo) Update(_ context.Context, tag *model.Tag) error {
	if _, ok := m.tags[tag.ID]; !ok {
		return apperror.NotFound("tag", tag.ID)
	}
	for _, t := range m.tags {
		if t.Name == tag.Name && t.ID != tag.ID {
			return apperror.Conflict("tag", fmt.Sprintf("name %q already exists", tag.Name))
		}
	}
	tag.UpdatedAt = time.Now()
	stored := *tag
	m.tags[tag.ID] = &stored
	return nil
}

func (m *mockTagRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.tags[id]; !ok {
		return apperror.NotFound("tag", id)
	}
	delete(m.tags, id)
	return nil
}

func (m *mockTagRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.tags)), nil
}

// --- languages ---

type mockLanguageRepo struct {
	languages map[string]*model.Language
	nextID    int
}

func newMockLanguageRepo() *mockLanguageRepo {
	return &mockLanguageRepo{languages: make(map[string]*model.Language)}
}

func (m *mockLanguageRepo) Create(_ context.Context, language *model.Language) error {
	for _, l := range m.languages {
		if l.Name == language.Name {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", language.Name))
		}
	}
	m.nextID++
	if language.ID == "" {
		language.ID = fmt.Sprintf("lang-%d", m.nextID)
	}
	language.CreatedAt = time.Now()
	language.UpdatedAt = language.CreatedAt
	stored := *language
	m.languages[language.ID] = &stored
	return nil
}

func (m *mockLanguageRepo) GetByID(_ context.Context, id string) (*model.Language, error) {
	language, ok := m.languages[id]
	if !ok {
		return nil, apperror.NotFound("language", id)
	}
	result := *language
	return &result, nil
}

func (m *mockLanguageRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Language, error) {
	result := make([]model.Language, 0, len(m.languages))
	for _, l := range m.languages {
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, opts), nil
}

func (m *mockLanguageRepo) Update(_ context.Context, language *model.Language) error {
	if _, ok := m.languages[language.ID]; !ok {
		return apperror.NotFound("language", language.ID)
	}
	for _, l := range m.languages {
		if l.Name == language.Name && l.ID != language.ID {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", language.Name))
		}
	}
	language.UpdatedAt = time.Now()
	stored := *language
	m.languages[language.ID] = &stored
	return nil
}

func (m *mockLanguageRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.languages[id]; !ok {
		return apperror.NotFound("language", id)
	}
	delete(m.languages, id)
	return nil
}

func (m *mockLanguageRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.languages)), nil
}

// --- snippets ---

// mockSnippetRepo keeps references to the person and language fakes so
// GetByID and List can fill in Creator and Language the way the real
// repository preloads them.
type mockSnippetRepo struct {
	snippets  map[string]*model.Snippet
	order     []string
	people    *mockPersonRepo
	languages *mockLanguageRepo
	nextID    int
}

func newMockSnippetRepo(people *mockPersonRepo, languages *mockLanguageRepo) *mockSnippetRepo {
	return &mockSnippetRepo{
		snippets:  make(map[string]*model.Snippet),
		people:    people,
		languages: languages,
	}
}

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	m.nextID++
	if snippet.ID == "" {
		snippet.ID = fmt.Sprintf("snippet-%d", m.nextID)
	}
	snippet.CreatedAt = time.Now()
	snippet.UpdatedAt = snippet.CreatedAt
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	m.order = append(m.order, snippet.ID)
	return nil
}

func (m *mockSnippetRepo) preload(s model.Snippet) model.Snippet {
	if p, ok := m.people.people[s.CreatorID]; ok {
		s.Creator = *p
	}
	if l, ok := m.languages.languages[s.LanguageID]; ok {
		s.Language = *l
	}
	sort.Slice(s.Tags, func(i, j int) bool { return s.Tags[i].Name < s.Tags[j].Name })
	return s
}

func (m *mockSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	snippet, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	result := m.preload(*snippet)
	return &result, nil
}

func (m *mockSnippetRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	// Newest first, like the real ORDER BY created_at DESC.
	result := make([]model.Snippet, 0, len(m.snippets))
	for i := len(m.order) - 1; i >= 0; i-- {
		s, ok := m.snippets[m.order[i]]
		if !ok {
			continue
		}
		if opts.Search != "" && !strings.Contains(s.Title, opts.Search) {
			continue
		}
		if opts.CreatorID != "" && s.CreatorID != opts.CreatorID {
			continue
		}
		result = append(result, m.preload(*s))
	}
	return paginate(result, opts), nil
}

func (m *mockSnippetRepo) Update(_ context.Context, snippet *model.Snippet) error {
	if _, ok := m.snippets[snippet.ID]; !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	snippet.UpdatedAt = time.Now()
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

func (m *mockSnippetRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.snippets)), nil
}

// --- users ---

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Username]; ok {
		return apperror.Conflict("user", fmt.Sprintf("username %q already exists", user.Username))
	}
	m.nextID++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", m.nextID)
	}
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *user
	return &result, nil
}

// Compile-time checks that the fakes satisfy the interfaces.
var (
	_ repository.SnippetRepository  = (*mockSnippetRepo)(nil)
	_ repository.PersonRepository   = (*mockPersonRepo)(nil)
	_ repository.TagRepository      = (*mockTagRepo)(nil)
	_ repository.LanguageRepository = (*mockLanguageRepo)(nil)
	_ repository.UserRepository     = (*mockUserRepo)(nil)
)

func seedPerson(t *testing.T, repo *mockPersonRepo, first, last string) *model.Person {
	t.Helper()
	p := &model.Person{FirstName: first, LastName: last}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return p
}

func seedLanguage(t *testing.T, repo *mockLanguageRepo, name string) *model.Language {
	t.Helper()
	l := &model.Language{Name: name}
	if err := repo.Create(context.Background(), l); err != nil {
		t.Fatalf("seed language: %v", err)
	}
	return l
}

func seedTag(t *testing.T, repo *mockTagRepo, name string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name}
	if err := repo.Create(context.Background(), tag); err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	return tag
}
