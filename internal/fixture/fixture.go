// Package fixture loads seed content from a YAML file and applies it
// to the store.
//
// Applying is idempotent: a record whose natural key (the language,
// tag, or person name, or the snippet title) already exists is left
// alone, so the seed command is safe to run on every deploy. Snippets
// reference their relations by name rather than ID, which keeps the
// same fixture file valid across database rebuilds.
package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/repository"
)

// Fixture is the parsed seed file. Languages and tags are plain name
// lists; people and snippets carry their own blocks.
type Fixture struct {
	Languages []string  `yaml:"languages"`
	Tags      []string  `yaml:"tags"`
	People    []Person  `yaml:"people"`
	Snippets  []Snippet `yaml:"snippets"`
}

// Person seeds one snippet author.
type Person struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

func (p Person) fullName() string {
	return model.Person{FirstName: p.FirstName, LastName: p.LastName}.FullName()
}

// Snippet seeds one snippet. Creator holds the person's display name
// ("Ada Lovelace"); Language and Tags hold names, resolved against the
// lists above or against records already stored.
type Snippet struct {
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Creator  string   `yaml:"creator"`
	Language string   `yaml:"language"`
	Tags     []string `yaml:"tags"`
}

// Load reads, parses, and validates the fixture file at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: reading %s: %w", path, err)
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture: %s: %w", path, err)
	}
	return fx, nil
}

// Parse decodes fixture YAML and validates it.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	fx.normalize()
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// normalize trims the names the natural keys are built from. Snippet
// content is left verbatim; code may legitimately start or end with
// whitespace.
func (f *Fixture) normalize() {
	for i, name := range f.Languages {
		f.Languages[i] = strings.TrimSpace(name)
	}
	for i, name := range f.Tags {
		f.Tags[i] = strings.TrimSpace(name)
	}
	for i, p := range f.People {
		f.People[i].FirstName = strings.TrimSpace(p.FirstName)
		f.People[i].LastName = strings.TrimSpace(p.LastName)
	}
	for i, s := range f.Snippets {
		f.Snippets[i].Title = strings.TrimSpace(s.Title)
		f.Snippets[i].Creator = strings.TrimSpace(s.Creator)
		f.Snippets[i].Language = strings.TrimSpace(s.Language)
		for j, tag := range s.Tags {
			f.Snippets[i].Tags[j] = strings.TrimSpace(tag)
		}
	}
}

// Validate reports the first problem that would make applying the
// fixture ambiguous: blank names, or duplicate natural keys within the
// file. References to records outside the file are checked at apply
// time, since they may resolve against the store.
func (f *Fixture) Validate() error {
	languages := make(map[string]bool, len(f.Languages))
	for _, name := range f.Languages {
		if name == "" {
			return fmt.Errorf("fixture: language with empty name")
		}
		if languages[name] {
			return fmt.Errorf("fixture: duplicate language %q", name)
		}
		languages[name] = true
	}

	tags := make(map[string]bool, len(f.Tags))
	for _, name := range f.Tags {
		if name == "" {
			return fmt.Errorf("fixture: tag with empty name")
		}
		if tags[name] {
			return fmt.Errorf("fixture: duplicate tag %q", name)
		}
		tags[name] = true
	}

	people := make(map[string]bool, len(f.People))
	for _, p := range f.People {
		name := p.fullName()
		if name == "" {
			return fmt.Errorf("fixture: person with no name")
		}
		if people[name] {
			return fmt.Errorf("fixture: duplicate person %q", name)
		}
		people[name] = true
	}

	titles := make(map[string]bool, len(f.Snippets))
	for _, s := range f.Snippets {
		if s.Title == "" {
			return fmt.Errorf("fixture: snippet with empty title")
		}
		if titles[s.Title] {
			return fmt.Errorf("fixture: duplicate snippet %q", s.Title)
		}
		titles[s.Title] = true
		if s.Creator == "" {
			return fmt.Errorf("fixture: snippet %q has no creator", s.Title)
		}
		if s.Language == "" {
			return fmt.Errorf("fixture: snippet %q has no language", s.Title)
		}
		for _, tag := range s.Tags {
			if tag == "" {
				return fmt.Errorf("fixture: snippet %q has an empty tag", s.Title)
			}
		}
	}

	return nil
}

// Seeder writes fixture content through the repositories.
type Seeder struct {
	snippets  repository.SnippetRepository
	people    repository.PersonRepository
	tags      repository.TagRepository
	languages repository.LanguageRepository
	logger    *slog.Logger
}

func NewSeeder(
	snippets repository.SnippetRepository,
	people repository.PersonRepository,
	tags repository.TagRepository,
	languages repository.LanguageRepository,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		snippets:  snippets,
		people:    people,
		tags:      tags,
		languages: languages,
		logger:    logger,
	}
}

// Result counts what Apply did. The per-kind fields count records
// created; Skipped counts fixture entries whose natural key already
// existed.
type Result struct {
	Languages int
	Tags      int
	People    int
	Snippets  int
	Skipped   int
}

// listPageSize matches the cap the repositories put on one List page.
const listPageSize = 100

// collectAll pages through a List call until it drains.
func collectAll[T any](ctx context.Context, list func(context.Context, repository.ListOptions) ([]T, error)) ([]T, error) {
	var all []T
	for offset := 0; ; offset += listPageSize {
		page, err := list(ctx, repository.ListOptions{Limit: listPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
	}
}

// Apply writes the fixture to the store. Records are created in
// dependency order (languages, tags, people, then snippets) so snippet
// references resolve within the same run. A reference to a name that
// is neither in the fixture nor already stored is an error.
func (s *Seeder) Apply(ctx context.Context, fx *Fixture) (Result, error) {
	var res Result

	languageIDs, err := s.applyLanguages(ctx, fx.Languages, &res)
	if err != nil {
		return res, err
	}
	tagsByName, err := s.applyTags(ctx, fx.Tags, &res)
	if err != nil {
		return res, err
	}
	personIDs, err := s.applyPeople(ctx, fx.People, &res)
	if err != nil {
		return res, err
	}
	if err := s.applySnippets(ctx, fx.Snippets, languageIDs, tagsByName, personIDs, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Seeder) applyLanguages(ctx context.Context, names []string, res *Result) (map[string]string, error) {
	existing, err := collectAll(ctx, s.languages.List)
	if err != nil {
		return nil, fmt.Errorf("fixture: listing languages: %w", err)
	}
	ids := make(map[string]string, len(existing)+len(names))
	for _, l := range existing {
		ids[l.Name] = l.ID
	}

	for _, name := range names {
		if _, ok := ids[name]; ok {
			res.Skipped++
			continue
		}
		language := &model.Language{Name: name}
		if err := s.languages.Create(ctx, language); err != nil {
			return nil, fmt.Errorf("fixture: creating language %q: %w", name, err)
		}
		ids[name] = language.ID
		res.Languages++
		s.logger.Info("seeded language", slog.String("name", name))
	}
	return ids, nil
}

func (s *Seeder) applyTags(ctx context.Context, names []string, res *Result) (map[string]model.Tag, error) {
	existing, err := collectAll(ctx, s.tags.List)
	if err != nil {
		return nil, fmt.Errorf("fixture: listing tags: %w", err)
	}
	byName := make(map[string]model.Tag, len(existing)+len(names))
	for _, t := range existing {
		byName[t.Name] = t
	}

	for _, name := range names {
		if _, ok := byName[name]; ok {
			res.Skipped++
			continue
		}
		tag := &model.Tag{Name: name}
		if err := s.tags.Create(ctx, tag); err != nil {
			return nil, fmt.Errorf("fixture: creating tag %q: %w", name, err)
		}
		byName[name] = *tag
		res.Tags++
		s.logger.Info("seeded tag", slog.String("name", name))
	}
	return byName, nil
}

func (s *Seeder) applyPeople(ctx context.Context, people []Person, res *Result) (map[string]string, error) {
	existing, err := collectAll(ctx, s.people.List)
	if err != nil {
		return nil, fmt.Errorf("fixture: listing people: %w", err)
	}
	ids := make(map[string]string, len(existing)+len(people))
	for _, p := range existing {
		ids[p.FullName()] = p.ID
	}

	for _, entry := range people {
		name := entry.fullName()
		if _, ok := ids[name]; ok {
			res.Skipped++
			continue
		}
		person := &model.Person{FirstName: entry.FirstName, LastName: entry.LastName}
		if err := s.people.Create(ctx, person); err != nil {
			return nil, fmt.Errorf("fixture: creating person %q: %w", name, err)
		}
		ids[name] = person.ID
		res.People++
		s.logger.Info("seeded person", slog.String("name", name))
	}
	return ids, nil
}

func (s *Seeder) applySnippets(
	ctx context.Context,
	snippets []Snippet,
	languageIDs map[string]string,
	tagsByName map[string]model.Tag,
	personIDs map[string]string,
	res *Result,
) error {
	existing, err := collectAll(ctx, s.snippets.List)
	if err != nil {
		return fmt.Errorf("fixture: listing snippets: %w", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, sn := range existing {
		titles[sn.Title] = true
	}

	for _, entry := range snippets {
		if titles[entry.Title] {
			res.Skipped++
			continue
		}

		creatorID, ok := personIDs[entry.Creator]
		if !ok {
			return fmt.Errorf("fixture: snippet %q: unknown creator %q", entry.Title, entry.Creator)
		}
		languageID, ok := languageIDs[entry.Language]
		if !ok {
			return fmt.Errorf("fixture: snippet %q: unknown language %q", entry.Title, entry.Language)
		}
		tags := make([]model.Tag, 0, len(entry.Tags))
		for _, name := range entry.Tags {
			tag, ok := tagsByName[name]
			if !ok {
				return fmt.Errorf("fixture: snippet %q: unknown tag %q", entry.Title, name)
			}
			tags = append(tags, tag)
		}

		snippet := &model.Snippet{
			Title:      entry.Title,
			Content:    entry.Content,
			CreatorID:  creatorID,
			LanguageID: languageID,
			Tags:       tags,
		}
		if err := s.snippets.Create(ctx, snippet); err != nil {
			return fmt.Errorf("fixture: creating snippet %q: %w", entry.Title, err)
		}
		titles[entry.Title] = true
		res.Snippets++
		s.logger.Info("seeded snippet",
			slog.String("id", snippet.ID),
			slog.String("title", entry.Title),
		)
	}
	return nil
}
