// Package dto declares the external representations of the record
// types: what goes out over the API and what comes in.
//
// Outbound representations are a static projection of the models.
// Flat fields are copied with jinzhu/copier (matched by field name);
// nested representations are composed explicitly from the preloaded
// relations. Inbound payloads carry validate tags and go through
// Validate before any service logic runs.
package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/model"
)

// TagRepr is the external shape of a tag.
type TagRepr struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// LanguageRepr is the external shape of a language.
type LanguageRepr struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// PersonRepr is the external shape of a person. FullName is derived
// from the name columns, never stored.
type PersonRepr struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// SnippetRepr is the external shape of a snippet. Related records are
// embedded as their own full representations rather than bare IDs.
type SnippetRepr struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created"`
	UpdatedAt time.Time    `json:"updated"`
	Creator   PersonRepr   `json:"creator"`
	Language  LanguageRepr `json:"language"`
	Tags      []TagRepr    `json:"tags"`
}

func NewTagRepr(tag *model.Tag) (*TagRepr, error) {
	out := &TagRepr{}
	if err := copier.Copy(out, tag); err != nil {
		return nil, fmt.Errorf("dto: projecting tag: %w", err)
	}
	return out, nil
}

func NewTagReprs(tags []model.Tag) ([]TagRepr, error) {
	// Always a slice, never nil: JSON output must be [] for no tags.
	out := make([]TagRepr, 0, len(tags))
	for i := range tags {
		repr, err := NewTagRepr(&tags[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *repr)
	}
	return out, nil
}

func NewLanguageRepr(language *model.Language) (*LanguageRepr, error) {
	out := &LanguageRepr{}
	if err := copier.Copy(out, language); err != nil {
		return nil, fmt.Errorf("dto: projecting language: %w", err)
	}
	return out, nil
}

func NewLanguageReprs(languages []model.Language) ([]LanguageRepr, error) {
	out := make([]LanguageRepr, 0, len(languages))
	for i := range languages {
		repr, err := NewLanguageRepr(&languages[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *repr)
	}
	return out, nil
}

func NewPersonRepr(person *model.Person) (*PersonRepr, error) {
	out := &PersonRepr{}
	if err := copier.Copy(out, person); err != nil {
		return nil, fmt.Errorf("dto: projecting person: %w", err)
	}
	out.FullName = person.FullName()
	return out, nil
}

func NewPersonReprs(people []model.Person) ([]PersonRepr, error) {
	out := make([]PersonRepr, 0, len(people))
	for i := range people {
		repr, err := NewPersonRepr(&people[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *repr)
	}
	return out, nil
}

// NewSnippetRepr expects the snippet's Creator, Language, and Tags to
// be preloaded; zero-valued relations come out as zero-valued
// representations rather than errors.
func NewSnippetRepr(snippet *model.Snippet) (*SnippetRepr, error) {
	out := &SnippetRepr{}
	if err := copier.Copy(out, snippet); err != nil {
		return nil, fmt.Errorf("dto: projecting snippet: %w", err)
	}

	creator, err := NewPersonRepr(&snippet.Creator)
	if err != nil {
		return nil, err
	}
	out.Creator = *creator

	language, err := NewLanguageRepr(&snippet.Language)
	if err != nil {
		return nil, err
	}
	out.Language = *language

	tags, err := NewTagReprs(snippet.Tags)
	if err != nil {
		return nil, err
	}
	out.Tags = tags

	return out, nil
}

func NewSnippetReprs(snippets []model.Snippet) ([]SnippetRepr, error) {
	out := make([]SnippetRepr, 0, len(snippets))
	for i := range snippets {
		repr, err := NewSnippetRepr(&snippets[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *repr)
	}
	return out, nil
}

// SnippetInput is the payload for creating or fully updating a
// snippet. Related records are referenced by ID and resolved by the
// service; unknown IDs are validation failures, not 404s.
type SnippetInput struct {
	Title      string   `json:"title" validate:"required,max=256"`
	Content    string   `json:"content"`
	CreatorID  string   `json:"creator_id" validate:"required"`
	LanguageID string   `json:"language_id" validate:"required"`
	TagIDs     []string `json:"tag_ids"`
}

// PersonInput allows both names to be blank.
type PersonInput struct {
	FirstName string `json:"first_name" validate:"max=256"`
	LastName  string `json:"last_name" validate:"max=256"`
}

type TagInput struct {
	Name string `json:"name" validate:"required,max=256"`
}

type LanguageInput struct {
	Name string `json:"name" validate:"required,max=256"`
}

// LoginInput is the admin login form.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var validate = newValidator()

// newValidator builds the shared validator instance. Field names in
// error messages come from the json tags so clients see "creator_id",
// not "CreatorID".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the input's validate tags and converts the first
// failure into an ErrValidation that handlers answer with a 400.
func Validate(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		first := vErrs[0]
		field := first.Field()
		var msg string
		switch first.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", field, first.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", field)
		}
		return apperror.ValidationFailed(field, msg)
	}
	return fmt.Errorf("dto: validating input: %w", err)
}
