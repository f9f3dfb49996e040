// Package model defines the record types the application stores.
//
// Each record is a struct with gorm tags describing its column mapping and
// relations. GORM owns the lifecycle bookkeeping: CreatedAt is stamped on
// insert, UpdatedAt on every save, and the BeforeCreate hooks assign an xid
// string primary key so callers never pick IDs themselves.
//
// The String methods are what the admin pages (and logs) show for a record,
// so they stay short and human-readable.
package model

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Snippet is a saved piece of code with its authorship metadata.
//
// Relations:
//   - Creator: the Person who added the snippet (one person, many snippets)
//   - Language: what the snippet is written in (one language, many snippets)
//   - Tags: free-form labels, many-to-many through the snippet_tags join table
//
// CreatorID and LanguageID are the actual foreign-key columns; the struct
// fields Creator/Language/Tags are only populated when a query preloads them.
type Snippet struct {
	ID         string    `gorm:"primaryKey;size:20" json:"id"`
	Title      string    `gorm:"size:256;not null" json:"title"`
	Content    string    `gorm:"type:text;not null;default:''" json:"content"`
	CreatorID  string    `gorm:"size:20;not null;index" json:"creator_id"`
	LanguageID string    `gorm:"size:20;not null;index" json:"language_id"`
	CreatedAt  time.Time `json:"created"`
	UpdatedAt  time.Time `json:"updated"`

	Creator  Person   `gorm:"foreignKey:CreatorID;references:ID" json:"-"`
	Language Language `gorm:"foreignKey:LanguageID;references:ID" json:"-"`
	Tags     []Tag    `gorm:"many2many:snippet_tags" json:"-"`
}

func (Snippet) TableName() string {
	return "snippets"
}

// BeforeCreate assigns a fresh xid unless the caller (e.g. a fixture loader
// replaying known IDs) already set one.
func (s *Snippet) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = xid.New().String()
	}
	return nil
}

// String renders the snippet for admin lists and logs.
func (s Snippet) String() string {
	return s.Title
}
