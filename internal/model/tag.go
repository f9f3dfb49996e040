package model

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Tag is a free-form label attached to snippets. Names are unique so "go"
// is always the same tag no matter who typed it.
type Tag struct {
	ID        string    `gorm:"primaryKey;size:20" json:"id"`
	Name      string    `gorm:"size:256;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	Snippets []Snippet `gorm:"many2many:snippet_tags" json:"-"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = xid.New().String()
	}
	return nil
}

func (t Tag) String() string {
	return t.Name
}
