package model

import (
	"strings"
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Person is someone who contributes snippets.
//
// Both name fields are optional short text. We use empty strings rather than
// nullable pointers as the "not set" value: simpler to work with, safe to
// display, and the rendering helpers below cope with missing halves.
type Person struct {
	ID        string    `gorm:"primaryKey;size:20" json:"id"`
	FirstName string    `gorm:"size:256" json:"first_name"`
	LastName  string    `gorm:"size:256" json:"last_name"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	Snippets []Snippet `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Person) TableName() string {
	return "people"
}

func (p *Person) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = xid.New().String()
	}
	return nil
}

// String renders the person surname-first, the way the admin lists sort them.
func (p Person) String() string {
	return p.LastName + ", " + p.FirstName
}

// FullName is the display-order name ("First Last"). It is derived, never
// stored, and trims cleanly when either half is empty.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
