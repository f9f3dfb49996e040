package model

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Language is the programming language a snippet is written in.
// Like Tag it is a flat name record, unique by name.
type Language struct {
	ID        string    `gorm:"primaryKey;size:20" json:"id"`
	Name      string    `gorm:"size:256;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	Snippets []Snippet `gorm:"foreignKey:LanguageID" json:"-"`
}

func (Language) TableName() string {
	return "languages"
}

func (l *Language) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = xid.New().String()
	}
	return nil
}

func (l Language) String() string {
	return l.Name
}
