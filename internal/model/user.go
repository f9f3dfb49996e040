package model

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// User is an admin account for the management area.
//
// Users are created by the seed command, never through the public API, and
// they carry no content themselves; Person records (the snippet authors) are
// content, not logins. PasswordHash holds a bcrypt hash and is never
// serialized.
type User struct {
	ID           string    `gorm:"primaryKey;size:20" json:"id"`
	Username     string    `gorm:"size:256;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"updated"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = xid.New().String()
	}
	return nil
}

func (u User) String() string {
	return u.Username
}
