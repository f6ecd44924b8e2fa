package models

import (
	"time"

	"astromatch/internal/zodiac"
)

// User represents a registered member.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Password     string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Instagram    string    `json:"instagram,omitempty" gorm:"type:varchar(100)"`
	Twitter      string    `json:"twitter,omitempty" gorm:"type:varchar(100)"`
	Birthday     string    `json:"birthday" gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	ProfilePhoto string    `json:"profile_photo,omitempty" gorm:"type:text"`
	Zodiac       string    `json:"zodiac" gorm:"type:varchar(20)"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// BirthDate parses the stored birthday.
func (u *User) BirthDate() (time.Time, error) {
	return zodiac.Parse(u.Birthday)
}

// WithZodiac returns a copy of u whose Zodiac field is derived from Birthday.
// A birthday that does not parse leaves the field empty.
func (u User) WithZodiac() User {
	u.Zodiac = ""
	if sign, err := zodiac.ClassifyString(u.Birthday); err == nil {
		u.Zodiac = string(sign)
	}
	return u
}

// Summary returns the public identity of the user shown next to messages.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePhoto: u.ProfilePhoto}
}

// UserSummary is the identity shown for a conversation counterpart.
type UserSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}
