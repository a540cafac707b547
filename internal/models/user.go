package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Preferences are per-user playback and content settings.
type Preferences struct {
	FavoriteGenres   []int  `json:"favoriteGenres"`
	WatchQuality     string `json:"watchQuality"`
	AutoPlay         bool   `json:"autoPlay"`
	ShowAdultContent bool   `json:"showAdultContent"`
	Language         string `json:"language"`
	Notifications    bool   `json:"notifications"`
}

// DefaultPreferences returns the settings new accounts start with.
func DefaultPreferences() Preferences {
	return Preferences{
		FavoriteGenres:   []int{},
		WatchQuality:     "auto",
		AutoPlay:         true,
		ShowAdultContent: false,
		Language:         "en",
		Notifications:    true,
	}
}

// User is a local MovieBox account. Every per-user key in the store is namespaced by its ID.
type User struct {
	id           string
	sequence     int
	email        string
	name         string
	passwordHash string
	preferences  Preferences
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewUser creates a user with default preferences and the current time as creation time.
func NewUser(sequence int, email, name string) *User {
	now := time.Now()
	return &User{
		sequence:    sequence,
		email:       strings.ToLower(strings.TrimSpace(email)),
		name:        strings.TrimSpace(name),
		preferences: DefaultPreferences(),
		createdAt:   now,
		updatedAt:   now,
	}
}

func (u *User) ID() string                   { return u.id }
func (u *User) Sequence() int                { return u.sequence }
func (u *User) Email() string                { return u.email }
func (u *User) Name() string                 { return u.name }
func (u *User) PasswordHash() string         { return u.passwordHash }
func (u *User) Preferences() Preferences     { return u.preferences }
func (u *User) CreatedAt() time.Time         { return u.createdAt }
func (u *User) UpdatedAt() time.Time         { return u.updatedAt }
func (u *User) DeletedAt() *time.Time        { return u.deletedAt }
func (u *User) SetID(id string)              { u.id = id }
func (u *User) SetSequence(seq int)          { u.sequence = seq }
func (u *User) SetName(name string)          { u.name = strings.TrimSpace(name) }
func (u *User) SetPasswordHash(h string)     { u.passwordHash = h }
func (u *User) SetPreferences(p Preferences) { u.preferences = p }
func (u *User) SetCreatedAt(t time.Time)     { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)     { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)    { u.deletedAt = t }

// Validate checks the email format and that a name and password hash are present.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user ID is required")
	}
	if !emailPattern.MatchString(u.email) {
		return fmt.Errorf("invalid email address: %q", u.email)
	}
	if u.name == "" {
		return fmt.Errorf("name is required")
	}
	if u.passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
