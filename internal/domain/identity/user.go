package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/codeforge/backend/internal/domain/shared"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents an account authenticated through Google sign-in.
// GoogleSub is Google's stable subject identifier and the natural key
// for find-or-create on login.
type User struct {
	shared.BaseEntity
	GoogleSub   string
	Email       string
	Name        string
	Picture     string
	Status      UserStatus
	Visits      int
	LastLoginAt *time.Time
}

// NewUser creates an active user from a verified Google identity
func NewUser(googleSub, email, name, picture string) (*User, error) {
	googleSub = strings.TrimSpace(googleSub)
	if googleSub == "" {
		return nil, shared.NewDomainError("INVALID_GOOGLE_SUB", "Google subject is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return &User{
		BaseEntity: shared.NewBaseEntity(),
		GoogleSub:  googleSub,
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Name:       strings.TrimSpace(name),
		Picture:    picture,
		Status:     UserStatusActive,
	}, nil
}

// RecordLogin bumps the visit counter and refreshes the Google profile
// fields, which may change between sign-ins.
func (u *User) RecordLogin(name, picture string) {
	now := time.Now()
	u.Visits++
	u.LastLoginAt = &now
	if name != "" {
		u.Name = strings.TrimSpace(name)
	}
	if picture != "" {
		u.Picture = picture
	}
	u.UpdatedAt = now
}

// Rename sets the display name
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 120 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 120 characters")
	}
	u.Name = name
	u.Touch()
	return nil
}

// SetPicture sets the avatar URL
func (u *User) SetPicture(picture string) error {
	if len(picture) > 2048 {
		return shared.NewDomainError("INVALID_PICTURE", "Picture URL cannot exceed 2048 characters")
	}
	u.Picture = picture
	u.Touch()
	return nil
}

// Suspend blocks the user from signing in
func (u *User) Suspend() error {
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "User is already suspended")
	}
	u.Status = UserStatusSuspended
	u.Touch()
	return nil
}

// Reinstate returns a suspended user to active status
func (u *User) Reinstate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Status = UserStatusActive
	u.Touch()
	return nil
}

// CanLogin reports whether the user may sign in
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 255 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 255 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}
