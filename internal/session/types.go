package session

import (
	"time"

	"github.com/angelmondragon/meaw-storefront/pkg/enums"
)

// User is the authenticated actor.
type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	Avatar        string         `json:"avatar,omitempty"`
	Role          enums.UserRole `json:"role"`
	Phone         *string        `json:"phone,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	IsActive      bool           `json:"is_active"`
	EmailVerified bool           `json:"email_verified"`
}

// State is what callers observe. IsLoading and LastError are transient and never persisted.
type State struct {
	User            *User              `json:"user"`
	IsAuthenticated bool               `json:"is_authenticated"`
	IsLoading       bool               `json:"is_loading"`
	Status          enums.SessionState `json:"status"`
	LastError       string             `json:"last_error,omitempty"`
}

// Snapshot is the persisted slice of session state.
type Snapshot struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"is_authenticated"`
}

// RegisterInput carries a sign-up request. Role defaults to customer.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
	Role     *enums.UserRole
}

// UserPatch lists profile fields that UpdateUser may change. Nil fields are left alone.
type UserPatch struct {
	Name          *string
	Email         *string
	Phone         *string
	Avatar        *string
	Role          *enums.UserRole
	EmailVerified *bool
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Phone != nil {
		phone := *u.Phone
		out.Phone = &phone
	}
	return &out
}
