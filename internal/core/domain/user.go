package domain

import (
	"strings"
)

// Role decides which pages a user may open.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// HomePath is where a user with this role lands after login or a role mismatch.
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/dashboard"
	}
	return "/my-tickets"
}

// User is the identity reported by the backend session endpoint.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Initials takes the first letter of each space-separated word, keeps two and upper-cases them.
func (u User) Initials() string {
	var b strings.Builder
	count := 0
	for _, word := range strings.Split(u.Name, " ") {
		if word == "" {
			continue
		}
		r := []rune(word)
		b.WriteRune(r[0])
		count++
		if count == 2 {
			break
		}
	}
	return strings.ToUpper(b.String())
}

// FirstName is the first space-separated word of the name.
func (u User) FirstName() string {
	return strings.Split(u.Name, " ")[0]
}

// Session is the payload of GET /api/me.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// Valid reports whether the session identifies a signed-in user.
func (s *Session) Valid() bool {
	return s != nil && s.Authenticated && s.User != nil
}

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup validation constants
const (
	MinPasswordLength = 6
	MaxNameLength     = 255
)

// SignupParams is the registration form payload.
type SignupParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}
