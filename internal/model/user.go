package model

import (
	"fmt"
	"strings"
)

// Role names carried in the token's roles claim.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// UserStatus is the account state managed by administrators.
type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
	UserStatusDeleted UserStatus = "DELETED"
)

// UserStatuses returns every declared account status.
func UserStatuses() []UserStatus {
	return []UserStatus{UserStatusActive, UserStatusBlocked, UserStatusDeleted}
}

// Label returns the human-readable name of the status.
func (s UserStatus) Label() string {
	switch s {
	case UserStatusActive:
		return "Active"
	case UserStatusBlocked:
		return "Blocked"
	case UserStatusDeleted:
		return "Deleted"
	}
	return ""
}

// Valid reports whether s is one of the declared statuses.
func (s UserStatus) Valid() bool { return s.Label() != "" }

// UnmarshalText rejects statuses the client does not know about. An empty
// value decodes as unset.
func (s *UserStatus) UnmarshalText(b []byte) error {
	v := UserStatus(b)
	if v == "" {
		*s = ""
		return nil
	}
	if !v.Valid() {
		return fmt.Errorf("unknown user status %q", string(b))
	}
	*s = v
	return nil
}

// User is an account as returned by the profile and admin endpoints.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Status      UserStatus `json:"status"`
	CreatedAt   string     `json:"createdAt"`
	LastLoginAt string     `json:"lastLoginAt"`
	Roles       []string   `json:"roles"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	return ContainsRole(u.Roles, role)
}

// UserRequest is the admin body for updating an account.
type UserRequest struct {
	Email     string     `json:"email"`
	Password  string     `json:"password,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Roles     []string   `json:"roles"`
	Status    UserStatus `json:"status"`
}

// Request converts the user into an admin update body.
func (u User) Request() UserRequest {
	return UserRequest{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     append([]string(nil), u.Roles...),
		Status:    u.Status,
	}
}

// ContainsRole reports whether roles includes role.
func ContainsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Credentials is the login body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the sign-up body.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthResponse carries the bearer token issued on login or registration.
type AuthResponse struct {
	Token string `json:"token"`
}
