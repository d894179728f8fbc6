package models

import "github.com/golang-jwt/jwt/v5"

// Role enumerates the three access levels of the portal.
type Role string

const (
	RoleMainAdmin      Role = "main_admin"
	RoleSecondaryAdmin Role = "secondary_admin"
	RoleStudent        Role = "student"
)

// MainAdminID is the reserved identity of the global administrator. It is
// also the sender id checked by the main_admin_only chat mode.
const MainAdminID = "faculty"

// MainAdminName is the display name used wherever the main admin appears in
// member lists and uploader stamps.
const MainAdminName = "Main Admin"

// Actor is the request-scoped identity threaded explicitly into every core
// operation. Secondary admins carry their bound scope and subject set;
// students carry their bound scope and student id. Nothing here is read
// from shared process state.
type Actor struct {
	Role     Role
	ID       string
	Name     string
	Scope    Scope
	Subjects []string
}

// IsAdmin reports whether the actor holds either admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleMainAdmin || a.Role == RoleSecondaryAdmin
}

// HasSubject reports whether the subject is in the actor's bound set.
func (a Actor) HasSubject(subject string) bool {
	for _, s := range a.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// SenderType maps the actor's role onto the chat member taxonomy, where
// both admin roles post as "teacher".
func (a Actor) SenderType() string {
	if a.Role == RoleStudent {
		return MemberTypeStudent
	}
	return MemberTypeTeacher
}

// JWTClaims is the token payload carrying the resolved identity, role and
// binding established at login.
type JWTClaims struct {
	Role     Role     `json:"role"`
	UserID   string   `json:"uid"`
	Name     string   `json:"name"`
	Course   string   `json:"course,omitempty"`
	Year     string   `json:"year,omitempty"`
	Section  string   `json:"section,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts token claims back into the explicit request context.
func (c *JWTClaims) Actor() Actor {
	return Actor{
		Role:     c.Role,
		ID:       c.UserID,
		Name:     c.Name,
		Scope:    Scope{Course: c.Course, Year: c.Year, Section: c.Section},
		Subjects: c.Subjects,
	}
}
