package service

import (
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"

	"github.com/noah-isme/section-portal-api/internal/models"
)

// Guard evaluates whether an actor may perform an operation class against a
// scope or subject. It is pure: every decision is a function of the actor
// argument, never of ambient state.
type Guard struct{}

// NewGuard constructs a Guard.
func NewGuard() *Guard {
	return &Guard{}
}

// RequireMainAdmin gates structural mutations: course/year/section lifecycle
// and secondary-admin management.
func (g *Guard) RequireMainAdmin(actor models.Actor) error {
	if actor.Role != models.RoleMainAdmin {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// RequireAdmin gates listings and roster reads. Pure listing does not demand
// a scope match for secondary admins.
func (g *Guard) RequireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// RequireAdminScope gates scope-bound admin writes: a secondary admin must
// be acting inside the scope bound at login; the main admin passes for any
// scope.
func (g *Guard) RequireAdminScope(actor models.Actor, scope models.Scope) error {
	switch actor.Role {
	case models.RoleMainAdmin:
		return nil
	case models.RoleSecondaryAdmin:
		if !actor.Scope.Equal(scope) {
			return appErrors.ErrUnauthorized
		}
		return nil
	default:
		return appErrors.ErrUnauthorized
	}
}

// RequireSubject gates subject-specific actions (attendance records, note
// upload): on top of the scope match, a secondary admin must hold the
// subject in the set assigned at login.
func (g *Guard) RequireSubject(actor models.Actor, scope models.Scope, subject string) error {
	if err := g.RequireAdminScope(actor, scope); err != nil {
		return err
	}
	if actor.Role == models.RoleSecondaryAdmin && !actor.HasSubject(subject) {
		return appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to you")
	}
	return nil
}

// RequireStudent gates student self-service: the target scope and student id
// must match the identity bound at login. A student can never reach another
// student's data.
func (g *Guard) RequireStudent(actor models.Actor, scope models.Scope, studentID string) error {
	if actor.Role != models.RoleStudent {
		return appErrors.ErrUnauthorized
	}
	if !actor.Scope.Equal(scope) || actor.ID != studentID {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// RequireSelfScope is the scope-only variant for student endpoints that act
// on the session's own identity implicitly.
func (g *Guard) RequireSelfScope(actor models.Actor) error {
	if actor.Role != models.RoleStudent || actor.Scope.IsZero() {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// RequireAnyRole admits any authenticated portal role.
func (g *Guard) RequireAnyRole(actor models.Actor) error {
	switch actor.Role {
	case models.RoleMainAdmin, models.RoleSecondaryAdmin, models.RoleStudent:
		return nil
	}
	return appErrors.ErrUnauthorized
}
