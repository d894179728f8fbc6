package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/section-portal-api/internal/models"
)

var guardScope = models.NewScope("B.Tech", "1st Year", "A Section")

func mainAdminActor() models.Actor {
	return models.Actor{Role: models.RoleMainAdmin, ID: models.MainAdminID, Name: models.MainAdminName}
}

func teacherActor(subjects ...string) models.Actor {
	return models.Actor{
		Role:     models.RoleSecondaryAdmin,
		ID:       "prof1",
		Name:     "Prof One",
		Scope:    guardScope,
		Subjects: subjects,
	}
}

func studentActor(id string) models.Actor {
	return models.Actor{Role: models.RoleStudent, ID: id, Name: "Student", Scope: guardScope}
}

func TestGuardRequireMainAdmin(t *testing.T) {
	g := NewGuard()
	assert.NoError(t, g.RequireMainAdmin(mainAdminActor()))
	assert.Error(t, g.RequireMainAdmin(teacherActor()))
	assert.Error(t, g.RequireMainAdmin(studentActor("student_001")))
}

func TestGuardRequireAdminScope(t *testing.T) {
	g := NewGuard()
	other := models.NewScope("B.Tech", "1st Year", "B Section")

	assert.NoError(t, g.RequireAdminScope(mainAdminActor(), guardScope))
	assert.NoError(t, g.RequireAdminScope(mainAdminActor(), other))

	assert.NoError(t, g.RequireAdminScope(teacherActor(), guardScope))
	assert.Error(t, g.RequireAdminScope(teacherActor(), other))

	assert.Error(t, g.RequireAdminScope(studentActor("student_001"), guardScope))
}

func TestGuardRequireSubject(t *testing.T) {
	g := NewGuard()

	// The main admin is never subject-bound.
	assert.NoError(t, g.RequireSubject(mainAdminActor(), guardScope, "Maths"))

	assert.NoError(t, g.RequireSubject(teacherActor("Maths"), guardScope, "Maths"))
	assert.Error(t, g.RequireSubject(teacherActor("Maths"), guardScope, "Physics"))
	assert.Error(t, g.RequireSubject(teacherActor(), guardScope, "Maths"))

	other := models.NewScope("B.Tech", "2nd Year", "A Section")
	assert.Error(t, g.RequireSubject(teacherActor("Maths"), other, "Maths"))
}

func TestGuardRequireStudent(t *testing.T) {
	g := NewGuard()
	assert.NoError(t, g.RequireStudent(studentActor("student_001"), guardScope, "student_001"))
	assert.Error(t, g.RequireStudent(studentActor("student_001"), guardScope, "student_002"))

	other := models.NewScope("B.Tech", "1st Year", "B Section")
	assert.Error(t, g.RequireStudent(studentActor("student_001"), other, "student_001"))
	assert.Error(t, g.RequireStudent(teacherActor(), guardScope, "student_001"))
}

func TestGuardRequireSelfScope(t *testing.T) {
	g := NewGuard()
	assert.NoError(t, g.RequireSelfScope(studentActor("student_001")))

	unbound := models.Actor{Role: models.RoleStudent, ID: "student_001"}
	assert.Error(t, g.RequireSelfScope(unbound))
	assert.Error(t, g.RequireSelfScope(mainAdminActor()))
}
