package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
)

func newStudentService(t *testing.T) *StudentService {
	t.Helper()
	return NewStudentService(newTestStore(t), NewGuard(), nil, nil, zap.NewNop())
}

func newStudent(roll, email string) CreateStudentRequest {
	return CreateStudentRequest{
		Name:           "Student " + roll,
		RollNumber:     roll,
		Email:          email,
		SecretPassword: "secret",
	}
}

func TestCreateStudentAssignsSequentialIDs(t *testing.T) {
	svc := newStudentService(t)
	admin := mainAdminActor()

	for i := 1; i <= 3; i++ {
		created, err := svc.Create(admin, guardScope, newStudent(
			fmt.Sprintf("%d", i), fmt.Sprintf("s%d@example.com", i)))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("student_%03d", i), created.ID)
	}
}

func TestCreateStudentRejectsDuplicates(t *testing.T) {
	svc := newStudentService(t)
	admin := mainAdminActor()

	_, err := svc.Create(admin, guardScope, newStudent("1", "asha@example.com"))
	require.NoError(t, err)

	_, err = svc.Create(admin, guardScope, newStudent("1", "other@example.com"))
	assert.Error(t, err)
	_, err = svc.Create(admin, guardScope, newStudent("2", "Asha@Example.com"))
	assert.Error(t, err)

	_, err = svc.Create(admin, guardScope, CreateStudentRequest{Name: "No Roll"})
	assert.Error(t, err)
}

func TestStudentSelfUpdateOnlyTouchesPhones(t *testing.T) {
	svc := newStudentService(t)

	created, err := svc.Create(mainAdminActor(), guardScope, newStudent("1", "asha@example.com"))
	require.NoError(t, err)

	self := studentActor(created.ID)
	updated, err := svc.SelfUpdate(self, SelfUpdateRequest{Phone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, created.Name, updated.Name)

	_, err = svc.SelfUpdate(studentActor("student_999"), SelfUpdateRequest{Phone: "x"})
	assert.Error(t, err)
}

func TestUpdateStudentKeepsUnsetFields(t *testing.T) {
	svc := newStudentService(t)
	admin := mainAdminActor()

	created, err := svc.Create(admin, guardScope, newStudent("1", "asha@example.com"))
	require.NoError(t, err)

	updated, err := svc.Update(admin, guardScope, created.ID, UpdateStudentRequest{Remarks: "scholarship"})
	require.NoError(t, err)
	assert.Equal(t, "scholarship", updated.Remarks)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.RollNumber, updated.RollNumber)
}

func TestDeleteStudentRemovesFromRoster(t *testing.T) {
	svc := newStudentService(t)
	admin := mainAdminActor()

	created, err := svc.Create(admin, guardScope, newStudent("1", "asha@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(admin, guardScope, created.ID))

	students, err := svc.List(admin, guardScope)
	require.NoError(t, err)
	assert.Empty(t, students)

	assert.Error(t, svc.Delete(admin, guardScope, created.ID))
}

func TestStudentPasswordChangeChecksCurrent(t *testing.T) {
	svc := newStudentService(t)

	created, err := svc.Create(mainAdminActor(), guardScope, newStudent("1", "asha@example.com"))
	require.NoError(t, err)
	self := studentActor(created.ID)

	_, err = svc.SelfUpdate(self, SelfUpdateRequest{CurrentPassword: "wrong", NewPassword: "fresh"})
	assert.Error(t, err)

	updated, err := svc.SelfUpdate(self, SelfUpdateRequest{CurrentPassword: "secret", NewPassword: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", updated.SecretPassword)
}

func TestStudentListOpenToAnyAdmin(t *testing.T) {
	svc := newStudentService(t)

	other := models.NewScope("B.Tech", "2nd Year", "B Section")
	_, err := svc.Create(mainAdminActor(), other, newStudent("1", "asha@example.com"))
	require.NoError(t, err)

	// A teacher bound to another section may still read this roster.
	students, err := svc.List(teacherActor("Maths"), other)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	_, err = svc.List(studentActor("student_001"), other)
	assert.Error(t, err)
}
