package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
)

func newAdminService(t *testing.T) *AdminService {
	t.Helper()
	return NewAdminService(newTestStore(t), NewGuard(), nil, validator.New(), zap.NewNop())
}

func TestAdminListOpenToAnyAdmin(t *testing.T) {
	svc := newAdminService(t)

	other := models.NewScope("B.Tech", "2nd Year", "B Section")
	_, err := svc.Create(mainAdminActor(), other, CreateAdminRequest{
		Name: "Prof Two", UserID: "prof2", Password: "secret",
	})
	require.NoError(t, err)

	// A teacher bound to another section may still read this roster.
	admins, err := svc.List(teacherActor("Maths"), other)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	_, err = svc.List(studentActor("student_001"), other)
	assert.Error(t, err)
}
