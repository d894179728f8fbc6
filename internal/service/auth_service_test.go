package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	"github.com/noah-isme/section-portal-api/pkg/config"
)

func newAuthService(t *testing.T, adminPassword string) (*AuthService, *repository.Store) {
	t.Helper()
	store := newTestStore(t)
	svc := NewAuthService(store,
		config.AdminConfig{UserID: "faculty", Password: adminPassword},
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "section-portal"},
		nil, zap.NewNop())
	return svc, store
}

func TestAdminLogin(t *testing.T) {
	svc, _ := newAuthService(t, "letmein")

	result, err := svc.AdminLogin(AdminLoginRequest{UserID: "faculty", Password: "letmein"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMainAdmin, result.Role)
	assert.Equal(t, models.MainAdminID, result.UserID)
	assert.Nil(t, result.Scope)
	assert.NotEmpty(t, result.Token)

	_, err = svc.AdminLogin(AdminLoginRequest{UserID: "faculty", Password: "wrong"})
	assert.Error(t, err)
	_, err = svc.AdminLogin(AdminLoginRequest{UserID: "someone", Password: "letmein"})
	assert.Error(t, err)
	_, err = svc.AdminLogin(AdminLoginRequest{UserID: "faculty"})
	assert.Error(t, err)
}

func TestAdminLoginWithHashedPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	svc, _ := newAuthService(t, string(hash))

	_, err = svc.AdminLogin(AdminLoginRequest{UserID: "faculty", Password: "letmein"})
	assert.NoError(t, err)
	_, err = svc.AdminLogin(AdminLoginRequest{UserID: "faculty", Password: "wrong"})
	assert.Error(t, err)
}

func TestTeacherLoginBindsFirstMatchingScope(t *testing.T) {
	svc, store := newAuthService(t, "letmein")

	first := models.NewScope("B.Tech", "1st Year", "A Section")
	second := models.NewScope("B.Tech", "1st Year", "B Section")
	for _, scope := range []models.Scope{second, first} {
		_, err := store.EnsureScope(scope)
		require.NoError(t, err)
		_, err = store.Admins.Update(scope, func(admins *[]models.SecondaryAdmin) error {
			*admins = append(*admins, models.SecondaryAdmin{
				ID:       "professor_001",
				UserID:   "prof1",
				Password: "pass",
				Name:     "Prof One",
				Subjects: []string{"Maths"},
			})
			return nil
		})
		require.NoError(t, err)
	}

	// The same credential exists in both sections; lexical order decides.
	result, err := svc.TeacherLogin(TeacherLoginRequest{UserID: "prof1", Password: "pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSecondaryAdmin, result.Role)
	require.NotNil(t, result.Scope)
	assert.Equal(t, first, *result.Scope)
	assert.Equal(t, []string{"Maths"}, result.Subjects)

	_, err = svc.TeacherLogin(TeacherLoginRequest{UserID: "prof1", Password: "nope"})
	assert.Error(t, err)
	_, err = svc.TeacherLogin(TeacherLoginRequest{UserID: "ghost", Password: "pass"})
	assert.Error(t, err)
}

func TestStudentLoginMatchesFullTriple(t *testing.T) {
	svc, store := newAuthService(t, "letmein")

	_, err := store.EnsureScope(guardScope)
	require.NoError(t, err)
	_, err = store.Students.Update(guardScope, func(students *[]models.Student) error {
		*students = append(*students, models.Student{
			ID:             "student_001",
			Name:           "Asha",
			RollNumber:     "42",
			Email:          "asha@example.com",
			SecretPassword: "hunter2",
		})
		return nil
	})
	require.NoError(t, err)

	result, err := svc.StudentLogin(StudentLoginRequest{
		RollNumber:     "42",
		Email:          "asha@example.com",
		SecretPassword: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, result.Role)
	assert.Equal(t, "student_001", result.UserID)
	require.NotNil(t, result.Scope)
	assert.Equal(t, guardScope, *result.Scope)

	// All three fields have to line up.
	_, err = svc.StudentLogin(StudentLoginRequest{
		RollNumber:     "42",
		Email:          "asha@example.com",
		SecretPassword: "wrong",
	})
	assert.Error(t, err)
	_, err = svc.StudentLogin(StudentLoginRequest{
		RollNumber:     "43",
		Email:          "asha@example.com",
		SecretPassword: "hunter2",
	})
	assert.Error(t, err)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthService(t, "letmein")

	result, err := svc.AdminLogin(AdminLoginRequest{UserID: "faculty", Password: "letmein"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMainAdmin, claims.Role)
	assert.Equal(t, models.MainAdminID, claims.UserID)

	actor := claims.Actor()
	assert.Equal(t, models.RoleMainAdmin, actor.Role)
	assert.Equal(t, models.MainAdminID, actor.ID)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
	_, err = svc.ValidateToken(result.Token + "tampered")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	store := newTestStore(t)
	svc := NewAuthService(store,
		config.AdminConfig{UserID: "faculty", Password: "letmein"},
		config.JWTConfig{Secret: "test-secret", Expiration: -time.Minute, Issuer: "section-portal"},
		nil, zap.NewNop())

	result, err := svc.AdminLogin(AdminLoginRequest{UserID: "faculty", Password: "letmein"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.Token)
	assert.Error(t, err)
}
