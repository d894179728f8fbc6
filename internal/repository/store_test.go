package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestEnsureScopeSeedsEveryCollection(t *testing.T) {
	store := newTestStore(t)
	scope := models.NewScope("B.Tech", "1st Year", "A Section")

	created, err := store.EnsureScope(scope)
	require.NoError(t, err)
	assert.True(t, created)

	dir := store.scopeDir(scope)
	for _, name := range fileNames {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	created, err = store.EnsureScope(scope)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLoadMissingDocumentPersistsDefault(t *testing.T) {
	store := newTestStore(t)
	scope := models.NewScope("B.Tech", "1st Year", "A Section")

	students, err := store.Students.Load(scope)
	require.NoError(t, err)
	assert.Empty(t, students)

	_, err = os.Stat(filepath.Join(store.scopeDir(scope), "students.json"))
	assert.NoError(t, err)
}

func TestLoadCorruptDocumentYieldsDefault(t *testing.T) {
	store := newTestStore(t)
	scope := models.NewScope("B.Tech", "1st Year", "A Section")
	_, err := store.EnsureScope(scope)
	require.NoError(t, err)

	path := filepath.Join(store.scopeDir(scope), "students.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	students, err := store.Students.Load(scope)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestLoadEmptyDocumentYieldsDefault(t *testing.T) {
	store := newTestStore(t)
	scope := models.NewScope("B.Tech", "1st Year", "A Section")
	_, err := store.EnsureScope(scope)
	require.NoError(t, err)

	path := filepath.Join(store.scopeDir(scope), "attendance.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	ledger, err := store.Attendance.Load(scope)
	require.NoError(t, err)
	assert.Empty(t, ledger.Subjects)
	assert.NotNil(t, ledger.Records)
}

func TestLegacyAttendanceReadWithoutWriteBack(t *testing.T) {
	store := newTestStore(t)
	scope := models.NewScope("B.Tech", "1st Year", "A Section")
	_, err := store.EnsureScope(scope)
	require.NoError(t, err)

	legacy := `{"subjects":["Maths"],"records":{"Maths":{"student_001":["2024-01-10","2024-01-10"]}}}`
	path := filepath.Join(store.scopeDir(scope), "attendance.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	ledger, err := store.Attendance.Load(scope)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.Records["Maths"]["student_001"].Present["2024-01-10"])

	// A plain read must not rewrite the file.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacy, string(raw))
}

func TestScopeIsolation(t *testing.T) {
	store := newTestStore(t)
	a := models.NewScope("B.Tech", "1st Year", "A Section")
	b := models.NewScope("B.Tech", "1st Year", "B Section")

	_, err := store.Students.Update(a, func(students *[]models.Student) error {
		*students = append(*students, models.Student{ID: "student_001", Name: "Asha"})
		return nil
	})
	require.NoError(t, err)

	other, err := store.Students.Load(b)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpdateDoesNotPersistOnError(t *testing.T) {
	store := newTestStore(t)
	scope := models.NewScope("B.Tech", "1st Year", "A Section")

	_, err := store.Students.Update(scope, func(students *[]models.Student) error {
		*students = append(*students, models.Student{ID: "student_001"})
		return nil
	})
	require.NoError(t, err)

	_, err = store.Students.Update(scope, func(students *[]models.Student) error {
		*students = nil
		return assert.AnError
	})
	require.Error(t, err)

	students, err := store.Students.Load(scope)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestDirectoryListingsSortedAndMissingEmpty(t *testing.T) {
	store := newTestStore(t)
	for _, scope := range []models.Scope{
		models.NewScope("M.Tech", "1st Year", "A Section"),
		models.NewScope("B.Tech", "2nd Year", "A Section"),
		models.NewScope("B.Tech", "1st Year", "B Section"),
		models.NewScope("B.Tech", "1st Year", "A Section"),
	} {
		_, err := store.EnsureScope(scope)
		require.NoError(t, err)
	}

	courses, err := store.ListCourses()
	require.NoError(t, err)
	assert.Equal(t, []string{"B.Tech", "M.Tech"}, courses)

	years, err := store.ListYears("B.Tech")
	require.NoError(t, err)
	assert.Equal(t, []string{"1st Year", "2nd Year"}, years)

	sections, err := store.ListSections("B.Tech", "1st Year")
	require.NoError(t, err)
	assert.Equal(t, []string{"A Section", "B Section"}, sections)

	empty, err := store.ListYears("No Such Course")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteScopeRemovesTree(t *testing.T) {
	store := newTestStore(t)
	scope := models.NewScope("B.Tech", "1st Year", "A Section")
	_, err := store.EnsureScope(scope)
	require.NoError(t, err)

	require.NoError(t, store.DeleteScope(scope))
	assert.False(t, store.ScopeExists(scope))

	err = store.DeleteScope(scope)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
