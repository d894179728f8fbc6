package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDirectoryService(t *testing.T) *DirectoryService {
	t.Helper()
	return NewDirectoryService(newTestStore(t), NewGuard(), nil, 0, nil, zap.NewNop())
}

func TestDirectoryLifecycle(t *testing.T) {
	svc := newDirectoryService(t)
	admin := mainAdminActor()
	ctx := context.Background()

	require.NoError(t, svc.CreateCourse(ctx, admin, "B.Tech"))
	require.NoError(t, svc.CreateYear(ctx, admin, "B.Tech", "1st Year"))
	require.NoError(t, svc.CreateSection(ctx, admin, guardScope))

	courses, err := svc.ListCourses(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"B.Tech"}, courses)

	sections, err := svc.ListSections(ctx, admin, "B.Tech", "1st Year")
	require.NoError(t, err)
	assert.Equal(t, []string{"A Section"}, sections)

	require.NoError(t, svc.RequireScope(guardScope))

	require.NoError(t, svc.DeleteSection(ctx, admin, guardScope))
	assert.Error(t, svc.RequireScope(guardScope))
	assert.Error(t, svc.DeleteSection(ctx, admin, guardScope))
}

func TestDirectoryCreateConflicts(t *testing.T) {
	svc := newDirectoryService(t)
	admin := mainAdminActor()
	ctx := context.Background()

	require.NoError(t, svc.CreateCourse(ctx, admin, "B.Tech"))
	assert.Error(t, svc.CreateCourse(ctx, admin, "B.Tech"))

	// Nested levels need their parent to exist.
	assert.Error(t, svc.CreateYear(ctx, admin, "M.Tech", "1st Year"))
	assert.Error(t, svc.CreateSection(ctx, admin, guardScope))
}

func TestDirectoryWritesAreMainAdminOnly(t *testing.T) {
	svc := newDirectoryService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateCourse(ctx, mainAdminActor(), "B.Tech"))

	assert.Error(t, svc.CreateCourse(ctx, teacherActor(), "M.Tech"))
	assert.Error(t, svc.DeleteCourse(ctx, teacherActor(), "B.Tech"))

	// Reads are open to both admin roles but not students.
	_, err := svc.ListCourses(ctx, teacherActor())
	assert.NoError(t, err)
	_, err = svc.ListCourses(ctx, studentActor("student_001"))
	assert.Error(t, err)
}

func TestDirectoryRejectsUnsafeNames(t *testing.T) {
	svc := newDirectoryService(t)
	admin := mainAdminActor()
	ctx := context.Background()

	for _, name := range []string{"", "  ", ".", "..", "a/b", `a\b`} {
		assert.Error(t, svc.CreateCourse(ctx, admin, name), "name %q", name)
	}
}
