package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func newAttendanceService(t *testing.T) (*AttendanceService, *repository.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewAttendanceService(store, NewGuard(), nil, zap.NewNop()), store
}

func intp(v int) *int { return &v }

func markOne(t *testing.T, svc *AttendanceService, actor models.Actor, subject, studentID string, update RecordUpdate) *models.Ledger {
	t.Helper()
	ledger, err := svc.Mark(actor, guardScope, MarkAttendanceRequest{
		Subject: subject,
		Records: map[string]RecordUpdate{studentID: update},
	})
	require.NoError(t, err)
	return ledger
}

func TestMarkSetClampsNegativeToZero(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	ledger := markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Status: models.StatusPresent, Op: models.OpSet, Count: intp(-3),
	})
	// Clamped to zero, then pruned from the persisted record.
	assert.NotContains(t, ledger.Records["Maths"]["student_001"].Present, "2024-01-10")
}

func TestMarkSetDefaultsToZero(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Op: models.OpSet, Count: intp(3),
	})
	// Set with no count clears the day, which prunes it from the record.
	ledger := markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10T09:30:00", Status: models.StatusPresent, Op: models.OpSet,
	})
	assert.NotContains(t, ledger.Records["Maths"]["student_001"].Present, "2024-01-10")
}

func TestMarkDefaultsToIncrementByOne(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{Date: "2024-01-10"})
	ledger := markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{Date: "2024-01-10"})
	assert.Equal(t, 2, ledger.Records["Maths"]["student_001"].Present["2024-01-10"])
}

func TestMarkAppliesToEveryListedDate(t *testing.T) {
	svc, _ := newAttendanceService(t)

	ledger := markOne(t, svc, mainAdminActor(), "Maths", "student_001", RecordUpdate{
		Dates: []string{"2024-01-10", "2024-01-10", "2024-01-11"},
		Op:    models.OpIncrement, Count: intp(1),
	})
	record := ledger.Records["Maths"]["student_001"]
	assert.Equal(t, 2, record.Present["2024-01-10"])
	assert.Equal(t, 1, record.Present["2024-01-11"])
}

func TestMarkIncrementAccumulates(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Op: models.OpIncrement, Count: intp(2),
	})
	ledger := markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Op: models.OpIncrement,
	})
	assert.Equal(t, 3, ledger.Records["Maths"]["student_001"].Present["2024-01-10"])
}

func TestMarkDecrementFloorsAtZeroAndPrunes(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Op: models.OpSet, Count: intp(2),
	})
	ledger := markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Op: models.OpDecrement, Count: intp(5),
	})
	assert.NotContains(t, ledger.Records["Maths"]["student_001"].Present, "2024-01-10")
}

func TestMarkAbsentTracksSeparately(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Status: models.StatusPresent, Op: models.OpSet, Count: intp(2),
	})
	ledger := markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Status: models.StatusAbsent, Op: models.OpSet, Count: intp(1),
	})
	record := ledger.Records["Maths"]["student_001"]
	assert.Equal(t, 2, record.Present["2024-01-10"])
	assert.Equal(t, 1, record.Absent["2024-01-10"])
}

func TestMarkLegacyListReplacesPresentOnly(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-05", Status: models.StatusAbsent, Op: models.OpSet, Count: intp(1),
	})
	markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Date: "2023-12-01", Status: models.StatusPresent, Op: models.OpSet, Count: intp(4),
	})

	ledger := markOne(t, svc, actor, "Maths", "student_001", RecordUpdate{
		Dates: []string{"2024-01-10", "2024-01-10", "2024-01-11T08:00:00"},
	})
	record := ledger.Records["Maths"]["student_001"]
	assert.Equal(t, map[string]int{"2024-01-10": 2, "2024-01-11": 1}, record.Present)
	assert.Equal(t, 1, record.Absent["2024-01-05"])
}

func TestMarkRegistersUnknownSubject(t *testing.T) {
	svc, _ := newAttendanceService(t)
	ledger := markOne(t, svc, mainAdminActor(), "Chemistry", "student_001", RecordUpdate{
		Date: "2024-01-10",
	})
	assert.Contains(t, ledger.Subjects, "Chemistry")
	assert.Equal(t, 1, ledger.Records["Chemistry"]["student_001"].Present["2024-01-10"])
}

func TestMarkSubjectBindingForSecondaryAdmin(t *testing.T) {
	svc, _ := newAttendanceService(t)

	_, err := svc.Mark(teacherActor("Maths"), guardScope, MarkAttendanceRequest{
		Subject: "Physics",
		Records: map[string]RecordUpdate{"student_001": {Date: "2024-01-10"}},
	})
	require.Error(t, err)

	_, err = svc.Mark(teacherActor("Physics"), guardScope, MarkAttendanceRequest{
		Subject: "Physics",
		Records: map[string]RecordUpdate{"student_001": {Date: "2024-01-10"}},
	})
	assert.NoError(t, err)
}

func TestMarkRejectsUnknownStatusAndOp(t *testing.T) {
	svc, _ := newAttendanceService(t)
	actor := mainAdminActor()

	_, err := svc.Mark(actor, guardScope, MarkAttendanceRequest{
		Subject: "Maths",
		Records: map[string]RecordUpdate{"student_001": {Date: "2024-01-10", Status: "late"}},
	})
	assert.Error(t, err)

	_, err = svc.Mark(actor, guardScope, MarkAttendanceRequest{
		Subject: "Maths",
		Records: map[string]RecordUpdate{"student_001": {Date: "2024-01-10", Op: "toggle"}},
	})
	assert.Error(t, err)

	_, err = svc.Mark(actor, guardScope, MarkAttendanceRequest{
		Subject: "Maths",
		Records: map[string]RecordUpdate{"student_001": {Status: models.StatusPresent}},
	})
	assert.Error(t, err)
}

func TestStudentAttendanceExpandsOwnRecords(t *testing.T) {
	svc, _ := newAttendanceService(t)
	admin := mainAdminActor()

	markOne(t, svc, admin, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Op: models.OpSet, Count: intp(2),
	})
	markOne(t, svc, admin, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-09", Status: models.StatusAbsent, Op: models.OpSet, Count: intp(1),
	})
	markOne(t, svc, admin, "Maths", "student_002", RecordUpdate{
		Date: "2024-01-10", Op: models.OpSet, Count: intp(5),
	})

	attendance, err := svc.StudentAttendance(studentActor("student_001"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-10", "2024-01-10"}, attendance["Maths"].Present)
	assert.Equal(t, []string{"2024-01-09"}, attendance["Maths"].Absent)
}

func TestAddSubjectChecksAssignments(t *testing.T) {
	svc, _ := newAttendanceService(t)

	assert.Error(t, svc.AddSubject(teacherActor("Maths"), guardScope, "Physics"))
	assert.NoError(t, svc.AddSubject(teacherActor("Maths"), guardScope, "Maths"))
}

func TestDeleteSubjectIsMainAdminOnly(t *testing.T) {
	svc, _ := newAttendanceService(t)
	admin := mainAdminActor()

	require.NoError(t, svc.AddSubject(admin, guardScope, "Maths"))
	assert.Error(t, svc.DeleteSubject(teacherActor("Maths"), guardScope, "Maths"))
	assert.NoError(t, svc.DeleteSubject(admin, guardScope, "Maths"))
}

func TestSecondaryAdminSubjectsFollowAssignments(t *testing.T) {
	svc, _ := newAttendanceService(t)
	admin := mainAdminActor()

	require.NoError(t, svc.AddSubject(admin, guardScope, "Chemistry"))

	subjects, err := svc.Subjects(teacherActor("Maths", "Physics"), guardScope)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Maths", "Physics"}, subjects)
	assert.NotContains(t, subjects, "Chemistry")

	// Assigned subjects were synced into the ledger alongside the existing one.
	all, err := svc.Subjects(admin, guardScope)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Chemistry", "Maths", "Physics"}, all)
}

func TestSubjectLifecycle(t *testing.T) {
	svc, _ := newAttendanceService(t)
	admin := mainAdminActor()

	require.NoError(t, svc.AddSubject(admin, guardScope, "Maths"))
	assert.Error(t, svc.AddSubject(admin, guardScope, "Maths"))

	subjects, err := svc.Subjects(admin, guardScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maths"}, subjects)

	require.NoError(t, svc.DeleteSubject(admin, guardScope, "Maths"))
	assert.Error(t, svc.DeleteSubject(admin, guardScope, "Maths"))
}

func TestLedgerRequiresAdmin(t *testing.T) {
	svc, _ := newAttendanceService(t)
	_, err := svc.Ledger(studentActor("student_001"), guardScope)
	assert.Error(t, err)
}

func TestLegacyLedgerFlattensCounts(t *testing.T) {
	svc, _ := newAttendanceService(t)
	admin := mainAdminActor()

	markOne(t, svc, admin, "Maths", "student_001", RecordUpdate{
		Date: "2024-01-10", Op: models.OpSet, Count: intp(2),
	})

	expanded, err := svc.LegacyLedger(admin, guardScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maths"}, expanded.Subjects)
	assert.Equal(t, []string{"2024-01-10", "2024-01-10"}, expanded.Records["Maths"]["student_001"])
}
