package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
)

// RecordUpdate is one student's attendance write. With none of Status, Op
// and Count supplied it is the legacy form: replace the present dates with
// exactly the Dates list. Otherwise it is a counted operation applied to
// each date in Dates (or the single Date).
type RecordUpdate struct {
	Dates  []string `json:"dates,omitempty"`
	Date   string   `json:"date,omitempty"`
	Status string   `json:"status,omitempty"`
	Op     string   `json:"op,omitempty"`
	Count  *int     `json:"count,omitempty"`
}

// MarkAttendanceRequest carries one subject's record writes, keyed by
// student id.
type MarkAttendanceRequest struct {
	Subject string                  `json:"subject" validate:"required"`
	Records map[string]RecordUpdate `json:"records" validate:"required"`
}

// SubjectAttendance is the per-subject expansion served to students: each
// date repeated once per counted period, sorted.
type SubjectAttendance struct {
	Present []string `json:"present"`
	Absent  []string `json:"absent"`
}

// AttendanceService implements the counted present/absent ledger.
type AttendanceService struct {
	store     *repository.Store
	guard     *Guard
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(store *repository.Store, guard *Guard, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{store: store, guard: guard, validator: validate, logger: logger}
}

// Ledger returns the whole attendance document of one scope in the counted
// shape.
func (s *AttendanceService) Ledger(actor models.Actor, scope models.Scope) (*models.Ledger, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	ledger, err := s.store.Attendance.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return &ledger, nil
}

// ExpandedLedger is the date-list rendition older clients consume: each
// counted record flattened back into a repeated date list.
type ExpandedLedger struct {
	Subjects []string                       `json:"subjects"`
	Records  map[string]map[string][]string `json:"records"`
}

// LegacyLedger returns the ledger with every record expanded to flat date
// lists, absences omitted as in the old format.
func (s *AttendanceService) LegacyLedger(actor models.Actor, scope models.Scope) (*ExpandedLedger, error) {
	ledger, err := s.Ledger(actor, scope)
	if err != nil {
		return nil, err
	}
	out := &ExpandedLedger{
		Subjects: ledger.Subjects,
		Records:  make(map[string]map[string][]string, len(ledger.Records)),
	}
	for subject, students := range ledger.Records {
		out.Records[subject] = make(map[string][]string, len(students))
		for studentID, record := range students {
			out.Records[subject][studentID] = models.ExpandCounts(record.Present)
		}
	}
	return out, nil
}

// Subjects returns the registered subject list. Admins of the scope and
// students bound to it may read it. A secondary admin sees only their
// assigned subjects, and any assigned subject missing from the ledger is
// registered on the way out.
func (s *AttendanceService) Subjects(actor models.Actor, scope models.Scope) ([]string, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		if selfErr := s.guard.RequireSelfScope(actor); selfErr != nil || !actor.Scope.Equal(scope) {
			return nil, err
		}
	}
	if actor.Role == models.RoleSecondaryAdmin {
		ledger, err := s.store.Attendance.Update(scope, func(ledger *models.Ledger) error {
			for _, subject := range actor.Subjects {
				ledger.EnsureSubject(subject)
			}
			return nil
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sync subjects")
		}
		assigned := make([]string, 0, len(actor.Subjects))
		for _, subject := range ledger.Subjects {
			if actor.HasSubject(subject) {
				assigned = append(assigned, subject)
			}
		}
		return assigned, nil
	}
	ledger, err := s.store.Attendance.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return ledger.Subjects, nil
}

// AddSubject registers a new subject in the ledger. Secondary admins may
// only register subjects from their assigned set.
func (s *AttendanceService) AddSubject(actor models.Actor, scope models.Scope, subject string) error {
	if err := s.guard.RequireSubject(actor, scope, subject); err != nil {
		return err
	}
	if err := validateSegment(subject); err != nil {
		return err
	}
	_, err := s.store.Attendance.Update(scope, func(ledger *models.Ledger) error {
		if ledger.HasSubject(subject) {
			return appErrors.Clone(appErrors.ErrConflict, "subject already registered")
		}
		ledger.EnsureSubject(subject)
		return nil
	})
	return err
}

// DeleteSubject drops a subject and every record under it. Deletion purges
// data, so only the main admin may do it.
func (s *AttendanceService) DeleteSubject(actor models.Actor, scope models.Scope, subject string) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	_, err := s.store.Attendance.Update(scope, func(ledger *models.Ledger) error {
		if !ledger.RemoveSubject(subject) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil
	})
	return err
}

// Mark applies a batch of record writes under one subject. Secondary admins
// must hold the subject; unknown subjects are registered on first write.
func (s *AttendanceService) Mark(actor models.Actor, scope models.Scope, req MarkAttendanceRequest) (*models.Ledger, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if err := s.guard.RequireSubject(actor, scope, req.Subject); err != nil {
		return nil, err
	}
	for studentID, update := range req.Records {
		if err := validateUpdate(studentID, update); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Attendance.Update(scope, func(ledger *models.Ledger) error {
		ledger.EnsureSubject(req.Subject)
		bucket := ledger.Records[req.Subject]
		for studentID, update := range req.Records {
			record, ok := bucket[studentID]
			if !ok {
				record = models.Record{Entry: models.NewEntry()}
			}
			applyUpdate(&record, update)
			bucket[studentID] = models.Record{Entry: record.Pruned()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// StudentAttendance expands the logged-in student's records across every
// subject into the flat date-list view.
func (s *AttendanceService) StudentAttendance(actor models.Actor) (map[string]SubjectAttendance, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	ledger, err := s.store.Attendance.Load(actor.Scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	out := make(map[string]SubjectAttendance, len(ledger.Subjects))
	for _, subject := range ledger.Subjects {
		record := ledger.Records[subject][actor.ID]
		out[subject] = SubjectAttendance{
			Present: models.ExpandCounts(record.Present),
			Absent:  models.ExpandCounts(record.Absent),
		}
	}
	return out, nil
}

// validateUpdate checks one record write before any mutation happens, so a
// bad entry rejects the whole batch.
func validateUpdate(studentID string, update RecordUpdate) error {
	if studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "record key must be a student id")
	}
	if update.legacy() {
		return nil
	}
	if len(update.days()) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one date is required for counted updates")
	}
	switch update.Status {
	case "", models.StatusPresent, models.StatusAbsent:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "status must be present or absent")
	}
	switch update.Op {
	case "", models.OpSet, models.OpIncrement, models.OpDecrement:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "op must be set, increment or decrement")
	}
	return nil
}

// legacy reports whether the update uses the flat date-list form: none of
// the counted fields supplied. A bare Date is a counted one-day write.
func (u RecordUpdate) legacy() bool {
	return u.Date == "" && u.Status == "" && u.Op == "" && u.Count == nil
}

// days collects the dates a counted operation applies to. The Dates list
// takes preference; the single Date field remains for one-day writes.
func (u RecordUpdate) days() []string {
	if len(u.Dates) > 0 {
		return u.Dates
	}
	if u.Date != "" {
		return []string{u.Date}
	}
	return nil
}

// applyUpdate mutates one record in place. Counts never go negative:
// set clamps at zero and decrement floors at zero.
func applyUpdate(record *models.Record, update RecordUpdate) {
	if update.legacy() {
		present := map[string]int{}
		for _, d := range update.Dates {
			present[models.DayKey(d)]++
		}
		record.Present = present
		return
	}

	status := update.Status
	if status == "" {
		status = models.StatusPresent
	}
	op := update.Op
	if op == "" {
		op = models.OpIncrement
	}
	count := 0
	if op != models.OpSet {
		count = 1
	}
	if update.Count != nil {
		count = *update.Count
	}
	if count < 0 {
		count = 0
	}

	counts := record.Counts(status)
	for _, d := range update.days() {
		day := models.DayKey(d)
		switch op {
		case models.OpSet:
			counts[day] = count
		case models.OpIncrement:
			counts[day] += count
		case models.OpDecrement:
			next := counts[day] - count
			if next < 0 {
				next = 0
			}
			counts[day] = next
		}
	}
}
