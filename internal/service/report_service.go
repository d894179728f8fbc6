package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/export"
)

// ReportService renders the attendance register as a PDF document.
type ReportService struct {
	store    *repository.Store
	guard    *Guard
	exporter *export.PDFExporter
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(store *repository.Store, guard *Guard, exporter *export.PDFExporter, logger *zap.Logger) *ReportService {
	if exporter == nil {
		exporter = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{store: store, guard: guard, exporter: exporter, logger: logger}
}

// AttendanceRegister builds one row per student with present/absent totals
// per subject and renders the table. With a subject given the register is
// restricted to it; secondary admins may only request their own subjects
// and otherwise get the columns they are assigned.
func (s *ReportService) AttendanceRegister(actor models.Actor, scope models.Scope, subject string) ([]byte, error) {
	if subject != "" {
		if err := s.guard.RequireSubject(actor, scope, subject); err != nil {
			return nil, err
		}
	} else if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	students, err := s.store.Students.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	ledger, err := s.store.Attendance.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	subjects := ledger.Subjects
	if subject != "" {
		if !ledger.HasSubject(subject) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not registered")
		}
		subjects = []string{subject}
	} else if actor.Role == models.RoleSecondaryAdmin {
		subjects = make([]string, 0, len(ledger.Subjects))
		for _, sub := range ledger.Subjects {
			if actor.HasSubject(sub) {
				subjects = append(subjects, sub)
			}
		}
	}

	headers := []string{"Roll No", "Name"}
	headers = append(headers, subjects...)

	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		row := map[string]string{
			"Roll No": st.RollNumber,
			"Name":    st.Name,
		}
		for _, subject := range subjects {
			record := ledger.Records[subject][st.ID]
			present, absent := 0, 0
			for _, c := range record.Present {
				present += c
			}
			for _, c := range record.Absent {
				absent += c
			}
			row[subject] = fmt.Sprintf("%d / %d", present, absent)
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf("Attendance Register %s %s %s", scope.Course, scope.Year, scope.Section)
	pdf, err := s.exporter.Render(export.Dataset{Headers: headers, Rows: rows}, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return pdf, nil
}
