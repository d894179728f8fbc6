package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
)

// RaiseIssueRequest is a student's attendance dispute.
type RaiseIssueRequest struct {
	Subject     string   `json:"subject" validate:"required"`
	Dates       []string `json:"dates" validate:"required,min=1"`
	Description string   `json:"description" validate:"required"`
}

// ResolveIssueRequest moves a dispute to a new status with an optional
// faculty note.
type ResolveIssueRequest struct {
	Status      string `json:"status" validate:"required"`
	FacultyNote string `json:"facultyNote"`
}

// IssueService manages attendance disputes. Students raise them against
// their own record; admins of the scope review them.
type IssueService struct {
	store     *repository.Store
	guard     *Guard
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIssueService constructs the issue service.
func NewIssueService(store *repository.Store, guard *Guard, validate *validator.Validate, logger *zap.Logger) *IssueService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{store: store, guard: guard, validator: validate, logger: logger}
}

// Raise files a new dispute for the logged-in student.
func (s *IssueService) Raise(actor models.Actor, req RaiseIssueRequest) (*models.Issue, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}
	dates := make([]string, 0, len(req.Dates))
	for _, d := range req.Dates {
		dates = append(dates, models.DayKey(d))
	}
	created := models.Issue{
		ID:          shortID("issue"),
		StudentID:   actor.ID,
		StudentName: actor.Name,
		Subject:     req.Subject,
		Dates:       dates,
		Description: req.Description,
		CreatedAt:   nowStamp(),
		Status:      models.IssueOpen,
	}
	_, err := s.store.Issues.Update(actor.Scope, func(doc *models.IssueDoc) error {
		doc.Issues = append(doc.Issues, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("issue raised", zap.String("scope", actor.Scope.Key()), zap.String("id", created.ID))
	return &created, nil
}

// List returns every dispute of the scope for admin review.
func (s *IssueService) List(actor models.Actor, scope models.Scope, subject string) ([]models.Issue, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	doc, err := s.store.Issues.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issues")
	}
	if subject == "" {
		return doc.Issues, nil
	}
	filtered := make([]models.Issue, 0)
	for _, issue := range doc.Issues {
		if issue.Subject == subject {
			filtered = append(filtered, issue)
		}
	}
	return filtered, nil
}

// ListOwn returns the logged-in student's disputes.
func (s *IssueService) ListOwn(actor models.Actor) ([]models.Issue, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	doc, err := s.store.Issues.Load(actor.Scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issues")
	}
	own := make([]models.Issue, 0)
	for _, issue := range doc.Issues {
		if issue.StudentID == actor.ID {
			own = append(own, issue)
		}
	}
	return own, nil
}

// Resolve updates a dispute's status and note.
func (s *IssueService) Resolve(actor models.Actor, scope models.Scope, id string, req ResolveIssueRequest) (*models.Issue, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}
	if !models.ValidIssueStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown issue status")
	}
	var updated *models.Issue
	_, err := s.store.Issues.Update(scope, func(doc *models.IssueDoc) error {
		for i := range doc.Issues {
			if doc.Issues[i].ID == id {
				doc.Issues[i].Status = req.Status
				if req.FacultyNote != "" {
					doc.Issues[i].FacultyNote = req.FacultyNote
				}
				copied := doc.Issues[i]
				updated = &copied
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "issue not found")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
