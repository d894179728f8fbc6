package service

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/storage"
)

// ScrutinyService handles student-submitted documents awaiting faculty
// verification.
type ScrutinyService struct {
	store  *repository.Store
	guard  *Guard
	blobs  *storage.BlobStore
	logger *zap.Logger
}

// NewScrutinyService constructs the scrutiny service.
func NewScrutinyService(store *repository.Store, guard *Guard, blobs *storage.BlobStore, logger *zap.Logger) *ScrutinyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrutinyService{store: store, guard: guard, blobs: blobs, logger: logger}
}

// Submit files a new request for the logged-in student.
func (s *ScrutinyService) Submit(actor models.Actor, description, filename string, r io.Reader) (*models.ScrutinyRequest, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description is required")
	}
	stored, err := s.blobs.Save("scrutiny", filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}
	created := models.ScrutinyRequest{
		ID:          shortID("scr"),
		StudentID:   actor.ID,
		StudentName: actor.Name,
		Description: description,
		File: models.FileRef{
			Filename:       filename,
			URL:            s.blobs.URL(stored),
			StoredFilename: stored,
		},
		Status:      models.ScrutinyPending,
		SubmittedAt: nowStamp(),
	}
	_, err = s.store.Scrutiny.Update(actor.Scope, func(doc *models.ScrutinyDoc) error {
		doc.Requests = append(doc.Requests, created)
		return nil
	})
	if err != nil {
		_ = s.blobs.Delete(stored)
		return nil, err
	}
	return &created, nil
}

// List returns every request of the scope for admin review.
func (s *ScrutinyService) List(actor models.Actor, scope models.Scope) ([]models.ScrutinyRequest, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	doc, err := s.store.Scrutiny.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scrutiny requests")
	}
	return doc.Requests, nil
}

// ListOwn returns the logged-in student's requests.
func (s *ScrutinyService) ListOwn(actor models.Actor) ([]models.ScrutinyRequest, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	doc, err := s.store.Scrutiny.Load(actor.Scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scrutiny requests")
	}
	own := make([]models.ScrutinyRequest, 0)
	for _, req := range doc.Requests {
		if req.StudentID == actor.ID {
			own = append(own, req)
		}
	}
	return own, nil
}

// DeleteOwn withdraws one of the student's own requests and removes its
// stored document.
func (s *ScrutinyService) DeleteOwn(actor models.Actor, id string) error {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return err
	}
	var stored string
	_, err := s.store.Scrutiny.Update(actor.Scope, func(doc *models.ScrutinyDoc) error {
		for i := range doc.Requests {
			if doc.Requests[i].ID != id {
				continue
			}
			if doc.Requests[i].StudentID != actor.ID {
				return appErrors.Clone(appErrors.ErrForbidden, "not your scrutiny request")
			}
			stored = doc.Requests[i].File.StoredFilename
			doc.Requests = append(doc.Requests[:i], doc.Requests[i+1:]...)
			return nil
		}
		return appErrors.Clone(appErrors.ErrNotFound, "scrutiny request not found")
	})
	if err != nil {
		return err
	}
	if stored != "" {
		if err := s.blobs.Delete(stored); err != nil {
			s.logger.Warn("failed to delete scrutiny document", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}

// Remark records the reviewer's verdict on a request.
func (s *ScrutinyService) Remark(actor models.Actor, scope models.Scope, id, status, remark string) (*models.ScrutinyRequest, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	if strings.TrimSpace(status) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status is required")
	}
	var updated *models.ScrutinyRequest
	_, err := s.store.Scrutiny.Update(scope, func(doc *models.ScrutinyDoc) error {
		for i := range doc.Requests {
			if doc.Requests[i].ID == id {
				doc.Requests[i].Status = status
				doc.Requests[i].Remark = remark
				doc.Requests[i].RemarkedAt = nowStamp()
				doc.Requests[i].RemarkedBy = &models.UploaderInfo{
					Type: actor.SenderType(),
					ID:   actor.ID,
					Name: actor.Name,
				}
				copied := doc.Requests[i]
				updated = &copied
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "scrutiny request not found")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
