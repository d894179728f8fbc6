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

// CertificateService manages documents admins attach to students.
type CertificateService struct {
	store  *repository.Store
	guard  *Guard
	blobs  *storage.BlobStore
	logger *zap.Logger
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(store *repository.Store, guard *Guard, blobs *storage.BlobStore, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{store: store, guard: guard, blobs: blobs, logger: logger}
}

// Upload stores a certificate file against one student.
func (s *CertificateService) Upload(actor models.Actor, scope models.Scope, studentID, name, filename string, r io.Reader) (*models.Certificate, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "certificate name is required")
	}
	if err := s.requireStudent(scope, studentID); err != nil {
		return nil, err
	}
	stored, err := s.blobs.Save("cert", filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}
	created := models.Certificate{
		ID:             shortID("cert"),
		Name:           name,
		Filename:       filename,
		URL:            s.blobs.URL(stored),
		StoredFilename: stored,
		UploadedAt:     nowStamp(),
		UploadedBy:     models.UploaderInfo{Type: actor.SenderType(), ID: actor.ID, Name: actor.Name},
	}
	_, err = s.store.Certificates.Update(scope, func(doc *models.CertificateDoc) error {
		if doc.ByStudent == nil {
			doc.ByStudent = map[string][]models.Certificate{}
		}
		doc.ByStudent[studentID] = append(doc.ByStudent[studentID], created)
		return nil
	})
	if err != nil {
		_ = s.blobs.Delete(stored)
		return nil, err
	}
	return &created, nil
}

// ListForStudent returns one student's certificates; admins of the scope
// and the student themselves may read them.
func (s *CertificateService) ListForStudent(actor models.Actor, scope models.Scope, studentID string) ([]models.Certificate, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		if selfErr := s.guard.RequireStudent(actor, scope, studentID); selfErr != nil {
			return nil, err
		}
	}
	doc, err := s.store.Certificates.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificates")
	}
	certs := doc.ByStudent[studentID]
	if certs == nil {
		certs = []models.Certificate{}
	}
	return certs, nil
}

// Delete removes a certificate and its stored file.
func (s *CertificateService) Delete(actor models.Actor, scope models.Scope, studentID, id string) error {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return err
	}
	var stored string
	_, err := s.store.Certificates.Update(scope, func(doc *models.CertificateDoc) error {
		certs, ok := doc.ByStudent[studentID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		for i, c := range certs {
			if c.ID == id {
				stored = c.StoredFilename
				doc.ByStudent[studentID] = append(certs[:i], certs[i+1:]...)
				if len(doc.ByStudent[studentID]) == 0 {
					delete(doc.ByStudent, studentID)
				}
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	})
	if err != nil {
		return err
	}
	if stored != "" {
		if err := s.blobs.Delete(stored); err != nil {
			s.logger.Warn("failed to delete certificate file", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *CertificateService) requireStudent(scope models.Scope, studentID string) error {
	students, err := s.store.Students.Load(scope)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	for _, st := range students {
		if st.ID == studentID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "student not found")
}
