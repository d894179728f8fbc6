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

// NoteService manages course material uploads, grouped by subject.
type NoteService struct {
	store  *repository.Store
	guard  *Guard
	blobs  *storage.BlobStore
	logger *zap.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(store *repository.Store, guard *Guard, blobs *storage.BlobStore, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{store: store, guard: guard, blobs: blobs, logger: logger}
}

// Upload stores the file and records the note under its subject. Secondary
// admins may only upload under subjects assigned to them.
func (s *NoteService) Upload(actor models.Actor, scope models.Scope, subject, title, description, filename string, r io.Reader) (*models.Note, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject and title are required")
	}
	if err := s.guard.RequireSubject(actor, scope, subject); err != nil {
		return nil, err
	}
	stored, err := s.blobs.Save("note", filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store note file")
	}
	created := models.Note{
		ID:          shortID("note"),
		Subject:     subject,
		Title:       title,
		Description: description,
		File: models.FileRef{
			Filename:       filename,
			URL:            s.blobs.URL(stored),
			StoredFilename: stored,
		},
		UploadedAt: nowStamp(),
		UploadedBy: models.UploaderInfo{Type: actor.SenderType(), ID: actor.ID, Name: actor.Name},
	}
	_, err = s.store.Notes.Update(scope, func(doc *models.NoteDoc) error {
		if doc.BySubject == nil {
			doc.BySubject = map[string][]models.Note{}
		}
		doc.BySubject[subject] = append(doc.BySubject[subject], created)
		return nil
	})
	if err != nil {
		_ = s.blobs.Delete(stored)
		return nil, err
	}
	// The main admin may upload under a subject the ledger has not seen
	// yet; register it so attendance can be taken for it.
	if actor.Role == models.RoleMainAdmin {
		if _, err := s.store.Attendance.Update(scope, func(ledger *models.Ledger) error {
			ledger.EnsureSubject(subject)
			return nil
		}); err != nil {
			s.logger.Warn("failed to register note subject", zap.String("subject", subject), zap.Error(err))
		}
	}
	return &created, nil
}

// List returns every note of the scope grouped by subject.
func (s *NoteService) List(actor models.Actor, scope models.Scope) (map[string][]models.Note, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	doc, err := s.store.Notes.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notes")
	}
	return doc.BySubject, nil
}

// ListForStudent returns the scope's notes with uploader identity reduced
// to the display name.
func (s *NoteService) ListForStudent(actor models.Actor) (map[string][]models.StudentNote, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	doc, err := s.store.Notes.Load(actor.Scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notes")
	}
	out := make(map[string][]models.StudentNote, len(doc.BySubject))
	for subject, notes := range doc.BySubject {
		projected := make([]models.StudentNote, 0, len(notes))
		for _, n := range notes {
			sn := models.StudentNote{
				ID:          n.ID,
				Subject:     n.Subject,
				Title:       n.Title,
				Description: n.Description,
				File:        n.File,
				UploadedAt:  n.UploadedAt,
			}
			sn.UploadedBy.Name = n.UploadedBy.Name
			projected = append(projected, sn)
		}
		out[subject] = projected
	}
	return out, nil
}

// Delete removes a note and its stored file. Secondary admins may only
// delete under their assigned subjects.
func (s *NoteService) Delete(actor models.Actor, scope models.Scope, subject, id string) error {
	if err := s.guard.RequireSubject(actor, scope, subject); err != nil {
		return err
	}
	var stored string
	_, err := s.store.Notes.Update(scope, func(doc *models.NoteDoc) error {
		notes, ok := doc.BySubject[subject]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		for i, n := range notes {
			if n.ID == id {
				stored = n.File.StoredFilename
				doc.BySubject[subject] = append(notes[:i], notes[i+1:]...)
				if len(doc.BySubject[subject]) == 0 {
					delete(doc.BySubject, subject)
				}
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "note not found")
	})
	if err != nil {
		return err
	}
	if stored != "" {
		if err := s.blobs.Delete(stored); err != nil {
			s.logger.Warn("failed to delete note file", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}
