package service

import (
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/storage"
)

// CreateAdminRequest holds payload for registering a secondary admin.
type CreateAdminRequest struct {
	Name        string   `json:"name" validate:"required"`
	UserID      string   `json:"userId" validate:"required"`
	Password    string   `json:"password" validate:"required"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	FatherName  string   `json:"fatherName"`
	FatherPhone string   `json:"fatherPhone"`
	MotherName  string   `json:"motherName"`
	MotherPhone string   `json:"motherPhone"`
	Subjects    []string `json:"subjects"`
}

// UpdateAdminRequest holds payload for editing a secondary admin. Subjects
// replaces the whole set when non-nil.
type UpdateAdminRequest struct {
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	FatherName  string   `json:"fatherName"`
	FatherPhone string   `json:"fatherPhone"`
	MotherName  string   `json:"motherName"`
	MotherPhone string   `json:"motherPhone"`
	Subjects    []string `json:"subjects"`
}

// AdminService manages secondary admins. Every mutation is main-admin only;
// assigned subjects are registered in the attendance ledger so records can
// be taken immediately.
type AdminService struct {
	store     *repository.Store
	guard     *Guard
	blobs     *storage.BlobStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(store *repository.Store, guard *Guard, blobs *storage.BlobStore, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{store: store, guard: guard, blobs: blobs, validator: validate, logger: logger}
}

// List returns the secondary admins of one scope. Pure listing is open to
// any admin regardless of their bound scope.
func (s *AdminService) List(actor models.Actor, scope models.Scope) ([]models.SecondaryAdmin, error) {
	if err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	admins, err := s.store.Admins.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admins")
	}
	return admins, nil
}

// Create registers a secondary admin bound to the scope.
func (s *AdminService) Create(actor models.Actor, scope models.Scope, req CreateAdminRequest) (*models.SecondaryAdmin, error) {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}
	if req.Subjects == nil {
		req.Subjects = []string{}
	}

	var created models.SecondaryAdmin
	_, err := s.store.Admins.Update(scope, func(admins *[]models.SecondaryAdmin) error {
		for _, a := range *admins {
			if a.UserID == req.UserID {
				return appErrors.Clone(appErrors.ErrConflict, "user id already registered")
			}
		}
		created = models.SecondaryAdmin{
			ID:          sequentialID("professor", len(*admins)+1),
			Name:        req.Name,
			UserID:      req.UserID,
			Password:    req.Password,
			Email:       req.Email,
			Phone:       req.Phone,
			FatherName:  req.FatherName,
			FatherPhone: req.FatherPhone,
			MotherName:  req.MotherName,
			MotherPhone: req.MotherPhone,
			Subjects:    req.Subjects,
			CreatedAt:   nowStamp(),
		}
		*admins = append(*admins, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.registerSubjects(scope, created.Subjects); err != nil {
		return nil, err
	}
	s.logger.Info("secondary admin registered", zap.String("scope", scope.Key()), zap.String("id", created.ID))
	return &created, nil
}

// Update edits a secondary admin and registers any newly assigned subjects.
func (s *AdminService) Update(actor models.Actor, scope models.Scope, id string, req UpdateAdminRequest) (*models.SecondaryAdmin, error) {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return nil, err
	}
	var updated *models.SecondaryAdmin
	_, err := s.store.Admins.Update(scope, func(admins *[]models.SecondaryAdmin) error {
		for i := range *admins {
			if (*admins)[i].ID != id {
				continue
			}
			a := &(*admins)[i]
			applyIfSet(&a.Name, req.Name)
			applyIfSet(&a.Password, req.Password)
			applyIfSet(&a.Email, req.Email)
			applyIfSet(&a.Phone, req.Phone)
			applyIfSet(&a.FatherName, req.FatherName)
			applyIfSet(&a.FatherPhone, req.FatherPhone)
			applyIfSet(&a.MotherName, req.MotherName)
			applyIfSet(&a.MotherPhone, req.MotherPhone)
			if req.Subjects != nil {
				a.Subjects = req.Subjects
			}
			copied := *a
			updated = &copied
			return nil
		}
		return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
	})
	if err != nil {
		return nil, err
	}
	if err := s.registerSubjects(scope, updated.Subjects); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a secondary admin. Subjects stay registered in the ledger;
// recorded attendance survives staffing changes.
func (s *AdminService) Delete(actor models.Actor, scope models.Scope, id string) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	var removed *models.SecondaryAdmin
	_, err := s.store.Admins.Update(scope, func(admins *[]models.SecondaryAdmin) error {
		for i, a := range *admins {
			if a.ID == id {
				copied := a
				removed = &copied
				*admins = append((*admins)[:i], (*admins)[i+1:]...)
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
	})
	if err != nil {
		return err
	}
	if removed.Photo != "" {
		if err := s.blobs.Delete(removed.Photo); err != nil {
			s.logger.Warn("failed to delete admin photo", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}

// UploadPhoto stores a profile photo for a secondary admin.
func (s *AdminService) UploadPhoto(actor models.Actor, scope models.Scope, id, filename string, r io.Reader) (*models.SecondaryAdmin, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	stored, err := s.blobs.Save("admin_photo", filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	var previous string
	var updated *models.SecondaryAdmin
	_, err = s.store.Admins.Update(scope, func(admins *[]models.SecondaryAdmin) error {
		for i := range *admins {
			if (*admins)[i].ID == id {
				previous = (*admins)[i].Photo
				(*admins)[i].Photo = stored
				copied := (*admins)[i]
				updated = &copied
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
	})
	if err != nil {
		_ = s.blobs.Delete(stored)
		return nil, err
	}
	if previous != "" {
		if err := s.blobs.Delete(previous); err != nil {
			s.logger.Warn("failed to delete replaced photo", zap.String("id", id), zap.Error(err))
		}
	}
	return updated, nil
}

func (s *AdminService) registerSubjects(scope models.Scope, subjects []string) error {
	if len(subjects) == 0 {
		return nil
	}
	_, err := s.store.Attendance.Update(scope, func(ledger *models.Ledger) error {
		for _, subject := range subjects {
			ledger.EnsureSubject(subject)
		}
		return nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register subjects")
	}
	return nil
}
