package service

import (
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/storage"
)

// CreateStudentRequest holds payload for registering a student.
type CreateStudentRequest struct {
	Name           string `json:"name" validate:"required"`
	RollNumber     string `json:"rollNumber" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone"`
	FatherName     string `json:"fatherName"`
	FatherPhone    string `json:"fatherPhone"`
	MotherName     string `json:"motherName"`
	MotherPhone    string `json:"motherPhone"`
	SecretPassword string `json:"secretPassword" validate:"required"`
	Remarks        string `json:"remarks"`
}

// UpdateStudentRequest holds payload for an admin edit. Empty fields keep
// their stored value.
type UpdateStudentRequest struct {
	Name           string `json:"name"`
	RollNumber     string `json:"rollNumber"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	FatherName     string `json:"fatherName"`
	FatherPhone    string `json:"fatherPhone"`
	MotherName     string `json:"motherName"`
	MotherPhone    string `json:"motherPhone"`
	SecretPassword string `json:"secretPassword"`
	Remarks        string `json:"remarks"`
}

// SelfUpdateRequest is the narrow field set a student may edit on their own
// record. A password change requires the current password.
type SelfUpdateRequest struct {
	Phone           string `json:"phone"`
	FatherPhone     string `json:"fatherPhone"`
	MotherPhone     string `json:"motherPhone"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// StudentService manages each scope's roster.
type StudentService struct {
	store     *repository.Store
	guard     *Guard
	blobs     *storage.BlobStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(store *repository.Store, guard *Guard, blobs *storage.BlobStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, guard: guard, blobs: blobs, validator: validate, logger: logger}
}

// List returns the full roster of one scope. Pure listing is open to any
// admin regardless of their bound scope.
func (s *StudentService) List(actor models.Actor, scope models.Scope) ([]models.Student, error) {
	if err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	students, err := s.store.Students.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return students, nil
}

// Get returns one student by id.
func (s *StudentService) Get(actor models.Actor, scope models.Scope, id string) (*models.Student, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	return s.find(scope, id)
}

// Create registers a student, assigning the next sequential id within the
// scope. Roll number and email must be unique within the scope.
func (s *StudentService) Create(actor models.Actor, scope models.Scope, req CreateStudentRequest) (*models.Student, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	var created models.Student
	_, err := s.store.Students.Update(scope, func(students *[]models.Student) error {
		for _, st := range *students {
			if st.RollNumber == req.RollNumber {
				return appErrors.Clone(appErrors.ErrConflict, "roll number already registered")
			}
			if strings.EqualFold(st.Email, req.Email) {
				return appErrors.Clone(appErrors.ErrConflict, "email already registered")
			}
		}
		created = models.Student{
			ID:                 sequentialID("student", len(*students)+1),
			Name:               req.Name,
			RollNumber:         req.RollNumber,
			Email:              req.Email,
			Phone:              req.Phone,
			FatherName:         req.FatherName,
			FatherPhone:        req.FatherPhone,
			MotherName:         req.MotherName,
			MotherPhone:        req.MotherPhone,
			SecretPassword:     req.SecretPassword,
			AssignedActivities: []string{},
			Remarks:            req.Remarks,
			CreatedAt:          nowStamp(),
		}
		*students = append(*students, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student registered", zap.String("scope", scope.Key()), zap.String("id", created.ID))
	return &created, nil
}

// Update edits a student record.
func (s *StudentService) Update(actor models.Actor, scope models.Scope, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	return s.mutate(scope, id, func(st *models.Student) {
		applyIfSet(&st.Name, req.Name)
		applyIfSet(&st.RollNumber, req.RollNumber)
		applyIfSet(&st.Email, req.Email)
		applyIfSet(&st.Phone, req.Phone)
		applyIfSet(&st.FatherName, req.FatherName)
		applyIfSet(&st.FatherPhone, req.FatherPhone)
		applyIfSet(&st.MotherName, req.MotherName)
		applyIfSet(&st.MotherPhone, req.MotherPhone)
		applyIfSet(&st.SecretPassword, req.SecretPassword)
		applyIfSet(&st.Remarks, req.Remarks)
	})
}

// Delete removes a student from the roster. Attendance history and uploaded
// documents keyed by the id are left in place.
func (s *StudentService) Delete(actor models.Actor, scope models.Scope, id string) error {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return err
	}
	var removed *models.Student
	_, err := s.store.Students.Update(scope, func(students *[]models.Student) error {
		for i, st := range *students {
			if st.ID == id {
				copied := st
				removed = &copied
				*students = append((*students)[:i], (*students)[i+1:]...)
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	})
	if err != nil {
		return err
	}
	if removed != nil && removed.Photo != "" {
		if err := s.blobs.Delete(removed.Photo); err != nil {
			s.logger.Warn("failed to delete student photo", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}

// UploadPhoto stores a profile photo blob and points the record at it,
// dropping the previous blob if one existed.
func (s *StudentService) UploadPhoto(actor models.Actor, scope models.Scope, id, filename string, r io.Reader) (*models.Student, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		if selfErr := s.guard.RequireStudent(actor, scope, id); selfErr != nil {
			return nil, err
		}
	}
	stored, err := s.blobs.Save("student_photo", filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	var previous string
	student, err := s.mutate(scope, id, func(st *models.Student) {
		previous = st.Photo
		st.Photo = stored
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
	return student, nil
}

// AssignActivities replaces a student's activity assignments. Every id must
// reference an existing activity in the scope.
func (s *StudentService) AssignActivities(actor models.Actor, scope models.Scope, id string, activityIDs []string) (*models.Student, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	activities, err := s.store.Activities.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}
	known := map[string]bool{}
	for _, a := range activities {
		known[a.ID] = true
	}
	for _, aid := range activityIDs {
		if !known[aid] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown activity "+aid)
		}
	}
	if activityIDs == nil {
		activityIDs = []string{}
	}
	return s.mutate(scope, id, func(st *models.Student) {
		st.AssignedActivities = activityIDs
	})
}

// SelfGet returns the logged-in student's own record.
func (s *StudentService) SelfGet(actor models.Actor) (*models.Student, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	return s.find(actor.Scope, actor.ID)
}

// SelfUpdate lets a student edit their own contact numbers.
func (s *StudentService) SelfUpdate(actor models.Actor, req SelfUpdateRequest) (*models.Student, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	var updated *models.Student
	_, err := s.store.Students.Update(actor.Scope, func(students *[]models.Student) error {
		for i := range *students {
			if (*students)[i].ID != actor.ID {
				continue
			}
			st := &(*students)[i]
			if req.NewPassword != "" {
				if req.CurrentPassword != st.SecretPassword {
					return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
				}
				st.SecretPassword = req.NewPassword
			}
			applyIfSet(&st.Phone, req.Phone)
			applyIfSet(&st.FatherPhone, req.FatherPhone)
			applyIfSet(&st.MotherPhone, req.MotherPhone)
			copied := *st
			updated = &copied
			return nil
		}
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Teachers returns the credential-free teacher projection students may see.
func (s *StudentService) Teachers(actor models.Actor) ([]models.TeacherInfo, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	admins, err := s.store.Admins.Load(actor.Scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	infos := make([]models.TeacherInfo, 0, len(admins))
	for _, a := range admins {
		infos = append(infos, models.TeacherInfo{
			ID:       a.ID,
			Name:     a.Name,
			UserID:   a.UserID,
			Email:    a.Email,
			Phone:    a.Phone,
			Photo:    photoURL(s.blobs, a.Photo),
			Subjects: a.Subjects,
		})
	}
	return infos, nil
}

func (s *StudentService) find(scope models.Scope, id string) (*models.Student, error) {
	students, err := s.store.Students.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	for _, st := range students {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

func (s *StudentService) mutate(scope models.Scope, id string, fn func(*models.Student)) (*models.Student, error) {
	var updated *models.Student
	_, err := s.store.Students.Update(scope, func(students *[]models.Student) error {
		for i := range *students {
			if (*students)[i].ID == id {
				fn(&(*students)[i])
				copied := (*students)[i]
				updated = &copied
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyIfSet(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

func photoURL(blobs *storage.BlobStore, stored string) string {
	if stored == "" || blobs == nil {
		return ""
	}
	return blobs.URL(stored)
}
