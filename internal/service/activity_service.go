package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
)

// CreateActivityRequest holds payload for creating an activity.
type CreateActivityRequest struct {
	Name    string `json:"name" validate:"required"`
	Details string `json:"details"`
}

// ActivityService manages each scope's extracurricular activities.
type ActivityService struct {
	store     *repository.Store
	guard     *Guard
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(store *repository.Store, guard *Guard, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{store: store, guard: guard, validator: validate, logger: logger}
}

// List returns every activity in the scope.
func (s *ActivityService) List(actor models.Actor, scope models.Scope) ([]models.Activity, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	activities, err := s.store.Activities.Load(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}
	return activities, nil
}

// Create adds an activity.
func (s *ActivityService) Create(actor models.Actor, scope models.Scope, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	created := models.Activity{
		ID:        shortID("activity"),
		Name:      req.Name,
		Details:   req.Details,
		CreatedAt: nowStamp(),
	}
	_, err := s.store.Activities.Update(scope, func(activities *[]models.Activity) error {
		*activities = append(*activities, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete removes an activity and unassigns it from every student.
func (s *ActivityService) Delete(actor models.Actor, scope models.Scope, id string) error {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return err
	}
	_, err := s.store.Activities.Update(scope, func(activities *[]models.Activity) error {
		for i, a := range *activities {
			if a.ID == id {
				*activities = append((*activities)[:i], (*activities)[i+1:]...)
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	})
	if err != nil {
		return err
	}
	_, err = s.store.Students.Update(scope, func(students *[]models.Student) error {
		for i := range *students {
			kept := (*students)[i].AssignedActivities[:0]
			for _, aid := range (*students)[i].AssignedActivities {
				if aid != id {
					kept = append(kept, aid)
				}
			}
			(*students)[i].AssignedActivities = kept
		}
		return nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign activity")
	}
	return nil
}

// StudentActivities projects the scope's activities onto the logged-in
// student, marking each one assigned or not.
func (s *ActivityService) StudentActivities(actor models.Actor) ([]models.StudentActivity, error) {
	if err := s.guard.RequireSelfScope(actor); err != nil {
		return nil, err
	}
	activities, err := s.store.Activities.Load(actor.Scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}
	students, err := s.store.Students.Load(actor.Scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	assigned := map[string]bool{}
	for _, st := range students {
		if st.ID == actor.ID {
			for _, aid := range st.AssignedActivities {
				assigned[aid] = true
			}
			break
		}
	}
	out := make([]models.StudentActivity, 0, len(activities))
	for _, a := range activities {
		status := "available"
		if assigned[a.ID] {
			status = "assigned"
		}
		out = append(out, models.StudentActivity{Activity: a, Status: status})
	}
	return out, nil
}
