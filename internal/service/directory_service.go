package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
)

// DirectoryService manages the course/year/section tree. Listings are
// readable by both admin roles; structure changes are main-admin only.
type DirectoryService struct {
	store   *repository.Store
	guard   *Guard
	cache   *repository.DirectoryCache
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewDirectoryService constructs the directory service. cache and metrics
// may be nil when disabled.
func NewDirectoryService(store *repository.Store, guard *Guard, cache *repository.DirectoryCache, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{store: store, guard: guard, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// ListCourses returns every course name.
func (s *DirectoryService) ListCourses(ctx context.Context, actor models.Actor) ([]string, error) {
	if err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, repository.CoursesKey(), s.store.ListCourses)
}

// CreateCourse adds a course directory.
func (s *DirectoryService) CreateCourse(ctx context.Context, actor models.Actor, course string) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	if err := validateSegment(course); err != nil {
		return err
	}
	created, err := s.store.EnsureCourse(course)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	if !created {
		return appErrors.Clone(appErrors.ErrConflict, "course already exists")
	}
	s.invalidate(ctx)
	return nil
}

// DeleteCourse removes a course and all nested years and sections.
func (s *DirectoryService) DeleteCourse(ctx context.Context, actor models.Actor, course string) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	if err := validateSegment(course); err != nil {
		return err
	}
	if err := s.store.DeleteCourse(course); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidate(ctx)
	return nil
}

// ListYears returns every year under a course.
func (s *DirectoryService) ListYears(ctx context.Context, actor models.Actor, course string) ([]string, error) {
	if err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !s.store.CourseExists(course) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	key := repository.YearsKey(course)
	return s.cachedList(ctx, key, func() ([]string, error) { return s.store.ListYears(course) })
}

// CreateYear adds a year under an existing course.
func (s *DirectoryService) CreateYear(ctx context.Context, actor models.Actor, course, year string) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	if err := validateSegment(year); err != nil {
		return err
	}
	if !s.store.CourseExists(course) {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	created, err := s.store.EnsureYear(course, year)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create year")
	}
	if !created {
		return appErrors.Clone(appErrors.ErrConflict, "year already exists")
	}
	s.invalidate(ctx)
	return nil
}

// DeleteYear removes a year and all its sections.
func (s *DirectoryService) DeleteYear(ctx context.Context, actor models.Actor, course, year string) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	if err := validateSegment(year); err != nil {
		return err
	}
	if err := s.store.DeleteYear(course, year); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete year")
	}
	s.invalidate(ctx)
	return nil
}

// ListSections returns every section under a course/year.
func (s *DirectoryService) ListSections(ctx context.Context, actor models.Actor, course, year string) ([]string, error) {
	if err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !s.store.YearExists(course, year) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
	}
	key := repository.SectionsKey(course, year)
	return s.cachedList(ctx, key, func() ([]string, error) { return s.store.ListSections(course, year) })
}

// CreateSection materialises a new scope: the directory plus every empty
// collection document.
func (s *DirectoryService) CreateSection(ctx context.Context, actor models.Actor, scope models.Scope) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	if err := validateSegment(scope.Section); err != nil {
		return err
	}
	if !s.store.YearExists(scope.Course, scope.Year) {
		return appErrors.Clone(appErrors.ErrNotFound, "year not found")
	}
	created, err := s.store.EnsureScope(scope)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	if !created {
		return appErrors.Clone(appErrors.ErrConflict, "section already exists")
	}
	s.logger.Info("section created", zap.String("scope", scope.Key()))
	s.invalidate(ctx)
	return nil
}

// DeleteSection removes one scope and all of it data. Uploaded blobs
// referenced by the deleted collections stay on disk.
func (s *DirectoryService) DeleteSection(ctx context.Context, actor models.Actor, scope models.Scope) error {
	if err := s.guard.RequireMainAdmin(actor); err != nil {
		return err
	}
	if err := validateSegment(scope.Section); err != nil {
		return err
	}
	if err := s.store.DeleteScope(scope); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	s.logger.Info("section deleted", zap.String("scope", scope.Key()))
	s.invalidate(ctx)
	return nil
}

// RequireScope resolves path parameters into an existing scope.
func (s *DirectoryService) RequireScope(scope models.Scope) error {
	if scope.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "course, year and section are required")
	}
	if !s.store.ScopeExists(scope) {
		return appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return nil
}

func (s *DirectoryService) cachedList(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Listing(ctx, key); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}
	names, err := load()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list directory")
	}
	if s.cache != nil {
		if err := s.cache.StoreListing(ctx, key, names, s.ttl); err != nil {
			s.logger.Warn("failed to cache directory listing", zap.String("key", key), zap.Error(err))
		}
	}
	return names, nil
}

func (s *DirectoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate directory cache", zap.Error(err))
	}
}

// validateSegment rejects names that would escape or corrupt the directory
// tree.
func validateSegment(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
	}
	if trimmed == "." || trimmed == ".." || strings.ContainsAny(trimmed, `/\`) {
		return appErrors.Clone(appErrors.ErrValidation, "name contains invalid characters")
	}
	return nil
}
