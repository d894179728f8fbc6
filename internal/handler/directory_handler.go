package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

// DirectoryHandler exposes the course/year/section tree.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs DirectoryHandler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// ListCourses godoc
// @Summary List courses
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *DirectoryHandler) ListCourses(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	courses, err := h.directory.ListCourses(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body nameRequest true "Course name"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *DirectoryHandler) CreateCourse(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.directory.CreateCourse(c.Request.Context(), actor, req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"name": req.Name})
}

// DeleteCourse godoc
// @Summary Delete course
// @Tags Directory
// @Param course path string true "Course"
// @Success 204
// @Router /courses/{course} [delete]
func (h *DirectoryHandler) DeleteCourse(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.directory.DeleteCourse(c.Request.Context(), actor, c.Param("course")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListYears godoc
// @Summary List years of a course
// @Tags Directory
// @Produce json
// @Param course path string true "Course"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years [get]
func (h *DirectoryHandler) ListYears(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	years, err := h.directory.ListYears(c.Request.Context(), actor, c.Param("course"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years)
}

// CreateYear godoc
// @Summary Create a year under a course
// @Tags Directory
// @Accept json
// @Produce json
// @Param course path string true "Course"
// @Param payload body nameRequest true "Year name"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years [post]
func (h *DirectoryHandler) CreateYear(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.directory.CreateYear(c.Request.Context(), actor, c.Param("course"), req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"name": req.Name})
}

// DeleteYear godoc
// @Summary Delete a year
// @Tags Directory
// @Param course path string true "Course"
// @Param year path string true "Year"
// @Success 204
// @Router /courses/{course}/years/{year} [delete]
func (h *DirectoryHandler) DeleteYear(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.directory.DeleteYear(c.Request.Context(), actor, c.Param("course"), c.Param("year")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSections godoc
// @Summary List sections of a year
// @Tags Directory
// @Produce json
// @Param course path string true "Course"
// @Param year path string true "Year"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections [get]
func (h *DirectoryHandler) ListSections(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	sections, err := h.directory.ListSections(c.Request.Context(), actor, c.Param("course"), c.Param("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections)
}

// CreateSection godoc
// @Summary Create a section
// @Tags Directory
// @Accept json
// @Produce json
// @Param course path string true "Course"
// @Param year path string true "Year"
// @Param payload body nameRequest true "Section name"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections [post]
func (h *DirectoryHandler) CreateSection(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	scope := scopeFrom(c)
	scope.Section = req.Name
	if err := h.directory.CreateSection(c.Request.Context(), actor, scope); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"name": req.Name})
}

// DeleteSection godoc
// @Summary Delete a section
// @Tags Directory
// @Param course path string true "Course"
// @Param year path string true "Year"
// @Param section path string true "Section"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section} [delete]
func (h *DirectoryHandler) DeleteSection(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.directory.DeleteSection(c.Request.Context(), actor, scopeFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
