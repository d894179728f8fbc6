package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// StudentHandler exposes roster management and student self-service.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List the section roster
// @Tags Students
// @Produce json
// @Param course path string true "Course"
// @Param year path string true "Year"
// @Param section path string true "Section"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	students, err := h.students.List(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Get godoc
// @Summary Get one student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	student, err := h.students.Get(actor, scopeFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	student, err := h.students.Create(actor, scopeFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Edit a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	student, err := h.students.Update(actor, scopeFrom(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Remove a student from the roster
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.students.Delete(actor, scopeFrom(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPhoto godoc
// @Summary Upload a student photo
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id}/photo [post]
func (h *StudentHandler) UploadPhoto(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo file is required"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck
	student, err := h.students.UploadPhoto(actor, scopeFrom(c), c.Param("id"), fh.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// AssignActivities godoc
// @Summary Replace a student's activity assignments
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id}/activities [put]
func (h *StudentHandler) AssignActivities(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req struct {
		ActivityIDs []string `json:"activityIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	student, err := h.students.AssignActivities(actor, scopeFrom(c), c.Param("id"), req.ActivityIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// SelfGet godoc
// @Summary Get the logged-in student's record
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/profile [get]
func (h *StudentHandler) SelfGet(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	student, err := h.students.SelfGet(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// SelfUpdate godoc
// @Summary Update the logged-in student's contact numbers
// @Tags Me
// @Accept json
// @Produce json
// @Param payload body service.SelfUpdateRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /me/profile [put]
func (h *StudentHandler) SelfUpdate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.SelfUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	student, err := h.students.SelfUpdate(actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Teachers godoc
// @Summary List the logged-in student's teachers
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/teachers [get]
func (h *StudentHandler) Teachers(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	teachers, err := h.students.Teachers(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}
