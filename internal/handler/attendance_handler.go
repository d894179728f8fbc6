package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// AttendanceHandler exposes the attendance ledger.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Ledger godoc
// @Summary Get the section's attendance ledger
// @Tags Attendance
// @Produce json
// @Param detailed query string false "Return counted records instead of the flat date lists"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/attendance [get]
func (h *AttendanceHandler) Ledger(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	detailed := c.Query("detailed")
	if detailed == "1" || detailed == "true" {
		ledger, err := h.attendance.Ledger(actor, scopeFrom(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, ledger)
		return
	}
	expanded, err := h.attendance.LegacyLedger(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expanded)
}

// OwnSubjects godoc
// @Summary List the subjects of the logged-in student's section
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/subjects [get]
func (h *AttendanceHandler) OwnSubjects(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	subjects, err := h.attendance.Subjects(actor, actor.Scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects)
}

// Subjects godoc
// @Summary List registered subjects
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/subjects [get]
func (h *AttendanceHandler) Subjects(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	subjects, err := h.attendance.Subjects(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects)
}

// AddSubject godoc
// @Summary Register a subject
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body nameRequest true "Subject name"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/subjects [post]
func (h *AttendanceHandler) AddSubject(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.attendance.AddSubject(actor, scopeFrom(c), req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"name": req.Name})
}

// DeleteSubject godoc
// @Summary Drop a subject and its records
// @Tags Attendance
// @Param subject path string true "Subject"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section}/subjects/{subject} [delete]
func (h *AttendanceHandler) DeleteSubject(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.attendance.DeleteSubject(actor, scopeFrom(c), c.Param("subject")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Mark godoc
// @Summary Apply attendance record writes under one subject
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Record writes"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	ledger, err := h.attendance.Mark(actor, scopeFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger)
}

// Own godoc
// @Summary Get the logged-in student's attendance per subject
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/attendance [get]
func (h *AttendanceHandler) Own(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	attendance, err := h.attendance.StudentAttendance(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance)
}
