package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// ActivityHandler exposes extracurricular activities.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// List godoc
// @Summary List the section's activities
// @Tags Activities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	activities, err := h.activities.List(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities)
}

// Create godoc
// @Summary Create an activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body service.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	activity, err := h.activities.Create(actor, scopeFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Delete godoc
// @Summary Delete an activity
// @Tags Activities
// @Param id path string true "Activity ID"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section}/activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.activities.Delete(actor, scopeFrom(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Own godoc
// @Summary List activities projected onto the logged-in student
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/activities [get]
func (h *ActivityHandler) Own(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	activities, err := h.activities.StudentActivities(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities)
}
