package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// ScrutinyHandler exposes document scrutiny requests.
type ScrutinyHandler struct {
	scrutiny *service.ScrutinyService
}

// NewScrutinyHandler constructs ScrutinyHandler.
func NewScrutinyHandler(scrutiny *service.ScrutinyService) *ScrutinyHandler {
	return &ScrutinyHandler{scrutiny: scrutiny}
}

// Submit godoc
// @Summary Submit a document for scrutiny
// @Tags Scrutiny
// @Accept multipart/form-data
// @Produce json
// @Param description formData string true "Description"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Router /me/scrutiny [post]
func (h *ScrutinyHandler) Submit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "document file is required"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck
	request, err := h.scrutiny.Submit(actor, c.PostForm("description"), fh.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListOwn godoc
// @Summary List the logged-in student's scrutiny requests
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/scrutiny [get]
func (h *ScrutinyHandler) ListOwn(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	requests, err := h.scrutiny.ListOwn(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// DeleteOwn godoc
// @Summary Withdraw one of the logged-in student's scrutiny requests
// @Tags Me
// @Param id path string true "Request ID"
// @Success 204
// @Router /me/scrutiny/{id} [delete]
func (h *ScrutinyHandler) DeleteOwn(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.scrutiny.DeleteOwn(actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List the section's scrutiny requests
// @Tags Scrutiny
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/scrutiny [get]
func (h *ScrutinyHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	requests, err := h.scrutiny.List(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// Remark godoc
// @Summary Record a verdict on a scrutiny request
// @Tags Scrutiny
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/scrutiny/{id} [put]
func (h *ScrutinyHandler) Remark(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
		Remark string `json:"remark"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	request, err := h.scrutiny.Remark(actor, scopeFrom(c), c.Param("id"), req.Status, req.Remark)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}
