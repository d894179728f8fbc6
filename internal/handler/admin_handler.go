package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// AdminHandler exposes secondary admin management.
type AdminHandler struct {
	admins *service.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// List godoc
// @Summary List the section's secondary admins
// @Tags Admins
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	admins, err := h.admins.List(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins)
}

// Create godoc
// @Summary Register a secondary admin
// @Tags Admins
// @Accept json
// @Produce json
// @Param payload body service.CreateAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	admin, err := h.admins.Create(actor, scopeFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// Update godoc
// @Summary Edit a secondary admin
// @Tags Admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body service.UpdateAdminRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	admin, err := h.admins.Update(actor, scopeFrom(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin)
}

// Delete godoc
// @Summary Remove a secondary admin
// @Tags Admins
// @Param id path string true "Admin ID"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section}/admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.admins.Delete(actor, scopeFrom(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPhoto godoc
// @Summary Upload an admin photo
// @Tags Admins
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Admin ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/admins/{id}/photo [post]
func (h *AdminHandler) UploadPhoto(c *gin.Context) {
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
	admin, err := h.admins.UploadPhoto(actor, scopeFrom(c), c.Param("id"), fh.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin)
}
