package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// AuthHandler exposes the login endpoints and the identity probe.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AdminLogin godoc
// @Summary Main admin login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.AdminLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req service.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.auth.AdminLogin(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// TeacherLogin godoc
// @Summary Secondary admin login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.TeacherLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/teacher/login [post]
func (h *AuthHandler) TeacherLogin(c *gin.Context) {
	var req service.TeacherLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.auth.TeacherLogin(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// StudentLogin godoc
// @Summary Student login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.StudentLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/student/login [post]
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req service.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.auth.StudentLogin(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Whoami godoc
// @Summary Describe the authenticated identity
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/whoami [get]
func (h *AuthHandler) Whoami(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	payload := gin.H{
		"role":   actor.Role,
		"userId": actor.ID,
		"name":   actor.Name,
	}
	if !actor.Scope.IsZero() {
		payload["scope"] = actor.Scope
	}
	if len(actor.Subjects) > 0 {
		payload["subjects"] = actor.Subjects
	}
	response.JSON(c, http.StatusOK, payload)
}
