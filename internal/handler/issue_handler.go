package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// IssueHandler exposes attendance disputes.
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler constructs IssueHandler.
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

// Raise godoc
// @Summary Raise an attendance dispute
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body service.RaiseIssueRequest true "Dispute payload"
// @Success 201 {object} response.Envelope
// @Router /me/issues [post]
func (h *IssueHandler) Raise(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.RaiseIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	issue, err := h.issues.Raise(actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}

// ListOwn godoc
// @Summary List the logged-in student's disputes
// @Tags Issues
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/issues [get]
func (h *IssueHandler) ListOwn(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	issues, err := h.issues.ListOwn(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues)
}

// List godoc
// @Summary List the section's disputes
// @Tags Issues
// @Produce json
// @Param subject query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	issues, err := h.issues.List(actor, scopeFrom(c), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues)
}

// Resolve godoc
// @Summary Update a dispute's status
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Param payload body service.ResolveIssueRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/issues/{id} [put]
func (h *IssueHandler) Resolve(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.ResolveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	issue, err := h.issues.Resolve(actor, scopeFrom(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issue)
}
