package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
	"github.com/noah-isme/section-portal-api/pkg/storage"
)

// ChatHandler exposes chat groups and 1:1 threads. Message endpoints accept
// either a JSON body or a multipart form with file attachments.
type ChatHandler struct {
	chat  *service.ChatService
	blobs *storage.BlobStore
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(chat *service.ChatService, blobs *storage.BlobStore) *ChatHandler {
	return &ChatHandler{chat: chat, blobs: blobs}
}

// ListGroups godoc
// @Summary List visible chat groups
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups [get]
func (h *ChatHandler) ListGroups(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	groups, err := h.chat.ListGroups(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// RefreshSectionGroup godoc
// @Summary Rebuild the section-wide group from the roster
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups/auto [post]
func (h *ChatHandler) RefreshSectionGroup(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	group, err := h.chat.RefreshSectionGroup(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// CreateGroup godoc
// @Summary Create a chat group
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body service.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups [post]
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	group, err := h.chat.CreateGroup(actor, scopeFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// UpdateGroup godoc
// @Summary Edit a chat group
// @Tags Chat
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param payload body service.UpdateGroupRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups/{groupId} [put]
func (h *ChatHandler) UpdateGroup(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	group, err := h.chat.UpdateGroup(actor, scopeFrom(c), c.Param("groupId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// DeleteGroup godoc
// @Summary Delete a chat group
// @Tags Chat
// @Param groupId path string true "Group ID"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups/{groupId} [delete]
func (h *ChatHandler) DeleteGroup(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.chat.DeleteGroup(actor, scopeFrom(c), c.Param("groupId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadGroupPhoto godoc
// @Summary Upload a group avatar
// @Tags Chat
// @Accept multipart/form-data
// @Produce json
// @Param groupId path string true "Group ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups/{groupId}/photo [post]
func (h *ChatHandler) UploadGroupPhoto(c *gin.Context) {
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
	group, err := h.chat.UploadGroupPhoto(actor, scopeFrom(c), c.Param("groupId"), fh.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// SendMessage godoc
// @Summary Post into a chat group
// @Tags Chat
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups/{groupId}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	req, ok := h.bindMessage(c)
	if !ok {
		return
	}
	message, err := h.chat.SendMessage(actor, scopeFrom(c), c.Param("groupId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// ListMessages godoc
// @Summary Read a group's message log
// @Tags Chat
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/groups/{groupId}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	messages, err := h.chat.ListMessages(actor, scopeFrom(c), c.Param("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages)
}

// SendThreadMessage godoc
// @Summary Post into a 1:1 thread
// @Tags Chat
// @Accept json
// @Produce json
// @Param otherId path string true "Other participant"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/threads/{otherId}/messages [post]
func (h *ChatHandler) SendThreadMessage(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	req, ok := h.bindMessage(c)
	if !ok {
		return
	}
	message, err := h.chat.SendThreadMessage(actor, scopeFrom(c), c.Param("otherId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// ListThread godoc
// @Summary Read a 1:1 thread
// @Tags Chat
// @Produce json
// @Param otherId path string true "Other participant"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/chat/threads/{otherId}/messages [get]
func (h *ChatHandler) ListThread(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	messages, err := h.chat.ListThread(actor, scopeFrom(c), c.Param("otherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages)
}

// bindMessage accepts a JSON body or a multipart form whose "files" parts
// become stored attachments.
func (h *ChatHandler) bindMessage(c *gin.Context) (service.SendMessageRequest, bool) {
	var req service.SendMessageRequest
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
			return req, false
		}
		return req, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart form"))
		return req, false
	}
	req.Text = c.PostForm("text")
	for _, fh := range form.File["files"] {
		stored, err := saveUpload(h.blobs, "chat", fh)
		if err != nil {
			response.Error(c, err)
			return req, false
		}
		req.Attachments = append(req.Attachments, models.Attachment{
			Filename: fh.Filename,
			URL:      h.blobs.URL(stored),
		})
	}
	return req, true
}
