package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// NoteHandler exposes subject note uploads.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler constructs NoteHandler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// Upload godoc
// @Summary Upload course material under a subject
// @Tags Notes
// @Accept multipart/form-data
// @Produce json
// @Param subject formData string true "Subject"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param file formData file true "Note file"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/notes [post]
func (h *NoteHandler) Upload(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "note file is required"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck
	note, err := h.notes.Upload(actor, scopeFrom(c),
		c.PostForm("subject"), c.PostForm("title"), c.PostForm("description"),
		fh.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// List godoc
// @Summary List the section's notes grouped by subject
// @Tags Notes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	notes, err := h.notes.List(actor, scopeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes)
}

// ListOwn godoc
// @Summary List notes visible to the logged-in student
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/notes [get]
func (h *NoteHandler) ListOwn(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	notes, err := h.notes.ListForStudent(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes)
}

// Delete godoc
// @Summary Delete a note
// @Tags Notes
// @Param subject path string true "Subject"
// @Param id path string true "Note ID"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section}/notes/{subject}/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.notes.Delete(actor, scopeFrom(c), c.Param("subject"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
