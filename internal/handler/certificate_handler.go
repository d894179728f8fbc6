package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// CertificateHandler exposes per-student certificates.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Upload godoc
// @Summary Attach a certificate to a student
// @Tags Certificates
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param name formData string true "Certificate name"
// @Param file formData file true "Certificate file"
// @Success 201 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id}/certificates [post]
func (h *CertificateHandler) Upload(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "certificate file is required"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck
	cert, err := h.certificates.Upload(actor, scopeFrom(c), c.Param("id"), c.PostForm("name"), fh.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cert)
}

// List godoc
// @Summary List one student's certificates
// @Tags Certificates
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id}/certificates [get]
func (h *CertificateHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	certs, err := h.certificates.ListForStudent(actor, scopeFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs)
}

// ListOwn godoc
// @Summary List the logged-in student's certificates
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/certificates [get]
func (h *CertificateHandler) ListOwn(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	certs, err := h.certificates.ListForStudent(actor, actor.Scope, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs)
}

// Delete godoc
// @Summary Delete a certificate
// @Tags Certificates
// @Param id path string true "Student ID"
// @Param certId path string true "Certificate ID"
// @Success 204
// @Router /courses/{course}/years/{year}/sections/{section}/students/{id}/certificates/{certId} [delete]
func (h *CertificateHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.certificates.Delete(actor, scopeFrom(c), c.Param("id"), c.Param("certId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
