package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/middleware"
	"github.com/noah-isme/section-portal-api/internal/models"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/response"
	"github.com/noah-isme/section-portal-api/pkg/storage"
)

// actorFrom pulls the authenticated actor out of the request context,
// writing the error response itself when the request is anonymous.
func actorFrom(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return actor, ok
}

// scopeFrom reads the course/year/section path parameters.
func scopeFrom(c *gin.Context) models.Scope {
	return models.NewScope(c.Param("course"), c.Param("year"), c.Param("section"))
}

// saveUpload streams one multipart file into the blob store.
func saveUpload(blobs *storage.BlobStore, prefix string, fh *multipart.FileHeader) (stored string, err error) {
	file, err := fh.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	defer file.Close() //nolint:errcheck
	return blobs.Save(prefix, fh.Filename, file)
}
