package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/constants"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/validation"
)

// readPhoto reads the multipart photo field. It writes the error response
// itself and returns false when the upload is unusable.
func (s *Server) readPhoto(c *gin.Context) (domain.PhotoUpload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBody)

	fh, err := c.FormFile(constants.PhotoFormField)
	if err != nil {
		badRequest(c, "Missing photo", err)
		return domain.PhotoUpload{}, false
	}
	if fh.Size > constants.MaxPhotoSize {
		badRequest(c, "Invalid photo", validation.ErrPhotoTooLarge)
		return domain.PhotoUpload{}, false
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Invalid photo", err)
		return domain.PhotoUpload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxPhotoSize+1))
	if err != nil {
		badRequest(c, "Invalid photo", err)
		return domain.PhotoUpload{}, false
	}

	return domain.PhotoUpload{Data: data, Filename: fh.Filename}, true
}
