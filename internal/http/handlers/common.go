package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
)

var errMissingFile = errors.New("multipart field \"file\" is required")

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusBadRequest, "invalid_record_id", err)
	}
	return id, nil
}

// readFile reads the "file" part of a multipart request. A body or part past
// maxBytes fails as TooLarge.
func readFile(c *gin.Context, maxBytes int64) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, "", apierr.TooLarge(err)
		}
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", apierr.Validation("missing_file", errMissingFile)
		}
		return nil, "", apierr.New(http.StatusBadRequest, "invalid_multipart_form", err)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, "", apierr.TooLarge(fmt.Errorf("%s is %d bytes, limit %d", fh.Filename, fh.Size, maxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", apierr.New(http.StatusBadRequest, "invalid_multipart_form", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", apierr.Transfer(http.StatusBadRequest, "read_failed", err)
	}
	return data, fh.Filename, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apierr.TooLarge(err)
		}
		return apierr.New(http.StatusBadRequest, "invalid_request_body", err)
	}
	return nil
}
