package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes err with the status and kind it carries. Errors
// without one are reported as 500, and an oversized body as 413.
func RespondAPIError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		err = apierr.TooLarge(err)
	}
	ae, ok := apierr.As(err)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: ae.Error(),
			Code:    ae.Code,
			Kind:    string(ae.Kind),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
