package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Paged wraps a list response with its total for offset pagination.
type Paged struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Limit int   `json:"limit"`
	Skip  int   `json:"skip"`
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

// RespondServiceError maps a service error to its HTTP status. Anything that
// is not a tagged apierr comes back as a 500.
func RespondServiceError(c *gin.Context, err error) {
	ae := apierr.From(err)
	c.JSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: ae.Error(),
			Code:    ae.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// pathUUID parses a :param path segment as a UUID, responding 400 itself on
// failure. The bool reports whether the handler should continue.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}
