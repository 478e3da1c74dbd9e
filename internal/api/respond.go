// internal/api/respond.go
package api

import (
	"github.com/gin-gonic/gin"

	apperrors "planmytrip/internal/common/errors"
)

type errorResponse struct {
	Error    string                     `json:"error"`
	Category string                     `json:"category"`
	Message  string                     `json:"message"`
	Details  []apperrors.FieldViolation `json:"details,omitempty"`
}

// writeError maps err onto its status and the common failure body.
func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := apperrors.FromError(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"path":   c.FullPath(),
		"code":   stdErr.Code,
		"status": status,
	}
	if status >= 500 {
		fields["error"] = err.Error()
		s.log.Error("Request failed", fields)
	} else {
		s.log.Debug("Request rejected", fields)
	}

	message := stdErr.Message
	if stdErr.Code == apperrors.ErrCodeInternalError {
		message = "internal error"
	}

	c.AbortWithStatusJSON(status, errorResponse{
		Error:    string(stdErr.Code),
		Category: apperrors.GetErrorCategory(stdErr.Code),
		Message:  message,
		Details:  stdErr.Violations,
	})
}
