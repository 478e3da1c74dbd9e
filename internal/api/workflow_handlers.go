// internal/api/workflow_handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planmytrip/internal/common/camunda"
	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/validation"
)

type planningRequest struct {
	TripRequest map[string]interface{} `json:"tripRequest"`
	SendEmail   bool                   `json:"sendEmail"`
}

// startPlanning handles POST /api/itinerary/workflow. The request is checked
// here as well so obvious mistakes never reach the engine.
func (s *Server) startPlanning(c *gin.Context) {
	claims := callerClaims(c)

	var body planningRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, apperrors.NewTripRequestInvalidError(bodyViolation(err)))
		return
	}

	if _, result := validation.ValidateTripRequest(body.TripRequest); !result.Valid {
		s.writeError(c, apperrors.NewTripRequestInvalidError(result.ToFieldViolations()))
		return
	}

	key, err := s.deps.Workflows.StartProcess(c.Request.Context(), camunda.PlanTripProcessID, map[string]interface{}{
		"userId":      claims.UserID,
		"tripRequest": body.TripRequest,
		"sendEmail":   body.SendEmail,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.log.Info("planning workflow started", map[string]interface{}{
		"processInstanceKey": key,
		"userId":             claims.UserID,
	})
	c.JSON(http.StatusAccepted, gin.H{"processInstanceKey": key})
}
