// internal/api/itinerary_handlers.go
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/models"
	"planmytrip/internal/render"
)

func bodyViolation(err error) []apperrors.FieldViolation {
	return []apperrors.FieldViolation{{
		Field:   "(root)",
		Message: fmt.Sprintf("request body must be a JSON object: %v", err),
		Code:    validation.CodeInvalidType,
	}}
}

// generateItinerary handles POST /api/itinerary.
func (s *Server) generateItinerary(c *gin.Context) {
	var doc map[string]interface{}
	if err := c.ShouldBindJSON(&doc); err != nil {
		s.writeError(c, apperrors.NewTripRequestInvalidError(bodyViolation(err)))
		return
	}

	req, result := validation.ValidateTripRequest(doc)
	if !result.Valid {
		s.writeError(c, apperrors.NewTripRequestInvalidError(result.ToFieldViolations()))
		return
	}

	it, err := s.deps.Generator.Generate(c.Request.Context(), *req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// exportItinerary handles POST /api/itinerary/export.
func (s *Server) exportItinerary(c *gin.Context) {
	var doc interface{}
	if err := c.ShouldBindJSON(&doc); err != nil {
		s.writeError(c, apperrors.NewItineraryInvalidError(bodyViolation(err)))
		return
	}

	it, result := validation.ValidateItinerary(doc)
	if !result.Valid {
		s.writeError(c, apperrors.NewItineraryInvalidError(result.ToFieldViolations()))
		return
	}
	s.writePDF(c, *it)
}

func (s *Server) writePDF(c *gin.Context, it models.Itinerary, opts ...render.ExportOption) {
	doc, err := render.Export(it, opts...)
	if err != nil {
		s.writeError(c, apperrors.NewExportFailedError(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, render.Filename(it)))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) shareLink(id string) string {
	if s.shareURL == "" {
		return ""
	}
	return strings.TrimRight(s.shareURL, "/") + "/itineraries/" + id
}
