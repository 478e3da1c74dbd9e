// internal/api/saved_handlers.go
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/models"
	"planmytrip/internal/render"
)

type saveRequest struct {
	Itinerary        interface{} `json:"itinerary"`
	StartingLocation string      `json:"startingLocation"`
}

func (s *Server) saveItinerary(c *gin.Context) {
	claims := callerClaims(c)

	var body saveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, apperrors.NewItineraryInvalidError(bodyViolation(err)))
		return
	}

	it, result := validation.ValidateItinerary(body.Itinerary)
	if !result.Valid {
		violations := result.ToFieldViolations()
		for i, v := range violations {
			if v.Field == "(root)" {
				violations[i].Field = "itinerary"
			} else {
				violations[i].Field = "itinerary." + v.Field
			}
		}
		s.writeError(c, apperrors.NewItineraryInvalidError(violations))
		return
	}

	saved, err := s.deps.Itineraries.Create(c.Request.Context(), claims.UserID, *it, strings.TrimSpace(body.StartingLocation))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if s.deps.Search != nil {
		s.deps.Search.IndexBestEffort(c.Request.Context(), *saved)
	}

	c.JSON(http.StatusCreated, gin.H{"id": saved.ID})
}

func (s *Server) listItineraries(c *gin.Context) {
	s.writeUserList(c, callerClaims(c).UserID)
}

// listUserItineraries serves the legacy /api/itinerary/user/:userId path.
func (s *Server) listUserItineraries(c *gin.Context) {
	claims := callerClaims(c)
	if c.Param("userId") != claims.UserID {
		s.writeError(c, apperrors.NewForbiddenError("itineraries belong to another user"))
		return
	}
	s.writeUserList(c, claims.UserID)
}

func (s *Server) writeUserList(c *gin.Context, userID string) {
	list, err := s.deps.Itineraries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if list == nil {
		list = []models.SavedItinerary{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) searchItineraries(c *gin.Context) {
	results := []models.ItinerarySummary{}
	if s.deps.Search != nil {
		found, err := s.deps.Search.Search(c.Request.Context(), callerClaims(c).UserID, c.Query("q"))
		if err != nil {
			s.writeError(c, apperrors.NewSearchQueryFailedError(err))
			return
		}
		if found != nil {
			results = found
		}
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) getItinerary(c *gin.Context) {
	saved, err := s.owned(c.Request.Context(), callerClaims(c).UserID, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) exportSavedItinerary(c *gin.Context) {
	saved, err := s.owned(c.Request.Context(), callerClaims(c).UserID, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	var opts []render.ExportOption
	if link := s.shareLink(saved.ID); link != "" {
		opts = append(opts, render.WithShareURL(link))
	}
	s.writePDF(c, saved.Itinerary, opts...)
}

func (s *Server) deleteItinerary(c *gin.Context) {
	id := c.Param("id")
	if err := s.deps.Itineraries.Delete(c.Request.Context(), callerClaims(c).UserID, id); err != nil {
		s.writeError(c, err)
		return
	}
	if s.deps.Search != nil {
		if err := s.deps.Search.Delete(c.Request.Context(), id); err != nil {
			s.log.Warn("Failed to remove itinerary from search index", map[string]interface{}{
				"itineraryId": id,
				"error":       err,
			})
		}
	}
	c.Status(http.StatusNoContent)
}

// owned loads id and hides itineraries of other users behind not found.
func (s *Server) owned(ctx context.Context, userID, id string) (*models.SavedItinerary, error) {
	saved, err := s.deps.Itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved.UserID != userID {
		return nil, apperrors.NewItineraryNotFoundError(id)
	}
	return saved, nil
}
