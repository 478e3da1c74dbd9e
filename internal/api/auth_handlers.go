// internal/api/auth_handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planmytrip/internal/common/auth"
	apperrors "planmytrip/internal/common/errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signup(c *gin.Context) {
	var in auth.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, apperrors.NewInvalidInputError(bodyViolation(err)))
		return
	}

	session, err := s.deps.Accounts.Signup(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, apperrors.NewInvalidInputError(bodyViolation(err)))
		return
	}

	session, err := s.deps.Accounts.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.deps.Accounts.Logout(c.Request.Context(), callerClaims(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	u, err := s.deps.Accounts.CurrentUser(c.Request.Context(), callerClaims(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
