// internal/common/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/models"
)

// UserRepository is the part of the user store the service needs.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type SignupInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is returned by Signup and Login.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type Service struct {
	users    UserRepository
	tokens   *TokenManager
	denylist *Denylist
	log      logger.Logger
}

// NewService wires the account flows. denylist may be nil, in which case
// logout is a no-op on the server.
func NewService(users UserRepository, tokens *TokenManager, denylist *Denylist, log logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, denylist: denylist, log: log}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)

	if violations := validateSignup(in); len(violations) > 0 {
		return nil, &Error{Kind: ErrInvalidSignup, Violations: violations}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Email: in.Email, Name: in.Name, Username: in.Username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("User signed up", map[string]interface{}{"userId": u.ID})
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var conv apperrors.Converter
		if errors.As(err, &conv) && conv.StandardError().Code == apperrors.ErrCodeUserNotFound {
			return nil, &Error{Kind: ErrInvalidCredentials}
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, &Error{Kind: ErrInvalidCredentials}
	}
	return s.session(u)
}

// Logout revokes the token described by claims.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if s.denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.tokens.now())
	return s.denylist.Revoke(ctx, claims.ID, ttl)
}

// Authenticate validates token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check token denylist: %w", err)
		}
		if revoked {
			return nil, &Error{Kind: ErrInvalidToken, Err: errors.New("token revoked")}
		}
	}
	return claims, nil
}

func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	return s.users.GetByID(ctx, claims.UserID)
}

func (s *Service) session(u *models.User) (*Session, error) {
	token, _, err := s.tokens.Generate(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token}, nil
}

func validateSignup(in SignupInput) []apperrors.FieldViolation {
	var out []apperrors.FieldViolation
	if !validation.ValidateEmail(in.Email) {
		out = append(out, apperrors.FieldViolation{Field: "email", Message: "must be a valid email address", Code: validation.CodeInvalidValue})
	}
	if in.Name == "" {
		out = append(out, apperrors.FieldViolation{Field: "name", Message: "required field missing", Code: validation.CodeRequiredFieldMissing})
	}
	if in.Username == "" {
		out = append(out, apperrors.FieldViolation{Field: "username", Message: "required field missing", Code: validation.CodeRequiredFieldMissing})
	}
	if len(in.Password) < MinPasswordLength {
		out = append(out, apperrors.FieldViolation{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
			Code:    validation.CodeMinimumViolation,
		})
	}
	return out
}
