// internal/store/users.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"planmytrip/internal/models"
)

const userColumns = `id, email, name, username, password_hash, created_at`

type UserStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts u, assigning ID and CreatedAt. u.PasswordHash must
// already be set.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		u.Email, u.Username,
	).Scan(&exists)
	if err != nil {
		return queryFailed("check user", err)
	}
	if exists {
		return &Error{Op: opInsert, Kind: ErrDuplicateUser, Entity: entityUser, ID: u.Email}
	}

	u.ID = uuid.New().String()
	u.CreatedAt = s.now()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.Username, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		// lost a race with a concurrent signup
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return &Error{Op: opInsert, Kind: ErrDuplicateUser, Entity: entityUser, ID: u.Email}
		}
		return &Error{Op: opInsert, Kind: ErrQuery, Err: err}
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getOne(ctx, "get user", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStore) getOne(ctx context.Context, op, query, arg string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(op, entityUser, arg)
	}
	if err != nil {
		return nil, queryFailed(op, err)
	}
	return &u, nil
}
