// internal/store/itineraries.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"planmytrip/internal/common/logger"
	"planmytrip/internal/models"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

const itineraryColumns = `id, user_id, title, destination, starting_location, duration, budget, travel_type, itinerary_data, created_at`

// ItineraryStore persists saved itineraries in Postgres. The itinerary is
// stored as JSON text next to denormalized summary columns used for listing.
type ItineraryStore struct {
	db    *sql.DB
	cache *ItineraryCache
	log   logger.Logger
	now   func() time.Time
}

// NewItineraryStore returns a store; cache may be nil.
func NewItineraryStore(db *sql.DB, cache *ItineraryCache, log logger.Logger) *ItineraryStore {
	return &ItineraryStore{
		db:    db,
		cache: cache,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Save stores it for userID and returns the new id.
func (s *ItineraryStore) Save(ctx context.Context, userID string, it models.Itinerary, startingLocation string) (string, error) {
	saved, err := s.Create(ctx, userID, it, startingLocation)
	if err != nil {
		return "", err
	}
	return saved.ID, nil
}

// Create is Save returning the full stored record.
func (s *ItineraryStore) Create(ctx context.Context, userID string, it models.Itinerary, startingLocation string) (*models.SavedItinerary, error) {
	data, err := it.Encode()
	if err != nil {
		return nil, &Error{Op: opInsert, Kind: ErrQuery, Err: fmt.Errorf("encode itinerary: %w", err)}
	}

	saved := &models.SavedItinerary{
		ID:               uuid.New().String(),
		UserID:           userID,
		Title:            it.Title,
		Destination:      it.Destination,
		StartingLocation: startingLocation,
		Duration:         it.Duration,
		Budget:           it.Budget,
		TravelType:       it.TravelType,
		Itinerary:        it,
		CreatedAt:        s.now(),
	}

	query := `INSERT INTO saved_itineraries (` + itineraryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = s.db.ExecContext(ctx, query,
		saved.ID, saved.UserID, saved.Title, saved.Destination, saved.StartingLocation,
		saved.Duration, saved.Budget, saved.TravelType, data, saved.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
			return nil, notFound(opInsert, entityUser, userID)
		}
		return nil, &Error{Op: opInsert, Kind: ErrQuery, Err: err}
	}

	s.log.Info("Itinerary saved", map[string]interface{}{
		"itineraryId": saved.ID,
		"userId":      userID,
		"destination": saved.Destination,
	})
	return saved, nil
}

// ListByUser returns the user's itineraries, newest first.
func (s *ItineraryStore) ListByUser(ctx context.Context, userID string) ([]models.SavedItinerary, error) {
	query := `SELECT ` + itineraryColumns + `
		FROM saved_itineraries
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, queryFailed("list itineraries", err)
	}
	defer rows.Close()

	out := []models.SavedItinerary{}
	for rows.Next() {
		saved, err := scanItinerary(rows)
		if err != nil {
			return nil, queryFailed("list itineraries", err)
		}
		out = append(out, *saved)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed("list itineraries", err)
	}
	return out, nil
}

// GetByID reads through the cache. Cache failures are logged and never
// fail the read.
func (s *ItineraryStore) GetByID(ctx context.Context, id string) (*models.SavedItinerary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("Itinerary cache read failed", map[string]interface{}{"itineraryId": id, "error": err})
		} else if cached != nil {
			return cached, nil
		}
	}

	query := `SELECT ` + itineraryColumns + ` FROM saved_itineraries WHERE id = $1`
	saved, err := scanItinerary(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get itinerary", entityItinerary, id)
	}
	if err != nil {
		return nil, queryFailed("get itinerary", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, saved); err != nil {
			s.log.Warn("Itinerary cache write failed", map[string]interface{}{"itineraryId": id, "error": err})
		}
	}
	return saved, nil
}

// Delete removes an itinerary owned by userID. Itineraries of other users
// are reported as not found.
func (s *ItineraryStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_itineraries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return queryFailed("delete itinerary", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return queryFailed("delete itinerary", err)
	}
	if n == 0 {
		return notFound("delete itinerary", entityItinerary, id)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			s.log.Warn("Itinerary cache eviction failed", map[string]interface{}{"itineraryId": id, "error": err})
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItinerary(row rowScanner) (*models.SavedItinerary, error) {
	var (
		saved models.SavedItinerary
		data  string
	)
	err := row.Scan(
		&saved.ID, &saved.UserID, &saved.Title, &saved.Destination, &saved.StartingLocation,
		&saved.Duration, &saved.Budget, &saved.TravelType, &data, &saved.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	saved.Itinerary, err = models.DecodeItinerary(data)
	if err != nil {
		return nil, fmt.Errorf("decode itinerary %s: %w", saved.ID, err)
	}
	return &saved, nil
}
