package senditineraryemail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmytrip/internal/common/aws"
	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/models"
	"planmytrip/internal/store"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeMailer struct {
	sent []aws.Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, e aws.Email) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, e)
	return "msg-1", nil
}

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, &store.Error{Op: "get user", Kind: store.ErrNotFound, Entity: "user", ID: id}
}

func createTestItineraryDoc() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Lisbon Weekend",
		"destination": "Lisbon",
		"duration":    "2 Days",
		"budget":      "Moderate",
		"travelType":  "Friends",
		"highlights":  []interface{}{"Alfama"},
		"days": []interface{}{
			map[string]interface{}{
				"day":   1,
				"title": "Arrival",
				"activities": []interface{}{
					map[string]interface{}{
						"time": "10:00 AM", "title": "Tram 28", "description": "Ride through the old town", "type": "sightseeing",
					},
				},
			},
		},
	}
}

func createTestHandler(t *testing.T, mailer *fakeMailer) *Handler {
	cfg := LoadConfig()
	cfg.ShareBaseURL = "https://planmytrip.app/"
	users := fakeUsers{"user-1": {ID: "user-1", Email: "ana@example.com", Name: "Ana"}}
	h := NewHandler(cfg, logger.NewTestLogger(t), mailer, users)
	h.now = func() time.Time { return time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC) }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_LooksUpAccountEmail(t *testing.T) {
	mailer := &fakeMailer{}
	h := createTestHandler(t, mailer)

	output, err := h.Execute(context.Background(), &Input{
		UserID:      "user-1",
		ItineraryID: "it-9",
		Itinerary:   createTestItineraryDoc(),
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", output.MessageID)
	assert.Equal(t, "ana@example.com", output.SentTo)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "trips@planmytrip.app", sent.From)
	assert.Equal(t, "Your trip to Lisbon: Lisbon Weekend", sent.Subject)
	assert.Contains(t, sent.Text, "Hi Ana,")
	assert.Contains(t, sent.Text, "Day 1: Arrival")
	assert.Contains(t, sent.Text, "Tram 28")
	assert.Contains(t, sent.Text, "https://planmytrip.app/itineraries/it-9")
}

func TestHandler_Execute_ExplicitEmail(t *testing.T) {
	mailer := &fakeMailer{}
	h := createTestHandler(t, mailer)

	output, err := h.Execute(context.Background(), &Input{
		UserID:    "unknown",
		Email:     " bob@example.com ",
		Itinerary: createTestItineraryDoc(),
	})

	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", output.SentTo)
	assert.Contains(t, mailer.sent[0].Text, "Hi,")
	assert.NotContains(t, mailer.sent[0].Text, "View it online")
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mailer    *fakeMailer
		input     *Input
		wantCode  apperrors.ErrorCode
		wantThrow bool
	}{
		{
			name:      "unknown user",
			mailer:    &fakeMailer{},
			input:     &Input{UserID: "ghost", Itinerary: createTestItineraryDoc()},
			wantCode:  apperrors.ErrCodeUserNotFound,
			wantThrow: true,
		},
		{
			name:      "bad address",
			mailer:    &fakeMailer{},
			input:     &Input{Email: "not-an-email", Itinerary: createTestItineraryDoc()},
			wantCode:  apperrors.ErrCodeInvalidInput,
			wantThrow: true,
		},
		{
			name:      "no recipient",
			mailer:    &fakeMailer{},
			input:     &Input{Itinerary: createTestItineraryDoc()},
			wantCode:  apperrors.ErrCodeInvalidInput,
			wantThrow: true,
		},
		{
			name:      "invalid itinerary",
			mailer:    &fakeMailer{},
			input:     &Input{UserID: "user-1", Itinerary: map[string]interface{}{"title": "x"}},
			wantCode:  apperrors.ErrCodeItineraryInvalid,
			wantThrow: true,
		},
		{
			name:      "ses failure is retried",
			mailer:    &fakeMailer{err: errors.New("throttled")},
			input:     &Input{UserID: "user-1", Itinerary: createTestItineraryDoc()},
			wantCode:  apperrors.ErrCodeNotificationSendFailed,
			wantThrow: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, tt.mailer)

			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)

			stdErr := apperrors.FromError(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantThrow, apperrors.Decide(stdErr, 3).Throw)
			assert.Empty(t, tt.mailer.sent)
		})
	}
}
