package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmytrip/internal/common/auth"
	"planmytrip/internal/common/config"
	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/generation"
	"planmytrip/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==========================
// Fakes
// ==========================

type fakeGenerator struct {
	calls int
	it    *models.Itinerary
	err   error
	last  models.TripRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req models.TripRequest) (*models.Itinerary, error) {
	f.calls++
	f.last = req
	return f.it, f.err
}

type fakeAccounts struct {
	signupErr error
	revoked   []string
}

var testClaims = map[string]*auth.Claims{
	"token-ana": {UserID: "user-ana", Email: "ana@example.com", Username: "ana"},
	"token-bob": {UserID: "user-bob", Email: "bob@example.com", Username: "bob"},
}

func (f *fakeAccounts) Signup(_ context.Context, in auth.SignupInput) (*auth.Session, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &auth.Session{User: &models.User{ID: "user-new", Email: in.Email, Username: in.Username}, Token: "token-new"}, nil
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (*auth.Session, error) {
	if email != "ana@example.com" || password != "secret123" {
		return nil, &auth.Error{Kind: auth.ErrInvalidCredentials}
	}
	return &auth.Session{User: &models.User{ID: "user-ana", Email: email}, Token: "token-ana"}, nil
}

func (f *fakeAccounts) Logout(_ context.Context, claims *auth.Claims) error {
	f.revoked = append(f.revoked, claims.UserID)
	return nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	claims, ok := testClaims[token]
	if !ok {
		return nil, &auth.Error{Kind: auth.ErrInvalidToken}
	}
	return claims, nil
}

func (f *fakeAccounts) CurrentUser(_ context.Context, claims *auth.Claims) (*models.User, error) {
	return &models.User{ID: claims.UserID, Email: claims.Email, Username: claims.Username}, nil
}

type memItineraries struct {
	mu   sync.Mutex
	rows map[string]models.SavedItinerary
	seq  int
}

func newMemItineraries() *memItineraries {
	return &memItineraries{rows: map[string]models.SavedItinerary{}}
}

func (m *memItineraries) Create(_ context.Context, userID string, it models.Itinerary, start string) (*models.SavedItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	saved := models.SavedItinerary{
		ID:               fmt.Sprintf("it-%d", m.seq),
		UserID:           userID,
		Title:            it.Title,
		Destination:      it.Destination,
		StartingLocation: start,
		Itinerary:        it,
		CreatedAt:        time.Date(2025, 1, 1, 0, m.seq, 0, 0, time.UTC),
	}
	m.rows[saved.ID] = saved
	return &saved, nil
}

func (m *memItineraries) ListByUser(_ context.Context, userID string) ([]models.SavedItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SavedItinerary
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memItineraries) GetByID(_ context.Context, id string) (*models.SavedItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, apperrors.NewItineraryNotFoundError(id)
	}
	return &r, nil
}

func (m *memItineraries) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.UserID != userID {
		return apperrors.NewItineraryNotFoundError(id)
	}
	delete(m.rows, id)
	return nil
}

type fakeSearch struct {
	indexed []string
	deleted []string
	err     error
}

func (f *fakeSearch) IndexBestEffort(_ context.Context, saved models.SavedItinerary) {
	f.indexed = append(f.indexed, saved.ID)
}

func (f *fakeSearch) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSearch) Search(_ context.Context, userID, query string) ([]models.ItinerarySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.ItinerarySummary{{ID: "it-1", UserID: userID, Title: "Match for " + query}}, nil
}

// ==========================
// Helpers
// ==========================

type testEnv struct {
	gen      *fakeGenerator
	accounts *fakeAccounts
	store    *memItineraries
	search   *fakeSearch
	handler  http.Handler
}

func createTestEnv(t *testing.T, mutate ...func(*config.Config, *Deps)) *testEnv {
	t.Helper()
	env := &testEnv{
		gen:      &fakeGenerator{it: ptr(createTestItinerary())},
		accounts: &fakeAccounts{},
		store:    newMemItineraries(),
		search:   &fakeSearch{},
	}
	cfg := &config.Config{
		Server: config.ServerConfig{RateLimit: config.RateLimit{RequestsPerMinute: 100, Burst: 100}},
		Share:  config.ShareConfig{BaseURL: "https://planmytrip.example/"},
	}
	deps := Deps{
		Generator:   env.gen,
		Accounts:    env.accounts,
		Itineraries: env.store,
		Search:      env.search,
	}
	for _, m := range mutate {
		m(cfg, &deps)
	}
	env.handler = NewServer(deps, cfg, logger.NewNoOpLogger()).Engine()
	return env
}

func ptr[T any](v T) *T { return &v }

func createTestItinerary() models.Itinerary {
	return models.Itinerary{
		Title:       "Parisian Discoveries",
		Destination: "Paris",
		Duration:    "1 Day",
		Budget:      "Moderate",
		TravelType:  "Solo",
		Highlights:  []string{"Louvre"},
		Days: []models.DayPlan{{
			Day:   1,
			Title: "Arrival",
			Activities: []models.Activity{
				{Time: "9:00 AM", Title: "Louvre", Description: "Museum visit", Type: "museum"},
			},
		}},
	}
}

func validTripBody() map[string]interface{} {
	return map[string]interface{}{
		"destination":      "Paris",
		"startingLocation": "London",
		"days":             3,
		"budget":           "Moderate",
		"travelType":       "Solo",
		"interests":        []string{"Culture"},
		"pace":             "Balanced",
		"accommodation":    "Hotel",
		"transportation":   "Public Transport",
		"mealPreference":   "No preference",
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// ==========================
// Generation
// ==========================

func TestGenerateItinerary_Success(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/itinerary", "", validTripBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var it models.Itinerary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
	assert.Equal(t, createTestItinerary(), it)
	assert.Equal(t, 3, env.gen.last.Days)
	assert.Equal(t, "London", env.gen.last.StartingLocation)
}

func TestGenerateItinerary_InvalidRequest(t *testing.T) {
	env := createTestEnv(t)
	body := validTripBody()
	body["days"] = 0
	body["budget"] = "Cheap"

	w := env.do(t, http.MethodPost, "/api/itinerary", "", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, "TRIP_REQUEST_INVALID", resp.Error)
	assert.Equal(t, "VALIDATION", resp.Category)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "budget", resp.Details[0].Field)
	assert.Equal(t, "days", resp.Details[1].Field)
	assert.Zero(t, env.gen.calls)
}

func TestGenerateItinerary_MalformedBody(t *testing.T) {
	env := createTestEnv(t)

	for _, body := range []string{`{"destination":`, `["Paris"]`, ``} {
		w := env.do(t, http.MethodPost, "/api/itinerary", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, "TRIP_REQUEST_INVALID", decodeError(t, w).Error)
	}
	assert.Zero(t, env.gen.calls)
}

func TestGenerateItinerary_GenerationFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantCat    string
	}{
		{
			name:       "model unavailable",
			err:        &generation.GenerationError{Kind: generation.ErrModelUnavailable, Attempt: 2, Err: errors.New("503")},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "MODEL_UNAVAILABLE",
			wantCat:    "UNAVAILABLE",
		},
		{
			name:       "malformed output",
			err:        &generation.GenerationError{Kind: generation.ErrMalformedOutput, Attempt: 2, Err: errors.New("unexpected EOF")},
			wantStatus: http.StatusBadGateway,
			wantCode:   "MALFORMED_OUTPUT",
			wantCat:    "AI_OUTPUT",
		},
		{
			name: "schema violation",
			err: &generation.GenerationError{
				Kind:       generation.ErrSchemaViolation,
				Attempt:    2,
				Violations: []validation.ValidationError{{Field: "highlights", Message: "required field missing", Code: validation.CodeRequiredFieldMissing}},
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   "SCHEMA_VIOLATION",
			wantCat:    "AI_OUTPUT",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantCat:    "OTHER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := createTestEnv(t)
			env.gen.it = nil
			env.gen.err = tt.err

			w := env.do(t, http.MethodPost, "/api/itinerary", "", validTripBody())
			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantCat, resp.Category)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestGenerateItinerary_SchemaViolationDetails(t *testing.T) {
	env := createTestEnv(t)
	env.gen.it = nil
	env.gen.err = &generation.GenerationError{
		Kind:       generation.ErrSchemaViolation,
		Violations: []validation.ValidationError{{Field: "days[0].day", Message: "required field missing", Code: validation.CodeRequiredFieldMissing}},
	}

	resp := decodeError(t, env.do(t, http.MethodPost, "/api/itinerary", "", validTripBody()))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "days[0].day", resp.Details[0].Field)
}

func TestGenerateItinerary_RateLimited(t *testing.T) {
	env := createTestEnv(t, func(cfg *config.Config, _ *Deps) {
		cfg.Server.RateLimit = config.RateLimit{RequestsPerMinute: 1, Burst: 2}
	})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/itinerary", "", validTripBody()).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/itinerary", "", validTripBody()).Code)

	w := env.do(t, http.MethodPost, "/api/itinerary", "", validTripBody())
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Error)
	assert.Equal(t, 2, env.gen.calls)
}

// ==========================
// Export
// ==========================

func TestExportItinerary(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/itinerary/export", "", createTestItinerary())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="paris_itinerary.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestExportItinerary_Invalid(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/itinerary/export", "", map[string]interface{}{"title": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "ITINERARY_INVALID", resp.Error)
	assert.Len(t, resp.Details, 6)
}

// ==========================
// Accounts
// ==========================

func TestSignup(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/signup", "", auth.SignupInput{Email: "new@example.com", Name: "New", Username: "new", Password: "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	var session auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "token-new", session.Token)
	assert.Equal(t, "new@example.com", session.User.Email)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSignup_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate", apperrors.NewDuplicateUserError("email taken"), http.StatusConflict, "DUPLICATE_USER"},
		{"invalid", &auth.Error{Kind: auth.ErrInvalidSignup, Violations: []apperrors.FieldViolation{{Field: "password", Code: validation.CodeMinimumViolation}}}, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := createTestEnv(t)
			env.accounts.signupErr = tt.err

			w := env.do(t, http.MethodPost, "/api/auth/signup", "", auth.SignupInput{Email: "a@b.co"})
			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestLogin(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "ana@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "ana@example.com", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, w).Error)
}

func TestAuthRequired(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTHENTICATION_ERROR", decodeError(t, w).Error)

	w = env.do(t, http.MethodGet, "/api/itineraries", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeAndLogout(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/me", "token-ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ana@example.com"`)

	w = env.do(t, http.MethodPost, "/api/auth/logout", "token-ana", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"user-ana"}, env.accounts.revoked)
}

// ==========================
// Saved itineraries
// ==========================

func saveTestItinerary(t *testing.T, env *testEnv, token string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/itineraries", token, map[string]interface{}{
		"itinerary":        createTestItinerary(),
		"startingLocation": " London ",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.ID
}

func TestSaveAndGetItinerary(t *testing.T) {
	env := createTestEnv(t)
	id := saveTestItinerary(t, env, "token-ana")

	assert.Equal(t, []string{id}, env.search.indexed)
	assert.Equal(t, "London", env.store.rows[id].StartingLocation)

	w := env.do(t, http.MethodGet, "/api/itineraries/"+id, "token-ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var saved models.SavedItinerary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, createTestItinerary(), saved.Itinerary)

	w = env.do(t, http.MethodGet, "/api/itineraries/"+id, "token-bob", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ITINERARY_NOT_FOUND", decodeError(t, w).Error)

	w = env.do(t, http.MethodGet, "/api/itineraries/missing", "token-ana", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveItinerary_Invalid(t *testing.T) {
	env := createTestEnv(t)
	it := createTestItinerary()
	it.Highlights = nil

	w := env.do(t, http.MethodPost, "/api/itineraries", "token-ana", map[string]interface{}{"itinerary": it})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "itinerary.highlights", resp.Details[0].Field)

	w = env.do(t, http.MethodPost, "/api/itineraries", "token-ana", map[string]interface{}{"startingLocation": "London"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "itinerary", decodeError(t, w).Details[0].Field)
	assert.Empty(t, env.store.rows)
}

func TestListItineraries(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/itineraries", "token-ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	first := saveTestItinerary(t, env, "token-ana")
	second := saveTestItinerary(t, env, "token-ana")
	saveTestItinerary(t, env, "token-bob")

	w = env.do(t, http.MethodGet, "/api/itineraries", "token-ana", nil)
	var list []models.SavedItinerary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)

	w = env.do(t, http.MethodGet, "/api/itinerary/user/user-ana", "token-ana", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/itinerary/user/user-ana", "token-bob", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, w).Error)
}

func TestSearchItineraries(t *testing.T) {
	env := createTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/itineraries/search?q=paris", "token-ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []models.ItinerarySummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "user-ana", results[0].UserID)
	assert.Equal(t, "Match for paris", results[0].Title)

	env.search.err = errors.New("cluster down")
	w = env.do(t, http.MethodGet, "/api/itineraries/search?q=paris", "token-ana", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SEARCH_QUERY_FAILED", decodeError(t, w).Error)
}

func TestSearchItineraries_WithoutIndex(t *testing.T) {
	env := createTestEnv(t, func(_ *config.Config, d *Deps) { d.Search = nil })

	saveTestItinerary(t, env, "token-ana")
	w := env.do(t, http.MethodGet, "/api/itineraries/search?q=paris", "token-ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestExportSavedItinerary(t *testing.T) {
	env := createTestEnv(t)
	id := saveTestItinerary(t, env, "token-ana")

	w := env.do(t, http.MethodGet, "/api/itineraries/"+id+"/pdf", "token-ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = env.do(t, http.MethodGet, "/api/itineraries/"+id+"/pdf", "token-bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteItinerary(t *testing.T) {
	env := createTestEnv(t)
	id := saveTestItinerary(t, env, "token-ana")

	w := env.do(t, http.MethodDelete, "/api/itineraries/"+id, "token-bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/itineraries/"+id, "token-ana", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{id}, env.search.deleted)

	w = env.do(t, http.MethodGet, "/api/itineraries/"+id, "token-ana", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==========================
// Health checks and middleware
// ==========================

func TestHealthAndReady(t *testing.T) {
	env := createTestEnv(t, func(_ *config.Config, d *Deps) {
		d.Readiness = map[string]ReadinessCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}
	})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "", nil).Code)

	w := env.do(t, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"connection refused"`)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)

	w = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryFromPanic(t *testing.T) {
	r := gin.New()
	r.Use(recovery(logger.NewNoOpLogger()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestVisitorLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newVisitorLimiter(60, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"), "limits are per client")

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"))

	now = now.Add(11 * time.Minute)
	l.allow("10.0.0.3")
	assert.Len(t, l.visitors, 1, "idle visitors are swept")

	assert.Nil(t, newVisitorLimiter(0, 5))
}

// ==========================
// Workflow
// ==========================

type fakeWorkflows struct {
	processID string
	vars      map[string]interface{}
	err       error
}

func (f *fakeWorkflows) StartProcess(_ context.Context, processID string, variables interface{}) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.processID = processID
	f.vars, _ = variables.(map[string]interface{})
	return 2251799813685249, nil
}

func TestStartPlanning(t *testing.T) {
	wf := &fakeWorkflows{}
	env := createTestEnv(t, func(_ *config.Config, d *Deps) { d.Workflows = wf })

	w := env.do(t, http.MethodPost, "/api/itinerary/workflow", "token-ana", map[string]interface{}{
		"tripRequest": validTripBody(),
		"sendEmail":   true,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.JSONEq(t, `{"processInstanceKey":2251799813685249}`, w.Body.String())

	assert.Equal(t, "plan-trip", wf.processID)
	assert.Equal(t, "user-ana", wf.vars["userId"])
	assert.Equal(t, true, wf.vars["sendEmail"])
	assert.Zero(t, env.gen.calls)
}

func TestStartPlanning_Failures(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		env := createTestEnv(t, func(_ *config.Config, d *Deps) { d.Workflows = &fakeWorkflows{} })
		w := env.do(t, http.MethodPost, "/api/itinerary/workflow", "", map[string]interface{}{"tripRequest": validTripBody()})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid trip request", func(t *testing.T) {
		wf := &fakeWorkflows{}
		env := createTestEnv(t, func(_ *config.Config, d *Deps) { d.Workflows = wf })
		body := validTripBody()
		body["days"] = 31

		w := env.do(t, http.MethodPost, "/api/itinerary/workflow", "token-ana", map[string]interface{}{"tripRequest": body})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "TRIP_REQUEST_INVALID", decodeError(t, w).Error)
		assert.Empty(t, wf.processID)
	})

	t.Run("engine unavailable", func(t *testing.T) {
		wf := &fakeWorkflows{err: apperrors.NewWorkflowEngineUnavailableError("start plan-trip", errors.New("connection refused"))}
		env := createTestEnv(t, func(_ *config.Config, d *Deps) { d.Workflows = wf })

		w := env.do(t, http.MethodPost, "/api/itinerary/workflow", "token-ana", map[string]interface{}{"tripRequest": validTripBody()})
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "WORKFLOW_ENGINE_UNAVAILABLE", decodeError(t, w).Error)
	})

	t.Run("route absent without engine", func(t *testing.T) {
		env := createTestEnv(t)
		w := env.do(t, http.MethodPost, "/api/itinerary/workflow", "token-ana", map[string]interface{}{"tripRequest": validTripBody()})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
