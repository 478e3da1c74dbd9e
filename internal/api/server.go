// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"planmytrip/internal/common/auth"
	"planmytrip/internal/common/config"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/models"
)

// ItineraryGenerator produces an itinerary for a validated request.
type ItineraryGenerator interface {
	Generate(ctx context.Context, req models.TripRequest) (*models.Itinerary, error)
}

type Accounts interface {
	Signup(ctx context.Context, in auth.SignupInput) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	CurrentUser(ctx context.Context, claims *auth.Claims) (*models.User, error)
}

type Itineraries interface {
	Create(ctx context.Context, userID string, it models.Itinerary, startingLocation string) (*models.SavedItinerary, error)
	ListByUser(ctx context.Context, userID string) ([]models.SavedItinerary, error)
	GetByID(ctx context.Context, id string) (*models.SavedItinerary, error)
	Delete(ctx context.Context, userID, id string) error
}

// Search is optional; without it saved itineraries are not indexed and
// the search route lists nothing.
type Search interface {
	IndexBestEffort(ctx context.Context, saved models.SavedItinerary)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, userID, query string) ([]models.ItinerarySummary, error)
}

// Workflows starts the plan-trip process. It is optional; the workflow
// route is only registered when it is set.
type Workflows interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// ReadinessCheck reports whether one dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Deps struct {
	Generator   ItineraryGenerator
	Accounts    Accounts
	Itineraries Itineraries
	Search      Search
	Workflows   Workflows
	Readiness   map[string]ReadinessCheck
}

type Server struct {
	deps     Deps
	cfg      config.ServerConfig
	shareURL string
	log      logger.Logger
	limiter  *visitorLimiter
}

func NewServer(deps Deps, cfg *config.Config, log logger.Logger) *Server {
	return &Server{
		deps:     deps,
		cfg:      cfg.Server,
		shareURL: cfg.Share.BaseURL,
		log:      log,
		limiter:  newVisitorLimiter(cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.Burst),
	}
}

// Engine builds the gin router with every route registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(recovery(s.log), requestLogger(s.log), requestMetrics())

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/itinerary", s.limiter.middleware(), s.generateItinerary)
	api.POST("/itinerary/export", s.exportItinerary)
	if s.deps.Workflows != nil {
		api.POST("/itinerary/workflow", s.limiter.middleware(), s.requireAuth(), s.startPlanning)
	}

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.signup)
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.requireAuth(), s.logout)
	authGroup.GET("/me", s.requireAuth(), s.me)

	saved := api.Group("/itineraries", s.requireAuth())
	saved.POST("", s.saveItinerary)
	saved.GET("", s.listItineraries)
	saved.GET("/search", s.searchItineraries)
	saved.GET("/:id", s.getItinerary)
	saved.GET("/:id/pdf", s.exportSavedItinerary)
	saved.DELETE("/:id", s.deleteItinerary)

	api.GET("/itinerary/user/:userId", s.requireAuth(), s.listUserItineraries)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": "route not found"})
	})
	return r
}

// Handler wraps the engine with CORS.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	return c.Handler(s.Engine())
}

// HTTPServer returns a configured http.Server for Handler.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadTimeout:       config.GetDuration(s.cfg.ReadTimeout),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.GetDuration(s.cfg.WriteTimeout),
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.deps.Readiness))
	healthy := true
	for name, check := range s.deps.Readiness {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
