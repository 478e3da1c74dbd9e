// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"planmytrip/internal/common/auth"
	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/metrics"
)

const claimsKey = "auth.claims"

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("HTTP request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"clientIp": c.ClientIP(),
		})
	}
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic in handler", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"panic": fmt.Sprint(r),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
					Error:    string(apperrors.ErrCodeInternalError),
					Category: apperrors.GetErrorCategory(apperrors.ErrCodeInternalError),
					Message:  "internal error",
				})
			}
		}()
		c.Next()
	}
}

// requireAuth accepts a bearer token and stores its claims on the context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(c, apperrors.NewAuthenticationError("missing bearer token"))
			return
		}

		claims, err := s.deps.Accounts.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func callerClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorLimiter keeps one token bucket per client address. Idle entries are
// swept on access once per sweepEvery.
type visitorLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	limit      rate.Limit
	burst      int
	idleAfter  time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// newVisitorLimiter returns nil when perMinute is not positive, which
// disables limiting.
func newVisitorLimiter(perMinute, burst int) *visitorLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &visitorLimiter{
		visitors:   make(map[string]*visitor),
		limit:      rate.Every(time.Minute / time.Duration(perMinute)),
		burst:      burst,
		idleAfter:  10 * time.Minute,
		sweepEvery: time.Minute,
		now:        time.Now,
	}
}

func (l *visitorLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.sweepEvery {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleAfter {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *visitorLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l != nil && !l.allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Error:    string(apperrors.ErrCodeRateLimited),
				Category: apperrors.GetErrorCategory(apperrors.ErrCodeRateLimited),
				Message:  apperrors.NewRateLimitedError().Message,
			})
			return
		}
		c.Next()
	}
}
