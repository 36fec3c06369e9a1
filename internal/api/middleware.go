package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/metrics"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextPrincipalKey = "principal"
)

// PrincipalResolver loads the current identity of a verified user id.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID primitive.ObjectID) (domain.Principal, error)
}

// AuthMiddleware verifies the bearer token and resolves the caller's principal
// once per request. Every failure is a 401.
func AuthMiddleware(tokens service.TokenIssuer, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			respondError(c, err)
			return
		}

		principal, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				// The account behind the token is gone.
				abortWithError(c, http.StatusUnauthorized, service.ErrInvalidToken.Error())
				return
			}
			respondError(c, err)
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// RoleMiddleware rejects principals whose role is not in allowedRoles.
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}
		for _, allowed := range allowedRoles {
			if p.Role() == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: role '%s' does not have permission", p.Role()))
	}
}

func principalFrom(c *gin.Context) (domain.Principal, bool) {
	raw, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := raw.(domain.Principal)
	return p, ok
}

// mustPrincipal returns the principal set by AuthMiddleware. Handlers behind
// it never see a request without one.
func mustPrincipal(c *gin.Context) domain.Principal {
	p, ok := principalFrom(c)
	if !ok {
		panic("api: handler mounted without AuthMiddleware")
	}
	return p
}

// RequestLogger logs every request once it has been served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ua":       c.Request.UserAgent(),
		})
		if p, ok := principalFrom(c); ok {
			entry = entry.WithField("user_id", p.UserID().Hex())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request served with error")
			return
		}
		entry.Debug("request served")
	}
}

// RequestMetrics counts requests by route and status and tracks their duration.
func RequestMetrics(mm *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		mm.GaugeRequests.Inc()
		defer mm.GaugeRequests.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		defer func(begin time.Time) {
			mm.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		}(time.Now())

		c.Next()

		status := c.Writer.Status()
		mm.CounterRequests.With(prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}).Inc()
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			mm.CounterDenied.WithLabelValues(strconv.Itoa(status)).Inc()
		}
	}
}

// PanicRecovery turns a handler panic into a 500 and counts it.
func PanicRecovery(mm *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, r, debug.Stack())
				if mm != nil {
					mm.CounterHandleRequestPanic.Inc()
				}
				abortWithError(c, http.StatusInternalServerError, internalErrorMessage)
			}
		}()

		// handler call
		c.Next()
	}
}

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per minute and client IP on the
// routes it guards. A nil limiter disables it.
func RateLimit(rateLimiter RequestRateLimiter, routeName string, allowedPerMin int, mm *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil || allowedPerMin <= 0 {
			c.Next()
			return
		}

		res, err := rateLimiter.Allow(
			c.Request.Context(),
			routeName+":"+c.ClientIP(),
			redis_rate.PerMinute(allowedPerMin),
		)
		if err != nil {
			log.WithError(err).WithField("route", routeName).Error("rate limiter failed")
			abortWithError(c, http.StatusInternalServerError, "rate limit internal error")
			return
		}

		if res.Allowed > 0 {
			c.Next()
			return
		}

		if mm != nil {
			mm.CounterRateLimited.WithLabelValues(routeName).Inc()
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("retry after %.0f seconds", res.RetryAfter.Seconds()))
	}
}
