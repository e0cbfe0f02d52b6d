package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tkd-backend/internal/auth"
	"tkd-backend/internal/domain"
)

const claimsContextKey = "authClaims"

// authenticate extracts and verifies the bearer token, attaching the
// validated claims to the request context. On failure it aborts with 401 and
// returns nil, so no downstream handler runs.
func authenticate(c *gin.Context, codec *auth.Codec) *auth.Claims {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization header provided"})
		return nil
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return nil
	}

	claims, err := codec.Verify(strings.TrimSpace(token))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return nil
	}

	c.Set(claimsContextKey, claims)
	return claims
}

// requireAuth gates a route on a valid bearer token.
func requireAuth(codec *auth.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, codec) == nil {
			return
		}
		c.Next()
	}
}

// requireAdmin composes authentication with the admin role gate. An
// unauthenticated request still gets 401; only a valid non-admin token gets 403.
func requireAdmin(codec *auth.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := authenticate(c, codec)
		if claims == nil {
			return
		}
		if claims.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func claimsFromContext(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request handled")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
