package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inkwell/internal/domain"
	"inkwell/internal/metrics"
)

const userIDKey = "inkwell.userID"

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// AuthRequired admits requests carrying a valid session cookie and attaches
// the user id to the context. Every failure produces the same 401 body and
// the downstream handler never runs.
func AuthRequired(tokens TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUser(c, tokens, cookieName)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext returns the id stored by AuthRequired.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func resolveUser(c *gin.Context, tokens TokenVerifier, cookieName string) (int64, bool) {
	token, err := c.Cookie(cookieName)
	if err != nil || token == "" {
		return 0, false
	}
	userID, err := tokens.Verify(token)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// requestLogger writes one entry per request and reports it to rec.
func requestLogger(logger *logrus.Logger, rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		rec.RecordRequest(c.Request.Method, route, status, elapsed)

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if id, ok := UserIDFromContext(c); ok {
			fields["user_id"] = id
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// corsMiddleware allows credentialed requests from allowedOrigin only. With no
// origin configured any site may read public responses, but cookies are not
// shared with it.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if allowedOrigin == "" {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
