package http

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	authzapp "github.com/astro-web3/todo-service/internal/app/authz"
	"github.com/astro-web3/todo-service/internal/transport/http/handler"
	"github.com/astro-web3/todo-service/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

var (
	corsAllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsAllowHeaders = []string{"Authorization", "Content-Type"}
)

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request.Context(), "request failed",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", duration),
			)
		} else {
			logger.InfoContext(c.Request.Context(), "request completed",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", duration),
			)
		}
	}
}

// authMiddleware admits a request only when the authorizer allows its
// Authorization header. Every deny gets the same 401 body.
func authMiddleware(authzService authzapp.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := authzService.Check(c.Request.Context(), c.GetHeader("Authorization"))
		if !decision.Allow {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(handler.ContextKeyUserID, decision.SubjectID)
		c.Next()
	}
}

// corsMiddleware returns nil when no origin is configured.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods: corsAllowMethods,
		AllowHeaders: corsAllowHeaders,
		MaxAge:       corsMaxAge,
	}
	if slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
