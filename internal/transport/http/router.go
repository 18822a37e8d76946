package http

import (
	"net/http"

	authzapp "github.com/astro-web3/todo-service/internal/app/authz"
	"github.com/astro-web3/todo-service/internal/config"
	"github.com/astro-web3/todo-service/internal/transport/http/handler"
	"github.com/astro-web3/todo-service/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	cfg *config.Config,
	authzService authzapp.Service,
	todoHandler *handler.TodoHandler,
	m *metrics.Metrics,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	if cfg.Observability.TraceEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(loggingMiddleware())
	if corsHandler := corsMiddleware(cfg.CORS.AllowedOrigins); corsHandler != nil {
		router.Use(corsHandler)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	if cfg.Observability.MetricsEnabled && m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authorizeHandler := NewHandler(authzService)
	router.GET("/authorize", authorizeHandler.Authorize)
	router.POST("/authorize", authorizeHandler.Authorize)

	todos := router.Group("/todos", authMiddleware(authzService))
	todos.GET("", todoHandler.ListTodos)
	todos.POST("", todoHandler.CreateTodo)
	todos.PATCH("/:todoId", todoHandler.UpdateTodo)
	todos.DELETE("/:todoId", todoHandler.DeleteTodo)

	return router
}
