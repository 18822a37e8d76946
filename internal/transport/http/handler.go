package http

import (
	"log/slog"
	"net/http"

	authzapp "github.com/astro-web3/todo-service/internal/app/authz"
	"github.com/astro-web3/todo-service/pkg/logger"
	"github.com/astro-web3/todo-service/pkg/tracer"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	appService authzapp.Service
}

func NewHandler(appService authzapp.Service) *Handler {
	return &Handler{
		appService: appService,
	}
}

// Authorize answers with an IAM-style policy for the request's bearer token.
// Deny is a policy too, so the status is always 200.
func (h *Handler) Authorize(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.Authorize")
	defer span.End()

	decision := h.appService.Check(ctx, c.GetHeader("Authorization"))
	if !decision.Allow {
		logger.WarnContext(ctx, "authorization denied", slog.String("reason", string(decision.Reason)))
	}

	c.JSON(http.StatusOK, decision.Policy())
}
