package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	authzapp "github.com/astro-web3/todo-service/internal/app/authz"
	todoapp "github.com/astro-web3/todo-service/internal/app/todo"
	"github.com/astro-web3/todo-service/internal/config"
	authzdomain "github.com/astro-web3/todo-service/internal/domain/authz"
	tododomain "github.com/astro-web3/todo-service/internal/domain/todo"
	"github.com/astro-web3/todo-service/internal/infra/cache"
	"github.com/astro-web3/todo-service/internal/infra/dynamo"
	"github.com/astro-web3/todo-service/internal/infra/issuer"
	"github.com/astro-web3/todo-service/internal/infra/memory"
	"github.com/astro-web3/todo-service/internal/transport/http/handler"
	"github.com/astro-web3/todo-service/pkg/logger"
	"github.com/astro-web3/todo-service/pkg/metrics"
	"github.com/astro-web3/todo-service/pkg/otel"
	"github.com/astro-web3/todo-service/pkg/tracer"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	httpServer  *http.Server
	redisClient *redis.Client
}

const (
	idleTimeoutMultiplier = 2
	serviceName           = "todo-service"
	startupTimeout        = 30 * time.Second
)

func NewServer(cfg *config.Config) (*Server, error) {
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.Format, cfg.Observability.LogSource)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	otelCfg := otel.DefaultConfig(serviceName)
	otelCfg.ServiceVersion = cfg.Observability.ServiceVersion
	otelCfg.Environment = cfg.Observability.Environment
	otelCfg.EndpointURL = cfg.Observability.TracingEndpointURL
	otelCfg.Enabled = cfg.Observability.TraceEnabled
	otelCfg.SampleRatio = cfg.Observability.SampleRatio
	if err := tracer.InitTracer(ctx, serviceName, otelCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	credential, err := issuer.LoadSigningCredential(ctx, issuer.Source{
		PEM:  cfg.Auth.SigningCertificate.PEM,
		File: cfg.Auth.SigningCertificate.File,
		URL:  cfg.Auth.SigningCertificate.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load signing certificate: %w", err)
	}

	verifier := authzdomain.NewVerifier(credential,
		authzdomain.WithIssuer(cfg.Auth.Issuer),
		authzdomain.WithAudience(cfg.Auth.Audience),
		authzdomain.WithLeeway(cfg.Auth.Leeway),
	)

	srv := &Server{}

	var authzDomainService authzdomain.Service
	if cfg.Redis.URL != "" {
		srv.redisClient, err = cache.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		authzDomainService = authzdomain.NewServiceWithCache(
			verifier,
			cache.NewDecisionCache(srv.redisClient),
			cfg.Auth.CacheTTL,
		)
	} else {
		authzDomainService = authzdomain.NewService(verifier)
	}

	repo, err := newRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	authzService := authzapp.NewService(authzDomainService, m)
	todoDomainService := tododomain.NewService(repo)
	todoHandler := handler.NewTodoHandler(
		todoapp.NewCommandService(todoDomainService, m),
		todoapp.NewQueryService(todoDomainService, m),
	)

	router := NewRouter(cfg, authzService, todoHandler, m)

	srv.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * idleTimeoutMultiplier,
	}

	return srv, nil
}

func newRepository(ctx context.Context, cfg *config.Config) (tododomain.Repository, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		logger.WarnContext(ctx, "using in-memory todo storage; data is lost on restart")
		return memory.NewTodoRepository(), nil
	}

	client, err := dynamo.NewClient(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamodb client: %w", err)
	}

	logger.InfoContext(ctx, "using dynamodb todo storage",
		slog.String("table", cfg.DynamoDB.Table),
		slog.String("index", cfg.DynamoDB.UserIDIndex),
	)
	return dynamo.NewTodoRepository(client, cfg.DynamoDB.Table, cfg.DynamoDB.UserIDIndex), nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
