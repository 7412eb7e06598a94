package server

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"

	"github.com/SirClappington/cf-graphql-demo/internal/errors"
	"github.com/SirClappington/cf-graphql-demo/internal/metrics"
	"github.com/SirClappington/cf-graphql-demo/internal/schema"
)

// Version is reported in the cf-graphql response extension.
var Version = "0.1.0"

//go:embed client/*
var clientFS embed.FS

const (
	graphiqlTitle   = "cf-graphql demo"
	graphqlEndpoint = "/graphql/"
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	Port           int
	Mode           string
	DetailedErrors bool
	// ClientDir serves the client bundle from disk instead of the embedded page.
	ClientDir string
}

type Server struct {
	config  Config
	engine  *gin.Engine
	schema  graphql.Schema
	source  schema.Source
	metrics *metrics.Metrics
	logger  *log.Logger
}

func New(config Config, s graphql.Schema, source schema.Source, m *metrics.Metrics, logger *log.Logger) (*Server, error) {
	if source == nil {
		return nil, errors.NewValidationError("a content source is required")
	}
	if m == nil {
		m = metrics.New()
	}

	srv := &Server{
		config:  config,
		schema:  s,
		source:  source,
		metrics: m,
		logger:  logger,
	}
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *Server) setupRoutes() error {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/", gin.WrapF(playground.Handler(graphiqlTitle, graphqlEndpoint)))

	for _, path := range []string{"/graphql", "/graphql/"} {
		r.GET(path, s.handleGraphQL)
		r.POST(path, s.handleGraphQL)
	}

	if s.config.ClientDir != "" {
		r.Static("/client", s.config.ClientDir)
	} else {
		sub, err := fs.Sub(clientFS, "client")
		if err != nil {
			return fmt.Errorf("error opening embedded client: %w", err)
		}
		r.StaticFS("/client", http.FS(sub))
	}

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.config.Mode})
	})

	s.engine = r
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Println("Running a GraphQL server!")
	s.logger.Printf("You can access GraphiQL at localhost:%d", s.config.Port)
	s.logger.Printf("You can use the GraphQL endpoint at localhost:%d/graphql/", s.config.Port)
	s.logger.Printf("You can have a look at a client page at localhost:%d/client/", s.config.Port)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error running http server: %w", err)
	case <-ctx.Done():
		s.logger.Println("Shutting down the GraphQL server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func handleError(c *gin.Context, err error) {
	if apiErr, ok := errors.As(err); ok {
		c.JSON(apiErr.StatusCode(), apiErr)
		return
	}

	// Handle unknown errors
	c.JSON(http.StatusInternalServerError, errors.NewInternalError(err))
}
