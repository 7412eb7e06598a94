// Package app selects the content source, builds the GraphQL schema and wires
// the HTTP server.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/SirClappington/cf-graphql-demo/internal/config"
	"github.com/SirClappington/cf-graphql-demo/internal/demo"
	"github.com/SirClappington/cf-graphql-demo/internal/metrics"
	"github.com/SirClappington/cf-graphql-demo/internal/models"
	"github.com/SirClappington/cf-graphql-demo/internal/schema"
	"github.com/SirClappington/cf-graphql-demo/internal/server"
	"github.com/SirClappington/cf-graphql-demo/internal/services"
	"github.com/SirClappington/cf-graphql-demo/internal/spacegraph"
)

type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

type App struct {
	mode    Mode
	graph   models.SpaceGraph
	server  *server.Server
	metrics *metrics.Metrics
	logger  *log.Logger
}

type Option func(*App)

// WithMetrics replaces the default collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// New prepares the schema and source. With all three space credentials set it
// reads the content types of the live space; otherwise it serves the demo
// dataset.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...Option) (*App, error) {
	a := &App{logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}

	var (
		source schema.Source
		err    error
	)
	if cfg.HasSpaceCredentials() {
		logger.Println("Space ID, CDA token and CMA token provided")
		logger.Printf("Fetching space (%s) content types to create a space graph", cfg.SpaceID)
		a.mode = ModeLive
		source, a.graph, err = a.useProvidedSpace(ctx, cfg)
	} else {
		logger.Println("Using a demo space")
		logger.Println("You can provide env vars (see README.md) to use your own space")
		a.mode = ModeDemo
		source, a.graph, err = a.useDemoSpace(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	s, err := schema.Create(a.graph)
	if err != nil {
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	a.server, err = server.New(server.Config{
		Port:           cfg.Port,
		Mode:           string(a.mode),
		DetailedErrors: cfg.DetailedErrors,
		ClientDir:      cfg.ClientDir,
	}, s, source, a.metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating server: %w", err)
	}
	return a, nil
}

func (a *App) useProvidedSpace(ctx context.Context, cfg *config.Config) (schema.Source, models.SpaceGraph, error) {
	client, err := services.NewContentfulService(services.ContentfulConfig{
		SpaceID:    cfg.SpaceID,
		CDAToken:   cfg.CDAToken,
		CMAToken:   cfg.CMAToken,
		CDABaseURL: cfg.CDABaseURL,
		CMABaseURL: cfg.CMABaseURL,
		Timeout:    cfg.HTTPTimeout,
	}, a.metrics, a.logger)
	if err != nil {
		return nil, nil, err
	}

	contentTypes, err := client.GetContentTypes(ctx)
	if err != nil {
		return nil, nil, err
	}

	graph, err := spacegraph.Prepare(contentTypes)
	if err != nil {
		return nil, nil, fmt.Errorf("error preparing space graph: %w", err)
	}
	a.logger.Printf("Contentful content types prepared: %s", strings.Join(graph.TypeNames(), ", "))

	return client, graph, nil
}

func (a *App) useDemoSpace(ctx context.Context, cfg *config.Config) (schema.Source, models.SpaceGraph, error) {
	var (
		data *models.DemoData
		err  error
	)
	switch {
	case cfg.DemoDataFile != "":
		data, err = services.NewFileSnapshotStore(cfg.DemoDataFile, a.logger).Load(ctx)
	case cfg.DemoDataBucket != "":
		var store *services.BucketSnapshotStore
		store, err = services.NewBucketSnapshotStore(ctx, cfg.FirebaseCredentialsFile, cfg.DemoDataBucket, cfg.DemoDataObject, a.logger)
		if err == nil {
			data, err = store.Load(ctx)
		}
	default:
		data, err = demo.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error loading demo data: %w", err)
	}

	source, err := services.NewDemoService(data, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return source, source.SpaceGraph(), nil
}

func (a *App) Mode() Mode {
	return a.mode
}

func (a *App) Graph() models.SpaceGraph {
	return a.graph
}

func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}
