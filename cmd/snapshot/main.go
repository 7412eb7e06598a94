// Command snapshot captures a live space into a dataset the server can serve
// as its demo space (DEMO_DATA_FILE or DEMO_DATA_BUCKET).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SirClappington/cf-graphql-demo/internal/config"
	"github.com/SirClappington/cf-graphql-demo/internal/metrics"
	"github.com/SirClappington/cf-graphql-demo/internal/services"
	"github.com/SirClappington/cf-graphql-demo/internal/spacegraph"
)

const defaultOut = "demo-data.json"

var logger = log.New(os.Stdout, "[CF-GRAPHQL] ", log.LstdFlags)

func newCommand() *cobra.Command {
	conf := config.NewViper()

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a Contentful space into a demo dataset",
		Long: "Fetches the content types, entries and assets of a space and stores them as a " +
			"dataset the GraphQL server serves when no space credentials are configured.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(conf)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flag := cmd.Flags()
	flag.String("space", "", "Space ID (SPACE_ID).")
	flag.String("cda-token", "", "Content Delivery API token (CDA_TOKEN).")
	flag.String("cma-token", "", "Content Management API token (CMA_TOKEN).")
	flag.String("cda-url", config.DefaultCDABaseURL, "Content Delivery API base URL (CDA_BASE_URL).")
	flag.String("cma-url", config.DefaultCMABaseURL, "Content Management API base URL (CMA_BASE_URL).")
	flag.StringP("out", "o", "", "File to write the dataset to (DEMO_DATA_FILE). Defaults to "+defaultOut+".")
	flag.String("bucket", "", "Firebase storage bucket to upload the dataset to (DEMO_DATA_BUCKET).")
	flag.String("object", config.DefaultDemoDataObject, "Object name inside the bucket (DEMO_DATA_OBJECT).")
	flag.String("credentials", "", "Firebase service account file (FIREBASE_CREDENTIALS_FILE).")

	bindFlags(conf, cmd, map[string]string{
		"space":       "SPACE_ID",
		"cda-token":   "CDA_TOKEN",
		"cma-token":   "CMA_TOKEN",
		"cda-url":     "CDA_BASE_URL",
		"cma-url":     "CMA_BASE_URL",
		"out":         "DEMO_DATA_FILE",
		"bucket":      "DEMO_DATA_BUCKET",
		"object":      "DEMO_DATA_OBJECT",
		"credentials": "FIREBASE_CREDENTIALS_FILE",
	})
	return cmd
}

// bindFlags lets a flag override the environment variable of the same setting.
func bindFlags(conf *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for name, key := range keys {
		if err := conf.BindPFlag(strings.ToLower(key), cmd.Flags().Lookup(name)); err != nil {
			logger.Fatalf("Failed to bind flag %s: %v", name, err)
		}
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if !cfg.HasSpaceCredentials() {
		return fmt.Errorf("space ID, CDA token and CMA token are all required")
	}

	client, err := services.NewContentfulService(services.ContentfulConfig{
		SpaceID:    cfg.SpaceID,
		CDAToken:   cfg.CDAToken,
		CMAToken:   cfg.CMAToken,
		CDABaseURL: cfg.CDABaseURL,
		CMABaseURL: cfg.CMABaseURL,
		Timeout:    cfg.HTTPTimeout,
	}, metrics.New(), logger)
	if err != nil {
		return err
	}

	contentTypes, err := client.GetContentTypes(ctx)
	if err != nil {
		return err
	}
	graph, err := spacegraph.Prepare(contentTypes)
	if err != nil {
		return fmt.Errorf("error preparing space graph: %w", err)
	}
	logger.Printf("Contentful content types prepared: %s", strings.Join(graph.TypeNames(), ", "))

	data, err := services.CaptureSpace(ctx, client, graph)
	if err != nil {
		return err
	}

	var store services.SnapshotStore
	if cfg.DemoDataBucket != "" {
		store, err = services.NewBucketSnapshotStore(ctx, cfg.FirebaseCredentialsFile, cfg.DemoDataBucket, cfg.DemoDataObject, logger)
		if err != nil {
			return err
		}
	} else {
		out := cfg.DemoDataFile
		if out == "" {
			out = defaultOut
		}
		store = services.NewFileSnapshotStore(out, logger)
	}
	return store.Save(ctx, data)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Fatalf("Snapshot failed: %v", err)
	}
}
