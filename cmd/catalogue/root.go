package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"transitcatalogue.org/internal/app"
	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/clock"
	"transitcatalogue.org/internal/gtfs"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/metrics"
	"transitcatalogue.org/internal/reader"
)

// rootOptions are the persistent flags plus the configuration they
// resolve to.
type rootOptions struct {
	configPath string
	envFile    string
	verbose    bool

	cfg appconf.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Query a transit network: line statistics and fastest routes",
		Long: `catalogue loads a bus network from a request document, a text command
file or a static GTFS feed, and answers line statistics, stop lookups and
fastest-itinerary queries over it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := appconf.LoadEnvFile(opts.envFile); err != nil {
				return err
			}
			cfg, err := appconf.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.Verbose = true
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		newProcessCmd(opts),
		newRouteCmd(opts),
		newStatsCmd(opts),
		newNearbyCmd(opts),
		newDumpCmd(opts),
	)
	return rootCmd
}

// BuildApplication creates the application for one run. Logs go to
// logOutput and carry a run id.
func BuildApplication(cfg appconf.Config, logOutput io.Writer) *app.Application {
	logger := logging.New(cfg.Env, cfg.Verbose, logOutput).With(slog.String("run_id", uuid.NewString()))
	return app.New(cfg, logger, clock.RealClock{}, metrics.NewWithLogger(logger))
}

// network is what loadNetwork found besides the stops and buses.
type network struct {
	statRequests []reader.StatRequest
	text         bool
}

// isTextInput picks the text format for .txt files, compressed or not.
func isTextInput(path string) bool {
	return filepath.Ext(strings.TrimSuffix(path, ".gz")) == ".txt"
}

// isGTFSSource treats URLs and zip archives as GTFS feeds.
func isGTFSSource(path string) bool {
	return gtfs.IsRemote(path) || strings.HasSuffix(path, ".zip")
}

// loadNetwork fills application from source and applies the routing and
// render settings the source carries.
func loadNetwork(ctx context.Context, application *app.Application, source string, forceText bool) (network, error) {
	logger := application.Logger.With(slog.String("component", "network_loader"))

	if isGTFSSource(source) {
		static, err := gtfs.Load(ctx, source, application.Config.GTFS)
		if err != nil {
			logging.LogError(logger, "Failed to load GTFS feed", err, slog.String("source", source))
			return network{}, err
		}
		if _, err := gtfs.Populate(ctx, application.Catalogue, static); err != nil {
			return network{}, fmt.Errorf("error importing GTFS feed: %w", err)
		}
		return network{}, nil
	}

	rc, err := reader.Open(source)
	if err != nil {
		return network{}, err
	}
	defer logging.SafeCloseWithLogging(rc, logger, "input")

	if forceText || isTextInput(source) {
		input, err := reader.ParseText(rc)
		if err != nil {
			return network{}, err
		}
		if err := reader.ApplyBaseRequests(application.Catalogue, input.BaseRequests); err != nil {
			return network{}, err
		}
		logging.LogOperation(logger, "network_loaded",
			slog.String("format", "text"),
			slog.Int("base_requests", len(input.BaseRequests)))
		return network{statRequests: input.StatRequests, text: true}, nil
	}

	doc, err := reader.Decode(rc)
	if err != nil {
		return network{}, err
	}
	if err := reader.ApplyBaseRequests(application.Catalogue, doc.BaseRequests); err != nil {
		return network{}, err
	}
	if doc.RoutingSettings != nil {
		application.Config.Routing = appconf.RoutingConfig{
			BusWaitTime: doc.RoutingSettings.BusWaitTime,
			BusVelocity: doc.RoutingSettings.BusVelocity,
		}
		if err := application.Config.Validate(); err != nil {
			return network{}, fmt.Errorf("routing_settings: %w", err)
		}
	}
	application.Palette = doc.RenderSettings.Palette()

	logging.LogOperation(logger, "network_loaded",
		slog.String("format", "json"),
		slog.Int("base_requests", len(doc.BaseRequests)),
		slog.Int("stat_requests", len(doc.StatRequests)))
	return network{statRequests: doc.StatRequests}, nil
}

// prepare resolves the configuration into an application with source
// loaded.
func prepare(cmd *cobra.Command, opts *rootOptions, source string, forceText bool) (*app.Application, network, context.Context, error) {
	application := BuildApplication(opts.cfg, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, application.Logger)

	net, err := loadNetwork(ctx, application, source, forceText)
	if err != nil {
		return nil, network{}, nil, err
	}
	return application, net, ctx, nil
}

func writeMetrics(application *app.Application, path string) error {
	if path == "" {
		path = application.Config.MetricsFile
	}
	return application.Metrics.WriteTextfile(path)
}
