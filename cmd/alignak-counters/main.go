package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/app"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/backend"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/config"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/export"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/monitor"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/poller"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/server"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/version"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
)

// Exit codes follow the original tool's convention.
const (
	exitAuth      = 2
	exitTransport = 3
	exitQuery     = 4
	exitFormat    = 5
	exitUsage     = 64
)

func main() {
	cmd := &cli.Command{
		Name:           "alignak-counters",
		Usage:          "search and export performance data counters from an Alignak backend",
		Version:        version.String(),
		DefaultCommand: "get",
		Commands: []*cli.Command{
			getCommand(),
			serveCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitUsage)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to an optional YAML configuration file",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "backend URL (default " + config.DefaultBackendURL + ")",
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "backend login username (default " + config.DefaultUsername + ")",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "backend login password",
		},
		&cli.StringFlag{
			Name:    "hostnames",
			Aliases: []string{"H"},
			Usage:   "comma separated list of hosts to extract data for (default all)",
		},
		&cli.StringFlag{
			Name:    "services",
			Aliases: []string{"S"},
			Usage:   "comma separated list of services to extract data for (default all)",
		},
		&cli.StringFlag{
			Name:    "metrics",
			Aliases: []string{"M"},
			Usage:   "comma separated list of counters to extract (default all)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per request timeout (default 10s)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "run in verbose mode (more info to display)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "run in quiet mode (errors only)",
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:  "get",
		Usage: "run one extraction and write the counters to stdout or a file",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: json, csv, table or prom (default json)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the export to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "otlp-endpoint",
				Usage: "also forward the counters to this OTLP metrics endpoint",
			},
			&cli.StringFlag{
				Name:  "otlp-transport",
				Usage: "OTLP transport: grpc or http (default grpc)",
			},
			&cli.BoolFlag{
				Name:  "otlp-insecure",
				Usage: "disable TLS for the OTLP connection",
			},
		),
		Action: runGet,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "refresh the counters periodically and expose them as a Prometheus scrape endpoint",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "listen",
				Usage: "scrape endpoint listen address (default " + config.DefaultServeListen + ")",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "backend refresh interval (default 60s)",
			},
		),
		Action: runServe,
	}
}

// setup loads the configuration, applies flag overrides and builds the logger.
func setup(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, cli.Exit(err.Error(), exitUsage)
	}

	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		var formatErr *export.FormatError
		if errors.As(err, &formatErr) {
			return nil, nil, cli.Exit(err.Error(), exitFormat)
		}
		return nil, nil, cli.Exit(err.Error(), exitUsage)
	}

	logger := newLogger(cmd.Bool("verbose"), cmd.Bool("quiet"))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("backend") {
		cfg.Backend.URL = cmd.String("backend")
	}
	if cmd.IsSet("username") {
		cfg.Backend.Username = cmd.String("username")
	}
	if cmd.IsSet("password") {
		cfg.Backend.Password = cmd.String("password")
	}
	if cmd.IsSet("timeout") {
		cfg.Backend.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("hostnames") {
		cfg.Query.Hosts = cmd.String("hostnames")
	}
	if cmd.IsSet("services") {
		cfg.Query.Services = cmd.String("services")
	}
	if cmd.IsSet("metrics") {
		cfg.Query.Metrics = cmd.String("metrics")
	}
	if cmd.IsSet("format") {
		cfg.Export.Format = cmd.String("format")
	}
	if cmd.IsSet("output") {
		cfg.Export.Output = cmd.String("output")
	}
	if cmd.IsSet("otlp-endpoint") {
		cfg.Export.OTLP.Enabled = true
		cfg.Export.OTLP.Endpoint = cmd.String("otlp-endpoint")
	}
	if cmd.IsSet("otlp-transport") {
		cfg.Export.OTLP.Transport = cmd.String("otlp-transport")
	}
	if cmd.IsSet("otlp-insecure") {
		cfg.Export.OTLP.Insecure = cmd.Bool("otlp-insecure")
	}
	if cmd.IsSet("listen") {
		cfg.Serve.Listen = cmd.String("listen")
	}
	if cmd.IsSet("interval") {
		cfg.Serve.Interval = cmd.Duration("interval")
	}
}

// newLogger builds the stderr logger so exported data on stdout stays clean.
func newLogger(verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

func runGet(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	logger.Info("starting extraction", "version", version.String(), "backend", cfg.Backend.URL)

	application, err := app.New(cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rs, err := application.Extract(ctx)
	if err != nil {
		return exitError(err)
	}
	if rs.Empty() {
		logger.Warn("no counters matched the query")
	}

	out := os.Stdout
	if cfg.Export.Output != "" {
		f, err := os.Create(cfg.Export.Output)
		if err != nil {
			return cli.Exit(fmt.Sprintf("create output file: %v", err), exitFormat)
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, rs, export.Format(cfg.Export.Format)); err != nil {
		return exitError(err)
	}

	if cfg.Export.OTLP.Enabled {
		if err := export.PushOTLP(ctx, cfg.Export.OTLP, rs); err != nil {
			return cli.Exit(err.Error(), exitTransport)
		}
	}

	logger.Info("extraction complete", "counters", rs.Len(), "format", cfg.Export.Format)
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	logger.Info("starting serve mode",
		"version", version.String(),
		"backend", cfg.Backend.URL,
		"listen", cfg.Serve.Listen,
		"interval", cfg.Serve.Interval)

	application, err := app.New(cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Client.Login(shutdownCtx); err != nil {
		return exitError(err)
	}

	store := counters.NewStore()

	pol := poller.New(application.Fetcher, store, application.Criteria, cfg.Serve.Interval, logger)
	pol.Run(shutdownCtx)
	defer pol.Wait()

	mon := monitor.New(30*time.Second, logger)
	if mon != nil {
		mon.Run(shutdownCtx)
		defer mon.Wait()
	}

	srv := server.New(cfg.Serve.Listen, cfg.Serve.Path, store)

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	wg.Go(func() {
		if err := srv.Start(shutdownCtx); err != nil {
			errChan <- err
		}
	})

	select {
	case err := <-errChan:
		stop()
		wg.Wait()
		return cli.Exit(err.Error(), exitTransport)
	case <-shutdownCtx.Done():
	}

	wg.Wait()
	logger.Info("shutdown complete")
	return nil
}

// exitError maps a classified error to its exit code.
func exitError(err error) error {
	var (
		authErr      *backend.AuthError
		transportErr *backend.TransportError
		queryErr     *backend.QueryError
		formatErr    *export.FormatError
	)
	switch {
	case errors.As(err, &authErr):
		return cli.Exit(err.Error(), exitAuth)
	case errors.As(err, &transportErr):
		return cli.Exit(err.Error(), exitTransport)
	case errors.As(err, &queryErr):
		return cli.Exit(err.Error(), exitQuery)
	case errors.As(err, &formatErr):
		return cli.Exit(err.Error(), exitFormat)
	default:
		return cli.Exit(err.Error(), 1)
	}
}
