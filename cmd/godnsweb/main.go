package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/marcogenualdo/godnsweb/internal/api"
	"github.com/marcogenualdo/godnsweb/internal/auth/oidc"
	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/metrics"
	"github.com/marcogenualdo/godnsweb/internal/server"
)

const version = "1.0.0"

const defaultConfigPath = "/etc/godnsweb/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	configPathShort := flag.String("c", defaultConfigPath, "path to configuration file (short)")
	showVersion := flag.Bool("version", false, "show version and exit")
	showHelp := flag.Bool("help", false, "show help and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("GoDNS Web v%s\n", version)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Println("GoDNS Web - management console for the GoDNS server")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfgPath := *configPath
	if *configPathShort != defaultConfigPath {
		cfgPath = *configPathShort
	}

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	logger.Info("starting godnsweb", "version", version)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	cacheInstance, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	logger.Info("cache initialized", "type", cfg.Cache.Type)

	manager := oidc.NewManager(cfg.OIDC, logger, oidc.WithMetrics(m))
	logger.Info("oidc initialized",
		"authority", cfg.OIDC.Authority,
		"realm", cfg.OIDC.Realm,
		"client_id", cfg.OIDC.ClientID,
	)

	client, err := api.New(cfg.API, logger, api.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	srv, err := server.New(*cfg, cacheInstance, manager, client, registry, m, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// setupLogger builds the process logger. Unknown levels fall back to info
// and unknown outputs to stdout.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
