// Package main implements the entry point for mapengine, the per-message
// JSON stream transformation engine: it loads a mapping document (from a
// packaged default or a remote S3-compatible object store), optionally
// starts the Reload Controller, and drives NDJSON records read from
// stdin through the Record Orchestrator to stdout.
package main

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/mapengine/health"
	"github.com/c360/mapengine/jsontree"
	"github.com/c360/mapengine/mapping"
	"github.com/c360/mapengine/metric"
	"github.com/c360/mapengine/orchestrator"
	"github.com/c360/mapengine/pathlang"
	"github.com/c360/mapengine/pkg/retry"
	"github.com/c360/mapengine/pkg/security"
	"github.com/c360/mapengine/reload"
	"github.com/c360/mapengine/remotestore"
	"github.com/c360/mapengine/transform"
)

// Build information constants.
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "mapengine"
)

//go:embed mappings/topic-mappings.json
var defaultMappings embed.FS

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("mapengine failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()
	if err := validateFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cfg.ShowVersion {
		fmt.Printf("%s version %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}
	if cfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("starting mapengine", "version", Version, "build_time", BuildTime)

	monitor := health.NewMonitor()

	var registry *metric.MetricsRegistry
	var metricsServer *metric.Server
	if cfg.HealthPort > 0 {
		registry = metric.NewMetricsRegistry()
		metricsServer = metric.NewServer(cfg.HealthPort, "/metrics", registry, security.Config{})
		metricsServer.AddRoute("/healthz", healthzHandler(monitor))
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
	}

	pathCache := pathlang.NewCache()
	encryptor := transform.NewEncryptor()

	storeMetrics, err := mapping.NewStoreMetrics(registry)
	if err != nil {
		return fmt.Errorf("register mapping metrics: %w", err)
	}
	store := mapping.NewStore(pathCache, encryptor, logger, storeMetrics)

	source, err := buildSource(cfg)
	if err != nil {
		return fmt.Errorf("build mapping source: %w", err)
	}
	defer func() { _ = source.Close() }()

	// Always perform one synchronous load so the process never starts
	// serving with an empty Store, regardless of whether hot-reload is
	// enabled.
	if err := loadInitial(context.Background(), source, store); err != nil {
		monitor.Update("mapping_store", health.FromError("mapping_store", err))
		return fmt.Errorf("initial mapping load: %w", err)
	}
	monitor.UpdateHealthy("mapping_store", "initial mapping adopted")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var controller *reload.Controller
	if cfg.HotReloadEnabled {
		controllerMetrics, err := reload.NewControllerMetrics(registry)
		if err != nil {
			return fmt.Errorf("register reload metrics: %w", err)
		}
		controller = reload.NewController(source, store, reload.Config{
			PollInterval:  cfg.HotReloadInterval,
			ShutdownGrace: cfg.ShutdownTimeout,
		}, logger, controllerMetrics)

		go controller.Run(ctx)
		defer controller.Stop()

		go watchForceReload(ctx, controller, logger, monitor)
		monitor.UpdateHealthy("reload_controller", "polling enabled")
	} else {
		monitor.UpdateDegraded("reload_controller", "hot-reload disabled, serving last loaded mapping indefinitely")
	}

	orchMetrics, err := orchestrator.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register orchestrator metrics: %w", err)
	}
	framing := orchestrator.FramingWrapped
	if cfg.Framing == "flat" {
		framing = orchestrator.FramingFlat
	}
	eng := orchestrator.New(store, orchestrator.Options{
		Framing:              framing,
		AttachMetadata:       cfg.AttachSourceMetadata,
		RawPayload:           cfg.StoreRawPayload,
		FailOnMissingMapping: cfg.FailOnMissingMapping,
	}, logger, orchMetrics)

	return processStdin(ctx, eng, cfg, logger)
}

// buildSource constructs the remotestore.Source per the mapping-source
// configuration: the packaged default (classpath-equivalent) unless S3
// is selected and an endpoint is supplied.
func buildSource(cfg *CLIConfig) (remotestore.Source, error) {
	if cfg.MappingSource == "s3" && cfg.S3Endpoint != "" {
		return remotestore.NewS3Source(remotestore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Key:       cfg.MappingLocation,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return remotestore.NewEmbeddedSource(defaultMappings, "mappings/"+baseNameOrDefault(cfg.MappingLocation)), nil
}

// baseNameOrDefault returns the embedded mapping document's file name:
// the classpath source only ever packages one file
// (mappings/topic-mappings.json), so a custom --mapping-location is
// honored only insofar as its base name matches the packaged file.
func baseNameOrDefault(location string) string {
	if location == "" {
		return "topic-mappings.json"
	}
	for i := len(location) - 1; i >= 0; i-- {
		if location[i] == '/' {
			return location[i+1:]
		}
	}
	return location
}

// loadInitial fetches and adopts the mapping document once, with quick
// startup retries around the fetch: a remote source that is still coming
// up (sidecar object store, slow DNS) should not kill the process.
func loadInitial(ctx context.Context, source remotestore.Source, store *mapping.Store) error {
	data, err := retry.DoWithResult(ctx, retry.Quick(), func() ([]byte, error) {
		return source.Fetch(ctx)
	})
	if err != nil {
		return err
	}
	return store.TryAdopt(data)
}

// watchForceReload listens for SIGHUP and bridges it to the Reload
// Controller's force-reload operation.
func watchForceReload(ctx context.Context, controller *reload.Controller, logger *slog.Logger, monitor *health.Monitor) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			logger.Info("received SIGHUP, forcing mapping reload")
			if err := controller.ForceReload(ctx); err != nil {
				logger.Error("force reload failed", "error", err)
				monitor.Update("reload_controller", health.FromError("reload_controller", err))
				continue
			}
			monitor.UpdateHealthy("reload_controller", "force reload succeeded")
		}
	}
}

// healthzHandler serves the aggregated component health tracked by
// monitor as JSON, returning 503 if any component is unhealthy.
func healthzHandler(monitor *health.Monitor) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		statuses := monitor.GetAll()
		agg := health.Aggregate("mapengine", statusValues(statuses))

		w.Header().Set("Content-Type", "application/json")
		if agg.IsUnhealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(agg)
	}
}

func statusValues(m map[string]health.Status) []health.Status {
	out := make([]health.Status, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	return out
}

// processStdin reads one JSON record per line from stdin, projects each
// through eng, and writes the framed output (or the untouched raw
// record on a mapping miss) as one JSON line to stdout. Reading stops
// when ctx is cancelled or input is exhausted.
func processStdin(ctx context.Context, eng *orchestrator.Orchestrator, cfg *CLIConfig, logger *slog.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	meta := orchestrator.RecordMeta{Topic: cfg.Topic, Connector: cfg.Connector}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		record := append([]byte(nil), line...)

		result := eng.Process(record, meta)
		for _, ev := range result.Events {
			logger.Debug("record event",
				"stage", ev.Stage, "kind", ev.Kind, "field", ev.Field,
				"correlation_id", ev.CorrelationID, "message", ev.Message)
		}

		if result.Err != nil {
			logger.Error("record processing failed", "error", result.Err, "correlation_id", result.CorrelationID)
			continue
		}

		var out []byte
		var err error
		if result.Passthrough {
			out = record
		} else {
			out, err = marshalOutput(result.Output)
			if err != nil {
				logger.Error("failed to marshal projected output", "error", err, "correlation_id", result.CorrelationID)
				continue
			}
		}

		if _, err := writer.Write(out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return writer.Flush()
}

// marshalOutput serializes a projected output tree, preserving the
// template's declared key order via jsontree.OrderedObject's
// MarshalJSON where the tree carries one.
func marshalOutput(n jsontree.Node) ([]byte, error) {
	return json.Marshal(n)
}
