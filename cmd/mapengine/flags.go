package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration, mirroring the recognized
// configuration table.
type CLIConfig struct {
	LogLevel  string
	LogFormat string

	MappingSource   string // classpath | s3
	MappingLocation string

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	HotReloadEnabled  bool
	HotReloadInterval time.Duration

	FailOnMissingMapping bool
	AttachSourceMetadata bool
	StoreRawPayload      bool
	Framing              string // wrapped | flat

	Topic     string
	Connector string

	HealthPort      int
	ShutdownTimeout time.Duration

	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("MAPENGINE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: MAPENGINE_LOG_LEVEL)")
	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("MAPENGINE_LOG_FORMAT", "json"),
		"Log format: json, text (env: MAPENGINE_LOG_FORMAT)")

	flag.StringVar(&cfg.MappingSource, "mapping-source",
		getEnv("MAPENGINE_MAPPING_SOURCE", "classpath"),
		"Mapping document source: classpath or s3 (env: MAPENGINE_MAPPING_SOURCE)")
	flag.StringVar(&cfg.MappingLocation, "mapping-location",
		getEnv("MAPENGINE_MAPPING_LOCATION", "mappings/topic-mappings.json"),
		"In-package path or remote object key (env: MAPENGINE_MAPPING_LOCATION)")

	flag.StringVar(&cfg.S3Endpoint, "s3-endpoint", getEnv("MAPENGINE_S3_ENDPOINT", ""), "S3-compatible endpoint")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", getEnv("MAPENGINE_S3_BUCKET", ""), "S3 bucket")
	flag.StringVar(&cfg.S3Region, "s3-region", getEnv("MAPENGINE_S3_REGION", "us-east-1"), "S3 region")
	flag.StringVar(&cfg.S3AccessKey, "s3-access-key", getEnv("MAPENGINE_S3_ACCESS_KEY", ""), "S3 access key")
	flag.StringVar(&cfg.S3SecretKey, "s3-secret-key", getEnv("MAPENGINE_S3_SECRET_KEY", ""), "S3 secret key")
	flag.BoolVar(&cfg.S3UseSSL, "s3-use-ssl", getEnvBool("MAPENGINE_S3_USE_SSL", true), "Use TLS for S3 connections")

	flag.BoolVar(&cfg.HotReloadEnabled, "hot-reload",
		getEnvBool("MAPENGINE_HOT_RELOAD", false),
		"Start the Reload Controller (env: MAPENGINE_HOT_RELOAD)")
	flag.DurationVar(&cfg.HotReloadInterval, "hot-reload-interval",
		getEnvDuration("MAPENGINE_HOT_RELOAD_INTERVAL", 30*time.Second),
		"Reload poll interval (env: MAPENGINE_HOT_RELOAD_INTERVAL)")

	flag.BoolVar(&cfg.FailOnMissingMapping, "fail-on-missing-mapping",
		getEnvBool("MAPENGINE_FAIL_ON_MISSING_MAPPING", false),
		"Elevate mapping-miss log to error (env: MAPENGINE_FAIL_ON_MISSING_MAPPING)")
	flag.BoolVar(&cfg.AttachSourceMetadata, "attach-source-metadata",
		getEnvBool("MAPENGINE_ATTACH_SOURCE_METADATA", true),
		"Emit metadata side-channel under wrapped framing (env: MAPENGINE_ATTACH_SOURCE_METADATA)")
	flag.BoolVar(&cfg.StoreRawPayload, "store-raw-payload",
		getEnvBool("MAPENGINE_STORE_RAW_PAYLOAD", false),
		"Emit verbatim input side-channel under wrapped framing (env: MAPENGINE_STORE_RAW_PAYLOAD)")
	flag.StringVar(&cfg.Framing, "framing",
		getEnv("MAPENGINE_FRAMING", "wrapped"),
		"Top-level output framing: wrapped or flat (env: MAPENGINE_FRAMING)")

	flag.StringVar(&cfg.Topic, "topic", getEnv("MAPENGINE_TOPIC", ""), "Topic name for mapping lookup")
	flag.StringVar(&cfg.Connector, "connector", getEnv("MAPENGINE_CONNECTOR", ""), "Connector name for mapping lookup")

	flag.IntVar(&cfg.HealthPort, "health-port",
		getEnvInt("MAPENGINE_HEALTH_PORT", 8080),
		"Prometheus metrics port, 0 to disable (env: MAPENGINE_HEALTH_PORT)")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("MAPENGINE_SHUTDOWN_TIMEOUT", 5*time.Second),
		"Graceful shutdown timeout (env: MAPENGINE_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if !contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if !contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if !contains([]string{"classpath", "s3"}, cfg.MappingSource) {
		return fmt.Errorf("invalid mapping source: %s", cfg.MappingSource)
	}
	if !contains([]string{"wrapped", "flat"}, cfg.Framing) {
		return fmt.Errorf("invalid framing: %s", cfg.Framing)
	}
	if cfg.MappingSource == "s3" && cfg.S3Endpoint != "" {
		if cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			return fmt.Errorf("s3 mapping source requires bucket, access key, and secret key")
		}
	}
	if cfg.HealthPort < 0 || cfg.HealthPort > 65535 {
		return fmt.Errorf("invalid health port: %d", cfg.HealthPort)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - per-message JSON stream transformation engine

Usage: %s [options] < records.ndjson > output.ndjson

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Process NDJSON records from stdin using a packaged mapping
  %s --topic=assessment < records.ndjson

  # Poll an S3-compatible bucket for mapping changes every 15s
  %s --mapping-source=s3 --s3-endpoint=minio:9000 --s3-bucket=mappings \
     --hot-reload --hot-reload-interval=15s --topic=assessment

Version: %s
Build: %s
`, os.Args[0], os.Args[0], Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
