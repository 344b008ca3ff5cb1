package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	// Server
	GRPCHost          string        `yaml:"grpc_host"`
	GRPCPort          int           `yaml:"grpc_port"`
	HTTPPort          int           `yaml:"http_port"`
	MaxConcurrentRPCs int           `yaml:"grpc_max_workers"`
	APIKeys           []string      `yaml:"api_keys"`
	ResultTimeout     time.Duration `yaml:"result_timeout"`

	// Worker
	WorkerCommand     string        `yaml:"worker_command"`
	WorkerIdleTimeout time.Duration `yaml:"worker_idle_timeout"`
	Generator         string        `yaml:"generator"`
	GeneratorCommand  string        `yaml:"generator_command"`
	GeneratorTimeout  time.Duration `yaml:"generator_timeout"`

	// Database
	DatabasePath string `yaml:"db_path"`

	// Events
	EventsBackend string `yaml:"events_backend"`
	NATSURL       string `yaml:"nats_url"`
	MQTTBroker    string `yaml:"mqtt_broker"`
	EventsTopic   string `yaml:"events_topic"`

	// Artifacts
	ArtifactBackend string `yaml:"artifact_backend"`
	ArtifactRoot    string `yaml:"artifact_root"`
	MinIOEndpoint   string `yaml:"minio_endpoint"`
	MinIOAccessKey  string `yaml:"minio_access_key"`
	MinIOSecretKey  string `yaml:"minio_secret_key"`
	MinIOBucket     string `yaml:"minio_bucket"`
	MinIOUseSSL     bool   `yaml:"minio_use_ssl"`

	// Tracing
	OTelExporter string `yaml:"otel_exporter"`
	OTelEndpoint string `yaml:"otel_endpoint"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// LoadConfig loads configuration from environment variables with defaults,
// then overlays the YAML file named by IMAGEGEN_CONFIG if set
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Server
		GRPCHost:          getEnv("GRPC_HOST", "0.0.0.0"),
		GRPCPort:          getEnvAsInt("GRPC_PORT", 50051),
		HTTPPort:          getEnvAsInt("HTTP_PORT", 8000),
		MaxConcurrentRPCs: getEnvAsInt("GRPC_MAX_WORKERS", 10),
		APIKeys:           getEnvAsList("API_KEYS", []string{"client1"}),
		ResultTimeout:     getEnvAsDuration("RESULT_TIMEOUT", 10*time.Minute),

		// Worker
		WorkerCommand:     getEnv("WORKER_COMMAND", defaultWorkerCommand()),
		WorkerIdleTimeout: time.Duration(getEnvAsInt("WORKER_IDLE_SEC", 60)) * time.Second,
		Generator:         getEnv("GENERATOR", "procedural"),
		GeneratorCommand:  getEnv("GENERATOR_COMMAND", ""),
		GeneratorTimeout:  getEnvAsDuration("GENERATOR_TIMEOUT", 5*time.Minute),

		// Database
		DatabasePath: getEnv("DB_PATH", "imagegen.db"),

		// Events
		EventsBackend: getEnv("EVENTS_BACKEND", "none"),
		NATSURL:       getEnv("NATS_URL", "nats://localhost:4222"),
		MQTTBroker:    getEnv("MQTT_BROKER", "localhost:1883"),
		EventsTopic:   getEnv("EVENTS_TOPIC", "imagegen.jobs"),

		// Artifacts
		ArtifactBackend: getEnv("ARTIFACT_BACKEND", "none"),
		ArtifactRoot:    getEnv("ARTIFACT_ROOT", "artifacts"),
		MinIOEndpoint:   getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:     getEnv("MINIO_BUCKET", "imagegen-artifacts"),
		MinIOUseSSL:     getEnvAsBool("MINIO_USE_SSL", false),

		// Tracing
		OTelExporter: getEnv("OTEL_EXPORTER", "none"),
		OTelEndpoint: getEnv("OTEL_ENDPOINT", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if path := os.Getenv("IMAGEGEN_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// LoadFile overlays values from a YAML file onto the configuration.
// Keys absent from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("grpc_port out of range: %d", c.GRPCPort)
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port out of range: %d", c.HTTPPort)
	}
	if c.MaxConcurrentRPCs <= 0 {
		return fmt.Errorf("grpc_max_workers must be positive")
	}
	if len(c.APIKeys) == 0 {
		return fmt.Errorf("at least one api key is required")
	}
	if c.WorkerIdleTimeout <= 0 {
		return fmt.Errorf("worker_idle_timeout must be positive")
	}
	if c.ResultTimeout <= 0 {
		return fmt.Errorf("result_timeout must be positive")
	}
	switch c.Generator {
	case "procedural":
	case "command":
		if c.GeneratorCommand == "" {
			return fmt.Errorf("generator_command is required when generator=command")
		}
	default:
		return fmt.Errorf("unknown generator %q", c.Generator)
	}
	switch c.EventsBackend {
	case "none", "nats", "mqtt":
	default:
		return fmt.Errorf("unknown events_backend %q", c.EventsBackend)
	}
	switch c.ArtifactBackend {
	case "none", "local", "minio":
	default:
		return fmt.Errorf("unknown artifact_backend %q", c.ArtifactBackend)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return defaultValue
	}
}

// getEnvAsList splits a comma-separated variable, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// defaultWorkerCommand points at the worker binary installed next to the running executable
func defaultWorkerCommand() string {
	exe, err := os.Executable()
	if err != nil {
		return "imagegen-worker"
	}
	return filepath.Join(filepath.Dir(exe), "imagegen-worker")
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return c.GRPCHost + ":" + strconv.Itoa(c.GRPCPort)
}

// GetHTTPAddress returns the metrics listen address
func (c *Config) GetHTTPAddress() string {
	return "0.0.0.0:" + strconv.Itoa(c.HTTPPort)
}

// GetLogLevel converts the log level string to LogLevel type
func (c *Config) GetLogLevel() LogLevel {
	return ParseLogLevel(c.LogLevel)
}
