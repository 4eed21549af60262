// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	Validation    ValidationConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds process identity and listen addresses.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
	GRPCPort  string
}

// ValidationConfig tunes the request validation pipe.
type ValidationConfig struct {
	// SensitiveFields are field names whose values are redacted in
	// reported validation errors, on top of model-level tags.
	SensitiveFields []string
}

// KafkaConfig holds Kafka publisher configuration.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicAccepted string
	TopicRejected string
	Principal     string
}

// ObservabilityConfig holds logging and metrics configuration.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsAddr string
}

// Load reads configuration from environment variables, falling back to
// defaults on missing or unparseable values.
func Load() *Config {
	cfg := &Config{
		Service: ServiceConfig{
			Principal: envOrDefault("SERVICE_PRINCIPAL", "svc-event-ingress"),
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
			GRPCPort:  envOrDefault("GRPC_PORT", "50051"),
		},
		Validation: ValidationConfig{
			SensitiveFields: envOrDefaultStrings("SENSITIVE_FIELDS", []string{"password", "secret", "token", "apiKey"}),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefaultStrings("KAFKA_BROKERS", nil),
			TopicAccepted: envOrDefault("KAFKA_TOPIC_ACCEPTED", "interaction.events.accepted"),
			TopicRejected: envOrDefault("KAFKA_TOPIC_REJECTED", "interaction.events.rejected"),
			Principal:     os.Getenv("KAFKA_PRINCIPAL"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
	}

	// Kafka principal defaults to the service principal
	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Principal
	}

	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultStrings(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
