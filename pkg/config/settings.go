package config

import (
	"log/slog"
	"os"
	"strconv"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string
}

// StreamConfig holds streaming and orchestration-selection settings.
type StreamConfig struct {
	BufferSize           int
	DefaultOrchestration string
}

// LLMConfig holds Azure OpenAI settings.
type LLMConfig struct {
	APIKey              string
	Endpoint            string
	Deployment          string
	APIVersion          string
	EmbeddingDeployment string
}

// SearchConfig holds Azure AI Search service settings.
type SearchConfig struct {
	Endpoint string
	APIKey   string
}

// StorageConfig holds blob SAS signing settings.
type StorageConfig struct {
	AccountKey    string
	AccountDomain string
	SASExpiryDays float64
}

// TelemetryConfig holds trace export settings.
type TelemetryConfig struct {
	OTLPEndpoint string
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resolveServerConfig resolves listener settings from the environment.
func resolveServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr: getEnv("SERVER_ADDR", ":8080"),
	}
}

// resolveStreamConfig resolves streaming settings from the environment,
// falling back to defaults on unparsable values.
func resolveStreamConfig() *StreamConfig {
	cfg := &StreamConfig{
		BufferSize:           5,
		DefaultOrchestration: "concurrent",
	}

	if raw := os.Getenv("STREAM_BUFFER_SIZE"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			cfg.BufferSize = size
		} else {
			slog.Warn("Invalid STREAM_BUFFER_SIZE, using default",
				"value", raw,
				"default", cfg.BufferSize)
		}
	}
	if orchestration := os.Getenv("ORCHESTRATION_TYPE"); orchestration != "" {
		cfg.DefaultOrchestration = orchestration
	}

	return cfg
}

// resolveLLMConfig resolves Azure OpenAI settings from the environment.
func resolveLLMConfig() *LLMConfig {
	return &LLMConfig{
		APIKey:              os.Getenv("AZURE_OPENAI_API_KEY"),
		Endpoint:            os.Getenv("AZURE_OPENAI_ENDPOINT"),
		Deployment:          os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
		APIVersion:          getEnv("AZURE_OPENAI_API_VERSION", "2024-10-21"),
		EmbeddingDeployment: os.Getenv("AZURE_EMBEDDING_DEPLOYMENT"),
	}
}

// resolveSearchConfig resolves Azure AI Search settings from the environment.
func resolveSearchConfig() *SearchConfig {
	return &SearchConfig{
		Endpoint: os.Getenv("AZURE_SEARCH_SERVICE_ENDPOINT"),
		APIKey:   os.Getenv("AZURE_SEARCH_API_KEY"),
	}
}

// resolveStorageConfig resolves blob signing settings from the environment,
// falling back to defaults on unparsable values.
func resolveStorageConfig() *StorageConfig {
	cfg := &StorageConfig{
		AccountKey:    os.Getenv("AZURE_BLOB_KEY"),
		AccountDomain: getEnv("AZURE_BLOB_ACCOUNT_DOMAIN", "blob.core.usgovcloudapi.net"),
		SASExpiryDays: 1,
	}

	if raw := os.Getenv("SAS_TOKEN_EXPIRATIONS_DAYS"); raw != "" {
		if days, err := strconv.ParseFloat(raw, 64); err == nil && days > 0 {
			cfg.SASExpiryDays = days
		} else {
			slog.Warn("Invalid SAS_TOKEN_EXPIRATIONS_DAYS, using default",
				"value", raw,
				"default", cfg.SASExpiryDays)
		}
	}

	return cfg
}

// resolveTelemetryConfig resolves trace export settings from the environment.
func resolveTelemetryConfig() *TelemetryConfig {
	return &TelemetryConfig{
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}
