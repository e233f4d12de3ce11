package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DefaultSearchConfigPath is where the search index configuration lives
// unless SEARCH_CONFIG_PATH points elsewhere.
const DefaultSearchConfigPath = "config/search_indexes.yaml"

// SearchIndexesYAMLConfig represents the complete search_indexes.yaml
// file structure.
type SearchIndexesYAMLConfig struct {
	// Defaults are merged into every index entry for unset fields.
	Defaults      *SearchIndexConfig            `yaml:"defaults"`
	SearchIndexes map[string]*SearchIndexConfig `yaml:"search_indexes"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Resolve env-backed settings (server, stream, llm, search, storage)
//  2. Load the search index YAML file
//  3. Expand environment variables
//  4. Merge per-index entries with file defaults
//  5. Resolve physical index names from the environment
//  6. Build the index registry
//  7. Validate all configuration
//  8. Return Config ready for use
func Initialize(ctx context.Context) (*Config, error) {
	searchConfigPath := getEnv("SEARCH_CONFIG_PATH", DefaultSearchConfigPath)
	log := slog.With("search_config", searchConfigPath)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, searchConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized successfully",
		"search_indexes", cfg.IndexRegistry.Len(),
		"index_names", cfg.IndexRegistry.Names(),
		"orchestration", cfg.Stream.DefaultOrchestration,
		"buffer_size", cfg.Stream.BufferSize)

	return cfg, nil
}

// load is the internal loader (not exported)
func load(_ context.Context, searchConfigPath string) (*Config, error) {
	indexesConfig, err := loadSearchIndexesYAML(searchConfigPath)
	if err != nil {
		return nil, NewLoadError(searchConfigPath, err)
	}

	// Merge file defaults into each index entry, then resolve the
	// physical index name through the environment.
	for name, index := range indexesConfig.SearchIndexes {
		if index == nil {
			index = &SearchIndexConfig{}
			indexesConfig.SearchIndexes[name] = index
		}
		if indexesConfig.Defaults != nil {
			if err := mergo.Merge(index, indexesConfig.Defaults); err != nil {
				return nil, fmt.Errorf("failed to merge defaults for index %q: %w", name, err)
			}
		}
		index.resolveIndexName()
	}

	return &Config{
		searchConfigPath: searchConfigPath,
		Server:           resolveServerConfig(),
		Stream:           resolveStreamConfig(),
		LLM:              resolveLLMConfig(),
		Search:           resolveSearchConfig(),
		Storage:          resolveStorageConfig(),
		Telemetry:        resolveTelemetryConfig(),
		IndexRegistry:    NewSearchIndexRegistry(indexesConfig.SearchIndexes),
	}, nil
}

// validate performs comprehensive validation on loaded configuration
func validate(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

func loadSearchIndexesYAML(path string) (*SearchIndexesYAMLConfig, error) {
	var config SearchIndexesYAMLConfig

	// Initialize map to avoid nil map
	config.SearchIndexes = make(map[string]*SearchIndexConfig)

	if err := loadYAML(path, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func loadYAML(path string, target any) error {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Expand environment variables using {{.VAR}} template syntax
	// Note: ExpandEnv passes through original data on parse/execution errors,
	// allowing YAML parser to handle the content (or fail with clearer error message)
	data = ExpandEnv(data)

	// Parse YAML
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}
