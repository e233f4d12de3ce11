package config

// Config is the umbrella configuration object that encapsulates
// all settings and the search index registry.
// This is the primary object returned by Initialize() and used throughout the application.
type Config struct {
	searchConfigPath string // Search configuration file path (for reference)

	Server    *ServerConfig
	Stream    *StreamConfig
	LLM       *LLMConfig
	Search    *SearchConfig
	Storage   *StorageConfig
	Telemetry *TelemetryConfig

	IndexRegistry *SearchIndexRegistry
}

// Initialize is defined in loader.go

// SearchConfigPath returns the search configuration file path.
func (c *Config) SearchConfigPath() string {
	return c.searchConfigPath
}

// GetSearchIndex retrieves a search index configuration by logical name.
// This is a convenience method that wraps IndexRegistry.Get().
func (c *Config) GetSearchIndex(name string) (*SearchIndexConfig, error) {
	return c.IndexRegistry.Get(name)
}
