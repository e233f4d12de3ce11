package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/nuclearops/lera/pkg/models"
)

// Logical index names the chat service queries. They key the search
// configuration file and the tool-to-index binding in the search layer.
const (
	IndexNureg               = "nureg"
	IndexReportabilityManual = "reportability_manual"
	IndexTSNaive             = "ts_naive_search"
	IndexUFSARNaive          = "ufsar_naive_search"
)

// SearchIndexConfig describes how one logical index is queried.
type SearchIndexConfig struct {
	// IndexNameSetting names the environment variable holding the
	// physical index name. A non-empty environment value overrides
	// index_name from the file.
	IndexNameSetting  string            `yaml:"index_name_setting"`
	IndexName         string            `yaml:"index_name,omitempty"`
	SearchType        models.SearchType `yaml:"search_type"`
	KNearestNeighbors int               `yaml:"k_nearest_neighbors,omitempty"`
	Top               int               `yaml:"top,omitempty"`
	SearchFields      []string          `yaml:"search_fields,omitempty"`
	SelectFields      []string          `yaml:"select_fields,omitempty"`
	VectorFields      string            `yaml:"vector_fields,omitempty"`
	Threshold         float64           `yaml:"threshold,omitempty"`
}

// resolveIndexName fills IndexName from the configured environment
// variable, keeping any literal index_name as the fallback.
func (c *SearchIndexConfig) resolveIndexName() {
	if c.IndexNameSetting == "" {
		return
	}
	if name := os.Getenv(c.IndexNameSetting); name != "" {
		c.IndexName = name
	}
}

// SearchIndexRegistry holds the queryable index configurations.
type SearchIndexRegistry struct {
	indexes map[string]*SearchIndexConfig
}

// NewSearchIndexRegistry creates a registry from the loaded index map.
func NewSearchIndexRegistry(indexes map[string]*SearchIndexConfig) *SearchIndexRegistry {
	if indexes == nil {
		indexes = make(map[string]*SearchIndexConfig)
	}
	return &SearchIndexRegistry{indexes: indexes}
}

// Get retrieves an index configuration by logical name.
func (r *SearchIndexRegistry) Get(name string) (*SearchIndexConfig, error) {
	cfg, ok := r.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	}
	return cfg, nil
}

// Len returns the number of configured indexes.
func (r *SearchIndexRegistry) Len() int {
	return len(r.indexes)
}

// Names returns the configured logical index names, sorted.
func (r *SearchIndexRegistry) Names() []string {
	names := make([]string, 0, len(r.indexes))
	for name := range r.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
