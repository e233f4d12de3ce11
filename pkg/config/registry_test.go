package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclearops/lera/pkg/models"
)

func TestSearchIndexRegistryNamesSorted(t *testing.T) {
	registry := NewSearchIndexRegistry(map[string]*SearchIndexConfig{
		IndexUFSARNaive:          {IndexName: "u"},
		IndexNureg:               {IndexName: "n"},
		IndexTSNaive:             {IndexName: "t"},
		IndexReportabilityManual: {IndexName: "r"},
	})

	assert.Equal(t, 4, registry.Len())
	assert.Equal(t, []string{
		IndexNureg,
		IndexReportabilityManual,
		IndexTSNaive,
		IndexUFSARNaive,
	}, registry.Names())
}

func TestSearchIndexRegistryNilMap(t *testing.T) {
	registry := NewSearchIndexRegistry(nil)
	assert.Equal(t, 0, registry.Len())
	assert.Empty(t, registry.Names())

	_, err := registry.Get(IndexNureg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestResolveIndexNameFromEnvironment(t *testing.T) {
	t.Setenv("TEST_NUREG_INDEX", "nureg-from-env")

	cfg := &SearchIndexConfig{
		IndexNameSetting: "TEST_NUREG_INDEX",
		IndexName:        "nureg-from-file",
		SearchType:       models.SearchFullText,
	}
	cfg.resolveIndexName()
	assert.Equal(t, "nureg-from-env", cfg.IndexName)
}

func TestResolveIndexNameKeepsFileFallback(t *testing.T) {
	t.Setenv("TEST_UNSET_INDEX", "")

	cfg := &SearchIndexConfig{
		IndexNameSetting: "TEST_UNSET_INDEX",
		IndexName:        "from-file",
	}
	cfg.resolveIndexName()
	assert.Equal(t, "from-file", cfg.IndexName)

	noSetting := &SearchIndexConfig{IndexName: "literal"}
	noSetting.resolveIndexName()
	assert.Equal(t, "literal", noSetting.IndexName)
}
