package config

import (
	"fmt"

	"github.com/nuclearops/lera/pkg/models"
)

// ConfigValidator validates configuration comprehensively with clear error messages
type ConfigValidator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast - stops at first error)
func (v *ConfigValidator) ValidateAll() error {
	// Validate in order: service credentials → search indexes
	// This surfaces missing secrets before per-index mistakes

	if err := v.validateLLM(); err != nil {
		return fmt.Errorf("LLM validation failed: %w", err)
	}

	if err := v.validateSearch(); err != nil {
		return fmt.Errorf("search service validation failed: %w", err)
	}

	if err := v.validateStorage(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}

	if err := v.validateSearchIndexes(); err != nil {
		return fmt.Errorf("search index validation failed: %w", err)
	}

	return nil
}

func (v *ConfigValidator) validateLLM() error {
	llm := v.cfg.LLM
	if llm.APIKey == "" {
		return NewValidationError("llm", "azure_openai", "AZURE_OPENAI_API_KEY", ErrMissingRequiredField)
	}
	if llm.Endpoint == "" {
		return NewValidationError("llm", "azure_openai", "AZURE_OPENAI_ENDPOINT", ErrMissingRequiredField)
	}
	if llm.Deployment == "" {
		return NewValidationError("llm", "azure_openai", "AZURE_OPENAI_DEPLOYMENT", ErrMissingRequiredField)
	}
	return nil
}

func (v *ConfigValidator) validateSearch() error {
	search := v.cfg.Search
	if search.Endpoint == "" {
		return NewValidationError("search", "azure_ai_search", "AZURE_SEARCH_SERVICE_ENDPOINT", ErrMissingRequiredField)
	}
	if search.APIKey == "" {
		return NewValidationError("search", "azure_ai_search", "AZURE_SEARCH_API_KEY", ErrMissingRequiredField)
	}
	return nil
}

func (v *ConfigValidator) validateStorage() error {
	storage := v.cfg.Storage
	if storage.AccountKey == "" {
		return NewValidationError("storage", "azure_blob", "AZURE_BLOB_KEY", ErrMissingRequiredField)
	}
	if storage.SASExpiryDays <= 0 {
		return NewValidationError("storage", "azure_blob", "SAS_TOKEN_EXPIRATIONS_DAYS", ErrInvalidValue)
	}
	return nil
}

func (v *ConfigValidator) validateSearchIndexes() error {
	if v.cfg.IndexRegistry.Len() == 0 {
		return NewValidationError("search_index", "registry", "", fmt.Errorf("at least one search index required"))
	}

	for _, name := range v.cfg.IndexRegistry.Names() {
		index, err := v.cfg.IndexRegistry.Get(name)
		if err != nil {
			return err
		}

		if index.IndexName == "" {
			return NewValidationError("search_index", name, "index_name",
				fmt.Errorf("%w (set %s or index_name)", ErrMissingRequiredField, index.IndexNameSetting))
		}
		if !index.SearchType.Valid() {
			return NewValidationError("search_index", name, "search_type",
				fmt.Errorf("%w: %q", ErrInvalidValue, index.SearchType))
		}
		if index.Top <= 0 {
			return NewValidationError("search_index", name, "top", fmt.Errorf("must be at least 1"))
		}
		if len(index.SelectFields) == 0 {
			return NewValidationError("search_index", name, "select_fields", ErrMissingRequiredField)
		}

		switch index.SearchType {
		case models.SearchFullText:
			if len(index.SearchFields) == 0 {
				return NewValidationError("search_index", name, "search_fields", ErrMissingRequiredField)
			}
		case models.SearchVector:
			if index.VectorFields == "" {
				return NewValidationError("search_index", name, "vector_fields", ErrMissingRequiredField)
			}
			if index.KNearestNeighbors <= 0 {
				return NewValidationError("search_index", name, "k_nearest_neighbors", fmt.Errorf("must be at least 1"))
			}
		case models.SearchHybrid:
			if len(index.SearchFields) == 0 {
				return NewValidationError("search_index", name, "search_fields", ErrMissingRequiredField)
			}
			if index.VectorFields == "" {
				return NewValidationError("search_index", name, "vector_fields", ErrMissingRequiredField)
			}
			if index.KNearestNeighbors <= 0 {
				return NewValidationError("search_index", name, "k_nearest_neighbors", fmt.Errorf("must be at least 1"))
			}
		}
	}

	return nil
}
