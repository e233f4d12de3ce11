package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestExpandEnv(t *testing.T) {
	tests := []struct {
		name  string
		input string
		env   map[string]string
		want  string
	}{
		{
			name:  "index name from environment",
			input: "index_name: {{.AZURE_SEARCH_NUREG_INDEX}}",
			env:   map[string]string{"AZURE_SEARCH_NUREG_INDEX": "nureg-v3"},
			want:  "index_name: nureg-v3",
		},
		{
			name:  "literal ${VAR} is NOT expanded (no collision)",
			input: "search_fields: [section, ${description}]",
			env:   map[string]string{"description": "should-not-appear"},
			want:  "search_fields: [section, ${description}]",
		},
		{
			name:  "dollar in field values is NOT expanded",
			input: "filter: search.ismatch('$top')",
			env:   map[string]string{},
			want:  "filter: search.ismatch('$top')",
		},
		{
			name:  "multiple substitutions in one line",
			input: "endpoint: {{.AZURE_SEARCH_SERVICE_ENDPOINT}}/indexes('{{.AZURE_SEARCH_MANUAL_INDEX}}')",
			env: map[string]string{
				"AZURE_SEARCH_SERVICE_ENDPOINT": "https://search.example.usgovcloudapi.net",
				"AZURE_SEARCH_MANUAL_INDEX":     "manual-v2",
			},
			want: "endpoint: https://search.example.usgovcloudapi.net/indexes('manual-v2')",
		},
		{
			name:  "missing variable expands to empty",
			input: "index_name: {{.AZURE_SEARCH_UNSET_INDEX}}",
			env:   map[string]string{},
			want:  "index_name: ",
		},
		{
			name:  "mixed present and missing variables",
			input: "nureg: {{.AZURE_SEARCH_NUREG_INDEX}}\nufsar: {{.AZURE_SEARCH_UFSAR_NAIVE_INDEX}}",
			env:   map[string]string{"AZURE_SEARCH_NUREG_INDEX": "nureg-v3"},
			want:  "nureg: nureg-v3\nufsar: ",
		},
		{
			name:  "no substitution when no variables",
			input: "search_type: Hybrid",
			env:   map[string]string{"AZURE_SEARCH_NUREG_INDEX": "nureg-v3"},
			want:  "search_type: Hybrid",
		},
		{
			name:  "variables in YAML array",
			input: "select_fields:\n  - {{.ID_FIELD}}\n  - {{.SECTION_FIELD}}",
			env: map[string]string{
				"ID_FIELD":      "id",
				"SECTION_FIELD": "sectionName",
			},
			want: "select_fields:\n  - id\n  - sectionName",
		},
		{
			name: "variables in nested index definition",
			input: "search_indexes:\n  nureg:\n" +
				"    index_name: {{.AZURE_SEARCH_NUREG_INDEX}}\n" +
				"    vector_fields: {{.NUREG_VECTOR_FIELD}}",
			env: map[string]string{
				"AZURE_SEARCH_NUREG_INDEX": "nureg-v3",
				"NUREG_VECTOR_FIELD":       "descriptionVector",
			},
			want: "search_indexes:\n  nureg:\n" +
				"    index_name: nureg-v3\n" +
				"    vector_fields: descriptionVector",
		},
		{
			name:  "special characters in expanded value",
			input: "api_key: {{.AZURE_SEARCH_API_KEY}}",
			env:   map[string]string{"AZURE_SEARCH_API_KEY": "k3y!#$%=="},
			want:  "api_key: k3y!#$%==",
		},
		{
			name:  "environment variable with underscores",
			input: "index_name: {{.AZURE_SEARCH_TS_NAIVE_INDEX}}",
			env:   map[string]string{"AZURE_SEARCH_TS_NAIVE_INDEX": "ts-naive-v1"},
			want:  "index_name: ts-naive-v1",
		},
		{
			name:  "adjacent variables without separator",
			input: "index_name: {{.INDEX_PREFIX}}{{.INDEX_VERSION}}",
			env: map[string]string{
				"INDEX_PREFIX":  "nureg-",
				"INDEX_VERSION": "v3",
			},
			want: "index_name: nureg-v3",
		},
		{
			name:  "variable in quoted string",
			input: `blob_domain: "{{.AZURE_BLOB_ACCOUNT_DOMAIN}}"`,
			env:   map[string]string{"AZURE_BLOB_ACCOUNT_DOMAIN": "blob.core.usgovcloudapi.net"},
			want:  `blob_domain: "blob.core.usgovcloudapi.net"`,
		},
		{
			name:  "empty string variable",
			input: "index_name: {{.EMPTY_INDEX}}",
			env:   map[string]string{"EMPTY_INDEX": ""},
			want:  "index_name: ",
		},
		{
			name:  "numeric value in environment variable",
			input: "top: {{.SEARCH_TOP}}",
			env:   map[string]string{"SEARCH_TOP": "5"},
			want:  "top: 5",
		},
		{
			name: "full index file with multiple variables",
			input: `
search_indexes:
  nureg:
    index_name: {{.AZURE_SEARCH_NUREG_INDEX}}
    search_type: Hybrid
  reportability_manual:
    index_name: {{.AZURE_SEARCH_MANUAL_INDEX}}
    search_type: Hybrid
`,
			env: map[string]string{
				"AZURE_SEARCH_NUREG_INDEX":  "nureg-v3",
				"AZURE_SEARCH_MANUAL_INDEX": "manual-v2",
			},
			want: `
search_indexes:
  nureg:
    index_name: nureg-v3
    search_type: Hybrid
  reportability_manual:
    index_name: manual-v2
    search_type: Hybrid
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			result := ExpandEnv([]byte(tt.input))
			assert.Equal(t, tt.want, string(result))
		})
	}
}

func TestExpandEnvPreservesOriginalWhenNoVariables(t *testing.T) {
	input := `
# Search index registry
defaults:
  top: 5
  threshold: 1.0
search_indexes:
  ts_naive_search:
    search_type: Vector
    select_fields:
      - id
      - content
`

	result := ExpandEnv([]byte(input))
	assert.Equal(t, input, string(result), "Content without variables should be unchanged")
}

func TestExpandEnvWithEmptyInput(t *testing.T) {
	result := ExpandEnv([]byte(""))
	assert.Equal(t, "", string(result))
}

func TestExpandEnvPreservesLiteralBackslashN(t *testing.T) {
	// Literal \n sequences (backslash-n, not newline) survive expansion.
	input := `prompt_suffix: {{.SECTION_SEPARATOR}}\nend: value`
	t.Setenv("SECTION_SEPARATOR", "---")

	result := ExpandEnv([]byte(input))
	assert.Contains(t, string(result), `---\nend: value`)
}

func TestExpandEnvThreadSafety(t *testing.T) {
	// Each call builds its own template and env map; concurrent loads of
	// the index file must not interleave.
	input := []byte("index_name: {{.AZURE_SEARCH_NUREG_INDEX}}")
	t.Setenv("AZURE_SEARCH_NUREG_INDEX", "nureg-v3")

	const goroutines = 100
	results := make([]string, goroutines)
	done := make(chan bool)

	for i := 0; i < goroutines; i++ {
		go func(index int) {
			results[index] = string(ExpandEnv(input))
			done <- true
		}(i)
	}
	for i := 0; i < goroutines; i++ {
		<-done
	}

	for i, result := range results {
		assert.Equal(t, "index_name: nureg-v3", result, "Result %d should match", i)
	}
}

// TestExpandEnvMalformedTemplates verifies that malformed template syntax
// is passed through unchanged rather than causing errors. The YAML parser
// then handles the content or fails with a clearer error message.
func TestExpandEnvMalformedTemplates(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unclosed template",
			input: "index_name: {{.AZURE_SEARCH_NUREG_INDEX",
		},
		{
			name:  "only opening braces",
			input: "index_name: {{",
		},
		{
			name:  "single closing brace",
			input: "index_name: {{.AZURE_SEARCH_NUREG_INDEX}",
		},
		{
			name:  "reversed template syntax",
			input: "index_name: }}.AZURE_SEARCH_NUREG_INDEX{{",
		},
		{
			name:  "variable without leading dot",
			input: "index_name: {{AZURE_SEARCH_NUREG_INDEX}}",
		},
		{
			name:  "nested template braces",
			input: "index_name: {{{{.AZURE_SEARCH_NUREG_INDEX}}}}",
		},
		{
			name:  "space in variable name",
			input: "index_name: {{.AZURE_SEARCH NUREG}}",
		},
		{
			name:  "unclosed template inside valid YAML",
			input: "search_type: Hybrid\nindex_name: {{.AZURE_SEARCH_NUREG_INDEX\ntop: 5",
		},
		{
			name:  "multiple unclosed templates",
			input: "nureg: {{.AZURE_SEARCH_NUREG_INDEX\nmanual: {{.AZURE_SEARCH_MANUAL_INDEX}",
		},
		{
			name:  "undefined template function",
			input: `index_name: {{.AZURE_SEARCH_NUREG_INDEX | upper}}`,
		},
		{
			name:  "nested field access on string value",
			input: "index_name: {{.AZURE_SEARCH_NUREG_INDEX.Nope}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AZURE_SEARCH_NUREG_INDEX", "should-not-appear")
			t.Setenv("AZURE_SEARCH_MANUAL_INDEX", "should-not-appear")

			result := ExpandEnv([]byte(tt.input))

			assert.Equal(t, tt.input, string(result),
				"Malformed template should be passed through unchanged")
			assert.NotContains(t, string(result), "should-not-appear",
				"Malformed template should not expand environment variables")
		})
	}
}

// TestExpandEnvPassThroughToYAMLParser verifies that when ExpandEnv
// returns original data due to template errors, yaml.Unmarshal still gets
// its say on the content.
func TestExpandEnvPassThroughToYAMLParser(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectYAMLErr bool
	}{
		{
			name: "valid index YAML without templates",
			input: `
search_indexes:
  nureg:
    index_name: nureg-v3
    search_type: Hybrid
`,
			expectYAMLErr: false,
		},
		{
			name: "malformed template but valid YAML structure",
			input: `
search_type: Hybrid
index_name: "{{.AZURE_SEARCH_NUREG_INDEX"
top: 5
`,
			expectYAMLErr: false,
		},
		{
			name: "malformed template with invalid YAML",
			input: `
search_type: Hybrid
index_name: {{.AZURE_SEARCH_NUREG_INDEX
  invalid: indentation
top: 5
`,
			expectYAMLErr: true,
		},
		{
			name: "unclosed template in quoted array element is valid YAML",
			input: `
search_indexes:
  nureg:
    select_fields: ["id", "{{.SECTION_FIELD"]
`,
			expectYAMLErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expanded := ExpandEnv([]byte(tt.input))

			var result map[string]any
			err := yaml.Unmarshal(expanded, &result)

			if tt.expectYAMLErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, result)
			}
		})
	}
}

// TestExpandEnvReturnsOriginalBytesOnError pins the contract: the original
// byte slice comes back untouched when the template cannot be parsed.
func TestExpandEnvReturnsOriginalBytesOnError(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unclosed template",
			input: "index_name: {{.AZURE_SEARCH_NUREG_INDEX",
		},
		{
			name:  "empty template",
			input: "index_name: {{}}",
		},
		{
			name:  "nested opening inside template",
			input: "index_name: {{.A {{.B}}}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := []byte(tt.input)
			result := ExpandEnv(input)

			assert.Equal(t, tt.input, string(result))
			assert.Equal(t, input, result)
		})
	}
}
