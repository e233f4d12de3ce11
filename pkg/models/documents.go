package models

import (
	"fmt"
	"strings"
)

// SearchType selects how a query is executed against an index.
type SearchType string

const (
	SearchFullText SearchType = "FullText"
	SearchVector   SearchType = "Vector"
	SearchHybrid   SearchType = "Hybrid"
)

// Valid reports whether the search type is one of the supported modes.
func (t SearchType) Valid() bool {
	switch t {
	case SearchFullText, SearchVector, SearchHybrid:
		return true
	}
	return false
}

// ResultKind tags the concrete PluginResult variant.
type ResultKind string

const (
	KindNuregSection        ResultKind = "nureg_section"
	KindReportabilityManual ResultKind = "reportability_manual"
	KindNaiveChunk          ResultKind = "naive_chunk"
)

// URLSigner mints signed, time-limited read URLs for stored documents.
// The production implementation signs Azure blob SAS tokens; tests use
// a static stub.
type URLSigner interface {
	SignedURL(account, container, blobName string, page int) (string, error)
}

// DocumentMeta carries the fields shared by every search hit variant.
// The JSON tags match the index field names so hits decode directly.
// Cited and SearchQuery are runtime state, never decoded from a hit.
type DocumentMeta struct {
	ID                 string `json:"id"`
	StorageAccountName string `json:"storageAccountName"`
	ContainerName      string `json:"containerName"`
	BlobName           string `json:"blobName"`
	PageNumber         int    `json:"pageNumber"`

	Cited       bool   `json:"-"`
	SearchQuery string `json:"-"`
}

// Meta exposes the shared fields to code holding the interface.
func (m *DocumentMeta) Meta() *DocumentMeta { return m }

// ResolveURL builds the signed, page-anchored URL for the backing blob.
func (m *DocumentMeta) ResolveURL(signer URLSigner) (string, error) {
	return signer.SignedURL(m.StorageAccountName, m.ContainerName, m.BlobName, m.PageNumber)
}

// PluginResult is a typed search hit registered in the request context.
// Each variant renders two forms: a dense agent string fed to models and
// a display value shown to the user in citation lines.
type PluginResult interface {
	Meta() *DocumentMeta
	Kind() ResultKind
	DisplayValue() string
	AgentString() string
}

// Example is one illustrative event attached to a NUREG section.
type Example struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NuregSection is a hit from the NUREG 1022 Section 3.2 index.
type NuregSection struct {
	DocumentMeta

	Section     string    `json:"section"`
	LXXII       []string  `json:"lxxii"`
	LXXIII      []string  `json:"lxxiii"`
	Description string    `json:"description"`
	Discussion  string    `json:"discussion"`
	Examples    []Example `json:"examples"`
}

func (s *NuregSection) Kind() ResultKind     { return KindNuregSection }
func (s *NuregSection) DisplayValue() string { return s.Section }

// AgentString renders the section the way the knowledge prompts expect.
func (s *NuregSection) AgentString() string {
	examples := "None"
	if len(s.Examples) > 0 {
		lines := make([]string, 0, len(s.Examples))
		for _, ex := range s.Examples {
			lines = append(lines, fmt.Sprintf("- %s: %s", ex.Title, ex.Description))
		}
		examples = strings.Join(lines, "\n")
	}
	return "NUREG Section 3.2 Entry:\n" +
		"Document Id: " + s.ID + "\n" +
		"Section Name: " + s.Section + "\n" +
		"10 CFR 50.72: " + strings.Join(s.LXXII, ", ") + "\n" +
		"10 CFR 50.73: " + strings.Join(s.LXXIII, ", ") + "\n" +
		"Description: \n" + s.Description + "\n" +
		"Discussion: \n" + s.Discussion + "\n" +
		"Examples:\n" + examples
}

// RequiredNotification is one notification duty listed in a manual entry.
type RequiredNotification struct {
	TimeLimit    string `json:"timeLimit"`
	Notification string `json:"notification"`
}

// RequiredReport is one written-report duty listed in a manual entry.
type RequiredReport struct {
	TimeLimit    string `json:"timeLimit"`
	Notification string `json:"notification"`
}

// ReportabilityManual is a hit from the reportability manual index.
type ReportabilityManual struct {
	DocumentMeta

	SectionName            string                 `json:"sectionName"`
	References             []string               `json:"references"`
	ReferenceContent       string                 `json:"referenceContent"`
	Discussion             string                 `json:"discussion"`
	RequiredNotifications  []RequiredNotification `json:"requiredNotifications"`
	RequiredWrittenReports []RequiredReport       `json:"requiredWrittenReports"`
}

func (s *ReportabilityManual) Kind() ResultKind     { return KindReportabilityManual }
func (s *ReportabilityManual) DisplayValue() string { return s.SectionName }

// AgentString renders the manual entry with its notification and report
// duties as bulleted time-limit lines.
func (s *ReportabilityManual) AgentString() string {
	notifications := "None"
	if len(s.RequiredNotifications) > 0 {
		lines := make([]string, 0, len(s.RequiredNotifications))
		for _, rn := range s.RequiredNotifications {
			lines = append(lines, fmt.Sprintf("- %s: %s", rn.TimeLimit, rn.Notification))
		}
		notifications = strings.Join(lines, "\n")
	}
	reports := "None"
	if len(s.RequiredWrittenReports) > 0 {
		lines := make([]string, 0, len(s.RequiredWrittenReports))
		for _, rr := range s.RequiredWrittenReports {
			lines = append(lines, fmt.Sprintf("- %s: %s", rr.TimeLimit, rr.Notification))
		}
		reports = strings.Join(lines, "\n")
	}
	return "Reportability Manual Entry:\n" +
		"Document Id: " + s.ID + "\n" +
		"Section Name: " + s.SectionName + "\n" +
		"References: \n" + strings.Join(s.References, ", ") + "\n" +
		"Reference Content: \n" + s.ReferenceContent + "\n" +
		"Discussion: \n" + s.Discussion + "\n" +
		"Required Notifications:\n" + notifications + "\n" +
		"Required Reports:\n" + reports
}

// NaiveChunk is a hit from one of the naive (whole-document) indexes.
// Naive hits are not blob backed; they carry their own URL.
type NaiveChunk struct {
	DocumentMeta

	ChunkID string `json:"chunk_id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

func (s *NaiveChunk) Kind() ResultKind     { return KindNaiveChunk }
func (s *NaiveChunk) DisplayValue() string { return s.Title }

// AgentString identifies the chunk by its chunk id, not the shared id.
func (s *NaiveChunk) AgentString() string {
	return "Naive Search Entry:\n" +
		"Document Id: " + s.ChunkID + "\n" +
		"Title: " + s.Title + "\n" +
		"url: \n" + s.URL + "\n" +
		"Content: \n" + s.Content + "\n"
}
