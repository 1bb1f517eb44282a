package finder

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// urlPattern matches absolute http(s) URLs embedded in prose. Trailing
// punctuation that commonly follows a URL in a sentence is trimmed after
// the match.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// agentReport is the structured shape the agent is asked to produce,
// either bare or wrapped in an object with a summary.
type agentReport struct {
	Documents     []FoundDocument `json:"documents"`
	SearchSummary string          `json:"search_summary"`
}

// parseReport attempts the strict structured parse of an agent report:
// a JSON array of documents, or an object carrying a documents array.
// Records with an invalid URL are dropped, not defaulted.
func parseReport(report string) ([]FoundDocument, string, error) {
	trimmed := strings.TrimSpace(report)
	if trimmed == "" {
		return nil, "", fmt.Errorf("empty report")
	}

	var docs []FoundDocument
	var summary string
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal([]byte(trimmed), &docs); err != nil {
			return nil, "", fmt.Errorf("malformed document array: %w", err)
		}
	case strings.HasPrefix(trimmed, "{"):
		var wrapped agentReport
		if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
			return nil, "", fmt.Errorf("malformed report object: %w", err)
		}
		docs = wrapped.Documents
		summary = wrapped.SearchSummary
	default:
		return nil, "", fmt.Errorf("report is not structured data")
	}

	valid := make([]FoundDocument, 0, len(docs))
	for _, doc := range docs {
		if !validAbsoluteURL(doc.URL) {
			continue
		}
		valid = append(valid, doc)
	}
	return valid, summary, nil
}

// recoverDocuments is the fallback for unstructured agent output: scan
// the raw text for URL-like substrings and build best-effort records
// with a document type inferred from the URL itself.
func recoverDocuments(report string) []FoundDocument {
	var docs []FoundDocument
	seen := make(map[string]bool)
	for _, match := range urlPattern.FindAllString(report, -1) {
		u := strings.TrimRight(match, ".,;:!?)]")
		if !validAbsoluteURL(u) || seen[u] {
			continue
		}
		seen[u] = true

		docType := inferDocumentType(u)
		docs = append(docs, FoundDocument{
			Title:        docType + " Document",
			URL:          u,
			DocumentType: docType,
			Description:  "Extracted from agent final result",
		})
	}
	return docs
}

func inferDocumentType(u string) string {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, "annual"):
		return "Annual Report"
	case strings.Contains(lower, "news"), strings.Contains(lower, "press"):
		return "News Article"
	case strings.Contains(lower, "report"):
		return "Report"
	case strings.Contains(lower, "article"):
		return "Article"
	case strings.HasSuffix(lower, ".pdf"):
		return "PDF"
	default:
		return "Document"
	}
}

func validAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
