// Package extract turns a page's raw anchors into a deduplicated, classified
// list of document links. It performs no I/O: inputs are the link tuples
// already harvested from a loaded page, so the whole pipeline is pure and
// independently testable.
package extract

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/sushgandhi/browser-use-mcp/pkg/browser"
)

// extensionTable maps file extensions (without the dot) to file types.
var extensionTable = map[string]FileType{
	"pdf":  FileTypePDF,
	"xlsx": FileTypeExcel,
	"xls":  FileTypeExcel,
	"csv":  FileTypeExcel,
	"doc":  FileTypeWord,
	"docx": FileTypeWord,
	"ppt":  FileTypePowerPoint,
	"pptx": FileTypePowerPoint,
	"zip":  FileTypeZip,
	"txt":  FileTypeText,
}

// documentKeywords retain a link even when its extension is not a known
// downloadable type.
var documentKeywords = []string{
	"10-k", "10-q", "8-k", "prospectus", "proxy",
	"filing", "report", "annual", "statement", "earnings",
	"presentation", "whitepaper", "document", "download", "form",
}

// categoryRules are checked in priority order; the first matching rule wins.
// Filing-type codes outrank generic report wording, which outranks forms.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryFiling, []string{"10-k", "10-q", "8-k", "filing", "prospectus", "proxy", "s-1"}},
	{CategoryReport, []string{"report", "annual"}},
	{CategoryForm, []string{"form"}},
}

const (
	maxLinkTextLen   = 100
	maxSampleTextLen = 50
	maxSampleLinks   = 5
)

// Classify converts the anchors of one page into an ExtractionResult.
//
// Links with empty, javascript:, mailto:, tel:, or fragment-only targets are
// discarded. Relative hrefs are resolved against baseURL. A link is retained
// only if its extension maps to a downloadable type or its text carries a
// document keyword; everything else is excluded entirely. Duplicate absolute
// URLs keep the first occurrence, and page order is preserved.
func Classify(anchors []browser.Anchor, baseURL, domain string) *ExtractionResult {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var docLinks []DocumentLink

	for _, anchor := range anchors {
		abs, ok := resolveHref(base, anchor.Href)
		if !ok {
			continue
		}

		fileType := fileTypeOf(abs)
		haystack := strings.ToLower(anchor.Text + " " + anchor.Surrounding + " " + abs)
		if fileType == FileTypeUnknown && !containsAny(haystack, documentKeywords) {
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		docLinks = append(docLinks, DocumentLink{
			URL:        abs,
			Text:       clamp(strings.TrimSpace(anchor.Text), maxLinkTextLen),
			FileType:   fileType,
			Category:   categoryOf(haystack),
			IsDownload: fileType != FileTypeUnknown,
			Source:     domain,
		})
	}

	result := &ExtractionResult{
		URL:             baseURL,
		TotalLinksFound: len(docLinks),
		DocumentLinks:   docLinks,
	}
	for _, link := range docLinks {
		if link.IsDownload {
			result.DownloadLinks = append(result.DownloadLinks, link)
		}
	}

	if len(docLinks) > 0 {
		result.Message = fmt.Sprintf("Found %d document download links", len(docLinks))
	} else {
		result.Message = "No document download links found. The page may not contain downloadable documents."
		result.AllLinksAnalyzed = len(anchors)
		for _, anchor := range anchors {
			if len(result.SampleLinks) >= maxSampleLinks {
				break
			}
			result.SampleLinks = append(result.SampleLinks, SampleLink{
				Text: clamp(strings.TrimSpace(anchor.Text), maxSampleTextLen),
				URL:  anchor.Href,
			})
		}
	}

	return result
}

// resolveHref turns a raw href into an absolute URL, reporting false for
// targets that can never be document links.
func resolveHref(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if !ref.IsAbs() || ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}

// fileTypeOf infers the file type from the URL path's extension.
func fileTypeOf(abs string) FileType {
	u, err := url.Parse(abs)
	if err != nil {
		return FileTypeUnknown
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if ft, ok := extensionTable[ext]; ok {
		return ft
	}
	return FileTypeUnknown
}

// categoryOf buckets a link by the first matching keyword rule.
func categoryOf(haystack string) Category {
	for _, rule := range categoryRules {
		if containsAny(haystack, rule.keywords) {
			return rule.category
		}
	}
	return CategoryOther
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func clamp(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
