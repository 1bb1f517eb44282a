package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sushgandhi/browser-use-mcp/pkg/browser"
	"github.com/sushgandhi/browser-use-mcp/pkg/extract"
	"github.com/sushgandhi/browser-use-mcp/pkg/finder"
)

// ConvenienceTarget is the fixed URL served by the convenience
// extraction tool.
const ConvenienceTarget = "https://modelcontextprotocol.io"

// Sessions is the slice of the session manager the tools depend on.
// *browser.Manager satisfies it.
type Sessions interface {
	WithSession(ctx context.Context, fn func(*browser.Session) error) error
	Close() error
}

// DocumentFinder is the intelligent-search surface the finder tools wrap.
// *finder.Finder satisfies it.
type DocumentFinder interface {
	FindDocuments(ctx context.Context, websiteURL, searchQuery string) (*finder.SearchResult, error)
	FindPDFDocuments(ctx context.Context, websiteURL, topic string) (*finder.SearchResult, error)
	FindLatestNewsPDF(ctx context.Context, websiteURL, companyName string) (*finder.SearchResult, error)
	FindAnnualReports(ctx context.Context, companyURL string) (*finder.SearchResult, error)
}

// normalizeURL accepts bare hostnames like "finance.yahoo.com" and gives
// them an https scheme.
func normalizeURL(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

// extractionError is the structured envelope returned when a page cannot
// be loaded or analyzed. Session startup failures do not use it, they
// surface as tool errors.
type extractionError struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

func newExtractionError(err error) *extractionError {
	return &extractionError{
		Error:      err.Error(),
		Message:    "Failed to extract document download links. The website may be unavailable or require authentication.",
		Suggestion: "Try accessing the page manually first to verify it contains downloadable documents.",
	}
}

// GetDocumentLinksTool navigates to a URL and classifies its links.
type GetDocumentLinksTool struct {
	sessions Sessions

	// snapshot is swappable for tests.
	snapshot func(ctx context.Context, s *browser.Session, url string) (*browser.PageSnapshot, error)
}

// NewGetDocumentLinksTool creates the basic extraction tool.
func NewGetDocumentLinksTool(sessions Sessions) *GetDocumentLinksTool {
	return &GetDocumentLinksTool{
		sessions: sessions,
		snapshot: func(ctx context.Context, s *browser.Session, url string) (*browser.PageSnapshot, error) {
			return s.Snapshot(ctx, url)
		},
	}
}

// Name returns the tool name.
func (t *GetDocumentLinksTool) Name() string {
	return "get_document_download_links"
}

// Description returns the tool description.
func (t *GetDocumentLinksTool) Description() string {
	return "Navigate to a website and extract document download links (PDF, Excel, Word, etc.). Returns structured data about available downloads without downloading any files."
}

// Schema returns the tool's JSON schema.
func (t *GetDocumentLinksTool) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"url": StringProperty("The URL to navigate to (e.g., 'https://modelcontextprotocol.io')"),
		},
		[]string{"url"},
	)
}

// Execute loads the page and classifies every link on it.
func (t *GetDocumentLinksTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	return t.extract(ctx, normalizeURL(input.URL))
}

func (t *GetDocumentLinksTool) extract(ctx context.Context, target string) (interface{}, error) {
	var result *extract.ExtractionResult
	err := t.sessions.WithSession(ctx, func(s *browser.Session) error {
		page, err := t.snapshot(ctx, s, target)
		if err != nil {
			return err
		}
		result = extract.Classify(page.Links, page.URL, page.Domain)
		return nil
	})
	if err != nil {
		var initErr *browser.InitError
		if errors.As(err, &initErr) {
			return nil, err
		}
		return newExtractionError(err), nil
	}
	return result, nil
}

// SiteLinksTool is the convenience variant of the extraction tool with a
// fixed target.
type SiteLinksTool struct {
	inner *GetDocumentLinksTool
}

// NewSiteLinksTool creates the convenience extraction tool.
func NewSiteLinksTool(sessions Sessions) *SiteLinksTool {
	return &SiteLinksTool{inner: NewGetDocumentLinksTool(sessions)}
}

// Name returns the tool name.
func (t *SiteLinksTool) Name() string {
	return "extract_modelcontextprotocol_links"
}

// Description returns the tool description.
func (t *SiteLinksTool) Description() string {
	return "Extract document download links from modelcontextprotocol.io. Convenience tool with a fixed target, takes no arguments."
}

// Schema returns the tool's JSON schema.
func (t *SiteLinksTool) Schema() map[string]interface{} {
	return BaseSchema(map[string]interface{}{}, nil)
}

// Execute extracts links from the fixed target.
func (t *SiteLinksTool) Execute(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return t.inner.extract(ctx, ConvenienceTarget)
}

// CloseBrowserTool tears down the shared browser session.
type CloseBrowserTool struct {
	sessions Sessions
}

// NewCloseBrowserTool creates the session teardown tool.
func NewCloseBrowserTool(sessions Sessions) *CloseBrowserTool {
	return &CloseBrowserTool{sessions: sessions}
}

// Name returns the tool name.
func (t *CloseBrowserTool) Name() string {
	return "close_browser"
}

// Description returns the tool description.
func (t *CloseBrowserTool) Description() string {
	return "Close the browser session and clean up resources. Calling it with no active session is a successful no-op."
}

// Schema returns the tool's JSON schema.
func (t *CloseBrowserTool) Schema() map[string]interface{} {
	return BaseSchema(map[string]interface{}{}, nil)
}

// Execute closes the session if one exists.
func (t *CloseBrowserTool) Execute(_ context.Context, _ json.RawMessage) (interface{}, error) {
	if err := t.sessions.Close(); err != nil {
		return nil, fmt.Errorf("failed to close browser session: %w", err)
	}
	return "Browser session closed successfully", nil
}

// FindDocumentsTool runs a general intelligent document search.
type FindDocumentsTool struct {
	finder DocumentFinder
}

// NewFindDocumentsTool creates the general intelligent search tool.
func NewFindDocumentsTool(f DocumentFinder) *FindDocumentsTool {
	return &FindDocumentsTool{finder: f}
}

// Name returns the tool name.
func (t *FindDocumentsTool) Name() string {
	return "find_documents_intelligent"
}

// Description returns the tool description.
func (t *FindDocumentsTool) Description() string {
	return "Intelligently find any type of documents from a website using AI-powered navigation. Explores the site, follows promising links, and returns document URLs with metadata and token usage."
}

// Schema returns the tool's JSON schema.
func (t *FindDocumentsTool) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"website_url":  StringProperty("The website URL to search (e.g., 'finance.yahoo.com' or 'https://finance.yahoo.com')"),
			"search_query": StringProperty("What to search for (e.g., 'quarterly earnings reports', 'SEC filings')"),
		},
		[]string{"website_url", "search_query"},
	)
}

// Execute runs the search and echoes the inputs in the response.
func (t *FindDocumentsTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input struct {
		WebsiteURL  string `json:"website_url"`
		SearchQuery string `json:"search_query"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.WebsiteURL == "" || input.SearchQuery == "" {
		return nil, fmt.Errorf("website_url and search_query are required")
	}

	result, err := t.finder.FindDocuments(ctx, normalizeURL(input.WebsiteURL), input.SearchQuery)
	if err != nil {
		return nil, err
	}
	return struct {
		*finder.SearchResult
		Website     string `json:"website"`
		SearchQuery string `json:"search_query"`
	}{result, input.WebsiteURL, input.SearchQuery}, nil
}

// FindPDFsTool searches a site for PDFs about a topic.
type FindPDFsTool struct {
	finder DocumentFinder
}

// NewFindPDFsTool creates the PDF search tool.
func NewFindPDFsTool(f DocumentFinder) *FindPDFsTool {
	return &FindPDFsTool{finder: f}
}

// Name returns the tool name.
func (t *FindPDFsTool) Name() string {
	return "find_pdf_documents"
}

// Description returns the tool description.
func (t *FindPDFsTool) Description() string {
	return "Find PDF documents on a specific topic from a website using intelligent navigation."
}

// Schema returns the tool's JSON schema.
func (t *FindPDFsTool) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"website_url": StringProperty("The website URL to search (e.g., 'finance.yahoo.com')"),
			"topic":       StringProperty("Topic to search for (e.g., 'artificial intelligence', 'quarterly reports')"),
		},
		[]string{"website_url", "topic"},
	)
}

// Execute runs the PDF search.
func (t *FindPDFsTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input struct {
		WebsiteURL string `json:"website_url"`
		Topic      string `json:"topic"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.WebsiteURL == "" || input.Topic == "" {
		return nil, fmt.Errorf("website_url and topic are required")
	}

	result, err := t.finder.FindPDFDocuments(ctx, normalizeURL(input.WebsiteURL), input.Topic)
	if err != nil {
		return nil, err
	}
	return struct {
		*finder.SearchResult
		Website string `json:"website"`
		Topic   string `json:"topic"`
	}{result, input.WebsiteURL, input.Topic}, nil
}

// FindNewsPDFTool searches a site for recent news PDFs about a company.
type FindNewsPDFTool struct {
	finder DocumentFinder
}

// NewFindNewsPDFTool creates the news PDF search tool.
func NewFindNewsPDFTool(f DocumentFinder) *FindNewsPDFTool {
	return &FindNewsPDFTool{finder: f}
}

// Name returns the tool name.
func (t *FindNewsPDFTool) Name() string {
	return "find_latest_news_pdf"
}

// Description returns the tool description.
func (t *FindNewsPDFTool) Description() string {
	return "Find the latest news in PDF format for a specific company using intelligent navigation."
}

// Schema returns the tool's JSON schema.
func (t *FindNewsPDFTool) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"website_url":  StringProperty("The website URL to search (e.g., 'finance.yahoo.com')"),
			"company_name": StringProperty("Company name to search for (e.g., 'JPMorgan', 'Apple')"),
		},
		[]string{"website_url", "company_name"},
	)
}

// Execute runs the news search.
func (t *FindNewsPDFTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input struct {
		WebsiteURL  string `json:"website_url"`
		CompanyName string `json:"company_name"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.WebsiteURL == "" || input.CompanyName == "" {
		return nil, fmt.Errorf("website_url and company_name are required")
	}

	result, err := t.finder.FindLatestNewsPDF(ctx, normalizeURL(input.WebsiteURL), input.CompanyName)
	if err != nil {
		return nil, err
	}
	return struct {
		*finder.SearchResult
		Website string `json:"website"`
		Company string `json:"company"`
	}{result, input.WebsiteURL, input.CompanyName}, nil
}

// FindAnnualReportsTool searches a company website for annual reports.
type FindAnnualReportsTool struct {
	finder DocumentFinder
}

// NewFindAnnualReportsTool creates the annual report search tool.
func NewFindAnnualReportsTool(f DocumentFinder) *FindAnnualReportsTool {
	return &FindAnnualReportsTool{finder: f}
}

// Name returns the tool name.
func (t *FindAnnualReportsTool) Name() string {
	return "find_annual_reports"
}

// Description returns the tool description.
func (t *FindAnnualReportsTool) Description() string {
	return "Find annual reports from a company website using intelligent navigation of investor relations sections."
}

// Schema returns the tool's JSON schema.
func (t *FindAnnualReportsTool) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"company_url": StringProperty("The company website URL (e.g., 'microsoft.com')"),
		},
		[]string{"company_url"},
	)
}

// Execute runs the annual report search.
func (t *FindAnnualReportsTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input struct {
		CompanyURL string `json:"company_url"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.CompanyURL == "" {
		return nil, fmt.Errorf("company_url is required")
	}

	result, err := t.finder.FindAnnualReports(ctx, normalizeURL(input.CompanyURL))
	if err != nil {
		return nil, err
	}
	return struct {
		*finder.SearchResult
		Company string `json:"company"`
	}{result, input.CompanyURL}, nil
}
