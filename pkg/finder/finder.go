package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sushgandhi/browser-use-mcp/pkg/agent"
	"github.com/sushgandhi/browser-use-mcp/pkg/browser"
	"github.com/sushgandhi/browser-use-mcp/pkg/llm"
	"github.com/sushgandhi/browser-use-mcp/pkg/logging"
)

// DefaultTimeout bounds one full agent search, wall clock.
const DefaultTimeout = 120 * time.Second

// navigator runs one bounded exploration against a page surface.
// *agent.Navigator satisfies it.
type navigator interface {
	Run(ctx context.Context, task, startURL string, b agent.Browser) (*agent.RunResult, error)
}

// sessionSource hands out scoped access to the shared browser session.
// *browser.Manager satisfies it.
type sessionSource interface {
	WithSession(ctx context.Context, fn func(*browser.Session) error) error
}

// Options tunes a Finder.
type Options struct {
	MaxSteps int
	Timeout  time.Duration
}

// Finder exposes the intelligent document-search operations. All of them
// share the same protocol: build a task, run the agent under the session
// lock, normalize its report into a SearchResult.
type Finder struct {
	sessions sessionSource
	nav      navigator
	model    string
	timeout  time.Duration
	log      *logging.Logger
}

// New creates a Finder that drives the given provider over sessions from
// the manager.
func New(sessions *browser.Manager, provider llm.Provider, opts Options) *Finder {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log, _ := logging.NewLogger("finder")
	return &Finder{
		sessions: sessions,
		nav:      agent.NewNavigator(provider, opts.MaxSteps),
		model:    provider.GetModel(),
		timeout:  opts.Timeout,
		log:      log,
	}
}

// FindDocuments runs a general natural-language document search.
func (f *Finder) FindDocuments(ctx context.Context, websiteURL, searchQuery string) (*SearchResult, error) {
	task := fmt.Sprintf(`Navigate to %s and extract URLs to documents related to: %s

Your mission is to find direct URLs to downloadable content. You should:

1. First, understand the website structure and navigation
2. Look for sections like: Downloads, Documents, Reports, News, Media, Resources
3. Search for content matching: %s
4. Find direct links to PDFs, documents, reports, or downloadable files
5. Extract the complete URLs, do not shorten or modify them
6. Get titles, descriptions, and available metadata

CRITICAL: You are a URL extraction specialist. Never download files. Only extract URLs.

Return the most relevant and recent document URLs found.`, websiteURL, searchQuery, searchQuery)

	f.log.Infof("searching %s for documents related to %q", websiteURL, searchQuery)
	return f.run(ctx, task, websiteURL, "documents related to "+searchQuery)
}

// FindPDFDocuments searches for PDF documents about a topic.
func (f *Finder) FindPDFDocuments(ctx context.Context, websiteURL, topic string) (*SearchResult, error) {
	task := fmt.Sprintf(`Navigate to %s and extract URLs to PDF documents about %s.

Your mission is to find direct URLs to PDF files. You should:

1. Explore the website structure efficiently
2. Search for PDF files related to %s
3. Look for download links, document sections, or PDF resources
4. Extract document titles, descriptions, and dates
5. Return only direct PDF URLs, no shortened or redirect URLs

CRITICAL: You are a PDF URL extraction specialist. Never download files. Only extract URLs.

Return the most relevant PDF document URLs found.`, websiteURL, topic, topic)

	f.log.Infof("searching %s for PDFs about %q", websiteURL, topic)
	return f.run(ctx, task, websiteURL, "PDF URLs about "+topic)
}

// FindLatestNewsPDF searches for recent news PDFs about a company.
func (f *Finder) FindLatestNewsPDF(ctx context.Context, websiteURL, companyName string) (*SearchResult, error) {
	task := fmt.Sprintf(`Navigate to %s and extract URLs to PDF news about %s.

Your mission is to find direct URLs to PDF news articles. You should:

1. Navigate efficiently to news sections
2. Search for recent news articles about %s
3. Look for PDF versions of news articles or press releases
4. Return only direct PDF URLs

CRITICAL: You are a news PDF URL extraction specialist. Never download files. Only extract URLs.

Return the most recent news PDF URLs found.`, websiteURL, companyName, companyName)

	f.log.Infof("searching %s for news PDFs about %q", websiteURL, companyName)
	return f.run(ctx, task, websiteURL, "latest PDF news URLs about "+companyName)
}

// FindAnnualReports searches a company site for annual reports.
func (f *Finder) FindAnnualReports(ctx context.Context, companyURL string) (*SearchResult, error) {
	task := fmt.Sprintf(`Navigate to %s and extract URLs to annual reports.

Your mission is to find direct URLs to annual report PDFs. You should:

1. Navigate efficiently to investor relations sections
2. Look for annual reports, financial reports, or yearly summaries
3. Extract report titles, years, and descriptions
4. Return only direct report URLs

CRITICAL: You are an annual report URL extraction specialist. Never download files. Only extract URLs.

Return the most recent annual report URLs found.`, companyURL)

	f.log.Infof("searching %s for annual reports", companyURL)
	return f.run(ctx, task, companyURL, "annual report URLs")
}

// run executes one bounded agent search under the session lock and
// normalizes the outcome. Every discovery failure resolves into a
// structured result; only session startup failure is returned as an
// error.
func (f *Finder) run(ctx context.Context, task, startURL, searchDescription string) (*SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var runResult *agent.RunResult
	err := f.sessions.WithSession(ctx, func(s *browser.Session) error {
		var runErr error
		runResult, runErr = f.nav.Run(ctx, task, startURL, s)
		return runErr
	})
	if err != nil {
		var initErr *browser.InitError
		if errors.As(err, &initErr) {
			return nil, err
		}
		kind := ErrAgentError
		if errors.Is(err, context.DeadlineExceeded) {
			kind = ErrAgentTimeout
		}
		f.log.Errorf("search for %s failed: %v", searchDescription, err)
		return &SearchResult{
			Success:       false,
			Documents:     []FoundDocument{},
			SearchSummary: fmt.Sprintf("URL extraction failed: %v", err),
			Error:         kind,
			TokenUsage:    f.tokenUsage(runResult),
		}, nil
	}

	docs, summary, parseErr := parseReport(runResult.Report)
	if parseErr != nil {
		f.log.Warnf("structured parse failed (%v), recovering URLs from raw output", parseErr)
		docs = recoverDocuments(runResult.Report)
		summary = "URLs extracted from agent final result"
	}

	if len(docs) == 0 {
		return &SearchResult{
			Success:       false,
			Documents:     []FoundDocument{},
			SearchSummary: "Agent completed without finding document URLs",
			Error:         ErrNoDocumentsFound,
			TokenUsage:    f.tokenUsage(runResult),
		}, nil
	}

	if summary == "" {
		summary = "URL extraction completed for " + searchDescription
	}
	f.log.Infof("found %d documents for %s", len(docs), searchDescription)
	return &SearchResult{
		Success:       true,
		Documents:     docs,
		SearchSummary: summary,
		TokenUsage:    f.tokenUsage(runResult),
	}, nil
}

func (f *Finder) tokenUsage(runResult *agent.RunResult) *TokenUsage {
	usage := &TokenUsage{Model: f.model}
	if runResult != nil {
		usage.PromptTokens = runResult.Usage.PromptTokens
		usage.CompletionTokens = runResult.Usage.CompletionTokens
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		usage.EntryCount = runResult.Calls
	}
	return usage
}
