package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushgandhi/browser-use-mcp/pkg/browser"
	"github.com/sushgandhi/browser-use-mcp/pkg/extract"
	"github.com/sushgandhi/browser-use-mcp/pkg/finder"
)

type fakeSessions struct {
	withErr  error
	closeErr error
	closed   int
}

func (f *fakeSessions) WithSession(_ context.Context, fn func(*browser.Session) error) error {
	if f.withErr != nil {
		return f.withErr
	}
	return fn(&browser.Session{})
}

func (f *fakeSessions) Close() error {
	f.closed++
	return f.closeErr
}

func newLinksTool(sessions Sessions, snapshot func(ctx context.Context, s *browser.Session, url string) (*browser.PageSnapshot, error)) *GetDocumentLinksTool {
	tool := NewGetDocumentLinksTool(sessions)
	tool.snapshot = snapshot
	return tool
}

func reportsSnapshot(url string) *browser.PageSnapshot {
	return &browser.PageSnapshot{
		URL:    url,
		Domain: "x.com",
		Links: []browser.Anchor{
			{Href: "/annual-2024.pdf", Text: "Annual Report 2024"},
			{Href: "/about", Text: "About us"},
		},
	}
}

func TestGetDocumentLinksTool(t *testing.T) {
	var visited string
	tool := newLinksTool(&fakeSessions{}, func(_ context.Context, _ *browser.Session, url string) (*browser.PageSnapshot, error) {
		visited = url
		return reportsSnapshot(url), nil
	})

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"url":"https://x.com/investors"}`))

	require.NoError(t, err)
	assert.Equal(t, "https://x.com/investors", visited)

	extraction, ok := result.(*extract.ExtractionResult)
	require.True(t, ok)
	assert.Equal(t, 1, extraction.TotalLinksFound)
	assert.Equal(t, "https://x.com/annual-2024.pdf", extraction.DocumentLinks[0].URL)
}

func TestGetDocumentLinksToolNormalizesBareHost(t *testing.T) {
	var visited string
	tool := newLinksTool(&fakeSessions{}, func(_ context.Context, _ *browser.Session, url string) (*browser.PageSnapshot, error) {
		visited = url
		return reportsSnapshot(url), nil
	})

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"url":"finance.yahoo.com"}`))

	require.NoError(t, err)
	assert.Equal(t, "https://finance.yahoo.com", visited)
}

func TestGetDocumentLinksToolRequiresURL(t *testing.T) {
	tool := NewGetDocumentLinksTool(&fakeSessions{})

	_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	assert.Error(t, err)

	_, err = tool.Execute(context.Background(), json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestGetDocumentLinksToolPageFailureEnvelope(t *testing.T) {
	tool := newLinksTool(&fakeSessions{}, func(_ context.Context, _ *browser.Session, _ string) (*browser.PageSnapshot, error) {
		return nil, errors.New("net::ERR_CONNECTION_REFUSED")
	})

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"url":"https://x.com"}`))

	require.NoError(t, err)
	envelope, ok := result.(*extractionError)
	require.True(t, ok)
	assert.Contains(t, envelope.Error, "ERR_CONNECTION_REFUSED")
	assert.Contains(t, envelope.Message, "Failed to extract")
}

func TestGetDocumentLinksToolInitErrorPropagates(t *testing.T) {
	sessions := &fakeSessions{withErr: &browser.InitError{Err: errors.New("chromium missing")}}
	tool := NewGetDocumentLinksTool(sessions)

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"url":"https://x.com"}`))

	require.Error(t, err)
	var initErr *browser.InitError
	assert.ErrorAs(t, err, &initErr)
}

func TestSiteLinksToolUsesFixedTarget(t *testing.T) {
	tool := NewSiteLinksTool(&fakeSessions{})
	var visited string
	tool.inner.snapshot = func(_ context.Context, _ *browser.Session, url string) (*browser.PageSnapshot, error) {
		visited = url
		return reportsSnapshot(url), nil
	}

	_, err := tool.Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, ConvenienceTarget, visited)
}

func TestCloseBrowserTool(t *testing.T) {
	sessions := &fakeSessions{}
	tool := NewCloseBrowserTool(sessions)

	result, err := tool.Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "Browser session closed successfully", result)
	assert.Equal(t, 1, sessions.closed)
}

func TestCloseBrowserToolError(t *testing.T) {
	sessions := &fakeSessions{closeErr: errors.New("stop failed")}
	tool := NewCloseBrowserTool(sessions)

	_, err := tool.Execute(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop failed")
}

// fakeFinder records inputs and replays a canned result.
type fakeFinder struct {
	result  *finder.SearchResult
	err     error
	gotURL  string
	gotArgs []string
}

func (f *fakeFinder) FindDocuments(_ context.Context, websiteURL, searchQuery string) (*finder.SearchResult, error) {
	f.gotURL, f.gotArgs = websiteURL, []string{searchQuery}
	return f.result, f.err
}

func (f *fakeFinder) FindPDFDocuments(_ context.Context, websiteURL, topic string) (*finder.SearchResult, error) {
	f.gotURL, f.gotArgs = websiteURL, []string{topic}
	return f.result, f.err
}

func (f *fakeFinder) FindLatestNewsPDF(_ context.Context, websiteURL, companyName string) (*finder.SearchResult, error) {
	f.gotURL, f.gotArgs = websiteURL, []string{companyName}
	return f.result, f.err
}

func (f *fakeFinder) FindAnnualReports(_ context.Context, companyURL string) (*finder.SearchResult, error) {
	f.gotURL = companyURL
	return f.result, f.err
}

func successResult() *finder.SearchResult {
	return &finder.SearchResult{
		Success: true,
		Documents: []finder.FoundDocument{
			{Title: "AR 2024", URL: "https://x.com/ar.pdf", DocumentType: "Annual Report"},
		},
		SearchSummary: "found it",
	}
}

func marshal(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestFindDocumentsToolEchoesInputs(t *testing.T) {
	f := &fakeFinder{result: successResult()}
	tool := NewFindDocumentsTool(f)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"website_url":"finance.yahoo.com","search_query":"SEC filings"}`))

	require.NoError(t, err)
	assert.Equal(t, "https://finance.yahoo.com", f.gotURL)

	m := marshal(t, result)
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "finance.yahoo.com", m["website"])
	assert.Equal(t, "SEC filings", m["search_query"])
	assert.Len(t, m["documents"], 1)
}

func TestFindDocumentsToolRequiresArgs(t *testing.T) {
	tool := NewFindDocumentsTool(&fakeFinder{result: successResult()})

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"website_url":"x.com"}`))
	assert.Error(t, err)
}

func TestFindPDFsToolEchoesTopic(t *testing.T) {
	f := &fakeFinder{result: successResult()}
	tool := NewFindPDFsTool(f)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"website_url":"x.com","topic":"climate"}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"climate"}, f.gotArgs)

	m := marshal(t, result)
	assert.Equal(t, "climate", m["topic"])
	assert.Equal(t, "x.com", m["website"])
}

func TestFindNewsPDFToolEchoesCompany(t *testing.T) {
	f := &fakeFinder{result: successResult()}
	tool := NewFindNewsPDFTool(f)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"website_url":"x.com","company_name":"Acme"}`))

	require.NoError(t, err)
	m := marshal(t, result)
	assert.Equal(t, "Acme", m["company"])
}

func TestFindAnnualReportsToolEchoesCompanyURL(t *testing.T) {
	f := &fakeFinder{result: successResult()}
	tool := NewFindAnnualReportsTool(f)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"company_url":"microsoft.com"}`))

	require.NoError(t, err)
	assert.Equal(t, "https://microsoft.com", f.gotURL)

	m := marshal(t, result)
	assert.Equal(t, "microsoft.com", m["company"])
}

func TestFinderToolInitErrorPropagates(t *testing.T) {
	f := &fakeFinder{err: &browser.InitError{Err: errors.New("no chromium")}}
	tool := NewFindAnnualReportsTool(f)

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"company_url":"x.com"}`))

	require.Error(t, err)
	var initErr *browser.InitError
	assert.ErrorAs(t, err, &initErr)
}
