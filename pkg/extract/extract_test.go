package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushgandhi/browser-use-mcp/pkg/browser"
)

func TestClassifyResolvesRelativeHrefs(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/reports/a.pdf", Text: "Annual Report"},
	}

	result := Classify(anchors, "https://x.com/page", "x.com")

	require.Len(t, result.DocumentLinks, 1)
	link := result.DocumentLinks[0]
	assert.Equal(t, "https://x.com/reports/a.pdf", link.URL)
	assert.Equal(t, FileTypePDF, link.FileType)
	assert.True(t, link.IsDownload)
	assert.Equal(t, "x.com", link.Source)
}

func TestClassifyDiscardsNonNavigableTargets(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "#section1", Text: "Annual Report"},
		{Href: "javascript:void(0)", Text: "Report viewer"},
		{Href: "mailto:ir@x.com", Text: "Email the filing team"},
		{Href: "tel:+15551234", Text: "Report hotline"},
		{Href: "", Text: "Annual Report"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	assert.Empty(t, result.DocumentLinks)
	assert.Equal(t, 0, result.TotalLinksFound)
}

func TestClassifyExcludesUnknownTypeWithoutKeyword(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/misc/tool.xyz", Text: "Online calculator"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	assert.Empty(t, result.DocumentLinks, "unmatched extension with no keyword must be excluded entirely")
}

func TestClassifyRetainsUnknownTypeWithKeyword(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/filings/view?id=42", Text: "Latest 10-K filing"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	require.Len(t, result.DocumentLinks, 1)
	link := result.DocumentLinks[0]
	assert.Equal(t, FileTypeUnknown, link.FileType)
	assert.False(t, link.IsDownload)
	assert.Equal(t, CategoryFiling, link.Category)
}

func TestClassifyFileTypes(t *testing.T) {
	cases := []struct {
		href string
		want FileType
	}{
		{"/a.pdf", FileTypePDF},
		{"/a.xlsx", FileTypeExcel},
		{"/a.xls", FileTypeExcel},
		{"/a.csv", FileTypeExcel},
		{"/a.doc", FileTypeWord},
		{"/a.docx", FileTypeWord},
		{"/a.ppt", FileTypePowerPoint},
		{"/a.pptx", FileTypePowerPoint},
		{"/a.zip", FileTypeZip},
		{"/a.txt", FileTypeText},
	}

	for _, tc := range cases {
		result := Classify([]browser.Anchor{{Href: tc.href, Text: "x"}}, "https://x.com", "x.com")
		require.Len(t, result.DocumentLinks, 1, "href %s", tc.href)
		assert.Equal(t, tc.want, result.DocumentLinks[0].FileType, "href %s", tc.href)
		assert.True(t, result.DocumentLinks[0].IsDownload, "href %s", tc.href)
	}
}

func TestClassifyFileTypeIgnoresQueryString(t *testing.T) {
	result := Classify([]browser.Anchor{
		{Href: "/doc.pdf?version=2&download=true", Text: "x"},
	}, "https://x.com", "x.com")

	require.Len(t, result.DocumentLinks, 1)
	assert.Equal(t, FileTypePDF, result.DocumentLinks[0].FileType)
}

func TestClassifyCategoryPriority(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Category
	}{
		{"filing code beats report wording", "10-Q quarterly report", CategoryFiling},
		{"report", "2024 annual report", CategoryReport},
		{"form", "W-9 form", CategoryForm},
		{"fallback", "product brochure", CategoryOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Classify([]browser.Anchor{
				{Href: "/x.pdf", Text: tc.text},
			}, "https://x.com", "x.com")
			require.Len(t, result.DocumentLinks, 1)
			assert.Equal(t, tc.want, result.DocumentLinks[0].Category)
		})
	}
}

func TestClassifyKeywordInSurroundingText(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/view/8842", Text: "here", Surrounding: "Download the prospectus here"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	require.Len(t, result.DocumentLinks, 1)
	assert.Equal(t, CategoryFiling, result.DocumentLinks[0].Category)
}

func TestClassifyDeduplicatesFirstSeenWins(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/a.pdf", Text: "Annual Report (header)"},
		{Href: "https://x.com/a.pdf", Text: "Annual Report (footer)"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	require.Len(t, result.DocumentLinks, 1)
	assert.Equal(t, "Annual Report (header)", result.DocumentLinks[0].Text)
}

func TestClassifyURLsAbsoluteAndUnique(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/a.pdf", Text: "one"},
		{Href: "b.pdf", Text: "two"},
		{Href: "/a.pdf", Text: "dup"},
		{Href: "https://other.com/c.xlsx", Text: "three"},
	}

	result := Classify(anchors, "https://x.com/docs/", "x.com")

	seen := make(map[string]bool)
	for _, link := range result.DocumentLinks {
		u, err := url.Parse(link.URL)
		require.NoError(t, err)
		assert.True(t, u.IsAbs(), "URL %s must be absolute", link.URL)
		assert.False(t, seen[link.URL], "URL %s must be unique", link.URL)
		seen[link.URL] = true
	}
	assert.Equal(t, len(result.DocumentLinks), result.TotalLinksFound)
}

func TestClassifyPreservesPageOrder(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/z.pdf", Text: "last alphabetically"},
		{Href: "/a.pdf", Text: "first alphabetically"},
		{Href: "/m.xlsx", Text: "middle"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	require.Len(t, result.DocumentLinks, 3)
	assert.Equal(t, "https://x.com/z.pdf", result.DocumentLinks[0].URL)
	assert.Equal(t, "https://x.com/a.pdf", result.DocumentLinks[1].URL)
	assert.Equal(t, "https://x.com/m.xlsx", result.DocumentLinks[2].URL)
}

func TestClassifyDownloadLinksSubset(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/a.pdf", Text: "report"},
		{Href: "/filings/view", Text: "10-K filing"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	require.Len(t, result.DocumentLinks, 2)
	require.Len(t, result.DownloadLinks, 1)
	assert.Equal(t, "https://x.com/a.pdf", result.DownloadLinks[0].URL)
}

func TestClassifyEmptyResultIncludesSamples(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/home", Text: "Home"},
		{Href: "/pricing", Text: "Pricing"},
	}

	result := Classify(anchors, "https://x.com", "x.com")

	assert.Equal(t, 0, result.TotalLinksFound)
	assert.Equal(t, 2, result.AllLinksAnalyzed)
	assert.Len(t, result.SampleLinks, 2)
	assert.Contains(t, result.Message, "No document download links found")
}

func TestClassifyTotalMatchesLength(t *testing.T) {
	anchors := []browser.Anchor{
		{Href: "/a.pdf", Text: "a"},
		{Href: "/b.zip", Text: "b"},
		{Href: "#frag", Text: "c"},
	}

	result := Classify(anchors, "https://x.com", "x.com")
	assert.Equal(t, len(result.DocumentLinks), result.TotalLinksFound)
	assert.Contains(t, result.Message, "Found 2 document download links")
}
