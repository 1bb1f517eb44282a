package extract

// FileType is the inferred category of a linked file.
type FileType string

const (
	FileTypePDF        FileType = "PDF"
	FileTypeExcel      FileType = "EXCEL"
	FileTypeWord       FileType = "WORD"
	FileTypePowerPoint FileType = "POWERPOINT"
	FileTypeZip        FileType = "ZIP"
	FileTypeText       FileType = "TEXT"
	FileTypeUnknown    FileType = "UNKNOWN"
)

// Category is the coarse semantic bucket of a document link.
type Category string

const (
	CategoryReport Category = "report"
	CategoryFiling Category = "filing"
	CategoryForm   Category = "form"
	CategoryOther  Category = "other"
)

// DocumentLink is one discovered document link with its classification.
type DocumentLink struct {
	// URL is the absolute link target. Unique within a single extraction
	// result; the first occurrence wins.
	URL string `json:"url"`

	// Text is the trimmed visible anchor text, empty if none.
	Text string `json:"text"`

	// FileType is inferred from the URL's file extension.
	FileType FileType `json:"file_type"`

	// Category is inferred from keywords in the link and surrounding text.
	Category Category `json:"category"`

	// IsDownload is true when FileType is a recognized downloadable type.
	IsDownload bool `json:"is_download"`

	// Source is the domain of the originating page.
	Source string `json:"source"`
}

// SampleLink is a raw link included for debugging when no document links
// were found on a page.
type SampleLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ExtractionResult is the outcome of classifying one page's links.
type ExtractionResult struct {
	URL             string         `json:"url"`
	TotalLinksFound int            `json:"total_links_found"`
	DocumentLinks   []DocumentLink `json:"document_links"`
	DownloadLinks   []DocumentLink `json:"download_links"`
	Message         string         `json:"message"`

	// Populated only when no document links were found, to help callers
	// see what the page actually contained.
	AllLinksAnalyzed int          `json:"all_links_analyzed,omitempty"`
	SampleLinks      []SampleLink `json:"sample_links_found,omitempty"`
}
