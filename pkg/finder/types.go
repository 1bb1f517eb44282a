// Package finder drives the navigation agent toward document-finding
// goals and normalizes whatever it reports into a uniform result schema.
package finder

// Error kinds reported on failed searches. Discovery failures are routine
// and resolve into a structured response, never a hard error.
const (
	ErrNoDocumentsFound = "no_documents_found"
	ErrAgentTimeout     = "agent_timeout"
	ErrAgentError       = "agent_error"
)

// FoundDocument is one document reported by the navigation agent.
type FoundDocument struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	DocumentType string `json:"document_type"`
	FilingDate   string `json:"filing_date,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	Year         string `json:"year,omitempty"`
	Description  string `json:"description,omitempty"`
}

// TokenUsage summarizes the LLM spend of one search.
type TokenUsage struct {
	TotalTokens      int    `json:"total_tokens"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	Model            string `json:"model"`
	EntryCount       int    `json:"entry_count"`
}

// SearchResult is the envelope every intelligent search resolves to.
// Tool wrappers add their own echo fields (company, topic) on top.
type SearchResult struct {
	Success       bool            `json:"success"`
	Documents     []FoundDocument `json:"documents"`
	SearchSummary string          `json:"search_summary"`
	Error         string          `json:"error,omitempty"`
	TokenUsage    *TokenUsage     `json:"token_usage,omitempty"`
}
