package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultDocument  ResultType = "document"
	ResultParagraph ResultType = "paragraph"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type       ResultType `json:"type"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Snippet    string     `json:"snippet"`
	DocumentID string     `json:"documentId"`
	StageID    string     `json:"stageId"`
	IsApproved bool       `json:"isApproved,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text             string
	FilterType       ResultType // empty = all types
	FilterDocumentID string
	ApprovedOnly     bool
	Limit            int
	Offset           int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexDocument(doc DocumentRecord) error
	IndexParagraph(p ParagraphRecord) error
	DeleteDocument(id string) error
	DeleteParagraph(id string) error
}

// DocumentRecord is the data we index for a document.
type DocumentRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	StageID string `json:"stageId"`
}

// ParagraphRecord is the data we index for a paragraph. Content is the
// canonical text, so the index follows the winning edition.
type ParagraphRecord struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	DocumentID string  `json:"documentId"`
	Ordinal    int     `json:"ordinal"`
	Rating     float64 `json:"rating"`
	IsApproved bool    `json:"isApproved"`
}
