package models

// Search modes
const (
	ModeKeyword = "keyword"
	ModeTitle   = "title"
)

// Rank modes for keyword search
const (
	RankTF   = "tf"
	RankPR   = "pr"
	RankTFPR = "tfpr"
)

// SearchHit represents one entry of a search result page
type SearchHit struct {
	BookID       int      `json:"book_id"`
	Title        string   `json:"title"`
	Snippet      string   `json:"snippet"`
	CoverURL     string   `json:"cover_url,omitempty"`
	TF           float64  `json:"tf"`
	PageRank     float64  `json:"pagerank"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// SearchResponse represents the API response for both search endpoints
type SearchResponse struct {
	Query     string      `json:"query"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
	RankMode  string      `json:"rank_mode,omitempty"`
	Advanced  bool        `json:"advanced,omitempty"`
	Total     int         `json:"total"`
	Results   []SearchHit `json:"results"`
	BackendMs *float64    `json:"backend_ms,omitempty"`
}

// Book represents the metadata of a single book
type Book struct {
	BookID   int      `json:"book_id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	CoverURL string   `json:"cover_url,omitempty"`
}

// Recommendation is a related book suggested for another one
type Recommendation struct {
	BookID   int     `json:"book_id"`
	Title    string  `json:"title"`
	CoverURL string  `json:"cover_url,omitempty"`
	Score    float64 `json:"score"`
}

// RecommendationsResponse represents the recommend endpoints response
type RecommendationsResponse struct {
	BookID          int              `json:"book_id"`
	Recommendations []Recommendation `json:"recommendations"`
}

// BookPage is one fixed-size slice of a book's text
type BookPage struct {
	BookID     int    `json:"book_id"`
	Title      string `json:"title"`
	CoverURL   string `json:"cover_url,omitempty"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Text       string `json:"text"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Message returns whichever error field the server filled in
func (e ErrorResponse) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}
