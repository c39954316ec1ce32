// Package search owns the state of the search screen: the session that
// determines a request, the results of the latest one, and the request
// tokens that keep a slow reply from overwriting a newer one.
package search

import (
	"context"
	"fmt"

	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/pkg/models"
)

// DefaultPageSize is the number of hits requested per page
const DefaultPageSize = 20

// Backend is the part of the API client the search screen needs
type Backend interface {
	SearchKeyword(ctx context.Context, q string, advanced bool, rankMode string, page, pageSize int) (*models.SearchResponse, error)
	SearchTitle(ctx context.Context, q string, page, pageSize int) (*models.SearchResponse, error)
}

// Hit is one search result entry
type Hit struct {
	ID           nav.BookID
	Title        string
	Snippet      string
	TF           float64
	PageRank     float64
	Score        float64
	MatchedTerms []string
	CoverURL     string
}

// Result is one page of hits plus the total hit count
type Result struct {
	Items            []Hit
	Total            int
	BackendElapsedMs *float64
}

// Run issues the request described by session. Title searches leave out the
// advanced flag and rank mode; keyword searches send all five values as is.
func Run(ctx context.Context, backend Backend, session nav.SearchSession, pageSize int) (Result, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		resp *models.SearchResponse
		err  error
	)
	switch session.Mode {
	case nav.ModeTitle:
		resp, err = backend.SearchTitle(ctx, session.Query, session.Page, pageSize)
	case nav.ModeKeyword:
		resp, err = backend.SearchKeyword(ctx, session.Query, session.Advanced, string(session.RankMode), session.Page, pageSize)
	default:
		return Result{}, fmt.Errorf("unknown search mode %q", session.Mode)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s search %q: %w", session.Mode, session.Query, err)
	}
	if resp == nil {
		return Result{}, nil
	}
	return toResult(resp), nil
}

func toResult(resp *models.SearchResponse) Result {
	items := make([]Hit, 0, len(resp.Results))
	for _, h := range resp.Results {
		items = append(items, Hit{
			ID:           nav.BookID(h.BookID),
			Title:        h.Title,
			Snippet:      h.Snippet,
			TF:           h.TF,
			PageRank:     h.PageRank,
			Score:        h.Score,
			MatchedTerms: h.MatchedTerms,
			CoverURL:     h.CoverURL,
		})
	}
	return Result{Items: items, Total: resp.Total, BackendElapsedMs: resp.BackendMs}
}

// TruncateTerms returns at most n terms, appending "+k" for the rest
func TruncateTerms(terms []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(terms) <= n {
		return terms
	}
	out := make([]string, 0, n+1)
	out = append(out, terms[:n]...)
	return append(out, fmt.Sprintf("+%d", len(terms)-n))
}
