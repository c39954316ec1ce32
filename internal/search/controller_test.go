package search

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/pkg/models"
)

type call struct {
	endpoint string
	q        string
	advanced bool
	rankMode string
	page     int
	pageSize int
}

type fakeBackend struct {
	calls []call
	total int
	err   error
}

func (f *fakeBackend) SearchKeyword(_ context.Context, q string, advanced bool, rankMode string, page, pageSize int) (*models.SearchResponse, error) {
	f.calls = append(f.calls, call{"keyword", q, advanced, rankMode, page, pageSize})
	return f.reply(q)
}

func (f *fakeBackend) SearchTitle(_ context.Context, q string, page, pageSize int) (*models.SearchResponse, error) {
	f.calls = append(f.calls, call{endpoint: "title", q: q, page: page, pageSize: pageSize})
	return f.reply(q)
}

func (f *fakeBackend) reply(q string) (*models.SearchResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SearchResponse{
		Total:   f.total,
		Results: []models.SearchHit{{BookID: 1, Title: q + " one"}, {BookID: 2, Title: q + " two"}},
	}, nil
}

func (f *fakeBackend) last() call {
	return f.calls[len(f.calls)-1]
}

func newController() *Controller {
	return NewController(20, zerolog.Nop())
}

func run(t *testing.T, c *Controller, backend Backend) Response {
	t.Helper()
	req, ok := c.Begin()
	require.True(t, ok)
	resp := req.Do(context.Background(), backend)
	require.True(t, c.Apply(resp))
	return resp
}

func TestRestoredSessionIsSentUnmodified(t *testing.T) {
	backend := &fakeBackend{total: 100}
	c := newController()

	dest := nav.ResolveBack(nav.FromSearch(nav.SearchSession{
		Query: "dragon", Mode: nav.ModeKeyword, Advanced: false, RankMode: nav.RankTF, Page: 2,
	}))
	c.Restore(dest.Session)
	run(t, c, backend)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, call{"keyword", "dragon", false, "tf", 2, 20}, backend.last())
}

func TestTitleModeIgnoresKeywordOptionsButKeepsThem(t *testing.T) {
	backend := &fakeBackend{total: 5}
	c := newController()
	c.SetQuery("moby")
	c.SetAdvanced(true)
	c.SetRankMode(nav.RankTFPR)
	c.SetMode(nav.ModeTitle)
	run(t, c, backend)

	assert.Equal(t, call{endpoint: "title", q: "moby", page: 1, pageSize: 20}, backend.last())
	assert.True(t, c.Session().Advanced)
	assert.Equal(t, nav.RankTFPR, c.Session().RankMode)

	c.SetMode(nav.ModeKeyword)
	run(t, c, backend)
	assert.Equal(t, call{"keyword", "moby", true, "tfpr", 1, 20}, backend.last())
}

func TestChangingModeResetsPage(t *testing.T) {
	backend := &fakeBackend{total: 200}
	c := newController()
	c.SetQuery("whale")
	c.SetPage(3)
	run(t, c, backend)
	require.Equal(t, 3, backend.last().page)

	c.SetMode(nav.ModeTitle)
	run(t, c, backend)
	assert.Equal(t, 1, backend.last().page)
}

func TestChangingFiltersResetsPage(t *testing.T) {
	cases := map[string]func(*Controller){
		"query":     func(c *Controller) { c.SetQuery("other") },
		"advanced":  func(c *Controller) { c.SetAdvanced(true) },
		"rank mode": func(c *Controller) { c.SetRankMode(nav.RankPR) },
	}
	for name, change := range cases {
		t.Run(name, func(t *testing.T) {
			c := newController()
			c.SetQuery("whale")
			c.SetPage(4)
			change(c)
			assert.Equal(t, 1, c.Session().Page)
		})
	}
}

func TestSettingSameValueKeepsPage(t *testing.T) {
	c := newController()
	c.SetQuery("whale")
	c.SetPage(4)

	c.SetQuery("whale")
	c.SetMode(nav.ModeKeyword)
	c.SetAdvanced(false)
	c.SetRankMode(nav.RankTF)
	assert.Equal(t, 4, c.Session().Page)
}

func TestPageChangeHoldsOtherFields(t *testing.T) {
	backend := &fakeBackend{total: 100}
	c := newController()
	c.SetQuery("sea")
	c.SetAdvanced(true)
	c.SetRankMode(nav.RankPR)
	run(t, c, backend)

	req, ok := c.NextPage()
	require.True(t, ok)
	require.True(t, c.Apply(req.Do(context.Background(), backend)))

	assert.Equal(t, call{"keyword", "sea", true, "pr", 2, 20}, backend.last())
}

func TestBlankQueryIsNoOp(t *testing.T) {
	backend := &fakeBackend{total: 2}
	c := newController()
	c.SetQuery("dragon")
	run(t, c, backend)
	before := c.Result()

	c.SetQuery("   ")
	_, ok := c.Begin()
	assert.False(t, ok)
	assert.False(t, c.Loading())
	assert.Equal(t, before, c.Result())
	assert.Len(t, backend.calls, 1)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	backend := &fakeBackend{total: 2}
	c := newController()

	c.SetQuery("first")
	first, _ := c.Begin()
	c.SetQuery("second")
	second, _ := c.Begin()

	secondResp := second.Do(context.Background(), backend)
	firstResp := first.Do(context.Background(), backend)

	assert.True(t, c.Apply(secondResp))
	assert.False(t, c.Apply(firstResp))
	assert.Equal(t, "second one", c.Result().Items[0].Title)
	assert.False(t, c.Loading())
}

func TestResetInvalidatesPending(t *testing.T) {
	backend := &fakeBackend{total: 2}
	c := newController()
	c.SetQuery("dragon")
	req, _ := c.Begin()

	c.Reset()
	assert.False(t, c.Apply(req.Do(context.Background(), backend)))
	assert.Equal(t, nav.EmptySession(), c.Session())
	assert.False(t, c.HasRun())
	assert.Empty(t, c.Result().Items)
}

func TestErrorKeepsPreviousResults(t *testing.T) {
	backend := &fakeBackend{total: 2}
	c := newController()
	c.SetQuery("dragon")
	run(t, c, backend)

	backend.err = errors.New("connection refused")
	c.SetPage(2)
	run(t, c, backend)

	assert.ErrorContains(t, c.Err(), "connection refused")
	assert.Len(t, c.Result().Items, 2)
	assert.False(t, c.Loading())
}

func TestPagination(t *testing.T) {
	backend := &fakeBackend{total: 41}
	c := newController()
	c.SetQuery("dragon")
	run(t, c, backend)

	assert.Equal(t, 3, c.TotalPages())
	assert.False(t, c.HasPrev())
	_, ok := c.PrevPage()
	assert.False(t, ok)

	c.SetPage(3)
	assert.False(t, c.HasNext())
	_, ok = c.NextPage()
	assert.False(t, ok)
	assert.Equal(t, 3, c.Session().Page)
}

func TestFailedPageTurnKeepsShownPage(t *testing.T) {
	backend := &fakeBackend{total: 100}
	c := newController()
	c.SetQuery("dragon")
	run(t, c, backend)

	backend.err = errors.New("connection refused")
	req, ok := c.NextPage()
	require.True(t, ok)
	assert.Equal(t, 2, req.Session.Page)
	require.True(t, c.Apply(req.Do(context.Background(), backend)))

	assert.Error(t, c.Err())
	assert.Equal(t, 1, c.Session().Page)
	assert.Equal(t, "search(\"dragon\", keyword, page 1)", nav.FromSearch(c.Session()).String())

	backend.err = nil
	req, ok = c.NextPage()
	require.True(t, ok)
	assert.Equal(t, 2, req.Session.Page)
	require.True(t, c.Apply(req.Do(context.Background(), backend)))
	assert.Equal(t, 2, c.Session().Page)
}

func TestPageTurnsQueueWhileLoading(t *testing.T) {
	backend := &fakeBackend{total: 100}
	c := newController()
	c.SetQuery("dragon")
	run(t, c, backend)

	_, ok := c.NextPage()
	require.True(t, ok)
	third, ok := c.NextPage()
	require.True(t, ok)
	assert.Equal(t, 3, third.Session.Page)
	assert.Equal(t, 1, c.Session().Page)

	require.True(t, c.Apply(third.Do(context.Background(), backend)))
	assert.Equal(t, 3, c.Session().Page)
}

func TestRestoreDropsPreviousResults(t *testing.T) {
	backend := &fakeBackend{total: 2}
	c := newController()
	c.SetQuery("dragon")
	pending, _ := c.Begin()
	require.True(t, c.Apply(pending.Do(context.Background(), backend)))
	stale, _ := c.Begin()

	c.Restore(nav.EmptySession())
	assert.False(t, c.HasRun())
	assert.Empty(t, c.Result().Items)
	assert.False(t, c.Loading())
	assert.False(t, c.Apply(stale.Do(context.Background(), backend)))
	assert.Empty(t, c.Result().Items)
}

func TestRestoreInvalidFallsBackToEmpty(t *testing.T) {
	c := newController()
	c.Restore(nav.SearchSession{Query: "x", Mode: "regex", RankMode: nav.RankTF, Page: 1})
	assert.Equal(t, nav.EmptySession(), c.Session())
}

func TestTruncateTerms(t *testing.T) {
	terms := []string{"dragon", "dragons", "dragonfly", "dragoon"}
	assert.Equal(t, []string{"dragon", "dragons", "+2"}, TruncateTerms(terms, 2))
	assert.Equal(t, terms, TruncateTerms(terms, 4))
	assert.Equal(t, []string{"+4"}, TruncateTerms(terms, 0))
}
