package reader

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/bookseek-t/pkg/models"
)

type pageCall struct {
	id, page, size int
}

type fakeBackend struct {
	calls      []pageCall
	totalPages int
	err        error
}

func (f *fakeBackend) GetBookPage(_ context.Context, id, page, size int) (*models.BookPage, error) {
	f.calls = append(f.calls, pageCall{id, page, size})
	if f.err != nil {
		return nil, f.err
	}
	if page > f.totalPages {
		page = f.totalPages
	}
	return &models.BookPage{
		BookID:     id,
		Title:      "Moby Dick",
		Page:       page,
		TotalPages: f.totalPages,
		Text:       "page text",
	}, nil
}

func load(t *testing.T, c *Controller, req Request, ok bool, backend Backend) {
	t.Helper()
	require.True(t, ok)
	require.True(t, c.Apply(req.Do(context.Background(), backend)))
}

func TestSinglePageBookNextIsNoOp(t *testing.T) {
	backend := &fakeBackend{totalPages: 1}
	c := NewController(0, zerolog.Nop())
	c.SetBook(42)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	_, ok = c.Next()
	assert.False(t, ok)
	assert.Equal(t, 1, c.Cursor().Page)
	assert.Len(t, backend.calls, 1)
	assert.Equal(t, pageCall{42, 1, 4000}, backend.calls[0])
}

func TestPrevDisabledOnFirstPage(t *testing.T) {
	backend := &fakeBackend{totalPages: 3}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	assert.False(t, c.HasPrev())
	_, ok = c.Prev()
	assert.False(t, ok)
	assert.Len(t, backend.calls, 1)
}

func TestWalkPages(t *testing.T) {
	backend := &fakeBackend{totalPages: 3}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	req, ok = c.Next()
	load(t, c, req, ok, backend)
	req, ok = c.Next()
	load(t, c, req, ok, backend)
	assert.Equal(t, 3, c.Cursor().Page)
	assert.False(t, c.HasNext())

	req, ok = c.Prev()
	load(t, c, req, ok, backend)
	assert.Equal(t, 2, c.Cursor().Page)
	assert.Equal(t, []int{1, 2, 3, 2}, pages(backend.calls))
}

func TestSetBookResetsPageAndKeepsPreferences(t *testing.T) {
	backend := &fakeBackend{totalPages: 5}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)
	req, ok = c.Next()
	load(t, c, req, ok, backend)
	c.Larger()
	c.ToggleDark()

	c.SetBook(8)
	cur := c.Cursor()
	assert.Equal(t, 1, cur.Page)
	assert.Equal(t, 20, cur.FontSize)
	assert.True(t, cur.DarkMode)
	assert.Empty(t, c.Text())
	assert.False(t, c.Loaded())
	assert.Zero(t, c.TotalPages())
}

func TestResponseForPreviousBookIsDropped(t *testing.T) {
	backend := &fakeBackend{totalPages: 5}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	old, _ := c.Begin()

	c.SetBook(8)
	assert.False(t, c.Apply(old.Do(context.Background(), backend)))
	assert.Empty(t, c.Text())
}

func TestStalePageResponseIsDropped(t *testing.T) {
	backend := &fakeBackend{totalPages: 5}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	second, _ := c.Next()
	third, _ := c.Next()
	assert.Equal(t, 3, third.Page)

	thirdResp := third.Do(context.Background(), backend)
	secondResp := second.Do(context.Background(), backend)
	assert.True(t, c.Apply(thirdResp))
	assert.False(t, c.Apply(secondResp))
	assert.Equal(t, 3, c.Cursor().Page)
}

func TestFailedNextKeepsCursorAndRetries(t *testing.T) {
	backend := &fakeBackend{totalPages: 5}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	backend.err = errors.New("boom")
	req, ok = c.Next()
	load(t, c, req, ok, backend)
	assert.Error(t, c.Err())
	assert.Equal(t, 1, c.Cursor().Page)
	assert.Equal(t, "page text", c.Text())

	backend.err = nil
	req, ok = c.Next()
	require.True(t, ok)
	assert.Equal(t, 2, req.Page)
	load(t, c, req, ok, backend)
	assert.NoError(t, c.Err())
	assert.Equal(t, 2, c.Cursor().Page)
}

func TestFailedPrevKeepsCursor(t *testing.T) {
	backend := &fakeBackend{totalPages: 5}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.GoTo(3)
	load(t, c, req, ok, backend)

	backend.err = errors.New("boom")
	req, ok = c.Prev()
	load(t, c, req, ok, backend)
	assert.Equal(t, 3, c.Cursor().Page)

	req, ok = c.Prev()
	require.True(t, ok)
	assert.Equal(t, 2, req.Page)
}

func TestGoToClamps(t *testing.T) {
	backend := &fakeBackend{totalPages: 4}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	req, ok = c.GoTo(99)
	require.True(t, ok)
	assert.Equal(t, 4, req.Page)

	load(t, c, req, ok, backend)
	_, ok = c.GoTo(4)
	assert.False(t, ok)

	req, ok = c.GoTo(-3)
	require.True(t, ok)
	assert.Equal(t, 1, req.Page)
}

func TestServerClampIsApplied(t *testing.T) {
	backend := &fakeBackend{totalPages: 2}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.GoTo(9)
	load(t, c, req, ok, backend)

	assert.Equal(t, 2, c.Cursor().Page)
}

func TestErrorIsKeptSeparateFromContent(t *testing.T) {
	backend := &fakeBackend{totalPages: 2, err: errors.New("HTTP 404: Book not found")}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	assert.Error(t, c.Err())
	assert.False(t, c.Loaded())
	assert.False(t, c.Loading())
}

func TestFontSizeFloor(t *testing.T) {
	c := NewController(DefaultPageSize, zerolog.Nop())
	require.Equal(t, 18, c.Cursor().FontSize)

	for i := 0; i < 50; i++ {
		c.Smaller()
		assert.GreaterOrEqual(t, c.Cursor().FontSize, MinFontSize)
	}
	assert.Equal(t, MinFontSize, c.Cursor().FontSize)

	for i := 0; i < 100; i++ {
		c.Larger()
	}
	assert.Equal(t, MinFontSize+200, c.Cursor().FontSize)
}

func TestDarkModeDoesNotFetch(t *testing.T) {
	backend := &fakeBackend{totalPages: 2}
	c := NewController(DefaultPageSize, zerolog.Nop())
	c.SetBook(7)
	req, ok := c.Begin()
	load(t, c, req, ok, backend)

	c.ToggleDark()
	c.ToggleDark()
	c.ToggleDark()
	assert.True(t, c.Cursor().DarkMode)
	assert.Equal(t, "page text", c.Text())
	assert.Len(t, backend.calls, 1)
}

func TestBeginWithoutBook(t *testing.T) {
	c := NewController(DefaultPageSize, zerolog.Nop())
	_, ok := c.Begin()
	assert.False(t, ok)
}

func pages(calls []pageCall) []int {
	out := make([]int, len(calls))
	for i, c := range calls {
		out[i] = c.page
	}
	return out
}
