package nav

import (
	"strings"

	"github.com/justyntemme/bookseek-t/pkg/models"
)

// BookID identifies a book on the search service
type BookID int

// Mode selects which search endpoint a session uses
type Mode string

const (
	ModeKeyword Mode = models.ModeKeyword
	ModeTitle   Mode = models.ModeTitle
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeKeyword || m == ModeTitle
}

// Next returns the other mode
func (m Mode) Next() Mode {
	if m == ModeKeyword {
		return ModeTitle
	}
	return ModeKeyword
}

// RankMode selects how keyword hits are ordered
type RankMode string

const (
	RankTF   RankMode = models.RankTF
	RankPR   RankMode = models.RankPR
	RankTFPR RankMode = models.RankTFPR
)

// Valid reports whether r is a known rank mode
func (r RankMode) Valid() bool {
	switch r {
	case RankTF, RankPR, RankTFPR:
		return true
	}
	return false
}

// Next cycles tf -> pr -> tfpr -> tf
func (r RankMode) Next() RankMode {
	switch r {
	case RankTF:
		return RankPR
	case RankPR:
		return RankTFPR
	default:
		return RankTF
	}
}

// Label returns the short upper-case label used in the UI
func (r RankMode) Label() string {
	return strings.ToUpper(string(r))
}

// SearchSession is everything needed to reproduce a search request and its
// page of results. Advanced and RankMode only affect keyword searches but
// are kept in title mode so they survive a round trip.
type SearchSession struct {
	Query    string
	Mode     Mode
	Advanced bool
	RankMode RankMode
	Page     int
}

// EmptySession returns a fresh session with default mode and ranking
func EmptySession() SearchSession {
	return SearchSession{
		Mode:     ModeKeyword,
		RankMode: RankTF,
		Page:     1,
	}
}

// Valid reports whether every field holds a usable value
func (s SearchSession) Valid() bool {
	return s.Mode.Valid() && s.RankMode.Valid() && s.Page >= 1
}

// Blank reports whether the query is empty or whitespace only
func (s SearchSession) Blank() bool {
	return strings.TrimSpace(s.Query) == ""
}
