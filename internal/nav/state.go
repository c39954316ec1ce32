package nav

import (
	"github.com/justyntemme/bookseek-t/internal/coerce"
)

// MaxDecodeDepth caps the number of FromBook links read back from stored state
const MaxDecodeDepth = 64

// Route state keys
const (
	keyFromSearch = "fromSearch"
	keyFromBook   = "fromBook"
	keySavedState = "savedState"

	keyQuery    = "query"
	keyMode     = "mode"
	keyAdvanced = "advanced"
	keyRankMode = "rankMode"
	keyPage     = "page"
)

// Encode converts ctx into a loosely-typed map suitable for JSON storage.
// Root encodes as nil.
func Encode(ctx Context) map[string]any {
	switch ctx.kind {
	case KindFromSearch:
		return map[string]any{keyFromSearch: encodeSession(ctx.session)}
	case KindFromBook:
		if ctx.parent == nil {
			return nil
		}
		m := map[string]any{keyFromBook: int(ctx.parentID)}
		if saved := Encode(*ctx.parent); saved != nil {
			m[keySavedState] = saved
		}
		return m
	}
	return nil
}

func encodeSession(s SearchSession) map[string]any {
	return map[string]any{
		keyQuery:    s.Query,
		keyMode:     string(s.Mode),
		keyAdvanced: s.Advanced,
		keyRankMode: string(s.RankMode),
		keyPage:     s.Page,
	}
}

// Decode reads a context written by Encode, or any value of similar shape
// (numbers as strings, booleans as "true"). It never fails: missing or
// malformed fields make that level of the chain Root.
func Decode(state any) Context {
	return decode(state, 0)
}

func decode(state any, depth int) Context {
	m, ok := state.(map[string]any)
	if !ok || depth > MaxDecodeDepth {
		return Root()
	}

	if raw, ok := m[keyFromBook]; ok {
		id := coerce.ToInt(raw, 0)
		if id <= 0 {
			return Root()
		}
		return FromBook(BookID(id), decode(m[keySavedState], depth+1))
	}

	if raw, ok := m[keyFromSearch]; ok {
		session, ok := decodeSession(raw)
		if !ok {
			return Root()
		}
		return FromSearch(session)
	}

	return Root()
}

func decodeSession(raw any) (SearchSession, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return SearchSession{}, false
	}

	s := SearchSession{
		Query:    coerce.ToString(m[keyQuery]),
		Mode:     Mode(coerce.ToString(m[keyMode])),
		Advanced: coerce.ToBool(m[keyAdvanced]),
		RankMode: RankMode(coerce.ToString(m[keyRankMode])),
		Page:     coerce.ToInt(m[keyPage], 1),
	}
	if s.Mode == "" {
		s.Mode = ModeKeyword
	}
	if s.RankMode == "" {
		s.RankMode = RankTF
	}
	return s, s.Valid()
}
