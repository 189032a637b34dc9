package tracks

import (
	"strings"

	"github.com/kmorel/notecast/constants"
	"github.com/kmorel/notecast/model"
	"github.com/kmorel/notecast/state"
	"golang.org/x/exp/slices"
)

// Engine maintains the set of currently audible track IDs as a fold over
// song changes, single-track toggles, and bulk queries. The exposed set is
// always sorted and duplicate-free, and always a subset of the current
// song's track IDs.
type Engine struct {
	cell *state.Cell[[]int]
}

// NewEngine returns an engine with an empty active set.
func NewEngine() *Engine {
	return &Engine{cell: state.NewCell[[]int]()}
}

// Current returns the latest active set.
func (e *Engine) Current() []int {
	cur, _ := e.cell.Get()
	return cur
}

// Reset replaces the active set with all tracks of a newly arrived song.
func (e *Engine) Reset(song *model.Song) []int {
	return e.cell.Update(func([]int) []int {
		return ResetFold(song)
	})
}

// Toggle flips a single track in or out of the set. Activating an ID the
// current song doesn't have is ignored, keeping the set a subset of the song.
func (e *Engine) Toggle(song *model.Song, t model.TrackToggle) []int {
	return e.cell.Update(func(cur []int) []int {
		return ToggleFold(cur, song, t)
	})
}

// Apply recomputes the set for a bulk query against the current song.
func (e *Engine) Apply(song *model.Song, q model.TrackQuery) []int {
	return e.cell.Update(func(cur []int) []int {
		return QueryFold(cur, song, q)
	})
}

// ResetFold yields all track IDs of the song.
func ResetFold(song *model.Song) []int {
	if song == nil {
		return []int{}
	}
	ids := song.TrackIDs()
	slices.Sort(ids)
	return ids
}

// ToggleFold adds or removes one ID; re-adding a present ID or removing an
// absent one is a no-op.
func ToggleFold(cur []int, song *model.Song, t model.TrackToggle) []int {
	present := slices.Contains(cur, t.ID)
	switch {
	case t.Active && !present:
		if song == nil || song.TrackByID(t.ID) == nil {
			return cur
		}
		out := append(append([]int{}, cur...), t.ID)
		slices.Sort(out)
		return out
	case !t.Active && present:
		out := make([]int, 0, len(cur)-1)
		for _, id := range cur {
			if id != t.ID {
				out = append(out, id)
			}
		}
		return out
	default:
		return cur
	}
}

// QueryFold applies a bulk query. "all" expresses absolute intent and
// replaces the set outright. "family" activation unions the matching tracks
// onto the current set; "search" activation does too, so manually added
// tracks survive a re-query. Deactivation always subtracts the matches.
func QueryFold(cur []int, song *model.Song, q model.TrackQuery) []int {
	if song == nil {
		return cur
	}

	var matches []int
	switch q.Kind {
	case model.QueryAll:
		if q.Active {
			return ResetFold(song)
		}
		return []int{}
	case model.QueryFamily:
		matches = matchFamily(song, q.Family)
	case model.QuerySearch:
		matches = matchTerms(song, ParseTerms(q.Search))
	default:
		return cur
	}

	if q.Active {
		return union(cur, matches)
	}
	return subtract(cur, matches)
}

// ParseTerms lower-cases and comma-splits a raw search string, dropping
// empty terms.
func ParseTerms(raw string) []string {
	var terms []string
	for _, term := range strings.Split(strings.ToLower(raw), ",") {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func matchFamily(song *model.Song, family string) []int {
	// "other" selects the tracks the decoder couldn't categorize
	if family == constants.FamilyOther {
		family = ""
	}
	var ids []int
	for _, t := range song.Tracks {
		if t.Family == family {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func matchTerms(song *model.Song, terms []string) []int {
	var ids []int
	for _, t := range song.Tracks {
		name := strings.ToLower(t.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				ids = append(ids, t.ID)
				break
			}
		}
	}
	return ids
}

func union(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		seen[id] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func subtract(a, b []int) []int {
	drop := make(map[int]struct{}, len(b))
	for _, id := range b {
		drop[id] = struct{}{}
	}
	out := make([]int, 0, len(a))
	for _, id := range a {
		if _, gone := drop[id]; !gone {
			out = append(out, id)
		}
	}
	return out
}
