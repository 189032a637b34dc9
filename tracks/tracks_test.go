package tracks

import (
	"testing"

	"github.com/kmorel/notecast/model"
	"github.com/stretchr/testify/assert"
)

func testSong() *model.Song {
	return &model.Song{
		Title: "test",
		Tracks: []model.Track{
			{ID: 0, Name: "Grand Piano", Family: "piano"},
			{ID: 1, Name: "Electric Bass", Family: "bass"},
			{ID: 2, Name: "Drums"},
			{ID: 3, Name: "Piano Pad", Family: "synth pad"},
			{ID: 4, Name: "Lead Vocal"},
		},
	}
}

func TestResetActivatesAllTracks(t *testing.T) {
	e := NewEngine()
	got := e.Reset(testSong())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestResetDiscardsManualToggles(t *testing.T) {
	s := testSong()
	e := NewEngine()
	e.Reset(s)
	e.Toggle(s, model.TrackToggle{ID: 3, Active: false})
	e.Toggle(s, model.TrackToggle{ID: 4, Active: false})

	got := e.Reset(s)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestToggleAddAndRemove(t *testing.T) {
	s := testSong()
	assert := assert.New(t)

	cur := ToggleFold([]int{0, 1}, s, model.TrackToggle{ID: 3, Active: true})
	assert.Equal([]int{0, 1, 3}, cur)

	// re-adding a present id does not duplicate
	cur = ToggleFold(cur, s, model.TrackToggle{ID: 3, Active: true})
	assert.Equal([]int{0, 1, 3}, cur)

	cur = ToggleFold(cur, s, model.TrackToggle{ID: 1, Active: false})
	assert.Equal([]int{0, 3}, cur)

	// removing an absent id is a no-op
	cur = ToggleFold(cur, s, model.TrackToggle{ID: 1, Active: false})
	assert.Equal([]int{0, 3}, cur)
}

func TestToggleUnknownTrackKeepsSubsetInvariant(t *testing.T) {
	s := testSong()
	cur := ToggleFold([]int{0}, s, model.TrackToggle{ID: 99, Active: true})
	assert.Equal(t, []int{0}, cur)
}

func TestQueryAll(t *testing.T) {
	s := testSong()
	assert := assert.New(t)

	got := QueryFold([]int{2}, s, model.TrackQuery{Kind: model.QueryAll, Active: true})
	assert.Equal([]int{0, 1, 2, 3, 4}, got)

	got = QueryFold(got, s, model.TrackQuery{Kind: model.QueryAll, Active: false})
	assert.Equal([]int{}, got)
}

func TestQueryFamilyAddsOntoCurrentSet(t *testing.T) {
	s := testSong()
	got := QueryFold([]int{2}, s, model.TrackQuery{Kind: model.QueryFamily, Family: "piano", Active: true})
	assert.Equal(t, []int{0, 2}, got)
}

func TestQueryFamilyIdempotent(t *testing.T) {
	s := testSong()
	q := model.TrackQuery{Kind: model.QueryFamily, Family: "bass", Active: true}
	once := QueryFold([]int{0}, s, q)
	twice := QueryFold(once, s, q)
	assert.Equal(t, once, twice)
}

func TestQueryFamilyRemove(t *testing.T) {
	s := testSong()
	got := QueryFold([]int{0, 1, 2, 3}, s, model.TrackQuery{Kind: model.QueryFamily, Family: "piano", Active: false})
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestQueryFamilyOtherMeansNoFamily(t *testing.T) {
	s := testSong()
	got := QueryFold([]int{}, s, model.TrackQuery{Kind: model.QueryFamily, Family: "other", Active: true})
	assert.Equal(t, []int{2, 4}, got)
}

func TestAllOffThenFamilyOnYieldsExactlyFamily(t *testing.T) {
	s := testSong()
	cur := QueryFold([]int{0, 1, 2, 3, 4}, s, model.TrackQuery{Kind: model.QueryAll, Active: false})
	got := QueryFold(cur, s, model.TrackQuery{Kind: model.QueryFamily, Family: "piano", Active: true})
	assert.Equal(t, []int{0}, got)
}

func TestSearchPreservesManualAdditions(t *testing.T) {
	s := testSong()
	// track 2 was added manually and doesn't match "piano"
	got := QueryFold([]int{2}, s, model.TrackQuery{Kind: model.QuerySearch, Search: "piano", Active: true})
	assert.Equal(t, []int{0, 2, 3}, got)
}

func TestSearchRemove(t *testing.T) {
	s := testSong()
	got := QueryFold([]int{0, 1, 2, 3}, s, model.TrackQuery{Kind: model.QuerySearch, Search: "piano", Active: false})
	assert.Equal(t, []int{1, 2}, got)
}

func TestSearchMultipleTerms(t *testing.T) {
	s := testSong()
	got := QueryFold([]int{}, s, model.TrackQuery{Kind: model.QuerySearch, Search: "Bass, VOCAL", Active: true})
	assert.Equal(t, []int{1, 4}, got)
}

func TestSearchNoMatchLeavesSetUnchanged(t *testing.T) {
	s := testSong()
	got := QueryFold([]int{1}, s, model.TrackQuery{Kind: model.QuerySearch, Search: "theremin", Active: true})
	assert.Equal(t, []int{1}, got)
}

func TestQueryWithoutSongIsNoop(t *testing.T) {
	got := QueryFold([]int{1, 2}, nil, model.TrackQuery{Kind: model.QueryAll, Active: false})
	assert.Equal(t, []int{1, 2}, got)
}

func TestParseTerms(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"piano", "bass"}, ParseTerms("Piano, BASS"))
	assert.Equal([]string{"a"}, ParseTerms("a,,  ,"))
	assert.Nil(ParseTerms(""))
}

func TestSubsetInvariantUnderRequestSequences(t *testing.T) {
	s := testSong()
	e := NewEngine()
	e.Reset(s)

	steps := []func(){
		func() { e.Toggle(s, model.TrackToggle{ID: 4, Active: false}) },
		func() { e.Apply(s, model.TrackQuery{Kind: model.QuerySearch, Search: "piano", Active: true}) },
		func() { e.Apply(s, model.TrackQuery{Kind: model.QueryAll, Active: false}) },
		func() { e.Toggle(s, model.TrackToggle{ID: 2, Active: true}) },
		func() { e.Apply(s, model.TrackQuery{Kind: model.QueryFamily, Family: "bass", Active: true}) },
		func() { e.Apply(s, model.TrackQuery{Kind: model.QueryFamily, Family: "other", Active: false}) },
	}
	valid := map[int]bool{}
	for _, id := range s.TrackIDs() {
		valid[id] = true
	}
	for _, step := range steps {
		step()
		for _, id := range e.Current() {
			assert.True(t, valid[id], "active set leaked id %v", id)
		}
	}
}
