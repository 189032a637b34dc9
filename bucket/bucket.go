package bucket

import (
	"github.com/kmorel/notecast/constants"
	"github.com/kmorel/notecast/model"
)

// Map groups a song's notes by quantized onset. The outer key is the bucket
// offset in ms (a multiple of the tick stride), the inner key a track ID.
// A Map is built once per decoded song and read-only afterwards.
type Map map[int64]map[int][]model.Note

// Key quantizes an onset down to its bucket offset.
func Key(timeMs int64) int64 {
	return timeMs / constants.TickMs * constants.TickMs
}

// Build places every note of the song in exactly one bucket. Unquantized
// note times are kept on the notes themselves; only the lookup key is
// quantized.
func Build(song *model.Song) Map {
	m := make(Map)
	for _, track := range song.Tracks {
		for _, note := range track.Notes {
			key := Key(note.TimeMs)
			byTrack := m[key]
			if byTrack == nil {
				byTrack = make(map[int][]model.Note)
				m[key] = byTrack
			}
			byTrack[track.ID] = append(byTrack[track.ID], note)
		}
	}
	return m
}

// At returns the bucket due at the given offset, or nil when the song has
// nothing there (a silent tick, not an error).
func (m Map) At(offsetMs int64) map[int][]model.Note {
	return m[offsetMs]
}
