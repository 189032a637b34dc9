package model

import "time"

// SongRef points at an encoded song somewhere retrievable. It is supplied by
// the caller and never mutated.
type SongRef struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Note is a single note event, times relative to song start.
type Note struct {
	Pitch      uint8 `json:"pitch"`
	Velocity   uint8 `json:"velocity"`
	DurationMs int64 `json:"duration_ms"`
	TimeMs     int64 `json:"time_ms"`
}

// Track is one voice of a decoded song. ID is derived from the track's
// position in the source file and is stable across re-decodes.
// Family is a coarse instrument category ("" when the decoder couldn't tell).
type Track struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Family string `json:"family,omitempty"`
	Notes  []Note `json:"notes,omitempty"`
}

// Song is the decoded, normalized form of a SongRef. Exactly one Song is
// current at a time; a newly decoded Song replaces the previous one entirely.
type Song struct {
	Title      string  `json:"title"`
	DurationMs int64   `json:"duration_ms"`
	Tracks     []Track `json:"tracks"`
}

// TrackIDs returns the IDs of all tracks in source order.
func (s *Song) TrackIDs() []int {
	ids := make([]int, 0, len(s.Tracks))
	for _, t := range s.Tracks {
		ids = append(ids, t.ID)
	}
	return ids
}

// TrackByID returns the track with the given ID, or nil.
func (s *Song) TrackByID(id int) *Track {
	for i := range s.Tracks {
		if s.Tracks[i].ID == id {
			return &s.Tracks[i]
		}
	}
	return nil
}

// ScheduledNote is a note stamped with the absolute instant it should sound.
// It travels on its own channel, outside the notification envelope.
type ScheduledNote struct {
	Pitch      uint8     `json:"pitch"`
	Velocity   uint8     `json:"velocity"`
	DurationMs int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}
