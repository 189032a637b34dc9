package midi

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kmorel/notecast/model"
	"github.com/kmorel/notecast/util"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"
)

// Decode parses SMF bytes into a Song.
// Title is whatever the file embeds (possibly empty); the ingestion layer
// substitutes the caller's label when it is.
func Decode(data []byte) (song *model.Song, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing midi data: %w", err)
	}

	return FromSMF(parsed), nil
}

// pending keys an unmatched note-on by pitch.
type pending struct {
	velocity uint8
	timeMs   int64
}

// FromSMF converts a parsed SMF into the normalized Song form. Track IDs are
// the source track numbers, so they stay stable even when silent tracks are
// dropped. Note times come from the file's tempo map via TimeAt.
func FromSMF(s *smf.SMF) *model.Song {
	var song model.Song

	for num, events := range s.Tracks {
		var (
			track   model.Track
			absTick int64
			open    = make(map[uint8]pending)
		)
		track.ID = num

		for _, event := range events {
			absTick += int64(event.Delta)
			timeMs := s.TimeAt(absTick) / 1000

			var channel, key, velocity uint8
			var text string
			switch {
			case event.Message.GetNoteStart(&channel, &key, &velocity):
				// a re-struck key closes the previous note first
				closeNote(&track, open, key, timeMs)
				open[key] = pending{velocity: velocity, timeMs: timeMs}
			case event.Message.GetNoteEnd(&channel, &key):
				closeNote(&track, open, key, timeMs)
			case event.Message.GetMetaTrackName(&text):
				if track.Name == "" {
					track.Name = text
				}
				if song.Title == "" && num == 0 {
					song.Title = text
				}
			case event.Message.GetMetaInstrument(&text):
				if track.Name == "" {
					track.Name = text
				}
			case event.Message.GetProgramChange(&channel, &key):
				if track.Family == "" {
					track.Family = Family(key)
				}
			}
		}

		// flush note-ons that never saw a note-off
		for _, key := range util.SortedKeys(open) {
			closeNote(&track, open, key, s.TimeAt(absTick)/1000)
		}

		if len(track.Notes) == 0 {
			continue
		}
		// note-offs closed these in release order; expose them in onset order
		slices.SortStableFunc(track.Notes, func(a, b model.Note) bool {
			return a.TimeMs < b.TimeMs
		})
		if track.Name == "" {
			track.Name = fmt.Sprintf("Track %v", num)
		}
		for _, n := range track.Notes {
			song.DurationMs = util.Max(song.DurationMs, n.TimeMs+n.DurationMs)
		}
		song.Tracks = append(song.Tracks, track)
	}

	return &song
}

func closeNote(track *model.Track, open map[uint8]pending, key uint8, endMs int64) {
	p, ok := open[key]
	if !ok {
		return
	}
	delete(open, key)
	track.Notes = append(track.Notes, model.Note{
		Pitch:      key,
		Velocity:   p.velocity,
		DurationMs: endMs - p.timeMs,
		TimeMs:     p.timeMs,
	})
}
