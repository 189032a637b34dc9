package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// 480 ticks per quarter at the default 120bpm makes one tick ~1.04ms, so
// 480 ticks is exactly 500ms of wall time.
const testTicks = 480

func makeSMF(tracks ...smf.Track) *smf.SMF {
	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(testTicks)
	for _, tr := range tracks {
		s.Tracks = append(s.Tracks, tr)
	}
	return &s
}

func TestFromSMFBasicSong(t *testing.T) {
	var piano smf.Track
	piano.Add(0, smf.MetaTrackSequenceName("Grand Piano"))
	piano.Add(0, smf.Message(midi.ProgramChange(0, 0)))
	piano.Add(0, smf.Message(midi.NoteOn(0, 60, 100)))
	piano.Add(testTicks, smf.Message(midi.NoteOff(0, 60)))
	piano.Close(0)

	var bass smf.Track
	bass.Add(0, smf.MetaTrackSequenceName("Bass"))
	bass.Add(0, smf.Message(midi.ProgramChange(0, 33)))
	bass.Add(testTicks/2, smf.Message(midi.NoteOn(0, 40, 90)))
	bass.Add(testTicks/2, smf.Message(midi.NoteOff(0, 40)))
	bass.Close(0)

	song := FromSMF(makeSMF(piano, bass))

	assert := assert.New(t)
	assert.Equal("Grand Piano", song.Title)
	assert.Equal(2, len(song.Tracks))

	assert.Equal(0, song.Tracks[0].ID)
	assert.Equal("Grand Piano", song.Tracks[0].Name)
	assert.Equal("piano", song.Tracks[0].Family)
	assert.Equal(1, len(song.Tracks[0].Notes))
	assert.Equal(uint8(60), song.Tracks[0].Notes[0].Pitch)
	assert.Equal(uint8(100), song.Tracks[0].Notes[0].Velocity)
	assert.Equal(int64(0), song.Tracks[0].Notes[0].TimeMs)
	assert.Equal(int64(500), song.Tracks[0].Notes[0].DurationMs)

	assert.Equal(1, song.Tracks[1].ID)
	assert.Equal("bass", song.Tracks[1].Family)
	assert.Equal(int64(250), song.Tracks[1].Notes[0].TimeMs)
	assert.Equal(int64(250), song.Tracks[1].Notes[0].DurationMs)

	// duration is the last note end across all tracks
	assert.Equal(int64(500), song.DurationMs)
}

func TestFromSMFSkipsSilentTracksButKeepsIDs(t *testing.T) {
	var meta smf.Track
	meta.Add(0, smf.MetaTrackSequenceName("conductor"))
	meta.Close(0)

	var voice smf.Track
	voice.Add(0, smf.Message(midi.NoteOn(0, 72, 80)))
	voice.Add(testTicks, smf.Message(midi.NoteOff(0, 72)))
	voice.Close(0)

	song := FromSMF(makeSMF(meta, voice))

	assert := assert.New(t)
	assert.Equal(1, len(song.Tracks))
	// ID stays the source track number even though track 0 was dropped
	assert.Equal(1, song.Tracks[0].ID)
}

func TestFromSMFUnnamedTrackGetsFallbackName(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.Message(midi.NoteOn(0, 60, 64)))
	tr.Add(testTicks, smf.Message(midi.NoteOff(0, 60)))
	tr.Close(0)

	song := FromSMF(makeSMF(tr))

	assert.Equal(t, "Track 0", song.Tracks[0].Name)
	assert.Equal(t, "", song.Tracks[0].Family)
}

func TestFromSMFClosesDanglingNotes(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.Message(midi.NoteOn(0, 60, 64)))
	// no note-off at all
	tr.Close(testTicks)

	song := FromSMF(makeSMF(tr))

	assert.Equal(t, 1, len(song.Tracks[0].Notes))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not a midi file"))
	assert.Error(t, err)
}

func TestFamily(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("piano", Family(0))
	assert.Equal("piano", Family(7))
	assert.Equal("guitar", Family(24))
	assert.Equal("bass", Family(33))
	assert.Equal("strings", Family(40))
	assert.Equal("sound effects", Family(127))
}
