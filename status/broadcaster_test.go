package status

import (
	"testing"

	"github.com/kmorel/notecast/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(b *Broadcaster) []model.Notification {
	var out []model.Notification
	for {
		select {
		case n := <-b.Notifications():
			out = append(out, n)
		default:
			return out
		}
	}
}

func TestEachChangeEmitsOneNotification(t *testing.T) {
	b := New()
	b.SetAvailability(true)
	b.SetPlayback(model.Playing)
	b.SetTracks([]int{0, 1})

	got := drain(b)
	require.Equal(t, 3, len(got))

	assert := assert.New(t)
	assert.Equal(model.InstrumentAvailabilityChanged, got[0].Kind)
	assert.True(*got[0].Available)
	assert.Equal(model.PlaybackStatusChanged, got[1].Kind)
	assert.Equal(model.Playing, *got[1].Status)
	assert.Equal(model.ActiveTracksChanged, got[2].Kind)
	assert.Equal([]int{0, 1}, got[2].TrackIDs)
}

func TestResendReemitsLatestValuesExactlyOnce(t *testing.T) {
	b := New()
	s := &model.Song{Title: "test", DurationMs: 500}
	b.SetAvailability(false)
	b.SetAvailability(true)
	b.SetPlayback(model.Stopped)
	b.SetSong(s)
	b.SetTracks([]int{2})
	drain(b)

	b.Resend()
	got := drain(b)
	require.Equal(t, 4, len(got))

	byKind := map[model.NotificationKind]model.Notification{}
	for _, n := range got {
		_, dup := byKind[n.Kind]
		require.False(t, dup, "kind %v re-announced more than once", n.Kind)
		byKind[n.Kind] = n
	}

	assert := assert.New(t)
	assert.True(*byKind[model.InstrumentAvailabilityChanged].Available)
	assert.Equal(model.Stopped, *byKind[model.PlaybackStatusChanged].Status)
	assert.Equal(s, byKind[model.SongChanged].Song)
	assert.Equal([]int{2}, byKind[model.ActiveTracksChanged].TrackIDs)
}

func TestResendSkipsNeverSetProperties(t *testing.T) {
	b := New()
	b.SetPlayback(model.Playing)
	drain(b)

	b.Resend()
	got := drain(b)
	require.Equal(t, 1, len(got))
	assert.Equal(t, model.PlaybackStatusChanged, got[0].Kind)
}

func TestSnapshot(t *testing.T) {
	b := New()
	snap := b.Snapshot()
	assert.Equal(t, []int{}, snap.TrackIDs)
	assert.Equal(t, model.Stopped, snap.Playback)

	b.SetAvailability(true)
	b.SetTracks([]int{1, 3})
	snap = b.Snapshot()
	assert.True(t, snap.Available)
	assert.Equal(t, []int{1, 3}, snap.TrackIDs)
}
