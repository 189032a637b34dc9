package status

import (
	"github.com/kmorel/notecast/constants"
	"github.com/kmorel/notecast/logger"
	"github.com/kmorel/notecast/model"
	"github.com/kmorel/notecast/state"
	"github.com/sirupsen/logrus"
)

// Broadcaster latches the four observable current values and converts each
// change into a notification on one outgoing channel. Resend re-announces
// whatever is latched, so a consumer that attaches late can catch up without
// waiting for a real change.
type Broadcaster struct {
	out chan model.Notification

	available *state.Cell[bool]
	playback  *state.Cell[model.PlaybackStatus]
	song      *state.Cell[*model.Song]
	tracks    *state.Cell[[]int]
}

// New returns a broadcaster with nothing latched yet.
func New() *Broadcaster {
	return &Broadcaster{
		out:       make(chan model.Notification, constants.NotificationBufferSize),
		available: state.NewCell[bool](),
		playback:  state.NewCell[model.PlaybackStatus](),
		song:      state.NewCell[*model.Song](),
		tracks:    state.NewCell[[]int](),
	}
}

// Notifications is the outgoing message channel.
func (b *Broadcaster) Notifications() <-chan model.Notification {
	return b.out
}

// SetAvailability publishes a device-reachability change.
func (b *Broadcaster) SetAvailability(available bool) {
	b.available.Set(available)
	b.emit(availabilityNotification(available))
}

// SetPlayback publishes a playback-status change.
func (b *Broadcaster) SetPlayback(status model.PlaybackStatus) {
	b.playback.Set(status)
	b.emit(playbackNotification(status))
}

// SetSong publishes a song change.
func (b *Broadcaster) SetSong(song *model.Song) {
	b.song.Set(song)
	b.emit(model.Notification{Kind: model.SongChanged, Song: song})
}

// SetTracks publishes an active-track-set change.
func (b *Broadcaster) SetTracks(ids []int) {
	b.tracks.Set(ids)
	b.emit(model.Notification{Kind: model.ActiveTracksChanged, TrackIDs: ids})
}

// Resend re-emits the latest latched value of every property, one
// notification each. Properties never set stay silent.
func (b *Broadcaster) Resend() {
	if available, ok := b.available.Get(); ok {
		b.emit(availabilityNotification(available))
	}
	if status, ok := b.playback.Get(); ok {
		b.emit(playbackNotification(status))
	}
	if song, ok := b.song.Get(); ok {
		b.emit(model.Notification{Kind: model.SongChanged, Song: song})
	}
	if ids, ok := b.tracks.Get(); ok {
		b.emit(model.Notification{Kind: model.ActiveTracksChanged, TrackIDs: ids})
	}
}

// Snapshot bundles the latched values for pull-style consumers.
type Snapshot struct {
	Available bool                 `json:"available"`
	Playback  model.PlaybackStatus `json:"playback"`
	Song      *model.Song          `json:"song,omitempty"`
	TrackIDs  []int                `json:"track_ids"`
}

// Snapshot returns the current value of all four properties.
func (b *Broadcaster) Snapshot() Snapshot {
	var snap Snapshot
	snap.Available, _ = b.available.Get()
	snap.Playback, _ = b.playback.Get()
	snap.Song, _ = b.song.Get()
	snap.TrackIDs, _ = b.tracks.Get()
	if snap.TrackIDs == nil {
		snap.TrackIDs = []int{}
	}
	return snap
}

func (b *Broadcaster) emit(n model.Notification) {
	select {
	case b.out <- n:
	default:
		logger.GetProjectLogger().WithFields(logrus.Fields{"kind": n.Kind}).
			Warn("notification channel full, dropping")
	}
}

func availabilityNotification(available bool) model.Notification {
	return model.Notification{Kind: model.InstrumentAvailabilityChanged, Available: &available}
}

func playbackNotification(status model.PlaybackStatus) model.Notification {
	return model.Notification{Kind: model.PlaybackStatusChanged, Status: &status}
}
