package model

import (
	"encoding/json"
	"fmt"
)

// PlaybackStatus is the playback clock state.
// Paused exists on the wire for forward compatibility but the engine never
// produces it and ignores requests for it.
type PlaybackStatus int

const (
	Stopped PlaybackStatus = iota
	Playing
	Paused
)

func (ps PlaybackStatus) String() string {
	switch ps {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// MarshalJSON implements json.Marshaler.
func (ps PlaybackStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (ps *PlaybackStatus) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "playing":
		*ps = Playing
	case "paused":
		*ps = Paused
	case "stopped":
		*ps = Stopped
	default:
		return fmt.Errorf("unknown playback status %q", name)
	}
	return nil
}

// TrackToggle flips a single track in or out of the active set.
type TrackToggle struct {
	ID     int  `json:"id"`
	Active bool `json:"active"`
}

// QueryKind selects which bulk-activation semantics a TrackQuery uses.
type QueryKind string

const (
	QueryAll    QueryKind = "all"
	QueryFamily QueryKind = "family"
	QuerySearch QueryKind = "search"
)

// TrackQuery is a bulk activation request. Family is only meaningful for
// QueryFamily ("other" means tracks with no family). Search is a raw
// comma-separated term list, only meaningful for QuerySearch.
type TrackQuery struct {
	Kind   QueryKind `json:"kind"`
	Family string    `json:"family,omitempty"`
	Search string    `json:"search,omitempty"`
	Active bool      `json:"active"`
}

// RequestKind enumerates the inbound message kinds.
type RequestKind string

const (
	PlaySong                RequestKind = "play_song"
	ChangePlaybackStatus    RequestKind = "change_playback_status"
	ChangeTrackActiveStatus RequestKind = "change_track_active_status"
	ChangeActiveTracks      RequestKind = "change_active_tracks"
	UpdateStatuses          RequestKind = "update_statuses"
)

// Request is the inbound message envelope. Exactly one payload field is set,
// matching Kind; UpdateStatuses carries none.
type Request struct {
	Kind   RequestKind     `json:"kind"`
	Song   *SongRef        `json:"song,omitempty"`
	Status *PlaybackStatus `json:"status,omitempty"`
	Track  *TrackToggle    `json:"track,omitempty"`
	Query  *TrackQuery     `json:"query,omitempty"`
}

// NotificationKind enumerates the outbound message kinds.
type NotificationKind string

const (
	InstrumentAvailabilityChanged NotificationKind = "instrument_availability_changed"
	PlaybackStatusChanged         NotificationKind = "playback_status_changed"
	SongChanged                   NotificationKind = "song_changed"
	ActiveTracksChanged           NotificationKind = "active_tracks_changed"
)

// Notification is the outbound message envelope: one of the four current
// values, emitted when it changes or when a re-announce is requested.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Available *bool            `json:"available,omitempty"`
	Status    *PlaybackStatus  `json:"status,omitempty"`
	Song      *Song            `json:"song,omitempty"`
	TrackIDs  []int            `json:"track_ids"`
}
