package player

import (
	"context"
	"errors"
	"time"

	"github.com/kmorel/notecast/bucket"
	"github.com/kmorel/notecast/constants"
	"github.com/kmorel/notecast/logger"
	"github.com/kmorel/notecast/model"
	"github.com/kmorel/notecast/song"
	"github.com/kmorel/notecast/state"
	"github.com/kmorel/notecast/status"
	"github.com/kmorel/notecast/tracks"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"k8s.io/utils/clock"
)

// Player is the scheduling core: it ingests songs, runs the playback clock,
// applies track activation requests, and publishes state changes.
//
// All mutable playback state is owned by the Run goroutine; the exported
// methods only exchange messages with it, so there is exactly one writer.
type Player struct {
	log    *logrus.Entry
	clk    clock.WithTicker
	loader song.Loader

	trackEngine *tracks.Engine
	broadcaster *status.Broadcaster

	requests  chan model.Request
	online    chan bool
	loaded    chan loadResult
	notes     chan model.ScheduledNote
	interestc chan model.SongRef
	interest  *state.Cell[model.SongRef]

	// owned by Run
	current    *model.Song
	currentRef model.SongRef
	buckets    bucket.Map
	active     []int
	playback   model.PlaybackStatus
	// reachable is meaningless until reachableSet: no signal, no assumption
	reachable    bool
	reachableSet bool
	startedAt    time.Time
	offsetMs     int64
	ticker       clock.Ticker
	loadSeq      uint64
	cancelLoad   context.CancelFunc
}

type loadResult struct {
	seq  uint64
	ref  model.SongRef
	song *model.Song
	err  error
}

// New returns a player driven by the given clock and song loader.
func New(clk clock.WithTicker, loader song.Loader) *Player {
	return &Player{
		log:         logger.GetProjectLogger(),
		clk:         clk,
		loader:      loader,
		trackEngine: tracks.NewEngine(),
		broadcaster: status.New(),
		requests:    make(chan model.Request, 16),
		online:      make(chan bool, 4),
		loaded:      make(chan loadResult, 1),
		notes:       make(chan model.ScheduledNote, constants.NoteBufferSize),
		interestc:   make(chan model.SongRef, 4),
		interest:    state.NewCell[model.SongRef](),
	}
}

// Submit queues an inbound request. Requests are applied in arrival order.
func (p *Player) Submit(req model.Request) {
	p.requests <- req
}

// SetOnline feeds the device-reachability signal.
func (p *Player) SetOnline(on bool) {
	p.online <- on
}

// Notes is the instrument-event stream: notes stamped with the absolute
// instant they should sound.
func (p *Player) Notes() <-chan model.ScheduledNote {
	return p.notes
}

// Notifications is the outgoing change-notification channel.
func (p *Player) Notifications() <-chan model.Notification {
	return p.broadcaster.Notifications()
}

// Interest emits the SongRef whenever the player wants the downstream
// connection (re)established.
func (p *Player) Interest() <-chan model.SongRef {
	return p.interestc
}

// LastInterest returns the most recent connection-interest value, if any.
func (p *Player) LastInterest() (model.SongRef, bool) {
	return p.interest.Get()
}

// Snapshot returns the current value of the four observable properties.
func (p *Player) Snapshot() status.Snapshot {
	return p.broadcaster.Snapshot()
}

// Run processes requests, signals, load results, and clock ticks until the
// context is cancelled. It owns every piece of playback state.
func (p *Player) Run(ctx context.Context) {
	defer p.stopTicker()
	for {
		select {
		case <-ctx.Done():
			if p.cancelLoad != nil {
				p.cancelLoad()
			}
			return
		case req := <-p.requests:
			p.handleRequest(ctx, req)
		case on := <-p.online:
			p.handleOnline(on)
		case res := <-p.loaded:
			p.handleLoaded(res)
		case <-p.tick():
			p.handleTick()
		}
	}
}

// tick returns the live ticker channel, or nil (never ready) when stopped.
func (p *Player) tick() <-chan time.Time {
	if p.ticker == nil {
		return nil
	}
	return p.ticker.C()
}

func (p *Player) handleRequest(ctx context.Context, req model.Request) {
	switch req.Kind {
	case model.PlaySong:
		if req.Song == nil {
			p.log.Warn("play_song request without a song")
			return
		}
		p.handlePlay(ctx, *req.Song)
	case model.ChangePlaybackStatus:
		if req.Status == nil {
			p.log.Warn("change_playback_status request without a status")
			return
		}
		p.handleStatusChange(*req.Status)
	case model.ChangeTrackActiveStatus:
		if req.Track == nil {
			p.log.Warn("change_track_active_status request without a track")
			return
		}
		p.publishTracks(p.trackEngine.Toggle(p.current, *req.Track))
	case model.ChangeActiveTracks:
		if req.Query == nil {
			p.log.Warn("change_active_tracks request without a query")
			return
		}
		p.publishTracks(p.trackEngine.Apply(p.current, *req.Query))
	case model.UpdateStatuses:
		p.broadcaster.Resend()
	default:
		p.log.WithFields(logrus.Fields{"kind": req.Kind}).Warn("unknown request kind")
	}
}

func (p *Player) handlePlay(ctx context.Context, ref model.SongRef) {
	p.emitInterest(ref)

	// supersede any in-flight ingestion
	if p.cancelLoad != nil {
		p.cancelLoad()
	}
	p.loadSeq++
	seq := p.loadSeq

	loadCtx, cancel := context.WithCancel(ctx)
	p.cancelLoad = cancel

	p.log.WithFields(logrus.Fields{"label": ref.Label, "url": ref.URL}).Info("loading song")
	go func() {
		s, err := p.loader.Load(loadCtx, ref)
		select {
		case p.loaded <- loadResult{seq: seq, ref: ref, song: s, err: err}:
		case <-loadCtx.Done():
			// superseded or shut down before the result could be delivered
		}
	}()
}

func (p *Player) handleLoaded(res loadResult) {
	if res.seq != p.loadSeq {
		p.log.WithFields(logrus.Fields{"label": res.ref.Label}).Debug("stale load result, dropping")
		return
	}
	p.cancelLoad = nil
	if res.err != nil {
		// fail-soft: log, discard, keep whatever was current
		if errors.Is(res.err, context.Canceled) {
			p.log.WithFields(logrus.Fields{"label": res.ref.Label}).Info("song load cancelled")
		} else {
			p.log.WithFields(logrus.Fields{"label": res.ref.Label, "err": res.err}).Warn("song load failed")
		}
		return
	}

	p.current = res.song
	p.currentRef = res.ref
	p.buckets = bucket.Build(res.song)
	p.broadcaster.SetSong(res.song)
	// a new song always re-announces its track set, even if the IDs happen
	// to match the previous song's
	p.active = p.trackEngine.Reset(res.song)
	p.broadcaster.SetTracks(p.active)
	if p.offline() {
		p.log.WithFields(logrus.Fields{"title": res.song.Title}).
			Warn("song loaded but device is unreachable, holding playback")
		return
	}
	p.startPlaying()
}

// offline reports a device known to be unreachable. Before the first
// reachability signal nothing is assumed either way.
func (p *Player) offline() bool {
	return p.reachableSet && !p.reachable
}

func (p *Player) handleStatusChange(s model.PlaybackStatus) {
	switch s {
	case model.Playing:
		if p.current == nil {
			p.log.Warn("cannot start playback, no song loaded")
			return
		}
		if p.offline() {
			p.log.Warn("cannot start playback, device is unreachable")
			return
		}
		p.emitInterest(p.currentRef)
		p.startPlaying()
	case model.Stopped:
		p.stopPlaying()
	default:
		// declared on the wire, not implemented by this pipeline
		p.log.WithFields(logrus.Fields{"status": s}).Warn("unsupported playback status requested")
	}
}

func (p *Player) handleOnline(on bool) {
	if p.reachableSet && on == p.reachable {
		return
	}
	p.reachable = on
	p.reachableSet = true
	p.broadcaster.SetAvailability(on)
	if on {
		return
	}
	// device gone: abandon any in-flight ingestion and tear down the clock
	if p.cancelLoad != nil {
		p.cancelLoad()
		p.cancelLoad = nil
	}
	p.stopPlaying()
}

// startPlaying (re)enters PLAYING: it supersedes any live tick sequence,
// records the monotonic start instant, dispatches the 0 offset immediately,
// and ticks every stride after that.
func (p *Player) startPlaying() {
	p.stopTicker()
	p.startedAt = p.clk.Now()
	p.offsetMs = 0
	p.setPlayback(model.Playing)

	p.log.WithFields(logrus.Fields{
		"title":       p.current.Title,
		"duration_ms": p.current.DurationMs,
	}).Info("playback started")

	p.advance()
	if p.ticker == nil && p.playback == model.Playing {
		p.ticker = p.clk.NewTicker(constants.TickMs * time.Millisecond)
	}
}

func (p *Player) handleTick() {
	if p.playback != model.Playing {
		return
	}
	p.advance()
}

// advance emits the tick at the current offset, or ends the run when the
// song is exhausted.
func (p *Player) advance() {
	if p.offsetMs >= p.current.DurationMs {
		p.log.WithFields(logrus.Fields{"title": p.current.Title}).Info("song finished")
		p.stopPlaying()
		return
	}
	p.dispatch(p.offsetMs)
	p.offsetMs += constants.TickMs
}

func (p *Player) stopPlaying() {
	p.stopTicker()
	p.setPlayback(model.Stopped)
}

func (p *Player) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
}

// dispatch releases every due note on an active track, stamped with its
// absolute schedule time. A tick with nothing due produces nothing.
func (p *Player) dispatch(offsetMs int64) {
	byTrack := p.buckets.At(offsetMs)
	if byTrack == nil {
		return
	}
	for _, id := range p.active {
		for _, n := range byTrack[id] {
			scheduled := model.ScheduledNote{
				Pitch:      n.Pitch,
				Velocity:   n.Velocity,
				DurationMs: n.DurationMs,
				At:         p.startedAt.Add(time.Duration(n.TimeMs) * time.Millisecond),
			}
			select {
			case p.notes <- scheduled:
			default:
				p.log.Warn("note channel full, dropping note")
			}
		}
	}
}

func (p *Player) setPlayback(s model.PlaybackStatus) {
	if p.playback == s {
		return
	}
	p.playback = s
	p.broadcaster.SetPlayback(s)
}

func (p *Player) publishTracks(ids []int) {
	if slices.Equal(p.active, ids) {
		return
	}
	p.active = ids
	p.broadcaster.SetTracks(ids)
}

func (p *Player) emitInterest(ref model.SongRef) {
	p.interest.Set(ref)
	select {
	case p.interestc <- ref:
	default:
	}
}
