package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/kmorel/notecast/constants"
	"github.com/kmorel/notecast/device"
	"github.com/kmorel/notecast/fetch"
	"github.com/kmorel/notecast/logger"
	"github.com/kmorel/notecast/model"
	"github.com/kmorel/notecast/player"
	"github.com/kmorel/notecast/song"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var (
	core     *player.Player
	hub      *wsHub
	coreOnce sync.Once
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the playback daemon",
	Long:  `Runs the playback daemon: REST + websocket control surface and MIDI output.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

// StartCore wires up and starts the player, the notification fan-out, and
// the note consumer. Safe to call more than once.
func StartCore(ctx context.Context) {
	coreOnce.Do(func() {
		core = player.New(clock.RealClock{}, song.NewLoader(fetch.New()))
		hub = newWSHub()

		go core.Run(ctx)
		go forwardNotifications(ctx)
		go consumeNotes(ctx, core.Notes())
		go logInterest(ctx)
	})
}

func forwardNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-core.Notifications():
			hub.broadcast(n)
		}
	}
}

func logInterest(ctx context.Context) {
	log := logger.GetProjectLogger()
	for {
		select {
		case <-ctx.Done():
			return
		case ref := <-core.Interest():
			log.WithFields(logrus.Fields{"label": ref.Label}).Info("connection interest")
		}
	}
}

// NewRouter builds the REST + websocket surface.
func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/play", HandlePlay).Methods("POST")
	router.HandleFunc("/playback", HandlePlayback).Methods("POST")
	router.HandleFunc("/tracks", HandleTrackToggle).Methods("POST")
	router.HandleFunc("/tracks/query", HandleTrackQuery).Methods("POST")
	router.HandleFunc("/refresh", HandleRefresh).Methods("POST")
	router.HandleFunc("/status", HandleStatus).Methods("GET")
	router.HandleFunc("/ws", handleWS)
	return cors.Default().Handler(router)
}

func serve() {
	log := logger.GetProjectLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartCore(ctx)

	watcher := device.NewWatcher(constants.GetOutPortName(), core.SetOnline)
	go watcher.Run(ctx)

	addr := constants.GetListenAddr()
	log.WithFields(logrus.Fields{"addr": addr}).Info("listening")
	log.Fatal(http.ListenAndServe(addr, NewRouter()))
}

// HandlePlay starts ingestion + playback of the posted SongRef.
func HandlePlay(w http.ResponseWriter, r *http.Request) {
	var ref model.SongRef
	if !decodeBody(w, r, &ref) {
		return
	}
	if ref.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	core.Submit(model.Request{Kind: model.PlaySong, Song: &ref})
	writeOk(w)
}

// HandlePlayback applies an explicit playback-status change.
func HandlePlayback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.PlaybackStatus `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	core.Submit(model.Request{Kind: model.ChangePlaybackStatus, Status: &body.Status})
	writeOk(w)
}

// HandleTrackToggle flips a single track in or out of the active set.
func HandleTrackToggle(w http.ResponseWriter, r *http.Request) {
	var toggle model.TrackToggle
	if !decodeBody(w, r, &toggle) {
		return
	}
	core.Submit(model.Request{Kind: model.ChangeTrackActiveStatus, Track: &toggle})
	writeOk(w)
}

// HandleTrackQuery applies a bulk activation query.
func HandleTrackQuery(w http.ResponseWriter, r *http.Request) {
	var query model.TrackQuery
	if !decodeBody(w, r, &query) {
		return
	}
	switch query.Kind {
	case model.QueryAll, model.QueryFamily, model.QuerySearch:
	default:
		writeError(w, http.StatusBadRequest, "unknown query kind")
		return
	}
	core.Submit(model.Request{Kind: model.ChangeActiveTracks, Query: &query})
	writeOk(w)
}

// HandleRefresh re-announces the current value of every property.
func HandleRefresh(w http.ResponseWriter, r *http.Request) {
	core.Submit(model.Request{Kind: model.UpdateStatuses})
	writeOk(w)
}

// HandleStatus returns a snapshot of the four current values.
func HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(core.Snapshot())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func writeOk(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.OkResponse{Ok: true})
}
