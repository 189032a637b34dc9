package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/kmorel/notecast/fetch"
	"github.com/kmorel/notecast/logger"
	"github.com/kmorel/notecast/model"
	"github.com/kmorel/notecast/player"
	"github.com/kmorel/notecast/song"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"k8s.io/utils/clock"
)

var playLabel string

func init() {
	playCmd.Flags().StringVar(&playLabel, "label", "", "song label used when the file embeds no title")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Plays one song to a MIDI out port",
	Long:  `Plays one song to a MIDI out port, then exits.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		play(args[0])
	},
}

func play(url string) {
	defer midi.CloseDriver()
	log := logger.GetProjectLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	p := player.New(clock.RealClock{}, song.NewLoader(fetch.New()))
	go p.Run(ctx)
	go consumeNotes(ctx, p.Notes())

	p.Submit(model.Request{
		Kind: model.PlaySong,
		Song: &model.SongRef{Label: playLabel, URL: url},
	})

	// the run is over once the clock leaves PLAYING again
	started := false
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-p.Notifications():
			switch n.Kind {
			case model.SongChanged:
				log.WithFields(logrus.Fields{
					"title":       n.Song.Title,
					"tracks":      len(n.Song.Tracks),
					"duration_ms": n.Song.DurationMs,
				}).Info("song loaded")
			case model.PlaybackStatusChanged:
				if n.Status == nil {
					continue
				}
				switch *n.Status {
				case model.Playing:
					started = true
				case model.Stopped:
					if started {
						// let scheduled note-offs flush before tearing down
						time.Sleep(time.Second)
						return
					}
				}
			}
		}
	}
}
