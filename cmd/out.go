package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kmorel/notecast/constants"
	"github.com/kmorel/notecast/logger"
	"github.com/kmorel/notecast/model"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

// findOutPort picks the MIDI out port to drive: the first one matching the
// configured substring, or port 0 when nothing is configured.
func findOutPort() (drivers.Out, error) {
	name := constants.GetOutPortName()
	if name == "" {
		return midi.OutPort(0)
	}
	outs, err := drivers.Get().Outs()
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		if containsCI(out.String(), name) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no midi out port matching %q", name)
}

// consumeNotes drains the instrument-event stream into a real out port.
// Without a reachable port the notes are logged and discarded; the core
// keeps its own idea of reachability via the device watcher.
func consumeNotes(ctx context.Context, notes <-chan model.ScheduledNote) {
	log := logger.GetProjectLogger()

	var send func(midi.Message) error
	if out, err := findOutPort(); err == nil {
		if s, err := midi.SendTo(out); err == nil {
			send = s
		} else {
			log.WithFields(logrus.Fields{"err": err}).Warn("opening midi out failed")
		}
	} else {
		log.WithFields(logrus.Fields{"err": err}).Warn("no midi out port, notes will be discarded")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-notes:
			scheduleNote(send, n)
		}
	}
}

// scheduleNote fires note-on at the stamped instant and note-off after the
// note's duration.
func scheduleNote(send func(midi.Message) error, n model.ScheduledNote) {
	if send == nil {
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"pitch": n.Pitch, "at": n.At,
		}).Debug("dropping note, no out port")
		return
	}
	delay := time.Until(n.At)
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		if err := send(midi.NoteOn(0, n.Pitch, n.Velocity)); err != nil {
			return
		}
		time.AfterFunc(time.Duration(n.DurationMs)*time.Millisecond, func() {
			send(midi.NoteOff(0, n.Pitch))
		})
	})
}

func containsCI(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
