package device

import (
	"context"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/kmorel/notecast/logger"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const (
	rescanInterval   = time.Second
	debounceInterval = 500 * time.Millisecond
)

// Watcher polls the registered MIDI driver for out ports and reports
// reachability of the playback device. Transitions are debounced so a port
// that flaps during hot-plug doesn't stop playback spuriously.
//
// portName narrows the scan to ports containing that substring; empty
// means any out port counts.
type Watcher struct {
	log      *logrus.Entry
	portName string
	onChange func(bool)

	debounced func(func())
	reachable bool
	started   bool
}

// NewWatcher returns a watcher that calls onChange with every debounced
// reachability transition.
func NewWatcher(portName string, onChange func(bool)) *Watcher {
	return &Watcher{
		log:       logger.GetProjectLogger(),
		portName:  portName,
		onChange:  onChange,
		debounced: debounce.New(debounceInterval),
	}
}

// Run scans until the context is cancelled. The first scan reports
// immediately so the core starts from a real value instead of a guess.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(rescanInterval)
	defer ticker.Stop()

	w.scan()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	reachable := w.portPresent()
	if w.started && reachable == w.reachable {
		return
	}
	w.reachable = reachable

	if !w.started {
		w.started = true
		w.report(reachable)
		return
	}
	w.debounced(func() {
		w.report(reachable)
	})
}

func (w *Watcher) report(reachable bool) {
	w.log.WithFields(logrus.Fields{"reachable": reachable, "port": w.portName}).
		Info("device reachability changed")
	w.onChange(reachable)
}

func (w *Watcher) portPresent() bool {
	outs, err := drivers.Get().Outs()
	if err != nil {
		w.log.WithFields(logrus.Fields{"err": err}).Warn("listing midi out ports failed")
		return false
	}
	for _, out := range outs {
		if w.portName == "" || containsCI(out.String(), w.portName) {
			return true
		}
	}
	return false
}

func containsCI(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
