package playback

import (
	"errors"
	"time"

	"github.com/younwookim/tas/internal/application/state"
	"github.com/younwookim/tas/internal/infrastructure/codec"
)

// DefaultWatchInterval is how often the opened ledger file is polled
const DefaultWatchInterval = 500 * time.Millisecond

// fileWatch remembers the ledger file last opened or saved
type fileWatch struct {
	path     string
	modTime  time.Time
	interval time.Duration
	lastPoll time.Time
	// failed is the modification time of a version that did not parse,
	// so it is not reparsed every poll
	failed time.Time
}

func (w *fileWatch) track(path string) {
	w.path = path
	w.failed = time.Time{}
	w.modTime = time.Time{}
	if mt, err := codec.ModTime(path); err == nil {
		w.modTime = mt
	}
}

// Path returns the ledger file last opened or saved
func (e *Engine) Path() string {
	return e.watch.path
}

// Open loads a ledger file and makes it the active ledger. A file that does
// not parse leaves the active ledger untouched. Ignored during a session.
func (e *Engine) Open(path string) error {
	if e.mode.Active() || e.reset.active() {
		return nil
	}

	l, err := codec.LoadFile(path)
	if err != nil {
		return err
	}
	e.ledger = l
	e.watch.track(path)
	e.logger.Printf("opened %s (%d frames)", path, l.FrameCount())

	if l.CheckpointID >= 0 {
		e.logger.Printf("ledger starts at checkpoint %d", l.CheckpointID)
	}
	if l.LevelID != "" && l.LevelID != e.host.CurrentLevel() {
		e.logger.Printf("loading ledger level %s", l.LevelID)
		e.host.LoadLevel(l.LevelID)
	}
	return nil
}

// Save writes the active ledger, as CSV for .csv paths and binary otherwise.
// Saving an empty ledger does nothing. Ignored during a session.
func (e *Engine) Save(path string) error {
	if e.mode.Active() || e.reset.active() || e.ledger.FrameCount() == 0 {
		return nil
	}

	if err := codec.SaveFile(path, e.ledger); err != nil {
		return err
	}
	e.watch.track(path)
	e.logger.Printf("saved %s (%d frames)", path, e.ledger.FrameCount())
	return nil
}

// checkFileChanged reloads and replays the opened file after it was edited.
// Errors reading the file are skipped and retried on the next poll.
func (e *Engine) checkFileChanged() {
	w := &e.watch
	if w.path == "" || e.mode == state.Recording || e.reset.active() {
		return
	}

	now := e.now()
	if !w.lastPoll.IsZero() && now.Sub(w.lastPoll) < w.interval {
		return
	}
	w.lastPoll = now

	mt, err := codec.ModTime(w.path)
	if err != nil || !mt.After(w.modTime) || mt.Equal(w.failed) {
		return
	}

	e.logger.Printf("file change detected: %s", w.path)
	e.StopPlayback()

	l, err := codec.LoadFile(w.path)
	var ioErr *codec.IOError
	if errors.As(err, &ioErr) {
		return
	}
	if err != nil {
		w.failed = mt
		e.logger.Printf("reload %s: %v", w.path, err)
		return
	}
	e.ledger = l
	w.modTime = mt
	w.failed = time.Time{}
	e.logger.Printf("reloaded %s (%d frames)", w.path, l.FrameCount())

	e.StartPlayback()
}
