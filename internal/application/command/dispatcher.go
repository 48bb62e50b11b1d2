package command

import (
	"errors"
	"io"
	"log"

	"github.com/younwookim/tas/internal/application/playback"
)

// Engine is the set of operations commands drive
type Engine interface {
	StartRecording()
	StartRecordingFromCheckpoint(checkpoint int)
	StopRecording()
	StartPlayback()
	StopPlayback()
	TriggerCheckpointReset()
	IncreaseSpeed()
	DecreaseSpeed()
	Open(path string) error
	Save(path string) error
	// Path returns the ledger file last opened or saved
	Path() string
}

// ErrNoPath is returned by Open and Save when no ledger file is known
var ErrNoPath = errors.New("no ledger file configured")

// Dispatcher executes commands against an engine
type Dispatcher struct {
	engine Engine
	// path is used by Open and Save until the engine tracks a file
	path   string
	logger *log.Logger

	// fromCheckpoint is passed to StartRecordingFromCheckpoint
	fromCheckpoint int
}

// NewDispatcher creates a dispatcher. path is the ledger file Open and Save
// fall back to.
func NewDispatcher(engine Engine, path string, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dispatcher{engine: engine, path: path, logger: logger, fromCheckpoint: playback.CheckpointCurrent}
}

// SetCheckpoint selects the checkpoint StartRecordingFromCheckpoint records
// from. The default, playback.CheckpointCurrent, is the last one reached.
func (d *Dispatcher) SetCheckpoint(checkpoint int) {
	d.fromCheckpoint = checkpoint
}

// LedgerPath returns the file Open and Save use
func (d *Dispatcher) LedgerPath() string {
	if p := d.engine.Path(); p != "" {
		return p
	}
	return d.path
}

// Dispatch runs one command
func (d *Dispatcher) Dispatch(k Kind) error {
	switch k {
	case StartRecording:
		d.engine.StartRecording()
	case StartRecordingFromCheckpoint:
		d.engine.StartRecordingFromCheckpoint(d.fromCheckpoint)
	case StopRecording:
		d.engine.StopRecording()
	case StartPlayback:
		d.engine.StartPlayback()
	case StopPlayback:
		d.engine.StopPlayback()
	case TriggerCheckpointReset:
		d.engine.TriggerCheckpointReset()
	case IncreaseSpeed:
		d.engine.IncreaseSpeed()
	case DecreaseSpeed:
		d.engine.DecreaseSpeed()
	case Open:
		return d.file(k, d.engine.Open)
	case Save:
		return d.file(k, d.engine.Save)
	default:
		return &UnknownError{Name: k.String()}
	}
	return nil
}

func (d *Dispatcher) file(k Kind, op func(string) error) error {
	path := d.LedgerPath()
	if path == "" {
		return ErrNoPath
	}
	if err := op(path); err != nil {
		d.logger.Printf("%s %s: %v", k, path, err)
		return err
	}
	return nil
}

// DispatchAll runs commands in order and joins their errors
func (d *Dispatcher) DispatchAll(kinds []Kind) error {
	var errs []error
	for _, k := range kinds {
		if err := d.Dispatch(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
