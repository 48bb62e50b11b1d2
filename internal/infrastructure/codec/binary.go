// Package codec converts input ledgers to and from their file formats: a
// compact versioned binary blob and a spreadsheet-editable CSV table.
//
// Encoding fails only for a ledger without frames or with metadata some
// format could not store unchanged (replay.ErrInvalidMetadata). Decoding is
// strict and reports every structural problem as a *FormatError.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/younwookim/tas/internal/application/replay"
)

// binary file header
// ------------------
//
// v1: magic(16) frameCount:int32 axes buttons
// v2: magic(16) frameCount:int32 levelLen:int32 level checkpoint:int32 axes buttons resets
// v3: v2 followed by speeds (frameCount x float32, 0 = no override)
//
// axes are frameCount float32 values per axis, buttons and resets one byte
// per frame. Everything is little endian.
const (
	magicPrefix = "TAS-INPUTLEDGER"
	magicLen    = 16

	MagicV1 = magicPrefix + "1"
	MagicV2 = magicPrefix + "2"
	MagicV3 = magicPrefix + "3"

	// LatestBinaryVersion is written by EncodeBinary
	LatestBinaryVersion = 3

	minBinarySize = magicLen + 4
)

var byteOrder = binary.LittleEndian

// EncodeBinary serializes the ledger in the latest binary version
func EncodeBinary(l *replay.Ledger) ([]byte, error) {
	return EncodeBinaryVersion(l, LatestBinaryVersion)
}

// EncodeBinaryVersion serializes the ledger in a specific binary version.
// Version 1 drops level, checkpoint and reset data; version 2 drops speed
// overrides.
func EncodeBinaryVersion(l *replay.Ledger, version int) ([]byte, error) {
	if l == nil || l.FrameCount() < 1 {
		return nil, ErrEmptyLedger
	}

	var magic string
	switch version {
	case 1:
		magic = MagicV1
	case 2:
		magic = MagicV2
	case 3:
		magic = MagicV3
	default:
		return nil, fmt.Errorf("unsupported binary version %d", version)
	}
	if version >= 2 {
		if err := validateMetadata(l); err != nil {
			return nil, err
		}
	}

	n := l.FrameCount()
	level := []byte(l.LevelID)

	buf := bytes.NewBuffer(make([]byte, 0, magicLen+12+len(level)+n*(4*int(replay.NumAxes)+int(replay.NumButtons)+5)))
	buf.WriteString(magic)
	writeInt32(buf, int32(n))

	if version >= 2 {
		writeInt32(buf, int32(len(level)))
		buf.Write(level)
		writeInt32(buf, int32(l.CheckpointID))
	}

	c := l.Contents()
	for _, ch := range c.Axes {
		writeFloats(buf, ch)
	}
	for _, ch := range c.Buttons {
		writeBools(buf, ch)
	}

	if version >= 2 {
		resets := make([]bool, n)
		for f := range resets {
			resets[f] = l.CheckpointReset(f)
		}
		writeBools(buf, resets)
	}

	if version >= 3 {
		speeds := make([]float32, n)
		for f := range speeds {
			speeds[f], _ = l.Speed(f)
		}
		writeFloats(buf, speeds)
	}

	return buf.Bytes(), nil
}

// validateMetadata applies the one level and checkpoint rule both formats
// share, so a ledger either encodes in every format or in none
func validateMetadata(l *replay.Ledger) error {
	if err := replay.ValidateLevelID(l.LevelID); err != nil {
		return err
	}
	return replay.ValidateCheckpointID(l.CheckpointID)
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	byteOrder.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func writeFloats(buf *bytes.Buffer, vals []float32) {
	var b [4]byte
	for _, v := range vals {
		byteOrder.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])
	}
}

func writeBools(buf *bytes.Buffer, vals []bool) {
	for _, v := range vals {
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
}

// binReader walks a binary ledger and reports truncation with the offset
// it happened at
type binReader struct {
	data []byte
	off  int
}

func (r *binReader) take(n int, what string) ([]byte, error) {
	if n < 0 || len(r.data)-r.off < n {
		return nil, binaryError(r.off, io.ErrUnexpectedEOF, "reading %s: need %d bytes, have %d", what, n, len(r.data)-r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *binReader) int32(what string) (int32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(b)), nil
}

func (r *binReader) floats(n int, what string) ([]float32, error) {
	b, err := r.take(n*4, what)
	if err != nil {
		return nil, err
	}
	vals := make([]float32, n)
	for i := range vals {
		vals[i] = math.Float32frombits(byteOrder.Uint32(b[i*4:]))
	}
	return vals, nil
}

func (r *binReader) bools(n int, what string) ([]bool, error) {
	b, err := r.take(n, what)
	if err != nil {
		return nil, err
	}
	vals := make([]bool, n)
	for i := range vals {
		vals[i] = b[i] != 0
	}
	return vals, nil
}

// DecodeBinary parses any supported binary version
func DecodeBinary(data []byte) (*replay.Ledger, error) {
	if len(data) < minBinarySize {
		return nil, binaryError(0, nil, "file too small: %d bytes, need at least %d", len(data), minBinarySize)
	}

	var version int
	switch magic := string(data[:magicLen]); magic {
	case MagicV1:
		version = 1
	case MagicV2:
		version = 2
	case MagicV3:
		version = 3
	default:
		return nil, binaryError(0, nil, "bad magic header %q", magic)
	}

	r := &binReader{data: data, off: magicLen}

	count, err := r.int32("frame count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, binaryError(magicLen, nil, "negative frame count %d", count)
	}
	n := int(count)

	c := replay.Contents{CheckpointID: replay.CheckpointStart}

	if version >= 2 {
		levelLen, err := r.int32("level id length")
		if err != nil {
			return nil, err
		}
		if levelLen < 0 {
			return nil, binaryError(r.off-4, nil, "negative level id length %d", levelLen)
		}
		level, err := r.take(int(levelLen), "level id")
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(level) {
			return nil, binaryError(r.off-len(level), nil, "level id is not valid UTF-8")
		}
		if err := replay.ValidateLevelID(string(level)); err != nil {
			return nil, binaryError(r.off-len(level), err, "bad level id")
		}
		c.LevelID = string(level)

		checkpoint, err := r.int32("checkpoint id")
		if err != nil {
			return nil, err
		}
		if err := replay.ValidateCheckpointID(int(checkpoint)); err != nil {
			return nil, binaryError(r.off-4, err, "bad checkpoint id")
		}
		c.CheckpointID = int(checkpoint)
	}

	for i := range c.Axes {
		if c.Axes[i], err = r.floats(n, "axis "+replay.Axis(i).String()); err != nil {
			return nil, err
		}
	}
	for i := range c.Buttons {
		if c.Buttons[i], err = r.bools(n, "button "+replay.Button(i).String()); err != nil {
			return nil, err
		}
	}

	if version >= 2 {
		resets, err := r.bools(n, "checkpoint resets")
		if err != nil {
			return nil, err
		}
		c.Resets = trimResets(resets)
	}

	if version >= 3 {
		start := r.off
		speeds, err := r.floats(n, "speeds")
		if err != nil {
			return nil, err
		}
		for f, s := range speeds {
			if s != 0 && !(s > 0 && !math.IsInf(float64(s), 0)) {
				return nil, binaryError(start+f*4, nil, "invalid speed %v on frame %d", s, f)
			}
		}
		c.Speeds = trimSpeeds(speeds)
	}

	if extra := len(data) - r.off; extra > 0 {
		return nil, binaryError(r.off, nil, "%d unexpected trailing bytes", extra)
	}

	return replay.FromContents(c)
}

func trimResets(resets []bool) []bool {
	end := len(resets)
	for end > 0 && !resets[end-1] {
		end--
	}
	if end == 0 {
		return nil
	}
	return resets[:end]
}

func trimSpeeds(speeds []float32) []float32 {
	end := len(speeds)
	for end > 0 && speeds[end-1] == 0 {
		end--
	}
	if end == 0 {
		return nil
	}
	return speeds[:end]
}
