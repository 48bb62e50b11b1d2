package codec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/younwookim/tas/internal/application/replay"
)

// Format selects a ledger file encoding
type Format int

const (
	FormatBinary Format = iota
	FormatCSV
)

// File extensions
const (
	ExtBinary = ".tas"
	ExtCSV    = ".csv"
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// FormatForPath picks the encoding a file is saved in: CSV for .csv files,
// binary for everything else
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ExtCSV) {
		return FormatCSV
	}
	return FormatBinary
}

// IsBinary reports whether data starts with a binary ledger magic
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte(magicPrefix))
}

// Decode parses binary or CSV data, deciding by content
func Decode(data []byte) (*replay.Ledger, error) {
	if IsBinary(data) {
		return DecodeBinary(data)
	}
	return DecodeCSV(data)
}

// Encode serializes the ledger in the given format
func Encode(l *replay.Ledger, f Format) ([]byte, error) {
	if f == FormatCSV {
		return EncodeCSV(l)
	}
	return EncodeBinary(l)
}

// LoadFile reads and decodes a ledger file. Read failures are returned as
// *IOError and parse failures as *FormatError.
func LoadFile(path string) (*replay.Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	return Decode(data)
}

// SaveFile encodes the ledger by the path's extension and writes it through
// a temporary file, so a watcher never observes a half written ledger.
func SaveFile(path string, l *replay.Ledger) error {
	data, err := Encode(l, FormatForPath(path))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &IOError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// ModTime returns the last modification time of a ledger file
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, &IOError{Op: "stat", Path: path, Err: err}
	}
	return info.ModTime(), nil
}
