package codec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat matches every *FormatError via errors.Is
	ErrFormat = errors.New("ledger format error")

	// ErrEmptyLedger is returned when encoding a ledger without frames
	ErrEmptyLedger = errors.New("ledger has no frames")
)

// FormatError describes structurally invalid ledger data. Row and Column
// are 1-based positions in CSV input (0 when not known); Offset is the byte
// offset in binary input (-1 when not applicable).
type FormatError struct {
	Row    int
	Column int
	Field  string
	Offset int
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	sb.WriteString("format error")
	if e.Row > 0 {
		fmt.Fprintf(&sb, ": row %d", e.Row)
	}
	if e.Column > 0 {
		fmt.Fprintf(&sb, ", column %d", e.Column)
		if e.Field != "" {
			fmt.Fprintf(&sb, " (%s)", e.Field)
		}
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&sb, ": offset %d", e.Offset)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is makes errors.Is(err, ErrFormat) true for every FormatError
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func csvError(row, col int, field, format string, args ...any) *FormatError {
	return &FormatError{Row: row, Column: col, Field: field, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

func binaryError(offset int, err error, format string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IOError wraps a failed file operation on a ledger file
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
