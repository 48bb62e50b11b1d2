package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/younwookim/tas/internal/application/replay"
)

// csv file layout
// ---------------
//
// Level: <id>            (optional)
// Checkpoint: <id>       (optional, only after Level when both are present)
// Move Horizontal,...,Jump,Grab,Rotate[,Reset Checkpoint][,Speed][,anything else]
// one row per frame
const (
	metaLevel      = "Level:"
	metaCheckpoint = "Checkpoint:"

	ColumnResetCheckpoint = "Reset Checkpoint"
	ColumnSpeed           = "Speed"

	utf8BOM = "\ufeff"
)

var fold = cases.Fold()

func sameName(a, b string) bool {
	return fold.String(strings.TrimSpace(a)) == fold.String(b)
}

// csvSchema is the column layout detected from a header row
type csvSchema struct {
	resetCol int
	speedCol int
	// width is the number of leading columns every row must supply
	width int
}

func channelColumns() []string {
	return append(replay.AxisNames(), replay.ButtonNames()...)
}

// EncodeCSV renders the ledger as a CSV table. The reset and speed columns
// are written only when the ledger uses them.
func EncodeCSV(l *replay.Ledger) ([]byte, error) {
	if l == nil || l.FrameCount() < 1 {
		return nil, ErrEmptyLedger
	}
	if err := validateMetadata(l); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if l.LevelID != "" {
		buf.WriteString(metaLevel + " " + l.LevelID + "\n")
	}
	if l.CheckpointID != replay.CheckpointStart {
		buf.WriteString(metaCheckpoint + " " + strconv.Itoa(l.CheckpointID) + "\n")
	}

	withResets := l.HasCheckpointResets()
	withSpeeds := l.HasSpeeds()

	w := csv.NewWriter(&buf)

	header := channelColumns()
	if withResets {
		header = append(header, ColumnResetCheckpoint)
	}
	if withSpeeds {
		header = append(header, ColumnSpeed)
	}
	// writes to a bytes.Buffer do not fail
	_ = w.Write(header)

	row := make([]string, 0, len(header))
	for f := 0; f < l.FrameCount(); f++ {
		row = row[:0]
		s := l.Frame(f)
		for _, v := range s.Axes {
			row = append(row, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		for _, held := range s.Buttons {
			row = append(row, formatBool(held))
		}
		if withResets {
			row = append(row, formatBool(l.CheckpointReset(f)))
		}
		if withSpeeds {
			cell := ""
			if m, ok := l.Speed(f); ok {
				cell = strconv.FormatFloat(float64(m), 'g', -1, 32) + "x"
			}
			row = append(row, cell)
		}
		_ = w.Write(row)
	}
	w.Flush()

	return buf.Bytes(), w.Error()
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// DecodeCSV parses a CSV ledger
func DecodeCSV(data []byte) (*replay.Ledger, error) {
	text := strings.TrimPrefix(string(data), utf8BOM)
	if strings.TrimSpace(text) == "" {
		return nil, csvError(0, 0, "", "CSV content is empty")
	}

	c := replay.Contents{CheckpointID: replay.CheckpointStart}

	body, err := readMetadata(text, &c)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, csvError(0, 0, "", "missing header row")
	}
	if err != nil {
		return nil, &FormatError{Offset: -1, Msg: "reading header", Err: err}
	}

	schema, err := detectSchema(header)
	if err != nil {
		return nil, err
	}

	columns := channelColumns()
	var speeds []float32
	var resets []bool

	for row := 1; ; row++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Row: row, Offset: -1, Msg: "malformed row", Err: err}
		}
		if len(rec) < schema.width {
			return nil, csvError(row, len(rec)+1, "", "row %d has %d columns, expected %d", row, len(rec), schema.width)
		}

		col := 0
		for i := range c.Axes {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 32)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, csvError(row, col+1, columns[col], "invalid float value %q", rec[col])
			}
			c.Axes[i] = append(c.Axes[i], float32(v))
			col++
		}
		for i := range c.Buttons {
			held, ok := parseBool(rec[col])
			if !ok {
				return nil, csvError(row, col+1, columns[col], "invalid boolean value %q (expected 0/1 or true/false)", rec[col])
			}
			c.Buttons[i] = append(c.Buttons[i], held)
			col++
		}

		if schema.resetCol >= 0 {
			reset, ok := parseBool(rec[schema.resetCol])
			if !ok {
				return nil, csvError(row, schema.resetCol+1, ColumnResetCheckpoint, "invalid boolean value %q (expected 0/1 or true/false)", rec[schema.resetCol])
			}
			resets = append(resets, reset)
		}

		if schema.speedCol >= 0 {
			m, err := parseSpeed(rec[schema.speedCol])
			if err != nil {
				err.Row = row
				err.Column = schema.speedCol + 1
				err.Field = ColumnSpeed
				return nil, err
			}
			speeds = append(speeds, m)
		}
	}

	if len(c.Axes[replay.MoveHorizontal]) == 0 {
		return nil, csvError(0, 0, "", "CSV must have a header row and at least one data row")
	}

	c.Resets = trimResets(resets)
	c.Speeds = trimSpeeds(speeds)

	return replay.FromContents(c)
}

// readMetadata consumes the optional Level and Checkpoint lines and returns
// the remaining text
func readMetadata(text string, c *replay.Contents) (string, error) {
	rest := skipBlankLines(text)

	line, after := splitLine(rest)
	if hasPrefixFold(line, metaLevel) {
		c.LevelID = strings.TrimSpace(line[len(metaLevel):])
		if err := replay.ValidateLevelID(c.LevelID); err != nil {
			return "", &FormatError{Offset: -1, Msg: "bad level id", Err: err}
		}
		rest = skipBlankLines(after)
		line, after = splitLine(rest)
	}

	if hasPrefixFold(line, metaCheckpoint) {
		v := strings.TrimSpace(line[len(metaCheckpoint):])
		id, err := strconv.Atoi(v)
		if err != nil {
			return "", csvError(0, 0, "", "invalid checkpoint id %q", v)
		}
		if err := replay.ValidateCheckpointID(id); err != nil {
			return "", &FormatError{Offset: -1, Msg: "bad checkpoint id", Err: err}
		}
		c.CheckpointID = id
		rest = after
	}

	return rest, nil
}

func skipBlankLines(s string) string {
	for {
		line, after := splitLine(s)
		if strings.TrimSpace(line) != "" || after == s {
			return s
		}
		s = after
	}
}

func splitLine(s string) (line, rest string) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return strings.TrimSuffix(s, "\r"), ""
	}
	return strings.TrimSuffix(s[:i], "\r"), s[i+1:]
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && sameName(s[:len(prefix)], prefix)
}

// detectSchema matches the header by column name. The channel columns must
// come first in their fixed order; reset and speed columns are found by
// name among the trailing columns and anything else is ignored.
func detectSchema(header []string) (csvSchema, error) {
	columns := channelColumns()
	if len(header) < len(columns) {
		return csvSchema{}, csvError(0, len(header)+1, "", "header has %d columns, expected at least %d", len(header), len(columns))
	}
	for i, name := range columns {
		if !sameName(header[i], name) {
			return csvSchema{}, csvError(0, i+1, name, "header column is %q, expected %q", header[i], name)
		}
	}

	s := csvSchema{resetCol: -1, speedCol: -1, width: len(columns)}
	for i := len(columns); i < len(header); i++ {
		switch {
		case sameName(header[i], ColumnResetCheckpoint):
			if s.resetCol >= 0 {
				return csvSchema{}, csvError(0, i+1, ColumnResetCheckpoint, "duplicate column")
			}
			s.resetCol = i
		case sameName(header[i], ColumnSpeed):
			if s.speedCol >= 0 {
				return csvSchema{}, csvError(0, i+1, ColumnSpeed, "duplicate column")
			}
			s.speedCol = i
		default:
			continue
		}
		s.width = i + 1
	}
	return s, nil
}

func parseBool(v string) (value, ok bool) {
	v = strings.TrimSpace(v)
	switch {
	case v == "1" || sameName(v, "true"):
		return true, true
	case v == "0" || sameName(v, "false"):
		return false, true
	}
	return false, false
}

// parseSpeed reads a speed cell: empty for no override, otherwise a positive
// multiplier with an optional x suffix such as 8x or 0.02x
func parseSpeed(v string) (float32, *FormatError) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, nil
	}
	if n := len(s); s[n-1] == 'x' || s[n-1] == 'X' {
		s = s[:n-1]
	}

	m, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, csvError(0, 0, "", "invalid speed value %q (expected format: '8x', '0.02x', or empty)", v)
	}
	if m <= 0 {
		return 0, csvError(0, 0, "", "speed multiplier must be positive: %q", v)
	}
	return float32(m), nil
}
