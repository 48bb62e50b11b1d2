// Package command names the engine's operations so they can be bound to
// hotkeys in config and issued from the command line.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Kind identifies one engine command
type Kind int

const (
	StartRecording Kind = iota
	StartRecordingFromCheckpoint
	StopRecording
	StartPlayback
	StopPlayback
	TriggerCheckpointReset
	IncreaseSpeed
	DecreaseSpeed
	Open
	Save

	numKinds
)

var kindNames = [numKinds]string{
	StartRecording:               "StartRecording",
	StartRecordingFromCheckpoint: "StartRecordingFromCheckpoint",
	StopRecording:                "StopRecording",
	StartPlayback:                "StartPlayback",
	StopPlayback:                 "StopPlayback",
	TriggerCheckpointReset:       "TriggerCheckpointReset",
	IncreaseSpeed:                "IncreaseSpeed",
	DecreaseSpeed:                "DecreaseSpeed",
	Open:                         "Open",
	Save:                         "Save",
}

// aliases are accepted by Parse in addition to the canonical names
var aliases = map[string]Kind{
	"record":     StartRecording,
	"rec":        StartRecording,
	"recordfrom": StartRecordingFromCheckpoint,
	"play":       StartPlayback,
	"reset":      TriggerCheckpointReset,
	"faster":     IncreaseSpeed,
	"slower":     DecreaseSpeed,
}

// String returns the canonical command name
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "Unknown"
	}
	return kindNames[k]
}

// Names returns the canonical command names in declaration order
func Names() []string {
	return append([]string(nil), kindNames[:]...)
}

// ErrUnknown is matched by every *UnknownError
var ErrUnknown = errors.New("unknown command")

// UnknownError reports a name Parse could not resolve
type UnknownError struct {
	Name string
	// Suggestion is the closest command name, if one is close enough
	Suggestion string
}

func (e *UnknownError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown command %q, did you mean %q?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown command %q (known: %s)", e.Name, strings.Join(Names(), ", "))
}

func (e *UnknownError) Is(target error) bool {
	return target == ErrUnknown
}

// normalize drops case and word separators: "start recording",
// "start_recording" and "StartRecording" are the same command
func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Parse resolves a command name
func Parse(name string) (Kind, error) {
	key := normalize(name)
	for k, n := range kindNames {
		if normalize(n) == key {
			return Kind(k), nil
		}
	}
	if k, ok := aliases[key]; ok {
		return k, nil
	}
	return 0, &UnknownError{Name: name, Suggestion: suggest(key)}
}

// suggest returns the canonical name closest to key within the edit limit
func suggest(key string) string {
	if len(key) < 3 {
		return ""
	}

	type candidate struct {
		name string
		dist int
	}
	var cands []candidate
	consider := func(alias string, k Kind) {
		dist := levenshtein.ComputeDistance(key, alias)
		if dist <= levenshteinLimit(len(alias)) {
			cands = append(cands, candidate{name: k.String(), dist: dist})
		}
	}
	for k, n := range kindNames {
		consider(normalize(n), Kind(k))
	}
	for alias, k := range aliases {
		consider(alias, k)
	}

	if len(cands) == 0 {
		return ""
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist == cands[j].dist {
			return cands[i].name < cands[j].name
		}
		return cands[i].dist < cands[j].dist
	})
	return cands[0].name
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
