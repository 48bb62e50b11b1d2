package command

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/tas/internal/application/system"
)

// Binding maps one key to a command
type Binding struct {
	Key  ebiten.Key
	Kind Kind
}

// Hotkeys is the table of command keys
type Hotkeys struct {
	bindings []Binding
}

// NewHotkeys builds the table from a key name to command name map. Every
// bad key or command is reported.
func NewHotkeys(cfg map[string]string) (*Hotkeys, error) {
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)

	h := &Hotkeys{}
	var errs []error
	for _, name := range names {
		key, err := system.ParseKey(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkey %s: %w", name, err))
			continue
		}
		kind, err := Parse(cfg[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkey %s: %w", name, err))
			continue
		}
		h.bindings = append(h.bindings, Binding{Key: key, Kind: kind})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sort.SliceStable(h.bindings, func(i, j int) bool {
		return h.bindings[i].Key < h.bindings[j].Key
	})
	return h, nil
}

// Bindings returns the table ordered by key
func (h *Hotkeys) Bindings() []Binding {
	return append([]Binding(nil), h.bindings...)
}

// Poll returns the commands whose key was pressed this tick, in key order
func (h *Hotkeys) Poll(justPressed func(ebiten.Key) bool) []Kind {
	var kinds []Kind
	for _, b := range h.bindings {
		if justPressed(b.Key) {
			kinds = append(kinds, b.Kind)
		}
	}
	return kinds
}
