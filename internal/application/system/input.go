package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/tas/internal/application/replay"
	"github.com/younwookim/tas/internal/domain/entity"
	"github.com/younwookim/tas/internal/infrastructure/config"
)

// KeyState reports whether physical keys are held
type KeyState interface {
	Pressed(k ebiten.Key) bool
}

// EbitenKeys reads keys from ebiten
type EbitenKeys struct{}

func (EbitenKeys) Pressed(k ebiten.Key) bool { return ebiten.IsKeyPressed(k) }

type axisKeys struct {
	negative []ebiten.Key
	positive []ebiten.Key
}

// Keyboard is a LiveInput that maps action names to keys.
//
// Button state is sampled once per tick by Poll. An action is held while any
// of its keys is, and press/release edges compare this tick with the last
// one, so the edges are exactly those a recording of held states rebuilds.
type Keyboard struct {
	keys    KeyState
	buttons map[string][]ebiten.Key
	axes    map[string]axisKeys
	enabled bool

	held map[string]bool
	prev map[string]bool
}

// ParseKey resolves a key name such as "Space", "A" or "ArrowLeft"
func ParseKey(name string) (ebiten.Key, error) {
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

func parseKeys(action string, names []string) ([]ebiten.Key, error) {
	keys := make([]ebiten.Key, 0, len(names))
	var errs []error
	for _, name := range names {
		k, err := ParseKey(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %q: %w", action, err))
			continue
		}
		keys = append(keys, k)
	}
	return keys, errors.Join(errs...)
}

// NewKeyboard builds a keyboard from configured bindings. A nil KeyState
// reads from ebiten.
func NewKeyboard(cfg config.BindingsConfig, keys KeyState) (*Keyboard, error) {
	if keys == nil {
		keys = EbitenKeys{}
	}
	kb := &Keyboard{
		keys:    keys,
		buttons: make(map[string][]ebiten.Key, len(cfg.Buttons)),
		axes:    make(map[string]axisKeys, len(cfg.Axes)),
		enabled: true,
		held:    map[string]bool{},
		prev:    map[string]bool{},
	}

	var errs []error
	for _, action := range sortedKeys(cfg.Buttons) {
		ks, err := parseKeys(action, cfg.Buttons[action])
		errs = append(errs, err)
		kb.buttons[action] = ks
	}
	for _, action := range sortedKeys(cfg.Axes) {
		b := cfg.Axes[action]
		neg, err := parseKeys(action, b.Negative)
		errs = append(errs, err)
		pos, err := parseKeys(action, b.Positive)
		errs = append(errs, err)
		kb.axes[action] = axisKeys{negative: neg, positive: pos}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return kb, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Poll samples every bound button. Call it once at the start of each tick.
func (kb *Keyboard) Poll() {
	kb.prev, kb.held = kb.held, make(map[string]bool, len(kb.buttons))
	for action, keys := range kb.buttons {
		kb.held[action] = kb.any(keys)
	}
}

// SetEnabled turns the keyboard on or off. A disabled keyboard reports every
// key released. Enabling forgets the button history, so a key already held
// reads as pressed on the next tick.
func (kb *Keyboard) SetEnabled(enabled bool) {
	kb.enabled = enabled
	if enabled {
		kb.held = map[string]bool{}
		kb.prev = map[string]bool{}
	}
}

// Enabled reports whether the keyboard is on
func (kb *Keyboard) Enabled() bool {
	return kb.enabled
}

func (kb *Keyboard) any(keys []ebiten.Key) bool {
	if !kb.enabled {
		return false
	}
	for _, k := range keys {
		if kb.keys.Pressed(k) {
			return true
		}
	}
	return false
}

// Button reports whether any key bound to the action was held at the last Poll
func (kb *Keyboard) Button(action string) bool {
	return kb.enabled && kb.held[action]
}

// ButtonDown reports whether the action became held at the last Poll
func (kb *Keyboard) ButtonDown(action string) bool {
	return kb.enabled && kb.held[action] && !kb.prev[action]
}

// ButtonUp reports whether the action stopped being held at the last Poll
func (kb *Keyboard) ButtonUp(action string) bool {
	return kb.enabled && !kb.held[action] && kb.prev[action]
}

// Axis returns -1, 0 or 1 from the bound key pairs
func (kb *Keyboard) Axis(action string) float32 {
	b := kb.axes[action]
	var v float32
	if kb.any(b.negative) {
		v--
	}
	if kb.any(b.positive) {
		v++
	}
	return v
}

// Action names the sandbox reads
const (
	ActionMoveHorizontal = "Move Horizontal"
	ActionLookHorizontal = "Look Horizontal"
	ActionLookVertical   = "Look Vertical"
	ActionJump           = "Jump"
	ActionGrab           = "Grab"
	ActionRotate         = "Rotate"
	ActionPause          = replay.PauseAction
)

// InputSystem turns input queries into player motion
type InputSystem struct {
	config *config.MovementConfig
}

// NewInputSystem creates a new input system
func NewInputSystem(cfg *config.MovementConfig) *InputSystem {
	return &InputSystem{config: cfg}
}

// UpdateBody applies one tick of input to the body. Input is read only
// through in, so a router decides what the body sees.
func (s *InputSystem) UpdateBody(body *entity.Body, in LiveInput) {
	move := float64(in.Axis(ActionMoveHorizontal))
	body.VX = move * s.config.MaxSpeed * entity.PositionScale
	if move > 0 {
		body.FacingRight = true
	} else if move < 0 {
		body.FacingRight = false
	}

	if in.Button(ActionGrab) {
		body.VX *= s.config.GrabDrag
	}

	if in.ButtonDown(ActionJump) && body.OnGround {
		body.VY = -s.config.JumpForce * entity.PositionScale
		body.OnGround = false
	}

	if in.ButtonDown(ActionRotate) {
		body.Turn()
	}
}

// LookOffset returns the camera pan in pixels. Positive look vertical pans up.
func (s *InputSystem) LookOffset(in LiveInput) (dx, dy float64) {
	r := s.config.LookRange
	return float64(in.Axis(ActionLookHorizontal)) * r, -float64(in.Axis(ActionLookVertical)) * r
}
