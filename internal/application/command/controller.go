package command

import (
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Controller polls the hotkeys once per update and dispatches what fired.
// Command failures are logged; they never stop the game.
type Controller struct {
	hotkeys     *Hotkeys
	dispatcher  *Dispatcher
	justPressed func(ebiten.Key) bool
	logger      *log.Logger
}

// NewController creates a controller reading key edges from ebiten
func NewController(h *Hotkeys, d *Dispatcher, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		hotkeys:     h,
		dispatcher:  d,
		justPressed: inpututil.IsKeyJustPressed,
		logger:      logger,
	}
}

// Update dispatches the commands whose hotkey was pressed this tick
func (c *Controller) Update() error {
	kinds := c.hotkeys.Poll(c.justPressed)
	if len(kinds) == 0 {
		return nil
	}
	if err := c.dispatcher.DispatchAll(kinds); err != nil {
		c.logger.Printf("command: %v", err)
	}
	return nil
}
