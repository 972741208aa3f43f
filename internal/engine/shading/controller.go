package shading

import "fmt"

// Controller tracks the active shading mode and whether the program bound
// for it needs relinking before the next frame.
type Controller struct {
	mode  Mode
	dirty bool
}

// NewController returns a controller in Gradient mode. It starts dirty so the
// first frame links a program.
func NewController() *Controller {
	return &Controller{mode: Gradient, dirty: true}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Set switches to mode. Selecting the active mode is a no-op.
func (c *Controller) Set(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: shading mode %d", ErrInvalidConfiguration, uint8(mode))
	}
	if mode == c.mode {
		return nil
	}
	c.mode = mode
	c.dirty = true
	return nil
}

// Dirty reports whether the program must be relinked.
func (c *Controller) Dirty() bool {
	return c.dirty
}

// Clean marks the current mode's program as linked.
func (c *Controller) Clean() {
	c.dirty = false
}
