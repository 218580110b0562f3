package winloop

import (
	"errors"
	"fmt"
	"image"

	"winloop/internal/driver"
)

// WindowID is a native window identity. It is unique among concurrently live
// windows and stable for a window's lifetime.
type WindowID uintptr

// Default client-area size used by WindowFromEventLoop.
const (
	DefaultWidth  = 1200
	DefaultHeight = 720
)

var errWindowDestroyed = errors.New("window has been destroyed")

// Window is a top-level native window. It must be registered into its owning
// EventLoop to receive dispatch. All methods must be called from the loop's
// goroutine.
type Window struct {
	drv           driver.Window
	id            WindowID
	width, height int
	needsRedraw   bool
	destroyed     bool
}

// NewWindow creates a native window whose client area is width x height
// pixels. On platforms that charge for decorations the outer frame is
// enlarged so the client area matches the request. The window is not
// registered into the loop.
func NewWindow(loop *EventLoop, width, height int) (*Window, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", width, height)
	}
	dw, err := loop.drv.NewWindow(width, height)
	if err != nil {
		return nil, fmt.Errorf("create native window: %w", err)
	}
	return &Window{
		drv:    dw,
		id:     WindowID(dw.ID()),
		width:  width,
		height: height,
	}, nil
}

// WindowFromEventLoop creates a window at the default size and registers it
// into the loop.
func WindowFromEventLoop(loop *EventLoop) (*Window, error) {
	w, err := NewWindow(loop, DefaultWidth, DefaultHeight)
	if err != nil {
		return nil, err
	}
	loop.Register(w)
	return w, nil
}

// ID returns the native window identity.
func (w *Window) ID() WindowID { return w.id }

// Width returns the last known client-area width in pixels.
func (w *Window) Width() int { return w.width }

// Height returns the last known client-area height in pixels.
func (w *Window) Height() int { return w.height }

// SetTitle sets the native window title. The new title is observable by
// native introspection once the native queue is flushed.
func (w *Window) SetTitle(title string) error {
	if w.destroyed {
		return errWindowDestroyed
	}
	return w.drv.SetTitle(title)
}

// SetIcon installs the window icon from img. A nil img clears the icon.
func (w *Window) SetIcon(img image.Image) error {
	if w.destroyed {
		return errWindowDestroyed
	}
	return w.drv.SetIcon(img)
}

// SetCursor installs the cursor shown while the pointer is over the window,
// releasing any previously owned cursor resource. An unknown shape is an
// error.
func (w *Window) SetCursor(shape CursorShape) error {
	if w.destroyed {
		return errWindowDestroyed
	}
	switch shape {
	case CursorPointer, CursorHand2:
		return w.drv.SetCursor(driver.CursorShape(shape))
	default:
		return fmt.Errorf("unknown cursor shape %d", int(shape))
	}
}

// ResetCursor restores the default pointer shape. It is safe to call when no
// custom cursor was ever set.
func (w *Window) ResetCursor() error {
	if w.destroyed {
		return errWindowDestroyed
	}
	return w.drv.ResetCursor()
}

// Destroy releases the cursor resource, if any, and the native window. After
// Destroy the identity is invalid for any further native query. Destroy is
// idempotent so that a window closed by the consumer and again by the loop's
// exit drain releases its resources exactly once.
func (w *Window) Destroy() error {
	if w.destroyed {
		return nil
	}
	w.destroyed = true
	return w.drv.Destroy()
}
