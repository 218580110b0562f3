// Package driver defines the contract between the winloop dispatch engine
// and a platform backend. A backend owns the native event source, creates
// native windows, and decodes native notifications into flat Events; the
// engine owns the registry, coalescing, scheduling and dispatch.
package driver

import "image"

// WindowID is a platform window identity. It is wide enough for both an X11
// window id and a Win32 HWND and is used directly as the registry key.
type WindowID uintptr

// CursorShape selects one of the supported native cursor resources.
type CursorShape int

const (
	// CursorPointer is the default arrow cursor (X cursor font "left_ptr").
	CursorPointer CursorShape = iota
	// CursorHand2 is the pointing-hand cursor (X cursor font "hand2").
	CursorHand2
)

// Kind tags a decoded native notification.
type Kind int

const (
	// KindNone marks a notification that was recognized and consumed but
	// carries nothing to dispatch. Backends normally skip these internally.
	KindNone Kind = iota
	KindMap
	KindUnmap
	KindResize
	// KindExpose asks the engine to mark the target's pending-redraw flag;
	// the redraw itself is dispatched by the engine's sweep.
	KindExpose
	KindMouseMove
	KindMousePress
	KindMouseRelease
	KindCloseRequest
)

// Button identifies a mouse button in press/release events.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// Event is one decoded native notification. Window is zero only for
// KindNone. X/Y are client-area coordinates; Width/Height are the client
// size carried by KindResize.
type Event struct {
	Kind   Kind
	Window WindowID
	X, Y   int
	Width  int
	Height int
	Button Button
}

// Window is a live native window. All methods are native calls; errors carry
// the native diagnostic text.
type Window interface {
	ID() WindowID
	SetTitle(title string) error
	// SetIcon installs the window icon from img, or clears it when img is nil.
	SetIcon(img image.Image) error
	SetCursor(shape CursorShape) error
	ResetCursor() error
	// Destroy releases the cursor resource, if any, and the native window.
	// The backend must tolerate at most one call per window.
	Destroy() error
}

// Loop is the native event source of one platform backend.
type Loop interface {
	// NewWindow creates a native window whose client area is width x height.
	NewWindow(width, height int) (Window, error)
	// Poll decodes the next immediately available native event without
	// blocking. ok is false when the native queue is empty.
	Poll() (ev Event, ok bool, err error)
	// Wait blocks until a native event arrives and decodes it.
	Wait() (Event, error)
	// Close releases the native event source. Windows still live on the
	// source must be destroyed before Close.
	Close() error
}
