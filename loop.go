// Package winloop creates native top-level windows on Linux (X11) and
// Windows (Win32) and delivers a unified stream of input and lifecycle
// events through a callback-driven run loop. The platform backend is chosen
// at compile time; the dispatch engine is shared.
package winloop

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"winloop/internal/driver"
)

// Mode is the loop's scheduling policy for native events.
type Mode int

const (
	// Wait blocks until the next native event arrives.
	Wait Mode = iota
	// Poll checks for a pending native event without blocking.
	Poll
)

func (m Mode) String() string {
	switch m {
	case Wait:
		return "wait"
	case Poll:
		return "poll"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode resolves a mode name as used in configuration files.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "wait":
		return Wait, nil
	case "poll":
		return Poll, nil
	default:
		return 0, fmt.Errorf("unknown loop mode %q", name)
	}
}

// Callback receives every dispatched event together with the per-dispatch
// EventManager capability. It runs synchronously inside the loop cycle;
// loop and window state changed through the manager take effect on the next
// cycle.
type Callback func(ev Event, mgr *EventManager)

// EventLoop owns one native event source and the registry of windows
// receiving dispatch from it. Multiple independent loops may coexist in one
// process; each loop and its windows must be driven from a single goroutine.
type EventLoop struct {
	drv     driver.Loop
	log     *slog.Logger
	windows map[WindowID]*Window
	mode    Mode
	active  bool
	running bool
	// pending holds the one event removed from the native queue during
	// motion coalescing that turned out not to be coalescible.
	pending *driver.Event
}

// NewEventLoop opens the native event source for the host platform. It fails
// when the source cannot be opened (for example, no X display).
func NewEventLoop() (*EventLoop, error) {
	drv, err := newPlatformDriver(slog.Default())
	if err != nil {
		return nil, fmt.Errorf("open native event source: %w", err)
	}
	return newEventLoop(drv, slog.Default()), nil
}

func newEventLoop(drv driver.Loop, logger *slog.Logger) *EventLoop {
	return &EventLoop{
		drv:     drv,
		log:     logger,
		windows: make(map[WindowID]*Window),
		mode:    Wait,
	}
}

// SetLogger replaces the logger used for engine diagnostics.
func (l *EventLoop) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.log = logger
	}
}

// Register inserts the window into the loop's registry, keyed by its native
// identity. Re-registering the same identity overwrites the entry.
func (l *EventLoop) Register(w *Window) {
	l.windows[w.id] = w
}

// Close destroys the window and removes it from the registry.
func (l *EventLoop) Close(w *Window) error {
	delete(l.windows, w.id)
	return w.Destroy()
}

// Shutdown destroys any window still registered and releases the native
// event source. The loop is unusable afterwards. Shutdown must not be called
// while Run is executing.
func (l *EventLoop) Shutdown() error {
	if l.running {
		return errors.New("event loop is running")
	}
	l.drain()
	if err := l.drv.Close(); err != nil {
		return fmt.Errorf("close native event source: %w", err)
	}
	return nil
}

// Run dispatches events to cb until an EventManager.Exit call clears the
// active flag, then destroys every remaining window and returns. One
// CreateEvent per currently registered window is dispatched before the first
// native event. A panic inside cb is caught at the dispatch boundary, logged
// with its stack, and returned as the loop error.
func (l *EventLoop) Run(cb Callback) error {
	if l.running {
		return errors.New("event loop is already running")
	}
	l.running = true
	l.active = true
	defer func() {
		l.drain()
		l.running = false
	}()

	mgr := &EventManager{loop: l}
	for _, w := range l.snapshot() {
		if err := l.dispatch(CreateEvent{Window: w}, cb, mgr); err != nil {
			return err
		}
	}

	for l.active {
		dev, ok, err := l.next(l.mode == Wait)
		if err != nil {
			return err
		}
		if ok {
			if ev := l.resolve(dev); ev != nil {
				if err := l.dispatch(ev, cb, mgr); err != nil {
					return err
				}
			}
		}
		for _, w := range l.snapshot() {
			if w.destroyed || !w.needsRedraw {
				continue
			}
			w.needsRedraw = false
			if err := l.dispatch(RedrawEvent{Window: w}, cb, mgr); err != nil {
				return err
			}
		}
		if err := l.dispatch(AboutToWaitEvent{}, cb, mgr); err != nil {
			return err
		}
	}
	return nil
}

// next returns the next decoded native event, honoring the pushed-back event
// from a previous coalescing run and coalescing bursts of same-window
// motion. block selects wait-mode retrieval.
func (l *EventLoop) next(block bool) (driver.Event, bool, error) {
	var ev driver.Event
	switch {
	case l.pending != nil:
		ev, l.pending = *l.pending, nil
	case block:
		e, err := l.drv.Wait()
		if err != nil {
			return driver.Event{}, false, fmt.Errorf("wait for native event: %w", err)
		}
		ev = e
	default:
		e, ok, err := l.drv.Poll()
		if err != nil {
			return driver.Event{}, false, fmt.Errorf("poll native event: %w", err)
		}
		if !ok {
			return driver.Event{}, false, nil
		}
		ev = e
	}

	if ev.Kind == driver.KindMouseMove {
		// Keep only the most recent of the immediately available motion
		// events for the same window. The first event that does not match
		// is pushed back so arrival order is preserved.
		for {
			nxt, ok, err := l.drv.Poll()
			if err != nil {
				return driver.Event{}, false, fmt.Errorf("poll native event: %w", err)
			}
			if !ok {
				break
			}
			if nxt.Kind == driver.KindMouseMove && nxt.Window == ev.Window {
				ev = nxt
				continue
			}
			l.pending = &nxt
			break
		}
	}
	return ev, true, nil
}

// resolve maps a decoded native event to a public event against the
// registry. It returns nil for events that produce no dispatch: unknown
// targets, expose notifications (which only mark the redraw flag), and
// same-size resize notifications, which are moves.
func (l *EventLoop) resolve(dev driver.Event) Event {
	w, ok := l.windows[WindowID(dev.Window)]
	if !ok || w.destroyed {
		return nil
	}
	switch dev.Kind {
	case driver.KindMap:
		return MapEvent{Window: w}
	case driver.KindUnmap:
		return UnmapEvent{Window: w}
	case driver.KindResize:
		if dev.Width == w.width && dev.Height == w.height {
			return nil
		}
		w.width, w.height = dev.Width, dev.Height
		return ResizeEvent{Window: w, Width: dev.Width, Height: dev.Height}
	case driver.KindExpose:
		w.needsRedraw = true
		return nil
	case driver.KindMouseMove:
		return MouseMoveEvent{Window: w, X: dev.X, Y: dev.Y}
	case driver.KindMousePress:
		return MousePressEvent{Window: w, X: dev.X, Y: dev.Y, Button: Button(dev.Button)}
	case driver.KindMouseRelease:
		return MouseReleaseEvent{Window: w, X: dev.X, Y: dev.Y, Button: Button(dev.Button)}
	case driver.KindCloseRequest:
		return CloseEvent{Window: w}
	default:
		l.log.Warn("unhandled native event kind", "kind", int(dev.Kind), "window", uintptr(dev.Window))
		return nil
	}
}

func (l *EventLoop) dispatch(ev Event, cb Callback, mgr *EventManager) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("event callback panicked",
				"event", fmt.Sprintf("%T", ev),
				"panic", r,
				"stack", string(debug.Stack()))
			l.active = false
			err = fmt.Errorf("event callback panicked on %T: %v", ev, r)
		}
	}()
	cb(ev, mgr)
	return nil
}

// snapshot fixes the set of windows for one pass so the callback may
// register and close windows during dispatch.
func (l *EventLoop) snapshot() []*Window {
	ws := make([]*Window, 0, len(l.windows))
	for _, w := range l.windows {
		ws = append(ws, w)
	}
	return ws
}

// drain destroys and deregisters every remaining window.
func (l *EventLoop) drain() {
	for id, w := range l.windows {
		if err := w.Destroy(); err != nil {
			l.log.Warn("destroy window on loop exit", "window", uintptr(id), "error", err)
		}
		delete(l.windows, id)
	}
}
