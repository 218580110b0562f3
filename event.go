package winloop

// Button identifies a mouse button carried by press and release events.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// Event is one occurrence delivered to the run callback. The set of variants
// is closed: CreateEvent, MapEvent, UnmapEvent, ResizeEvent, RedrawEvent,
// MouseMoveEvent, MousePressEvent, MouseReleaseEvent, CloseEvent and
// AboutToWaitEvent.
type Event interface {
	ImplementsEvent()
}

// CreateEvent is dispatched once per registered window when the loop starts,
// before any native event.
type CreateEvent struct {
	Window *Window
}

// MapEvent reports that the window became visible on screen.
type MapEvent struct {
	Window *Window
}

// UnmapEvent reports that the window was hidden.
type UnmapEvent struct {
	Window *Window
}

// ResizeEvent carries the new client-area size. The target window's
// Width/Height already report the new size when the event is dispatched.
type ResizeEvent struct {
	Window *Window
	Width  int
	Height int
}

// RedrawEvent asks the consumer to repaint the window. It is dispatched by
// the loop's redraw sweep, for native expose notifications as well as for
// EventManager.RequestRedraw.
type RedrawEvent struct {
	Window *Window
}

// MouseMoveEvent carries a pointer position in client-area coordinates.
// Bursts of motion on the same window are coalesced into the latest one.
type MouseMoveEvent struct {
	Window *Window
	X, Y   int
}

// MousePressEvent reports a button press at a client-area position.
type MousePressEvent struct {
	Window *Window
	X, Y   int
	Button Button
}

// MouseReleaseEvent reports a button release at a client-area position.
type MouseReleaseEvent struct {
	Window *Window
	X, Y   int
	Button Button
}

// CloseEvent reports that the user asked to close the window. The window is
// not closed until the consumer calls EventManager.Close or Exit.
type CloseEvent struct {
	Window *Window
}

// AboutToWaitEvent is dispatched once per loop cycle after the native events
// of that cycle are drained. It has no target window.
type AboutToWaitEvent struct{}

func (CreateEvent) ImplementsEvent()       {}
func (MapEvent) ImplementsEvent()          {}
func (UnmapEvent) ImplementsEvent()        {}
func (ResizeEvent) ImplementsEvent()       {}
func (RedrawEvent) ImplementsEvent()       {}
func (MouseMoveEvent) ImplementsEvent()    {}
func (MousePressEvent) ImplementsEvent()   {}
func (MouseReleaseEvent) ImplementsEvent() {}
func (CloseEvent) ImplementsEvent()        {}
func (AboutToWaitEvent) ImplementsEvent()  {}
