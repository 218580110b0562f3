// Package x11 is the Linux backend. It drives an X server over the pure-Go
// xgb protocol bindings, with xgbutil for window, property and cursor
// plumbing.
package x11

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"

	"winloop/internal/driver"
)

// Loop owns one X display connection and decodes its events.
type Loop struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	log  *slog.Logger

	atomProtocols xproto.Atom
	atomDelete    xproto.Atom
}

var _ driver.Loop = (*Loop)(nil)

// NewLoop connects to the X server named by $DISPLAY.
func NewLoop(logger *slog.Logger) (*Loop, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	l := &Loop{
		xu:   xu,
		root: xu.RootWin(),
		log:  logger,
	}
	// WM_DELETE_WINDOW close requests arrive as WM_PROTOCOLS client
	// messages; resolve both atoms once per connection.
	if l.atomProtocols, err = xprop.Atm(xu, "WM_PROTOCOLS"); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("intern WM_PROTOCOLS: %w", err)
	}
	if l.atomDelete, err = xprop.Atm(xu, "WM_DELETE_WINDOW"); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("intern WM_DELETE_WINDOW: %w", err)
	}
	return l, nil
}

// Poll decodes the next pending event without blocking.
func (l *Loop) Poll() (driver.Event, bool, error) {
	for {
		ev, xerr := l.xu.Conn().PollForEvent()
		if xerr != nil {
			l.log.Warn("x11 error event", "error", xerr.Error())
			continue
		}
		if ev == nil {
			return driver.Event{}, false, nil
		}
		if dev, ok := l.decode(ev); ok {
			return dev, true, nil
		}
	}
}

// Wait blocks until the next event arrives and decodes it.
func (l *Loop) Wait() (driver.Event, error) {
	for {
		ev, xerr := l.xu.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			return driver.Event{}, errors.New("x11 connection closed")
		}
		if xerr != nil {
			l.log.Warn("x11 error event", "error", xerr.Error())
			continue
		}
		if dev, ok := l.decode(ev); ok {
			return dev, nil
		}
	}
}

// Close disconnects from the X server.
func (l *Loop) Close() error {
	l.xu.Conn().Close()
	return nil
}

// decode maps one X event to a driver event. The second result is false for
// events that produce no dispatch. The window event mask is StructureNotify,
// Exposure, ButtonPress, ButtonRelease and PointerMotion; every event those
// masks can deliver is matched here, anything else is logged and dropped.
func (l *Loop) decode(ev xgb.Event) (driver.Event, bool) {
	switch e := ev.(type) {
	case xproto.MapNotifyEvent:
		return driver.Event{Kind: driver.KindMap, Window: driver.WindowID(e.Window)}, true
	case xproto.UnmapNotifyEvent:
		return driver.Event{Kind: driver.KindUnmap, Window: driver.WindowID(e.Window)}, true
	case xproto.ConfigureNotifyEvent:
		return driver.Event{
			Kind:   driver.KindResize,
			Window: driver.WindowID(e.Window),
			Width:  int(e.Width),
			Height: int(e.Height),
		}, true
	case xproto.ExposeEvent:
		// Only the last expose of a series marks a redraw.
		if e.Count != 0 {
			return driver.Event{}, false
		}
		return driver.Event{Kind: driver.KindExpose, Window: driver.WindowID(e.Window)}, true
	case xproto.MotionNotifyEvent:
		return driver.Event{
			Kind:   driver.KindMouseMove,
			Window: driver.WindowID(e.Event),
			X:      int(e.EventX),
			Y:      int(e.EventY),
		}, true
	case xproto.ButtonPressEvent:
		return l.buttonEvent(driver.KindMousePress, e.Event, e.Detail, e.EventX, e.EventY)
	case xproto.ButtonReleaseEvent:
		return l.buttonEvent(driver.KindMouseRelease, e.Event, e.Detail, e.EventX, e.EventY)
	case xproto.ClientMessageEvent:
		if e.Format == 32 && e.Type == l.atomProtocols &&
			xproto.Atom(e.Data.Data32[0]) == l.atomDelete {
			return driver.Event{Kind: driver.KindCloseRequest, Window: driver.WindowID(e.Window)}, true
		}
		return driver.Event{}, false
	case xproto.DestroyNotifyEvent, xproto.ReparentNotifyEvent,
		xproto.GravityNotifyEvent, xproto.CirculateNotifyEvent:
		// Remaining StructureNotify traffic; nothing to dispatch.
		return driver.Event{}, false
	default:
		l.log.Warn("unrecognized x11 event", "event", fmt.Sprintf("%T", ev))
		return driver.Event{}, false
	}
}

func (l *Loop) buttonEvent(kind driver.Kind, win xproto.Window, detail xproto.Button, x, y int16) (driver.Event, bool) {
	var btn driver.Button
	switch detail {
	case 1:
		btn = driver.ButtonLeft
	case 2:
		btn = driver.ButtonMiddle
	case 3:
		btn = driver.ButtonRight
	default:
		// Buttons 4 and up are wheel and extension buttons; there is no
		// event variant for them.
		return driver.Event{}, false
	}
	return driver.Event{
		Kind:   kind,
		Window: driver.WindowID(win),
		X:      int(x),
		Y:      int(y),
		Button: btn,
	}, true
}
