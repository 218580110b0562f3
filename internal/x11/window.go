package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	xdraw "golang.org/x/image/draw"

	"winloop/internal/driver"
)

// eventMask is everything the decode map in loop.go covers.
const eventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// _NET_WM_ICON is a list of icons; window managers pick the closest size.
var iconSizes = []int{16, 32, 48}

// Window is one X11 top-level window.
type Window struct {
	xu     *xgbutil.XUtil
	win    *xwindow.Window
	cursor xproto.Cursor
}

var _ driver.Window = (*Window)(nil)

// NewWindow creates and maps a top-level window with the given client size.
// X11 geometry is client-area already, no decoration adjustment is needed.
func (l *Loop) NewWindow(width, height int) (driver.Window, error) {
	win, err := xwindow.Generate(l.xu)
	if err != nil {
		return nil, fmt.Errorf("allocate window id: %w", err)
	}
	err = win.CreateChecked(l.root, 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		l.xu.Screen().WhitePixel, eventMask)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	// Opt in to graceful close requests instead of the server killing the
	// connection on close.
	if err := xprop.ChangeProp32(l.xu, win.Id, "WM_PROTOCOLS", "ATOM", uint(l.atomDelete)); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("set WM_PROTOCOLS: %w", err)
	}
	win.Map()
	l.xu.Sync()
	return &Window{xu: l.xu, win: win}, nil
}

func (w *Window) ID() driver.WindowID {
	return driver.WindowID(w.win.Id)
}

// SetTitle sets both the EWMH and the ICCCM title so old and new window
// managers agree, then syncs so the title is immediately observable.
func (w *Window) SetTitle(title string) error {
	if err := ewmh.WmNameSet(w.xu, w.win.Id, title); err != nil {
		return fmt.Errorf("set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(w.xu, w.win.Id, title); err != nil {
		return fmt.Errorf("set WM_NAME: %w", err)
	}
	w.xu.Sync()
	return nil
}

// SetIcon publishes img as _NET_WM_ICON in several sizes, or deletes the
// property when img is nil.
func (w *Window) SetIcon(img image.Image) error {
	if img == nil {
		atom, err := xprop.Atm(w.xu, "_NET_WM_ICON")
		if err != nil {
			return fmt.Errorf("intern _NET_WM_ICON: %w", err)
		}
		if err := xproto.DeletePropertyChecked(w.xu.Conn(), w.win.Id, atom).Check(); err != nil {
			return fmt.Errorf("clear _NET_WM_ICON: %w", err)
		}
		return nil
	}
	icons := make([]ewmh.WmIcon, 0, len(iconSizes))
	for _, size := range iconSizes {
		icons = append(icons, scaleIcon(img, size))
	}
	if err := ewmh.WmIconSet(w.xu, w.win.Id, icons); err != nil {
		return fmt.Errorf("set _NET_WM_ICON: %w", err)
	}
	w.xu.Sync()
	return nil
}

func scaleIcon(img image.Image, size int) ewmh.WmIcon {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	data := make([]uint, size*size)
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := dst.RGBAAt(x, y)
			data[i] = uint(c.A)<<24 | uint(c.R)<<16 | uint(c.G)<<8 | uint(c.B)
			i++
		}
	}
	return ewmh.WmIcon{Width: uint(size), Height: uint(size), Data: data}
}

// SetCursor creates the cursor-font glyph for shape, installs it on the
// window and frees the previously owned cursor.
func (w *Window) SetCursor(shape driver.CursorShape) error {
	var glyph uint16
	switch shape {
	case driver.CursorPointer:
		glyph = xcursor.LeftPtr
	case driver.CursorHand2:
		glyph = xcursor.Hand2
	default:
		return fmt.Errorf("unknown cursor shape %d", int(shape))
	}
	cur, err := xcursor.CreateCursor(w.xu, glyph)
	if err != nil {
		return fmt.Errorf("create cursor: %w", err)
	}
	if err := w.installCursor(cur); err != nil {
		xproto.FreeCursor(w.xu.Conn(), cur)
		return err
	}
	return nil
}

// ResetCursor restores the inherited default pointer and frees the owned
// cursor, if any.
func (w *Window) ResetCursor() error {
	if err := w.installCursor(xproto.CursorNone); err != nil {
		return err
	}
	return nil
}

// installCursor points the window at cur and releases the previous one. The
// window owns at most one cursor resource at a time.
func (w *Window) installCursor(cur xproto.Cursor) error {
	err := xproto.ChangeWindowAttributesChecked(w.xu.Conn(), w.win.Id,
		xproto.CwCursor, []uint32{uint32(cur)}).Check()
	if err != nil {
		return fmt.Errorf("install cursor: %w", err)
	}
	w.freeCursor()
	if cur != xproto.CursorNone {
		w.cursor = cur
	}
	return nil
}

func (w *Window) freeCursor() {
	if w.cursor != 0 {
		xproto.FreeCursor(w.xu.Conn(), w.cursor)
		w.cursor = 0
	}
}

// Destroy frees the cursor resource and destroys the window, syncing so the
// identity is invalid for native queries as soon as Destroy returns.
func (w *Window) Destroy() error {
	w.freeCursor()
	w.win.Destroy()
	w.xu.Sync()
	return nil
}
