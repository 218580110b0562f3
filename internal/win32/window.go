//go:build windows

package win32

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	syscall "golang.org/x/sys/windows"

	"winloop/internal/driver"
)

// Window is one Win32 top-level window.
type Window struct {
	loop *Loop
	hwnd syscall.Handle
	// cursor is the handle installed on WM_SETCURSOR. System cursors from
	// LoadCursor are shared resources; replacing the handle is the whole
	// release.
	cursor  syscall.Handle
	bigIcon syscall.Handle
	smIcon  syscall.Handle
	pressed int
}

var _ driver.Window = (*Window)(nil)

// NewWindow creates and shows a top-level window. The outer frame is
// enlarged with AdjustWindowRectEx so the client area matches the requested
// size.
func (l *Loop) NewWindow(width, height int) (driver.Window, error) {
	dwStyle := uint32(_WS_OVERLAPPEDWINDOW)
	dwExStyle := uint32(_WS_EX_APPWINDOW | _WS_EX_WINDOWEDGE)
	wr := rect{right: int32(width), bottom: int32(height)}
	adjustWindowRectEx(&wr, dwStyle, 0, dwExStyle)
	hwnd, err := createWindowEx(dwExStyle,
		l.cls,
		"",
		dwStyle|_WS_CLIPSIBLINGS|_WS_CLIPCHILDREN,
		_CW_USEDEFAULT, _CW_USEDEFAULT,
		wr.right-wr.left,
		wr.bottom-wr.top,
		0,
		0,
		l.hinst,
		0)
	if err != nil {
		return nil, err
	}
	w := &Window{loop: l, hwnd: hwnd}
	winMapStore(hwnd, w)
	showWindow(hwnd, _SW_SHOWDEFAULT)
	setForegroundWindow(hwnd)
	setFocus(hwnd)
	return w, nil
}

func (w *Window) ID() driver.WindowID {
	return driver.WindowID(w.hwnd)
}

func (w *Window) SetTitle(title string) error {
	return setWindowText(w.hwnd, title)
}

// SetIcon installs img as both the big and the small window icon, or clears
// them when img is nil. The icon is handed to the system as PNG, which
// CreateIconFromResourceEx accepts since Vista.
func (w *Window) SetIcon(img image.Image) error {
	if img == nil {
		sendMessage(w.hwnd, _WM_SETICON, _ICON_BIG, 0)
		sendMessage(w.hwnd, _WM_SETICON, _ICON_SMALL, 0)
		w.releaseIcons()
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode icon: %w", err)
	}
	big, err := createIconFromResourceEx(buf.Bytes(), 0, 0, _LR_DEFAULTSIZE)
	if err != nil {
		return fmt.Errorf("create icon: %w", err)
	}
	small, err := createIconFromResourceEx(buf.Bytes(), 16, 16, 0)
	if err != nil {
		destroyIcon(big)
		return fmt.Errorf("create small icon: %w", err)
	}
	sendMessage(w.hwnd, _WM_SETICON, _ICON_BIG, uintptr(big))
	sendMessage(w.hwnd, _WM_SETICON, _ICON_SMALL, uintptr(small))
	w.releaseIcons()
	w.bigIcon, w.smIcon = big, small
	return nil
}

func (w *Window) releaseIcons() {
	if w.bigIcon != 0 {
		destroyIcon(w.bigIcon)
		w.bigIcon = 0
	}
	if w.smIcon != 0 {
		destroyIcon(w.smIcon)
		w.smIcon = 0
	}
}

// SetCursor loads the system cursor for shape and installs it immediately
// and for subsequent WM_SETCURSOR hits in the client area.
func (w *Window) SetCursor(shape driver.CursorShape) error {
	var id uint16
	switch shape {
	case driver.CursorPointer:
		id = _IDC_ARROW
	case driver.CursorHand2:
		id = _IDC_HAND
	default:
		return fmt.Errorf("unknown cursor shape %d", int(shape))
	}
	h, err := loadCursor(id)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	w.cursor = h
	setCursor(h)
	return nil
}

// ResetCursor falls back to the window class arrow cursor.
func (w *Window) ResetCursor() error {
	w.cursor = 0
	h, err := loadCursor(_IDC_ARROW)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	setCursor(h)
	return nil
}

// Destroy releases the icons and destroys the native window; WM_DESTROY
// removes the handle from the lookup map.
func (w *Window) Destroy() error {
	w.releaseIcons()
	w.cursor = 0
	destroyWindow(w.hwnd)
	return nil
}
