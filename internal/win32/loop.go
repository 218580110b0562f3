//go:build windows

package win32

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	syscall "golang.org/x/sys/windows"

	"winloop/internal/driver"
)

// winMap resolves the window handle passed to wndProc back to its Window.
// Win32 hands the handle to a process-wide callback, so the lookup has to be
// package level. Loops on different OS threads insert, look up and delete
// concurrently; winMu guards every access.
var (
	winMu  sync.Mutex
	winMap = make(map[syscall.Handle]*Window)
)

func winMapStore(hwnd syscall.Handle, w *Window) {
	winMu.Lock()
	winMap[hwnd] = w
	winMu.Unlock()
}

func winMapLoad(hwnd syscall.Handle) (*Window, bool) {
	winMu.Lock()
	w, ok := winMap[hwnd]
	winMu.Unlock()
	return w, ok
}

func winMapDelete(hwnd syscall.Handle) {
	winMu.Lock()
	delete(winMap, hwnd)
	winMu.Unlock()
}

var (
	classOnce sync.Once
	classAtom uint16
	classInst syscall.Handle
	classErr  error
)

// registerWindowClass registers the shared window class on first use.
func registerWindowClass() (uint16, syscall.Handle, error) {
	classOnce.Do(func() {
		classInst, classErr = getModuleHandle()
		if classErr != nil {
			return
		}
		var arrow syscall.Handle
		arrow, classErr = loadCursor(_IDC_ARROW)
		if classErr != nil {
			return
		}
		wcls := wndClassEx{
			cbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
			style:         _CS_HREDRAW | _CS_VREDRAW | _CS_OWNDC,
			lpfnWndProc:   syscall.NewCallback(wndProc),
			hInstance:     classInst,
			hCursor:       arrow,
			hbrBackground: _COLOR_WINDOW + 1,
			lpszClassName: syscall.StringToUTF16Ptr("WinloopWindow"),
		}
		classAtom, classErr = registerClassEx(&wcls)
	})
	return classAtom, classInst, classErr
}

// Loop owns one thread message queue and decodes its traffic. The goroutine
// that calls NewLoop is locked to its OS thread; every other method must be
// called from that same goroutine.
type Loop struct {
	log   *slog.Logger
	cls   uint16
	hinst syscall.Handle
	// queue holds events decoded by wndProc during a message dispatch,
	// awaiting pickup through Poll or Wait.
	queue []driver.Event
}

var _ driver.Loop = (*Loop)(nil)

// NewLoop prepares a message queue on the calling goroutine's OS thread.
func NewLoop(logger *slog.Logger) (*Loop, error) {
	// Win32 delivers messages to the thread that created the window.
	runtime.LockOSThread()
	cls, hinst, err := registerWindowClass()
	if err != nil {
		return nil, fmt.Errorf("register window class: %w", err)
	}
	return &Loop{log: logger, cls: cls, hinst: hinst}, nil
}

// Poll pumps at most the immediately available messages and returns the next
// decoded event, if any.
func (l *Loop) Poll() (driver.Event, bool, error) {
	for {
		if ev, ok := l.pop(); ok {
			return ev, true, nil
		}
		pumped, err := l.pump(false)
		if err != nil {
			return driver.Event{}, false, err
		}
		if !pumped {
			return driver.Event{}, false, nil
		}
	}
}

// Wait pumps messages, blocking when the queue is empty, until one decodes
// to an event.
func (l *Loop) Wait() (driver.Event, error) {
	for {
		if ev, ok := l.pop(); ok {
			return ev, nil
		}
		if _, err := l.pump(true); err != nil {
			return driver.Event{}, err
		}
	}
}

// Close releases the thread lock. The window class stays registered for the
// process lifetime.
func (l *Loop) Close() error {
	runtime.UnlockOSThread()
	return nil
}

func (l *Loop) pop() (driver.Event, bool) {
	if len(l.queue) == 0 {
		return driver.Event{}, false
	}
	ev := l.queue[0]
	l.queue = l.queue[1:]
	return ev, true
}

// pump retrieves and dispatches one thread message; wndProc appends any
// decoded events to l.queue as a side effect.
func (l *Loop) pump(block bool) (bool, error) {
	var m msg
	if block {
		switch ret := getMessage(&m, 0, 0, 0); {
		case ret == -1:
			return false, errors.New("GetMessageW failed")
		case ret == 0:
			return false, errors.New("message queue terminated")
		}
	} else {
		if !peekMessage(&m, 0, 0, 0, _PM_REMOVE) {
			return false, nil
		}
		if m.message == _WM_QUIT {
			return false, errors.New("message queue terminated")
		}
	}
	translateMessage(&m)
	dispatchMessage(&m)
	return true, nil
}

func (l *Loop) push(ev driver.Event) {
	l.queue = append(l.queue, ev)
}

// wndProc decodes the messages the window class subscribes to into driver
// events. Messages that Win32 sends beyond the decoded set are handled by
// DefWindowProc.
func wndProc(hwnd syscall.Handle, message uint32, wParam, lParam uintptr) uintptr {
	w, ok := winMapLoad(hwnd)
	if !ok {
		return defWindowProc(hwnd, message, wParam, lParam)
	}
	l := w.loop
	id := driver.WindowID(hwnd)
	switch message {
	case _WM_SHOWWINDOW:
		kind := driver.KindUnmap
		if wParam != 0 {
			kind = driver.KindMap
		}
		l.push(driver.Event{Kind: kind, Window: id})
	case _WM_SIZE:
		// Minimizing reports a zero client area, which is not a resize.
		if wParam == _SIZE_MINIMIZED {
			break
		}
		l.push(driver.Event{
			Kind:   driver.KindResize,
			Window: id,
			Width:  int(uint16(lParam & 0xffff)),
			Height: int(uint16((lParam >> 16) & 0xffff)),
		})
	case _WM_PAINT:
		// Validate now; the engine owns the pending-redraw flag and would
		// otherwise be flooded with repeat WM_PAINTs.
		validateRect(hwnd)
		l.push(driver.Event{Kind: driver.KindExpose, Window: id})
		return 0
	case _WM_MOUSEMOVE:
		x, y := coordsFromLParam(lParam)
		l.push(driver.Event{Kind: driver.KindMouseMove, Window: id, X: x, Y: y})
	case _WM_LBUTTONDOWN:
		w.buttonMessage(driver.KindMousePress, driver.ButtonLeft, lParam)
	case _WM_LBUTTONUP:
		w.buttonMessage(driver.KindMouseRelease, driver.ButtonLeft, lParam)
	case _WM_MBUTTONDOWN:
		w.buttonMessage(driver.KindMousePress, driver.ButtonMiddle, lParam)
	case _WM_MBUTTONUP:
		w.buttonMessage(driver.KindMouseRelease, driver.ButtonMiddle, lParam)
	case _WM_RBUTTONDOWN:
		w.buttonMessage(driver.KindMousePress, driver.ButtonRight, lParam)
	case _WM_RBUTTONUP:
		w.buttonMessage(driver.KindMouseRelease, driver.ButtonRight, lParam)
	case _WM_CLOSE:
		// The consumer decides whether the window closes.
		l.push(driver.Event{Kind: driver.KindCloseRequest, Window: id})
		return 0
	case _WM_SETCURSOR:
		if uint16(lParam&0xffff) == _HTCLIENT && w.cursor != 0 {
			setCursor(w.cursor)
			return 1
		}
	case _WM_DESTROY:
		winMapDelete(hwnd)
	}
	return defWindowProc(hwnd, message, wParam, lParam)
}

func (w *Window) buttonMessage(kind driver.Kind, btn driver.Button, lParam uintptr) {
	switch kind {
	case driver.KindMousePress:
		if w.pressed == 0 {
			setCapture(w.hwnd)
		}
		w.pressed++
	case driver.KindMouseRelease:
		if w.pressed > 0 {
			w.pressed--
		}
		if w.pressed == 0 {
			releaseCapture()
		}
	}
	x, y := coordsFromLParam(lParam)
	w.loop.push(driver.Event{
		Kind:   kind,
		Window: driver.WindowID(w.hwnd),
		X:      x,
		Y:      y,
		Button: btn,
	})
}

func coordsFromLParam(lParam uintptr) (int, int) {
	x := int(int16(lParam & 0xffff))
	y := int(int16((lParam >> 16) & 0xffff))
	return x, y
}
