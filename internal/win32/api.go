//go:build windows

// Package win32 is the Windows backend. It drives the user32 message queue
// directly through lazily loaded system DLLs.
package win32

import (
	"fmt"
	"unsafe"

	syscall "golang.org/x/sys/windows"
)

type rect struct {
	left, top, right, bottom int32
}

type point struct {
	x, y int32
}

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cnClsExtra    int32
	cbWndExtra    int32
	hInstance     syscall.Handle
	hIcon         syscall.Handle
	hCursor       syscall.Handle
	hbrBackground syscall.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       syscall.Handle
}

type msg struct {
	hwnd     syscall.Handle
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

const (
	_CS_HREDRAW = 0x0002
	_CS_VREDRAW = 0x0001
	_CS_OWNDC   = 0x0020

	_CW_USEDEFAULT = -2147483648

	_COLOR_WINDOW = 5

	_HTCLIENT = 1

	_ICON_SMALL = 0
	_ICON_BIG   = 1

	_IDC_ARROW = 32512
	_IDC_HAND  = 32649

	_LR_DEFAULTSIZE = 0x0040

	_PM_NOREMOVE = 0x0000
	_PM_REMOVE   = 0x0001

	_SIZE_MAXIMIZED = 2
	_SIZE_MINIMIZED = 1
	_SIZE_RESTORED  = 0

	_SW_SHOWDEFAULT = 10

	_WM_CLOSE       = 0x0010
	_WM_DESTROY     = 0x0002
	_WM_LBUTTONDOWN = 0x0201
	_WM_LBUTTONUP   = 0x0202
	_WM_MBUTTONDOWN = 0x0207
	_WM_MBUTTONUP   = 0x0208
	_WM_MOUSEMOVE   = 0x0200
	_WM_PAINT       = 0x000F
	_WM_QUIT        = 0x0012
	_WM_RBUTTONDOWN = 0x0204
	_WM_RBUTTONUP   = 0x0205
	_WM_SETCURSOR   = 0x0020
	_WM_SETICON     = 0x0080
	_WM_SHOWWINDOW  = 0x0018
	_WM_SIZE        = 0x0005

	_WS_CLIPCHILDREN     = 0x00010000
	_WS_CLIPSIBLINGS     = 0x04000000
	_WS_OVERLAPPED       = 0x00000000
	_WS_CAPTION          = 0x00C00000
	_WS_SYSMENU          = 0x00080000
	_WS_THICKFRAME       = 0x00040000
	_WS_MINIMIZEBOX      = 0x00020000
	_WS_MAXIMIZEBOX      = 0x00010000
	_WS_OVERLAPPEDWINDOW = _WS_OVERLAPPED | _WS_CAPTION | _WS_SYSMENU |
		_WS_THICKFRAME | _WS_MINIMIZEBOX | _WS_MAXIMIZEBOX

	_WS_EX_APPWINDOW  = 0x00040000
	_WS_EX_WINDOWEDGE = 0x00000100
)

var (
	kernel32          = syscall.NewLazySystemDLL("kernel32.dll")
	_GetModuleHandleW = kernel32.NewProc("GetModuleHandleW")

	user32                    = syscall.NewLazySystemDLL("user32.dll")
	_AdjustWindowRectEx       = user32.NewProc("AdjustWindowRectEx")
	_CreateIconFromResourceEx = user32.NewProc("CreateIconFromResourceEx")
	_CreateWindowEx           = user32.NewProc("CreateWindowExW")
	_DefWindowProc            = user32.NewProc("DefWindowProcW")
	_DestroyIcon              = user32.NewProc("DestroyIcon")
	_DestroyWindow            = user32.NewProc("DestroyWindow")
	_DispatchMessage          = user32.NewProc("DispatchMessageW")
	_GetMessage               = user32.NewProc("GetMessageW")
	_LoadCursor               = user32.NewProc("LoadCursorW")
	_PeekMessage              = user32.NewProc("PeekMessageW")
	_RegisterClassExW         = user32.NewProc("RegisterClassExW")
	_ReleaseCapture           = user32.NewProc("ReleaseCapture")
	_SendMessage              = user32.NewProc("SendMessageW")
	_SetCapture               = user32.NewProc("SetCapture")
	_SetCursor                = user32.NewProc("SetCursor")
	_SetFocus                 = user32.NewProc("SetFocus")
	_SetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	_SetWindowText            = user32.NewProc("SetWindowTextW")
	_ShowWindow               = user32.NewProc("ShowWindow")
	_TranslateMessage         = user32.NewProc("TranslateMessage")
	_ValidateRect             = user32.NewProc("ValidateRect")
)

func getModuleHandle() (syscall.Handle, error) {
	h, _, err := _GetModuleHandleW.Call(uintptr(0))
	if h == 0 {
		return 0, fmt.Errorf("GetModuleHandleW failed: %v", err)
	}
	return syscall.Handle(h), nil
}

func adjustWindowRectEx(r *rect, dwStyle uint32, bMenu int, dwExStyle uint32) {
	_AdjustWindowRectEx.Call(uintptr(unsafe.Pointer(r)), uintptr(dwStyle), uintptr(bMenu), uintptr(dwExStyle))
}

func createIconFromResourceEx(data []byte, cxDesired, cyDesired int, flags uint32) (syscall.Handle, error) {
	h, _, err := _CreateIconFromResourceEx.Call(
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		1, // icon, not cursor
		0x00030000,
		uintptr(cxDesired),
		uintptr(cyDesired),
		uintptr(flags))
	if h == 0 {
		return 0, fmt.Errorf("CreateIconFromResourceEx failed: %v", err)
	}
	return syscall.Handle(h), nil
}

func createWindowEx(dwExStyle uint32, lpClassName uint16, lpWindowName string, dwStyle uint32, x, y, w, h int32, hWndParent, hMenu, hInstance syscall.Handle, lpParam uintptr) (syscall.Handle, error) {
	hwnd, _, err := _CreateWindowEx.Call(
		uintptr(dwExStyle),
		uintptr(lpClassName),
		uintptr(unsafe.Pointer(syscall.StringToUTF16Ptr(lpWindowName))),
		uintptr(dwStyle),
		uintptr(x), uintptr(y),
		uintptr(w), uintptr(h),
		uintptr(hWndParent),
		uintptr(hMenu),
		uintptr(hInstance),
		uintptr(lpParam))
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowEx failed: %v", err)
	}
	return syscall.Handle(hwnd), nil
}

func defWindowProc(hwnd syscall.Handle, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := _DefWindowProc.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	return r
}

func destroyIcon(icon syscall.Handle) {
	_DestroyIcon.Call(uintptr(icon))
}

func destroyWindow(hwnd syscall.Handle) {
	_DestroyWindow.Call(uintptr(hwnd))
}

func dispatchMessage(m *msg) {
	_DispatchMessage.Call(uintptr(unsafe.Pointer(m)))
}

func getMessage(m *msg, hwnd syscall.Handle, wMsgFilterMin, wMsgFilterMax uint32) int32 {
	r, _, _ := _GetMessage.Call(uintptr(unsafe.Pointer(m)),
		uintptr(hwnd),
		uintptr(wMsgFilterMin),
		uintptr(wMsgFilterMax))
	return int32(r)
}

func loadCursor(curID uint16) (syscall.Handle, error) {
	h, _, err := _LoadCursor.Call(0, uintptr(curID))
	if h == 0 {
		return 0, fmt.Errorf("LoadCursorW failed: %v", err)
	}
	return syscall.Handle(h), nil
}

func peekMessage(m *msg, hwnd syscall.Handle, wMsgFilterMin, wMsgFilterMax, wRemoveMsg uint32) bool {
	r, _, _ := _PeekMessage.Call(uintptr(unsafe.Pointer(m)), uintptr(hwnd), uintptr(wMsgFilterMin), uintptr(wMsgFilterMax), uintptr(wRemoveMsg))
	return r != 0
}

func registerClassEx(cls *wndClassEx) (uint16, error) {
	a, _, err := _RegisterClassExW.Call(uintptr(unsafe.Pointer(cls)))
	if a == 0 {
		return 0, fmt.Errorf("RegisterClassExW failed: %v", err)
	}
	return uint16(a), nil
}

func releaseCapture() {
	_ReleaseCapture.Call()
}

func sendMessage(hwnd syscall.Handle, msg uint32, wParam, lParam uintptr) uintptr {
	r, _, _ := _SendMessage.Call(uintptr(hwnd), uintptr(msg), wParam, lParam)
	return r
}

func setCapture(hwnd syscall.Handle) {
	_SetCapture.Call(uintptr(hwnd))
}

func setCursor(h syscall.Handle) {
	_SetCursor.Call(uintptr(h))
}

func setFocus(hwnd syscall.Handle) {
	_SetFocus.Call(uintptr(hwnd))
}

func setForegroundWindow(hwnd syscall.Handle) {
	_SetForegroundWindow.Call(uintptr(hwnd))
}

func setWindowText(hwnd syscall.Handle, title string) error {
	r, _, err := _SetWindowText.Call(uintptr(hwnd), uintptr(unsafe.Pointer(syscall.StringToUTF16Ptr(title))))
	if r == 0 {
		return fmt.Errorf("SetWindowTextW failed: %v", err)
	}
	return nil
}

func showWindow(hwnd syscall.Handle, nCmdShow int32) {
	_ShowWindow.Call(uintptr(hwnd), uintptr(nCmdShow))
}

func translateMessage(m *msg) {
	_TranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func validateRect(hwnd syscall.Handle) {
	_ValidateRect.Call(uintptr(hwnd), 0)
}
