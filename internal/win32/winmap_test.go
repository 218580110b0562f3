//go:build windows

package win32

import (
	"sync"
	"testing"

	syscall "golang.org/x/sys/windows"
)

// Two loops live on two OS threads and both touch the process-global handle
// map: one inserts while the other looks up or deletes from its wndProc. The
// accessors must hold up under that interleaving (run with -race).
func TestWindowMapSafeAcrossConcurrentLoops(t *testing.T) {
	const perLoop = 1000
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 1; i <= perLoop; i++ {
				h := syscall.Handle(base*perLoop + i)
				winMapStore(h, &Window{hwnd: h})
				w, ok := winMapLoad(h)
				if !ok || w.hwnd != h {
					t.Errorf("handle %#x not found after store", uintptr(h))
					return
				}
				winMapDelete(h)
				if _, ok := winMapLoad(h); ok {
					t.Errorf("handle %#x still present after delete", uintptr(h))
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
