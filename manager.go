package winloop

// EventManager is the capability handed to the callback on every dispatch.
// It signals intent back to the loop; the loop honors mode and active-flag
// changes starting with its next cycle.
type EventManager struct {
	loop *EventLoop
}

// Exit clears the loop's active flag. The current cycle still completes its
// remaining dispatches before the loop destroys the registered windows and
// returns.
func (m *EventManager) Exit() {
	m.loop.active = false
}

// SetMode switches the loop between blocking and non-blocking retrieval of
// native events.
func (m *EventManager) SetMode(mode Mode) {
	m.loop.mode = mode
}

// RequestRedraw marks the window for a RedrawEvent in the loop's next redraw
// sweep.
func (m *EventManager) RequestRedraw(w *Window) {
	if w != nil && !w.destroyed {
		w.needsRedraw = true
	}
}

// Close destroys the window and removes it from the loop's registry.
func (m *EventManager) Close(w *Window) {
	if w == nil {
		return
	}
	if err := m.loop.Close(w); err != nil {
		m.loop.log.Warn("close window", "window", uintptr(w.id), "error", err)
	}
}
