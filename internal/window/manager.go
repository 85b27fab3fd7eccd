package window

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vesselhq/vessel/internal/runtime"
)

// State represents window lifecycle states.
type State string

const (
	StateActive     State = "active"
	StateBackground State = "background"
	StateClosed     State = "closed"
)

// Instance represents an open window created from the packaged manifest.
type Instance struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Title      string    `json:"title"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Resizable  bool      `json:"resizable"`
	Fullscreen bool      `json:"fullscreen"`
	State      State     `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
}

// Event describes a window lifecycle change.
type Event struct {
	Type   string    `json:"type"` // "opened", "focused", "closed"
	Window *Instance `json:"window"`
}

// Manager tracks window instances for the running application.
//
// The manager is bookkeeping only: rendering belongs to the host surface.
// When the last window closes the OnEmpty callback fires, which the shell
// uses to end the run loop normally.
type Manager struct {
	mu        sync.RWMutex
	windows   map[string]*Instance
	order     []string
	focusedID string

	onEvent func(Event)
	onEmpty func()
}

// NewManager creates an empty window manager.
func NewManager() *Manager {
	return &Manager{
		windows: make(map[string]*Instance),
	}
}

// OnEvent registers a listener for window lifecycle events. Must be called
// before OpenFromManifest.
func (m *Manager) OnEvent(fn func(Event)) {
	m.onEvent = fn
}

// OnEmpty registers the callback fired when the last window closes.
func (m *Manager) OnEmpty(fn func()) {
	m.onEmpty = fn
}

// OpenFromManifest creates one instance per manifest window. The first
// window receives focus.
func (m *Manager) OpenFromManifest(windows []runtime.Window) ([]*Instance, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("window manifest is empty")
	}

	instances := make([]*Instance, 0, len(windows))
	for i := range windows {
		w := &windows[i]
		title := w.Title
		if title == "" {
			title = w.Label
		}
		width, height := w.Size()
		inst := &Instance{
			ID:         uuid.New().String(),
			Label:      w.Label,
			Title:      title,
			Width:      width,
			Height:     height,
			Resizable:  w.IsResizable(),
			Fullscreen: w.Fullscreen,
			State:      StateBackground,
			CreatedAt:  time.Now(),
		}

		m.mu.Lock()
		m.windows[inst.ID] = inst
		m.order = append(m.order, inst.ID)
		m.mu.Unlock()

		m.emit(Event{Type: "opened", Window: inst})
		instances = append(instances, inst)
	}

	m.Focus(instances[0].ID)
	return instances, nil
}

// Get retrieves a window by instance ID.
func (m *Manager) Get(id string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[id]
	return w, ok
}

// GetByLabel retrieves a window by its manifest label.
func (m *Manager) GetByLabel(label string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if w := m.windows[id]; w != nil && w.Label == label {
			return w, true
		}
	}
	return nil, false
}

// List returns open windows in creation order.
func (m *Manager) List() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Instance, 0, len(m.order))
	for _, id := range m.order {
		if w, ok := m.windows[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// Focus brings a window to the foreground; the previously focused window
// moves to the background.
func (m *Manager) Focus(id string) bool {
	m.mu.Lock()
	w, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	if m.focusedID != "" && m.focusedID != id {
		if prev, ok := m.windows[m.focusedID]; ok {
			prev.State = StateBackground
		}
	}
	w.State = StateActive
	m.focusedID = id
	m.mu.Unlock()

	m.emit(Event{Type: "focused", Window: w})
	return true
}

// Close removes a window. Closing the last one fires the OnEmpty callback.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	w, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	w.State = StateClosed
	delete(m.windows, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	var next string
	if m.focusedID == id {
		m.focusedID = ""
		if len(m.order) > 0 {
			next = m.order[len(m.order)-1]
		}
	}
	empty := len(m.windows) == 0
	m.mu.Unlock()

	m.emit(Event{Type: "closed", Window: w})

	if next != "" {
		m.Focus(next)
	}
	if empty && m.onEmpty != nil {
		m.onEmpty()
	}
	return true
}

// Stats contains window manager statistics.
type Stats struct {
	Open    int     `json:"open"`
	Focused *string `json:"focused,omitempty"` // window label
}

// Stats returns manager statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{Open: len(m.windows)}
	if w, ok := m.windows[m.focusedID]; ok {
		s.Focused = &w.Label
	}
	return s
}

func (m *Manager) emit(evt Event) {
	if m.onEvent != nil {
		m.onEvent(evt)
	}
}
