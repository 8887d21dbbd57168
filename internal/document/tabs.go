package document

import "sync"

// Manager owns the ordered tab collection and the active document.
// At most one document is active; the active id, if set, always refers to a
// document present in the collection.
type Manager struct {
	mu     sync.RWMutex
	tabs   []*Document
	active int // document id, 0 when no document is open
	nextID int
}

func NewManager() *Manager {
	return &Manager{nextID: 1}
}

// Create appends a new document and makes it active. Always succeeds.
// A non-empty path marks the buffer file-backed; dirty seeds the baseline so
// restored unsaved sessions stay flagged.
func (m *Manager) Create(path, content string, dirty bool) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &Document{ID: m.nextID, Path: path, Content: content}
	m.nextID++
	if dirty {
		d.markDirtyBaseline()
	} else {
		d.markClean()
	}
	m.tabs = append(m.tabs, d)
	m.active = d.ID
	return d
}

// OpenInTab reuses an existing tab backed by the same path, otherwise opens
// a new one with the given content.
func (m *Manager) OpenInTab(path, content string) *Document {
	m.mu.Lock()
	if path != "" {
		for _, d := range m.tabs {
			if d.Path == path {
				m.active = d.ID
				m.mu.Unlock()
				return d
			}
		}
	}
	m.mu.Unlock()
	return m.Create(path, content, false)
}

// UpdateContent replaces a document's text. This is the single mutation
// entry point for edits; the dirty flag follows from the baseline hash.
// No-op if the id is unknown.
func (m *Manager) UpdateContent(id int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.byID(id); d != nil {
		d.Content = text
	}
}

// MarkSaved clears the dirty state and, after a save-as, adopts the new path.
func (m *Manager) MarkSaved(id int, newPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.byID(id); d != nil {
		if newPath != "" {
			d.Path = newPath
		}
		d.markClean()
	}
}

// Close removes a document. If it was active, activation moves to the tab
// that visually follows it, or the new last tab, or none when the collection
// empties. Callers are responsible for the unsaved-changes confirmation
// before calling. Unknown ids are ignored.
func (m *Manager) Close(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, d := range m.tabs {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	m.tabs = append(m.tabs[:idx], m.tabs[idx+1:]...)
	if m.active != id {
		return
	}
	switch {
	case len(m.tabs) == 0:
		m.active = 0
	case idx < len(m.tabs):
		m.active = m.tabs[idx].ID
	default:
		m.active = m.tabs[len(m.tabs)-1].ID
	}
}

// CloseOthers keeps only the given tab and makes it active. No-op if the id
// is unknown.
func (m *Manager) CloseOthers(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.byID(id); d != nil {
		m.tabs = []*Document{d}
		m.active = id
	}
}

// SwitchTo changes the active document; no-op if the id is unknown.
func (m *Manager) SwitchTo(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byID(id) != nil {
		m.active = id
	}
}

// Active returns the active document, or nil when no tab is open.
func (m *Manager) Active() *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID(m.active)
}

// Get returns a document by id, or nil.
func (m *Manager) Get(id int) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID(id)
}

// Tabs returns the tabs in visual order.
func (m *Manager) Tabs() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Document(nil), m.tabs...)
}

// HasDirty reports whether any open tab carries unsaved edits.
func (m *Manager) HasDirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.tabs {
		if d.Dirty() {
			return true
		}
	}
	return false
}

// DirtyTabs returns the tabs with unsaved edits, in visual order.
func (m *Manager) DirtyTabs() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Document
	for _, d := range m.tabs {
		if d.Dirty() {
			out = append(out, d)
		}
	}
	return out
}

func (m *Manager) byID(id int) *Document {
	for _, d := range m.tabs {
		if d.ID == id {
			return d
		}
	}
	return nil
}
