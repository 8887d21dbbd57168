package api

import "time"

// RecentFile is one entry of the recently-opened list, most recent first.
type RecentFile struct {
	Path     string    `json:"path"`
	OpenedAt time.Time `json:"opened_at"`
}

// SessionTab is the persisted form of one open tab.
// Content is only stored when the tab had unsaved edits at shutdown.
type SessionTab struct {
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	Dirty   bool   `json:"dirty,omitempty"`
}

// Session captures the open tabs and which one was active.
type Session struct {
	Tabs      []SessionTab `json:"tabs"`
	ActiveTab int          `json:"active_tab"`
	SavedAt   time.Time    `json:"saved_at"`
}
