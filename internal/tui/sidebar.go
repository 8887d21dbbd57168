package tui

import (
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/markpad/markpad/internal/bridge"
	"github.com/markpad/markpad/internal/wire"
)

const sidebarWidth = 30

var (
	sidebarStyle       = lipgloss.NewStyle().Width(sidebarWidth - 2).PaddingRight(1).BorderRight(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	sidebarDirStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	sidebarCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
)

// sidebar lists the working directory, markdown files and subdirectories
// only, refreshed by a filesystem watcher while visible.
type sidebar struct {
	app     *wire.App
	root    string
	entries []bridge.FileInfo
	cursor  int
	watcher *fsnotify.Watcher
}

func newSidebar(app *wire.App) *sidebar {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return &sidebar{app: app, root: root}
}

// refresh reloads the listing, keeping directories and markdown files.
func (s *sidebar) refresh() {
	all, err := s.app.Files.ReadDirectory(s.root)
	if err != nil {
		s.entries = nil
		return
	}
	kept := all[:0]
	for _, e := range all {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		if e.IsDir || isMarkdown(e.Name) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	if s.cursor >= len(s.entries) {
		s.cursor = max(len(s.entries)-1, 0)
	}
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".mdown", ".mkd", ".mdx", ".txt":
		return true
	}
	return false
}

// markdownFiles returns the markdown paths under the root, one directory
// level deep, for the quick-open list.
func (s *sidebar) markdownFiles() []string {
	var out []string
	top, err := s.app.Files.ReadDirectory(s.root)
	if err != nil {
		return nil
	}
	for _, e := range top {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		if !e.IsDir {
			if isMarkdown(e.Name) {
				out = append(out, e.Path)
			}
			continue
		}
		sub, err := s.app.Files.ReadDirectory(e.Path)
		if err != nil {
			continue
		}
		for _, f := range sub {
			if !f.IsDir && isMarkdown(f.Name) {
				out = append(out, f.Path)
			}
		}
	}
	return out
}

// watchCmd returns a command that blocks on the next filesystem event in the
// root. The watcher is created lazily and survives across calls.
func (s *sidebar) watchCmd() tea.Cmd {
	if s.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil
		}
		if err := w.Add(s.root); err != nil {
			_ = w.Close()
			return nil
		}
		s.watcher = w
	}
	w := s.watcher
	return func() tea.Msg {
		for {
			select {
			case _, ok := <-w.Events:
				if !ok {
					return nil
				}
				return fsEventMsg{}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (s *sidebar) stop() {
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
}

func (s *sidebar) handleKey(m *model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.entries)-1 {
			s.cursor++
		}
	case "backspace", "h":
		parent := filepath.Dir(s.root)
		if parent != s.root {
			s.changeRoot(parent)
		}
	case "esc":
		m.focus = focusEditor
		m.editor.Focus()
	case "enter", "l":
		if s.cursor >= len(s.entries) {
			break
		}
		e := s.entries[s.cursor]
		if e.IsDir {
			s.changeRoot(e.Path)
			break
		}
		m.openPath(e.Path)
		m.loadActiveIntoEditor()
		m.focus = focusEditor
		m.editor.Focus()
		return m, m.refreshPreviewCmd()
	}
	return m, nil
}

// changeRoot moves the listing and the watcher to a new directory.
func (s *sidebar) changeRoot(dir string) {
	s.root = dir
	s.cursor = 0
	s.refresh()
	if s.watcher != nil {
		for _, w := range s.watcher.WatchList() {
			_ = s.watcher.Remove(w)
		}
		_ = s.watcher.Add(s.root)
	}
}

func (s *sidebar) view(height int, focused bool) string {
	var b strings.Builder
	title := filepath.Base(s.root)
	if focused {
		b.WriteString(sidebarDirStyle.Render("▸ " + title))
	} else {
		b.WriteString(sidebarDirStyle.Render("  " + title))
	}
	b.WriteString("\n")
	limit := height - 1
	if limit < 1 {
		limit = 1
	}
	for i, e := range s.entries {
		if i >= limit {
			break
		}
		name := e.Name
		if e.IsDir {
			name += "/"
		}
		if len(name) > sidebarWidth-4 {
			name = name[:sidebarWidth-5] + "…"
		}
		line := "  " + name
		if focused && i == s.cursor {
			line = sidebarCursorStyle.Render(line)
		} else if e.IsDir {
			line = sidebarDirStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return sidebarStyle.Height(height).Render(b.String())
}
