package tui

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/markpad/markpad/internal/diagram"
	"github.com/markpad/markpad/internal/export"
	"github.com/markpad/markpad/internal/imaging"
)

// Messages produced by background commands.

type previewMsg struct {
	seq      int
	docID    int
	rendered string
}

type savedMsg struct {
	docID     int
	path      string
	err       error
	thenClose bool
	thenQuit  bool
}

type exportedMsg struct {
	path     string
	pages    int
	canceled bool
	err      error
}

type imageMsg struct {
	markdown string
	err      error
}

type toastMsg struct{ text string }

type toastExpiredMsg struct{}

type fsEventMsg struct{}

// toast is a transient status message.
type toast struct {
	text string
	at   time.Time
}

const toastTTL = 3 * time.Second

func (m *model) pushToast(text string) {
	m.toasts = append(m.toasts, toast{text: text, at: time.Now()})
}

func (m *model) dropExpiredToasts() {
	cutoff := time.Now().Add(-toastTTL)
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if t.at.After(cutoff) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m *model) expireToastCmd() tea.Cmd {
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

// refreshPreviewCmd schedules an async re-render of the active document for
// the preview pane.
func (m *model) refreshPreviewCmd() tea.Cmd {
	doc := m.app.Tabs.Active()
	if doc == nil || m.view == viewEditorOnly {
		return nil
	}
	m.renderSeq++
	seq := m.renderSeq
	id := doc.ID
	content := doc.Content
	width := m.preview.Width
	m.loading["preview"] = true
	pr := m.previewRenderer(width)
	return func() tea.Msg {
		return previewMsg{seq: seq, docID: id, rendered: pr(content)}
	}
}

// saveActive saves the active document, prompting for a path when the buffer
// has no backing file yet.
func (m *model) saveActive(thenClose, thenQuit bool) tea.Cmd {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return nil
	}
	if doc.Path == "" {
		m.modal = newPromptModal("Save as:", promptSaveAs)
		if pm, ok := m.modal.(*promptModal); ok {
			pm.docID = doc.ID
			pm.thenClose = thenClose
			pm.thenQuit = thenQuit
		}
		return nil
	}
	m.loading["save"] = true
	return m.saveDocCmd(doc.ID, doc.Path, doc.Content, thenClose, thenQuit)
}

func (m *model) saveDocCmd(id int, path, content string, thenClose, thenQuit bool) tea.Cmd {
	files := m.app.Files
	return func() tea.Msg {
		err := files.WriteFile(path, []byte(content))
		return savedMsg{docID: id, path: path, err: err, thenClose: thenClose, thenQuit: thenQuit}
	}
}

// exportActiveCmd exports a detached snapshot of the active document, so the
// tab can be closed or edited while the PDF is being written.
func (m *model) exportActiveCmd() tea.Cmd {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return nil
	}
	req := export.Request{
		Title:   doc.Title(),
		Content: doc.Content,
	}
	if doc.Path != "" {
		req.BaseDir = filepath.Dir(doc.Path)
	}
	exporter := m.app.Exporter
	return func() tea.Msg {
		res, err := exporter.Export(req)
		if errors.Is(err, export.ErrCanceled) {
			return exportedMsg{canceled: true}
		}
		if err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: res.Path, pages: res.Pages}
	}
}

// copyHTMLCmd puts the sanitized, diagram-resolved HTML of the active
// document on the system clipboard.
func (m *model) copyHTMLCmd() tea.Cmd {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return nil
	}
	renderer := m.app.Renderer
	content := doc.Content
	return func() tea.Msg {
		res := renderer.Render(content)
		html := diagram.ApplyAll(res.HTML, res.Diagrams)
		if err := clipboard.WriteAll(html); err != nil {
			return toastMsg{text: "clipboard: " + err.Error()}
		}
		return toastMsg{text: "HTML copied"}
	}
}

// ingestImageCmd runs one file through the image pipeline and reports the
// markdown reference to insert.
func (m *model) ingestImageCmd(path string) tea.Cmd {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return nil
	}
	docPath := doc.Path
	opt := imaging.Options{MaxWidth: m.app.Settings.ImageMaxW, Quality: m.app.Settings.ImageQuality}
	pipeline := m.app.Images
	m.loading["image"] = true
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return imageMsg{err: err}
		}
		ref, err := pipeline.Process(imaging.Input{Name: filepath.Base(path), Data: data}, docPath, opt)
		if err != nil {
			return imageMsg{err: err}
		}
		return imageMsg{markdown: ref.Markdown}
	}
}
