// Package tui is the interactive editor shell: tabbed textarea on the left,
// rendered preview on the right, with proportional scroll sync between them.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markpad/markpad/internal/document"
	"github.com/markpad/markpad/internal/imaging"
	"github.com/markpad/markpad/internal/scrollsync"
	"github.com/markpad/markpad/internal/wire"
	"github.com/markpad/markpad/pkg/api"
)

// viewMode selects which panes are visible.
type viewMode int

const (
	viewSplit viewMode = iota
	viewEditorOnly
	viewPreviewOnly
)

type focusTarget int

const (
	focusEditor focusTarget = iota
	focusPreview
	focusSidebar
)

// Run starts the editor. Paths given on the command line open as tabs; with
// none, the previous session is restored, or a welcome tab is created.
func Run(ctx context.Context, app *wire.App, paths []string) error {
	m := newModel(ctx, app)
	m.openInitial(paths)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(*model); ok {
		fm.persistSession()
		fm.stopWatcher()
	}
	return nil
}

type model struct {
	ctx context.Context
	app *wire.App

	editor  textarea.Model
	preview viewport.Model
	sidebar *sidebar
	sync    *scrollsync.Synchronizer

	width, height int
	view          viewMode
	focus         focusTarget
	showSidebar   bool

	modal  modal
	toasts []toast

	// loading tracks in-flight background work by category.
	loading map[string]bool

	// previewFor is the document id the preview pane currently shows.
	previewFor int
	// renderSeq discards stale async preview results.
	renderSeq int
}

func newModel(ctx context.Context, app *wire.App) *model {
	ed := textarea.New()
	ed.Placeholder = "Start typing…"
	ed.ShowLineNumbers = app.Settings.LineNumbers
	ed.CharLimit = 0
	ed.Focus()

	vp := viewport.New(80, 24)
	vp.MouseWheelEnabled = true

	return &model{
		ctx:     ctx,
		app:     app,
		editor:  ed,
		preview: vp,
		sidebar: newSidebar(app),
		sync:    scrollsync.New(),
		view:    viewSplit,
		focus:   focusEditor,
		loading: map[string]bool{},
	}
}

// openInitial seeds the tab set from CLI args, the stored session, or a
// welcome tab, in that order.
func (m *model) openInitial(paths []string) {
	if len(paths) > 0 {
		for _, p := range paths {
			m.openPath(p)
		}
	} else if !m.restoreSession() {
		m.app.Tabs.Create("", document.Welcome, false)
	}
	if m.app.Tabs.Active() == nil {
		m.app.Tabs.Create("", "", false)
	}
	m.loadActiveIntoEditor()
}

// openPath opens a file in a tab, reusing an existing tab for the same path.
// Unreadable paths open as an empty buffer bound to the path, so "markpad
// new-file.md" works.
func (m *model) openPath(path string) {
	content, err := m.app.Files.ReadFile(path)
	if err != nil {
		if m.app.Tabs.Active() != nil {
			m.pushToast("new file: " + filepath.Base(path))
		}
		content = ""
	}
	m.app.Tabs.OpenInTab(path, content)
	_ = m.app.Store.AddRecent(m.ctx, path)
}

func (m *model) loadActiveIntoEditor() {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return
	}
	m.sync.Suspend(100 * time.Millisecond)
	m.editor.SetValue(doc.Content)
	for m.editor.Line() > 0 {
		m.editor.CursorUp()
	}
	m.editor.CursorStart()
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.refreshPreviewCmd()}
	if w := m.sidebar.watchCmd(); w != nil {
		cmds = append(cmds, w)
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.applyLayout()
		return m, m.refreshPreviewCmd()

	case previewMsg:
		if msg.seq != m.renderSeq {
			return m, nil
		}
		m.loading["preview"] = false
		m.previewFor = msg.docID
		m.preview.SetContent(msg.rendered)
		return m, nil

	case savedMsg:
		m.loading["save"] = false
		if msg.err != nil {
			m.pushToast("save failed: " + msg.err.Error())
			return m, m.expireToastCmd()
		}
		m.app.Tabs.MarkSaved(msg.docID, msg.path)
		_ = m.app.Store.AddRecent(m.ctx, msg.path)
		cmd := m.expireToastCmd()
		m.pushToast("saved " + filepath.Base(msg.path))
		if msg.thenClose {
			m.closeTab(msg.docID)
		}
		if msg.thenQuit && !m.app.Tabs.HasDirty() {
			return m, tea.Quit
		}
		return m, cmd

	case exportedMsg:
		m.loading["export"] = false
		if msg.canceled {
			return m, nil
		}
		if msg.err != nil {
			m.pushToast("export failed: " + msg.err.Error())
		} else {
			m.pushToast(fmt.Sprintf("exported %s (%d pages)", filepath.Base(msg.path), msg.pages))
		}
		return m, m.expireToastCmd()

	case imageMsg:
		m.loading["image"] = false
		if msg.err != nil {
			m.pushToast("image: " + msg.err.Error())
			return m, m.expireToastCmd()
		}
		m.insertAtCaret(msg.markdown)
		return m, tea.Batch(m.expireToastCmd(), m.contentChanged())

	case toastMsg:
		m.pushToast(msg.text)
		return m, m.expireToastCmd()

	case toastExpiredMsg:
		m.dropExpiredToasts()
		return m, nil

	case fsEventMsg:
		m.sidebar.refresh()
		return m, m.sidebar.watchCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.focus == focusPreview || m.view == viewPreviewOnly {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			m.propagateScroll(scrollsync.PanePreview)
			return m, cmd
		}
	}

	return m.updateFocused(msg)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		next, cmd, done := m.modal.update(m, msg)
		m.modal = next
		if done != nil {
			return done(m)
		}
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		if m.app.Tabs.HasDirty() {
			m.modal = newQuitModal(len(m.app.Tabs.DirtyTabs()))
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+n":
		m.app.Tabs.Create("", "", false)
		m.loadActiveIntoEditor()
		return m, m.refreshPreviewCmd()
	case "ctrl+s":
		if m.loading["save"] {
			return m, nil
		}
		return m, m.saveActive(false, false)
	case "ctrl+w":
		return m.requestClose()
	case "ctrl+p":
		m.modal = newQuickOpenModal(m)
		return m, nil
	case "ctrl+e":
		if m.loading["export"] {
			return m, nil
		}
		m.loading["export"] = true
		return m, m.exportActiveCmd()
	case "ctrl+y":
		return m, m.copyHTMLCmd()
	case "ctrl+g":
		m.modal = newPromptModal("Insert image from path:", promptInsertImage)
		return m, nil
	case "ctrl+b":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.sidebar.refresh()
			m.focus = focusSidebar
		} else if m.focus == focusSidebar {
			m.focus = focusEditor
		}
		m.applyLayout()
		return m, nil
	case "ctrl+v":
		// View cycle: split, editor only, preview only.
		m.view = (m.view + 1) % 3
		m.applyLayout()
		return m, nil
	case "tab":
		if m.focus == focusSidebar {
			break
		}
		if m.view == viewSplit {
			if m.focus == focusEditor {
				m.focus = focusPreview
				m.editor.Blur()
			} else {
				m.focus = focusEditor
				m.editor.Focus()
			}
			return m, nil
		}
	case "ctrl+right":
		m.switchRelative(1)
		return m, m.refreshPreviewCmd()
	case "ctrl+left":
		m.switchRelative(-1)
		return m, m.refreshPreviewCmd()
	}

	if m.focus == focusSidebar {
		return m.sidebar.handleKey(m, msg)
	}
	return m.updateFocused(msg)
}

// updateFocused routes input to the focused pane and keeps derived state
// (document content, preview, scroll position) in step.
func (m *model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusPreview && m.view != viewEditorOnly {
		m.preview, cmd = m.preview.Update(msg)
		m.propagateScroll(scrollsync.PanePreview)
		return m, cmd
	}

	before := m.editor.Value()
	m.editor, cmd = m.editor.Update(msg)
	var cmds []tea.Cmd
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	if after := m.editor.Value(); after != before {
		if c := m.contentChanged(); c != nil {
			cmds = append(cmds, c)
		}
	}
	m.propagateScroll(scrollsync.PaneEditor)
	return m, tea.Batch(cmds...)
}

// contentChanged records the edit on the active document and schedules a
// preview refresh.
func (m *model) contentChanged() tea.Cmd {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return nil
	}
	m.app.Tabs.UpdateContent(doc.ID, m.editor.Value())
	return m.refreshPreviewCmd()
}

func (m *model) switchRelative(delta int) {
	tabs := m.app.Tabs.Tabs()
	active := m.app.Tabs.Active()
	if len(tabs) < 2 || active == nil {
		return
	}
	for i, d := range tabs {
		if d.ID == active.ID {
			next := (i + delta + len(tabs)) % len(tabs)
			m.app.Tabs.SwitchTo(tabs[next].ID)
			m.loadActiveIntoEditor()
			return
		}
	}
}

// requestClose closes the active tab, asking about unsaved changes first.
func (m *model) requestClose() (tea.Model, tea.Cmd) {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return m, nil
	}
	if doc.Dirty() {
		m.modal = newConfirmCloseModal(doc.ID, doc.Title())
		return m, nil
	}
	m.closeTab(doc.ID)
	return m, m.refreshPreviewCmd()
}

func (m *model) closeTab(id int) {
	m.app.Tabs.Close(id)
	if m.app.Tabs.Active() == nil {
		m.app.Tabs.Create("", "", false)
	}
	m.loadActiveIntoEditor()
}

func (m *model) insertAtCaret(ref string) {
	doc := m.app.Tabs.Active()
	if doc == nil {
		return
	}
	content, _ := imaging.InsertAt(m.editor.Value(), m.caretOffset(), ref)
	m.editor.SetValue(content)
	m.app.Tabs.UpdateContent(doc.ID, content)
}

// caretOffset converts the textarea's row/column cursor to a byte offset.
// The column is a rune count, so it is mapped through the current line's
// runes; the result always lands on a rune boundary.
func (m *model) caretOffset() int {
	lines := strings.Split(m.editor.Value(), "\n")
	row := m.editor.Line()
	off := 0
	for i := 0; i < row && i < len(lines); i++ {
		off += len(lines[i]) + 1
	}
	if row >= len(lines) {
		return off
	}
	runes := []rune(lines[row])
	col := m.editor.LineInfo().ColumnOffset
	if col > len(runes) {
		col = len(runes)
	}
	return off + len(string(runes[:col]))
}

// propagateScroll mirrors one pane's position onto the other.
func (m *model) propagateScroll(source scrollsync.Pane) {
	if m.view != viewSplit {
		return
	}
	edM := scrollsync.Metrics{
		ScrollTop:    float64(m.editor.Line()),
		ScrollHeight: float64(m.editor.LineCount()),
		ClientHeight: float64(m.editor.Height()),
	}
	pvM := scrollsync.Metrics{
		ScrollTop:    float64(m.preview.YOffset),
		ScrollHeight: float64(m.preview.TotalLineCount()),
		ClientHeight: float64(m.preview.Height),
	}
	switch source {
	case scrollsync.PaneEditor:
		if off, ok := m.sync.Propagate(scrollsync.PaneEditor, edM, pvM); ok {
			m.preview.SetYOffset(int(off))
		}
	case scrollsync.PanePreview:
		if off, ok := m.sync.Propagate(scrollsync.PanePreview, pvM, edM); ok {
			target := int(off)
			for m.editor.Line() < target {
				m.editor.CursorDown()
				if m.editor.Line() >= m.editor.LineCount()-1 {
					break
				}
			}
			for m.editor.Line() > target {
				m.editor.CursorUp()
				if m.editor.Line() <= 0 {
					break
				}
			}
		}
	}
}

func (m *model) persistSession() {
	tabs := m.app.Tabs.Tabs()
	sess := api.Session{}
	active := m.app.Tabs.Active()
	for i, d := range tabs {
		st := api.SessionTab{Path: d.Path}
		if d.Dirty() {
			st.Content = d.Content
			st.Dirty = true
		}
		sess.Tabs = append(sess.Tabs, st)
		if active != nil && d.ID == active.ID {
			sess.ActiveTab = i
		}
	}
	_ = m.app.Store.SaveSession(m.ctx, sess)
}

// restoreSession rebuilds tabs from the stored session. Dirty tabs come back
// with their unsaved content and stay marked dirty.
func (m *model) restoreSession() bool {
	sess, err := m.app.Store.LoadSession(m.ctx)
	if err != nil || len(sess.Tabs) == 0 {
		return false
	}
	var ids []int
	for _, st := range sess.Tabs {
		content := st.Content
		if !st.Dirty && st.Path != "" {
			if c, err := m.app.Files.ReadFile(st.Path); err == nil {
				content = c
			}
		}
		if st.Path == "" && content == "" && !st.Dirty {
			continue
		}
		d := m.app.Tabs.Create(st.Path, content, st.Dirty)
		ids = append(ids, d.ID)
	}
	if len(ids) == 0 {
		return false
	}
	if sess.ActiveTab >= 0 && sess.ActiveTab < len(ids) {
		m.app.Tabs.SwitchTo(ids[sess.ActiveTab])
	}
	return true
}

func (m *model) stopWatcher() {
	m.sidebar.stop()
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	contentH := m.height - 2 // tab bar + status line
	if contentH < 3 {
		contentH = 3
	}
	avail := m.width
	if m.showSidebar {
		avail -= sidebarWidth
		if avail < 20 {
			avail = 20
		}
	}

	switch m.view {
	case viewSplit:
		ratio := m.app.Settings.SplitRatio
		edW := int(float64(avail) * ratio)
		if edW < 10 {
			edW = 10
		}
		pvW := avail - edW - 1
		if pvW < 10 {
			pvW = 10
		}
		m.editor.SetWidth(edW)
		m.editor.SetHeight(contentH)
		m.preview.Width = pvW
		m.preview.Height = contentH
	case viewEditorOnly:
		m.editor.SetWidth(avail)
		m.editor.SetHeight(contentH)
	case viewPreviewOnly:
		m.preview.Width = avail
		m.preview.Height = contentH
	}
}

func (m *model) View() string {
	if m.width <= 0 {
		return "loading…"
	}
	var panes []string
	if m.showSidebar {
		panes = append(panes, m.sidebar.view(m.height-2, m.focus == focusSidebar))
	}
	switch m.view {
	case viewSplit:
		panes = append(panes, m.editor.View(), dividerStyle.Render(strings.Repeat("│\n", max(m.editor.Height()-1, 1))+"│"), m.preview.View())
	case viewEditorOnly:
		panes = append(panes, m.editor.View())
	case viewPreviewOnly:
		panes = append(panes, m.preview.View())
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	if m.modal != nil {
		return m.renderOverlay(m.modal.view())
	}
	return m.renderTabBar() + "\n" + body + "\n" + m.renderStatus()
}

var (
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	dividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (m *model) renderTabBar() string {
	active := m.app.Tabs.Active()
	var parts []string
	for _, d := range m.app.Tabs.Tabs() {
		label := tabLabel(d)
		if active != nil && d.ID == active.ID {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// tabLabel is the tab title plus a dirty marker.
func tabLabel(d *document.Document) string {
	if d.Dirty() {
		return d.Title() + " ●"
	}
	return d.Title()
}

func (m *model) renderStatus() string {
	left := "^S save  ^W close  ^N new  ^P open  ^E pdf  ^Y copy html  ^B files  ^V view  ^Q quit"
	var right []string
	for _, cat := range []string{"preview", "save", "export", "image"} {
		if m.loading[cat] {
			right = append(right, cat+"…")
		}
	}
	for _, t := range m.toasts {
		right = append(right, t.text)
	}
	r := strings.Join(right, " • ")
	space := m.width - lipgloss.Width(left) - lipgloss.Width(r)
	if space < 1 {
		space = 1
	}
	return statusStyle.Render(left + strings.Repeat(" ", space) + r)
}

// renderOverlay centers a modal box in the terminal, replacing the base view
// while the modal is up.
func (m *model) renderOverlay(fg string) string {
	w, h := m.width, m.height
	if w <= 0 {
		w, h = 80, 24
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, fg)
}
