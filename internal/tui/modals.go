package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// modal is a foreground dialog that captures all key input while open.
// update returns the (possibly nil) replacement modal, an optional command,
// and an optional action to run against the model once the modal resolves.
type modal interface {
	update(m *model, msg tea.KeyMsg) (modal, tea.Cmd, func(*model) (tea.Model, tea.Cmd))
	view() string
}

var (
	modalBox = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
	choiceActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	choiceIdle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderChoices(choices []string, selected int) string {
	var parts []string
	for i, c := range choices {
		if i == selected {
			parts = append(parts, choiceActive.Render(c))
		} else {
			parts = append(parts, choiceIdle.Render(c))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// confirmCloseModal guards closing a tab with unsaved changes.
type confirmCloseModal struct {
	docID  int
	title  string
	choice int
}

var closeChoices = []string{"Save", "Don't Save", "Cancel"}

func newConfirmCloseModal(docID int, title string) *confirmCloseModal {
	return &confirmCloseModal{docID: docID, title: title}
}

func (c *confirmCloseModal) update(m *model, msg tea.KeyMsg) (modal, tea.Cmd, func(*model) (tea.Model, tea.Cmd)) {
	switch msg.String() {
	case "left", "shift+tab":
		c.choice = (c.choice + len(closeChoices) - 1) % len(closeChoices)
	case "right", "tab":
		c.choice = (c.choice + 1) % len(closeChoices)
	case "esc":
		return nil, nil, nil
	case "enter":
		switch c.choice {
		case 0: // save, then close
			doc := m.app.Tabs.Get(c.docID)
			if doc == nil {
				return nil, nil, nil
			}
			if doc.Path == "" {
				pm := newPromptModal("Save as:", promptSaveAs)
				pm.docID = c.docID
				pm.thenClose = true
				return pm, nil, nil
			}
			id, path, content := doc.ID, doc.Path, doc.Content
			return nil, nil, func(m *model) (tea.Model, tea.Cmd) {
				m.loading["save"] = true
				return m, m.saveDocCmd(id, path, content, true, false)
			}
		case 1: // discard
			id := c.docID
			return nil, nil, func(m *model) (tea.Model, tea.Cmd) {
				m.closeTab(id)
				return m, m.refreshPreviewCmd()
			}
		default:
			return nil, nil, nil
		}
	}
	return c, nil, nil
}

func (c *confirmCloseModal) view() string {
	body := fmt.Sprintf("%q has unsaved changes.\n\n%s", c.title, renderChoices(closeChoices, c.choice))
	return modalBox.Render(body)
}

// quitModal guards quitting with any dirty tab open.
type quitModal struct {
	dirty  int
	choice int
}

var quitChoices = []string{"Save All", "Quit Anyway", "Cancel"}

func newQuitModal(dirty int) *quitModal {
	return &quitModal{dirty: dirty}
}

func (q *quitModal) update(m *model, msg tea.KeyMsg) (modal, tea.Cmd, func(*model) (tea.Model, tea.Cmd)) {
	switch msg.String() {
	case "left", "shift+tab":
		q.choice = (q.choice + len(quitChoices) - 1) % len(quitChoices)
	case "right", "tab":
		q.choice = (q.choice + 1) % len(quitChoices)
	case "esc":
		return nil, nil, nil
	case "enter":
		switch q.choice {
		case 0:
			return nil, nil, func(m *model) (tea.Model, tea.Cmd) { return m, m.saveAllAndQuit() }
		case 1:
			return nil, nil, func(m *model) (tea.Model, tea.Cmd) { return m, tea.Quit }
		default:
			return nil, nil, nil
		}
	}
	return q, nil, nil
}

func (q *quitModal) view() string {
	noun := "tab"
	if q.dirty != 1 {
		noun = "tabs"
	}
	body := fmt.Sprintf("%d %s with unsaved changes.\n\n%s", q.dirty, noun, renderChoices(quitChoices, q.choice))
	return modalBox.Render(body)
}

// saveAllAndQuit saves every dirty tab that has a path; the last save carries
// the quit flag. Untitled dirty tabs need an explicit path first.
func (m *model) saveAllAndQuit() tea.Cmd {
	dirty := m.app.Tabs.DirtyTabs()
	var cmds []tea.Cmd
	untitled := 0
	for _, d := range dirty {
		if d.Path == "" {
			untitled++
			continue
		}
		cmds = append(cmds, m.saveDocCmd(d.ID, d.Path, d.Content, false, true))
	}
	if untitled > 0 {
		m.pushToast(fmt.Sprintf("%d untitled tab(s): save them with a name first", untitled))
		cmds = append(cmds, m.expireToastCmd())
	}
	if len(cmds) == 0 {
		return nil
	}
	m.loading["save"] = true
	return tea.Batch(cmds...)
}

// promptKind selects what a submitted prompt value means.
type promptKind int

const (
	promptSaveAs promptKind = iota
	promptInsertImage
)

// promptModal is a one-line text input dialog.
type promptModal struct {
	label string
	kind  promptKind
	input textinput.Model

	docID     int
	thenClose bool
	thenQuit  bool
}

func newPromptModal(label string, kind promptKind) *promptModal {
	in := textinput.New()
	in.Placeholder = "path"
	in.CharLimit = 512
	in.Width = 48
	in.Focus()
	return &promptModal{label: label, kind: kind, input: in}
}

func (p *promptModal) update(m *model, msg tea.KeyMsg) (modal, tea.Cmd, func(*model) (tea.Model, tea.Cmd)) {
	switch msg.String() {
	case "esc":
		return nil, nil, nil
	case "enter":
		value := strings.TrimSpace(p.input.Value())
		if value == "" {
			return nil, nil, nil
		}
		switch p.kind {
		case promptSaveAs:
			id, thenClose, thenQuit := p.docID, p.thenClose, p.thenQuit
			return nil, nil, func(m *model) (tea.Model, tea.Cmd) {
				doc := m.app.Tabs.Get(id)
				if doc == nil {
					return m, nil
				}
				m.loading["save"] = true
				return m, m.saveDocCmd(id, value, doc.Content, thenClose, thenQuit)
			}
		case promptInsertImage:
			return nil, nil, func(m *model) (tea.Model, tea.Cmd) {
				return m, m.ingestImageCmd(value)
			}
		}
		return nil, nil, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, nil
}

func (p *promptModal) view() string {
	return modalBox.Render(p.label + "\n\n" + p.input.View())
}

// quickOpenModal fuzzy-filters recent files and the current directory tree.
type quickOpenModal struct {
	input    textinput.Model
	items    []string
	filtered []string
	cursor   int
}

func newQuickOpenModal(m *model) *quickOpenModal {
	in := textinput.New()
	in.Placeholder = "file name…"
	in.CharLimit = 256
	in.Width = 48
	in.Focus()

	seen := map[string]bool{}
	var items []string
	if recents, err := m.app.Store.Recents(m.ctx); err == nil {
		for _, r := range recents {
			if !seen[r.Path] {
				seen[r.Path] = true
				items = append(items, r.Path)
			}
		}
	}
	for _, p := range m.sidebar.markdownFiles() {
		if !seen[p] {
			seen[p] = true
			items = append(items, p)
		}
	}
	q := &quickOpenModal{input: in, items: items}
	q.filter()
	return q
}

func (q *quickOpenModal) filter() {
	query := strings.TrimSpace(q.input.Value())
	if query == "" {
		q.filtered = q.items
	} else {
		matches := fuzzy.Find(query, q.items)
		q.filtered = q.filtered[:0]
		for _, mt := range matches {
			q.filtered = append(q.filtered, mt.Str)
		}
	}
	if q.cursor >= len(q.filtered) {
		q.cursor = max(len(q.filtered)-1, 0)
	}
}

func (q *quickOpenModal) update(m *model, msg tea.KeyMsg) (modal, tea.Cmd, func(*model) (tea.Model, tea.Cmd)) {
	switch msg.String() {
	case "esc":
		return nil, nil, nil
	case "up":
		if q.cursor > 0 {
			q.cursor--
		}
		return q, nil, nil
	case "down":
		if q.cursor < len(q.filtered)-1 {
			q.cursor++
		}
		return q, nil, nil
	case "enter":
		if q.cursor >= len(q.filtered) {
			return nil, nil, nil
		}
		path := q.filtered[q.cursor]
		return nil, nil, func(m *model) (tea.Model, tea.Cmd) {
			m.openPath(path)
			m.loadActiveIntoEditor()
			return m, m.refreshPreviewCmd()
		}
	}
	var cmd tea.Cmd
	q.input, cmd = q.input.Update(msg)
	q.filter()
	return q, cmd, nil
}

func (q *quickOpenModal) view() string {
	var b strings.Builder
	b.WriteString(q.input.View())
	b.WriteString("\n\n")
	limit := 8
	if len(q.filtered) < limit {
		limit = len(q.filtered)
	}
	if limit == 0 {
		b.WriteString("  (no matches)")
	}
	for i := 0; i < limit; i++ {
		name := filepath.Base(q.filtered[i])
		line := fmt.Sprintf("%s  %s", name, q.filtered[i])
		if i == q.cursor {
			b.WriteString(choiceActive.Render(line))
		} else {
			b.WriteString(choiceIdle.Render(line))
		}
		b.WriteString("\n")
	}
	return modalBox.Render(b.String())
}
