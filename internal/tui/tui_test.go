package tui

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markpad/markpad/internal/bridge"
	"github.com/markpad/markpad/internal/config"
	"github.com/markpad/markpad/internal/document"
	"github.com/markpad/markpad/internal/render"
	"github.com/markpad/markpad/internal/state"
	"github.com/markpad/markpad/internal/wire"
)

// fakeFiles is an in-memory FileBridge.
type fakeFiles struct {
	files map[string]string
}

func newFakeFiles() *fakeFiles { return &fakeFiles{files: map[string]string{}} }

func (f *fakeFiles) ReadFile(path string) (string, error) {
	c, ok := f.files[path]
	if !ok {
		return "", os.ErrNotExist
	}
	return c, nil
}

func (f *fakeFiles) WriteFile(path string, data []byte) error {
	f.files[path] = string(data)
	return nil
}

func (f *fakeFiles) ReadDirectory(path string) ([]bridge.FileInfo, error) {
	return nil, nil
}

func testApp(files *fakeFiles) *wire.App {
	return &wire.App{
		Settings: config.Settings{SplitRatio: 0.5, Theme: "dark", ImageMaxW: 800, ImageQuality: 90},
		Log:      log.New(os.Stderr, "", 0),
		Files:    files,
		Store:    state.NewMemStore(),
		Renderer: render.New(),
		Tabs:     document.NewManager(),
	}
}

func testModel(files *fakeFiles) *model {
	m := newModel(context.Background(), testApp(files))
	m.width, m.height = 100, 30
	m.applyLayout()
	return m
}

func TestTabLabelMarksDirty(t *testing.T) {
	tabs := document.NewManager()
	d := tabs.Create("/notes/a.md", "one", false)
	if got := tabLabel(d); got != "a.md" {
		t.Fatalf("clean label = %q", got)
	}
	tabs.UpdateContent(d.ID, "two")
	if got := tabLabel(d); got != "a.md ●" {
		t.Fatalf("dirty label = %q", got)
	}
}

func TestGlamourStyle(t *testing.T) {
	if glamourStyle("light") != "light" || glamourStyle("solarized-light") != "light" {
		t.Fatal("light themes should map to light")
	}
	if glamourStyle("dark-blue") != "dark" || glamourStyle("monokai") != "dark" {
		t.Fatal("dark themes should map to dark")
	}
}

func TestAnnotateDiagrams(t *testing.T) {
	src := "# Doc\n\n```mermaid\ngraph TD\nA[Start] --> B[End]\n```\n"
	out := annotateDiagrams(src)
	if !strings.Contains(out, "> Diagram: 2 nodes, 1 edges") {
		t.Fatalf("missing caption in:\n%s", out)
	}
	if !strings.Contains(out, "```mermaid") {
		t.Fatal("fence should remain for the code view")
	}
	if strings.Index(out, "> Diagram:") > strings.Index(out, "```mermaid") {
		t.Fatal("caption should precede the fence")
	}

	bad := "```mermaid\nnot a graph\n```\n"
	out = annotateDiagrams(bad)
	if !strings.Contains(out, "> Diagram error:") {
		t.Fatalf("missing error caption in:\n%s", out)
	}
}

func TestOpenPathMissingFileOpensEmptyBuffer(t *testing.T) {
	m := testModel(newFakeFiles())
	m.openPath("/notes/fresh.md")
	doc := m.app.Tabs.Active()
	if doc == nil || doc.Path != "/notes/fresh.md" {
		t.Fatalf("active = %+v", doc)
	}
	if doc.Content != "" {
		t.Fatal("missing file should open empty")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	files := newFakeFiles()
	files.files["/notes/saved.md"] = "# saved\n"

	m := testModel(files)
	m.openPath("/notes/saved.md")
	draft := m.app.Tabs.Create("", "unsaved draft", true)
	m.app.Tabs.SwitchTo(draft.ID)
	m.persistSession()

	// A second model over the same store stands in for the next launch.
	m2 := testModel(files)
	m2.app.Store = m.app.Store
	if !m2.restoreSession() {
		t.Fatal("restore reported no session")
	}
	tabs := m2.app.Tabs.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("restored %d tabs, want 2", len(tabs))
	}
	if tabs[0].Path != "/notes/saved.md" || tabs[0].Content != "# saved\n" {
		t.Fatalf("file tab = %+v", tabs[0])
	}
	if tabs[1].Content != "unsaved draft" || !tabs[1].Dirty() {
		t.Fatalf("draft tab lost its unsaved state: %+v", tabs[1])
	}
	active := m2.app.Tabs.Active()
	if active == nil || active.ID != tabs[1].ID {
		t.Fatal("active tab not restored")
	}
}

// Closing a dirty tab via Save must write the file before the tab goes away.
func TestConfirmCloseSavesBeforeRemoval(t *testing.T) {
	files := newFakeFiles()
	files.files["/notes/a.md"] = "original"

	m := testModel(files)
	m.openPath("/notes/a.md")
	doc := m.app.Tabs.Active()
	m.app.Tabs.UpdateContent(doc.ID, "edited")

	_, _ = m.requestClose()
	if _, ok := m.modal.(*confirmCloseModal); !ok {
		t.Fatalf("expected confirm modal, got %T", m.modal)
	}

	// Choice 0 is Save.
	_, cmd := mustHandleKey(t, m, "enter")
	if cmd == nil {
		t.Fatal("save choice should produce a command")
	}
	msg := cmd()
	saved, ok := msg.(savedMsg)
	if !ok {
		t.Fatalf("got %T", msg)
	}
	if files.files["/notes/a.md"] != "edited" {
		t.Fatal("file not written before close")
	}

	_, _ = m.Update(saved)
	for _, d := range m.app.Tabs.Tabs() {
		if d.Path == "/notes/a.md" {
			t.Fatal("tab should be closed after save")
		}
	}
}

func TestConfirmCloseCancelKeepsTab(t *testing.T) {
	files := newFakeFiles()
	files.files["/notes/a.md"] = "original"

	m := testModel(files)
	m.openPath("/notes/a.md")
	doc := m.app.Tabs.Active()
	m.app.Tabs.UpdateContent(doc.ID, "edited")

	_, _ = m.requestClose()
	// Move to Cancel and confirm.
	_, _ = mustHandleKey(t, m, "left")
	_, _ = mustHandleKey(t, m, "enter")

	if m.modal != nil {
		t.Fatal("modal should be dismissed")
	}
	if m.app.Tabs.Get(doc.ID) == nil {
		t.Fatal("cancel must keep the tab")
	}
	if files.files["/notes/a.md"] != "original" {
		t.Fatal("cancel must not write")
	}
}

func TestQuitModalOpensWhenDirty(t *testing.T) {
	m := testModel(newFakeFiles())
	m.app.Tabs.Create("", "draft", true)

	_, cmd := mustHandleKey(t, m, "ctrl+q")
	if cmd != nil {
		t.Fatal("dirty quit must not exit immediately")
	}
	if _, ok := m.modal.(*quitModal); !ok {
		t.Fatalf("expected quit modal, got %T", m.modal)
	}
}

func TestCaretOffset(t *testing.T) {
	m := testModel(newFakeFiles())
	m.app.Tabs.Create("", "", false)
	m.editor.SetValue("ab\ncd")
	// Cursor ends at the last position after SetValue.
	if got := m.caretOffset(); got != 5 {
		t.Fatalf("caret = %d, want 5", got)
	}

	// Multibyte runes: the offset is in bytes and stays on a rune boundary.
	m.editor.SetValue("héllo\nwörld")
	want := len("héllo\nwörld")
	if got := m.caretOffset(); got != want {
		t.Fatalf("caret = %d, want %d", got, want)
	}
}

// mustHandleKey routes a key press through the model's Update.
func mustHandleKey(t *testing.T, m *model, key string) (tea.Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+q":
		msg = tea.KeyMsg{Type: tea.KeyCtrlQ}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	return m.handleKey(msg)
}
