package tests

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markpad/markpad/internal/cli"
)

// runCLI executes the CLI with the given args and returns stdout, stderr,
// and error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// isolate points all XDG paths into a temp dir so tests never touch the real
// config or state database.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	return tmp
}

func TestE2E_RenderProducesSanitizedHTML(t *testing.T) {
	tmp := isolate(t)
	doc := filepath.Join(tmp, "doc.md")
	md := "# Hi\n\n<script>alert(1)</script>\n\nSome **bold** text and a [link](https://example.com).\n"
	require.NoError(t, os.WriteFile(doc, []byte(md), 0o600))

	out, _, err := runCLI(t, "render", doc)
	require.NoError(t, err)

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "alert(1)")
}

func TestE2E_RenderResolvesDiagrams(t *testing.T) {
	tmp := isolate(t)
	doc := filepath.Join(tmp, "flow.md")
	md := "```mermaid\ngraph LR\nA[In] --> B[Out]\n```\n"
	require.NoError(t, os.WriteFile(doc, []byte(md), 0o600))

	out, _, err := runCLI(t, "render", doc)
	require.NoError(t, err)

	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "mermaid-diagram")
	assert.NotContains(t, out, "mermaid-pending")
}

func TestE2E_RenderBrokenDiagramShowsErrorPanel(t *testing.T) {
	tmp := isolate(t)
	doc := filepath.Join(tmp, "bad.md")
	md := "before\n\n```mermaid\nthis is not a graph\n```\n\nafter\n"
	require.NoError(t, os.WriteFile(doc, []byte(md), 0o600))

	out, _, err := runCLI(t, "render", doc)
	require.NoError(t, err)

	assert.Contains(t, out, "mermaid-error")
	assert.Contains(t, out, "<details>")
	// The rest of the document still renders.
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")
}

func TestE2E_ExportWritesPDF(t *testing.T) {
	tmp := isolate(t)
	doc := filepath.Join(tmp, "report.md")
	md := "# Report\n\nShort body.\n"
	require.NoError(t, os.WriteFile(doc, []byte(md), 0o600))

	dest := filepath.Join(tmp, "out", "report.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o700))
	out, _, err := runCLI(t, "export", doc, "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "1 page(s)")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should be a PDF")
}

func TestE2E_ExportMissingFileFails(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, "export", "/definitely/not/there.md")
	require.Error(t, err)
}

func TestE2E_ConfigGenerate(t *testing.T) {
	tmp := isolate(t)
	out := filepath.Join(tmp, "config", "markpad", "config.toml")

	stdout, _, err := runCLI(t, "config", "generate", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "[editor]"))
	assert.True(t, strings.Contains(content, "theme = \"dark\""))

	// Second run without --overwrite refuses.
	_, _, err = runCLI(t, "config", "generate", "-o", out)
	require.Error(t, err)
}

func TestE2E_ConfigCheck(t *testing.T) {
	isolate(t)
	stdout, _, err := runCLI(t, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration OK")
}
