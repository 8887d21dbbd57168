package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LocalFiles implements FileBridge directly over the OS filesystem.
type LocalFiles struct{}

func (LocalFiles) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// WriteFile creates missing parent directories, matching the behavior users
// expect from a save-as into a fresh folder.
func (LocalFiles) WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadDirectory lists entries sorted directories-first, then by name.
func (LocalFiles) ReadDirectory(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, FileInfo{
			Name:  e.Name(),
			Path:  filepath.Join(path, e.Name()),
			IsDir: e.IsDir(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// NoDialogs is the dialog bridge used when no native prompt surface exists
// (headless export, tests). Every prompt reports canceled.
type NoDialogs struct{}

func (NoDialogs) ShowOpenDialog(OpenDialogOptions) (DialogResult, error) {
	return DialogResult{Canceled: true}, nil
}

func (NoDialogs) ShowSaveDialog(SaveDialogOptions) (DialogResult, error) {
	return DialogResult{Canceled: true}, nil
}

func (NoDialogs) ShowErrorDialog(title, body string) {}
