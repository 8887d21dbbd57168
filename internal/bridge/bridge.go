// Package bridge defines the capability interfaces the editor core uses to
// reach the host platform. They are constructor-injected everywhere so tests
// can substitute fakes instead of touching the real filesystem.
package bridge

// FileInfo describes one entry of a directory listing.
type FileInfo struct {
	Name  string
	Path  string
	IsDir bool
}

// FileBridge is the file read/write/list surface.
type FileBridge interface {
	ReadFile(path string) (string, error)
	WriteFile(path string, data []byte) error
	ReadDirectory(path string) ([]FileInfo, error)
}

// FileFilter narrows a dialog to a named set of extensions.
type FileFilter struct {
	Name       string
	Extensions []string
}

// OpenDialogOptions configures an open-file or open-folder prompt.
type OpenDialogOptions struct {
	Filters     []FileFilter
	Directories bool
}

// SaveDialogOptions configures a save-destination prompt.
type SaveDialogOptions struct {
	DefaultPath string
	Filters     []FileFilter
}

// DialogResult carries the user's choice. Canceled means no path was picked;
// that is not an error.
type DialogResult struct {
	Canceled bool
	Paths    []string
}

// DialogBridge is the native prompt surface.
type DialogBridge interface {
	ShowOpenDialog(opts OpenDialogOptions) (DialogResult, error)
	ShowSaveDialog(opts SaveDialogOptions) (DialogResult, error)
	ShowErrorDialog(title, body string)
}
