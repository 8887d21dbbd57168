package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
// This centralizes default values and descriptions in one place.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "markpad"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "markpad"))
		}
		v.AddConfigPath(".")
	}

	// Apply centralized defaults (lowest precedence)
	applyDefaults(v)

	// Read config file if present (overrides defaults)
	_ = v.ReadInConfig()

	// Environment variables: MARKPAD_* (highest among these sources)
	v.SetEnvPrefix("markpad")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	mergeLegacyTheme(v)

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	return nil
}

// mergeLegacyTheme folds the old single-value theme file into the
// consolidated settings. Early releases stored the theme name on its own in
// <config dir>/theme; it is honored only when the config file carries no
// theme of its own, and is never written back.
func mergeLegacyTheme(v *viper.Viper) {
	if v.InConfig("theme") {
		return
	}
	path := filepath.Join(filepath.Dir(DefaultConfigPath()), "theme")
	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	name := strings.TrimSpace(string(b))
	if name != "" {
		v.Set("theme", name)
	}
}

// Save persists the current settings to the standard config path.
// Called after every settings mutation.
func Save(v *viper.Viper) error {
	path := DefaultConfigPath()
	if f := v.ConfigFileUsed(); f != "" {
		path = f
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/markpad or ~/.local/share/markpad
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "markpad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "markpad")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "markpad", "config.toml")
}

// DefaultStatePath builds the default sqlite state DB path from data_dir rules.
func DefaultStatePath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return filepath.Join(dir, "markpad.db")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; recent files and session live in data_dir/markpad.db"},
		{Key: "theme", Default: "dark", Comment: "UI theme name: dark, light, dark-blue, monokai, solarized-light"},

		{Key: "font.family", Default: "JetBrains Mono", Comment: "Editor font family (advisory; the terminal decides what it can show)"},
		{Key: "font.size", Default: 14, Comment: "Editor font size in points"},
		{Key: "font.weight", Default: "normal", Comment: "Editor font weight: normal or bold"},
		{Key: "font.line_height", Default: 1.6, Comment: "Editor line height multiplier"},

		{Key: "editor.word_wrap", Default: true, Comment: "Soft-wrap long lines in the editor pane"},
		{Key: "editor.line_numbers", Default: true, Comment: "Show line numbers in the editor pane"},
		{Key: "editor.minimap", Default: false, Comment: "Show the document minimap"},
		{Key: "editor.bracket_pairs", Default: true, Comment: "Highlight matching bracket pairs"},
		{Key: "editor.folding", Default: false, Comment: "Enable section folding"},
		{Key: "editor.autosave", Default: false, Comment: "Save the active document automatically after edits settle"},

		{Key: "view.split_ratio", Default: 0.5, Comment: "Editor share of the split view, 0.1-0.9"},

		{Key: "image.max_width", Default: 800, Comment: "Pasted/dropped images wider than this are downscaled (pixels)"},
		{Key: "image.quality", Default: 90, Comment: "JPEG re-encode quality for ingested images, 1-100"},
	}
}
