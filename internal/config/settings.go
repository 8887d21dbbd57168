package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the typed view of the configuration the editor consumes.
type Settings struct {
	Theme        string
	FontFamily   string
	FontSize     int
	FontWeight   string
	LineHeight   float64
	WordWrap     bool
	LineNumbers  bool
	Minimap      bool
	BracketPairs bool
	Folding      bool
	AutoSave     bool
	SplitRatio   float64
	ImageMaxW    int
	ImageQuality int
}

// Themes lists the recognized theme names.
var Themes = []string{"dark", "light", "dark-blue", "monokai", "solarized-light"}

// FromViper extracts a Settings snapshot, substituting defaults for
// unrecognized values so a hand-edited config file cannot wedge startup.
func FromViper(v *viper.Viper) Settings {
	s := Settings{
		Theme:        v.GetString("theme"),
		FontFamily:   v.GetString("font.family"),
		FontSize:     v.GetInt("font.size"),
		FontWeight:   v.GetString("font.weight"),
		LineHeight:   v.GetFloat64("font.line_height"),
		WordWrap:     v.GetBool("editor.word_wrap"),
		LineNumbers:  v.GetBool("editor.line_numbers"),
		Minimap:      v.GetBool("editor.minimap"),
		BracketPairs: v.GetBool("editor.bracket_pairs"),
		Folding:      v.GetBool("editor.folding"),
		AutoSave:     v.GetBool("editor.autosave"),
		SplitRatio:   v.GetFloat64("view.split_ratio"),
		ImageMaxW:    v.GetInt("image.max_width"),
		ImageQuality: v.GetInt("image.quality"),
	}
	if !knownTheme(s.Theme) {
		s.Theme = "dark"
	}
	if s.FontSize <= 0 {
		s.FontSize = 14
	}
	if s.LineHeight <= 0 {
		s.LineHeight = 1.6
	}
	if s.SplitRatio < 0.1 || s.SplitRatio > 0.9 {
		s.SplitRatio = 0.5
	}
	if s.ImageMaxW <= 0 {
		s.ImageMaxW = 800
	}
	if s.ImageQuality < 1 || s.ImageQuality > 100 {
		s.ImageQuality = 90
	}
	return s
}

// Update sets one key and persists the whole settings object.
func Update(v *viper.Viper, key string, value any) error {
	v.Set(key, value)
	return Save(v)
}

func knownTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// CheckConfigValidity reports every out-of-range value at once so the user
// can fix a config file in one pass.
func CheckConfigValidity(v *viper.Viper) error {
	var problems []string
	if v.GetString("data_dir") == "" {
		problems = append(problems, "data_dir is required")
	}
	if t := v.GetString("theme"); t != "" && !knownTheme(t) {
		problems = append(problems, fmt.Sprintf("unknown theme %q (known: %s)", t, strings.Join(Themes, ", ")))
	}
	if n := v.GetInt("font.size"); n < 6 || n > 72 {
		problems = append(problems, "font.size must be between 6 and 72")
	}
	if r := v.GetFloat64("view.split_ratio"); r < 0.1 || r > 0.9 {
		problems = append(problems, "view.split_ratio must be between 0.1 and 0.9")
	}
	if w := v.GetInt("image.max_width"); w <= 0 {
		problems = append(problems, "image.max_width must be greater than 0")
	}
	if q := v.GetInt("image.quality"); q < 1 || q > 100 {
		problems = append(problems, "image.quality must be between 1 and 100")
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
