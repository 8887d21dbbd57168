package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadAppliesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "config.toml"))
	if err := Load(context.Background(), v); err != nil {
		t.Fatalf("load: %v", err)
	}
	s := FromViper(v)
	if s.Theme != "dark" {
		t.Fatalf("default theme = %q, want dark", s.Theme)
	}
	if s.ImageMaxW != 800 || s.ImageQuality != 90 {
		t.Fatalf("image defaults = %d/%d, want 800/90", s.ImageMaxW, s.ImageQuality)
	}
	if !s.WordWrap || !s.LineNumbers || s.Minimap {
		t.Fatalf("editor flag defaults wrong: %+v", s)
	}
}

func TestFromViperRepairsInvalidValues(t *testing.T) {
	v := viper.New()
	v.Set("theme", "no-such-theme")
	v.Set("font.size", -3)
	v.Set("view.split_ratio", 4.0)
	v.Set("image.quality", 400)
	s := FromViper(v)
	if s.Theme != "dark" || s.FontSize != 14 || s.SplitRatio != 0.5 || s.ImageQuality != 90 {
		t.Fatalf("invalid values not repaired: %+v", s)
	}
}

func TestLegacyThemeMergedOnlyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "markpad"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "markpad", "theme"), []byte("monokai\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := Load(context.Background(), v); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := v.GetString("theme"); got != "monokai" {
		t.Fatalf("legacy theme not merged, got %q", got)
	}

	// A theme in the consolidated config wins over the legacy key.
	if err := os.WriteFile(filepath.Join(dir, "markpad", "config.toml"), []byte("theme = \"light\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v2 := viper.New()
	if err := Load(context.Background(), v2); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := v2.GetString("theme"); got != "light" {
		t.Fatalf("consolidated theme should win, got %q", got)
	}
}

func TestSaveDoesNotWriteLegacyKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	v := viper.New()
	if err := Load(context.Background(), v); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Update(v, "theme", "dark-blue"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "markpad", "theme")); !os.IsNotExist(err) {
		t.Fatalf("legacy theme file should not be written by new code")
	}
	b, err := os.ReadFile(filepath.Join(dir, "markpad", "config.toml"))
	if err != nil {
		t.Fatalf("config not persisted: %v", err)
	}
	if !strings.Contains(string(b), "dark-blue") {
		t.Fatalf("persisted config missing updated theme: %s", b)
	}
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "")
	v.Set("theme", "bogus")
	v.Set("font.size", 1)
	v.Set("view.split_ratio", 2.0)
	v.Set("image.max_width", 0)
	v.Set("image.quality", 0)

	err := CheckConfigValidity(v)
	if err == nil {
		t.Fatalf("expected error for invalid config")
	}
	msg := err.Error()
	expected := []string{
		"data_dir is required",
		"unknown theme",
		"font.size must be between 6 and 72",
		"view.split_ratio must be between 0.1 and 0.9",
		"image.max_width must be greater than 0",
		"image.quality must be between 1 and 100",
	}
	for _, want := range expected {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error to contain %q, got %q", want, msg)
		}
	}
}
