package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/iccgen/internal/platform"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Job != nil || cfg.Tools.Targen != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[job]
printer_brand = "Epson"
number_of_pages = 2
use_high_density_mode = false

[tools]
targen = "/opt/argyll/bin/targen"
viewer = ""

[paths]
cache_root = "/tmp/iccgen-cache"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Job["printer_brand"] != "Epson" {
		t.Fatalf("unexpected printer_brand %v", cfg.Job["printer_brand"])
	}
	if cfg.Job["number_of_pages"] != int64(2) {
		t.Fatalf("expected int64 page count, got %T", cfg.Job["number_of_pages"])
	}
	if cfg.Job["use_high_density_mode"] != false {
		t.Fatalf("unexpected density value %v", cfg.Job["use_high_density_mode"])
	}
	if StringOr(cfg.Paths.CacheRoot, "x") != "/tmp/iccgen-cache" {
		t.Fatalf("unexpected cache root")
	}
	if StringOr(cfg.Log.Level, "warn") != "debug" {
		t.Fatalf("unexpected log level")
	}

	tools, err := ResolveTools(cfg.Tools, platform.Posix)
	if err != nil {
		t.Fatalf("resolve tools: %v", err)
	}
	if tools.Targen != "/opt/argyll/bin/targen" || tools.Colprof != "colprof" {
		t.Fatalf("unexpected tools %+v", tools)
	}
	if tools.Viewer != "" {
		t.Fatalf("expected viewer override to disable printing, got %q", tools.Viewer)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[job\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestResolveToolsRejectsEmptyBinary(t *testing.T) {
	empty := ""
	if _, err := ResolveTools(ToolsConfig{Colprof: &empty}, platform.Posix); err == nil {
		t.Fatalf("expected validation error for empty colprof")
	}
	tools, err := ResolveTools(ToolsConfig{}, platform.MacOS)
	if err != nil {
		t.Fatalf("resolve tools: %v", err)
	}
	if tools.Viewer != platform.MacOS.ChartViewer() {
		t.Fatalf("unexpected mac viewer %q", tools.Viewer)
	}
}

func TestXDGPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	if got := InstallDir(platform.Posix); got != filepath.Join(dir, "data", "icc") {
		t.Fatalf("unexpected install dir %s", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join(dir, "config", "iccgen", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "data", "iccgen", "iccgen.db") {
		t.Fatalf("unexpected db path %s", got)
	}
	if got := CacheRoot(platform.Posix); got != filepath.Join(dir, "cache") {
		t.Fatalf("unexpected cache root %s", got)
	}
	if got := CacheRoot(platform.Windows); got != "$APPDATA" {
		t.Fatalf("unexpected windows cache root %s", got)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	if got := CacheRoot(platform.MacOS); got != "~/.cache" {
		t.Fatalf("unexpected default cache root %s", got)
	}
}

func TestWindowsInstallDir(t *testing.T) {
	t.Setenv("WINDIR", "C:/Windows")
	want := filepath.Join("C:/Windows", "System32", "spool", "drivers", "color")
	if got := InstallDir(platform.Windows); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
