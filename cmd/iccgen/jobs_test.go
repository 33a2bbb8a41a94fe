package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/verte-zerg/iccgen/internal/job"
)

type cliEnv struct {
	cacheRoot string
	argsFile  string
	logFile   string
}

// setupCLI isolates the config, data and cache homes and points targen at a
// script that records its arguments one per line.
func setupCLI(t *testing.T) cliEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("recording script needs a posix shell")
	}
	root := t.TempDir()
	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))

	env := cliEnv{
		cacheRoot: filepath.Join(root, "jobs"),
		argsFile:  filepath.Join(root, "targen.args"),
		logFile:   filepath.Join(root, "iccgen.log"),
	}
	script := filepath.Join(root, "targen.sh")
	body := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$@\" > %q\n", env.argsFile)
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	cfg := fmt.Sprintf("[tools]\ntargen = %q\n\n[paths]\ncache_root = %q\n\n[log]\noutput = %q\n",
		script, env.cacheRoot, env.logFile)
	cfgPath := filepath.Join(root, "config", "iccgen", "config.toml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("iccgen %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func recordedArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("targen was not run: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func assertTargenArgs(t *testing.T, got []string, gray, patches string) {
	t.Helper()
	want := []string{"-v", "-d", "2", "-G", "-g", gray, "-f", patches}
	if len(got) != len(want)+1 {
		t.Fatalf("expected %d arguments, got %q", len(want)+1, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("argument %d: expected %q, got %q (all: %q)", i, want[i], got[i], got)
		}
	}
}

func TestTargetResumesLatestJob(t *testing.T) {
	env := setupCLI(t)

	out := runCLI(t, "new", "--pages", "3", "--normal-density", "--gray-patches", "64", "--profile-name", "MyProf")
	settings := strings.TrimSpace(out)
	if !filepath.IsAbs(settings) {
		t.Fatalf("expected an absolute settings path, got %q", settings)
	}

	runCLI(t, "target")

	got := recordedArgs(t, env.argsFile)
	// A4 at normal density: 210 patches per page, three pages.
	assertTargenArgs(t, got, "64", "630")
	base := got[len(got)-1]
	if filepath.Base(base) != "MyProf" {
		t.Fatalf("expected the profile name override in %q", base)
	}
	if !strings.HasPrefix(base, env.cacheRoot) {
		t.Fatalf("expected %q under %q", base, env.cacheRoot)
	}
}

func TestTargetWithUnknownSettingsUsesDefaults(t *testing.T) {
	env := setupCLI(t)

	j, err := job.New(job.DefaultParams(), job.WithCacheRoot(env.cacheRoot))
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := j.SetNumberOfPages(4); err != nil {
		t.Fatalf("set pages: %v", err)
	}
	settings, err := j.SaveSettings(filepath.Join(t.TempDir(), "orphan.json"))
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}

	runCLI(t, "target", "--settings", settings)

	got := recordedArgs(t, env.argsFile)
	// Pages are not part of the settings file: one A4 high density page.
	assertTargenArgs(t, got, "128", "672")
	if name := filepath.Base(got[len(got)-1]); name != j.ProfileName() {
		t.Fatalf("expected profile %q, got %q", j.ProfileName(), name)
	}

	logs, err := os.ReadFile(env.logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logs), "job is not in the history") {
		t.Fatalf("expected a history warning, got:\n%s", logs)
	}
}
