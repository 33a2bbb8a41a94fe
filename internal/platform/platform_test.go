package platform

import "testing"

func TestFromGOOS(t *testing.T) {
	cases := map[string]OS{
		"linux":   Posix,
		"freebsd": Posix,
		"windows": Windows,
		"darwin":  MacOS,
	}
	for goos, want := range cases {
		if got := FromGOOS(goos); got != want {
			t.Fatalf("FromGOOS(%q) = %v, want %v", goos, got, want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, o := range []OS{Posix, Windows, MacOS} {
		got, err := Parse(o.String())
		if err != nil {
			t.Fatalf("parse %s: %v", o, err)
		}
		if got != o {
			t.Fatalf("expected %v, got %v", o, got)
		}
	}
	if _, err := Parse("plan9"); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
}

func TestProfileExtAndViewer(t *testing.T) {
	if Windows.ProfileExt() != ".icm" || Posix.ProfileExt() != ".icc" || MacOS.ProfileExt() != ".icc" {
		t.Fatalf("unexpected profile extensions")
	}
	if Windows.ChartViewer() != "" {
		t.Fatalf("expected no viewer on windows")
	}
	if Posix.ChartViewer() != "/usr/bin/gimp" {
		t.Fatalf("unexpected posix viewer %q", Posix.ChartViewer())
	}
}

func TestShellCommand(t *testing.T) {
	name, args := Posix.ShellCommand("chartread -v")
	if name != "sh" || len(args) != 2 || args[0] != "-c" || args[1] != "chartread -v" {
		t.Fatalf("unexpected posix shell: %s %v", name, args)
	}
	name, args = Windows.ShellCommand("chartread -v")
	if name != "cmd" || args[0] != "/C" {
		t.Fatalf("unexpected windows shell: %s %v", name, args)
	}
}
