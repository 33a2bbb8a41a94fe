// Package platform enumerates the host operating systems iccgen knows about.
package platform

import (
	"fmt"
	"runtime"
)

// OS is the closed set of host platforms that change install and viewer paths.
type OS int

const (
	// Posix covers Linux and the other Unix-like hosts.
	Posix OS = iota
	// Windows is any Windows host.
	Windows
	// MacOS is a Darwin host.
	MacOS
)

// Current returns the platform of the running process.
func Current() OS {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a runtime.GOOS value to an OS.
func FromGOOS(goos string) OS {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	default:
		return Posix
	}
}

// Parse parses the String form of an OS.
func Parse(s string) (OS, error) {
	switch s {
	case "posix", "linux":
		return Posix, nil
	case "windows":
		return Windows, nil
	case "macos", "darwin":
		return MacOS, nil
	}
	return Posix, fmt.Errorf("unknown platform %q (allowed: posix, windows, macos)", s)
}

func (o OS) String() string {
	switch o {
	case Windows:
		return "windows"
	case MacOS:
		return "macos"
	default:
		return "posix"
	}
}

// ProfileExt returns the extension profcheck expects for a built profile.
func (o OS) ProfileExt() string {
	if o == Windows {
		return ".icm"
	}
	return ".icc"
}

// ChartViewer returns the application used to print raster charts. The
// empty string means no viewer is wired for the platform.
func (o OS) ChartViewer() string {
	switch o {
	case Posix:
		return "/usr/bin/gimp"
	case MacOS:
		return "/Applications/Print-Tool.app/Contents/MacOS/Print-Tool"
	default:
		// TODO: dispatch to Dry Creek Photo Print Utility or Adobe Color Print Utility.
		return ""
	}
}

// ShellCommand returns the shell invocation used to run a joined command line.
func (o OS) ShellCommand(line string) (string, []string) {
	if o == Windows {
		return "cmd", []string{"/C", line}
	}
	return "sh", []string{"-c", line}
}
