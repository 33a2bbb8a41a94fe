// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"

	"github.com/verte-zerg/iccgen/internal/platform"
)

const appName = "iccgen"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// CacheRoot returns the unexpanded root of the job scratch tree. The result
// may still contain "~" or environment references; job path rendering
// expands them.
func CacheRoot(o platform.OS) string {
	if o == platform.Windows {
		return "$APPDATA"
	}
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return "~/.cache"
}

// InstallDir returns the directory that receives installed ICC profiles.
func InstallDir(o platform.OS) string {
	switch o {
	case platform.Windows:
		return filepath.Join(os.Getenv("WINDIR"), "System32", "spool", "drivers", "color")
	case platform.MacOS:
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = "."
		}
		return filepath.Join(home, "Library", "ColorSync", "Profiles")
	default:
		return filepath.Join(XDGDataHome(), "icc")
	}
}

// DefaultDBPath returns the default path for the job history database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultProfilesDir returns the directory holding reference RGB profiles.
func DefaultProfilesDir() string {
	return filepath.Join(XDGDataHome(), appName, "profiles")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
