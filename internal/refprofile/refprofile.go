// Package refprofile resolves the reference RGB profiles used for profile
// building and image color correction, and sanity checks ICC files.
package refprofile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"seehuhn.de/go/icc"
)

// Named reference profiles.
const (
	SRGB     = "sRGB"
	AdobeRGB = "AdobeRGB"
)

// Names lists the named reference profiles.
var Names = []string{SRGB, AdobeRGB}

// Canonical maps a case-insensitive profile name to its canonical spelling.
func Canonical(name string) (string, bool) {
	for _, n := range Names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// Dir is a directory of reference profiles named <name>.icc.
type Dir string

// Path returns the location of a named profile in d.
func (d Dir) Path(name string) string {
	return filepath.Join(string(d), name+".icc")
}

// Ensure returns the path of a named profile. The sRGB profile is written
// from embedded data when missing; other profiles must be supplied by the
// user and are returned as-is.
func (d Dir) Ensure(name string) (string, error) {
	canonical, ok := Canonical(name)
	if !ok {
		return "", fmt.Errorf("unknown reference profile %q (allowed: %s)", name, strings.Join(Names, ", "))
	}
	path := d.Path(canonical)
	if canonical != SRGB {
		return path, nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat reference profile: %w", err)
	}
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return "", fmt.Errorf("failed to create profiles directory: %w", err)
	}
	if err := os.WriteFile(path, icc.SRGBv2Profile, 0o644); err != nil {
		return "", fmt.Errorf("failed to write sRGB profile: %w", err)
	}
	return path, nil
}

// Info summarizes a decoded ICC profile header.
type Info struct {
	ColorSpace string
	Channels   int
}

// Check decodes the ICC profile at path.
func Check(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := icc.Decode(data)
	if err != nil {
		return Info{}, fmt.Errorf("%s is not a valid ICC profile: %w", path, err)
	}
	return Info{
		ColorSpace: fmt.Sprint(p.ColorSpace),
		Channels:   p.ColorSpace.NumComponents(),
	}, nil
}
