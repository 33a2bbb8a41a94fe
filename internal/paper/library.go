package paper

import (
	"fmt"
	"sort"
	"strings"
)

// Standard paper sizes.
var (
	P4x6    = mustNew("4x6", 101.6, 152.4)
	P11x17  = mustNew("11x17", 279.4, 431.8)
	A2      = mustNew("A2", 420.0, 594.0)
	A3      = mustNew("A3", 297.0, 420.0)
	A3R     = mustNew("A3R", 420.0, 297.0)
	A4      = mustNew("A4", 210.0, 297.0)
	A4R     = mustNew("A4R", 297.0, 210.0)
	Legal   = mustNew("Legal", 215.9, 355.6)
	Letter  = mustNew("Letter", 215.9, 279.4)
	LetterR = mustNew("LetterR", 279.4, 215.9)
)

var library = map[string]Size{
	P4x6.Name():    P4x6,
	P11x17.Name():  P11x17,
	A2.Name():      A2,
	A3.Name():      A3,
	A3R.Name():     A3R,
	A4.Name():      A4,
	A4R.Name():     A4R,
	Legal.Name():   Legal,
	Letter.Name():  Letter,
	LetterR.Name(): LetterR,
}

// Lookup returns the library paper size with the given name. Unknown names
// return false rather than an error.
func Lookup(name string) (Size, bool) {
	s, ok := library[name]
	return s, ok
}

// Names returns the library paper size names in sorted order.
func Names() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the library paper sizes sorted by name.
func All() []Size {
	names := Names()
	sizes := make([]Size, len(names))
	for i, name := range names {
		sizes[i] = library[name]
	}
	return sizes
}

// Density selects how tightly patches are packed on a chart.
type Density string

const (
	// NormalDensity is the targen default patch spacing.
	NormalDensity Density = "normal_density"
	// HighDensity packs more patches per page (printtarg -h).
	HighDensity Density = "high_density"
)

// DensityFor maps the high density switch to a Density.
func DensityFor(high bool) Density {
	if high {
		return HighDensity
	}
	return NormalDensity
}

// Baseline patch counts measured for a single A4 and A3 page.
const (
	a4NormalPatches = 210
	a4HighPatches   = 672
	a3NormalPatches = 445
	a3HighPatches   = 1392
)

type patchKey struct {
	size    Size
	density Density
}

// patchCounts is built once in init and never written afterwards.
var patchCounts map[patchKey]int

func init() {
	patchCounts = make(map[patchKey]int, 2*len(library))
	set := func(s Size, normal, high int) {
		patchCounts[patchKey{s, NormalDensity}] = normal
		patchCounts[patchKey{s, HighDensity}] = high
	}
	fromA4 := func(s Size) {
		set(s, scale(a4NormalPatches, A4, s), scale(a4HighPatches, A4, s))
	}
	fromA3 := func(s Size) {
		set(s, scale(a3NormalPatches, A3, s), scale(a3HighPatches, A3, s))
	}

	set(A4, a4NormalPatches, a4HighPatches)
	set(A4R, a4NormalPatches, a4HighPatches)
	set(A3, a3NormalPatches, a3HighPatches)
	set(A3R, a3NormalPatches, a3HighPatches)
	fromA3(A2)
	fromA4(P4x6)
	fromA4(P11x17)
	fromA4(Legal)
	fromA4(Letter)
	fromA4(LetterR)
}

// scale truncates count/base.Area()*s.Area() toward zero.
func scale(count int, base, s Size) int {
	return int(float64(count) / base.Area() * s.Area())
}

// UnsupportedSizeError is returned when a paper size has no patch count entry.
type UnsupportedSizeError struct {
	Size    Size
	Allowed []string
}

func (e *UnsupportedSizeError) Error() string {
	if e.Size.IsZero() {
		return fmt.Sprintf("paper size is not set (allowed: %s)", strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("unsupported paper size %s (%gx%g mm) (allowed: %s)",
		e.Size.Name(), e.Size.Width(), e.Size.Height(), strings.Join(e.Allowed, ", "))
}

// PatchCount returns the per page patch count for s at the given density.
func PatchCount(s Size, d Density) (int, error) {
	if d != NormalDensity && d != HighDensity {
		return 0, fmt.Errorf("unknown density %q (allowed: %s, %s)", d, NormalDensity, HighDensity)
	}
	n, ok := patchCounts[patchKey{s, d}]
	if !ok {
		return 0, &UnsupportedSizeError{Size: s, Allowed: Names()}
	}
	return n, nil
}
