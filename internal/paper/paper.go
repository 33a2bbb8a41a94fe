// Package paper models physical paper sizes and chart patch counts.
package paper

import (
	"fmt"
	"math"
	"strconv"
)

// Size is a named paper size. Width and Height are in millimetres.
//
// Size is comparable, so two sizes are equal exactly when their name, width
// and height are equal, and a Size can be used directly as a map key.
type Size struct {
	name   string
	width  float64
	height float64
}

// ValidationError reports an invalid value for a paper size field.
type ValidationError struct {
	Field    string
	Expected string
	Got      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("paper size %s should be %s, not %s", e.Field, e.Expected, e.Got)
}

// New returns a validated paper size.
func New(name string, width, height float64) (Size, error) {
	var s Size
	if err := s.SetName(name); err != nil {
		return Size{}, err
	}
	if err := s.SetWidth(width); err != nil {
		return Size{}, err
	}
	if err := s.SetHeight(height); err != nil {
		return Size{}, err
	}
	return s, nil
}

func mustNew(name string, width, height float64) Size {
	s, err := New(name, width, height)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the paper size name.
func (s Size) Name() string { return s.name }

// Width returns the width in millimetres.
func (s Size) Width() float64 { return s.width }

// Height returns the height in millimetres.
func (s Size) Height() float64 { return s.height }

// Area returns width * height in square millimetres.
func (s Size) Area() float64 { return s.width * s.height }

// Size returns the (width, height) pair.
func (s Size) Size() (float64, float64) { return s.width, s.height }

// IsZero reports whether s is the zero Size.
func (s Size) IsZero() bool { return s == Size{} }

// Equal reports whether s and other describe the same paper.
func (s Size) Equal(other Size) bool { return s == other }

// String returns the paper size name.
func (s Size) String() string { return s.name }

// SetName sets the name. The name must not be empty.
func (s *Size) SetName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Expected: "a non-empty string", Got: strconv.Quote(name)}
	}
	s.name = name
	return nil
}

// SetWidth sets the width. The width must be strictly positive and finite.
func (s *Size) SetWidth(width float64) error {
	if !(width > 0) || math.IsInf(width, 0) {
		return &ValidationError{Field: "width", Expected: "a positive number", Got: formatMM(width)}
	}
	s.width = width
	return nil
}

// SetHeight sets the height. The height must be strictly positive and finite.
func (s *Size) SetHeight(height float64) error {
	if !(height > 0) || math.IsInf(height, 0) {
		return &ValidationError{Field: "height", Expected: "a positive number", Got: formatMM(height)}
	}
	s.height = height
	return nil
}

// SetSize sets width and height from a two element pair.
func (s *Size) SetSize(pair []float64) error {
	if len(pair) != 2 {
		return &ValidationError{
			Field:    "size",
			Expected: "a pair of two numbers",
			Got:      fmt.Sprintf("%d values", len(pair)),
		}
	}
	next := *s
	if err := next.SetWidth(pair[0]); err != nil {
		return err
	}
	if err := next.SetHeight(pair[1]); err != nil {
		return err
	}
	*s = next
	return nil
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
