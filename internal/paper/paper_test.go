package paper

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name   string
		pname  string
		width  float64
		height float64
		field  string
	}{
		{name: "empty name", pname: "", width: 10, height: 10, field: "name"},
		{name: "zero width", pname: "X", width: 0, height: 10, field: "width"},
		{name: "negative width", pname: "X", width: -1, height: 10, field: "width"},
		{name: "zero height", pname: "X", width: 10, height: 0, field: "height"},
		{name: "NaN width", pname: "X", width: math.NaN(), height: 10, field: "width"},
		{name: "+Inf width", pname: "X", width: math.Inf(1), height: 10, field: "width"},
		{name: "-Inf width", pname: "X", width: math.Inf(-1), height: 10, field: "width"},
		{name: "NaN height", pname: "X", width: 10, height: math.NaN(), field: "height"},
		{name: "+Inf height", pname: "X", width: 10, height: math.Inf(1), field: "height"},
		{name: "-Inf height", pname: "X", width: 10, height: math.Inf(-1), field: "height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.pname, tt.width, tt.height)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAreaAndEquality(t *testing.T) {
	pairs := [][2]float64{{1, 1}, {210, 297}, {101.6, 152.4}, {0.5, 3000}}
	for _, p := range pairs {
		a, err := New("Custom", p[0], p[1])
		require.NoError(t, err)
		b, err := New("Custom", p[0], p[1])
		require.NoError(t, err)
		c, err := New("Custom", p[0], p[1]+1e-9)
		require.NoError(t, err)

		assert.Equal(t, p[0]*p[1], a.Area())
		assert.True(t, a.Equal(b))
		assert.True(t, a == b)
		assert.False(t, a.Equal(c))
	}
}

func TestSetSize(t *testing.T) {
	s := A4
	require.NoError(t, s.SetSize([]float64{297, 210}))
	w, h := s.Size()
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)

	err := s.SetSize([]float64{1, 2, 3})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "size", verr.Field)
	assert.Contains(t, err.Error(), "3 values")

	// a failing pair leaves the size untouched
	require.Error(t, s.SetSize([]float64{100, -1}))
	w, h = s.Size()
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)

	for _, bad := range [][]float64{
		{math.NaN(), 100},
		{100, math.NaN()},
		{math.Inf(1), 100},
		{100, math.Inf(1)},
		{math.Inf(-1), 100},
		{100, math.Inf(-1)},
	} {
		require.Error(t, s.SetSize(bad), "%v", bad)
		assert.True(t, s.Equal(s))
		w, h = s.Size()
		assert.Equal(t, 297.0, w)
		assert.Equal(t, 210.0, h)
	}
}

func TestLibraryIsNotMutatedThroughCopies(t *testing.T) {
	s, ok := Lookup("A4")
	require.True(t, ok)
	require.NoError(t, s.SetWidth(1))

	again, _ := Lookup("A4")
	assert.Equal(t, 210.0, again.Width())
}
