package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/iccgen/internal/paper"
)

func TestSetRejectsWrongKinds(t *testing.T) {
	tests := []struct {
		field    string
		value    any
		expected string
		got      string
	}{
		{field: FieldPrinterBrand, value: 42, expected: "string", got: "int"},
		{field: FieldPrinterModel, value: nil, expected: "string", got: "nil"},
		{field: FieldPaperBrand, value: 1.5, expected: "string", got: "float64"},
		{field: FieldPaperModel, value: true, expected: "string", got: "bool"},
		{field: FieldPaperFinish, value: []string{"x"}, expected: "string", got: "[]string"},
		{field: FieldInkBrand, value: int64(3), expected: "string", got: "int64"},
		{field: FieldCopyrightInfo, value: 3, expected: "string", got: "int"},
		{field: FieldPreconditionProfilePath, value: 3, expected: "string", got: "int"},
		{field: FieldUseHighDensityMode, value: "yes", expected: "bool", got: "string"},
		{field: FieldNumberOfPages, value: "2", expected: "int", got: "string"},
		{field: FieldNumberOfPages, value: 2.0, expected: "int", got: "float64"},
		{field: FieldGrayPatchCount, value: nil, expected: "int", got: "nil"},
		{field: FieldPaperSize, value: 4, expected: "paper size", got: "int"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"_"+tt.got, func(t *testing.T) {
			j := newTestJob(t)
			err := j.Set(tt.field, tt.value)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, verr.Expected, tt.expected)
			assert.Equal(t, tt.got, verr.Got)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSetPrinterBrandIntegerMessage(t *testing.T) {
	j := newTestJob(t)
	err := j.Set("printer_brand", 42)
	require.Error(t, err)
	assert.Equal(t, "job.printer_brand should be a string, not int", err.Error())
	assert.Equal(t, "Canon", j.PrinterBrand())
}

func TestSetAcceptsValues(t *testing.T) {
	j := newTestJob(t)
	values := map[string]any{
		FieldPrinterBrand:            "Epson",
		FieldPrinterModel:            "P900",
		FieldPaperBrand:              "Hahnemuhle",
		FieldPaperModel:              "PhotoRag",
		FieldPaperFinish:             "Matte",
		FieldInkBrand:                "EpsonInk",
		FieldPaperSize:               "Letter",
		FieldUseHighDensityMode:      false,
		FieldNumberOfPages:           int64(2),
		FieldGrayPatchCount:          64,
		FieldCopyrightInfo:           "",
		FieldPreconditionProfilePath: "/tmp/pre.icc",
		FieldOutputCommands:          true,
	}
	require.NoError(t, j.SetAll(values))

	assert.Equal(t, "Epson", j.PrinterBrand())
	assert.Equal(t, paper.Letter, j.PaperSize())
	assert.False(t, j.HighDensity())
	assert.Equal(t, 2, j.NumberOfPages())
	assert.Equal(t, 64, j.GrayPatchCount())
	assert.True(t, j.OutputCommands())
	assert.Equal(t, "/tmp/pre.icc", j.PreconditionProfilePath())

	n, err := j.PatchCount()
	require.NoError(t, err)
	assert.Equal(t, 406, n)
}

func TestSetPaperSizeForms(t *testing.T) {
	j := newTestJob(t)
	require.NoError(t, j.Set(FieldPaperSize, paper.A3))
	assert.Equal(t, paper.A3, j.PaperSize())

	a2 := paper.A2
	require.NoError(t, j.Set(FieldPaperSize, &a2))
	assert.Equal(t, paper.A2, j.PaperSize())

	err := j.Set(FieldPaperSize, "B5")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Expected, "A4")
	assert.Equal(t, `"B5"`, verr.Got)
}

func TestSetReadOnly(t *testing.T) {
	j := newTestJob(t)
	for _, field := range []string{"patch_count", "per_page_patch_count", "profile_path", "profile_absolute_path", "profile_absolute_full_path"} {
		err := j.Set(field, 1)
		assert.True(t, errors.Is(err, ErrReadOnly), field)
	}
}

func TestSetUnknownField(t *testing.T) {
	j := newTestJob(t)
	assert.Error(t, j.Set("paper_weight", 300))
}

func TestSetNonPositiveInts(t *testing.T) {
	j := newTestJob(t)
	assert.Error(t, j.Set(FieldNumberOfPages, 0))
	assert.Error(t, j.Set(FieldGrayPatchCount, -5))
	assert.Equal(t, 1, j.NumberOfPages())
}
