package job

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/iccgen/internal/paper"
)

// derived fields cannot be assigned.
var readOnlyFields = map[string]struct{}{
	"patch_count":                {},
	"per_page_patch_count":       {},
	"profile_path":               {},
	"profile_absolute_path":      {},
	"profile_absolute_full_path": {},
	"tif_files":                  {},
}

// Set assigns a field from an untyped value, such as one decoded from a TOML
// table. The value kind is checked before anything is stored.
func (j *Job) Set(field string, value any) error {
	if _, ok := readOnlyFields[field]; ok {
		return fmt.Errorf("job.%s: %w", field, ErrReadOnly)
	}
	switch field {
	case FieldPrinterBrand:
		return setString(field, value, j.SetPrinterBrand)
	case FieldPrinterModel:
		return setString(field, value, j.SetPrinterModel)
	case FieldPaperBrand:
		return setString(field, value, j.SetPaperBrand)
	case FieldPaperModel:
		return setString(field, value, j.SetPaperModel)
	case FieldPaperFinish:
		return setString(field, value, j.SetPaperFinish)
	case FieldInkBrand:
		return setString(field, value, j.SetInkBrand)
	case FieldProfileDate:
		return setString(field, value, func(v string) error { j.profileDate = v; return nil })
	case FieldProfileTime:
		return setString(field, value, func(v string) error { j.profileTime = v; return nil })
	case FieldCopyrightInfo:
		return setOptionalString(field, value, j.SetCopyrightInfo)
	case FieldPreconditionProfilePath:
		return setOptionalString(field, value, j.SetPreconditionProfilePath)
	case FieldProfileName:
		return setOptionalString(field, value, j.SetProfileName)
	case FieldUseHighDensityMode:
		return setBool(field, value, j.SetHighDensity)
	case FieldOutputCommands:
		return setBool(field, value, j.SetOutputCommands)
	case FieldNumberOfPages:
		return setInt(field, value, j.SetNumberOfPages)
	case FieldGrayPatchCount:
		return setInt(field, value, j.SetGrayPatchCount)
	case FieldPaperSize:
		return j.setPaperSize(value)
	}
	return fmt.Errorf("unknown job field %q", field)
}

// SetAll applies every entry of values. Keys are applied in sorted order so
// errors are reported deterministically.
func (j *Job) SetAll(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := j.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func (j *Job) setPaperSize(value any) error {
	switch v := value.(type) {
	case paper.Size:
		return j.SetPaperSize(v)
	case *paper.Size:
		if v == nil {
			break
		}
		return j.SetPaperSize(*v)
	case string:
		s, ok := paper.Lookup(v)
		if !ok {
			return &ValidationError{
				Field:    FieldPaperSize,
				Expected: "one of " + strings.Join(paper.Names(), ", "),
				Got:      strconv.Quote(v),
			}
		}
		return j.SetPaperSize(s)
	}
	return &ValidationError{Field: FieldPaperSize, Expected: "a paper size", Got: typeName(value)}
}

func setString(field string, value any, set func(string) error) error {
	v, ok := value.(string)
	if !ok {
		return &ValidationError{Field: field, Expected: "a string", Got: typeName(value)}
	}
	return set(v)
}

func setOptionalString(field string, value any, set func(string)) error {
	v, ok := value.(string)
	if !ok {
		return &ValidationError{Field: field, Expected: "a string", Got: typeName(value)}
	}
	set(v)
	return nil
}

func setBool(field string, value any, set func(bool)) error {
	v, ok := value.(bool)
	if !ok {
		return &ValidationError{Field: field, Expected: "a bool", Got: typeName(value)}
	}
	set(v)
	return nil
}

func setInt(field string, value any, set func(int) error) error {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	default:
		return &ValidationError{Field: field, Expected: "an int", Got: typeName(value)}
	}
	if n > math.MaxInt32 {
		return &ValidationError{Field: field, Expected: "an int", Got: strconv.FormatInt(n, 10)}
	}
	return set(int(n))
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}
