// Package job holds the configuration of a single ICC profiling job.
//
// A Job validates every field at assignment time, derives patch counts from
// the paper library and renders the deterministic names and paths used for
// all intermediate artifacts. One Job is driven by one workflow at a time.
package job

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/iccgen/internal/config"
	"github.com/verte-zerg/iccgen/internal/model"
	"github.com/verte-zerg/iccgen/internal/paper"
	"github.com/verte-zerg/iccgen/internal/platform"
)

// Field names accepted by Set.
const (
	FieldPrinterBrand            = "printer_brand"
	FieldPrinterModel            = "printer_model"
	FieldPaperBrand              = "paper_brand"
	FieldPaperModel              = "paper_model"
	FieldPaperFinish             = "paper_finish"
	FieldPaperSize               = "paper_size"
	FieldInkBrand                = "ink_brand"
	FieldUseHighDensityMode      = "use_high_density_mode"
	FieldNumberOfPages           = "number_of_pages"
	FieldGrayPatchCount          = "gray_patch_count"
	FieldCopyrightInfo           = "copyright_info"
	FieldPreconditionProfilePath = "precondition_profile_path"
	FieldOutputCommands          = "output_commands"
	FieldProfileName             = "profile_name"
	FieldProfileDate             = "profile_date"
	FieldProfileTime             = "profile_time"
)

const (
	defaultGrayPatchCount = 128
	dateLayout            = "20060102"
	timeLayout            = "1504"
)

// ErrReadOnly is returned when assigning a derived field.
var ErrReadOnly = errors.New("field is read-only")

// ValidationError reports a value of the wrong kind for a job field.
type ValidationError struct {
	Field    string
	Expected string
	Got      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("job.%s should be %s, not %s", e.Field, e.Expected, e.Got)
}

// Params are the user supplied job fields.
type Params struct {
	PrinterBrand            string
	PrinterModel            string
	PaperBrand              string
	PaperModel              string
	PaperFinish             string
	PaperSize               paper.Size
	InkBrand                string
	HighDensity             bool
	NumberOfPages           int
	GrayPatchCount          int
	CopyrightInfo           string
	PreconditionProfilePath string
	OutputCommands          bool
}

// DefaultParams returns the stock job used when nothing is configured.
func DefaultParams() Params {
	return Params{
		PrinterBrand:   "Canon",
		PrinterModel:   "iX6850",
		PaperBrand:     "Kodak",
		PaperModel:     "UPPP",
		PaperFinish:    "Glossy",
		PaperSize:      paper.A4,
		InkBrand:       "CanonInk",
		HighDensity:    true,
		NumberOfPages:  1,
		GrayPatchCount: defaultGrayPatchCount,
	}
}

// Option customizes the environment a Job is created in.
type Option func(*Job)

// WithTime fixes the construction time used for the profile date and time.
func WithTime(now time.Time) Option {
	return func(j *Job) { j.now = now }
}

// WithPlatform overrides the detected host platform.
func WithPlatform(o platform.OS) Option {
	return func(j *Job) { j.platform = o }
}

// WithCacheRoot overrides the root of the job scratch tree.
func WithCacheRoot(root string) Option {
	return func(j *Job) { j.cacheRoot = root }
}

// Job is a profiling job.
type Job struct {
	printerBrand            string
	printerModel            string
	paperBrand              string
	paperModel              string
	paperFinish             string
	paperSize               paper.Size
	inkBrand                string
	highDensity             bool
	numberOfPages           int
	grayPatchCount          int
	copyrightInfo           string
	preconditionProfilePath string
	outputCommands          bool

	profileDate string
	profileTime string
	// profileName overrides the rendered name when non-empty.
	profileName string
	tifFiles    []string

	now       time.Time
	platform  platform.OS
	cacheRoot string
}

// New validates p and returns a Job stamped with the current date and time.
func New(p Params, opts ...Option) (*Job, error) {
	j := &Job{platform: platform.Current()}
	for _, opt := range opts {
		opt(j)
	}
	if j.now.IsZero() {
		j.now = time.Now()
	}
	if j.cacheRoot == "" {
		j.cacheRoot = config.CacheRoot(j.platform)
	}
	j.profileDate = j.now.Format(dateLayout)
	j.profileTime = j.now.Format(timeLayout)

	if p.PaperSize.IsZero() {
		p.PaperSize = paper.A4
	}
	if err := j.apply(p); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Job) apply(p Params) error {
	setters := []func() error{
		func() error { return j.SetPrinterBrand(p.PrinterBrand) },
		func() error { return j.SetPrinterModel(p.PrinterModel) },
		func() error { return j.SetPaperBrand(p.PaperBrand) },
		func() error { return j.SetPaperModel(p.PaperModel) },
		func() error { return j.SetPaperFinish(p.PaperFinish) },
		func() error { return j.SetPaperSize(p.PaperSize) },
		func() error { return j.SetInkBrand(p.InkBrand) },
		func() error { return j.SetNumberOfPages(p.NumberOfPages) },
		func() error { return j.SetGrayPatchCount(p.GrayPatchCount) },
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}
	j.highDensity = p.HighDensity
	j.copyrightInfo = p.CopyrightInfo
	j.preconditionProfilePath = p.PreconditionProfilePath
	j.outputCommands = p.OutputCommands
	return nil
}

// Platform returns the host platform resolved at construction.
func (j *Job) Platform() platform.OS { return j.platform }

// PrinterBrand returns the printer brand.
func (j *Job) PrinterBrand() string { return j.printerBrand }

// PrinterModel returns the printer model.
func (j *Job) PrinterModel() string { return j.printerModel }

// PaperBrand returns the paper brand.
func (j *Job) PaperBrand() string { return j.paperBrand }

// PaperModel returns the paper model.
func (j *Job) PaperModel() string { return j.paperModel }

// PaperFinish returns the paper finish.
func (j *Job) PaperFinish() string { return j.paperFinish }

// PaperSize returns the paper size. It is the zero Size after loading
// settings that name an unknown paper.
func (j *Job) PaperSize() paper.Size { return j.paperSize }

// InkBrand returns the ink brand.
func (j *Job) InkBrand() string { return j.inkBrand }

// HighDensity reports whether high density charts are used.
func (j *Job) HighDensity() bool { return j.highDensity }

// NumberOfPages returns the chart page count.
func (j *Job) NumberOfPages() int { return j.numberOfPages }

// GrayPatchCount returns the number of neutral patches.
func (j *Job) GrayPatchCount() int { return j.grayPatchCount }

// CopyrightInfo returns the copyright embedded in the profile.
func (j *Job) CopyrightInfo() string { return j.copyrightInfo }

// PreconditionProfilePath returns the optional preconditioning profile.
func (j *Job) PreconditionProfilePath() string { return j.preconditionProfilePath }

// OutputCommands reports whether commands are echoed before running.
func (j *Job) OutputCommands() bool { return j.outputCommands }

// ProfileDate returns the YYYYMMDD date stamp.
func (j *Job) ProfileDate() string { return j.profileDate }

// ProfileTime returns the HHMM time stamp.
func (j *Job) ProfileTime() string { return j.profileTime }

func requireString(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Expected: "a non-empty string", Got: "empty string"}
	}
	return nil
}

// SetPrinterBrand sets the printer brand.
func (j *Job) SetPrinterBrand(v string) error {
	if err := requireString(FieldPrinterBrand, v); err != nil {
		return err
	}
	j.printerBrand = v
	return nil
}

// SetPrinterModel sets the printer model.
func (j *Job) SetPrinterModel(v string) error {
	if err := requireString(FieldPrinterModel, v); err != nil {
		return err
	}
	j.printerModel = v
	return nil
}

// SetPaperBrand sets the paper brand.
func (j *Job) SetPaperBrand(v string) error {
	if err := requireString(FieldPaperBrand, v); err != nil {
		return err
	}
	j.paperBrand = v
	return nil
}

// SetPaperModel sets the paper model.
func (j *Job) SetPaperModel(v string) error {
	if err := requireString(FieldPaperModel, v); err != nil {
		return err
	}
	j.paperModel = v
	return nil
}

// SetPaperFinish sets the paper finish.
func (j *Job) SetPaperFinish(v string) error {
	if err := requireString(FieldPaperFinish, v); err != nil {
		return err
	}
	j.paperFinish = v
	return nil
}

// SetInkBrand sets the ink brand.
func (j *Job) SetInkBrand(v string) error {
	if err := requireString(FieldInkBrand, v); err != nil {
		return err
	}
	j.inkBrand = v
	return nil
}

// SetPaperSize sets the paper size. Sizes outside the library are accepted
// here and rejected by the patch count lookup.
func (j *Job) SetPaperSize(s paper.Size) error {
	if s.IsZero() {
		return &ValidationError{Field: FieldPaperSize, Expected: "a paper size", Got: "an unset size"}
	}
	j.paperSize = s
	return nil
}

// SetHighDensity switches between high and normal density charts.
func (j *Job) SetHighDensity(v bool) { j.highDensity = v }

// SetNumberOfPages sets the chart page count.
func (j *Job) SetNumberOfPages(n int) error {
	if n < 1 {
		return &ValidationError{Field: FieldNumberOfPages, Expected: "a positive int", Got: fmt.Sprint(n)}
	}
	j.numberOfPages = n
	return nil
}

// SetGrayPatchCount sets the number of neutral patches.
func (j *Job) SetGrayPatchCount(n int) error {
	if n < 1 {
		return &ValidationError{Field: FieldGrayPatchCount, Expected: "a positive int", Got: fmt.Sprint(n)}
	}
	j.grayPatchCount = n
	return nil
}

// SetCopyrightInfo sets the copyright text. It may be empty.
func (j *Job) SetCopyrightInfo(v string) { j.copyrightInfo = v }

// SetPreconditionProfilePath sets the preconditioning profile. It may be empty.
func (j *Job) SetPreconditionProfilePath(v string) { j.preconditionProfilePath = v }

// SetOutputCommands toggles echoing of commands.
func (j *Job) SetOutputCommands(v bool) { j.outputCommands = v }

// SetProfileName stores a name that overrides the rendered one.
func (j *Job) SetProfileName(name string) { j.profileName = name }

// PerPagePatchCount returns the patch count of a single chart page.
func (j *Job) PerPagePatchCount() (int, error) {
	return paper.PatchCount(j.paperSize, paper.DensityFor(j.highDensity))
}

// PatchCount returns the patch count across all pages.
func (j *Job) PatchCount() (int, error) {
	perPage, err := j.PerPagePatchCount()
	if err != nil {
		return 0, err
	}
	return perPage * j.numberOfPages, nil
}

// Params returns the fields that the settings snapshot does not carry.
func (j *Job) Params() model.JobParams {
	return model.JobParams{
		NumberOfPages:           j.numberOfPages,
		HighDensity:             j.highDensity,
		GrayPatchCount:          j.grayPatchCount,
		CopyrightInfo:           j.copyrightInfo,
		PreconditionProfilePath: j.preconditionProfilePath,
	}
}

// ApplyParams restores fields recorded with model.JobParams.
func (j *Job) ApplyParams(p model.JobParams) error {
	if err := j.SetNumberOfPages(p.NumberOfPages); err != nil {
		return err
	}
	if err := j.SetGrayPatchCount(p.GrayPatchCount); err != nil {
		return err
	}
	j.highDensity = p.HighDensity
	j.copyrightInfo = p.CopyrightInfo
	j.preconditionProfilePath = p.PreconditionProfilePath
	return nil
}
