package workflow

import (
	"fmt"
	"strconv"

	"github.com/verte-zerg/iccgen/internal/job"
)

// ReadMode selects how chartread scans the printed chart.
type ReadMode int

const (
	// StripMode reads a whole row of patches per pass.
	StripMode ReadMode = iota
	// PatchByPatchMode reads one patch at a time, used to fix misreads.
	PatchByPatchMode
)

func (m ReadMode) String() string {
	switch m {
	case StripMode:
		return "strip"
	case PatchByPatchMode:
		return "patch-by-patch"
	}
	return fmt.Sprintf("ReadMode(%d)", int(m))
}

// TargenArgs returns the targen arguments for j.
func TargenArgs(j *job.Job) ([]string, error) {
	patches, err := j.PatchCount()
	if err != nil {
		return nil, err
	}
	base, err := j.ProfileAbsoluteFullPath()
	if err != nil {
		return nil, err
	}
	args := []string{
		"-v",
		"-d", "2",
		"-G",
		"-g", strconv.Itoa(j.GrayPatchCount()),
		"-f", strconv.Itoa(patches),
	}
	if p := j.PreconditionProfilePath(); p != "" {
		args = append(args, "-c", p)
	}
	return append(args, base), nil
}

// PrinttargArgs returns the printtarg arguments for j. High density charts
// are laid out for an i1 Pro, normal density charts for a ColorMunki.
func PrinttargArgs(j *job.Job) ([]string, error) {
	base, err := j.ProfileAbsoluteFullPath()
	if err != nil {
		return nil, err
	}
	size := j.PaperSize()
	if size.IsZero() {
		return nil, fmt.Errorf("paper size is not set")
	}
	args := []string{"-v"}
	if j.HighDensity() {
		args = append(args, "-ii1", "-a 0.875")
	} else {
		args = append(args, "-iCM", "-h", "-P")
	}
	w, h := size.Size()
	args = append(args,
		"-R1",
		"-T300",
		"-M2",
		"-L",
		"-p", fmt.Sprintf("%.1fx%.1f", w, h),
		base,
	)
	return args, nil
}

// ChartreadArgs returns the chartread arguments for j.
func ChartreadArgs(j *job.Job, resume bool, mode ReadMode) ([]string, error) {
	if mode != StripMode && mode != PatchByPatchMode {
		return nil, fmt.Errorf("unsupported read mode %d (allowed: 0 strip, 1 patch-by-patch)", int(mode))
	}
	base, err := j.ProfileAbsoluteFullPath()
	if err != nil {
		return nil, err
	}
	args := []string{"-v", "-H", "-T 0.4"}
	if mode == PatchByPatchMode {
		args = append(args, "-p", "-P")
	}
	if resume {
		args = append(args, "-r")
	}
	return append(args, base), nil
}

// ColprofArgs returns the colprof arguments for j using reference as the
// source gamut profile.
func ColprofArgs(j *job.Job, reference string) ([]string, error) {
	base, err := j.ProfileAbsoluteFullPath()
	if err != nil {
		return nil, err
	}
	args := []string{
		"-v",
		"-qh",
		"-r0.5",
		"-S", reference,
		"-cmt",
		"-dpp",
		"-Zr",
		"-Zm",
		"-D" + j.ProfileName(),
	}
	if c := j.CopyrightInfo(); c != "" {
		args = append(args, "-C"+c)
	}
	return append(args, base), nil
}

// ProfcheckArgs returns the profcheck arguments for j.
func ProfcheckArgs(j *job.Job, sortByDE bool) ([]string, error) {
	base, err := j.ProfileAbsoluteFullPath()
	if err != nil {
		return nil, err
	}
	args := []string{"-k", "-v2"}
	if sortByDE {
		args = append(args, "-s")
	}
	return append(args, base+".ti3", base+j.Platform().ProfileExt()), nil
}
