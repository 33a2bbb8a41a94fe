// Package workflow drives a profiling job through the ArgyllCMS tool chain:
// target generation, chart rasterization, printing, measurement, profile
// building, verification and installation.
package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/iccgen/internal/job"
	"github.com/verte-zerg/iccgen/internal/logging"
	"github.com/verte-zerg/iccgen/internal/model"
	"github.com/verte-zerg/iccgen/internal/runner"
)

// Step names recorded in the job history.
const (
	StepGenerateTarget  = "generate_target"
	StepGenerateTIF     = "generate_tif"
	StepPrintCharts     = "print_charts"
	StepReadCharts      = "read_charts"
	StepGenerateProfile = "generate_profile"
	StepCheckProfile    = "check_profile"
	StepInstallProfile  = "install_profile"
)

// Steps lists the step names in execution order.
var Steps = []string{
	StepGenerateTarget,
	StepGenerateTIF,
	StepPrintCharts,
	StepReadCharts,
	StepGenerateProfile,
	StepCheckProfile,
	StepInstallProfile,
}

// StepRecorder persists executed steps.
type StepRecorder interface {
	RecordStep(ctx context.Context, step model.StepRecord) error
}

// Options configures a Workflow. Zero values fall back to defaults.
type Options struct {
	Tools model.Tools
	// ReferenceProfile is the source gamut profile passed to colprof.
	ReferenceProfile string
	// InstallDir receives installed profiles.
	InstallDir string
	// Output receives tool diagnostics and echoed commands.
	Output   io.Writer
	Logger   *zap.Logger
	Recorder StepRecorder
	JobID    string
	// Now is used to timestamp recorded steps.
	Now func() time.Time
}

// Workflow runs the profiling steps for one job. Steps may be called in any
// order; each one only requires the artifacts of its predecessors to exist.
type Workflow struct {
	job              *job.Job
	exec             runner.Executor
	tools            model.Tools
	referenceProfile string
	installDir       string
	out              io.Writer
	logger           *zap.Logger
	recorder         StepRecorder
	jobID            string
	now              func() time.Time
}

// New returns a Workflow for j that runs tools through exec.
func New(j *job.Job, exec runner.Executor, opts Options) *Workflow {
	w := &Workflow{
		job:              j,
		exec:             exec,
		tools:            opts.Tools,
		referenceProfile: opts.ReferenceProfile,
		installDir:       opts.InstallDir,
		out:              opts.Output,
		logger:           logging.OrNop(opts.Logger),
		recorder:         opts.Recorder,
		jobID:            opts.JobID,
		now:              opts.Now,
	}
	if w.tools == (model.Tools{}) {
		w.tools = model.DefaultTools()
		w.tools.Viewer = j.Platform().ChartViewer()
	}
	if w.out == nil {
		w.out = io.Discard
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Job returns the job driven by w.
func (w *Workflow) Job() *job.Job {
	return w.job
}

// GenerateTarget creates the color target description (.ti1).
func (w *Workflow) GenerateTarget(ctx context.Context) error {
	return w.step(ctx, StepGenerateTarget, func() error {
		args, err := TargenArgs(w.job)
		if err != nil {
			return err
		}
		if err := w.ensureProfileDir(); err != nil {
			return err
		}
		return w.stream(ctx, w.tools.Targen, args)
	})
}

// GenerateTIF rasterizes the target into printable 300 DPI charts.
func (w *Workflow) GenerateTIF(ctx context.Context) error {
	return w.step(ctx, StepGenerateTIF, func() error {
		args, err := PrinttargArgs(w.job)
		if err != nil {
			return err
		}
		if err := w.ensureProfileDir(); err != nil {
			return err
		}
		if err := w.job.UpdateTIFFiles(); err != nil {
			return err
		}
		if err := w.stream(ctx, w.tools.Printtarg, args); err != nil {
			return err
		}
		for _, c := range InspectCharts(w.job.TIFFiles()) {
			if c.Err != nil {
				w.logger.Warn("chart not readable", zap.String("path", c.Path), zap.Error(c.Err))
				continue
			}
			w.logger.Info("chart generated",
				zap.String("path", c.Path),
				zap.Int("width_px", c.Width),
				zap.Int("height_px", c.Height),
			)
		}
		return nil
	})
}

// PrintCharts opens the rasterized charts in the platform viewer. It is a
// no-op when no viewer is configured.
func (w *Workflow) PrintCharts(ctx context.Context) error {
	return w.step(ctx, StepPrintCharts, func() error {
		if w.tools.Viewer == "" {
			w.logger.Warn("printing charts is not supported on this platform",
				zap.Stringer("platform", w.job.Platform()))
			return nil
		}
		return w.stream(ctx, w.tools.Viewer, w.job.TIFFiles())
	})
}

// ReadCharts measures the printed charts with an interactive instrument
// session. The tool takes over the terminal and its exit status is ignored.
func (w *Workflow) ReadCharts(ctx context.Context, resume bool, mode ReadMode) error {
	return w.step(ctx, StepReadCharts, func() error {
		args, err := ChartreadArgs(w.job, resume, mode)
		if err != nil {
			return err
		}
		if err := w.ensureProfileDir(); err != nil {
			return err
		}
		argv := append([]string{w.tools.Chartread}, args...)
		w.echo(argv)
		return w.exec.Shell(ctx, argv)
	})
}

// GenerateProfile builds the ICC profile from the measurements.
func (w *Workflow) GenerateProfile(ctx context.Context) error {
	return w.step(ctx, StepGenerateProfile, func() error {
		if w.referenceProfile == "" {
			return fmt.Errorf("reference profile is not configured")
		}
		args, err := ColprofArgs(w.job, w.referenceProfile)
		if err != nil {
			return err
		}
		if err := w.ensureProfileDir(); err != nil {
			return err
		}
		return w.stream(ctx, w.tools.Colprof, args)
	})
}

// CheckProfile reports the profile accuracy against the measurements,
// optionally sorted by color difference.
func (w *Workflow) CheckProfile(ctx context.Context, sortByDE bool) error {
	return w.step(ctx, StepCheckProfile, func() error {
		args, err := ProfcheckArgs(w.job, sortByDE)
		if err != nil {
			return err
		}
		if err := w.ensureProfileDir(); err != nil {
			return err
		}
		return w.stream(ctx, w.tools.Profcheck, args)
	})
}

// InstallProfile copies the generated profile into the install directory.
// A missing profile is an error; a failed copy is logged and swallowed.
func (w *Workflow) InstallProfile(ctx context.Context) error {
	return w.step(ctx, StepInstallProfile, func() error {
		return w.install()
	})
}

func (w *Workflow) ensureProfileDir() error {
	dir, err := w.job.ProfileAbsolutePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	return nil
}

func (w *Workflow) echo(argv []string) {
	w.logger.Debug("running command", zap.String("name", argv[0]), zap.Strings("args", argv[1:]))
	if w.job.OutputCommands() {
		fmt.Fprintf(w.out, "command: %s\n", strings.Join(argv, " "))
	}
}

func (w *Workflow) stream(ctx context.Context, name string, args []string) error {
	w.echo(append([]string{name}, args...))
	return runner.Drain(w.exec.Stream(ctx, name, args...), func(line string) {
		fmt.Fprintln(w.out, line)
	})
}

func (w *Workflow) step(ctx context.Context, name string, fn func() error) error {
	started := w.now()
	w.logger.Debug("step started", zap.String("step", name))
	err := fn()
	if err != nil {
		w.logger.Debug("step failed", zap.String("step", name), zap.Error(err))
	} else {
		w.logger.Info("step finished", zap.String("step", name), zap.Duration("elapsed", w.now().Sub(started)))
	}
	w.record(ctx, name, started, err)
	return err
}

func (w *Workflow) record(ctx context.Context, name string, started time.Time, stepErr error) {
	if w.recorder == nil || w.jobID == "" {
		return
	}
	rec := model.StepRecord{
		JobID:     w.jobID,
		Step:      name,
		StartedAt: started,
		EndedAt:   w.now(),
	}
	if stepErr != nil {
		rec.Err = stepErr.Error()
	}
	if err := w.recorder.RecordStep(ctx, rec); err != nil {
		w.logger.Warn("failed to record step", zap.String("step", name), zap.Error(err))
	}
}
