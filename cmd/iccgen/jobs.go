package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/iccgen/internal/config"
	"github.com/verte-zerg/iccgen/internal/job"
	"github.com/verte-zerg/iccgen/internal/model"
	"github.com/verte-zerg/iccgen/internal/runner"
	"github.com/verte-zerg/iccgen/internal/store"
	"github.com/verte-zerg/iccgen/internal/workflow"
)

var (
	newPrinterBrand  string
	newPrinterModel  string
	newPaperBrand    string
	newPaperModel    string
	newPaperFinish   string
	newPaperSize     string
	newInkBrand      string
	newPages         int
	newGrayPatches   int
	newNormalDensity bool
	newCopyright     string
	newPrecondition  string
	newProfileName   string
	newSettingsOut   string
)

func newNewCmd() *cobra.Command {
	defaults := job.DefaultParams()
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a profiling job and save its settings",
		Args:  cobra.NoArgs,
		RunE:  runNewCmd,
	}
	cmd.Flags().StringVar(&newPrinterBrand, "printer-brand", defaults.PrinterBrand, "printer brand")
	cmd.Flags().StringVar(&newPrinterModel, "printer-model", defaults.PrinterModel, "printer model")
	cmd.Flags().StringVar(&newPaperBrand, "paper-brand", defaults.PaperBrand, "paper brand")
	cmd.Flags().StringVar(&newPaperModel, "paper-model", defaults.PaperModel, "paper model")
	cmd.Flags().StringVar(&newPaperFinish, "paper-finish", defaults.PaperFinish, "paper finish")
	cmd.Flags().StringVar(&newPaperSize, "paper-size", defaults.PaperSize.Name(), "paper size name (see: iccgen papers)")
	cmd.Flags().StringVar(&newInkBrand, "ink-brand", defaults.InkBrand, "ink brand")
	cmd.Flags().IntVar(&newPages, "pages", defaults.NumberOfPages, "number of chart pages")
	cmd.Flags().IntVar(&newGrayPatches, "gray-patches", defaults.GrayPatchCount, "number of gray patches")
	cmd.Flags().BoolVar(&newNormalDensity, "normal-density", false, "use the ColorMunki layout instead of the i1 Pro high density layout")
	cmd.Flags().StringVar(&newCopyright, "copyright", "", "copyright embedded in the profile")
	cmd.Flags().StringVar(&newPrecondition, "precondition", "", "profile used to precondition the target")
	cmd.Flags().StringVar(&newProfileName, "profile-name", "", "override the generated profile name")
	cmd.Flags().StringVar(&newSettingsOut, "settings", "", "settings file to write (default: next to the job artifacts)")
	return cmd
}

func runNewCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	j, err := a.newJob()
	if err != nil {
		return err
	}
	set := func(flag, field string, value any) error {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		return j.Set(field, value)
	}
	errs := []error{
		set("printer-brand", job.FieldPrinterBrand, newPrinterBrand),
		set("printer-model", job.FieldPrinterModel, newPrinterModel),
		set("paper-brand", job.FieldPaperBrand, newPaperBrand),
		set("paper-model", job.FieldPaperModel, newPaperModel),
		set("paper-finish", job.FieldPaperFinish, newPaperFinish),
		set("paper-size", job.FieldPaperSize, newPaperSize),
		set("ink-brand", job.FieldInkBrand, newInkBrand),
		set("pages", job.FieldNumberOfPages, newPages),
		set("gray-patches", job.FieldGrayPatchCount, newGrayPatches),
		set("normal-density", job.FieldUseHighDensityMode, !newNormalDensity),
		set("copyright", job.FieldCopyrightInfo, newCopyright),
		set("precondition", job.FieldPreconditionProfilePath, newPrecondition),
		set("profile-name", job.FieldProfileName, newProfileName),
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if _, err := j.PatchCount(); err != nil {
		return err
	}

	path, err := j.SaveSettings(newSettingsOut)
	if err != nil {
		return err
	}
	if path, err = filepath.Abs(path); err != nil {
		return fmt.Errorf("failed to resolve settings path: %w", err)
	}
	rec, err := a.store.InsertJob(cmd.Context(), model.JobRecord{
		ProfileName:  j.ProfileName(),
		SettingsPath: path,
		Params:       j.Params(),
	})
	if err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}
	a.logger.Info("job created", zap.String("id", rec.ID), zap.String("profile", rec.ProfileName))
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// newJob creates a job with the config file [job] table applied.
func (a *app) newJob() (*job.Job, error) {
	j, err := job.New(job.DefaultParams(), job.WithPlatform(a.platform), job.WithCacheRoot(a.cacheRoot))
	if err != nil {
		return nil, err
	}
	if err := j.SetAll(a.cfg.Job); err != nil {
		return nil, fmt.Errorf("invalid [job] config: %w", err)
	}
	if printCommands {
		j.SetOutputCommands(true)
	}
	return j, nil
}

// resumeJob rebuilds a job from its settings file and history record. An
// empty path resumes the most recent job.
func (a *app) resumeJob(ctx context.Context, settingsPath string) (*job.Job, model.JobRecord, error) {
	var rec model.JobRecord
	var err error
	if settingsPath == "" {
		rec, err = a.store.LatestJob(ctx)
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, rec, fmt.Errorf("no job found, create one with: iccgen new")
		}
		if err != nil {
			return nil, rec, fmt.Errorf("failed to load latest job: %w", err)
		}
		settingsPath = rec.SettingsPath
	} else {
		if settingsPath, err = filepath.Abs(settingsPath); err != nil {
			return nil, rec, fmt.Errorf("failed to resolve settings path: %w", err)
		}
		rec, err = a.store.JobBySettingsPath(ctx, settingsPath)
		if err != nil && !errors.Is(err, store.ErrJobNotFound) {
			return nil, rec, fmt.Errorf("failed to load job: %w", err)
		}
		if errors.Is(err, store.ErrJobNotFound) {
			a.logger.Warn("job is not in the history, using defaults for unsaved fields",
				zap.String("settings", settingsPath))
		}
	}

	j, err := a.newJob()
	if err != nil {
		return nil, rec, err
	}
	if err := j.LoadSettings(settingsPath); err != nil {
		return nil, rec, err
	}
	if rec.ID != "" {
		if err := j.ApplyParams(rec.Params); err != nil {
			return nil, rec, err
		}
		if rec.ProfileName != j.RenderProfileName() {
			j.SetProfileName(rec.ProfileName)
		}
	}
	return j, rec, nil
}

func (a *app) newWorkflow(cmd *cobra.Command, j *job.Job, jobID string) (*workflow.Workflow, error) {
	tools, err := config.ResolveTools(a.cfg.Tools, a.platform)
	if err != nil {
		return nil, err
	}
	opts := workflow.Options{
		Tools:            tools,
		ReferenceProfile: a.reference,
		InstallDir:       a.installDir,
		Output:           cmd.OutOrStdout(),
		Logger:           a.logger,
		JobID:            jobID,
	}
	if a.store != nil {
		opts.Recorder = a.store
	}
	return workflow.New(j, runner.New(a.platform), opts), nil
}

type stepFunc func(ctx context.Context, w *workflow.Workflow) error

func newStepCmd(use, short string, run stepFunc) *cobra.Command {
	var settingsPath string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.openStore(); err != nil {
				return err
			}
			j, rec, err := a.resumeJob(cmd.Context(), settingsPath)
			if err != nil {
				return err
			}
			w, err := a.newWorkflow(cmd, j, rec.ID)
			if err != nil {
				return err
			}
			a.logger.Debug("running step", zap.String("command", use), zap.String("profile", j.ProfileName()))
			return run(cmd.Context(), w)
		},
	}
	cmd.Flags().StringVar(&settingsPath, "settings", "", "job settings file (default: most recent job)")
	return cmd
}

func newStepCmds() []*cobra.Command {
	var (
		readResume       bool
		readPatchByPatch bool
		checkSort        bool
	)

	targetCmd := newStepCmd("target", "Generate the color target (targen)", func(ctx context.Context, w *workflow.Workflow) error {
		return w.GenerateTarget(ctx)
	})
	tifCmd := newStepCmd("tif", "Rasterize the target into printable charts (printtarg)", func(ctx context.Context, w *workflow.Workflow) error {
		return w.GenerateTIF(ctx)
	})
	printCmd := newStepCmd("print", "Open the charts in the platform print tool", func(ctx context.Context, w *workflow.Workflow) error {
		if err := w.Job().UpdateTIFFiles(); err != nil {
			return err
		}
		return w.PrintCharts(ctx)
	})
	readCmd := newStepCmd("read", "Measure the printed charts (chartread)", func(ctx context.Context, w *workflow.Workflow) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			logErrln("warning: stdin is not a terminal, chartread needs interactive input")
		}
		mode := workflow.StripMode
		if readPatchByPatch {
			mode = workflow.PatchByPatchMode
		}
		return w.ReadCharts(ctx, readResume, mode)
	})
	readCmd.Flags().BoolVar(&readResume, "resume", false, "resume an interrupted reading session")
	readCmd.Flags().BoolVar(&readPatchByPatch, "patch-by-patch", false, "read one patch at a time")
	profileCmd := newStepCmd("profile", "Build the ICC profile from the measurements (colprof)", func(ctx context.Context, w *workflow.Workflow) error {
		return w.GenerateProfile(ctx)
	})
	checkCmd := newStepCmd("check", "Report the profile accuracy (profcheck)", func(ctx context.Context, w *workflow.Workflow) error {
		return w.CheckProfile(ctx, checkSort)
	})
	checkCmd.Flags().BoolVar(&checkSort, "sort", false, "sort patches by color difference")
	installCmd := newStepCmd("install", "Copy the profile into the system profile directory", func(ctx context.Context, w *workflow.Workflow) error {
		return w.InstallProfile(ctx)
	})

	return []*cobra.Command{targetCmd, tifCmd, printCmd, readCmd, profileCmd, checkCmd, installCmd}
}
