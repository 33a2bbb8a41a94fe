// Package main provides the CLI entrypoint for iccgen.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/iccgen/internal/config"
	"github.com/verte-zerg/iccgen/internal/logging"
	"github.com/verte-zerg/iccgen/internal/paper"
	"github.com/verte-zerg/iccgen/internal/platform"
	"github.com/verte-zerg/iccgen/internal/refprofile"
	"github.com/verte-zerg/iccgen/internal/store"
)

var (
	logLevel      string
	logFormat     string
	logOutput     string
	printCommands bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "iccgen",
		Short:         "Printer ICC profile generator driving ArgyllCMS",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaults := logging.DefaultConfig()
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.Level, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaults.Format, "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", defaults.Output, "log output (stderr, stdout or a file path)")
	rootCmd.PersistentFlags().BoolVar(&printCommands, "print-commands", false, "print every external command before running it")

	rootCmd.AddCommand(newNewCmd())
	for _, cmd := range newStepCmds() {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newCorrectCmd())
	rootCmd.AddCommand(newPapersCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the resolved configuration shared by the subcommands.
type app struct {
	cfg        config.FileConfig
	logger     *zap.Logger
	platform   platform.OS
	cacheRoot  string
	installDir string
	profiles   refprofile.Dir
	reference  string
	store      *store.Store
}

func newApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "log-output", &logOutput, fileCfg.Log.Output)

	logger, err := logging.New(logging.Config{Level: logLevel, Format: logFormat, Output: logOutput})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	o := platform.Current()
	profiles := refprofile.Dir(config.StringOr(fileCfg.Paths.ProfilesDir, config.DefaultProfilesDir()))
	a := &app{
		cfg:        fileCfg,
		logger:     logger,
		platform:   o,
		cacheRoot:  config.StringOr(fileCfg.Paths.CacheRoot, config.CacheRoot(o)),
		installDir: config.StringOr(fileCfg.Paths.InstallDir, config.InstallDir(o)),
		profiles:   profiles,
		reference:  config.StringOr(fileCfg.Paths.ReferenceProfile, profiles.Path(refprofile.AdobeRGB)),
	}
	logger.Debug("configuration resolved",
		zap.Stringer("platform", o),
		zap.String("cache_root", a.cacheRoot),
		zap.String("install_dir", a.installDir),
		zap.String("reference_profile", a.reference),
	)
	return a, nil
}

func (a *app) openStore() error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st
	return nil
}

func (a *app) Close() {
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if serr := a.logger.Sync(); serr != nil {
		// Syncing stderr fails on some terminals.
		_ = serr
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	o := platform.Current()
	return fmt.Sprintf(`# iccgen configuration
# Uncomment a value to enable it. CLI flags override config values.

[job]
# printer_brand = "Canon"
# printer_model = "iX6850"
# paper_brand = "Kodak"
# paper_model = "UPPP"
# paper_finish = "Glossy"
# paper_size = "A4"          # One of: %s
# ink_brand = "CanonInk"
# use_high_density_mode = true
# number_of_pages = 1
# gray_patch_count = 128
# copyright_info = ""
# precondition_profile_path = ""
# output_commands = false

[tools]
# targen = "targen"
# printtarg = "printtarg"
# chartread = "chartread"
# colprof = "colprof"
# profcheck = "profcheck"
# cctiff = "cctiff"
# viewer = %q

[paths]
# cache_root = %q
# install_dir = %q
# profiles_dir = %q
# reference_profile = %q

[log]
# level = "warn"             # debug, info, warn, error
# format = "console"         # console, json
# output = "stderr"          # stderr, stdout or a file path
`,
		strings.Join(paper.Names(), ", "),
		o.ChartViewer(),
		config.CacheRoot(o),
		config.InstallDir(o),
		config.DefaultProfilesDir(),
		refprofile.Dir(config.DefaultProfilesDir()).Path(refprofile.AdobeRGB),
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
