package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/iccgen/internal/colorcorrect"
	"github.com/verte-zerg/iccgen/internal/config"
	"github.com/verte-zerg/iccgen/internal/history"
	"github.com/verte-zerg/iccgen/internal/historyui"
	"github.com/verte-zerg/iccgen/internal/paper"
	"github.com/verte-zerg/iccgen/internal/runner"
)

var (
	correctProfile    string
	correctImage      string
	correctOut        string
	correctColorspace string
	correctIntent     string

	historyLimit int
	historyPlain bool
)

func newCorrectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Convert an image into a printer profile's color space (cctiff)",
		Args:  cobra.NoArgs,
		RunE:  runCorrectCmd,
	}
	cmd.Flags().StringVar(&correctProfile, "profile", "", "printer profile (.icc or .icm)")
	cmd.Flags().StringVar(&correctImage, "image", "", "input image (.jpg, .tif or .tiff)")
	cmd.Flags().StringVar(&correctOut, "out", "", "output image (default: <image>_corrected_N)")
	cmd.Flags().StringVar(&correctColorspace, "colorspace", "AdobeRGB", "image profile: sRGB, AdobeRGB or a profile path")
	cmd.Flags().StringVar(&correctIntent, "intent", "r", "rendering intent: p, r, s or a")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func runCorrectCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	tools, err := config.ResolveTools(a.cfg.Tools, a.platform)
	if err != nil {
		return err
	}

	out, err := colorcorrect.Correct(cmd.Context(), runner.New(a.platform), colorcorrect.Options{
		PrinterProfile: correctProfile,
		Input:          correctImage,
		Output:         correctOut,
		ImageProfile:   correctColorspace,
		Intent:         correctIntent,
		Cctiff:         tools.Cctiff,
		Profiles:       a.profiles,
		Stdout:         cmd.OutOrStdout(),
		Logger:         a.logger,
	})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPapersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "papers",
		Short: "List supported paper sizes and patch counts",
		Args:  cobra.NoArgs,
		RunE:  runPapersCmd,
	}
}

func runPapersCmd(cmd *cobra.Command, _ []string) error {
	headers := []string{"Name", "Width (mm)", "Height (mm)", "Normal", "High"}
	rows := make([][]string, 0, len(paper.Names()))
	for _, s := range paper.All() {
		normal, err := paper.PatchCount(s, paper.NormalDensity)
		if err != nil {
			return err
		}
		high, err := paper.PatchCount(s, paper.HighDensity)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			s.Name(),
			fmt.Sprintf("%.1f", s.Width()),
			fmt.Sprintf("%.1f", s.Height()),
			fmt.Sprintf("%d", normal),
			fmt.Sprintf("%d", high),
		})
	}
	right := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range history.FormatTable(headers, rows, right) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show profiling job history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "last", 0, "limit to the last N jobs")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a plain table instead of the interactive view")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	if historyPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := history.BuildReport(cmd.Context(), a.store, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return history.Render(cmd.OutOrStdout(), report)
	}

	model := historyui.NewModel(a.store, historyLimit)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}
