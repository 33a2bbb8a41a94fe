// Package colorcorrect converts images into a printer's color space with
// cctiff.
package colorcorrect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/iccgen/internal/logging"
	"github.com/verte-zerg/iccgen/internal/refprofile"
	"github.com/verte-zerg/iccgen/internal/runner"
)

const maxOutputIndex = 100000

var (
	profileExts = []string{".icc", ".icm"}
	imageExts   = []string{".jpg", ".tif", ".tiff"}
)

// UnsupportedError reports a value outside its allowed set.
type UnsupportedError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s should be one of %s, not %s", e.Field, strings.Join(e.Allowed, ", "), e.Value)
}

// Intent is a cctiff rendering intent.
type Intent string

// Rendering intents.
const (
	Perceptual Intent = "p"
	Relative   Intent = "r"
	Saturation Intent = "s"
	Absolute   Intent = "a"
)

var intentNames = map[string]Intent{
	"p":          Perceptual,
	"perceptual": Perceptual,
	"r":          Relative,
	"relative":   Relative,
	"s":          Saturation,
	"saturation": Saturation,
	"a":          Absolute,
	"absolute":   Absolute,
}

// ParseIntent accepts a one-letter intent or its long name. The empty string
// selects relative colorimetric.
func ParseIntent(s string) (Intent, error) {
	if s == "" {
		return Relative, nil
	}
	if i, ok := intentNames[strings.ToLower(s)]; ok {
		return i, nil
	}
	return "", &UnsupportedError{Field: "intent", Value: s, Allowed: []string{"p", "r", "s", "a"}}
}

// Options describes one color correction.
type Options struct {
	PrinterProfile string
	Input          string
	// Output is generated next to Input when empty.
	Output string
	// ImageProfile is sRGB, AdobeRGB or the path of a profile file. Empty
	// selects AdobeRGB.
	ImageProfile string
	Intent       string

	// Cctiff is the cctiff binary, "cctiff" when empty.
	Cctiff   string
	Profiles refprofile.Dir
	Stdout   io.Writer
	Logger   *zap.Logger
}

// Correct validates opts, runs cctiff and returns the output image path.
func Correct(ctx context.Context, exec runner.Executor, opts Options) (string, error) {
	logger := logging.OrNop(opts.Logger)
	out := opts.Stdout
	if out == nil {
		out = io.Discard
	}
	bin := opts.Cctiff
	if bin == "" {
		bin = "cctiff"
	}

	if err := checkFile("printer profile", opts.PrinterProfile, profileExts); err != nil {
		return "", err
	}
	if err := checkFile("input image", opts.Input, imageExts); err != nil {
		return "", err
	}
	output := opts.Output
	if output == "" {
		var err error
		if output, err = nextOutputPath(opts.Input); err != nil {
			return "", err
		}
	}
	if !hasExt(output, imageExts) {
		return "", &UnsupportedError{Field: "output image", Value: output, Allowed: imageExts}
	}
	intent, err := ParseIntent(opts.Intent)
	if err != nil {
		return "", err
	}
	imageProfile, err := resolveImageProfile(opts.Profiles, opts.ImageProfile)
	if err != nil {
		return "", err
	}

	args := []string{
		"-i", string(intent),
		"-p", imageProfile,
		opts.PrinterProfile,
		opts.Input,
		output,
	}
	fmt.Fprintf(out, "command: %s\n", strings.Join(append([]string{bin}, args...), " "))
	logger.Debug("running command", zap.String("name", bin), zap.Strings("args", args))
	err = runner.Drain(exec.Stream(ctx, bin, args...), func(line string) {
		fmt.Fprintln(out, line)
	})
	if err != nil {
		return "", fmt.Errorf("failed to correct %s: %w", opts.Input, err)
	}
	logger.Info("image corrected", zap.String("output", output))
	return output, nil
}

func checkFile(field, path string, exts []string) error {
	if path == "" {
		return fmt.Errorf("%s is not set", field)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s doesn't exist: %s", field, path)
		}
		return fmt.Errorf("failed to stat %s: %w", field, err)
	}
	if !hasExt(path, exts) {
		return &UnsupportedError{Field: field, Value: path, Allowed: exts}
	}
	return nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// nextOutputPath returns the first free <stem>_corrected_<N><ext> next to
// input.
func nextOutputPath(input string) (string, error) {
	dir := filepath.Dir(input)
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	for i := 1; i < maxOutputIndex; i++ {
		p := filepath.Join(dir, fmt.Sprintf("%s_corrected_%d%s", stem, i, ext))
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
	}
	return "", fmt.Errorf("no free output name for %s", input)
}

func resolveImageProfile(dir refprofile.Dir, value string) (string, error) {
	if value == "" {
		value = refprofile.AdobeRGB
	}
	if st, err := os.Stat(value); err == nil && !st.IsDir() {
		return value, nil
	}
	stem := strings.TrimSuffix(filepath.Base(value), filepath.Ext(value))
	name, ok := refprofile.Canonical(stem)
	if !ok {
		return "", &UnsupportedError{Field: "image profile", Value: value, Allowed: refprofile.Names}
	}
	return dir.Ensure(name)
}
