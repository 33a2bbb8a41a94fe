// Package runner executes the external color-management tools.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"strings"

	"github.com/verte-zerg/iccgen/internal/platform"
)

const maxLineSize = 1024 * 1024

// Executor runs external commands. Stream captures diagnostics and detects
// failures; Shell attaches the terminal and does neither.
type Executor interface {
	Stream(ctx context.Context, name string, args ...string) iter.Seq2[string, error]
	Shell(ctx context.Context, args []string) error
}

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	// Stderr holds every diagnostic line joined with newlines.
	Stderr string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.ExitCode, e.Stderr)
}

// Runner is the Executor backed by os/exec.
type Runner struct {
	platform platform.OS
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// New returns a Runner attached to the process stdio.
func New(o platform.OS) *Runner {
	return &Runner{platform: o, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// WithStdio returns a copy of r using the given streams. For Stream only
// stdout is used; stderr is always captured.
func (r *Runner) WithStdio(stdin io.Reader, stdout, stderr io.Writer) *Runner {
	c := *r
	c.stdin, c.stdout, c.stderr = stdin, stdout, stderr
	return &c
}

// Stream starts name with args and yields each trimmed stderr line as it is
// produced. When the process exits with a non-zero status a final
// *CommandError is yielded. The sequence starts a new process every time it
// is ranged over.
func (r *Runner) Stream(ctx context.Context, name string, args ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = r.stdout
		pipe, err := cmd.StderrPipe()
		if err != nil {
			yield("", fmt.Errorf("failed to open stderr of %s: %w", name, err))
			return
		}
		if err := cmd.Start(); err != nil {
			yield("", fmt.Errorf("failed to start %s: %w", name, err))
			return
		}

		var lines []string
		stopped := false
		scanner := bufio.NewScanner(pipe)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			lines = append(lines, line)
			if !stopped && !yield(line, nil) {
				stopped = true
			}
		}
		scanErr := scanner.Err()
		// The pipe must reach EOF before Wait or a chatty child can block.
		if _, err := io.Copy(io.Discard, pipe); err != nil && scanErr == nil {
			scanErr = err
		}
		waitErr := cmd.Wait()
		if stopped {
			return
		}

		if ctx.Err() != nil {
			yield("", fmt.Errorf("%s interrupted: %w", name, ctx.Err()))
			return
		}
		if waitErr != nil {
			var exitErr *exec.ExitError
			if errors.As(waitErr, &exitErr) {
				yield("", &CommandError{
					Name:     name,
					Args:     append([]string(nil), args...),
					ExitCode: exitErr.ExitCode(),
					Stderr:   strings.Join(lines, "\n"),
				})
				return
			}
			yield("", fmt.Errorf("failed to run %s: %w", name, waitErr))
			return
		}
		if scanErr != nil {
			yield("", fmt.Errorf("failed to read output of %s: %w", name, scanErr))
		}
	}
}

// Shell joins args with spaces and runs the line through the host shell with
// the terminal attached. The exit status is not inspected; only a shell that
// cannot be started is reported.
func (r *Runner) Shell(ctx context.Context, args []string) error {
	name, shellArgs := r.platform.ShellCommand(strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, shellArgs...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("failed to start shell: %w", err)
	}
	return nil
}

// Drain consumes seq, passing each line to fn, and returns the first error.
func Drain(seq iter.Seq2[string, error], fn func(string)) error {
	for line, err := range seq {
		if err != nil {
			return err
		}
		if fn != nil {
			fn(line)
		}
	}
	return nil
}

var _ Executor = (*Runner)(nil)
