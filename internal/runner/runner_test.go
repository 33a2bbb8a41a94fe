package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/iccgen/internal/platform"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("runner tests use sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return New(platform.Posix).WithStdio(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
}

func collect(t *testing.T, r *Runner, script string) ([]string, error) {
	t.Helper()
	var lines []string
	err := Drain(r.Stream(context.Background(), "sh", "-c", script), func(line string) {
		lines = append(lines, line)
	})
	return lines, err
}

func TestStreamYieldsTrimmedStderrLines(t *testing.T) {
	r := newTestRunner(t)
	lines, err := collect(t, r, `echo "  first  " >&2; echo ignored; echo second >&2`)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, lines)
}

func TestStreamKeepsBlankLines(t *testing.T) {
	r := newTestRunner(t)
	lines, err := collect(t, r, `echo head >&2; echo >&2; echo "   " >&2; echo tail >&2`)
	require.NoError(t, err)
	assert.Equal(t, []string{"head", "", "", "tail"}, lines)
}

func TestStreamNonZeroExit(t *testing.T) {
	r := newTestRunner(t)
	lines, err := collect(t, r, `echo bad patch >&2; echo giving up >&2; exit 3`)
	assert.Equal(t, []string{"bad patch", "giving up"}, lines)

	var cerr *CommandError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	assert.Equal(t, 3, cerr.ExitCode)
	assert.Equal(t, "sh", cerr.Name)
	assert.Equal(t, "bad patch\ngiving up", cerr.Stderr)
	assert.Contains(t, err.Error(), "giving up")
}

func TestStreamLargeOutputDoesNotBlock(t *testing.T) {
	r := newTestRunner(t)
	lines, err := collect(t, r, `i=0; while [ $i -lt 5000 ]; do echo "line $i" >&2; i=$((i+1)); done`)
	require.NoError(t, err)
	assert.Len(t, lines, 5000)
}

func TestStreamEarlyBreakDrainsProcess(t *testing.T) {
	r := newTestRunner(t)
	count := 0
	for line, err := range r.Stream(context.Background(), "sh", "-c", `for i in 1 2 3 4 5; do echo $i >&2; done; exit 1`) {
		require.NoError(t, err)
		count++
		if line == "2" {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestStreamIsRestartablePerRange(t *testing.T) {
	r := newTestRunner(t)
	seq := r.Stream(context.Background(), "sh", "-c", `echo once >&2`)
	for range 2 {
		var got []string
		require.NoError(t, Drain(seq, func(line string) { got = append(got, line) }))
		assert.Equal(t, []string{"once"}, got)
	}
}

func TestStreamMissingBinary(t *testing.T) {
	r := newTestRunner(t)
	err := Drain(r.Stream(context.Background(), "iccgen-no-such-tool"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound), "got %v", err)
}

func TestStreamCancelled(t *testing.T) {
	r := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Drain(r.Stream(ctx, "sh", "-c", "sleep 5"), nil)
	require.Error(t, err)
}

func TestShellJoinsArgsAndIgnoresExitStatus(t *testing.T) {
	r := newTestRunner(t)
	out := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, r.Shell(context.Background(), []string{"echo", "-n", "read", "-T 0.4", ">", out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "read -T 0.4", string(data))

	assert.NoError(t, r.Shell(context.Background(), []string{"exit", "7"}))
}

func TestCommandErrorMessage(t *testing.T) {
	err := &CommandError{Name: "targen", ExitCode: 1}
	assert.Equal(t, "targen exited with status 1", err.Error())
}
