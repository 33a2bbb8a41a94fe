// Package runnertest provides an Executor that records commands instead of
// running them.
package runnertest

import (
	"context"
	"iter"
	"sync"

	"github.com/verte-zerg/iccgen/internal/runner"
)

// Call is one recorded command.
type Call struct {
	Argv  []string
	Shell bool
}

// Recorder implements runner.Executor by recording every command. Each
// Stream yields Lines followed by Err when set.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	Lines []string
	Err   error
	// OnCall runs after a command is recorded, e.g. to create the artifact
	// the real tool would have produced.
	OnCall func(Call)
}

// Stream records name and args and replays the configured output.
func (r *Recorder) Stream(_ context.Context, name string, args ...string) iter.Seq2[string, error] {
	call := Call{Argv: append([]string{name}, args...)}
	return func(yield func(string, error) bool) {
		r.record(call)
		for _, line := range r.Lines {
			if !yield(line, nil) {
				return
			}
		}
		if r.Err != nil {
			yield("", r.Err)
		}
	}
}

// Shell records args as a shell command.
func (r *Recorder) Shell(_ context.Context, args []string) error {
	r.record(Call{Argv: append([]string(nil), args...), Shell: true})
	return nil
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.OnCall != nil {
		r.OnCall(c)
	}
}

// Calls returns the recorded commands in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent command.
func (r *Recorder) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}

var _ runner.Executor = (*Recorder)(nil)
