package testutil

import (
	"context"
	"sync"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/executor"
)

// FakeRunner implements executor.Runner without starting processes
type FakeRunner struct {
	mu       sync.Mutex
	calls    []executor.Command
	failures map[string]int
	missing  map[string]bool
}

// NewFakeRunner creates a runner where every command succeeds
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		failures: make(map[string]int),
		missing:  make(map[string]bool),
	}
}

// FailWith makes every invocation of name exit with code
func (f *FakeRunner) FailWith(name string, code int) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[name] = code
	return f
}

// Missing makes name behave as if it were not installed
func (f *FakeRunner) Missing(name string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

// Run records cmd and returns the scripted outcome
func (f *FakeRunner) Run(_ context.Context, cmd executor.Command) executor.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)

	if f.missing[cmd.Name] {
		return executor.Result{
			Command:  cmd,
			ExitCode: -1,
			Err:      errors.Newf(errors.ErrCommandNotFound, "command not found: %s", cmd.Name),
		}
	}
	if code, ok := f.failures[cmd.Name]; ok {
		return executor.Result{
			Command:  cmd,
			ExitCode: code,
			Stderr:   "scripted failure",
			Err:      errors.Newf(errors.ErrCommandFailed, "%s exited with status %d", cmd.Name, code),
		}
	}
	return executor.Result{Command: cmd, Success: true}
}

// Calls returns the recorded commands in order
func (f *FakeRunner) Calls() []executor.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]executor.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Names returns the recorded command names in order
func (f *FakeRunner) Names() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Name)
	}
	return out
}
