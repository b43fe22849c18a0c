package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single command
const DefaultTimeout = 5 * time.Minute

// Command describes one external process invocation
type Command struct {
	Name        string            `json:"name" yaml:"name" toml:"name"`
	Args        []string          `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
	Dir         string            `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// String renders the command line for logs and plans
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return strings.Join(parts, " ")
}

// Result represents the result of a command execution
type Result struct {
	Command  Command       `json:"command" yaml:"command" toml:"command"`
	Success  bool          `json:"success" yaml:"success" toml:"success"`
	DryRun   bool          `json:"dryRun,omitempty" yaml:"dryRun,omitempty" toml:"dry_run,omitempty"`
	Stdout   string        `json:"stdout,omitempty" yaml:"stdout,omitempty" toml:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty" yaml:"stderr,omitempty" toml:"stderr,omitempty"`
	ExitCode int           `json:"exitCode" yaml:"exitCode" toml:"exit_code"`
	Duration time.Duration `json:"duration" yaml:"duration" toml:"duration"`
	Err      error         `json:"-" yaml:"-" toml:"-"`
}

// Runner runs external commands
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger   zerolog.Logger
	dryRun   bool
	timeout  time.Duration
	stdout   io.Writer
	stderr   io.Writer
	lookPath func(string) (string, error)
}

// Option configures an ExecRunner
type Option func(*ExecRunner)

// WithDryRun makes the runner log commands instead of running them
func WithDryRun(dryRun bool) Option {
	return func(r *ExecRunner) { r.dryRun = dryRun }
}

// WithTimeout sets the per-command timeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithOutput sets where command output is echoed. nil discards it.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *ExecRunner) {
		r.stdout = orDiscard(stdout)
		r.stderr = orDiscard(stderr)
	}
}

// NewExecRunner creates a new command runner
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		logger:   logging.GetLogger("executor"),
		timeout:  DefaultTimeout,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and returns its outcome. It never returns a nil Err for a
// failed command.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	result := Result{Command: cmd}

	if cmd.Name == "" {
		result.Err = errors.New(errors.ErrInvalidInput, "command name is required")
		return result
	}

	r.logger.Info().
		Str("command", cmd.Name).
		Strs("args", cmd.Args).
		Str("workingDir", cmd.Dir).
		Str("description", cmd.Description).
		Msg("Executing command")

	if r.dryRun {
		r.logger.Info().Str("command", cmd.String()).Msg("Dry run mode - command would be executed")
		result.Success = true
		result.DryRun = true
		return result
	}

	path, err := r.lookPath(cmd.Name)
	if err != nil {
		result.ExitCode = -1
		result.Err = errors.Wrapf(err, errors.ErrCommandNotFound, "command not found: %s", cmd.Name).
			WithDetail("command", cmd.Name)
		return result
	}

	if cmd.Dir != "" {
		if _, err := os.Stat(cmd.Dir); err != nil {
			result.ExitCode = -1
			result.Err = errors.Wrapf(err, errors.ErrFileAccess,
				"working directory does not exist: %s", cmd.Dir)
			return result
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), envList(cmd.Env)...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	runErr := c.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	// Echo output so it shows up in build logs
	if stdout.Len() > 0 {
		_, _ = io.Copy(r.stdout, &stdout)
		r.logger.Debug().Str("output", result.Stdout).Msg("Command stdout")
	}
	if stderr.Len() > 0 {
		_, _ = io.Copy(r.stderr, &stderr)
		r.logger.Debug().Str("output", result.Stderr).Msg("Command stderr")
	}

	if runErr != nil {
		result.Err = r.classify(runCtx, cmd, runErr, &result)
		r.logger.Warn().
			Err(result.Err).
			Str("command", cmd.Name).
			Strs("args", cmd.Args).
			Int("exitCode", result.ExitCode).
			Msg("Command execution failed")
		return result
	}

	result.Success = true
	r.logger.Info().
		Str("command", cmd.Name).
		Dur("duration", result.Duration).
		Msg("Command executed successfully")
	return result
}

func (r *ExecRunner) classify(ctx context.Context, cmd Command, runErr error, result *Result) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		return errors.Wrapf(runErr, errors.ErrCommandTimeout,
			"%s timed out after %s", cmd.Name, r.timeout).
			WithDetail("command", cmd.Name)
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return errors.Wrapf(runErr, errors.ErrCommandFailed,
			"%s exited with status %d", cmd.Name, result.ExitCode).
			WithDetail("command", cmd.Name).
			WithDetail("exitCode", result.ExitCode)
	}

	result.ExitCode = -1
	return errors.Wrapf(runErr, errors.ErrCommandFailed, "failed to execute command: %s", cmd.Name).
		WithDetail("command", cmd.Name)
}

// envList renders extra environment variables in a stable order
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
