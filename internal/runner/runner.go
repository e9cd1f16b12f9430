// Package runner drives the external tools of the page pipeline (splitters,
// croppers, OCR scripts) as shell commands over workspace files.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dgallion1/gridlock/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// ErrNoInput is returned by Parallel when no input file matches.
var ErrNoInput = errors.New("no input files to process")

// Runner executes shell commands.
type Runner struct {
	// Concurrency bounds Parallel. Zero means one per CPU.
	Concurrency int
	Log         *slog.Logger
	Stdout      io.Writer
	Stderr      io.Writer
}

func New(concurrency int, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{Concurrency: concurrency, Log: log}
}

// Run executes command with sh -c.
func (r *Runner) Run(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("command %q failed with exit code %d: %w", command, exitErr.ExitCode(), err)
		}
		return fmt.Errorf("run %q: %w", command, err)
	}
	return nil
}

// Task runs one command that turns Input into Output.
type Task struct {
	Action     string
	EnsureDirs []string
	Input      string
	// Output is a path or glob that must match exactly one file once the
	// command has run.
	Output  string
	Command string
	Force   bool
}

// Single runs a Task unless its output already exists. With Force set the
// output is deleted first.
func (r *Runner) Single(ctx context.Context, t Task) (ran bool, err error) {
	for _, dir := range t.EnsureDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if t.Force {
		if err := workspace.DeleteFiles(t.Output); err != nil {
			return false, fmt.Errorf("delete output: %w", err)
		}
	}
	if workspace.CountFiles(t.Output) == 1 {
		r.log().Info("skipping", "action", t.Action, "output", t.Output)
		return false, nil
	}
	if err := r.Run(ctx, t.Command); err != nil {
		return true, err
	}
	if workspace.CountFiles(t.Output) != 1 {
		return true, fmt.Errorf("%s for %s did not produce %s", t.Action, t.Input, t.Output)
	}
	return true, nil
}

// ParallelTask runs Command once per page key. Inputs are the files
// InputDir/<Prefix>-*.<InputExt>; each key's output is
// OutputDir/<key>.<OutputExt>. Every "{}" in Command is replaced by the key.
type ParallelTask struct {
	Action    string
	Prefix    string
	InputDir  string
	InputExt  string
	OutputDir string
	OutputExt string
	Command   string
	Force     bool
}

// Parallel runs t for every input whose output is missing, or for all of
// them with Force set, and returns the number of commands run. Individual
// command failures are logged; the task fails if any output is still
// missing afterwards.
func (r *Runner) Parallel(ctx context.Context, t ParallelTask) (int, error) {
	for _, dir := range []string{t.InputDir, t.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	inputs, err := filepath.Glob(filepath.Join(t.InputDir, t.Prefix+"-*."+t.InputExt))
	if err != nil {
		return 0, fmt.Errorf("glob inputs: %w", err)
	}
	if len(inputs) == 0 {
		return 0, ErrNoInput
	}

	var keys, outputs []string
	for _, in := range inputs {
		key := workspace.FileKey(in)
		out := filepath.Join(t.OutputDir, key+"."+t.OutputExt)
		if t.Force {
			if err := workspace.DeleteFiles(out); err != nil {
				return 0, fmt.Errorf("delete output: %w", err)
			}
		}
		if t.Force || workspace.CountFiles(out) == 0 {
			keys = append(keys, key)
			outputs = append(outputs, out)
		}
	}
	if len(keys) == 0 {
		r.log().Info("skipping as all files processed", "action", t.Action)
		return 0, nil
	}
	r.log().Info("running", "action", t.Action, "files", len(keys))

	sem := make(chan struct{}, r.concurrency())
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}
			if err := r.Run(gctx, strings.ReplaceAll(t.Command, "{}", key)); err != nil {
				r.log().Warn("command failed", "action", t.Action, "key", key, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return len(keys), err
	}

	missing := 0
	for _, out := range outputs {
		if workspace.CountFiles(out) == 0 {
			missing++
		}
	}
	if missing > 0 {
		return len(keys), fmt.Errorf("failed %s for %d files", t.Action, missing)
	}
	return len(keys), nil
}

func (r *Runner) concurrency() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return runtime.NumCPU()
}

func (r *Runner) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
