// Package dispatcher runs the commands of a plan in order, stopping at the
// first failure.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/zerr"
)

// BuiltinFunc implements a command that runs inside chore. Output written to
// w is shown like the output of an external step.
type BuiltinFunc func(ctx context.Context, graph *domain.Graph, w io.Writer) error

// Options controls a single run.
type Options struct {
	// NoCache runs cacheable commands even when they are already satisfied.
	NoCache bool
	// DryRun prints the steps that would run without executing them.
	DryRun bool
}

// Dispatcher executes planned commands step by step.
type Dispatcher struct {
	executor   ports.Executor
	store      ports.RunInfoStore
	hasher     ports.Hasher
	verifier   ports.Verifier
	envFactory ports.EnvironmentFactory
	tracer     ports.Tracer
	logger     ports.Logger
	builtins   map[domain.Builtin]BuiltinFunc
}

// New creates a new Dispatcher with the given dependencies.
func New(
	executor ports.Executor,
	store ports.RunInfoStore,
	hasher ports.Hasher,
	verifier ports.Verifier,
	envFactory ports.EnvironmentFactory,
	tracer ports.Tracer,
	log ports.Logger,
) *Dispatcher {
	return &Dispatcher{
		executor:   executor,
		store:      store,
		hasher:     hasher,
		verifier:   verifier,
		envFactory: envFactory,
		tracer:     tracer,
		logger:     log,
		builtins:   make(map[domain.Builtin]BuiltinFunc),
	}
}

// RegisterBuiltin installs the implementation of a builtin command.
func (d *Dispatcher) RegisterBuiltin(b domain.Builtin, fn BuiltinFunc) {
	d.builtins[b] = fn
}

// Run plans the requested commands and executes them in order.
// Prerequisites run first and at most once. The first failure stops the run.
func (d *Dispatcher) Run(ctx context.Context, graph *domain.Graph, targets []string, opts Options) error {
	if len(targets) == 0 {
		return domain.ErrNoCommandsSpecified
	}

	plan, err := graph.Plan(targets)
	if err != nil {
		return err
	}

	names := make([]string, len(plan))
	prerequisites := make(map[string][]string, len(plan))
	for i := range plan {
		name := plan[i].Name.String()
		names[i] = name
		deps := make([]string, len(plan[i].Prerequisites))
		for j, dep := range plan[i].Prerequisites {
			deps[j] = dep.String()
		}
		prerequisites[name] = deps
	}
	d.tracer.EmitPlan(ctx, names, prerequisites, targets)

	for i := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.runCommand(ctx, graph, &plan[i], opts); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCommandExecutionFailed.Error()), "command", names[i])
		}
	}
	return nil
}

func (d *Dispatcher) runCommand(ctx context.Context, graph *domain.Graph, cmd *domain.Command, opts Options) error {
	ctx, span := d.tracer.Start(ctx, cmd.Name.String())
	defer span.End()

	err := d.execute(ctx, span, graph, cmd, opts)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (d *Dispatcher) execute(ctx context.Context, span ports.Span, graph *domain.Graph, cmd *domain.Command, opts Options) error {
	if err := checkRequirements(graph.Root(), cmd); err != nil {
		return err
	}

	if cmd.Builtin != domain.BuiltinNone {
		fn, ok := d.builtins[cmd.Builtin]
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrBuiltinNotRegistered, "cannot run "+cmd.Name.String()), "builtin", cmd.Builtin.String())
		}
		return fn(ctx, graph, span)
	}

	if opts.DryRun {
		for _, step := range cmd.Steps {
			echoStep(span, step)
		}
		return nil
	}

	var hash string
	if cmd.Cacheable() {
		var satisfied bool
		var err error
		satisfied, hash, err = d.checkSatisfied(graph.Root(), cmd, opts.NoCache)
		if err != nil {
			return err
		}
		if satisfied {
			span.SetAttribute(ports.AttributeCached, true)
			return nil
		}
	}

	var env []string
	if cmd.Activate {
		var err error
		env, err = d.envFactory.GetEnvironment(ctx, graph.EnvDir())
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to activate environment"), "env_dir", graph.EnvDir())
		}
	}

	for i, step := range cmd.Steps {
		echoStep(span, step)
		if err := d.executor.Execute(ctx, cmd, step, env, span, span); err != nil {
			return newStepError(cmd, i, step, err)
		}
	}

	if hash != "" {
		err := d.store.Put(domain.RunInfo{
			CommandName: cmd.Name.String(),
			InputHash:   hash,
			Timestamp:   time.Now(),
		})
		if err != nil {
			d.logger.Warn(fmt.Sprintf("failed to record run state for %s: %v", cmd.Name, err))
		}
	}
	return nil
}

// checkSatisfied reports whether the command's inputs are unchanged since its
// last successful run and its outputs still exist. The input hash is returned
// so a successful run can be recorded.
func (d *Dispatcher) checkSatisfied(root string, cmd *domain.Command, noCache bool) (bool, string, error) {
	hash, err := d.hasher.ComputeInputHash(cmd, cmd.Environment, root)
	if err != nil {
		return false, "", zerr.Wrap(err, domain.ErrInputHashComputationFailed.Error())
	}
	if noCache {
		return false, hash, nil
	}

	info, err := d.store.Get(cmd.Name.String())
	if err != nil {
		return false, "", err
	}
	if info == nil || info.InputHash != hash {
		return false, hash, nil
	}

	outputs := make([]string, len(cmd.Outputs))
	for i, out := range cmd.Outputs {
		outputs[i] = out.String()
	}
	ok, err := d.verifier.VerifyOutputs(root, outputs)
	if err != nil || !ok {
		return false, hash, nil //nolint:nilerr // unverifiable outputs mean the command runs again
	}
	return true, hash, nil
}

func checkRequirements(root string, cmd *domain.Command) error {
	for _, req := range cmd.Requires {
		path := req.String()
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrRequiredFileMissing, "cannot run "+cmd.Name.String()), "file", path)
		}
	}
	return nil
}

func echoStep(w io.Writer, step domain.Step) {
	line := "$ " + strings.Join(step.Argv, " ")
	if step.Stdout != "" {
		line += " > " + step.Stdout
	}
	_, _ = fmt.Fprintln(w, line)
}

func newStepError(cmd *domain.Command, index int, step domain.Step, err error) error {
	stepErr := &domain.StepError{
		Command: cmd.Name.String(),
		Index:   index,
		Argv:    step.Argv,
		Err:     err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stepErr.ExitCode = exitErr.ExitCode()
	}
	return stepErr
}
