// Package shell provides the executor that runs command steps as processes.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/zerr"
)

// blockedEnvVars are removed from the inherited environment because they
// break interpreters running inside a virtual environment.
var blockedEnvVars = map[string]struct{}{
	"PYTHONHOME": {},
}

// Executor implements ports.Executor using os/exec and pty.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs one step of cmd and waits for it to complete.
// Steps with a stdout redirect write to a temporary file next to the target
// which replaces the target only when the step succeeds.
func (e *Executor) Execute(
	ctx context.Context,
	cmd *domain.Command,
	step domain.Step,
	env []string,
	stdout, stderr io.Writer,
) error {
	if len(step.Argv) == 0 {
		return domain.ErrEmptyStep
	}

	cmdEnv := resolveEnvironment(os.Environ(), env, cmd.Environment)
	build := func() *exec.Cmd {
		return newCmd(ctx, step.Argv, cmd.WorkingDir.String(), cmdEnv)
	}

	var err error
	if step.Stdout != "" {
		err = runRedirected(build(), step.Stdout, stderr)
	} else {
		err = runPTY(build, stdout, stderr)
	}
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
}

func newCmd(ctx context.Context, argv []string, dir string, env []string) *exec.Cmd {
	name := argv[0]

	// Resolve the executable against the step environment so activated
	// commands find the virtual environment's binaries first.
	executable := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // user provided command
	c.Args[0] = name
	c.Dir = dir
	c.Env = env
	return c
}

// runPTY runs the command attached to a pseudo terminal so tools keep their
// colored output. Without a usable terminal device it falls back to pipes.
func runPTY(build func() *exec.Cmd, stdout, stderr io.Writer) error {
	cmd := build()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		cmd = build()
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		return cmd.Run()
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		// The PTY merges stdout and stderr.
		_, _ = io.Copy(stdout, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	return err
}

// runRedirected runs the command with stdout going to target. The target is
// overwritten atomically and left untouched when the command fails.
func runRedirected(cmd *exec.Cmd, target string, stderr io.Writer) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRedirectFailed.Error()), "file", target)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRedirectFailed.Error()), "file", target)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	cmd.Stdout = tmp
	cmd.Stderr = stderr

	runErr := cmd.Run()
	closeErr := tmp.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return zerr.With(zerr.Wrap(closeErr, domain.ErrRedirectFailed.Error()), "file", target)
	}

	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRedirectFailed.Error()), "file", target)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRedirectFailed.Error()), "file", target)
	}
	return nil
}

// resolveEnvironment merges environment variables with the defined priority:
// the inherited environment, then the virtual environment (PATH is
// prepended), then the command's own variables.
func resolveEnvironment(sysEnv, venvEnv []string, cmdEnv map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)
	applyVenvEnv(envMap, venvEnv)

	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string, len(sysEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, blocked := blockedEnvVars[k]; blocked {
			continue
		}
		envMap[k] = v
	}
	return envMap
}

func applyVenvEnv(envMap map[string]string, venvEnv []string) {
	for _, entry := range venvEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
				continue
			}
		}
		envMap[k] = v
	}
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
