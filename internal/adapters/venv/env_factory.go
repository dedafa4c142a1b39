// Package venv activates Python virtual environments for command steps.
package venv

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EnvironmentFactory = (*EnvFactory)(nil)

// configFile is written by `python -m venv` at the top of the environment.
const configFile = "pyvenv.cfg"

// EnvFactory implements ports.EnvironmentFactory for virtual environments.
// It produces the variables the venv activate script would export.
type EnvFactory struct {
	mu    sync.Mutex
	cache map[string][]string
}

// NewEnvFactory creates a new EnvFactory.
func NewEnvFactory() *EnvFactory {
	return &EnvFactory{cache: make(map[string][]string)}
}

// GetEnvironment returns VIRTUAL_ENV, VIRTUAL_ENV_PROMPT and the PATH entry
// for envDir. The result is cached once the environment exists on disk.
func (e *EnvFactory) GetEnvironment(ctx context.Context, envDir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(envDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve environment directory"), "env_dir", envDir)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if env, ok := e.cache[dir]; ok {
		return env, nil
	}

	prompt, exists, err := readPrompt(dir)
	if err != nil {
		return nil, err
	}

	env := []string{
		"VIRTUAL_ENV=" + dir,
		"VIRTUAL_ENV_PROMPT=" + prompt,
		"PATH=" + BinDir(dir),
	}
	if exists {
		e.cache[dir] = env
	}
	return env, nil
}

// BinDir returns the directory holding the environment's executables.
func BinDir(dir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(dir, "Scripts")
	}
	return filepath.Join(dir, "bin")
}

// readPrompt reads the prompt from pyvenv.cfg, falling back to the directory
// name. It also reports whether the environment has been created.
func readPrompt(dir string) (string, bool, error) {
	fallback := filepath.Base(dir)

	f, err := os.Open(filepath.Join(dir, configFile)) //nolint:gosec // Path is derived from the configured env dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fallback, false, nil
		}
		return "", false, zerr.With(zerr.Wrap(err, "failed to read environment config"), "env_dir", dir)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if ok && strings.TrimSpace(key) == "prompt" {
			return strings.Trim(strings.TrimSpace(value), `'"`), true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, zerr.With(zerr.Wrap(err, "failed to read environment config"), "env_dir", dir)
	}
	return fallback, true, nil
}
