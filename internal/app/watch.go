package app

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"go.trai.ch/chore/internal/adapters/watcher" //nolint:depguard // debouncing and hashing are shared with the watcher adapter
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch runs the requested commands, then runs them again whenever the
// content of one of their inputs or the configuration file changes. Failures
// are logged and watching continues until ctx ends.
func (a *App) Watch(ctx context.Context, names []string, opts RunOptions) error {
	graph, err := a.load()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return domain.ErrNoCommandsSpecified
	}
	plan, err := graph.Plan(names)
	if err != nil {
		return err
	}

	// Re-runs replace the view, so it never waits for the user.
	opts.Inspect = false

	configPath := filepath.Join(graph.Root(), domain.ConfigFileName)
	var watched atomic.Pointer[[]string]
	paths := watchedPaths(graph, plan)
	watched.Store(&paths)

	if err := a.watcher.Start(ctx, graph.Root()); err != nil {
		return zerr.Wrap(err, "failed to start watching")
	}
	defer func() { _ = a.watcher.Stop() }()

	var configChanged atomic.Bool
	trigger := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(changed []string) {
		if slices.Contains(changed, configPath) {
			configChanged.Store(true)
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range a.watcher.Events() {
			if matchesAny(*watched.Load(), event.Path) {
				debouncer.Add(event.Path)
			}
		}
	}()

	hashes := watcher.NewHashCache(a.hasher)
	for {
		if err := a.run(ctx, graph, names, opts); err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrInterrupted) {
				return err
			}
			a.logger.Error(err)
		}
		hashes.Changed(plan, graph.Root())

		a.logger.Info("watching for changes")
		for changed := false; !changed; {
			select {
			case <-ctx.Done():
				return nil
			case <-trigger:
			}
			changed = configChanged.Swap(false) || hashes.Changed(plan, graph.Root())
		}

		reloaded, err := a.load()
		if err != nil {
			a.logger.Error(err)
			continue
		}
		replanned, err := reloaded.Plan(names)
		if err != nil {
			a.logger.Error(err)
			continue
		}
		graph, plan = reloaded, replanned
		paths := watchedPaths(graph, plan)
		watched.Store(&paths)
	}
}

// watchedPaths returns the configuration file and the inputs and required
// files of every planned command, as absolute paths.
func watchedPaths(graph *domain.Graph, plan []domain.Command) []string {
	root := graph.Root()
	paths := []string{filepath.Join(root, domain.ConfigFileName)}

	for i := range plan {
		for _, p := range slices.Concat(plan[i].Inputs, plan[i].Requires) {
			path := p.String()
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			paths = append(paths, filepath.Clean(path))
		}
	}
	return paths
}

// matchesAny reports whether path is one of the watched paths, lies below
// one, or matches one as a glob pattern.
func matchesAny(watched []string, path string) bool {
	path = filepath.Clean(path)
	for _, w := range watched {
		if path == w || strings.HasPrefix(path, w+string(filepath.Separator)) {
			return true
		}
		if ok, _ := filepath.Match(w, path); ok {
			return true
		}
	}
	return false
}
