// Package app implements the application layer for chore.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/chore/internal/adapters/detector"
	"go.trai.ch/chore/internal/adapters/linear"
	"go.trai.ch/chore/internal/adapters/telemetry"
	"go.trai.ch/chore/internal/adapters/tui"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/chore/internal/engine/dispatcher"
	"go.trai.ch/chore/internal/ui/listing"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	dispatcher   *dispatcher.Dispatcher
	tracer       *telemetry.OTelTracer
	logger       ports.Logger
	watcher      ports.Watcher
	hasher       ports.Hasher
	bridge       *telemetry.Bridge
	provider     *sdktrace.TracerProvider
	workDir      string
	stdout       io.Writer
	stderr       io.Writer
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance. The tracer is bound to a private provider
// whose spans are bridged to the renderer of the current run.
func New(
	loader ports.ConfigLoader,
	disp *dispatcher.Dispatcher,
	tracer *telemetry.OTelTracer,
	log ports.Logger,
	watcher ports.Watcher,
	hasher ports.Hasher,
) *App {
	bridge := telemetry.NewBridge(nil)
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	tracer.WithProvider(provider)

	a := &App{
		configLoader: loader,
		dispatcher:   disp,
		tracer:       tracer,
		logger:       log,
		watcher:      watcher,
		hasher:       hasher,
		bridge:       bridge,
		provider:     provider,
		workDir:      ".",
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
	disp.RegisterBuiltin(domain.BuiltinHelp, func(_ context.Context, g *domain.Graph, w io.Writer) error {
		return listing.Write(w, g)
	})
	return a
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithOutput redirects the listing and linear output.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWorkDir sets the directory the configuration is discovered from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// Close releases the telemetry pipeline.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.tracer.Shutdown(ctx), a.provider.Shutdown(ctx))
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	NoCache    bool
	DryRun     bool
	Inspect    bool
	OutputMode string
}

// Run executes the requested commands and their prerequisites.
func (a *App) Run(ctx context.Context, names []string, opts RunOptions) error {
	graph, err := a.load()
	if err != nil {
		return err
	}
	return a.run(ctx, graph, names, opts)
}

// List prints every known command with its description.
func (a *App) List(_ context.Context) error {
	graph, err := a.load()
	if err != nil {
		return err
	}
	return listing.Write(a.stdout, graph)
}

// Prune removes the run state of the project.
func (a *App) Prune(_ context.Context) error {
	root, err := a.configLoader.DiscoverRoot(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to find project root")
	}

	path := filepath.Join(root, domain.DefaultChorePath())
	a.logger.Info(fmt.Sprintf("removing %s", path))
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove run state"), "path", path)
	}
	return nil
}

func (a *App) load() (*domain.Graph, error) {
	graph, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if err := graph.Validate(); err != nil {
		return nil, zerr.Wrap(err, "invalid configuration")
	}
	return graph, nil
}

func (a *App) run(ctx context.Context, graph *domain.Graph, names []string, opts RunOptions) error {
	if len(names) == 0 {
		return domain.ErrNoCommandsSpecified
	}

	// Unknown commands are reported before anything is drawn.
	if _, err := graph.Plan(names); err != nil {
		return err
	}

	if helpOnly(graph, names) {
		return listing.Write(a.stdout, graph)
	}

	mode, err := detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)
	if err != nil {
		return err
	}

	renderer := a.newRenderer(ctx, mode)
	a.bridge.SetRenderer(renderer)
	a.tracer.WithRenderer(renderer)
	defer func() {
		a.tracer.WithRenderer(nil)
		a.bridge.SetRenderer(nil)
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			// The TUI stays open for inspection until the user quits.
			if !opts.Inspect || mode != detector.ModeTUI {
				_ = renderer.Stop()
			}
		}()

		err := a.dispatcher.Run(ctx, graph, names, dispatcher.Options{
			NoCache: opts.NoCache,
			DryRun:  opts.DryRun,
		})
		if err != nil {
			return errors.Join(domain.ErrRunFailed, err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) newRenderer(ctx context.Context, mode detector.OutputMode) ports.Renderer {
	if mode == detector.ModeTUI {
		model := tui.NewModel(a.stderr)
		opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(a.stderr)}, a.teaOptions...)
		return tui.NewRenderer(&model, opts...)
	}
	return linear.NewRenderer(a.stdout, a.stderr)
}

// helpOnly reports whether every requested command is the help builtin.
func helpOnly(graph *domain.Graph, names []string) bool {
	for _, name := range names {
		cmd, ok := graph.GetCommand(domain.NewInternedString(name))
		if !ok || cmd.Builtin != domain.BuiltinHelp {
			return false
		}
	}
	return true
}
