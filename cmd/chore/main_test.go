package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/chore/internal/adapters/telemetry"
	"go.trai.ch/chore/internal/app"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports/mocks"
	"go.trai.ch/chore/internal/engine/dispatcher"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"chore": main,
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   filepath.Join("testdata", "script"),
		Setup: setupScript,
	})
}

func setupScript(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, domain.DirPerm); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	return nil
}

type mainTestMocks struct {
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
	logger   *mocks.MockLogger
}

// newProvider builds a real App on top of mocked adapters.
func newProvider(t *testing.T) (ComponentProvider, mainTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mainTestMocks{
		loader:   mocks.NewMockConfigLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}

	hasher := mocks.NewMockHasher(ctrl)
	tracer := telemetry.NewOTelTracer(telemetry.InstrumentationName)
	disp := dispatcher.New(
		m.executor,
		mocks.NewMockRunInfoStore(ctrl),
		hasher,
		mocks.NewMockVerifier(ctrl),
		mocks.NewMockEnvironmentFactory(ctrl),
		tracer,
		m.logger,
	)
	application := app.New(m.loader, disp, tracer, m.logger, mocks.NewMockWatcher(ctrl), hasher)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: m.logger,
		}, func() {}, nil
	}
	return provider, m
}

func newGraph(t *testing.T, cmds ...domain.Command) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	g.SetRoot(t.TempDir())
	for i := range cmds {
		if err := g.AddCommand(&cmds[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	return g
}

func experiments() domain.Command {
	return domain.Command{
		Name:  domain.NewInternedString("experiments"),
		Steps: []domain.Step{{Argv: []string{"python", "experiments.py"}}},
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	provider, _ := newProvider(t)

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "chore version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, io.Discard, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_UnknownCommand verifies that an unknown command exits with 2 and is logged.
func TestRun_UnknownCommand(t *testing.T) {
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(".").Return(newGraph(t, experiments()), nil)
	m.logger.EXPECT().Error(gomock.Any())

	exitCode := run(context.Background(), []string{"run", "deploy", "--ci"}, io.Discard, io.Discard, provider)
	assert.Equal(t, 2, exitCode)
}

// TestRun_StepExitCode verifies that a failing step's exit code becomes the process exit code.
func TestRun_StepExitCode(t *testing.T) {
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(".").Return(newGraph(t, experiments()), nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(exec.Command("sh", "-c", "exit 4").Run())
	// The step's output and status are already shown, so nothing is logged.
	m.logger.EXPECT().Error(gomock.Any()).Times(0)

	exitCode := run(context.Background(), []string{"run", "experiments", "--ci"}, io.Discard, io.Discard, provider)
	assert.Equal(t, 4, exitCode)
}

// TestRun_StepStartFailure verifies that a step which could not start is logged with its cause.
func TestRun_StepStartFailure(t *testing.T) {
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(".").Return(newGraph(t, experiments()), nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(exec.Command("definitely-not-a-binary-xyz").Run())
	m.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrStepFailed)
		assert.Contains(t, err.Error(), "executable file not found")
	})

	exitCode := run(context.Background(), []string{"run", "experiments", "--ci"}, io.Discard, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_ExecutionError verifies that run returns 1 when the configuration cannot be loaded.
func TestRun_ExecutionError(t *testing.T) {
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(".").Return(nil, errors.New("load failed"))
	m.logger.EXPECT().Error(gomock.Any())

	exitCode := run(context.Background(), []string{"run", "install"}, io.Discard, io.Discard, provider, func(a *app.App) {
		a.WithWorkDir(".")
	})
	assert.Equal(t, 1, exitCode)
}

func TestExitCode(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want int
	}{
		{"Generic", context.Background(), errors.New("boom"), 1},
		{"Unknown command", context.Background(), domain.ErrUnknownCommand, 2},
		{"Step exit code", context.Background(), errors.Join(domain.ErrRunFailed, &domain.StepError{ExitCode: 7}), 7},
		{"Step without exit code", context.Background(), &domain.StepError{ExitCode: -1}, 1},
		{"Interrupted", context.Background(), domain.ErrInterrupted, 130},
		{"Canceled", canceled, context.Canceled, 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.ctx, tt.err))
		})
	}
}
