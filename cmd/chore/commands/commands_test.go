package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/chore/cmd/chore/commands"
	"go.trai.ch/chore/internal/app"
	"go.trai.ch/chore/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, names []string, opts app.RunOptions) error
	watchFunc func(ctx context.Context, names []string, opts app.RunOptions) error
	listed    bool
	pruned    bool
}

func (m *mockApp) Run(ctx context.Context, names []string, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, names, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, names []string, opts app.RunOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, names, opts)
	}
	return nil
}

func (m *mockApp) List(_ context.Context) error {
	m.listed = true
	return nil
}

func (m *mockApp) Prune(_ context.Context) error {
	m.pruned = true
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedNames []string
		called := false

		mock := &mockApp{
			runFunc: func(_ context.Context, names []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedNames = names
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "freeze", "fmt", "--no-cache", "--dry-run", "-o", "tui", "--inspect"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.True(t, capturedOpts.NoCache)
		assert.True(t, capturedOpts.DryRun)
		assert.True(t, capturedOpts.Inspect)
		assert.Equal(t, "tui", capturedOpts.OutputMode)
		assert.Equal(t, []string{"freeze", "fmt"}, capturedNames)
	})

	t.Run("ci forces linear output", func(t *testing.T) {
		var capturedOpts app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, opts app.RunOptions) error {
				capturedOpts = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "install", "--ci", "--output-mode", "tui"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "linear", capturedOpts.OutputMode)
	})

	t.Run("watch delegates to Watch", func(t *testing.T) {
		var watched []string
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				panic("should not be called")
			},
			watchFunc: func(_ context.Context, names []string, _ app.RunOptions) error {
				watched = names
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "experiments", "--watch"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, []string{"experiments"}, watched)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "install"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no commands provided", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"run"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_List(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)
	cli.SetArgs([]string{"ls"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, mock.listed)
}

func TestCommands_Prune(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)
	cli.SetArgs([]string{"prune"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, mock.pruned)

	cli = commands.New(mock)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"prune", "extra"})
	require.Error(t, cli.Execute(context.Background()))
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "chore version "+build.Version)
}
