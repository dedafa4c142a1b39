package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/zerr"
)

func cmd(name string, prereqs ...string) *domain.Command {
	return &domain.Command{
		Name:          domain.NewInternedString(name),
		Prerequisites: domain.NewInternedStrings(prereqs),
		Steps:         []domain.Step{{Argv: []string{"echo", name}}},
	}
}

func names(cmds []domain.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name.String()
	}
	return out
}

func TestGraph_AddCommand(t *testing.T) {
	g := domain.NewGraph()
	c := cmd("install")

	require.NoError(t, g.AddCommand(c))

	err := g.AddCommand(c)
	require.Error(t, err)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "install", zErr.Metadata()["command"])
}

func TestGraph_Defaults(t *testing.T) {
	g := domain.NewGraph()
	assert.Equal(t, domain.DefaultEnvDir, g.EnvDir())
	assert.Empty(t, g.Root())

	g.SetRoot("/project")
	g.SetEnvDir("env")
	assert.Equal(t, "/project", g.Root())
	assert.Equal(t, "env", g.EnvDir())
}

func TestGraph_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cmds        []*domain.Command
		errContains string
	}{
		{
			name: "Valid chain",
			cmds: []*domain.Command{cmd("install"), cmd("freeze", "install")},
		},
		{
			name:        "Self cycle",
			cmds:        []*domain.Command{cmd("a", "a")},
			errContains: "cycle detected",
		},
		{
			name:        "Two node cycle",
			cmds:        []*domain.Command{cmd("a", "b"), cmd("b", "a")},
			errContains: "cycle detected",
		},
		{
			name:        "Missing prerequisite",
			cmds:        []*domain.Command{cmd("fmt", "install")},
			errContains: "missing prerequisite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewGraph()
			for _, c := range tt.cmds {
				require.NoError(t, g.AddCommand(c))
			}

			err := g.Validate()
			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestGraph_Validate_CycleMetadata(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddCommand(cmd("a", "b")))
	require.NoError(t, g.AddCommand(cmd("b", "a")))

	err := g.Validate()
	require.Error(t, err)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "a -> b -> a", zErr.Metadata()["cycle"])
}

func TestGraph_Walk(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddCommand(cmd("experiments", "install")))
	require.NoError(t, g.AddCommand(cmd("install")))
	require.NoError(t, g.AddCommand(cmd("clean")))
	require.NoError(t, g.Validate())

	var order []string
	for c := range g.Walk() {
		order = append(order, c.Name.String())
	}

	assert.Equal(t, []string{"clean", "install", "experiments"}, order)
}

func TestGraph_Names(t *testing.T) {
	g := domain.NewGraph()
	for _, n := range []string{"install", "help", "clean", "fmt"} {
		require.NoError(t, g.AddCommand(cmd(n)))
	}

	assert.Equal(t, []string{"clean", "fmt", "help", "install"}, g.Names())
	assert.Equal(t, []string{"clean", "fmt", "help", "install"}, names(g.Commands()))
	assert.Equal(t, 4, g.CommandCount())
}

func TestGraph_Plan(t *testing.T) {
	newGraph := func(t *testing.T) *domain.Graph {
		t.Helper()
		g := domain.NewGraph()
		require.NoError(t, g.AddCommand(cmd("install")))
		require.NoError(t, g.AddCommand(cmd("freeze", "install")))
		require.NoError(t, g.AddCommand(cmd("fmt", "install")))
		require.NoError(t, g.AddCommand(cmd("experiments", "install")))
		require.NoError(t, g.AddCommand(cmd("clean")))
		require.NoError(t, g.AddCommand(cmd("release", "fmt", "freeze")))
		return g
	}

	tests := []struct {
		name    string
		targets []string
		want    []string
	}{
		{
			name:    "Prerequisite first",
			targets: []string{"freeze"},
			want:    []string{"install", "freeze"},
		},
		{
			name:    "Shared prerequisite runs once",
			targets: []string{"fmt", "experiments"},
			want:    []string{"install", "fmt", "experiments"},
		},
		{
			name:    "Requested order is kept",
			targets: []string{"clean", "install"},
			want:    []string{"clean", "install"},
		},
		{
			name:    "Duplicate target runs once",
			targets: []string{"install", "install"},
			want:    []string{"install"},
		},
		{
			name:    "Transitive prerequisites",
			targets: []string{"release"},
			want:    []string{"install", "fmt", "freeze", "release"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newGraph(t).Plan(tt.targets)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(plan))
		})
	}
}

func TestGraph_Plan_UnknownCommand(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddCommand(cmd("install")))

	plan, err := g.Plan([]string{"install", "deploy"})
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.True(t, errors.Is(err, domain.ErrUnknownCommand))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "deploy", zErr.Metadata()["command"])
}

func TestGraph_Plan_Cycle(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddCommand(cmd("a", "b")))
	require.NoError(t, g.AddCommand(cmd("b", "a")))

	_, err := g.Plan([]string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}
