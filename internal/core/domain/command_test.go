package domain_test

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestCommand_Cacheable(t *testing.T) {
	plain := domain.Command{Name: domain.NewInternedString("clean")}
	assert.False(t, plain.Cacheable())

	withInputs := domain.Command{
		Name:   domain.NewInternedString("install"),
		Inputs: domain.NewInternedStrings([]string{"requirements.txt"}),
	}
	assert.True(t, withInputs.Cacheable())

	help := domain.HelpCommand()
	help.Inputs = domain.NewInternedStrings([]string{"chore.yaml"})
	assert.False(t, help.Cacheable(), "builtins are never skipped")
}

func TestBuiltin_String(t *testing.T) {
	assert.Equal(t, "help", domain.BuiltinHelp.String())
	assert.Empty(t, domain.BuiltinNone.String())
}

func TestStepError(t *testing.T) {
	cause := &exec.ExitError{}
	err := &domain.StepError{
		Command:  "experiments",
		Index:    0,
		Argv:     []string{".venv/bin/python", "experiments.py"},
		ExitCode: 3,
		Err:      cause,
	}

	assert.Equal(t, "experiments: step 1 (.venv/bin/python experiments.py) failed with exit code 3", err.Error())
	assert.True(t, errors.Is(err, domain.ErrStepFailed))

	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestStepError_StartFailure(t *testing.T) {
	err := &domain.StepError{
		Command:  "fmt",
		Index:    1,
		Argv:     []string{".venv/bin/pre-commit", "install"},
		ExitCode: -1,
		Err:      errors.New(`exec: ".venv/bin/pre-commit": stat .venv/bin/pre-commit: no such file or directory`),
	}

	assert.Equal(t,
		`fmt: step 2 (.venv/bin/pre-commit install) failed: exec: ".venv/bin/pre-commit": stat .venv/bin/pre-commit: no such file or directory`,
		err.Error())
	assert.Equal(t, err.Error(), err.Message())

	bare := &domain.StepError{Command: "clean", Argv: []string{"git", "clean"}}
	assert.Equal(t, "clean: step 1 (git clean) failed", bare.Error())
}

func TestStepError_ThroughWrapping(t *testing.T) {
	stepErr := &domain.StepError{Command: "fmt", Index: 2, Argv: []string{"pre-commit"}, ExitCode: 1}
	wrapped := zerr.With(zerr.Wrap(stepErr, domain.ErrCommandExecutionFailed.Error()), "command", "fmt")
	joined := errors.Join(domain.ErrRunFailed, wrapped)

	var got *domain.StepError
	require.True(t, errors.As(joined, &got))
	assert.Equal(t, 1, got.ExitCode)
	assert.True(t, errors.Is(joined, domain.ErrStepFailed))
	assert.True(t, errors.Is(joined, domain.ErrRunFailed))
}

func TestPythonRecipe(t *testing.T) {
	g := domain.NewGraph()
	for _, c := range domain.PythonRecipe() {
		require.NoError(t, g.AddCommand(&c))
	}
	require.NoError(t, g.Validate())

	assert.Equal(t, []string{"clean", "experiments", "fmt", "freeze", "help", "install"}, g.Names())

	for _, name := range []string{"freeze", "fmt", "experiments"} {
		c, ok := g.GetCommand(domain.NewInternedString(name))
		require.True(t, ok)
		require.Len(t, c.Prerequisites, 1, name)
		assert.Equal(t, "install", c.Prerequisites[0].String(), name)
		assert.True(t, c.Activate, name)
	}

	freeze, _ := g.GetCommand(domain.NewInternedString("freeze"))
	require.Len(t, freeze.Steps, 1)
	assert.Equal(t, "${LOCK}", freeze.Steps[0].Stdout)

	clean, _ := g.GetCommand(domain.NewInternedString("clean"))
	assert.Equal(t, []string{"git", "clean", "-X", "-d", "-f"}, clean.Steps[0].Argv)
	assert.Empty(t, clean.Prerequisites)

	install, _ := g.GetCommand(domain.NewInternedString("install"))
	assert.Len(t, install.Steps, 3)
	assert.False(t, install.Activate)
	assert.True(t, install.Cacheable())

	help, _ := g.GetCommand(domain.NewInternedString("help"))
	assert.Equal(t, domain.BuiltinHelp, help.Builtin)
	assert.Equal(t, "Display this help screen", help.Description)
}
