package domain

// Variables available in step arguments, redirect targets and paths of the
// built-in recipe. They are expanded when the configuration is loaded.
const (
	VarRoot     = "ROOT"
	VarVenv     = "VENV"
	VarPython   = "PYTHON"
	VarManifest = "MANIFEST"
	VarLock     = "LOCK"
	VarScript   = "SCRIPT"
)

// RecipePython names the built-in recipe for Python projects.
const RecipePython = "python"

// RecipeNone names the empty recipe.
const RecipeNone = "none"

// PythonRecipe returns the commands that manage a Python project through a
// virtual environment: install, freeze, fmt, clean, experiments and help.
// Paths and programs are left as ${VAR} references.
func PythonRecipe() []Command {
	install := NewInternedString("install")
	manifest := NewInternedStrings([]string{"${MANIFEST}"})

	return []Command{
		{
			Name:        install,
			Description: "Install a virtual environment",
			Steps: []Step{
				{Argv: []string{"${PYTHON}", "-m", "venv", "${VENV}"}},
				{Argv: []string{"${VENV}/bin/pip", "install", "--upgrade", "pip"}},
				{Argv: []string{"${VENV}/bin/pip", "install", "-r", "${MANIFEST}"}},
			},
			Requires: manifest,
			Inputs:   manifest,
			Outputs:  NewInternedStrings([]string{"${VENV}"}),
		},
		{
			Name:        NewInternedString("freeze"),
			Description: "Freeze all requirements",
			Steps: []Step{
				{Argv: []string{"${VENV}/bin/pip", "freeze"}, Stdout: "${LOCK}"},
			},
			Prerequisites: []InternedString{install},
			Activate:      true,
		},
		{
			Name:        NewInternedString("fmt"),
			Description: "Run autoformatting and linting",
			Steps: []Step{
				{Argv: []string{"${VENV}/bin/pip", "install", "pre-commit"}},
				{Argv: []string{"${VENV}/bin/pre-commit", "install"}},
				{Argv: []string{"${VENV}/bin/pre-commit", "run", "--all-files"}},
			},
			Prerequisites: []InternedString{install},
			Activate:      true,
		},
		{
			Name:        NewInternedString("clean"),
			Description: "Clean up caches and build artifacts",
			Steps: []Step{
				{Argv: []string{"git", "clean", "-X", "-d", "-f"}},
			},
		},
		{
			Name:        NewInternedString("experiments"),
			Description: "Run all experiments",
			Steps: []Step{
				{Argv: []string{"${VENV}/bin/python", "${SCRIPT}"}},
			},
			Prerequisites: []InternedString{install},
			Activate:      true,
		},
		HelpCommand(),
	}
}

// HelpCommand returns the builtin command that prints the command listing.
func HelpCommand() Command {
	return Command{
		Name:        NewInternedString("help"),
		Description: "Display this help screen",
		Builtin:     BuiltinHelp,
	}
}
