// Package config provides the configuration loader for chore.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/joho/godotenv"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only configuration version understood by the loader.
const SupportedVersion = "1"

var validCommandNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// DiscoverRoot walks up from cwd looking for chore.yaml.
// It returns cwd when no configuration file exists.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, found, err := findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	if !found {
		return filepath.Clean(cwd), nil
	}
	return filepath.Dir(configPath), nil
}

// Load reads the configuration reachable from cwd and returns the command graph.
func (l *Loader) Load(cwd string) (*domain.Graph, error) {
	configPath, found, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	root := filepath.Clean(cwd)
	var chorefile Chorefile
	if found {
		if err := readAndUnmarshalYAML(configPath, &chorefile); err != nil {
			return nil, zerr.With(err, "file", configPath)
		}
		root = filepath.Dir(configPath)
	}

	if chorefile.Version != "" && chorefile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", domain.ConfigFileName, chorefile.Version, SupportedVersion))
	}

	return l.buildGraph(root, &chorefile)
}

func findConfiguration(cwd string) (string, bool, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", false, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, true, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false, nil
		}
		currentDir = parentDir
	}
}

func (l *Loader) buildGraph(root string, chorefile *Chorefile) (*domain.Graph, error) {
	vars := resolveVars(root, chorefile)

	dotenv, err := readDotenv(root, chorefile.Dotenv)
	if err != nil {
		return nil, err
	}

	commands, err := recipeCommands(chorefile.Recipe)
	if err != nil {
		return nil, err
	}

	// File commands are visited by name so errors are reported deterministically.
	for _, name := range slices.Sorted(maps.Keys(chorefile.Commands)) {
		if err := validateCommandName(name); err != nil {
			return nil, err
		}
		cmd, err := buildCommand(name, chorefile.Commands[name])
		if err != nil {
			return nil, err
		}
		commands[name] = cmd
	}

	if _, ok := commands[domain.HelpCommand().Name.String()]; !ok {
		commands[domain.HelpCommand().Name.String()] = domain.HelpCommand()
	}

	g := domain.NewGraph()
	g.SetRoot(root)
	g.SetEnvDir(vars[domain.VarVenv])

	for _, name := range slices.Sorted(maps.Keys(commands)) {
		cmd := expandCommand(commands[name], root, vars, dotenv)
		if err := g.AddCommand(&cmd); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// resolveVars returns the variables available to ${VAR} references.
// VENV is always absolute so steps can call into it from any working directory.
func resolveVars(root string, chorefile *Chorefile) map[string]string {
	envDir := firstNonEmpty(os.Getenv(domain.EnvDirOverrideVar), chorefile.EnvDir, domain.DefaultEnvDir)
	if !filepath.IsAbs(envDir) {
		envDir = filepath.Join(root, envDir)
	}

	builtins := map[string]string{
		domain.VarRoot:     root,
		domain.VarVenv:     filepath.Clean(envDir),
		domain.VarPython:   firstNonEmpty(chorefile.Python, domain.DefaultPython),
		domain.VarManifest: firstNonEmpty(chorefile.Manifest, domain.DefaultManifest),
		domain.VarLock:     firstNonEmpty(chorefile.Lock, domain.DefaultLockFile),
		domain.VarScript:   firstNonEmpty(chorefile.Script, domain.DefaultScript),
	}

	vars := maps.Clone(builtins)
	for _, key := range slices.Sorted(maps.Keys(chorefile.Vars)) {
		if _, reserved := builtins[key]; reserved {
			continue
		}
		vars[key] = os.Expand(chorefile.Vars[key], lookup(builtins))
	}
	return vars
}

func recipeCommands(recipe string) (map[string]domain.Command, error) {
	commands := make(map[string]domain.Command)
	switch recipe {
	case "", domain.RecipePython:
		for _, cmd := range domain.PythonRecipe() {
			commands[cmd.Name.String()] = cmd
		}
	case domain.RecipeNone:
	default:
		return nil, zerr.With(domain.ErrUnknownRecipe, "recipe", recipe)
	}
	return commands, nil
}

func buildCommand(name string, dto *CommandDTO) (domain.Command, error) {
	if dto == nil || len(dto.Steps) == 0 {
		return domain.Command{}, zerr.With(domain.ErrEmptyCommand, "command", name)
	}

	steps := make([]domain.Step, len(dto.Steps))
	for i, s := range dto.Steps {
		if len(s.Cmd) == 0 {
			err := zerr.With(domain.ErrEmptyStep, "command", name)
			return domain.Command{}, zerr.With(err, "step", i+1)
		}
		steps[i] = domain.Step{Argv: slices.Clone(s.Cmd), Stdout: s.Stdout}
	}

	return domain.Command{
		Name:          domain.NewInternedString(name),
		Description:   dto.Description,
		Steps:         steps,
		Prerequisites: domain.NewInternedStrings(dto.DependsOn),
		Requires:      domain.NewInternedStrings(dto.Requires),
		Inputs:        domain.NewInternedStrings(dto.Inputs),
		Outputs:       domain.NewInternedStrings(dto.Outputs),
		Environment:   maps.Clone(dto.Environment),
		WorkingDir:    domain.NewInternedString(dto.WorkingDir),
		Activate:      dto.Activate,
	}, nil
}

// expandCommand resolves ${VAR} references and makes the working directory
// and redirect targets absolute. Dotenv values sit below the command's own
// environment.
func expandCommand(cmd domain.Command, root string, vars, dotenv map[string]string) domain.Command {
	expand := func(s string) string { return os.Expand(s, lookup(vars)) }

	steps := make([]domain.Step, len(cmd.Steps))
	for i, s := range cmd.Steps {
		argv := make([]string, len(s.Argv))
		for j, arg := range s.Argv {
			argv[j] = expand(arg)
		}
		steps[i] = domain.Step{Argv: argv}
		if s.Stdout != "" {
			steps[i].Stdout = absPath(root, expand(s.Stdout))
		}
	}
	cmd.Steps = steps

	cmd.Requires = expandPaths(cmd.Requires, expand)
	cmd.Inputs = canonicalizeStrings(expandPaths(cmd.Inputs, expand))
	cmd.Outputs = expandPaths(cmd.Outputs, expand)
	cmd.WorkingDir = domain.NewInternedString(absPath(root, expand(cmd.WorkingDir.String())))

	if cmd.Builtin == domain.BuiltinNone && (len(dotenv) > 0 || len(cmd.Environment) > 0) {
		env := maps.Clone(dotenv)
		if env == nil {
			env = make(map[string]string, len(cmd.Environment))
		}
		for k, v := range cmd.Environment {
			env[k] = expand(v)
		}
		cmd.Environment = env
	}

	return cmd
}

func expandPaths(paths []domain.InternedString, expand func(string) string) []domain.InternedString {
	if len(paths) == 0 {
		return nil
	}
	out := make([]domain.InternedString, len(paths))
	for i, p := range paths {
		out[i] = domain.NewInternedString(expand(p.String()))
	}
	return out
}

func canonicalizeStrings(strs []domain.InternedString) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}

	sorted := make([]string, len(strs))
	for i, s := range strs {
		sorted[i] = s.String()
	}
	slices.Sort(sorted)

	return domain.NewInternedStrings(slices.Compact(sorted))
}

// readDotenv merges the given dotenv files in order. Missing files are skipped.
func readDotenv(root string, files []string) (map[string]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	merged := make(map[string]string)
	for _, file := range files {
		path := absPath(root, file)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		values, err := godotenv.Read(path)
		if err != nil {
			err = zerr.Wrap(err, domain.ErrDotenvReadFailed.Error())
			return nil, zerr.With(err, "file", path)
		}
		maps.Copy(merged, values)
	}
	return merged, nil
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking up from the working directory
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

// validateCommandName rejects reserved names and names outside [a-zA-Z0-9_-].
func validateCommandName(name string) error {
	if name == "all" {
		err := zerr.With(domain.ErrInvalidCommandName, "command", name)
		return zerr.With(err, "reason", "reserved")
	}
	if !validCommandNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidCommandName, "command", name)
	}
	return nil
}

// lookup resolves ${VAR} first from vars, then from the process environment.
func lookup(vars map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return os.Getenv(key)
	}
}

func absPath(root, p string) string {
	if p == "" {
		return root
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
