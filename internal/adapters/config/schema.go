package config

// Chorefile represents the structure of the chore.yaml configuration file.
type Chorefile struct {
	Version  string                 `yaml:"version"`
	Recipe   string                 `yaml:"recipe"`
	EnvDir   string                 `yaml:"envDir"`
	Python   string                 `yaml:"python"`
	Manifest string                 `yaml:"manifest"`
	Lock     string                 `yaml:"lock"`
	Script   string                 `yaml:"script"`
	Dotenv   []string               `yaml:"dotenv"`
	Vars     map[string]string      `yaml:"vars"`
	Commands map[string]*CommandDTO `yaml:"commands"`
}

// CommandDTO represents a command definition in the configuration.
type CommandDTO struct {
	Description string            `yaml:"description"`
	DependsOn   []string          `yaml:"dependsOn"`
	Requires    []string          `yaml:"requires"`
	Inputs      []string          `yaml:"inputs"`
	Outputs     []string          `yaml:"outputs"`
	Activate    bool              `yaml:"activate"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
	Steps       []StepDTO         `yaml:"steps"`
}

// StepDTO represents a single step of a command.
type StepDTO struct {
	Cmd    []string `yaml:"cmd"`
	Stdout string   `yaml:"stdout"`
}
