// Package domain contains the core domain models for commands and their prerequisites.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph holds the known commands and the prerequisite edges between them.
type Graph struct {
	commands       map[InternedString]Command
	executionOrder []InternedString
	root           string
	envDir         string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		commands: make(map[InternedString]Command),
		envDir:   DefaultEnvDir,
	}
}

// SetRoot sets the project root directory.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the project root directory.
func (g *Graph) Root() string {
	return g.root
}

// SetEnvDir sets the virtual environment directory used by activated commands.
func (g *Graph) SetEnvDir(dir string) {
	g.envDir = dir
}

// EnvDir returns the virtual environment directory.
func (g *Graph) EnvDir() string {
	return g.envDir
}

// AddCommand adds a command to the graph.
// It returns an error if a command with the same name already exists.
func (g *Graph) AddCommand(c *Command) error {
	if _, exists := g.commands[c.Name]; exists {
		return zerr.With(ErrCommandAlreadyExists, "command", c.Name.String())
	}
	g.commands[c.Name] = *c
	return nil
}

// GetCommand returns the command with the given name.
func (g *Graph) GetCommand(name InternedString) (Command, bool) {
	c, ok := g.commands[name]
	return c, ok
}

// CommandCount returns the number of commands in the graph.
func (g *Graph) CommandCount() int {
	return len(g.commands)
}

// Names returns all command names in lexicographic order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.commands))
	for name := range g.commands {
		names = append(names, name.String())
	}
	slices.Sort(names)
	return names
}

// Commands returns all commands sorted by name.
func (g *Graph) Commands() []Command {
	names := g.Names()
	cmds := make([]Command, len(names))
	for i, name := range names {
		cmds[i] = g.commands[NewInternedString(name)]
	}
	return cmds
}

// Validate checks that every prerequisite exists and that there are no cycles.
// It populates the execution order used by Walk. Commands are visited by name
// so the order is stable between runs.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.commands))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		cmd := g.commands[u]
		for _, dep := range cmd.Prerequisites {
			if _, exists := g.commands[dep]; !exists {
				err := zerr.With(ErrMissingPrerequisite, "prerequisite", dep.String())
				return zerr.With(err, "command", u.String())
			}
			if visited[dep] == 1 {
				return buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.Names() {
		key := NewInternedString(name)
		if visited[key] == 0 {
			if err := visit(key); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields commands in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Command] {
	return func(yield func(Command) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.commands[name]) {
				return
			}
		}
	}
}

// Plan resolves the requested command names into the ordered list of commands
// to run. Prerequisites come before the commands that need them, requested
// order is kept otherwise, and every command appears at most once.
func (g *Graph) Plan(targets []string) ([]Command, error) {
	planned := make([]Command, 0, len(targets))
	state := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: planned
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		state[u] = 1
		path = append(path, u)

		cmd := g.commands[u]
		for _, dep := range cmd.Prerequisites {
			if _, exists := g.commands[dep]; !exists {
				err := zerr.With(ErrMissingPrerequisite, "prerequisite", dep.String())
				return zerr.With(err, "command", u.String())
			}
			switch state[dep] {
			case 1:
				return buildCycleError(path, dep)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[u] = 2
		path = path[:len(path)-1]
		planned = append(planned, cmd)
		return nil
	}

	for _, target := range targets {
		name := NewInternedString(target)
		if _, ok := g.commands[name]; !ok {
			err := zerr.Wrap(ErrUnknownCommand, "failed to plan run")
			return nil, zerr.With(err, "command", target)
		}
		if state[name] == 2 {
			continue
		}
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return planned, nil
}
