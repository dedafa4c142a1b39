package app

import "go.trai.ch/chore/internal/core/domain"

// WatchedPaths exposes watchedPaths for testing.
func WatchedPaths(graph *domain.Graph, names []string) ([]string, error) {
	plan, err := graph.Plan(names)
	if err != nil {
		return nil, err
	}
	return watchedPaths(graph, plan), nil
}

// MatchesAny exposes matchesAny for testing.
func MatchesAny(watched []string, path string) bool {
	return matchesAny(watched, path)
}
