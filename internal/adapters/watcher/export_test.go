package watcher

import "slices"

// Directories collects the directories Start would watch under root.
func Directories(root string) []string {
	return slices.Collect(directories(root))
}
