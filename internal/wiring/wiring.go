// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/chore/internal/adapters/config"
	_ "go.trai.ch/chore/internal/adapters/fs"
	_ "go.trai.ch/chore/internal/adapters/logger"
	_ "go.trai.ch/chore/internal/adapters/shell"
	_ "go.trai.ch/chore/internal/adapters/state"
	_ "go.trai.ch/chore/internal/adapters/telemetry"
	_ "go.trai.ch/chore/internal/adapters/venv"
	_ "go.trai.ch/chore/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/chore/internal/app"
	_ "go.trai.ch/chore/internal/engine/dispatcher"
)
