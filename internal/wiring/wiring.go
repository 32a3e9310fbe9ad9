// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/notekeep/internal/adapters/cachefile"
	_ "go.trai.ch/notekeep/internal/adapters/catalog"
	_ "go.trai.ch/notekeep/internal/adapters/config"
	_ "go.trai.ch/notekeep/internal/adapters/logger"
	_ "go.trai.ch/notekeep/internal/adapters/snapshot"
	_ "go.trai.ch/notekeep/internal/adapters/telemetry"
	_ "go.trai.ch/notekeep/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/notekeep/internal/app"
	_ "go.trai.ch/notekeep/internal/engine/cycle"
)
