package main

import "pitchboard/internal/gesture"

const (
	storeFile   = "file"
	storeGData  = "gdata"
	storeSQLite = "sqlite"

	sqliteFile = "formation.db"
)

const (
	defaultSurfaceWidth = 1000.0
	surfaceHeight       = 500.0
	gestureMargin       = gesture.PlayerRadius

	// rows taken by the toolbar above the pitch and the status line below it
	toolbarRows = 1
	statusRows  = 1
)

// arrowPalette is cycled by the arrow colour key. The configured colour goes first.
var arrowPalette = []string{"#ef4444", "#ffffff", "#facc15", "#3b82f6"}
