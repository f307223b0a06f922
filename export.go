package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"pitchboard/internal/export"
	"pitchboard/internal/formation"
)

// regions freezes what is on screen so an export can run off the update loop.
func (m model) regions() export.Regions {
	return export.Regions{
		export.PitchRegion: {Scene: m.scene(), View: m.viewport()},
	}
}

func (m model) export(exp export.Exporter) tea.Cmd {
	regions := m.regions()
	return func() tea.Msg {
		path, err := exp.Export(context.Background(), regions, export.PitchRegion, export.DefaultStem)
		return exportedMsg{path: path, err: err}
	}
}

func exportDirName(config *Config) string {
	if config.ExportDirectory == "" {
		return "the current directory"
	}
	return config.ExportDirectory
}

// copySnapshot puts the arrangement on the clipboard in the saved blob format.
func (m *model) copySnapshot() {
	data, err := formation.Encode(m.store.Snapshot())
	if err == nil {
		err = writeClipboard(string(data))
	}
	if err != nil {
		m.log.Error().Err(err).Msg("copy to clipboard failed")
		m.setError(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	m.setSuccess("Formation copied to clipboard")
}

// pasteSnapshot replaces the arrangement with one copied from the clipboard. The
// clipboard text is validated exactly like a saved blob.
func (m *model) pasteSnapshot() {
	text, err := readClipboard()
	if err != nil {
		m.setError(fmt.Sprintf("Paste failed: %v", err))
		return
	}
	if err := m.store.Restore([]byte(cleanClipboardText(text))); err != nil {
		m.setError("Clipboard does not hold a formation")
		return
	}
	m.gest.Abandon()
	m.gest.Settle()
	m.setSuccess("Formation pasted from clipboard")
}
