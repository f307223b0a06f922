package main

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/rs/zerolog"

	"pitchboard/internal/export"
	"pitchboard/internal/formation"
	"pitchboard/internal/gesture"
)

type model struct {
	width  int
	height int

	store *formation.Store
	modes *gesture.Controller
	gest  *gesture.Interpreter

	png export.Exporter
	txt export.Exporter

	keys     keyMap
	helpView help.Model
	help     bool

	palette    []string
	colorIndex int

	pointer     gesture.Point
	pointerSeen bool

	saving         bool
	errorMessage   string
	successMessage string

	config *Config
	log    zerolog.Logger
}

// savedMsg reports the outcome of an asynchronous save.
type savedMsg struct {
	err error
}

// loadedMsg carries a saved blob read off the update loop. It is applied to the
// store only when it arrives.
type loadedMsg struct {
	data  []byte
	found bool
	err   error
}

// exportedMsg reports the outcome of an asynchronous export.
type exportedMsg struct {
	path string
	err  error
}

type keyMap struct {
	ToggleDraw  key.Binding
	ClearArrows key.Binding
	Save        key.Binding
	Export      key.Binding
	Reset       key.Binding
	Reload      key.Binding
	ArrowColor  key.Binding
	ExportText  key.Binding
	Copy        key.Binding
	Paste       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleDraw:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "draw/move")),
		ClearArrows: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear arrows")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
		Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Reload:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load saved")),
		ArrowColor:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "arrow colour")),
		ExportText:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "export txt")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy json")),
		Paste:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste json")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleDraw, k.ClearArrows, k.Save, k.Export, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleDraw, k.ArrowColor, k.ClearArrows, k.Reset},
		{k.Save, k.Reload, k.Copy, k.Paste},
		{k.Export, k.ExportText},
		{k.Help, k.Quit},
	}
}
