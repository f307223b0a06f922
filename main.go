package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"pitchboard/internal/blobstore"
	"pitchboard/internal/export"
	"pitchboard/internal/formation"
	"pitchboard/internal/gesture"
	"pitchboard/internal/render"
)

func main() {
	stderr := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(); err != nil {
		stderr.Fatal().Err(err).Msg("formation editor failed")
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (default ~/.formationrc)")
	storeKind := flag.String("store", "", "blob store: file, gdata or sqlite (overrides config)")
	noLoad := flag.Bool("no-load", false, "start from the default formation instead of the saved one")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *storeKind != "" {
		config.Store = strings.ToLower(*storeKind)
	}
	if *noLoad {
		config.LoadOnStart = false
	}

	logger, logFile, err := setupLogger(config)
	if err != nil {
		return err
	}
	defer logFile.Close()

	blobs, closer, err := openBlobStore(config)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info().Str("store", config.Store).Float64("surfaceWidth", config.SurfaceWidth).Msg("starting")

	p := tea.NewProgram(
		newModel(config, blobs, logger),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}

func newModel(config *Config, blobs blobstore.Store, logger zerolog.Logger) model {
	store := formation.NewStore(blobs, formation.WithLogger(logger))
	modes := gesture.NewController()
	gest := gesture.NewInterpreter(store, modes, gesture.Surface{Width: config.SurfaceWidth, Height: surfaceHeight})
	gest.SetArrowColor(config.ArrowColor)

	palette := []string{config.ArrowColor}
	for _, c := range arrowPalette {
		if !strings.EqualFold(c, config.ArrowColor) {
			palette = append(palette, c)
		}
	}

	return model{
		store:    store,
		modes:    modes,
		gest:     gest,
		png:      export.NewPNG(config.ExportDirectory, export.WithLogger(logger)),
		txt:      export.NewText(config.ExportDirectory, export.WithLogger(logger)),
		keys:     defaultKeyMap(),
		helpView: help.New(),
		palette:  palette,
		config:   config,
		log:      logger.With().Str("component", "editor").Logger(),
	}
}

func (m model) Init() tea.Cmd {
	if m.config.LoadOnStart {
		return m.load()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.helpView.Width = msg.Width
		return m, nil

	case tea.MouseMsg:
		if !m.help {
			m.handleMouse(msg)
		}
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.setError(fmt.Sprintf("Save failed: %v", msg.err))
		} else {
			m.setSuccess("Formation saved")
		}
		return m, nil

	case loadedMsg:
		m.applyLoaded(msg)
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("export failed")
			m.setError(fmt.Sprintf("Export failed: %v", msg.err))
		} else {
			m.setSuccess(fmt.Sprintf("Exported to %s", msg.path))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help {
		switch {
		case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.Type == tea.KeyEscape, key.Matches(msg, m.keys.Quit):
			m.help = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help = true

	case key.Matches(msg, m.keys.ToggleDraw):
		if m.modes.Toggle() == gesture.ModeDraw {
			m.setSuccess("Draw mode: click start and end of an arrow")
		} else {
			m.setSuccess("Move mode: drag players")
		}

	case key.Matches(msg, m.keys.ClearArrows):
		m.store.ClearArrows()
		m.setSuccess("Arrows cleared")

	case key.Matches(msg, m.keys.Reset):
		m.gest.Abandon()
		m.store.Reset()
		m.setSuccess("Formation reset")

	case key.Matches(msg, m.keys.ArrowColor):
		m.colorIndex = (m.colorIndex + 1) % len(m.palette)
		m.gest.SetArrowColor(m.palette[m.colorIndex])
		m.setSuccess(fmt.Sprintf("Arrow colour %s", m.palette[m.colorIndex]))

	case key.Matches(msg, m.keys.Save):
		cmd := m.save()
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		return m, m.load()

	case key.Matches(msg, m.keys.Export):
		return m, m.export(m.png)

	case key.Matches(msg, m.keys.ExportText):
		return m, m.export(m.txt)

	case key.Matches(msg, m.keys.Copy):
		m.copySnapshot()

	case key.Matches(msg, m.keys.Paste):
		m.pasteSnapshot()
	}
	return m, nil
}

func (m *model) setError(msg string) {
	m.errorMessage = msg
	m.successMessage = ""
}

func (m *model) setSuccess(msg string) {
	m.successMessage = msg
	m.errorMessage = ""
}

// save captures the arrangement now and writes it off the update loop.
func (m *model) save() tea.Cmd {
	write := m.store.PrepareSave()
	m.saving = true
	return func() tea.Msg {
		return savedMsg{err: write(context.Background())}
	}
}

// load reads the saved blob off the update loop.
func (m model) load() tea.Cmd {
	read := m.store.PrepareLoad()
	return func() tea.Msg {
		data, found, err := read(context.Background())
		return loadedMsg{data: data, found: found, err: err}
	}
}

// applyLoaded replaces the arrangement with the saved one. A missing or unusable
// save leaves the current arrangement in place.
func (m *model) applyLoaded(msg loadedMsg) {
	if msg.err != nil {
		m.setError(fmt.Sprintf("Load failed: %v", msg.err))
		return
	}
	if !msg.found {
		m.setSuccess("No saved formation")
		return
	}
	if err := m.store.Restore(msg.data); err != nil {
		if errors.Is(err, formation.ErrMalformedSnapshot) {
			m.setError("Saved formation is damaged; kept the current one")
		} else {
			m.setError(fmt.Sprintf("Load failed: %v", err))
		}
		return
	}
	m.gest.Abandon()
	m.gest.Settle()
	m.setSuccess("Formation loaded")
}

// viewport is the part of the terminal the pitch occupies.
func (m model) viewport() render.Viewport {
	s := m.gest.Surface()
	return render.Viewport{
		Cols:   max(m.width, 1),
		Rows:   max(m.height-toolbarRows-statusRows, 1),
		Width:  s.Width,
		Height: s.Height,
	}
}

// handleMouse feeds a terminal mouse event to the gesture interpreter. Presses
// off the pitch are ignored; moves and releases off the pitch are pinned to its edge
// so a drag can finish anywhere.
func (m *model) handleMouse(msg tea.MouseMsg) {
	vp := m.viewport()
	col, row := msg.X, msg.Y-toolbarRows
	inside := vp.Contains(col, row)
	x, y := vp.ToSurface(max(0, min(col, vp.Cols-1)), max(0, min(row, vp.Rows-1)))
	p := gesture.Point{X: x, Y: y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return
		}
		m.gest.PointerDown(p)
	case tea.MouseActionMotion:
		m.gest.PointerMove(p)
	case tea.MouseActionRelease:
		m.gest.PointerUp(p)
	}
	if inside {
		m.pointer = p
		m.pointerSeen = true
	}
}

// scene is what the pitch shows right now.
func (m model) scene() render.Scene {
	s := m.gest.Surface()
	scene := render.Scene{
		Width:   s.Width,
		Height:  s.Height,
		Players: m.store.Players(),
		Arrows:  m.store.Arrows(),
	}
	if start, end, ok := m.gest.Preview(); ok {
		scene.Preview = &formation.Arrow{
			StartX: start.X, StartY: start.Y,
			EndX: end.X, EndY: end.Y,
			Color: m.gest.ArrowColor(),
		}
	}
	if id, ok := m.gest.Dragging(); ok {
		scene.Selected = id
	}
	return scene
}

var (
	toolbarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	moveBadge    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3b82f6"))
	drawBadge    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color(formation.DefaultArrowColor))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.help {
		return m.helpScreen()
	}

	var result strings.Builder
	result.WriteString(m.toolbar())
	result.WriteString("\n")
	result.WriteString(strings.Join(render.Rasterize(m.scene(), m.viewport()).Styled(), "\n"))
	result.WriteString("\n")
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) toolbar() string {
	badge := moveBadge.Render(gesture.ModeMove.String())
	if m.modes.Drawing() {
		badge = drawBadge.Copy().Background(lipgloss.Color(m.gest.ArrowColor())).Render(gesture.ModeDraw.String())
	}
	keys := m.helpView.ShortHelpView(m.keys.ShortHelp())
	bar := badge + " " + keys
	if w := lipgloss.Width(bar); w < m.width {
		bar += toolbarStyle.Render(strings.Repeat(" ", m.width-w))
	}
	return bar
}

func (m model) statusLine() string {
	status := fmt.Sprintf("Mode: %s | %s", m.modes.Current(), m.gest.State())
	if id, ok := m.gest.Dragging(); ok {
		status += fmt.Sprintf(" player %s", id)
	}
	if m.pointerSeen {
		status += fmt.Sprintf(" | Pointer: (%.0f,%.0f)", m.pointer.X, m.pointer.Y)
	}
	status += fmt.Sprintf(" | Arrows: %d", len(m.store.Arrows()))
	if m.saving {
		status += " | Saving..."
	}
	switch {
	case m.errorMessage != "":
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " | " + successStyle.Render(m.successMessage)
	default:
		status += " | " + faintStyle.Render("? for help | q to quit")
	}
	return status
}

func (m model) helpScreen() string {
	lines := []string{
		"Formation Help",
		"==============",
		"",
		"Mouse:",
		"------",
		"  Move mode   press on a player and drag to reposition it",
		"  Draw mode   click the arrow's start, then click its end",
		"              switching modes drops an unfinished arrow",
		"",
		"Keys:",
		"-----",
		m.helpView.FullHelpView(m.keys.FullHelp()),
		"",
		fmt.Sprintf("Saves go to the %s store; exports to %s", m.config.Store, exportDirName(m.config)),
	}
	result := strings.Join(lines, "\n")
	result += "\n" + faintStyle.Render("? or Esc to close")
	return result
}
