package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type phase int

const (
	phaseScanning phase = iota
	phaseOrganizing
	phaseDone
)

const recordTail = 8

type model struct {
	config       *Config
	currentPhase phase
	spinner      spinner.Model
	progress     progress.Model

	cache  *Cache
	runCtx context.Context
	cancel context.CancelFunc

	runProgress ScanProgress
	statusMsg   string

	recordMu    *sync.Mutex
	lastRecords *[]FileRecord

	progressChan chan ScanProgress

	stats RunStats

	width  int
	height int

	err error
}

type runCompleteMsg struct {
	stats RunStats
	err   error
}

type progressMsg ScanProgress
type errMsg error

func initialModel(config *Config) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithoutPercentage(),
	)
	p.Width = 60

	ctx, cancel := context.WithCancel(context.Background())

	return model{
		config:       config,
		spinner:      s,
		progress:     p,
		currentPhase: phaseScanning,
		cache:        openCacheIfEnabled(config),
		runCtx:       ctx,
		cancel:       cancel,
		progressChan: make(chan ScanProgress, 100),
		recordMu:     &sync.Mutex{},
		lastRecords:  &[]FileRecord{},
		statusMsg:    "Scanning for media files...",
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.runEngine(),
		waitForProgress(m.progressChan),
	)
}

// runEngine drives the organizer in the background and reports the
// final outcome back as a message.
func (m model) runEngine() tea.Cmd {
	engine := NewEngine(m.config, m.cache)
	ctx := m.runCtx
	progressChan := m.progressChan
	recordMu := m.recordMu
	records := m.lastRecords

	return func() tea.Msg {
		stats, err := engine.Run(ctx, progressChan, func(rec FileRecord) {
			recordMu.Lock()
			*records = append(*records, rec)
			if len(*records) > recordTail {
				*records = (*records)[len(*records)-recordTail:]
			}
			recordMu.Unlock()
		})
		close(progressChan)
		return runCompleteMsg{stats: stats, err: err}
	}
}

// waitForProgress polls the progress channel for the next update.
func waitForProgress(progressChan <-chan ScanProgress) tea.Cmd {
	return func() tea.Msg {
		prog, ok := <-progressChan
		if !ok {
			return nil
		}
		return progressMsg(prog)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		progressWidth := msg.Width - 35
		if progressWidth < 20 {
			progressWidth = 20
		}
		m.progress.Width = progressWidth
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			if m.currentPhase != phaseDone {
				m.statusMsg = "Cancelling after in-flight files..."
				return m, nil
			}
			if m.cache != nil {
				m.cache.Close()
			}
			return m, tea.Quit
		case "enter":
			if m.currentPhase == phaseDone {
				if m.cache != nil {
					m.cache.Close()
				}
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.runProgress = ScanProgress(msg)
		// During the scan both counters grow in lockstep; once the
		// worker pool starts, processed trails the fixed total.
		if m.currentPhase == phaseScanning && m.runProgress.ProcessedFiles < m.runProgress.TotalFiles {
			m.currentPhase = phaseOrganizing
		}
		if m.currentPhase == phaseScanning {
			m.statusMsg = fmt.Sprintf("Found %d media files...", m.runProgress.TotalFiles)
		} else if m.currentPhase == phaseOrganizing {
			m.statusMsg = "Organizing..."
		}
		return m, waitForProgress(m.progressChan)

	case runCompleteMsg:
		m.currentPhase = phaseDone
		m.stats = msg.stats
		if msg.err != nil {
			m.err = msg.err
		}
		m.statusMsg = fmt.Sprintf("Complete! %d organized, %d duplicates skipped, %d errors",
			msg.stats.Organized, msg.stats.Duplicates, msg.stats.Errors)
		return m, nil

	case errMsg:
		m.err = error(msg)
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n")

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		MarginLeft(2)
	b.WriteString(titleStyle.Render("Media Sorter"))
	b.WriteString("\n\n")

	configStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginLeft(2)
	modeStr := map[bool]string{true: "MOVE", false: "COPY"}[m.config.Move]
	if m.config.DryRun {
		modeStr = "DRY RUN"
	}
	b.WriteString(configStyle.Render(fmt.Sprintf(
		"%s → %s | Workers: %d | %s",
		truncatePath(m.config.SourceRoot, 25),
		truncatePath(m.config.DestRoot, 25),
		m.config.Workers,
		modeStr,
	)))
	b.WriteString("\n\n")

	// Phase indicator
	b.WriteString("  ")
	phases := []string{"Scanning", "Organizing", "Done"}
	for i, name := range phases {
		if i > 0 {
			b.WriteString(" → ")
		}
		switch {
		case int(m.currentPhase) == i:
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render(name))
		case int(m.currentPhase) > i:
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("✓"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(name))
		}
	}
	b.WriteString("\n\n")

	switch m.currentPhase {
	case phaseScanning, phaseOrganizing:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", m.spinner.View(), m.statusMsg))

		if m.currentPhase == phaseOrganizing && m.runProgress.TotalFiles > 0 {
			percent := float64(m.runProgress.ProcessedFiles) / float64(m.runProgress.TotalFiles)
			b.WriteString("  ")
			b.WriteString(m.progress.ViewAs(percent))
			b.WriteString(fmt.Sprintf(" %d%% (%d/%d files)\n\n",
				int(percent*100),
				m.runProgress.ProcessedFiles,
				m.runProgress.TotalFiles))
		}

		if m.runProgress.CurrentFile != "" {
			maxLen := m.width - 20
			if maxLen < 40 {
				maxLen = 40
			}
			fileStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				MarginLeft(2)
			b.WriteString(fileStyle.Render(truncatePath(m.runProgress.CurrentFile, maxLen)))
			b.WriteString("\n")
		}

		b.WriteString(m.renderRecords())

	case phaseDone:
		doneStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			MarginLeft(2)
		b.WriteString(doneStyle.Render("✓ " + m.statusMsg))
		b.WriteString("\n\n")
		b.WriteString(m.renderSummary())
		if m.err != nil {
			errStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				MarginLeft(2)
			b.WriteString(errStyle.Render(fmt.Sprintf("Run aborted: %v", m.err)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginLeft(2)
	if m.currentPhase == phaseDone {
		b.WriteString(helpStyle.Render("enter: quit • q: quit"))
	} else {
		b.WriteString(helpStyle.Render("q: cancel & quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// renderRecords shows the tail of per-file outcomes.
func (m model) renderRecords() string {
	m.recordMu.Lock()
	records := make([]FileRecord, len(*m.lastRecords))
	copy(records, *m.lastRecords)
	m.recordMu.Unlock()

	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	lineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginLeft(2)
	for _, rec := range records {
		var line string
		switch rec.State {
		case StateTransferred, StatePlanned:
			line = fmt.Sprintf("✓ %s → %s", truncatePath(rec.Source, 30), truncatePath(rec.Dest, 30))
		case StateSkippedDuplicate:
			line = fmt.Sprintf("– %s (duplicate)", truncatePath(rec.Source, 40))
		case StateAlreadyOrganized:
			line = fmt.Sprintf("– %s (already organized)", truncatePath(rec.Source, 40))
		case StateFailed:
			line = fmt.Sprintf("✗ %s: %v", truncatePath(rec.Source, 30), rec.Err)
		}
		b.WriteString(lineStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderSummary() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		MarginLeft(2)

	verb := "Organized"
	if m.config.DryRun {
		verb = "Planned"
	}
	return boxStyle.Render(fmt.Sprintf(
		"Processed: %d • %s: %d • Duplicates: %d\nAlready organized: %d • Renamed: %d • Errors: %d",
		m.stats.Processed,
		verb,
		m.stats.Organized,
		m.stats.Duplicates,
		m.stats.AlreadyOrganized,
		m.stats.Renamed,
		m.stats.Errors,
	)) + "\n\n"
}

// truncatePath shortens a file path for display.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen > 10 {
		return "..." + path[len(path)-maxLen+3:]
	}
	return path[:maxLen]
}
