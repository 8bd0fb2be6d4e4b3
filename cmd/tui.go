// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/neurotap/mindstat/pkg/thinkgear"
)

// Event log entry
type eventEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for anomalies, false for informational events
}

// dashModel is the Bubble Tea model for the live dashboard. The decode
// pipeline lives behind pointers so it survives the value copies Bubble
// Tea makes of the model.
type dashModel struct {
	connInfo string

	counters *thinkgear.Counters
	store    *thinkgear.ValueStore
	frames   *thinkgear.FrameDecoder
	fields   *thinkgear.PayloadDecoder
	stats    *thinkgear.Statistics

	selected  thinkgear.Selection
	prevKinds map[thinkgear.ErrorKind]uint64
	events    []eventEntry
	maxEvents int
	bandMax   uint32

	synchronized bool
	lastFrame    time.Time

	attBar progress.Model
	medBar progress.Model
	sigBar progress.Model

	width    int
	height   int
	quitting bool
	closed   bool
}

// Messages
type dashTickMsg time.Time
type dashChunkMsg []byte
type dashClosedMsg struct {
	err error
}

func initialDashModel(connInfo string, selected thinkgear.Selection) dashModel {
	counters := &thinkgear.Counters{}
	store := &thinkgear.ValueStore{}

	newBar := func() progress.Model {
		return progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(34),
			progress.WithoutPercentage(),
		)
	}

	return dashModel{
		connInfo:  connInfo,
		counters:  counters,
		store:     store,
		frames:    thinkgear.NewFrameDecoder(counters),
		fields:    thinkgear.NewPayloadDecoder(store, counters),
		stats:     thinkgear.NewStatistics(counters),
		selected:  selected,
		prevKinds: make(map[thinkgear.ErrorKind]uint64),
		events:    make([]eventEntry, 0),
		maxEvents: 100,
		bandMax:   1,
		attBar:    newBar(),
		medBar:    newBar(),
		sigBar:    newBar(),
		width:     80,
		height:    24,
	}
}

func (m dashModel) Init() tea.Cmd {
	return tea.Batch(
		dashTickCmd(),
		tea.EnterAltScreen,
	)
}

func dashTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "1", "2", "3", "4", "5", "6", "7", "8":
			m.selected = m.selected.Toggle(thinkgear.Channel(key[0] - '1'))
		case "a":
			m.selected = m.selected.Toggle(thinkgear.ChannelAttention)
		case "m":
			m.selected = m.selected.Toggle(thinkgear.ChannelMeditation)
		case "s":
			m.selected = m.selected.Toggle(thinkgear.ChannelSignal)
		case "0":
			m.selected = thinkgear.SelectAll()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dashTickMsg:
		m.stats.CalculateRates()
		return m, dashTickCmd()

	case dashChunkMsg:
		m.consumeChunk(msg)

	case dashClosedMsg:
		m.closed = true
		if msg.err != nil && msg.err != ErrConnectionClosed {
			m.addEvent(fmt.Sprintf("Connection lost: %v", msg.err), true)
		} else {
			m.addEvent("Connection closed", false)
		}
	}

	return m, nil
}

// consumeChunk feeds one read chunk through the decode pipeline and
// turns counter movement into log entries.
func (m *dashModel) consumeChunk(data []byte) {
	m.stats.AddBytes(len(data))
	for _, b := range data {
		payload := m.frames.Feed(b)
		if payload == nil {
			continue
		}
		m.stats.AddFrame()
		m.fields.Decode(payload)
		m.lastFrame = time.Now()

		if !m.synchronized {
			m.synchronized = true
			if skipped := m.counters.Lifetime(thinkgear.DiscardedBytes); skipped > 0 {
				m.addEvent(fmt.Sprintf("Synchronized after skipping %d invalid bytes", skipped), false)
			} else {
				m.addEvent("Synchronized", false)
			}
		}
	}

	var bands [thinkgear.BandCount]uint32
	m.store.SnapshotBands(&bands)
	for _, v := range bands {
		if v > m.bandMax {
			m.bandMax = v
		}
	}

	m.collectCounterEvents()
}

// collectCounterEvents logs lifetime counter movement since the last
// chunk. Movement before synchronization is absorbed silently; the sync
// entry already reports it.
func (m *dashModel) collectCounterEvents() {
	for _, k := range thinkgear.ErrorKinds() {
		lt := m.counters.Lifetime(k)
		if lt <= m.prevKinds[k] {
			continue
		}
		delta := lt - m.prevKinds[k]
		m.prevKinds[k] = lt
		if !m.synchronized {
			continue
		}
		isError := k != thinkgear.SkippedUpdate && k != thinkgear.DiscardedBytes
		m.addEvent(fmt.Sprintf("%s +%d", k, delta), isError)
	}
}

func (m *dashModel) addEvent(message string, isError bool) {
	m.events = append(m.events, eventEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
}

func (m dashModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("MINDSTAT - LIVE EEG"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Keys: 1-8 bands, a/m/s aux, 0 all, q quit", m.connInfo)))
	s.WriteString("\n\n")

	// Link status
	switch {
	case m.closed:
		s.WriteString(errorStyle.Render("✗ Connection closed"))
		s.WriteString("\n\n")
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for first frame..."))
		s.WriteString("\n\n")
	default:
		s.WriteString(valueStyle.Render("✓ Receiving"))
		if !m.lastFrame.IsZero() {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (last frame %.1fs ago)", time.Since(m.lastFrame).Seconds())))
		}
		s.WriteString("\n\n")
	}

	// Focus meters
	att := m.store.Value(thinkgear.ChannelAttention)
	med := m.store.Value(thinkgear.ChannelMeditation)
	sig := m.store.Value(thinkgear.ChannelSignal)

	focusLine := func(ch thinkgear.Channel, label string, bar progress.Model, frac float64, tail string) string {
		if !m.selected.Has(ch) {
			return dimStyle.Render(label + " (hidden)")
		}
		return fmt.Sprintf("%s %s %s", labelStyle.Render(label), bar.ViewAs(frac), tail)
	}

	// eSense values are nominally 0-100, but a checksum-valid frame can
	// carry any byte.
	focus := strings.Builder{}
	focus.WriteString(focusLine(thinkgear.ChannelAttention, "Attention: ",
		m.attBar, thinkgear.Clamp(float64(att)/100, 0, 1), valueStyle.Render(fmt.Sprintf("%3d", att))))
	focus.WriteString("\n")
	focus.WriteString(focusLine(thinkgear.ChannelMeditation, "Meditation:",
		m.medBar, thinkgear.Clamp(float64(med)/100, 0, 1), valueStyle.Render(fmt.Sprintf("%3d", med))))
	focus.WriteString("\n")
	focus.WriteString(focusLine(thinkgear.ChannelSignal, "Contact:   ",
		m.sigBar, contactQuality(sig), contactLabel(sig, valueStyle, warningStyle, errorStyle)))
	s.WriteString(boxStyle.Render(focus.String()))
	s.WriteString("\n\n")

	// Band meters
	bands := strings.Builder{}
	var snap [thinkgear.BandCount]uint32
	m.store.SnapshotBands(&snap)
	const meterWidth = 30
	for i, v := range snap {
		ch := thinkgear.Channel(i)
		if i > 0 {
			bands.WriteString("\n")
		}
		if !m.selected.Has(ch) {
			bands.WriteString(dimStyle.Render(fmt.Sprintf("%-10s (hidden)", ch.Name())))
			continue
		}
		filled := int(uint64(v) * meterWidth / uint64(m.bandMax))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
		bands.WriteString(fmt.Sprintf("%s %s %8d",
			labelStyle.Render(fmt.Sprintf("%-10s", ch.Name())), valueStyle.Render(bar), v))
	}
	s.WriteString(boxStyle.Render(bands.String()))
	s.WriteString("\n\n")

	// Statistics
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Bytes:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalBytes)),
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.Frames)),
		labelStyle.Render("Anomalies:"), func() string {
			n := m.counters.ErrorEvents()
			if n > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", n))
			}
			return valueStyle.Render("0")
		}(),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.FrameRate)),
		labelStyle.Render("Byte Rate:"), valueStyle.Render(fmt.Sprintf("%.0f B/s", m.stats.ByteRate)),
	))
	if kinds := m.nonzeroKinds(); kinds != "" {
		statsContent.WriteString("\n")
		statsContent.WriteString(headerStyle.Render(kinds))
	}
	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 26 // Reserve space for the panels above
	if logHeight < 4 {
		logHeight = 4
	}

	logContent := strings.Builder{}
	startIdx := len(m.events) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.events) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.events); i++ {
			entry := m.events[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

// nonzeroKinds renders the lifetime counters that have fired.
func (m dashModel) nonzeroKinds() string {
	var parts []string
	for _, k := range thinkgear.ErrorKinds() {
		if n := m.counters.Lifetime(k); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", k, n))
		}
	}
	return strings.Join(parts, "  ")
}

// contactQuality maps the poor-signal value (0 good, 200 off-head) onto
// a 0..1 meter fraction.
func contactQuality(sig uint32) float64 {
	if sig >= 200 {
		return 0
	}
	return float64(200-sig) / 200
}

func contactLabel(sig uint32, good, warn, bad lipgloss.Style) string {
	switch {
	case sig == 0:
		return good.Render("good")
	case sig >= 200:
		return bad.Render("off head")
	default:
		return warn.Render(fmt.Sprintf("poor (%d)", sig))
	}
}

// runDashboard drives the full-screen dashboard over an open connection.
func runDashboard(conn Connection, connInfo string, selected thinkgear.Selection) error {
	m := initialDashModel(connInfo, selected)
	p := tea.NewProgram(m)

	// Serial reader goroutine
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				p.Send(dashChunkMsg(chunk))
			}
			if err != nil {
				p.Send(dashClosedMsg{err: err})
				return
			}
		}
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	if fm, ok := final.(dashModel); ok {
		fmt.Fprintf(os.Stderr, "%s", fm.stats.String())
	}
	return nil
}
