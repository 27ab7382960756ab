// Package tui is an interactive terminal browser for repository rows.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stahnma/gh-repostats/internal/filter"
	"github.com/stahnma/gh-repostats/internal/format"
	"github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

// Source provides rows for an owner. *analyzer.Analyzer implements it.
type Source interface {
	Repositories(ctx context.Context, owner string, kind github.Kind) ([]metrics.Row, error)
	Refresh(ctx context.Context, owner string, kind github.Kind) ([]metrics.Row, error)
}

type view int

const (
	viewTable view = iota
	viewBars
	viewHistogram
	viewCount
)

func (v view) String() string {
	switch v {
	case viewBars:
		return "bars"
	case viewHistogram:
		return "histogram"
	}
	return "table"
}

// rowsMsg carries the result of a fetch.
type rowsMsg struct {
	rows []metrics.Row
	err  error
}

// Options configures New.
type Options struct {
	Owner string
	Kind  github.Kind
	Query filter.Query
	Wide  bool
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx  context.Context
	src  Source
	opts Options

	all     []metrics.Row
	rows    []metrics.Row
	metric  int
	sorted  bool
	view    view
	offset  int
	height  int
	width   int
	loading bool
	err     error
}

// New creates a browser for opts.Owner. Rows are loaded by Init.
func New(ctx context.Context, src Source, opts Options) Model {
	return Model{
		ctx:     ctx,
		src:     src,
		opts:    opts,
		height:  15,
		width:   80,
		loading: true,
	}
}

// Err returns the last fetch or filter error.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return m.load(false)
}

func (m Model) load(refresh bool) tea.Cmd {
	return func() tea.Msg {
		fetch := m.src.Repositories
		if refresh {
			fetch = m.src.Refresh
		}
		rows, err := fetch(m.ctx, m.opts.Owner, m.opts.Kind)
		return rowsMsg{rows: rows, err: err}
	}
}

func (m Model) currentMetric() metrics.Metric {
	return metrics.All[m.metric]
}

// apply filters and orders the fetched rows for display.
func (m Model) apply() Model {
	q := m.opts.Query
	if m.sorted {
		q.Sort = string(m.currentMetric())
	}
	rows, err := q.Run(m.all)
	if err != nil {
		m.err = err
		m.rows = nil
		return m
	}
	m.rows = rows
	m.offset = min(m.offset, max(len(rows)-1, 0))
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.all = msg.rows
			m = m.apply()
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.view = (m.view + 1) % viewCount
		case "shift+tab":
			m.view = (m.view + viewCount - 1) % viewCount
		case "right", "l", "m":
			m.metric = (m.metric + 1) % len(metrics.All)
			m = m.apply()
		case "left", "h", "M":
			m.metric = (m.metric + len(metrics.All) - 1) % len(metrics.All)
			m = m.apply()
		case "s":
			m.sorted = !m.sorted
			m.offset = 0
			m = m.apply()
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.load(true)
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.rows)-1 {
				m.offset++
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(format.StyleTitle.Render(fmt.Sprintf("%s (%s)", m.opts.Owner, m.opts.Kind)))
	b.WriteString("  ")
	b.WriteString(format.StyleDim.Render(fmt.Sprintf("%s · %s", m.view, m.currentMetric().Label())))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading repositories…")
	case m.err != nil:
		b.WriteString("Error: " + m.err.Error())
	default:
		b.WriteString(m.content())
	}

	b.WriteString("\n\n")
	b.WriteString(format.StyleDim.Render("tab view  ←/→ metric  s sort  ↑/↓ scroll  r refresh  q quit"))
	return b.String()
}

func (m Model) content() string {
	switch m.view {
	case viewBars:
		out, err := format.RenderBars(m.window(), m.currentMetric(), m.barWidth())
		if err != nil {
			return "Error: " + err.Error()
		}
		return out
	case viewHistogram:
		bins, err := metrics.Histogram(m.rows, m.currentMetric(), metrics.DefaultMaxBins)
		if err != nil {
			return "Error: " + err.Error()
		}
		return format.RenderHistogram(bins, m.currentMetric(), m.barWidth())
	}
	return format.RenderTable(m.window(), m.opts.Wide) + "\n" +
		format.StyleDim.Render(fmt.Sprintf("[%d-%d/%d]", min(m.offset+1, len(m.rows)), min(m.offset+m.height, len(m.rows)), len(m.rows)))
}

// window returns the rows visible at the current scroll offset.
func (m Model) window() []metrics.Row {
	end := min(m.offset+m.height, len(m.rows))
	if m.offset >= end {
		return nil
	}
	return m.rows[m.offset:end]
}

func (m Model) barWidth() int {
	return max(m.width/2, 10)
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, src Source, opts Options) error {
	p := tea.NewProgram(New(ctx, src, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
