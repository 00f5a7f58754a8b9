// Package ui implements the interactive buffer viewer behind "pinpoint view".
// The model owns a read cursor and renders the buffer in a viewport with a
// line-number gutter, a status bar, and the snippet for the cursor position.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"pinpoint/internal/snippet"
	"pinpoint/internal/source"
)

// Rows reserved below the viewport: status bar plus the two snippet rows.
const chromeHeight = 3

type viewerModel struct {
	path    string
	cur     *source.Cursor
	vp      viewport.Model
	width   int
	ready   bool
	gotoOn  bool
	gotoBuf string
}

// NewViewerModel returns a Bubble Tea model that walks a read cursor across
// the buffer. Arrow keys and h/j/k/l move byte- and line-wise, g jumps to a
// typed offset, r resets the cursor, q or ctrl+c quits.
func NewViewerModel(path string, cur *source.Cursor) tea.Model {
	return &viewerModel{path: path, cur: cur}
}

func (m *viewerModel) Init() tea.Cmd {
	return nil
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.gotoOn {
			m.applyGotoKey(msg)
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "right", "l":
			_, _ = m.cur.Read()
		case "left", "h":
			m.cur.Unread()
		case "down", "j":
			m.moveLine(1)
		case "up", "k":
			m.moveLine(-1)
		case "g":
			m.gotoOn = true
			m.gotoBuf = ""
		case "r":
			m.cur.Reset()
		}
		m.ensureVisible()
		return m, nil
	case tea.WindowSizeMsg:
		if msg.Width <= 0 || msg.Height <= 0 {
			return m, nil
		}
		m.width = msg.Width
		if !m.ready {
			m.vp = viewport.New(msg.Width, max(msg.Height-chromeHeight, 1))
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = max(msg.Height-chromeHeight, 1)
		}
		m.ensureVisible()
		return m, nil
	}
	return m, nil
}

func (m *viewerModel) View() string {
	if !m.ready {
		return "loading..."
	}
	m.vp.SetContent(m.contentView())

	var b strings.Builder
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.snippetView())
	return b.String()
}

func (m *viewerModel) applyGotoKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "enter":
		if off, err := strconv.ParseUint(m.gotoBuf, 10, 32); err == nil {
			m.moveTo(uint32(off))
		}
		m.gotoOn = false
		m.ensureVisible()
	case "esc":
		m.gotoOn = false
	case "backspace":
		if len(m.gotoBuf) > 0 {
			m.gotoBuf = m.gotoBuf[:len(m.gotoBuf)-1]
		}
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '0' && s[0] <= '9' && len(m.gotoBuf) < 10 {
			m.gotoBuf += s
		}
	}
}

// moveTo places the cursor at off, clamped to the buffer length. Backward
// moves replay from the start because the cursor only steps byte-wise.
func (m *viewerModel) moveTo(off uint32) {
	if off > m.cur.Len() {
		off = m.cur.Len()
	}
	if pos := m.cur.Pos(); off >= pos {
		m.cur.SkipN(off - pos)
		return
	}
	m.cur.Reset()
	m.cur.SkipN(off)
}

// moveLine moves the cursor delta lines keeping the column where the target
// line is long enough, clamping to the target line's width otherwise.
func (m *viewerModel) moveLine(delta int) {
	idx := m.cur.Index()
	loc := m.cur.Location()
	line := int64(loc.Line) + int64(delta)
	if line < 0 || line >= int64(idx.LineCount()) {
		return
	}
	target := source.Location{Line: uint32(line), Col: loc.Col}
	if width := idx.LineSpan(target.Line, false).Len(); target.Col > width {
		target.Col = width
	}
	m.moveTo(idx.OffsetFor(target))
}

func (m *viewerModel) ensureVisible() {
	if !m.ready {
		return
	}
	line := int(m.cur.Location().Line)
	if line < m.vp.YOffset {
		m.vp.SetYOffset(line)
	}
	if bottom := m.vp.YOffset + m.vp.Height - 1; line > bottom {
		m.vp.SetYOffset(line - m.vp.Height + 1)
	}
}

func (m *viewerModel) contentView() string {
	idx := m.cur.Index()
	curLine := m.cur.Location().Line
	numWidth := len(strconv.FormatUint(uint64(idx.LineCount()), 10))

	var b strings.Builder
	for line := uint32(0); line < idx.LineCount(); line++ {
		gutter := "| "
		if line == curLine {
			gutter = "|>"
		}
		text := expandTabs(string(m.cur.Line(line, false)), snippet.DefaultTabWidth)
		fmt.Fprintf(&b, "%*d%s%s\n", numWidth, line+1, gutter, text)
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	gotoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3"))
)

func (m *viewerModel) statusView() string {
	if m.gotoOn {
		return gotoStyle.Render(runewidth.FillRight(fmt.Sprintf(" goto offset: %s", m.gotoBuf), m.width))
	}
	loc := m.cur.Location()
	left := fmt.Sprintf(" %s", m.path)
	right := fmt.Sprintf("%d / %d  %d:%d ", m.cur.Pos(), m.cur.Len(), loc.Line+1, loc.Col+1)
	gap := m.width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		left = truncate(left, m.width-runewidth.StringWidth(right)-1)
		gap = 1
	}
	return statusStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *viewerModel) snippetView() string {
	var b strings.Builder
	err := snippet.WriteLocation(&b, m.cur.Content(), m.cur.Index(), m.cur.Location(), snippet.Options{})
	if err != nil {
		return ""
	}
	return strings.TrimRight(b.String(), "\n")
}

func expandTabs(text string, tab int) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	var b strings.Builder
	col := 0
	for _, r := range text {
		if r == '\t' {
			n := tab - col%tab
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
