package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/format"
	"github.com/wippyai/fst-reader/reader"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sigStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err       error
	session   *reader.Session
	filename  string
	result    string
	queryAt   uint64
	timeRange fstreader.TimeRange
	timescale string
	sigs      []sigInfo
	timeIn    textinput.Model
	selected  int
	offset    int
	state     modelState
}

type sigInfo struct {
	path    string
	typeStr string
	handle  fstreader.Handle
}

type modelState int

const (
	stateSelectSig modelState = iota
	stateInputTime
	stateShowValue
)

const visibleSigs = 20

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		state:    stateSelectSig,
	}
}

type loadedMsg struct {
	err       error
	session   *reader.Session
	timeRange fstreader.TimeRange
	timescale string
	sigs      []sigInfo
}

type valueMsg struct {
	err   error
	value string
	at    uint64
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadFile
}

func (m *interactiveModel) loadFile() tea.Msg {
	s, err := reader.Open(m.filename, nil)
	if err != nil {
		return loadedMsg{err: err}
	}

	tr, err := s.TimeRange()
	if err != nil {
		return loadedMsg{err: err}
	}
	ts, err := s.Timescale()
	if err != nil {
		return loadedMsg{err: err}
	}

	var sigs []sigInfo
	var scopes []string
	h, err := s.Hierarchy()
	if err != nil {
		return loadedMsg{err: err}
	}
	h.Rewind()
	for {
		n, ok := h.Next()
		if !ok {
			break
		}
		switch n.Type {
		case format.NodeScope:
			scopes = append(scopes, n.Scope.Name)
		case format.NodeUpscope:
			scopes = scopes[:len(scopes)-1]
		case format.NodeVar:
			path := n.Var.Name
			if len(scopes) > 0 {
				path = strings.Join(scopes, ".") + "." + path
			}
			sigs = append(sigs, sigInfo{
				path:    path,
				typeStr: fmt.Sprintf("%s[%d]", n.Var.Type, n.Var.Bits),
				handle:  n.Var.Handle,
			})
		}
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].path < sigs[j].path })

	return loadedMsg{session: s, timeRange: tr, timescale: ts, sigs: sigs}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.session != nil {
				m.session.Close()
			}
			return m, tea.Quit

		case "q":
			if m.state == stateSelectSig {
				if m.session != nil {
					m.session.Close()
				}
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectSig && m.selected > 0 {
				m.selected--
				if m.selected < m.offset {
					m.offset = m.selected
				}
			}

		case "down", "j":
			if m.state == stateSelectSig && m.selected < len(m.sigs)-1 {
				m.selected++
				if m.selected >= m.offset+visibleSigs {
					m.offset = m.selected - visibleSigs + 1
				}
			}

		case "enter":
			switch m.state {
			case stateSelectSig:
				m.prepareTimeInput()
				m.state = stateInputTime

			case stateInputTime:
				return m, m.queryValue

			case stateShowValue:
				m.state = stateSelectSig
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputTime:
				m.state = stateSelectSig
			case stateShowValue:
				m.state = stateSelectSig
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.timeRange = msg.timeRange
		m.timescale = msg.timescale
		m.sigs = msg.sigs

	case valueMsg:
		m.result = msg.value
		m.queryAt = msg.at
		m.err = msg.err
		m.state = stateShowValue
	}

	if m.state == stateInputTime {
		var cmd tea.Cmd
		m.timeIn, cmd = m.timeIn.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareTimeInput() {
	ti := textinput.New()
	ti.Prompt = "time: "
	ti.Placeholder = fmt.Sprintf("%d..%d", m.timeRange.Start, m.timeRange.End)
	ti.Width = 24
	ti.Focus()
	m.timeIn = ti
}

func (m *interactiveModel) queryValue() tea.Msg {
	t, err := strconv.ParseUint(strings.TrimSpace(m.timeIn.Value()), 10, 64)
	if err != nil {
		return valueMsg{err: fmt.Errorf("not a time: %w", err)}
	}

	sig := m.sigs[m.selected]
	v, err := m.session.ValueAt(sig.handle, t)
	if err != nil {
		return valueMsg{err: err, at: t}
	}
	return valueMsg{value: v.String(), at: t}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowValue {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.session == nil {
		return "Loading waveform..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("FST Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(helpStyle.Render(fmt.Sprintf("  [%d, %d] %s", m.timeRange.Start, m.timeRange.End, m.timescale)))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectSig:
		b.WriteString("Select a signal:\n\n")
		end := m.offset + visibleSigs
		if end > len(m.sigs) {
			end = len(m.sigs)
		}
		for i := m.offset; i < end; i++ {
			s := m.sigs[i]
			line := sigStyle.Render(s.path) + " " + typeStyle.Render(s.typeStr)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + s.path + " " + s.typeStr))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter query • q quit"))

	case stateInputTime:
		sig := m.sigs[m.selected]
		b.WriteString(fmt.Sprintf("Query %s\n\n", sigStyle.Render(sig.path)))
		b.WriteString(m.timeIn.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter query • esc back"))

	case stateShowValue:
		sig := m.sigs[m.selected]
		b.WriteString(fmt.Sprintf("%s @ %d%s:\n\n", sigStyle.Render(sig.path), m.queryAt, m.timescale))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
