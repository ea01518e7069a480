// Package tui is the terminal pager over a FITS table, for working over ssh
// or anywhere the desktop viewer cannot run.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"fitsview/internal/table"
)

type Model struct {
	path    string
	browser *table.Browser

	// Command mode state
	input   textinput.Model
	command bool
	errMsg  string
}

func New(path string, browser *table.Browser) Model {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.CharLimit = 128

	return Model{
		path:    path,
		browser: browser,
		input:   ti,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.command {
			return m.handleCommandKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}
	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "n", "right", "l", "pgdown":
		m.browser.NextPage()
		m.errMsg = ""
	case "p", "left", "h", "pgup":
		m.browser.PrevPage()
		m.errMsg = ""
	case "g":
		m.errMsg = ""
		if err := m.browser.SetPage(0); err != nil {
			m.errMsg = err.Error()
		}
	case "G":
		m.errMsg = ""
		if err := m.browser.SetPage(m.browser.PageCount() - 1); err != nil {
			m.errMsg = err.Error()
		}
	case ":":
		m.command = true
		m.errMsg = ""
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) handleCommandKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.command = false
		m.input.Blur()
		return m, nil
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.command = false
		m.input.Blur()
		return m.execute(line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute runs one command line: page N, rows N, width N, cols PATTERN,
// quit. Errors from the browser land in the status area.
func (m Model) execute(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}

	arg := func() (int, error) {
		if len(fields) < 2 {
			return 0, fmt.Errorf("%s needs a number", fields[0])
		}
		return strconv.Atoi(fields[1])
	}

	var err error
	switch fields[0] {
	case "q", "quit":
		return m, tea.Quit
	case "page":
		var n int
		if n, err = arg(); err == nil {
			err = m.browser.SetPage(n - 1)
		}
	case "rows":
		var n int
		if n, err = arg(); err == nil {
			err = m.browser.SetPageSize(n)
		}
	case "width":
		var n int
		if n, err = arg(); err == nil {
			err = m.browser.SetColumnWidth(n)
		}
	case "cols":
		if len(fields) < 2 {
			err = fmt.Errorf("cols needs a pattern")
		} else {
			err = m.browser.SelectColumnsGlob(fields[1])
		}
	default:
		err = fmt.Errorf("unknown command %q", fields[0])
	}

	if err != nil {
		m.errMsg = err.Error()
	} else {
		m.errMsg = ""
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("fitsview "+m.path) + "\n\n")
	sb.WriteString(m.browser.Render())
	sb.WriteByte('\n')
	sb.WriteString(StatusStyle.Render(m.browser.Status()) + "\n")

	if m.errMsg != "" {
		sb.WriteString(ErrorStyle.Render(m.errMsg) + "\n")
	}
	if m.command {
		sb.WriteString(m.input.View() + "\n")
	} else {
		sb.WriteString(HelpStyle.Render("n/p page  g/G first/last  : command  q quit") + "\n")
	}
	return sb.String()
}
