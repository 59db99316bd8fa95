package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/strandlabs/binmsg/translate"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	defStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	sizeStyle = lipgloss.NewStyle().
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

type modelState int

const (
	stateSelectDef modelState = iota
	stateInputHex
	stateShowResult
)

type interactiveModel struct {
	err      error
	reg      *translate.Registry
	names    []string
	input    textinput.Model
	result   string
	selected int
	state    modelState
}

func newInteractiveModel(reg *translate.Registry) *interactiveModel {
	var names []string
	for _, name := range reg.Names() {
		if reg.Get(name).HasFields() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return &interactiveModel{
		reg:   reg,
		names: names,
		state: stateSelectDef,
	}
}

type translateResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) translateMessage() tea.Msg {
	raw := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, m.input.Value())

	input, err := hex.DecodeString(raw)
	if err != nil {
		return translateResultMsg{err: fmt.Errorf("decode hex: %w", err)}
	}

	def := m.reg.Get(m.names[m.selected])

	w := translate.NewMessageWriter()
	defer w.Release()

	if err := w.Reserve(def, 1, len(input)); err != nil {
		return translateResultMsg{err: err}
	}
	offset, err := w.Write(def, input)
	if err != nil {
		return translateResultMsg{err: err}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "record offset: %d\n\n", offset)
	fmt.Fprintf(&b, "data arena (%d bytes):\n%s", len(w.DataBytes()), hex.Dump(w.DataBytes()))
	if len(w.StringBytes()) > 0 {
		fmt.Fprintf(&b, "\nstring arena (%d bytes):\n%s", len(w.StringBytes()), hex.Dump(w.StringBytes()))
		fmt.Fprintf(&b, "\nstrings: %q\n", string(w.StringBytes()))
	}
	return translateResultMsg{result: b.String()}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputHex {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectDef && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectDef && m.selected < len(m.names)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectDef:
				if len(m.names) == 0 {
					return m, nil
				}
				m.input = textinput.New()
				m.input.Placeholder = "01000000 02000000 ..."
				m.input.Focus()
				m.state = stateInputHex

			case stateInputHex:
				return m, m.translateMessage

			case stateShowResult:
				m.state = stateSelectDef
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputHex:
				m.state = stateSelectDef
			case stateShowResult:
				m.state = stateSelectDef
				m.result = ""
				m.err = nil
			}
		}

	case translateResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputHex {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("binmsg inspector"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectDef:
		if len(m.names) == 0 {
			b.WriteString(errorStyle.Render("schema document has no record definitions"))
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("q: quit"))
			return b.String()
		}
		b.WriteString("Select a definition:\n\n")
		for i, name := range m.names {
			def := m.reg.Get(name)
			line := fmt.Sprintf("  %s %s", defStyle.Render(name), sizeStyle.Render(fmt.Sprintf("(%d bytes)", def.Size())))
			if i == m.selected {
				line = selectedStyle.Render(fmt.Sprintf("> %s (%d bytes)", name, def.Size()))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down: select  enter: choose  q: quit"))

	case stateInputHex:
		b.WriteString(fmt.Sprintf("Message bytes for %s (hex):\n\n", defStyle.Render(m.names[m.selected])))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter: translate  esc: back  ctrl+c: quit"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter/esc: back  q: quit"))
	}

	return b.String()
}

func runInteractive(reg *translate.Registry) error {
	p := tea.NewProgram(newInteractiveModel(reg))
	_, err := p.Run()
	return err
}
