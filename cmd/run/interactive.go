package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/polkawasm/runtime"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
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
	err      error
	rt       *runtime.Runtime
	instance *runtime.Instance
	module   *runtime.Module
	store    *storage.Overlay
	filename string
	result   string
	root     string
	exports  []runtime.Export
	input    textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(filename string, store *storage.Overlay) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		store:    store,
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err     error
	rt      *runtime.Runtime
	mod     *runtime.Module
	exports []runtime.Export
}

type callResultMsg struct {
	err    error
	result string
	root   string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadRuntime
}

func (m *interactiveModel) loadRuntime() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	rt, err := runtime.New(ctx, runtime.Config{Codec: scale.DefaultOptions()})
	if err != nil {
		return loadedMsg{err: err}
	}

	mod, err := rt.Load(ctx, data)
	if err != nil {
		_ = rt.Close(ctx)
		return loadedMsg{err: err}
	}

	return loadedMsg{rt: rt, mod: mod, exports: mod.Exports()}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break
			}
			ctx := context.Background()
			if m.instance != nil {
				_ = m.instance.Close(ctx)
			}
			if m.rt != nil {
				_ = m.rt.Close(ctx)
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.exports)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.exports) == 0 {
					return m, nil
				}
				m.prepareInput()
				m.state = stateInputArgs
				return m, textinput.Blink

			case stateInputArgs:
				return m, m.callExport

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.module = msg.mod
		m.exports = msg.exports

	case callResultMsg:
		m.result = msg.result
		m.root = msg.root
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "0x..."
	ti.Prompt = "args: "
	ti.Width = 60
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) callExport() tea.Msg {
	ctx := context.Background()

	if m.instance == nil {
		if m.module == nil {
			return callResultMsg{err: fmt.Errorf("runtime not loaded")}
		}
		inst, err := m.module.Instantiate(ctx, m.store)
		if err != nil {
			return callResultMsg{err: err}
		}
		m.instance = inst
	}

	args, err := decodeHex(m.input.Value())
	if err != nil {
		return callResultMsg{err: fmt.Errorf("arguments: %w", err)}
	}

	exp := m.exports[m.selected]
	result, err := m.instance.Call(ctx, exp.Name, args)

	msg := callResultMsg{err: err}
	if root, rerr := m.store.Root(); rerr == nil {
		msg.root = fmt.Sprintf("0x%x", root[:])
	}
	if err != nil {
		return msg
	}
	if result == nil {
		msg.result = "()"
	} else {
		msg.result = fmt.Sprintf("0x%x", result)
	}
	return msg
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.module == nil {
		return "Loading runtime..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Runtime Runner"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select an entry point to call:\n\n")
		for i, exp := range m.exports {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatExport(exp)))
			} else {
				b.WriteString("  " + m.formatExport(exp))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		exp := m.exports[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(exp.Name)))
		b.WriteString(m.input.View())
		b.WriteString(" ")
		b.WriteString(typeStyle.Render("hex SCALE"))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		exp := m.exports[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(exp.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		if m.root != "" {
			b.WriteString("\n\nstate root ")
			b.WriteString(typeStyle.Render(m.root))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatExport(exp runtime.Export) string {
	s := funcStyle.Render(exp.Name) + "(" + typeStyle.Render("ptr, len") + ")"
	if !exp.Void {
		s += " -> " + typeStyle.Render("i64")
	}
	if !exp.Known {
		s += helpStyle.Render(" unknown")
	}
	return s
}

func runInteractive(filename string, store *storage.Overlay) error {
	p := tea.NewProgram(newInteractiveModel(filename, store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
