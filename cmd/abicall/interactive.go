package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/dispatch"
	"github.com/wippyai/contract-abi/errors"
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

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Pick endpoints and call them from a terminal UI",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.Unsupported(errors.PhaseLoad, "interactive mode without a terminal")
			}
			ctx := cmd.Context()
			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)
			if _, err := s.requireDispatcher(); err != nil {
				return err
			}

			p := tea.NewProgram(newInteractiveModel(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	ctx      context.Context
	session  *session
	out      *dispatch.Outcome
	err      error
	result   string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type callResultMsg struct {
	out    *dispatch.Outcome
	err    error
	result string
}

func newInteractiveModel(ctx context.Context, s *session) *interactiveModel {
	return &interactiveModel{ctx: ctx, session: s, state: stateSelectFunc}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) endpoints() []*abi.Endpoint {
	return m.session.def.Endpoints
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.endpoints())-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.endpoints()) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callEndpoint
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.callEndpoint

			case stateShowResult:
				m.reset()
			}

		case "tab", "shift+tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.inputs) - 1
				}
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.reset()
			}
		}

	case callResultMsg:
		m.out = msg.out
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectFunc
	m.out = nil
	m.result = ""
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	ep := m.endpoints()[m.selected]
	m.inputs = make([]textinput.Model, len(ep.Inputs))
	for i, p := range ep.Inputs {
		ti := textinput.New()
		ti.Placeholder = p.TypeString()
		ti.Prompt = p.Name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// callEndpoint parses the inputs as YAML values and dispatches the call.
// Trailing empty inputs are omitted so optional and variadic parameters
// can be left out.
func (m *interactiveModel) callEndpoint() tea.Msg {
	ep := m.endpoints()[m.selected]

	n := len(m.inputs)
	for n > 0 && strings.TrimSpace(m.inputs[n-1].Value()) == "" {
		n--
	}
	natives := make([]any, n)
	for i := range natives {
		v, err := parseNative(m.inputs[i].Value())
		if err != nil {
			return callResultMsg{err: err}
		}
		natives[i] = v
	}
	list, err := abi.EncodeInputs(ep, natives)
	if err != nil {
		return callResultMsg{err: err}
	}

	out := m.session.dispatcher.Call(m.ctx, ep.Name, list)
	var buf bytes.Buffer
	if err := reportCall(&buf, m.session, out, ep.Name); err != nil {
		if _, isCall := err.(*callError); !isCall {
			return callResultMsg{out: &out, err: err}
		}
	}
	return callResultMsg{out: &out, result: strings.TrimRight(buf.String(), "\n")}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Contract ABI"))
	b.WriteString(" ")
	b.WriteString(m.session.source)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select an endpoint to call:\n\n")
		for i, ep := range m.endpoints() {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + ep.Signature()))
			} else {
				b.WriteString("  " + formatEndpoint(ep))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		ep := m.endpoints()[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(ep.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(ep.Inputs[i].TypeString()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("values are YAML • tab next field • enter call • esc back"))

	case stateShowResult:
		ep := m.endpoints()[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(ep.Name)))
		switch {
		case m.err != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		case m.out != nil && m.out.Status == dispatch.StatusRejected:
			b.WriteString(rejectStyle.Render(m.result))
		case m.out != nil && m.out.Status == dispatch.StatusFault:
			b.WriteString(errorStyle.Render(m.result))
		default:
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatEndpoint(ep *abi.Endpoint) string {
	params := make([]string, len(ep.Inputs))
	for i, p := range ep.Inputs {
		params[i] = p.Name + ": " + typeStyle.Render(p.TypeString())
	}
	result := ""
	if len(ep.Outputs) > 0 {
		outs := make([]string, len(ep.Outputs))
		for i, p := range ep.Outputs {
			outs[i] = p.TypeString()
		}
		result = " -> " + typeStyle.Render(strings.Join(outs, ", "))
	}
	return funcStyle.Render(ep.Name) + "(" + strings.Join(params, ", ") + ")" + result
}
