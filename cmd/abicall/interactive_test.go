package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wippyai/contract-abi/config"
)

func newTestModel(t *testing.T) *interactiveModel {
	t.Helper()
	ctx := context.Background()
	a := &app{cfg: config.Default(), logger: zap.NewNop()}
	s, err := a.openSession(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(ctx) })
	return newInteractiveModel(ctx, s)
}

func press(t *testing.T, m *interactiveModel, key tea.KeyMsg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(key)
	return cmd
}

func runCmd(t *testing.T, m *interactiveModel, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func TestInteractiveCallWithoutInputs(t *testing.T) {
	m := newTestModel(t)
	require.Contains(t, m.View(), "endpoint_0")

	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.selected)

	runCmd(t, m, press(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, stateShowResult, m.state)
	require.NoError(t, m.err)
	require.Contains(t, m.View(), "status: ok")

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, stateSelectFunc, m.state)
}

func TestInteractiveRejection(t *testing.T) {
	m := newTestModel(t)
	for m.endpoints()[m.selected].Name != "endpoint_2" {
		press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInputArgs, m.state)
	require.Len(t, m.inputs, 5)

	for i, v := range []string{"4", "76", "874566", "8984584484", "1848"} {
		m.inputs[i].SetValue(v)
	}
	runCmd(t, m, press(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

	require.Equal(t, stateShowResult, m.state)
	require.NotNil(t, m.out)
	require.Contains(t, m.View(), "b failed")
}
