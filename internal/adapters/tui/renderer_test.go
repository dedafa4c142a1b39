package tui_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/chore/internal/adapters/tui"
	"go.trai.ch/chore/internal/core/domain"
)

func newTestRenderer(m *tui.Model) *tui.Renderer {
	return tui.NewRenderer(
		m,
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
}

func TestRenderer_Lifecycle(t *testing.T) {
	model := tui.NewModel(io.Discard)
	renderer := newTestRenderer(&model)

	require.NoError(t, renderer.Start(context.Background()))
	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())
	require.NoError(t, renderer.Wait(), "Wait can be called again")
}

func TestRenderer_ForwardsEvents(t *testing.T) {
	model := tui.NewModel(io.Discard)
	renderer := newTestRenderer(&model)
	require.NoError(t, renderer.Start(context.Background()))

	now := time.Now()
	renderer.OnPlanEmit([]string{"install", "freeze"}, map[string][]string{"freeze": {"install"}}, []string{"freeze"})
	renderer.OnCommandStart("s1", "", "install", now)
	renderer.OnCommandLog("s1", []byte("ok\n"))
	renderer.OnCommandComplete("s1", now.Add(time.Second), nil, false)
	renderer.OnCommandStart("s2", "", "freeze", now)
	renderer.OnCommandComplete("s2", now, nil, true)

	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())

	require.Len(t, model.Commands, 2)
	assert.Equal(t, tui.StatusDone, model.Commands[0].Status)
	assert.Equal(t, time.Second, model.Commands[0].Duration)
	assert.True(t, model.Commands[1].Cached)
	assert.Equal(t, []string{"install"}, model.Commands[1].Prerequisites)
}

func TestRenderer_Interrupted(t *testing.T) {
	model := tui.NewModel(io.Discard)
	renderer := newTestRenderer(&model)
	require.NoError(t, renderer.Start(context.Background()))

	renderer.OnPlanEmit([]string{"experiments"}, nil, []string{"experiments"})
	renderer.Program().Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.ErrorIs(t, renderer.Wait(), domain.ErrInterrupted)
}
