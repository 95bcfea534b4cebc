package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, m fieldModel, msgs ...tea.Msg) fieldModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(fieldModel)
		require.True(t, ok)
	}
	return m
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFieldRequiresValue(t *testing.T) {
	m := send(t, newFieldModel(Field{Title: "Access key id"}), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, fieldEditing, m.state)
	assert.Contains(t, m.View(), "A value is required.")

	m = send(t, m, typed(" AKIA123 "), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, fieldDone, m.state)
	assert.Equal(t, "AKIA123", m.answer())
	assert.Empty(t, m.View())
}

func TestOptionalFieldAcceptsEmpty(t *testing.T) {
	m := send(t, newFieldModel(Field{Title: "Session token", Secret: true, Optional: true}), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, fieldDone, m.state)
	assert.Empty(t, m.answer())
}

func TestSecretFieldIsMasked(t *testing.T) {
	m := send(t, newFieldModel(Field{Title: "Secret", Secret: true}), typed("hunter2"))

	assert.Equal(t, "hunter2", m.answer())
	assert.NotContains(t, m.View(), "hunter2")
}

func TestFieldCancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := send(t, newFieldModel(Field{Title: "x"}), typed("abc"), tea.KeyMsg{Type: key})
		assert.Equal(t, fieldCancelled, m.state)
		assert.Contains(t, m.View(), "Cancelled.")
	}
}
