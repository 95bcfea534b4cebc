package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field describes a single value read from the terminal.
type Field struct {
	Title       string
	Placeholder string
	Secret      bool // mask what is typed
	Optional    bool // accept an empty answer
}

// Ask prompts for f and returns the trimmed answer.
func Ask(f Field) (string, error) {
	m, err := run(newFieldModel(f))
	if err != nil {
		return "", err
	}
	if m.state != fieldDone {
		return "", ErrCancelled
	}
	return m.answer(), nil
}

type fieldState int

const (
	fieldEditing fieldState = iota
	fieldDone
	fieldCancelled
)

type fieldModel struct {
	field   Field
	input   textinput.Model
	state   fieldState
	problem string
}

func newFieldModel(f Field) fieldModel {
	in := textinput.New()
	in.Placeholder = f.Placeholder
	// session tokens run well past a thousand characters
	in.CharLimit = 4096
	in.Width = 48
	if f.Secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	in.Focus()
	return fieldModel{field: f, input: in}
}

func (m fieldModel) answer() string {
	return strings.TrimSpace(m.input.Value())
}

func (m fieldModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m fieldModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch {
		case isCancel(key):
			m.state = fieldCancelled
			return m, tea.Quit
		case key.Type == tea.KeyEnter:
			if m.answer() == "" && !m.field.Optional {
				m.problem = "A value is required."
				return m, nil
			}
			m.state = fieldDone
			return m, tea.Quit
		}
		m.problem = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m fieldModel) View() string {
	switch m.state {
	case fieldDone:
		return ""
	case fieldCancelled:
		return cancelledView()
	}

	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(m.field.Title) + "\n\n")
	b.WriteString(m.input.View() + "\n\n")
	if m.problem != "" {
		b.WriteString(ErrorStyle.Render(m.problem) + "\n")
	}
	hint := "enter to confirm, esc to cancel"
	if m.field.Optional {
		hint = "enter to confirm (empty for none), esc to cancel"
	}
	b.WriteString(MutedStyle.Render(hint) + "\n")
	return b.String()
}
