package ui

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user quits a prompt or picker.
var ErrCancelled = errors.New("cancelled")

// run drives m on stderr, keeping stdout free for command output, and
// returns the model the program finished with.
func run[M tea.Model](m M) (M, error) {
	final, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return m, err
	}
	out, ok := final.(M)
	if !ok {
		return m, fmt.Errorf("unexpected model %T", final)
	}
	return out, nil
}

func isCancel(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc
}

func cancelledView() string {
	return quitTextStyle.Render("Cancelled.")
}
