package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type profileItem string

func (i profileItem) Title() string       { return string(i) }
func (i profileItem) Description() string { return "" }
func (i profileItem) FilterValue() string { return string(i) }

type selectModel struct {
	list     list.Model
	choice   string
	quitting bool
}

// SelectProfile shows a filterable list of names and returns the chosen one.
func SelectProfile(title string, names []string) (string, error) {
	items := make([]list.Item, 0, len(names))
	for _, n := range names {
		items = append(items, profileItem(n))
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, 40, 14)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)

	m, err := run(selectModel{list: l})
	if err != nil {
		return "", err
	}
	if m.choice == "" {
		return "", ErrCancelled
	}
	return m.choice, nil
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// let the filter input have enter and esc while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case isCancel(msg):
			m.quitting = true
			return m, tea.Quit
		case msg.Type == tea.KeyEnter:
			if i, ok := m.list.SelectedItem().(profileItem); ok {
				m.choice = string(i)
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	if m.choice != "" {
		return ""
	}
	if m.quitting {
		return cancelledView()
	}
	return "\n" + m.list.View()
}
