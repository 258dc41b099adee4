package explore

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NoRole is the picker entry that skips gap analysis.
const NoRole = "(no target role)"

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	options []string
	cursor  int
	chosen  int // -1 = no choice yet, -2 = quit
}

func newPickerModel(roles []string) pickerModel {
	options := make([]string, 0, len(roles)+1)
	options = append(options, NoRole)
	options = append(options, roles...)
	return pickerModel{options: options, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Explore: select a target role")
	s += "\n"

	for i, label := range m.options {
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// selection maps the picker state to a role name. ok is false if the user quit.
func (m pickerModel) selection() (role string, ok bool) {
	if m.chosen < 0 {
		return "", false
	}
	if m.chosen == 0 {
		return "", true
	}
	return m.options[m.chosen], true
}

// RunRolePicker shows an interactive role selector. It returns the chosen
// role ("" for no target role), or ok=false if the user quit.
func RunRolePicker(roles []string) (role string, ok bool, err error) {
	p := tea.NewProgram(newPickerModel(roles))
	result, err := p.Run()
	if err != nil {
		return "", false, err
	}
	role, ok = result.(pickerModel).selection()
	return role, ok, nil
}
