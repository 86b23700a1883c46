package console

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Confirmation is a two-button question. Destructive questions render the
// accept button in the danger style.
type Confirmation struct {
	Header      string
	Message     string
	Accept      string
	Decline     string
	Destructive bool
}

// Confirm asks c and reports whether the user accepted. Focus starts on the
// decline button; closing the input or dismissing declines.
func (p *Prompter) Confirm(ctx context.Context, c Confirmation) (bool, error) {
	final, err := p.run(ctx, confirmModel{c: c})
	if err != nil {
		return false, err
	}
	return final.(confirmModel).accepted, nil
}

type confirmModel struct {
	c           Confirmation
	focusAccept bool
	accepted    bool
	done        bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inputClosedMsg:
		return m.finish(false)
	case tea.KeyMsg:
		for _, key := range keys(msg) {
			switch {
			case key == "left" || key == "right" || key == "tab" || key == "shift+tab" || key == "h" || key == "l":
				m.focusAccept = !m.focusAccept
			case key == "enter" || key == " ":
				return m.finish(m.focusAccept)
			case key == "y" || key == "s":
				return m.finish(true)
			case key == "n" || isDismiss(key):
				return m.finish(false)
			}
		}
	}
	return m, nil
}

func (m confirmModel) finish(accepted bool) (tea.Model, tea.Cmd) {
	m.accepted = accepted
	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.c.Header))
	b.WriteString("\n")
	b.WriteString(m.c.Message)
	b.WriteString("\n\n")
	if m.done {
		answer := m.c.Decline
		if m.accepted {
			answer = m.c.Accept
		}
		b.WriteString(mutedStyle.Render("→ " + answer))
		b.WriteString("\n")
		return b.String()
	}

	accept := buttonStyle.Render(m.c.Accept)
	decline := buttonStyle.Render(m.c.Decline)
	if m.focusAccept {
		accept = focusStyle.Render(m.c.Accept)
	} else {
		decline = focusStyle.Render(m.c.Decline)
	}
	if m.c.Destructive {
		accept = dangerStyle.Render(accept)
	}
	b.WriteString(decline + "  " + accept)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("←/→ elegir · enter confirmar · esc cancelar"))
	b.WriteString("\n")
	return b.String()
}
