package console

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Row is one line of a Form: a label and the options it cycles through.
type Row struct {
	Label    string
	Options  []string
	Selected int
}

type Form struct {
	Title   string
	Message string
	Rows    []Row
	Apply   string
	Back    string
}

// Choose lets the user pick one option per row and returns the picked
// index of every row. ok is false when the user went back or the input
// closed.
func (p *Prompter) Choose(ctx context.Context, form Form) ([]int, bool, error) {
	model := newFormModel(form)
	final, err := p.run(ctx, model)
	if err != nil {
		return nil, false, err
	}
	done := final.(formModel)
	if !done.applied {
		return nil, false, nil
	}
	return done.picked, true, nil
}

type formModel struct {
	form    Form
	cursor  int
	picked  []int
	applied bool
	done    bool
}

func newFormModel(form Form) formModel {
	picked := make([]int, len(form.Rows))
	for i, row := range form.Rows {
		if row.Selected >= 0 && row.Selected < len(row.Options) {
			picked[i] = row.Selected
		}
	}
	return formModel{form: form, picked: picked}
}

func (m formModel) Init() tea.Cmd {
	return nil
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inputClosedMsg:
		return m.finish(false)
	case tea.KeyMsg:
		for _, key := range keys(msg) {
			switch {
			case key == "up" || key == "k" || key == "shift+tab":
				if m.cursor > 0 {
					m.cursor--
				}
			case key == "down" || key == "j" || key == "tab":
				if m.cursor < len(m.picked)-1 {
					m.cursor++
				}
			case key == "left" || key == "h":
				m.cycle(-1)
			case key == "right" || key == "l" || key == " ":
				m.cycle(1)
			case key == "enter" || key == "a":
				return m.finish(true)
			case key == "b" || isDismiss(key):
				return m.finish(false)
			}
		}
	}
	return m, nil
}

func (m *formModel) cycle(step int) {
	if len(m.picked) == 0 {
		return
	}
	n := len(m.form.Rows[m.cursor].Options)
	if n == 0 {
		return
	}
	picked := append([]int(nil), m.picked...)
	picked[m.cursor] = (picked[m.cursor] + step + n) % n
	m.picked = picked
}

func (m formModel) finish(applied bool) (tea.Model, tea.Cmd) {
	m.applied = applied
	m.done = true
	return m, tea.Quit
}

func (m formModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.form.Title))
	b.WriteString("\n")
	if m.form.Message != "" {
		b.WriteString(m.form.Message)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	width := 0
	for _, row := range m.form.Rows {
		width = max(width, len([]rune(row.Label)))
	}
	for i, row := range m.form.Rows {
		marker := "  "
		if i == m.cursor && !m.done {
			marker = "› "
		}
		option := ""
		if len(row.Options) > 0 {
			option = row.Options[m.picked[i]]
		}
		label := row.Label + strings.Repeat(" ", width-len([]rune(row.Label)))
		if i == m.cursor && !m.done {
			b.WriteString(marker + label + "  " + focusStyle.Render("‹ "+option+" ›"))
		} else {
			b.WriteString(marker + label + "  " + buttonStyle.Render(option))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.done {
		answer := m.form.Back
		if m.applied {
			answer = m.form.Apply
		}
		b.WriteString(mutedStyle.Render("→ " + answer))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(mutedStyle.Render("↑/↓ fila · ←/→ opción · enter " + m.form.Apply + " · esc " + m.form.Back))
	b.WriteString("\n")
	return b.String()
}
