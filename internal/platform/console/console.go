// Package console renders the interactive terminal prompts. Each prompt is
// a small inline Bubble Tea program; the answer stays in the scrollback.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	dangerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	focusStyle   = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	buttonStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// inputClosedMsg tells a prompt that no more keys will arrive.
type inputClosedMsg struct{}

// Prompter runs one prompt at a time against the same input and output.
type Prompter struct {
	mu  sync.Mutex
	in  io.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

func (p *Prompter) Error(message string) {
	_, _ = fmt.Fprintln(p.out, dangerStyle.Render("error: ")+message)
}

func (p *Prompter) Info(message string) {
	_, _ = fmt.Fprintln(p.out, successStyle.Render(message))
}

func (p *Prompter) Muted(message string) {
	_, _ = fmt.Fprintln(p.out, mutedStyle.Render(message))
}

// run drives model until it quits. A non-terminal input that reaches EOF
// dismisses the prompt; a terminal is handed to Bubble Tea untouched so it
// can switch to raw mode.
func (p *Prompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	watch := &eofWatch{}
	input := watchInput(p.in, watch)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(input), tea.WithOutput(p.out))
	watch.onEOF = func() { program.Send(inputClosedMsg{}) }

	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("run prompt: %w", err)
	}
	return final, nil
}

type eofWatch struct {
	once  sync.Once
	onEOF func()
}

func (w *eofWatch) observe(n int, err error) (int, error) {
	if errors.Is(err, io.EOF) && w.onEOF != nil {
		w.once.Do(w.onEOF)
	}
	return n, err
}

type watchedReader struct {
	r     io.Reader
	watch *eofWatch
}

func (r watchedReader) Read(b []byte) (int, error) {
	return r.watch.observe(r.r.Read(b))
}

// watchedFile keeps the *os.File methods so Bubble Tea can still poll and
// cancel the read.
type watchedFile struct {
	*os.File
	watch *eofWatch
}

func (f watchedFile) Read(b []byte) (int, error) {
	return f.watch.observe(f.File.Read(b))
}

func watchInput(in io.Reader, watch *eofWatch) io.Reader {
	switch v := in.(type) {
	case nil:
		return nil
	case *os.File:
		if isatty.IsTerminal(v.Fd()) || isatty.IsCygwinTerminal(v.Fd()) {
			return v
		}
		return watchedFile{File: v, watch: watch}
	default:
		return watchedReader{r: v, watch: watch}
	}
}

// keys splits a burst of typed runes into single keys so a piped answer
// like "hj" moves twice.
func keys(msg tea.KeyMsg) []string {
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) < 2 {
		return []string{msg.String()}
	}
	out := make([]string, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		out = append(out, string(r))
	}
	return out
}

func isDismiss(key string) bool {
	switch key {
	case "esc", "ctrl+c", "ctrl+d", "q":
		return true
	}
	return false
}
