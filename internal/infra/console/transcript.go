// Package console renders the conversation transcript on a terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"voice-assistant/internal/domain"
)

var palette = map[string]lipgloss.Color{
	"gray":   lipgloss.Color("#8A8A8A"),
	"red":    lipgloss.Color("#E05252"),
	"blue":   lipgloss.Color("#5B8DEF"),
	"green":  lipgloss.Color("#3FAE5A"),
	"orange": lipgloss.Color("#F0A030"),
}

// Transcript prints chat lines and status changes. Colors are dropped when
// the writer is not a terminal.
type Transcript struct {
	mu  sync.Mutex
	out io.Writer

	renderer *lipgloss.Renderer
	user     lipgloss.Style
	bot      lipgloss.Style
	text     lipgloss.Style

	showStatus bool
}

func NewTranscript(out io.Writer, showStatus bool) *Transcript {
	r := lipgloss.NewRenderer(out)
	return &Transcript{
		out:        out,
		renderer:   r,
		user:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		bot:        r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3FAE5A")),
		text:       r.NewStyle(),
		showStatus: showStatus,
	}
}

func (t *Transcript) Publish(event domain.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Kind {
	case domain.EventMessage:
		label := t.bot
		if event.Speaker == domain.SpeakerUser {
			label = t.user
		}
		fmt.Fprintf(t.out, "%s %s\n", label.Render(string(event.Speaker)+":"), t.text.Render(event.Text))
	case domain.EventStatus:
		if !t.showStatus {
			return
		}
		style := t.renderer.NewStyle().Italic(true).Foreground(palette[event.Status.Color()])
		fmt.Fprintf(t.out, "%s\n", style.Render("["+event.Text+"]"))
	}
}
