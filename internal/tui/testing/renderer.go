// Package testing provides test utilities for TUI components.
package testing

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDrainSteps bounds Drain so a self-rescheduling command cannot hang a test.
const maxDrainSteps = 256

// TestRenderer captures the output of a Bubble Tea component without requiring a real terminal.
type TestRenderer struct {
	// Output contains the last rendered view
	Output string

	// Messages contains all messages sent to the component
	Messages []tea.Msg

	// UpdateCount tracks how many times Update was called
	UpdateCount int

	// Quit is set once a tea.QuitMsg has been produced
	Quit bool
}

// NewTestRenderer creates a new test renderer.
func NewTestRenderer() *TestRenderer {
	return &TestRenderer{
		Messages: make([]tea.Msg, 0),
	}
}

// Render renders a component and captures its output.
func (r *TestRenderer) Render(model tea.Model) string {
	r.Output = model.View()
	return r.Output
}

// Update sends a message to the component and captures the result.
func (r *TestRenderer) Update(model tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	r.Messages = append(r.Messages, msg)
	r.UpdateCount++

	newModel, cmd := model.Update(msg)
	r.Output = newModel.View()

	return newModel, cmd
}

// Send updates the model with msg and drains the commands it produces.
func (r *TestRenderer) Send(model tea.Model, msg tea.Msg) tea.Model {
	model, cmd := r.Update(model, msg)
	return r.Drain(model, cmd)
}

// Drain runs cmd and every command it leads to on the calling goroutine,
// feeding each message back into the model. Batches are flattened in order.
func (r *TestRenderer) Drain(model tea.Model, cmd tea.Cmd) tea.Model {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < maxDrainSteps; steps++ {
		next := queue[0]
		queue = queue[1:]
		for _, msg := range Collect(next) {
			if _, ok := msg.(tea.QuitMsg); ok {
				r.Quit = true
				return model
			}
			var follow tea.Cmd
			model, follow = r.Update(model, msg)
			queue = append(queue, follow)
		}
	}
	return model
}

// Collect runs cmd without touching any model and returns the messages it
// produced, flattening batches.
func Collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// StripANSI removes ANSI escape codes from the output for content-only testing.
func (r *TestRenderer) StripANSI() string {
	return StripANSI(r.Output)
}

// Lines returns the output split by newlines.
func (r *TestRenderer) Lines() []string {
	return strings.Split(r.Output, "\n")
}

// Reset clears all captured data.
func (r *TestRenderer) Reset() {
	r.Output = ""
	r.Messages = nil
	r.UpdateCount = 0
	r.Quit = false
}
