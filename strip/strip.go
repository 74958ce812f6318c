// Package strip provides LED strip implementations for hosts and tests.
// Hardware bindings live under targets/.
package strip

import "ledctrl/executor"

// NullStrip discards all colors. Useful when running a program only for
// its timing or pyro side effects.
type NullStrip struct{}

func (NullStrip) SetColor(color executor.Color) {}

// TestStrip records every color it is asked to show. It is the
// simulation variant used by tests and the offline player.
type TestStrip struct {
	history []executor.Color
}

func NewTestStrip() *TestStrip {
	return &TestStrip{}
}

func (s *TestStrip) SetColor(color executor.Color) {
	s.history = append(s.history, color)
}

// Current returns the color the strip is showing right now.
func (s *TestStrip) Current() executor.Color {
	if len(s.history) == 0 {
		return executor.Black
	}
	return s.history[len(s.history)-1]
}

// History returns every SetColor call in order.
func (s *TestStrip) History() []executor.Color {
	return s.history
}

// Reset drops the recorded history.
func (s *TestStrip) Reset() {
	s.history = nil
}
