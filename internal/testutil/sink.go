package testutil

import (
	"io"

	"github.com/epic-events/crm/internal/display"
)

// ScriptedSink is a display.Sink that answers prompts from a fixed script and
// records everything shown. Prompt returns io.EOF once the script runs out.
type ScriptedSink struct {
	inputs  []string
	Prompts []string
	Shown   []any
	Errors  []string
}

var _ display.Sink = (*ScriptedSink)(nil)

// NewScriptedSink returns a sink answering prompts with inputs in order
func NewScriptedSink(inputs ...string) *ScriptedSink {
	return &ScriptedSink{inputs: inputs}
}

func (s *ScriptedSink) Prompt(label string) (string, error) {
	s.Prompts = append(s.Prompts, label)
	if len(s.inputs) == 0 {
		return "", io.EOF
	}
	answer := s.inputs[0]
	s.inputs = s.inputs[1:]
	return answer, nil
}

func (s *ScriptedSink) Show(payload any) {
	s.Shown = append(s.Shown, payload)
}

func (s *ScriptedSink) ShowError(message string) {
	s.Errors = append(s.Errors, message)
}

// Remaining returns the unconsumed inputs
func (s *ScriptedSink) Remaining() int {
	return len(s.inputs)
}

// Notices returns the messages of the notices shown
func (s *ScriptedSink) Notices() []string {
	var messages []string
	for _, p := range s.Shown {
		if n, ok := p.(display.Notice); ok {
			messages = append(messages, n.Message)
		}
	}
	return messages
}

// Feed appends inputs to the script
func (s *ScriptedSink) Feed(inputs ...string) {
	s.inputs = append(s.inputs, inputs...)
}
