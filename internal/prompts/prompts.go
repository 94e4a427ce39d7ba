// Package prompts holds the instruction templates and fallback texts used by
// the insight service.
package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/solace/internal/models"
)

// Built-in instructions and fallbacks.
const (
	DefaultSummaryInstruction = `Summarize the following personal journal entry and provide a supportive, empathetic insight in 2 sentences: "{{.Content}}"`
	DefaultSummaryFallback    = "Your feelings are valid. Take a moment to breathe deeply."

	DefaultRecommendInstruction = `A user is feeling {{.Mood}} today. Recommend one simple wellness activity in 10 words or less.`
	DefaultRecommendFallback    = "Try a 5-minute deep breathing exercise."
)

// Template is one instruction template plus the text returned when the
// provider call fails.
type Template struct {
	Instruction string `yaml:"instruction"`
	Fallback    string `yaml:"fallback"`

	compiled *template.Template
}

// Validate checks required fields and compiles the instruction.
func (t *Template) Validate() error {
	if err := validation.ValidateStruct(t,
		validation.Field(&t.Instruction, validation.Required),
		validation.Field(&t.Fallback, validation.Required),
	); err != nil {
		return err
	}
	compiled, err := template.New("instruction").Option("missingkey=error").Parse(t.Instruction)
	if err != nil {
		return fmt.Errorf("instruction: %w", err)
	}
	t.compiled = compiled
	return nil
}

func (t *Template) render(data any) (string, error) {
	if t.compiled == nil {
		return "", fmt.Errorf("prompts: template used before Validate")
	}
	var buf bytes.Buffer
	if err := t.compiled.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompts: render: %w", err)
	}
	return buf.String(), nil
}

// Set is the full prompt catalogue.
type Set struct {
	Summarize Template `yaml:"summarize"`
	Recommend Template `yaml:"recommend"`
}

// Validate validates both templates.
func (s *Set) Validate() error {
	if err := s.Summarize.Validate(); err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	if err := s.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// Default returns the built-in catalogue.
func Default() *Set {
	s := &Set{
		Summarize: Template{Instruction: DefaultSummaryInstruction, Fallback: DefaultSummaryFallback},
		Recommend: Template{Instruction: DefaultRecommendInstruction, Fallback: DefaultRecommendFallback},
	}
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("prompts: invalid built-in set: %v", err))
	}
	return s
}

// SummaryPrompt embeds journal content into the summarize instruction.
func (s *Set) SummaryPrompt(content string) (string, error) {
	return s.Summarize.render(struct{ Content string }{content})
}

// RecommendationPrompt embeds a mood label into the recommend instruction.
func (s *Set) RecommendationPrompt(mood models.Mood) (string, error) {
	return s.Recommend.render(struct{ Mood string }{string(mood)})
}
