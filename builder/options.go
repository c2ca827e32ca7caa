package builder

import "github.com/norcalsbdc/advisorflow"

// StepOption is a functional option for configuring steps
type StepOption func(*advisorflow.StepDefinition)

// NewStep creates a step with its required fields
func NewStep(id, title, objective string, opts ...StepOption) advisorflow.StepDefinition {
	step := advisorflow.StepDefinition{
		ID:        id,
		Title:     title,
		Objective: objective,
	}
	for _, opt := range opts {
		opt(&step)
	}
	return step
}

// WithSection sets the section number shown before the title
func WithSection(number string) StepOption {
	return func(s *advisorflow.StepDefinition) {
		s.SectionNumber = number
	}
}

// WithDescription sets the step description
func WithDescription(description string) StepOption {
	return func(s *advisorflow.StepDefinition) {
		s.Description = description
	}
}

// WithWhatIsNeeded describes the information the step collects
func WithWhatIsNeeded(text string) StepOption {
	return func(s *advisorflow.StepDefinition) {
		s.WhatIsNeeded = text
	}
}

// WithInstructions sets advisor instructions for the step
func WithInstructions(text string) StepOption {
	return func(s *advisorflow.StepDefinition) {
		s.Instructions = text
	}
}

// WithQuestions appends suggested questions
func WithQuestions(questions ...string) StepOption {
	return func(s *advisorflow.StepDefinition) {
		s.Questions = append(s.Questions, questions...)
	}
}

// WithExamples sets the example answer
func WithExamples(text string) StepOption {
	return func(s *advisorflow.StepDefinition) {
		s.Examples = text
	}
}

// Skippable allows the user to skip the step
func Skippable() StepOption {
	return func(s *advisorflow.StepDefinition) {
		s.AllowSkip = true
	}
}
