package advisorflow

import "time"

// StepStatus represents where a step sits in the pending -> active -> done progression
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusActive  StepStatus = "active"
	StepStatusDone    StepStatus = "done"
)

// IsEngaged returns true once the user has reached the step
func (s StepStatus) IsEngaged() bool {
	return s == StepStatusActive || s == StepStatusDone
}

// String returns the string representation
func (s StepStatus) String() string {
	return string(s)
}

// Command is the classification of a user chat message
type Command string

const (
	CommandNone    Command = "none"
	CommandTrigger Command = "trigger"
	CommandAdvance Command = "advance"
	CommandCancel  Command = "cancel"
	CommandSkip    Command = "skip"
)

// String returns the string representation
func (c Command) String() string {
	return string(c)
}

// WorkflowDefinition is the declarative blueprint of one guided conversation type.
// It is immutable once loaded through a registry.
type WorkflowDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Persona is injected into the system prompt while the workflow is active
	Persona string `json:"persona,omitempty" yaml:"persona,omitempty"`

	// Command tokens; empty means the engine default
	Trigger        string `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	AdvanceCommand string `json:"advance_command,omitempty" yaml:"advance_command,omitempty"`
	CancelCommand  string `json:"cancel_command,omitempty" yaml:"cancel_command,omitempty"`

	Steps      []StepDefinition `json:"steps" yaml:"steps"`
	Completion string           `json:"completion" yaml:"completion"`
}

// StepDefinition is one stage of a workflow
type StepDefinition struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Objective string `json:"objective" yaml:"objective"`

	SectionNumber string   `json:"section_number,omitempty" yaml:"section_number,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	WhatIsNeeded  string   `json:"what_is_needed,omitempty" yaml:"what_is_needed,omitempty"`
	Instructions  string   `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Questions     []string `json:"questions,omitempty" yaml:"questions,omitempty"`
	Examples      string   `json:"examples,omitempty" yaml:"examples,omitempty"`
	AllowSkip     bool     `json:"allow_skip,omitempty" yaml:"allow_skip,omitempty"`
}

// Header returns "<section>: <title>", or just the title when no section number is set
func (s *StepDefinition) Header() string {
	if s.SectionNumber != "" {
		return s.SectionNumber + ": " + s.Title
	}
	return s.Title
}

// StepIndex returns the position of the step with the given id, or -1
func (d *WorkflowDefinition) StepIndex(stepID string) int {
	for i := range d.Steps {
		if d.Steps[i].ID == stepID {
			return i
		}
	}
	return -1
}

// Summary returns the lightweight listing metadata for the definition
func (d *WorkflowDefinition) Summary() WorkflowSummary {
	return WorkflowSummary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
	}
}

// WorkflowSummary is the listing record returned by discovery
type WorkflowSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// WorkflowState is the per-conversation progress through a workflow.
// It is persisted as opaque JSON by a ConversationStore.
type WorkflowState struct {
	// Binding to the definition
	WorkflowID   string `json:"workflow_id"`
	WorkflowName string `json:"workflow_name"`

	// Lifecycle
	Active           bool `json:"active"`
	CurrentStepIndex int  `json:"current_step_index"`
	Started          bool `json:"started"`
	Completed        bool `json:"completed"`

	StepData  map[string]*StepProgress `json:"step_data"`
	StartedAt time.Time                `json:"started_at"`

	// Command tokens copied from the definition at creation time
	Trigger        string `json:"trigger"`
	AdvanceCommand string `json:"advance_command"`
	CancelCommand  string `json:"cancel_command"`
}

// IsRunning returns true while the workflow is driving the conversation
func (s *WorkflowState) IsRunning() bool {
	return s.Active && !s.Completed
}

// Clone returns a deep copy of the state
func (s *WorkflowState) Clone() *WorkflowState {
	if s == nil {
		return nil
	}

	clone := *s
	clone.StepData = make(map[string]*StepProgress, len(s.StepData))
	for id, progress := range s.StepData {
		if progress == nil {
			clone.StepData[id] = nil
			continue
		}
		p := *progress
		p.Collected = append([]Exchange(nil), progress.Collected...)
		clone.StepData[id] = &p
	}
	return &clone
}

// StepProgress tracks one step inside a WorkflowState
type StepProgress struct {
	Status    StepStatus `json:"status"`
	Collected []Exchange `json:"collected"`
}

// Exchange is one user/assistant message pair attributed to a step
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Progress is the human-facing progress readout
type Progress struct {
	CurrentStep  int            `json:"current_step"`
	TotalSteps   int            `json:"total_steps"`
	Percent      int            `json:"percent"`
	CurrentTitle string         `json:"current_title"`
	Steps        []StepOverview `json:"steps"`
}

// StepOverview is a single row of the progress readout
type StepOverview struct {
	Title         string     `json:"title"`
	SectionNumber string     `json:"section_number"`
	Status        StepStatus `json:"status"`
}

// ActionKind tells the client what to do with an action button
type ActionKind string

const (
	// ActionSend sends the value as a chat message
	ActionSend ActionKind = "send"
	// ActionCommand sends the value as a workflow command token
	ActionCommand ActionKind = "command"
)

// Action is a deterministic UI affordance offered alongside an assistant reply
type Action struct {
	Label  string     `json:"label"`
	Action ActionKind `json:"action"`
	Value  string     `json:"value"`
}
