// Package engine drives chat turns through the guided workflow core: it loads and
// persists per-conversation state, applies workflow commands, builds the system
// prompt and streams the model reply.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/llm"
	"github.com/rs/zerolog"
)

// DefaultBaseSystemPrompt is used when no base prompt is configured
const DefaultBaseSystemPrompt = "You are a helpful assistant for SBDC advisors."

// Engine orchestrates chat turns
type Engine struct {
	registry   DefinitionRegistry
	store      advisorflow.ConversationStore
	model      Model
	logger     zerolog.Logger
	config     EngineConfig
	metrics    *Metrics
	basePrompt string
	locks      *keyedMutex
}

// EngineConfig holds engine configuration
type EngineConfig struct {
	// TurnTimeout bounds the model call; zero disables it
	TurnTimeout time.Duration

	// MaxHistory keeps only the most recent history messages; zero keeps all
	MaxHistory int
}

// DefaultEngineConfig provides sensible defaults
var DefaultEngineConfig = EngineConfig{
	TurnTimeout: 2 * time.Minute,
	MaxHistory:  50,
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithLogger sets a custom logger for the engine
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConfig sets a custom configuration for the engine
func WithConfig(config EngineConfig) EngineOption {
	return func(e *Engine) {
		e.config = config
	}
}

// WithMetrics records turn and transition metrics
func WithMetrics(metrics *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// WithBaseSystemPrompt sets the prompt that precedes any workflow overlay
func WithBaseSystemPrompt(prompt string) EngineOption {
	return func(e *Engine) {
		e.basePrompt = prompt
	}
}

// NewEngine creates a new engine with optional configuration
// If no logger is provided, a default stdout logger with Info level is used
// If no metrics are provided, unregistered collectors are used
func NewEngine(registry DefinitionRegistry, store advisorflow.ConversationStore, model Model, opts ...EngineOption) *Engine {
	defaultLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)

	eng := &Engine{
		registry:   registry,
		store:      store,
		model:      model,
		logger:     defaultLogger,
		config:     DefaultEngineConfig,
		basePrompt: DefaultBaseSystemPrompt,
		locks:      newKeyedMutex(),
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.metrics == nil {
		eng.metrics = NewMetrics(nil)
	}

	return eng
}

// NewConversationID returns a fresh conversation id
func (e *Engine) NewConversationID() string {
	return uuid.New().String()
}

// ProcessTurn runs one user message through the workflow and the model.
// Turns on the same conversation are serialized. When the model call fails nothing
// is persisted. When saving fails after a reply, both the result and the error are returned.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.ConversationID == "" {
		return nil, advisorflow.ErrInvalidConversationID
	}

	started := time.Now()
	unlock := e.locks.Lock(req.ConversationID)
	defer unlock()

	sess, err := e.loadSession(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	if req.WorkflowID != "" {
		sess = e.engageWorkflow(ctx, req.ConversationID, req.WorkflowID, sess)
	}

	command := advisorflow.CommandNone
	if sess.active() {
		command = advisorflow.DetectCommand(req.Message, sess.state)
		sess.state = e.applyCommand(req.ConversationID, command, sess)
	}

	systemPrompt := e.basePrompt
	if sess.active() {
		systemPrompt = advisorflow.BuildWorkflowSystemPrompt(e.basePrompt, sess.def, sess.state)
	}

	resp, err := e.streamReply(ctx, req, systemPrompt)
	if err != nil {
		advisorflow.LogModelError(e.logger, req.ConversationID, err)
		e.metrics.modelErrors.Inc()
		return nil, turnError(advisorflow.WrapWorkflowError(advisorflow.ErrCodeModel, "model call failed", err), req.ConversationID, sess)
	}

	result := &TurnResult{
		ConversationID:     req.ConversationID,
		Reply:              resp.Content,
		Command:            command,
		Usage:              resp.Usage,
		ComplianceRequired: NeedsComplianceFooter(req.Message, resp.Content),
	}

	var saveErr error
	if sess.bound() {
		if sess.active() {
			if !sess.state.Completed {
				if step := advisorflow.GetCurrentStep(sess.state, sess.def); step != nil {
					result.Actions = advisorflow.BuildStepActions(step, sess.state)
					sess.state = advisorflow.CollectExchange(sess.state, step.ID, req.Message, resp.Content)
				}
			} else {
				result.Actions = advisorflow.BuildCompletionActions(sess.def)
			}
		}

		if err := e.save(ctx, req.ConversationID, sess); err != nil {
			saveErr = turnError(err, req.ConversationID, sess)
		}

		progress := advisorflow.GetProgress(sess.state, sess.def)
		result.WorkflowID = sess.def.ID
		result.State = sess.state
		result.Progress = &progress
	}

	e.metrics.recordTurn(command.String(), time.Since(started).Seconds())

	return result, saveErr
}

// loadSession returns the stored workflow for the conversation when it is still active.
// A stored workflow whose definition no longer loads is dropped.
func (e *Engine) loadSession(ctx context.Context, conversationID string) (session, error) {
	workflowID, state, err := e.store.LoadWorkflowState(ctx, conversationID)
	if err != nil {
		advisorflow.LogPersistenceError(e.logger, conversationID, "load", err)
		e.metrics.persistenceErrors.Inc()
		return session{}, advisorflow.WrapWorkflowError(advisorflow.ErrCodePersistence, "failed to load workflow state", err)
	}

	if state == nil || !state.Active {
		return session{}, nil
	}

	def, err := e.registry.Load(ctx, workflowID)
	if err != nil {
		logger := advisorflow.ConversationLogger(e.logger, conversationID, workflowID)
		logger.Warn().
			Err(err).
			Msg("Stored workflow no longer loads, continuing without it")
		return session{}, nil
	}

	return session{def: def, state: state}, nil
}

// engageWorkflow starts workflowID unless it is already the active workflow.
// An active workflow is only replaced once the requested one loads.
func (e *Engine) engageWorkflow(ctx context.Context, conversationID, workflowID string, sess session) session {
	if sess.active() && sess.state.WorkflowID == workflowID {
		return sess
	}

	def, err := e.registry.Load(ctx, workflowID)
	if err != nil {
		logger := advisorflow.ConversationLogger(e.logger, conversationID, workflowID)
		logger.Warn().
			Err(err).
			Msg("Requested workflow unavailable")
		return sess
	}

	if sess.active() {
		advisorflow.LogWorkflowReplaced(e.logger, conversationID, sess.state.WorkflowID, def.ID)
		e.metrics.recordTransition(TransitionReplaced)
	}

	state := advisorflow.BeginWorkflow(advisorflow.InitWorkflowState(def), def)
	advisorflow.LogWorkflowStarted(e.logger, conversationID, def.ID, len(def.Steps))
	e.metrics.recordTransition(TransitionStarted)

	return session{def: def, state: state}
}

// applyCommand returns the state after command. Cancel is honored on a completed
// workflow so the completion action can dismiss it.
func (e *Engine) applyCommand(conversationID string, command advisorflow.Command, sess session) *advisorflow.WorkflowState {
	state := advisorflow.BeginWorkflow(sess.state, sess.def)

	switch command {
	case advisorflow.CommandAdvance:
		if !state.IsRunning() {
			return state
		}
		current := advisorflow.GetCurrentStep(state, sess.def)
		next := advisorflow.AdvanceStep(state, sess.def)
		e.recordAdvance(conversationID, current, next, sess.def, TransitionAdvanced)
		return next

	case advisorflow.CommandSkip:
		if !state.IsRunning() {
			return state
		}
		current := advisorflow.GetCurrentStep(state, sess.def)
		if current == nil || !current.AllowSkip {
			stepID := ""
			if current != nil {
				stepID = current.ID
			}
			advisorflow.LogSkipIgnored(e.logger, conversationID, stepID)
			e.metrics.recordTransition(TransitionSkipIgnored)
			return state
		}
		next := advisorflow.AdvanceStep(state, sess.def)
		e.recordAdvance(conversationID, current, next, sess.def, TransitionSkipped)
		return next

	case advisorflow.CommandCancel:
		advisorflow.LogWorkflowCancelled(e.logger, conversationID, state.WorkflowID, state.CurrentStepIndex)
		e.metrics.recordTransition(TransitionCancelled)
		return advisorflow.CancelWorkflow(state)
	}

	return state
}

func (e *Engine) recordAdvance(conversationID string, from *advisorflow.StepDefinition, next *advisorflow.WorkflowState, def *advisorflow.WorkflowDefinition, transition string) {
	fromID := ""
	if from != nil {
		fromID = from.ID
	}

	if transition == TransitionSkipped {
		advisorflow.LogStepSkipped(e.logger, conversationID, fromID)
	} else {
		advisorflow.LogStepAdvanced(e.logger, conversationID, fromID, next.CurrentStepIndex)
	}
	e.metrics.recordTransition(transition)

	if next.Completed {
		advisorflow.LogWorkflowCompleted(e.logger, conversationID, def.ID)
		e.metrics.recordTransition(TransitionCompleted)
	}
}

func (e *Engine) streamReply(ctx context.Context, req TurnRequest, systemPrompt string) (*llm.ChatResponse, error) {
	if e.config.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.TurnTimeout)
		defer cancel()
	}

	history := req.History
	if e.config.MaxHistory > 0 && len(history) > e.config.MaxHistory {
		history = history[len(history)-e.config.MaxHistory:]
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	return e.model.StreamChat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		Model:        req.Model,
	}, req.OnToken)
}

// turnError tags err with the conversation and, when a workflow is bound, its current step
func turnError(err *advisorflow.WorkflowError, conversationID string, sess session) *advisorflow.WorkflowError {
	details := map[string]interface{}{"conversation_id": conversationID}
	if sess.bound() {
		details["workflow_id"] = sess.def.ID
		if step := advisorflow.GetCurrentStep(sess.state, sess.def); step != nil {
			err = err.WithStep(step.ID)
		}
	}
	return err.WithDetails(details)
}

func (e *Engine) save(ctx context.Context, conversationID string, sess session) *advisorflow.WorkflowError {
	if err := e.store.SaveWorkflowState(ctx, conversationID, sess.def.ID, sess.state); err != nil {
		advisorflow.LogPersistenceError(e.logger, conversationID, "save", err)
		e.metrics.persistenceErrors.Inc()
		return advisorflow.WrapWorkflowError(advisorflow.ErrCodePersistence, "failed to save workflow state", err)
	}
	return nil
}

// StartWorkflow binds workflowID to the conversation outside of a chat turn.
// An active run of the same workflow is returned as is; any other active workflow is replaced.
func (e *Engine) StartWorkflow(ctx context.Context, conversationID, workflowID string) (*advisorflow.WorkflowState, error) {
	if conversationID == "" {
		return nil, advisorflow.ErrInvalidConversationID
	}

	unlock := e.locks.Lock(conversationID)
	defer unlock()

	def, err := e.registry.Load(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow %q: %w", workflowID, err)
	}

	previous, err := e.loadSession(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if previous.active() && previous.state.WorkflowID == def.ID {
		return previous.state, nil
	}
	if previous.active() {
		advisorflow.LogWorkflowReplaced(e.logger, conversationID, previous.state.WorkflowID, def.ID)
		e.metrics.recordTransition(TransitionReplaced)
	}

	sess := session{def: def, state: advisorflow.BeginWorkflow(advisorflow.InitWorkflowState(def), def)}
	advisorflow.LogWorkflowStarted(e.logger, conversationID, def.ID, len(def.Steps))
	e.metrics.recordTransition(TransitionStarted)

	if err := e.save(ctx, conversationID, sess); err != nil {
		return nil, err
	}
	return sess.state, nil
}

// CancelWorkflow cancels the conversation's active workflow.
// Returns ErrWorkflowNotFound when none is active.
func (e *Engine) CancelWorkflow(ctx context.Context, conversationID string) (*advisorflow.WorkflowState, error) {
	if conversationID == "" {
		return nil, advisorflow.ErrInvalidConversationID
	}

	unlock := e.locks.Lock(conversationID)
	defer unlock()

	sess, err := e.loadSession(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !sess.active() {
		return nil, fmt.Errorf("%w: no active workflow in conversation %q", advisorflow.ErrWorkflowNotFound, conversationID)
	}

	sess.state = e.applyCommand(conversationID, advisorflow.CommandCancel, sess)
	if err := e.save(ctx, conversationID, sess); err != nil {
		return nil, err
	}
	return sess.state, nil
}

// Progress reports progress of the conversation's stored workflow, active or not
func (e *Engine) Progress(ctx context.Context, conversationID string) (*advisorflow.Progress, error) {
	workflowID, state, err := e.store.LoadWorkflowState(ctx, conversationID)
	if err != nil {
		return nil, advisorflow.WrapWorkflowError(advisorflow.ErrCodePersistence, "failed to load workflow state", err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: no workflow in conversation %q", advisorflow.ErrWorkflowNotFound, conversationID)
	}

	def, err := e.registry.Load(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow %q: %w", workflowID, err)
	}

	progress := advisorflow.GetProgress(state, def)
	return &progress, nil
}

// ListWorkflows returns every discoverable workflow
func (e *Engine) ListWorkflows(ctx context.Context) ([]advisorflow.WorkflowSummary, error) {
	return e.registry.Discover(ctx)
}

// ResetConversation forgets the conversation's workflow state
func (e *Engine) ResetConversation(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return advisorflow.ErrInvalidConversationID
	}

	unlock := e.locks.Lock(conversationID)
	defer unlock()

	if err := e.store.DeleteWorkflowState(ctx, conversationID); err != nil {
		if errors.Is(err, advisorflow.ErrInvalidConversationID) {
			return err
		}
		advisorflow.LogPersistenceError(e.logger, conversationID, "delete", err)
		e.metrics.persistenceErrors.Inc()
		return advisorflow.WrapWorkflowError(advisorflow.ErrCodePersistence, "failed to delete workflow state", err)
	}
	return nil
}
