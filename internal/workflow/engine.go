package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrUnknownEntityType indicates no workflow definition exists for the requested entity.
	ErrUnknownEntityType = errors.New("workflow: entity type not registered")
	// ErrInvalidTransition indicates the requested transition is not allowed from the current state.
	ErrInvalidTransition = errors.New("workflow: transition not allowed")
	// ErrMissingTransition indicates no transition name was supplied.
	ErrMissingTransition = errors.New("workflow: transition name required")
	// ErrNilEntityID signals input validation failure.
	ErrNilEntityID = errors.New("workflow: entity id required")
	// ErrUnknownState indicates the supplied state is not part of the definition.
	ErrUnknownState = errors.New("workflow: unknown state")
)

// Engine is an in-memory workflow engine that executes deterministic state
// transitions against registered definitions.
type Engine struct {
	mu          sync.RWMutex
	definitions map[string]*compiledDefinition
	now         func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the clock used for transition timestamps (primarily for testing).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// New constructs a workflow engine seeded with the default page workflow.
func New(opts ...Option) *Engine {
	engine := &Engine{
		definitions: make(map[string]*compiledDefinition),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}

	_ = engine.RegisterWorkflow(context.Background(), PageWorkflowDefinition())

	return engine
}

// Transition applies a workflow transition for an entity.
func (e *Engine) Transition(ctx context.Context, input interfaces.TransitionInput) (*interfaces.TransitionResult, error) {
	if input.EntityID == uuid.Nil {
		return nil, ErrNilEntityID
	}

	name := strings.ToLower(strings.TrimSpace(input.Transition))
	if name == "" {
		return nil, ErrMissingTransition
	}

	definition, err := e.definitionFor(input.EntityType)
	if err != nil {
		return nil, err
	}

	current := definition.normalizeState(input.CurrentState)
	transition, ok := definition.lookup(name, current)
	if !ok {
		return nil, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, name, current)
	}

	return &interfaces.TransitionResult{
		EntityID:    input.EntityID,
		EntityType:  input.EntityType,
		Transition:  transition.Name,
		FromState:   current,
		ToState:     transition.To,
		CompletedAt: e.now(),
		ActorID:     input.ActorID,
		Metadata:    cloneMetadata(input.Metadata),
	}, nil
}

// AvailableTransitions returns the transitions reachable from the supplied state.
func (e *Engine) AvailableTransitions(ctx context.Context, query interfaces.TransitionQuery) ([]interfaces.WorkflowTransition, error) {
	definition, err := e.definitionFor(query.EntityType)
	if err != nil {
		return nil, err
	}
	state := definition.normalizeState(query.State)
	transitions := definition.byState[state]
	result := make([]interfaces.WorkflowTransition, len(transitions))
	copy(result, transitions)
	return result, nil
}

// CanTransition reports whether the named transition is permitted from the state.
func (e *Engine) CanTransition(entityType, transition string, state interfaces.WorkflowState) bool {
	definition, err := e.definitionFor(entityType)
	if err != nil {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(transition))
	_, ok := definition.lookup(name, definition.normalizeState(state))
	return ok
}

// RegisterWorkflow installs a workflow definition for the supplied entity type.
func (e *Engine) RegisterWorkflow(ctx context.Context, definition interfaces.WorkflowDefinition) error {
	entity := strings.ToLower(strings.TrimSpace(definition.EntityType))
	if entity == "" {
		return errors.New("workflow: entity type required")
	}
	compiled, err := compile(definition)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.definitions[entity] = compiled
	return nil
}

func (e *Engine) definitionFor(entityType string) (*compiledDefinition, error) {
	key := strings.ToLower(strings.TrimSpace(entityType))
	e.mu.RLock()
	defer e.mu.RUnlock()
	definition, ok := e.definitions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
	return definition, nil
}

type compiledDefinition struct {
	definition interfaces.WorkflowDefinition
	states     map[interfaces.WorkflowState]struct{}
	byState    map[interfaces.WorkflowState][]interfaces.WorkflowTransition
}

func compile(definition interfaces.WorkflowDefinition) (*compiledDefinition, error) {
	if len(definition.States) == 0 {
		return nil, fmt.Errorf("workflow: definition for %q requires at least one state", definition.EntityType)
	}

	states := make(map[interfaces.WorkflowState]struct{}, len(definition.States))
	for _, state := range definition.States {
		name := normalize(state.Name)
		if name == "" {
			return nil, errors.New("workflow: state name required")
		}
		if _, exists := states[name]; exists {
			return nil, fmt.Errorf("workflow: duplicate state %q", name)
		}
		states[name] = struct{}{}
	}

	initial := normalize(definition.InitialState)
	if _, ok := states[initial]; !ok {
		return nil, fmt.Errorf("%w: initial state %q", ErrUnknownState, initial)
	}

	byState := make(map[interfaces.WorkflowState][]interfaces.WorkflowTransition)
	for _, tr := range definition.Transitions {
		name := strings.ToLower(strings.TrimSpace(tr.Name))
		if name == "" {
			return nil, errors.New("workflow: transition name required")
		}
		from := normalize(tr.From)
		to := normalize(tr.To)
		if _, ok := states[from]; !ok {
			return nil, fmt.Errorf("%w: transition %q from %q", ErrUnknownState, name, from)
		}
		if _, ok := states[to]; !ok {
			return nil, fmt.Errorf("%w: transition %q to %q", ErrUnknownState, name, to)
		}
		for _, existing := range byState[from] {
			if existing.Name == name {
				return nil, fmt.Errorf("workflow: duplicate transition %q for state %q", name, from)
			}
		}
		normalized := tr
		normalized.Name = name
		normalized.From = from
		normalized.To = to
		byState[from] = append(byState[from], normalized)
	}

	return &compiledDefinition{
		definition: definition,
		states:     states,
		byState:    byState,
	}, nil
}

func (c *compiledDefinition) normalizeState(state interfaces.WorkflowState) interfaces.WorkflowState {
	normalized := normalize(state)
	if normalized == "" {
		return normalize(c.definition.InitialState)
	}
	return normalized
}

func (c *compiledDefinition) lookup(name string, from interfaces.WorkflowState) (interfaces.WorkflowTransition, bool) {
	for _, tr := range c.byState[from] {
		if tr.Name == name {
			return tr, true
		}
	}
	return interfaces.WorkflowTransition{}, false
}

func normalize(state interfaces.WorkflowState) interfaces.WorkflowState {
	return interfaces.WorkflowState(strings.ToLower(strings.TrimSpace(string(state))))
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	copied := make(map[string]any, len(metadata))
	for key, value := range metadata {
		copied[key] = value
	}
	return copied
}
