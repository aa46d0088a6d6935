package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-pagetree/internal/domain"
	"github.com/goliatone/go-pagetree/internal/workflow"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/google/uuid"
)

func TestTransitionAllowsDefinedEdges(t *testing.T) {
	cases := []struct {
		from       domain.Status
		transition string
		to         domain.Status
	}{
		{domain.StatusDraft, domain.TransitionSubmitForReview, domain.StatusPendingReview},
		{domain.StatusRejected, domain.TransitionSubmitForReview, domain.StatusPendingReview},
		{domain.StatusPendingReview, domain.TransitionApprove, domain.StatusApproved},
		{domain.StatusPendingReview, domain.TransitionReject, domain.StatusRejected},
		{domain.StatusDraft, domain.TransitionPublish, domain.StatusPublished},
		{domain.StatusApproved, domain.TransitionPublish, domain.StatusPublished},
		{domain.StatusScheduled, domain.TransitionPublish, domain.StatusPublished},
		{domain.StatusPublished, domain.TransitionUnpublish, domain.StatusDraft},
		{domain.StatusDraft, domain.TransitionSchedule, domain.StatusScheduled},
		{domain.StatusScheduled, domain.TransitionUnschedule, domain.StatusDraft},
		{domain.StatusPublished, domain.TransitionArchive, domain.StatusArchived},
	}

	engine := workflow.New()
	ctx := context.Background()
	for _, tc := range cases {
		result, err := engine.Transition(ctx, interfaces.TransitionInput{
			EntityType:   workflow.EntityTypePage,
			EntityID:     uuid.New(),
			CurrentState: interfaces.WorkflowState(tc.from),
			Transition:   tc.transition,
		})
		if err != nil {
			t.Fatalf("%s from %s: unexpected error %v", tc.transition, tc.from, err)
		}
		if result.ToState != interfaces.WorkflowState(tc.to) {
			t.Fatalf("%s from %s: expected %s, got %s", tc.transition, tc.from, tc.to, result.ToState)
		}
	}
}

func TestTransitionRejectsUndefinedEdges(t *testing.T) {
	cases := []struct {
		from       domain.Status
		transition string
	}{
		{domain.StatusPendingReview, domain.TransitionSubmitForReview},
		{domain.StatusPublished, domain.TransitionSubmitForReview},
		{domain.StatusDraft, domain.TransitionApprove},
		{domain.StatusApproved, domain.TransitionReject},
		{domain.StatusPublished, domain.TransitionPublish},
		{domain.StatusArchived, domain.TransitionPublish},
		{domain.StatusDraft, domain.TransitionUnpublish},
		{domain.StatusScheduled, domain.TransitionSchedule},
		{domain.StatusApproved, domain.TransitionSchedule},
		{domain.StatusDraft, domain.TransitionUnschedule},
		{domain.StatusDraft, domain.TransitionArchive},
		{domain.StatusArchived, domain.TransitionArchive},
	}

	engine := workflow.New()
	ctx := context.Background()
	for _, tc := range cases {
		_, err := engine.Transition(ctx, interfaces.TransitionInput{
			EntityType:   workflow.EntityTypePage,
			EntityID:     uuid.New(),
			CurrentState: interfaces.WorkflowState(tc.from),
			Transition:   tc.transition,
		})
		if !errors.Is(err, workflow.ErrInvalidTransition) {
			t.Fatalf("%s from %s: expected invalid transition, got %v", tc.transition, tc.from, err)
		}
	}
}

func TestTransitionValidatesInput(t *testing.T) {
	engine := workflow.New()
	ctx := context.Background()

	_, err := engine.Transition(ctx, interfaces.TransitionInput{
		EntityType: workflow.EntityTypePage,
		Transition: domain.TransitionPublish,
	})
	if !errors.Is(err, workflow.ErrNilEntityID) {
		t.Fatalf("expected nil entity id error, got %v", err)
	}

	_, err = engine.Transition(ctx, interfaces.TransitionInput{
		EntityType: workflow.EntityTypePage,
		EntityID:   uuid.New(),
	})
	if !errors.Is(err, workflow.ErrMissingTransition) {
		t.Fatalf("expected missing transition error, got %v", err)
	}

	_, err = engine.Transition(ctx, interfaces.TransitionInput{
		EntityType: "widget",
		EntityID:   uuid.New(),
		Transition: domain.TransitionPublish,
	})
	if !errors.Is(err, workflow.ErrUnknownEntityType) {
		t.Fatalf("expected unknown entity type error, got %v", err)
	}
}

func TestTransitionStampsClockAndActor(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := workflow.New(workflow.WithClock(func() time.Time { return now }))
	actor := uuid.New()

	result, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityType:   workflow.EntityTypePage,
		EntityID:     uuid.New(),
		CurrentState: interfaces.WorkflowState(domain.StatusDraft),
		Transition:   domain.TransitionPublish,
		ActorID:      actor,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !result.CompletedAt.Equal(now) {
		t.Fatalf("expected completed_at %v, got %v", now, result.CompletedAt)
	}
	if result.ActorID != actor {
		t.Fatalf("expected actor %s, got %s", actor, result.ActorID)
	}
}

func TestTransitionDefaultsEmptyStateToInitial(t *testing.T) {
	engine := workflow.New()

	result, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityType: workflow.EntityTypePage,
		EntityID:   uuid.New(),
		Transition: domain.TransitionSubmitForReview,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if result.FromState != interfaces.WorkflowState(domain.StatusDraft) {
		t.Fatalf("expected draft origin, got %s", result.FromState)
	}
}

func TestAvailableTransitions(t *testing.T) {
	engine := workflow.New()

	transitions, err := engine.AvailableTransitions(context.Background(), interfaces.TransitionQuery{
		EntityType: workflow.EntityTypePage,
		State:      interfaces.WorkflowState(domain.StatusPendingReview),
	})
	if err != nil {
		t.Fatalf("available transitions: %v", err)
	}
	names := make(map[string]bool, len(transitions))
	for _, tr := range transitions {
		names[tr.Name] = true
	}
	if len(names) != 2 || !names[domain.TransitionApprove] || !names[domain.TransitionReject] {
		t.Fatalf("expected approve/reject from pending_review, got %v", names)
	}
}

func TestCanTransitionMirrorsDefinition(t *testing.T) {
	engine := workflow.New()

	if !engine.CanTransition(workflow.EntityTypePage, domain.TransitionSubmitForReview, interfaces.WorkflowState(domain.StatusRejected)) {
		t.Fatal("expected submit_for_review allowed from rejected")
	}
	if engine.CanTransition(workflow.EntityTypePage, domain.TransitionSubmitForReview, interfaces.WorkflowState(domain.StatusPublished)) {
		t.Fatal("expected submit_for_review rejected from published")
	}
}

func TestRegisterWorkflowRejectsBadDefinitions(t *testing.T) {
	engine := workflow.New()
	ctx := context.Background()

	err := engine.RegisterWorkflow(ctx, interfaces.WorkflowDefinition{
		EntityType:   "thing",
		InitialState: "missing",
		States: []interfaces.WorkflowStateDefinition{
			{Name: "open"},
		},
	})
	if !errors.Is(err, workflow.ErrUnknownState) {
		t.Fatalf("expected unknown state error, got %v", err)
	}

	err = engine.RegisterWorkflow(ctx, interfaces.WorkflowDefinition{
		EntityType:   "thing",
		InitialState: "open",
		States: []interfaces.WorkflowStateDefinition{
			{Name: "open"},
			{Name: "closed"},
		},
		Transitions: []interfaces.WorkflowTransition{
			{Name: "close", From: "open", To: "closed"},
			{Name: "close", From: "open", To: "closed"},
		},
	})
	if err == nil {
		t.Fatal("expected duplicate transition error")
	}
}
