package workflow

import (
	"github.com/goliatone/go-pagetree/internal/domain"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// EntityTypePage identifies the page workflow definition.
const EntityTypePage = "page"

// PageWorkflowDefinition declares the publishing lifecycle for pages.
//
// The sweep worker promotes scheduled pages through the same publish
// transition user actions take, so publish is reachable from scheduled in
// addition to draft and approved.
func PageWorkflowDefinition() interfaces.WorkflowDefinition {
	return interfaces.WorkflowDefinition{
		EntityType:   EntityTypePage,
		InitialState: state(domain.StatusDraft),
		States: []interfaces.WorkflowStateDefinition{
			{Name: state(domain.StatusDraft), Description: "content under preparation"},
			{Name: state(domain.StatusPendingReview), Description: "waiting for an editorial decision"},
			{Name: state(domain.StatusApproved), Description: "cleared for publication"},
			{Name: state(domain.StatusRejected), Description: "sent back to the author"},
			{Name: state(domain.StatusPublished), Description: "publicly available"},
			{Name: state(domain.StatusScheduled), Description: "publish deferred to a future time"},
			{Name: state(domain.StatusArchived), Description: "retained for history", Terminal: true},
		},
		Transitions: []interfaces.WorkflowTransition{
			{Name: domain.TransitionSubmitForReview, From: state(domain.StatusDraft), To: state(domain.StatusPendingReview)},
			{Name: domain.TransitionSubmitForReview, From: state(domain.StatusRejected), To: state(domain.StatusPendingReview)},
			{Name: domain.TransitionApprove, From: state(domain.StatusPendingReview), To: state(domain.StatusApproved)},
			{Name: domain.TransitionReject, From: state(domain.StatusPendingReview), To: state(domain.StatusRejected)},
			{Name: domain.TransitionPublish, From: state(domain.StatusDraft), To: state(domain.StatusPublished)},
			{Name: domain.TransitionPublish, From: state(domain.StatusApproved), To: state(domain.StatusPublished)},
			{Name: domain.TransitionPublish, From: state(domain.StatusScheduled), To: state(domain.StatusPublished)},
			{Name: domain.TransitionUnpublish, From: state(domain.StatusPublished), To: state(domain.StatusDraft)},
			{Name: domain.TransitionSchedule, From: state(domain.StatusDraft), To: state(domain.StatusScheduled)},
			{Name: domain.TransitionUnschedule, From: state(domain.StatusScheduled), To: state(domain.StatusDraft)},
			{Name: domain.TransitionArchive, From: state(domain.StatusPublished), To: state(domain.StatusArchived)},
		},
	}
}

func state(status domain.Status) interfaces.WorkflowState {
	return interfaces.WorkflowState(status)
}
