package domain

// Status represents lifecycle states for page entities
type Status string

const (
	// StatusDraft indicates content still under preparation
	StatusDraft Status = "draft"
	// StatusPendingReview marks content waiting for an editorial decision
	StatusPendingReview Status = "pending_review"
	// StatusApproved marks content cleared for publication by a reviewer
	StatusApproved Status = "approved"
	// StatusRejected marks content sent back to its author
	StatusRejected Status = "rejected"
	// StatusPublished identifies content available to consumers
	StatusPublished Status = "published"
	// StatusScheduled marks content that has a future publish time configured
	StatusScheduled Status = "scheduled"
	// StatusArchived marks content that is retained for history but not publicly visible
	StatusArchived Status = "archived"
)

// Transition names understood by the page workflow.
const (
	TransitionSubmitForReview = "submit_for_review"
	TransitionApprove         = "approve"
	TransitionReject          = "reject"
	TransitionPublish         = "publish"
	TransitionUnpublish       = "unpublish"
	TransitionSchedule        = "schedule"
	TransitionUnschedule      = "unschedule"
	TransitionArchive         = "archive"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected,
		StatusPublished, StatusScheduled, StatusArchived:
		return true
	}
	return false
}
