package pages

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-pagetree/internal/domain"
	"github.com/goliatone/go-pagetree/internal/workflow"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/google/uuid"
)

// SubmitForReview moves a draft or rejected page into review and stamps the
// submission time. Review notes from a previous rejection are retained until
// the next decision overwrites them.
func (s *service) SubmitForReview(ctx context.Context, req SubmitForReviewRequest) (*Page, error) {
	return s.transition(ctx, req.PageID, domain.TransitionSubmitForReview, req.ActorID, func(page *Page, now time.Time) {
		page.SubmittedForReviewAt = &now
	})
}

// Approve records the reviewer decision and moves the page to approved.
func (s *service) Approve(ctx context.Context, req ReviewDecisionRequest) (*Page, error) {
	return s.transition(ctx, req.PageID, domain.TransitionApprove, req.ReviewerID, func(page *Page, now time.Time) {
		reviewer := req.ReviewerID
		page.ReviewedBy = &reviewer
		page.ReviewNotes = req.Notes
	})
}

// Reject records the reviewer decision and returns the page to its author.
func (s *service) Reject(ctx context.Context, req ReviewDecisionRequest) (*Page, error) {
	return s.transition(ctx, req.PageID, domain.TransitionReject, req.ReviewerID, func(page *Page, now time.Time) {
		reviewer := req.ReviewerID
		page.ReviewedBy = &reviewer
		page.ReviewNotes = req.Notes
	})
}

// Publish makes the page publicly available, stamping published_at and
// clearing any pending publish window.
func (s *service) Publish(ctx context.Context, req PublishPageRequest) (*Page, error) {
	return s.transition(ctx, req.PageID, domain.TransitionPublish, req.ActorID, func(page *Page, now time.Time) {
		publishedAt := now
		if req.PublishedAt != nil && !req.PublishedAt.IsZero() {
			publishedAt = *req.PublishedAt
		}
		page.PublishedAt = &publishedAt
		page.PublishAt = nil
		if req.ActorID != uuid.Nil {
			actor := req.ActorID
			page.PublishedBy = &actor
		}
	})
}

// Unpublish returns a published page to draft, clearing published_at and any
// pending unpublish window.
func (s *service) Unpublish(ctx context.Context, req UnpublishPageRequest) (*Page, error) {
	return s.transition(ctx, req.PageID, domain.TransitionUnpublish, req.ActorID, func(page *Page, now time.Time) {
		page.PublishedAt = nil
		page.PublishedBy = nil
		page.UnpublishAt = nil
	})
}

// Schedule registers publish and/or unpublish windows. A publish window moves
// a draft into the scheduled state; an unpublish window alone is only valid on
// a published page and does not change status.
func (s *service) Schedule(ctx context.Context, req SchedulePageRequest) (*Page, error) {
	if !s.schedulingEnabled {
		return nil, ErrSchedulingDisabled
	}
	if req.PublishAt == nil && req.UnpublishAt == nil {
		return nil, ErrMissingSchedule
	}

	page, err := s.Get(ctx, req.PageID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if req.PublishAt != nil {
		if req.PublishAt.IsZero() {
			return nil, ErrMissingSchedule
		}
		if !req.PublishAt.After(now) {
			return nil, ErrPastSchedule
		}
		if req.UnpublishAt != nil && !req.UnpublishAt.After(*req.PublishAt) {
			return nil, &ScheduleValidationError{Status: page.Status, Message: "unpublish_at must be after publish_at"}
		}
		return s.transition(ctx, req.PageID, domain.TransitionSchedule, req.ScheduledBy, func(page *Page, now time.Time) {
			publishAt := *req.PublishAt
			page.PublishAt = &publishAt
			if req.UnpublishAt != nil {
				unpublishAt := *req.UnpublishAt
				page.UnpublishAt = &unpublishAt
			}
		})
	}

	// Unpublish window only: no state transition, published pages only.
	if page.Status != string(domain.StatusPublished) {
		return nil, &ScheduleValidationError{Status: page.Status, Message: "unpublish_at requires a published page"}
	}
	if !req.UnpublishAt.After(now) {
		return nil, &ScheduleValidationError{Status: page.Status, Message: "unpublish_at must be in the future"}
	}

	unpublishAt := *req.UnpublishAt
	page.UnpublishAt = &unpublishAt
	page.UpdatedAt = now
	if req.ScheduledBy != uuid.Nil {
		page.UpdatedBy = req.ScheduledBy
	}
	if err := s.validateScheduleState(page, now); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, page)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "scheduled", updated, req.ScheduledBy)
	return updated, nil
}

// Unschedule cancels a pending publish window and returns the page to draft.
func (s *service) Unschedule(ctx context.Context, req UnschedulePageRequest) (*Page, error) {
	return s.transition(ctx, req.PageID, domain.TransitionUnschedule, req.ActorID, func(page *Page, now time.Time) {
		page.PublishAt = nil
		page.UnpublishAt = nil
	})
}

// Archive retires a published page. published_at is retained for historical
// reference.
func (s *service) Archive(ctx context.Context, req ArchivePageRequest) (*Page, error) {
	return s.transition(ctx, req.PageID, domain.TransitionArchive, req.ActorID, func(page *Page, now time.Time) {
		page.UnpublishAt = nil
	})
}

// CanBeSubmittedForReview reports whether submit_for_review is permitted.
func (s *service) CanBeSubmittedForReview(status string) bool {
	return s.engine.CanTransition(workflow.EntityTypePage, domain.TransitionSubmitForReview, interfaces.WorkflowState(status))
}

// CanBeApproved reports whether approve is permitted.
func (s *service) CanBeApproved(status string) bool {
	return s.engine.CanTransition(workflow.EntityTypePage, domain.TransitionApprove, interfaces.WorkflowState(status))
}

// CanBeRejected reports whether reject is permitted.
func (s *service) CanBeRejected(status string) bool {
	return s.engine.CanTransition(workflow.EntityTypePage, domain.TransitionReject, interfaces.WorkflowState(status))
}

// transition runs the named workflow transition through the engine, applies
// the side effects, revalidates scheduling invariants, and persists.
func (s *service) transition(ctx context.Context, pageID uuid.UUID, name string, actor uuid.UUID, apply func(*Page, time.Time)) (*Page, error) {
	page, err := s.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Transition(ctx, interfaces.TransitionInput{
		EntityID:     page.ID,
		EntityType:   workflow.EntityTypePage,
		CurrentState: interfaces.WorkflowState(page.Status),
		Transition:   name,
		ActorID:      actor,
	})
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return nil, &InvalidTransitionError{From: page.Status, Transition: name}
		}
		return nil, err
	}

	now := s.now()
	page.Status = string(result.ToState)
	if apply != nil {
		apply(page, now)
	}
	page.UpdatedAt = now
	if actor != uuid.Nil {
		page.UpdatedBy = actor
	}

	if err := s.validateScheduleState(page, now); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, page)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, result.Transition, updated, actor)
	return updated, nil
}

// validateScheduleState enforces the status/scheduling field invariants on
// every save so an invalid combination can never persist.
func (s *service) validateScheduleState(page *Page, now time.Time) error {
	status := domain.Status(page.Status)

	switch {
	case status == domain.StatusScheduled && page.PublishAt == nil:
		return ErrMissingSchedule
	case status == domain.StatusScheduled && !page.PublishAt.After(now):
		return ErrPastSchedule
	case status == domain.StatusPublished && page.PublishAt != nil:
		return &ScheduleValidationError{Status: page.Status, Message: "published pages cannot carry publish_at"}
	}

	if page.UnpublishAt != nil {
		switch status {
		case domain.StatusPublished:
			// Compare against the publish instant when known so a sweep that
			// runs late can still promote a page whose whole window is past.
			reference := now
			if page.PublishedAt != nil {
				reference = *page.PublishedAt
			}
			if !page.UnpublishAt.After(reference) {
				return &ScheduleValidationError{Status: page.Status, Message: "unpublish_at must be after the publish instant"}
			}
		case domain.StatusScheduled:
			if page.PublishAt != nil && !page.UnpublishAt.After(*page.PublishAt) {
				return &ScheduleValidationError{Status: page.Status, Message: "unpublish_at must be after publish_at"}
			}
		default:
			return &ScheduleValidationError{Status: page.Status, Message: "unpublish_at requires a published or scheduled page"}
		}
	}

	return nil
}
