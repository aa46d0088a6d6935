package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func seedDraft(t *testing.T, ctx context.Context, svc Service, slug string) *Page {
	t.Helper()
	return mustCreate(t, ctx, svc, CreatePageRequest{Locale: "en", Slug: slug, Title: slug})
}

func publishDraft(t *testing.T, ctx context.Context, svc Service, id uuid.UUID) *Page {
	t.Helper()
	page, err := svc.Publish(ctx, PublishPageRequest{PageID: id, ActorID: uuid.New()})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	return page
}

func TestReviewCycleRetainsNotesUntilNextDecision(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	author := uuid.New()
	reviewer := uuid.New()

	submitted, err := svc.SubmitForReview(ctx, SubmitForReviewRequest{PageID: page.ID, ActorID: author})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != "pending_review" {
		t.Fatalf("expected pending_review, got %s", submitted.Status)
	}
	if submitted.SubmittedForReviewAt == nil || !submitted.SubmittedForReviewAt.Equal(now) {
		t.Fatalf("expected submission stamp %v, got %v", now, submitted.SubmittedForReviewAt)
	}

	notes := "needs a second intro paragraph"
	rejected, err := svc.Reject(ctx, ReviewDecisionRequest{PageID: page.ID, ReviewerID: reviewer, Notes: &notes})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != "rejected" {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.ReviewedBy == nil || *rejected.ReviewedBy != reviewer {
		t.Fatalf("expected reviewer stamp, got %v", rejected.ReviewedBy)
	}
	if rejected.ReviewNotes == nil || *rejected.ReviewNotes != notes {
		t.Fatalf("expected review notes, got %v", rejected.ReviewNotes)
	}

	// Rejected pages resubmit directly; the prior notes stay visible until the
	// next decision replaces them.
	resubmitted, err := svc.SubmitForReview(ctx, SubmitForReviewRequest{PageID: page.ID, ActorID: author})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.ReviewNotes == nil || *resubmitted.ReviewNotes != notes {
		t.Fatalf("expected rejection notes retained, got %v", resubmitted.ReviewNotes)
	}

	approved, err := svc.Approve(ctx, ReviewDecisionRequest{PageID: page.ID, ReviewerID: reviewer})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != "approved" {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.ReviewNotes != nil {
		t.Fatalf("expected notes cleared by the approval, got %v", approved.ReviewNotes)
	}
}

func TestPublishStampsActorAndInstant(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	actor := uuid.New()

	published, err := svc.Publish(ctx, PublishPageRequest{PageID: page.ID, ActorID: actor})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != "published" {
		t.Fatalf("expected published, got %s", published.Status)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(now) {
		t.Fatalf("expected published_at %v, got %v", now, published.PublishedAt)
	}
	if published.PublishedBy == nil || *published.PublishedBy != actor {
		t.Fatalf("expected publisher stamp, got %v", published.PublishedBy)
	}
	if published.UpdatedBy != actor {
		t.Fatalf("expected updated_by %s, got %s", actor, published.UpdatedBy)
	}
}

func TestUnpublishClearsPublicationFields(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	publishDraft(t, ctx, svc, page.ID)

	unpublished, err := svc.Unpublish(ctx, UnpublishPageRequest{PageID: page.ID, ActorID: uuid.New()})
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if unpublished.Status != "draft" {
		t.Fatalf("expected draft, got %s", unpublished.Status)
	}
	if unpublished.PublishedAt != nil || unpublished.PublishedBy != nil || unpublished.UnpublishAt != nil {
		t.Fatal("expected publication fields cleared")
	}
}

func TestArchiveRetainsPublishedAt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	publishDraft(t, ctx, svc, page.ID)

	archived, err := svc.Archive(ctx, ArchivePageRequest{PageID: page.ID, ActorID: uuid.New()})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != "archived" {
		t.Fatalf("expected archived, got %s", archived.Status)
	}
	if archived.PublishedAt == nil || !archived.PublishedAt.Equal(now) {
		t.Fatalf("expected published_at retained, got %v", archived.PublishedAt)
	}
}

func TestScheduleMovesDraftToScheduled(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	publishAt := now.Add(time.Hour)
	unpublishAt := now.Add(2 * time.Hour)

	scheduled, err := svc.Schedule(ctx, SchedulePageRequest{
		PageID:      page.ID,
		PublishAt:   &publishAt,
		UnpublishAt: &unpublishAt,
		ScheduledBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if scheduled.Status != "scheduled" {
		t.Fatalf("expected scheduled, got %s", scheduled.Status)
	}
	if scheduled.PublishAt == nil || !scheduled.PublishAt.Equal(publishAt) {
		t.Fatalf("expected publish window %v, got %v", publishAt, scheduled.PublishAt)
	}
	if scheduled.UnpublishAt == nil || !scheduled.UnpublishAt.Equal(unpublishAt) {
		t.Fatalf("expected unpublish window %v, got %v", unpublishAt, scheduled.UnpublishAt)
	}
}

func TestScheduleValidations(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	beforePublish := now.Add(30 * time.Minute)

	if _, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID}); !errors.Is(err, ErrMissingSchedule) {
		t.Fatalf("expected missing schedule, got %v", err)
	}
	if _, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID, PublishAt: &past}); !errors.Is(err, ErrPastSchedule) {
		t.Fatalf("expected past schedule rejection, got %v", err)
	}
	if _, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID, PublishAt: &future, UnpublishAt: &beforePublish}); !errors.Is(err, ErrScheduleInvalid) {
		t.Fatalf("expected window ordering rejection, got %v", err)
	}
	// An unpublish window alone needs a published page.
	if _, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID, UnpublishAt: &future}); !errors.Is(err, ErrScheduleInvalid) {
		t.Fatalf("expected published-only rejection, got %v", err)
	}
}

func TestScheduleUnpublishWindowOnPublishedPage(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	publishDraft(t, ctx, svc, page.ID)

	unpublishAt := now.Add(time.Hour)
	updated, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID, UnpublishAt: &unpublishAt, ScheduledBy: uuid.New()})
	if err != nil {
		t.Fatalf("schedule unpublish: %v", err)
	}
	if updated.Status != "published" {
		t.Fatalf("expected status unchanged, got %s", updated.Status)
	}
	if updated.UnpublishAt == nil || !updated.UnpublishAt.Equal(unpublishAt) {
		t.Fatalf("expected unpublish window %v, got %v", unpublishAt, updated.UnpublishAt)
	}
}

func TestUnscheduleClearsWindows(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	publishAt := now.Add(time.Hour)
	if _, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID, PublishAt: &publishAt}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	cleared, err := svc.Unschedule(ctx, UnschedulePageRequest{PageID: page.ID, ActorID: uuid.New()})
	if err != nil {
		t.Fatalf("unschedule: %v", err)
	}
	if cleared.Status != "draft" {
		t.Fatalf("expected draft, got %s", cleared.Status)
	}
	if cleared.PublishAt != nil || cleared.UnpublishAt != nil {
		t.Fatal("expected windows cleared")
	}
}

func TestScheduledPageCanPublish(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")
	publishAt := now.Add(time.Hour)
	if _, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID, PublishAt: &publishAt}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	published, err := svc.Publish(ctx, PublishPageRequest{PageID: page.ID, ActorID: uuid.New(), PublishedAt: &publishAt})
	if err != nil {
		t.Fatalf("publish scheduled: %v", err)
	}
	if published.Status != "published" {
		t.Fatalf("expected published, got %s", published.Status)
	}
	if published.PublishAt != nil {
		t.Fatal("expected publish window consumed")
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(publishAt) {
		t.Fatalf("expected the window instant stamped, got %v", published.PublishedAt)
	}
}

func TestInvalidTransitionsSurfaceTypedError(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	page := seedDraft(t, ctx, svc, "docs")

	if _, err := svc.Approve(ctx, ReviewDecisionRequest{PageID: page.ID, ReviewerID: uuid.New()}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	var typed *InvalidTransitionError
	_, err := svc.Unpublish(ctx, UnpublishPageRequest{PageID: page.ID, ActorID: uuid.New()})
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed transition error, got %v", err)
	}
	if typed.From != "draft" {
		t.Fatalf("expected draft origin, got %s", typed.From)
	}
}

func TestSchedulingDisabledGate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	locales := NewMemoryLocaleRepository()
	locales.Add(&Locale{ID: uuid.New(), Code: "en", Display: "English", IsActive: true})
	svc := NewService(repo, locales,
		WithClock(func() time.Time { return now }),
		WithSchedulingEnabled(false),
	)

	page := seedDraft(t, ctx, svc, "docs")
	publishAt := now.Add(time.Hour)
	if _, err := svc.Schedule(ctx, SchedulePageRequest{PageID: page.ID, PublishAt: &publishAt}); !errors.Is(err, ErrSchedulingDisabled) {
		t.Fatalf("expected scheduling gate, got %v", err)
	}
}

func TestCanTransitionHelpers(t *testing.T) {
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	if !svc.CanBeSubmittedForReview("draft") || !svc.CanBeSubmittedForReview("rejected") {
		t.Fatal("expected draft and rejected to allow submission")
	}
	if svc.CanBeSubmittedForReview("published") {
		t.Fatal("expected published to block submission")
	}
	if !svc.CanBeApproved("pending_review") || svc.CanBeApproved("draft") {
		t.Fatal("expected approve only from pending_review")
	}
	if !svc.CanBeRejected("pending_review") || svc.CanBeRejected("approved") {
		t.Fatal("expected reject only from pending_review")
	}
}
