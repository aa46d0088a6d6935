package pagescmd

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-pagetree/internal/commands"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/google/uuid"
)

type stubPageService struct {
	moveRequests     []pages.MovePageRequest
	publishRequests  []pages.PublishPageRequest
	scheduleRequests []pages.SchedulePageRequest

	moveErr     error
	publishErr  error
	scheduleErr error
}

func (s *stubPageService) Create(context.Context, pages.CreatePageRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Get(context.Context, uuid.UUID) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) GetByPath(context.Context, string, string) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) List(context.Context, string) ([]*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) GetTree(context.Context, pages.TreeRequest) ([]*pages.TreeNode, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Rename(context.Context, pages.RenamePageRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Move(_ context.Context, req pages.MovePageRequest) (*pages.Page, error) {
	s.moveRequests = append(s.moveRequests, req)
	if s.moveErr != nil {
		return nil, s.moveErr
	}
	return &pages.Page{ID: req.PageID}, nil
}

func (s *stubPageService) Delete(context.Context, pages.DeletePageRequest) error {
	return errors.New("not implemented")
}

func (s *stubPageService) Resequence(context.Context, pages.ResequenceRequest) error {
	return errors.New("not implemented")
}

func (s *stubPageService) Translate(context.Context, pages.TranslatePageRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) SubmitForReview(context.Context, pages.SubmitForReviewRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Approve(context.Context, pages.ReviewDecisionRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Reject(context.Context, pages.ReviewDecisionRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Publish(_ context.Context, req pages.PublishPageRequest) (*pages.Page, error) {
	s.publishRequests = append(s.publishRequests, req)
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	return &pages.Page{ID: req.PageID}, nil
}

func (s *stubPageService) Unpublish(context.Context, pages.UnpublishPageRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Schedule(_ context.Context, req pages.SchedulePageRequest) (*pages.Page, error) {
	s.scheduleRequests = append(s.scheduleRequests, req)
	if s.scheduleErr != nil {
		return nil, s.scheduleErr
	}
	return &pages.Page{ID: req.PageID}, nil
}

func (s *stubPageService) Unschedule(context.Context, pages.UnschedulePageRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) Archive(context.Context, pages.ArchivePageRequest) (*pages.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPageService) CanBeSubmittedForReview(string) bool { return false }
func (s *stubPageService) CanBeApproved(string) bool           { return false }
func (s *stubPageService) CanBeRejected(string) bool           { return false }

func TestMovePageHandlerExecutesService(t *testing.T) {
	service := &stubPageService{}
	logger := commands.CommandLogger(nil, "pages")
	handler := NewMovePageHandler(service, logger)

	pageID := uuid.New()
	parentID := uuid.New()
	updatedBy := uuid.New()
	msg := MovePageCommand{
		PageID:      pageID,
		NewParentID: &parentID,
		NewPosition: 2,
		UpdatedBy:   updatedBy,
	}

	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(service.moveRequests) != 1 {
		t.Fatalf("expected one move request, got %d", len(service.moveRequests))
	}
	req := service.moveRequests[0]
	if req.PageID != pageID {
		t.Fatalf("expected page id %s, got %s", pageID, req.PageID)
	}
	if req.NewParentID == nil || *req.NewParentID != parentID {
		t.Fatalf("expected new parent id %s, got %v", parentID, req.NewParentID)
	}
	if req.NewPosition != 2 {
		t.Fatalf("expected position 2, got %d", req.NewPosition)
	}
	if req.UpdatedBy != updatedBy {
		t.Fatalf("expected updated_by %s, got %s", updatedBy, req.UpdatedBy)
	}
}

func TestMovePageHandlerValidationError(t *testing.T) {
	service := &stubPageService{}
	handler := NewMovePageHandler(service, logging.NoOp())

	err := handler.Execute(context.Background(), MovePageCommand{NewPosition: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(service.moveRequests) != 0 {
		t.Fatalf("expected no move attempts, got %d", len(service.moveRequests))
	}
}

func TestPublishPageHandlerExecutesService(t *testing.T) {
	service := &stubPageService{}
	logger := commands.CommandLogger(nil, "pages")
	handler := NewPublishPageHandler(service, logger, FeatureGates{
		WorkflowEnabled: func() bool { return true },
	})

	pageID := uuid.New()
	actorID := uuid.New()
	publishedAt := time.Now().UTC()
	msg := PublishPageCommand{
		PageID:      pageID,
		ActorID:     actorID,
		PublishedAt: &publishedAt,
	}

	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(service.publishRequests) != 1 {
		t.Fatalf("expected one publish request, got %d", len(service.publishRequests))
	}
	req := service.publishRequests[0]
	if req.PageID != pageID {
		t.Fatalf("expected page id %s, got %s", pageID, req.PageID)
	}
	if req.ActorID != actorID {
		t.Fatalf("expected actor id %s, got %s", actorID, req.ActorID)
	}
	if req.PublishedAt == nil || !req.PublishedAt.Equal(publishedAt) {
		t.Fatalf("expected published_at %v, got %v", publishedAt, req.PublishedAt)
	}
}

func TestPublishPageHandlerFeatureDisabled(t *testing.T) {
	service := &stubPageService{}
	handler := NewPublishPageHandler(service, logging.NoOp(), FeatureGates{
		WorkflowEnabled: func() bool { return false },
	})

	err := handler.Execute(context.Background(), PublishPageCommand{PageID: uuid.New()})
	if err == nil {
		t.Fatal("expected feature gate error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category when feature disabled, got %v", err)
	}
	if len(service.publishRequests) != 0 {
		t.Fatalf("expected no publish attempts, got %d", len(service.publishRequests))
	}
}

func TestPublishPageHandlerContextCancellation(t *testing.T) {
	service := &stubPageService{}
	handler := NewPublishPageHandler(service, logging.NoOp(), FeatureGates{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, PublishPageCommand{PageID: uuid.New()})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for cancellation, got %v", err)
	}
	if len(service.publishRequests) != 0 {
		t.Fatalf("expected no publish attempts, got %d", len(service.publishRequests))
	}
}

func TestSchedulePageHandlerExecutesService(t *testing.T) {
	service := &stubPageService{}
	logger := commands.CommandLogger(nil, "pages")
	handler := NewSchedulePageHandler(service, logger, FeatureGates{
		SchedulingEnabled: func() bool { return true },
	})

	pageID := uuid.New()
	publishAt := time.Now().UTC().Add(2 * time.Hour)
	unpublishAt := publishAt.Add(6 * time.Hour)
	scheduledBy := uuid.New()
	msg := SchedulePageCommand{
		PageID:      pageID,
		PublishAt:   &publishAt,
		UnpublishAt: &unpublishAt,
		ScheduledBy: scheduledBy,
	}

	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(service.scheduleRequests) != 1 {
		t.Fatalf("expected one schedule request, got %d", len(service.scheduleRequests))
	}
	req := service.scheduleRequests[0]
	if req.PageID != pageID {
		t.Fatalf("expected page id %s, got %s", pageID, req.PageID)
	}
	if req.PublishAt == nil || !req.PublishAt.Equal(publishAt) {
		t.Fatalf("expected publish_at %v, got %v", publishAt, req.PublishAt)
	}
	if req.UnpublishAt == nil || !req.UnpublishAt.Equal(unpublishAt) {
		t.Fatalf("expected unpublish_at %v, got %v", unpublishAt, req.UnpublishAt)
	}
	if req.ScheduledBy != scheduledBy {
		t.Fatalf("expected scheduled_by %s, got %s", scheduledBy, req.ScheduledBy)
	}
}

func TestSchedulePageHandlerFeatureDisabled(t *testing.T) {
	service := &stubPageService{}
	handler := NewSchedulePageHandler(service, logging.NoOp(), FeatureGates{
		SchedulingEnabled: func() bool { return false },
	})

	err := handler.Execute(context.Background(), SchedulePageCommand{PageID: uuid.New()})
	if err == nil {
		t.Fatal("expected feature gate error")
	}
	if !errors.Is(err, pages.ErrSchedulingDisabled) {
		t.Fatalf("expected scheduling disabled error, got %v", err)
	}
	if len(service.scheduleRequests) != 0 {
		t.Fatalf("expected no schedule attempts, got %d", len(service.scheduleRequests))
	}
}
