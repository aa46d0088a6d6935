package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/pages"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/google/uuid"
)

// PageService is the slice of the page service the sweep drives. Due pages go
// through the same workflow transitions an operator would trigger by hand.
type PageService interface {
	Publish(ctx context.Context, req pages.PublishPageRequest) (*pages.Page, error)
	Archive(ctx context.Context, req pages.ArchivePageRequest) (*pages.Page, error)
}

// DueRepository lists pages whose publish or unpublish window has arrived.
type DueRepository interface {
	ListDuePublish(ctx context.Context, until time.Time, limit int) ([]*pages.Page, error)
	ListDueUnpublish(ctx context.Context, until time.Time, limit int) ([]*pages.Page, error)
}

type Worker struct {
	service   PageService
	repo      DueRepository
	audit     AuditRecorder
	logger    interfaces.Logger
	now       func() time.Time
	actor     uuid.UUID
	batchSize int
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithSystemActor sets the actor recorded on sweep-driven transitions.
func WithSystemActor(actor uuid.UUID) Option {
	return func(w *Worker) {
		w.actor = actor
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func NewWorker(service PageService, repo DueRepository, opts ...Option) *Worker {
	w := &Worker{
		service:   service,
		repo:      repo,
		logger:    logging.NoOp(),
		now:       time.Now,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process runs one sweep pass: due scheduled pages are published, then due
// published pages are archived. A failing page is logged and skipped so one
// bad record cannot stall the rest of the batch.
func (w *Worker) Process(ctx context.Context) error {
	if w.repo == nil {
		return errors.New("jobs: page repository is nil")
	}
	if w.service == nil {
		return errors.New("jobs: page service is nil")
	}
	deadline := w.now()

	due, err := w.repo.ListDuePublish(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, page := range due {
		if page == nil {
			continue
		}
		if err := w.publishDue(ctx, page, deadline); err != nil {
			w.logger.Error("sweep publish failed", "page_id", page.ID.String(), "path", page.Path, "error", err)
		}
	}

	expiring, err := w.repo.ListDueUnpublish(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, page := range expiring {
		if page == nil {
			continue
		}
		if err := w.archiveDue(ctx, page, deadline); err != nil {
			w.logger.Error("sweep unpublish failed", "page_id", page.ID.String(), "path", page.Path, "error", err)
		}
	}
	return nil
}

func (w *Worker) publishDue(ctx context.Context, page *pages.Page, now time.Time) error {
	// Stamp the scheduled instant, not the sweep instant, so a late pass
	// still records when the page was supposed to go live.
	publishedAt := now
	if page.PublishAt != nil {
		publishedAt = *page.PublishAt
	}
	updated, err := w.service.Publish(ctx, pages.PublishPageRequest{
		PageID:      page.ID,
		ActorID:     w.actor,
		PublishedAt: &publishedAt,
	})
	if err != nil {
		return err
	}
	w.recordAudit(ctx, AuditEvent{
		EntityType: "page",
		EntityID:   page.ID.String(),
		Action:     "publish",
		OccurredAt: now,
		Metadata: map[string]any{
			"path":         updated.Path,
			"locale":       updated.Locale,
			"published_at": updated.PublishedAt,
		},
	})
	return nil
}

func (w *Worker) archiveDue(ctx context.Context, page *pages.Page, now time.Time) error {
	updated, err := w.service.Archive(ctx, pages.ArchivePageRequest{
		PageID:  page.ID,
		ActorID: w.actor,
	})
	if err != nil {
		return err
	}
	w.recordAudit(ctx, AuditEvent{
		EntityType: "page",
		EntityID:   page.ID.String(),
		Action:     "unpublish",
		OccurredAt: now,
		Metadata: map[string]any{
			"path":   updated.Path,
			"locale": updated.Locale,
			"status": updated.Status,
		},
	})
	return nil
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, event)
}
