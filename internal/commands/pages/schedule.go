package pagescmd

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-pagetree/internal/commands"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/google/uuid"
)

const schedulePageMessageType = "pagetree.pages.schedule"

// SchedulePageCommand registers publish/unpublish windows for a page.
type SchedulePageCommand struct {
	PageID      uuid.UUID  `json:"page_id"`
	PublishAt   *time.Time `json:"publish_at,omitempty"`
	UnpublishAt *time.Time `json:"unpublish_at,omitempty"`
	ScheduledBy uuid.UUID  `json:"scheduled_by,omitempty"`
}

// Type implements command.Message.
func (SchedulePageCommand) Type() string { return schedulePageMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m SchedulePageCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("pagetree.pages.schedule.page_id_required", "page_id is required")
	}
	if m.PublishAt != nil && m.PublishAt.IsZero() {
		errs["publish_at"] = validation.NewError("pagetree.pages.schedule.publish_at_invalid", "publish_at must be a valid timestamp when provided")
	}
	if m.UnpublishAt != nil && m.UnpublishAt.IsZero() {
		errs["unpublish_at"] = validation.NewError("pagetree.pages.schedule.unpublish_at_invalid", "unpublish_at must be a valid timestamp when provided")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SchedulePageHandler coordinates scheduling changes via the page service.
type SchedulePageHandler struct {
	inner *commands.Handler[SchedulePageCommand]
}

// NewSchedulePageHandler constructs a handler wired to the provided page service.
func NewSchedulePageHandler(service pages.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SchedulePageCommand]) *SchedulePageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SchedulePageCommand) error {
		if !gates.schedulingEnabled() {
			return pages.ErrSchedulingDisabled
		}

		fields := map[string]any{
			"page_id": msg.PageID,
		}
		if msg.PublishAt != nil {
			fields["publish_at"] = msg.PublishAt
		}
		if msg.UnpublishAt != nil {
			fields["unpublish_at"] = msg.UnpublishAt
		}
		operationLogger := logging.WithFields(baseLogger, fields)
		operationLogger.Debug("pages.command.schedule.dispatch")

		_, err := service.Schedule(ctx, pages.SchedulePageRequest{
			PageID:      msg.PageID,
			PublishAt:   msg.PublishAt,
			UnpublishAt: msg.UnpublishAt,
			ScheduledBy: msg.ScheduledBy,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SchedulePageCommand]{
		commands.WithLogger[SchedulePageCommand](baseLogger),
		commands.WithOperation[SchedulePageCommand]("pages.schedule"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SchedulePageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SchedulePageCommand].
func (h *SchedulePageHandler) Execute(ctx context.Context, msg SchedulePageCommand) error {
	return h.inner.Execute(ctx, msg)
}
