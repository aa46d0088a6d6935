package pagescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-pagetree/internal/commands"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/google/uuid"
)

const movePageMessageType = "pagetree.pages.move"

// MovePageCommand reparents a page and positions it among its new siblings.
type MovePageCommand struct {
	PageID      uuid.UUID  `json:"page_id"`
	NewParentID *uuid.UUID `json:"new_parent_id,omitempty"`
	NewPosition int        `json:"new_position"`
	UpdatedBy   uuid.UUID  `json:"updated_by"`
}

// Type implements command.Message.
func (MovePageCommand) Type() string { return movePageMessageType }

// Validate ensures the command captures the required identifiers before reaching handlers.
func (m MovePageCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("pagetree.pages.move.page_id_required", "page_id is required")
	}
	if m.NewParentID != nil && *m.NewParentID == uuid.Nil {
		errs["new_parent_id"] = validation.NewError("pagetree.pages.move.new_parent_id_invalid", "new_parent_id must be a valid identifier when provided")
	}
	if m.NewPosition < 0 {
		errs["new_position"] = validation.NewError("pagetree.pages.move.new_position_invalid", "new_position must be zero or positive")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MovePageHandler executes moves via the page service using the shared command foundation.
type MovePageHandler struct {
	inner *commands.Handler[MovePageCommand]
}

// NewMovePageHandler constructs a handler wired to the provided page service.
func NewMovePageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[MovePageCommand]) *MovePageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg MovePageCommand) error {
		_, err := service.Move(ctx, pages.MovePageRequest{
			PageID:      msg.PageID,
			NewParentID: msg.NewParentID,
			NewPosition: msg.NewPosition,
			UpdatedBy:   msg.UpdatedBy,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[MovePageCommand]{
		commands.WithLogger[MovePageCommand](baseLogger),
		commands.WithOperation[MovePageCommand]("pages.move"),
		commands.WithMessageFields(func(msg MovePageCommand) map[string]any {
			fields := map[string]any{
				"page_id":      msg.PageID,
				"new_position": msg.NewPosition,
			}
			if msg.NewParentID != nil && *msg.NewParentID != uuid.Nil {
				fields["new_parent_id"] = *msg.NewParentID
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MovePageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MovePageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MovePageCommand].
func (h *MovePageHandler) Execute(ctx context.Context, msg MovePageCommand) error {
	return h.inner.Execute(ctx, msg)
}
