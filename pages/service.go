package pages

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service describes page tree management capabilities: structural mutation of
// the locale-scoped hierarchy and the publishing workflow around each node.
type Service interface {
	Create(ctx context.Context, req CreatePageRequest) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	GetByPath(ctx context.Context, locale, path string) (*Page, error)
	List(ctx context.Context, locale string) ([]*Page, error)
	GetTree(ctx context.Context, req TreeRequest) ([]*TreeNode, error)
	Rename(ctx context.Context, req RenamePageRequest) (*Page, error)
	Move(ctx context.Context, req MovePageRequest) (*Page, error)
	Delete(ctx context.Context, req DeletePageRequest) error
	Resequence(ctx context.Context, req ResequenceRequest) error
	Translate(ctx context.Context, req TranslatePageRequest) (*Page, error)

	SubmitForReview(ctx context.Context, req SubmitForReviewRequest) (*Page, error)
	Approve(ctx context.Context, req ReviewDecisionRequest) (*Page, error)
	Reject(ctx context.Context, req ReviewDecisionRequest) (*Page, error)
	Publish(ctx context.Context, req PublishPageRequest) (*Page, error)
	Unpublish(ctx context.Context, req UnpublishPageRequest) (*Page, error)
	Schedule(ctx context.Context, req SchedulePageRequest) (*Page, error)
	Unschedule(ctx context.Context, req UnschedulePageRequest) (*Page, error)
	Archive(ctx context.Context, req ArchivePageRequest) (*Page, error)

	// Affordance predicates for API layers. They answer from the same
	// workflow definition the transitions execute against, so they cannot
	// drift from the guards.
	CanBeSubmittedForReview(status string) bool
	CanBeApproved(status string) bool
	CanBeRejected(status string) bool
}

// Repository abstracts storage operations for pages. It is the only writer of
// path, position, and status columns; structural batch writes are atomic.
type Repository interface {
	Create(ctx context.Context, record *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, locale string, parentID *uuid.UUID, slug string) (*Page, error)
	GetByPath(ctx context.Context, locale, path string) (*Page, error)
	List(ctx context.Context, locale string) ([]*Page, error)
	ListChildren(ctx context.Context, locale string, parentID *uuid.UUID) ([]*Page, error)
	// ListSubtree returns every page strictly below the supplied path within
	// the locale, i.e. pages whose path begins with path + "/".
	ListSubtree(ctx context.Context, locale, path string) ([]*Page, error)
	Update(ctx context.Context, record *Page) (*Page, error)
	// SaveTree persists slug/parent/path/position changes for the supplied
	// records in one transaction; either all rows update or none do.
	SaveTree(ctx context.Context, records []*Page) error
	// SaveSubtree persists a cascade that relocated the subtree rooted at
	// vacatedPath. In the same transaction it verifies the subtree really
	// vacated: any row still below vacatedPath after the writes was added or
	// re-pathed concurrently, and the whole batch fails with
	// ErrConcurrentUpdate.
	SaveSubtree(ctx context.Context, locale, vacatedPath string, records []*Page) error
	// DeletePages removes the supplied pages in one transaction.
	DeletePages(ctx context.Context, ids []uuid.UUID) error
	ListDuePublish(ctx context.Context, until time.Time, limit int) ([]*Page, error)
	ListDueUnpublish(ctx context.Context, until time.Time, limit int) ([]*Page, error)
}

// LocaleRepository resolves locales by code.
type LocaleRepository interface {
	GetByCode(ctx context.Context, code string) (*Locale, error)
}

// CreatePageRequest captures the payload required to create a page.
type CreatePageRequest struct {
	Locale    string
	ParentID  *uuid.UUID
	Slug      string
	Title     string
	GroupID   uuid.UUID // zero value starts a new translation group
	Blocks    map[string]any
	SEO       map[string]any
	CreatedBy uuid.UUID
	UpdatedBy uuid.UUID
}

// RenamePageRequest changes a page slug, cascading path recomputation to the
// whole descendant subtree.
type RenamePageRequest struct {
	PageID    uuid.UUID
	NewSlug   string
	UpdatedBy uuid.UUID
}

// MovePageRequest reparents a page and positions it among its new siblings.
type MovePageRequest struct {
	PageID      uuid.UUID
	NewParentID *uuid.UUID
	NewPosition int
	UpdatedBy   uuid.UUID
}

// DeletePageRequest removes a page. Deletion cascades to every descendant;
// children are never reparented.
type DeletePageRequest struct {
	PageID    uuid.UUID
	DeletedBy uuid.UUID
}

// ResequenceRequest rewrites sibling positions to a dense 0..n-1 sequence.
type ResequenceRequest struct {
	Locale   string
	ParentID *uuid.UUID
}

// TranslatePageRequest creates a page in another locale sharing the source
// page's translation group.
type TranslatePageRequest struct {
	PageID       uuid.UUID
	TargetLocale string
	Slug         string // empty reuses the source slug
	Title        string
	CreatedBy    uuid.UUID
}

// TreeRequest scopes the nested tree projection.
type TreeRequest struct {
	Locale   string
	MaxDepth int // zero or negative means unlimited
}

// SubmitForReviewRequest moves a draft or rejected page into review.
type SubmitForReviewRequest struct {
	PageID  uuid.UUID
	ActorID uuid.UUID
}

// ReviewDecisionRequest records an approve/reject decision.
type ReviewDecisionRequest struct {
	PageID     uuid.UUID
	ReviewerID uuid.UUID
	Notes      *string
}

// PublishPageRequest publishes a page immediately.
type PublishPageRequest struct {
	PageID      uuid.UUID
	ActorID     uuid.UUID
	PublishedAt *time.Time // defaults to the service clock
}

// UnpublishPageRequest returns a published page to draft.
type UnpublishPageRequest struct {
	PageID  uuid.UUID
	ActorID uuid.UUID
}

// SchedulePageRequest registers publish and/or unpublish windows. A publish
// window moves a draft into the scheduled state; an unpublish window is only
// valid on published pages.
type SchedulePageRequest struct {
	PageID      uuid.UUID
	PublishAt   *time.Time
	UnpublishAt *time.Time
	ScheduledBy uuid.UUID
}

// UnschedulePageRequest clears a pending publish window.
type UnschedulePageRequest struct {
	PageID  uuid.UUID
	ActorID uuid.UUID
}

// ArchivePageRequest retires a published page while retaining published_at
// for historical reference.
type ArchivePageRequest struct {
	PageID  uuid.UUID
	ActorID uuid.UUID
}
