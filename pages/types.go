package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a node of the locale-scoped content tree. Its Path column is a
// materialized concatenation of the ancestor slugs; it is derived state and is
// recomputed whenever the parent chain or the slug changes.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:pg"`

	ID       uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	GroupID  uuid.UUID  `bun:"group_id,notnull,type:uuid" json:"group_id"`
	Locale   string     `bun:"locale,notnull" json:"locale"`
	ParentID *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Slug     string     `bun:"slug,notnull" json:"slug"`
	Path     string     `bun:"path,notnull" json:"path"`
	Position int        `bun:"position,notnull" json:"position"`
	Title    string     `bun:"title,notnull" json:"title"`
	Status   string     `bun:"status,notnull,default:'draft'" json:"status"`

	PublishAt   *time.Time `bun:"publish_at,nullzero" json:"publish_at,omitempty"`
	UnpublishAt *time.Time `bun:"unpublish_at,nullzero" json:"unpublish_at,omitempty"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	PublishedBy *uuid.UUID `bun:"published_by,type:uuid" json:"published_by,omitempty"`

	SubmittedForReviewAt *time.Time `bun:"submitted_for_review_at,nullzero" json:"submitted_for_review_at,omitempty"`
	ReviewedBy           *uuid.UUID `bun:"reviewed_by,type:uuid" json:"reviewed_by,omitempty"`
	ReviewNotes          *string    `bun:"review_notes" json:"review_notes,omitempty"`

	// Blocks and SEO are opaque payloads owned by other subsystems.
	Blocks map[string]any `bun:"blocks,type:jsonb" json:"blocks,omitempty"`
	SEO    map[string]any `bun:"seo,type:jsonb" json:"seo,omitempty"`

	CreatedBy uuid.UUID `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy uuid.UUID `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Locale describes an addressable locale; pages only attach to active locales.
type Locale struct {
	bun.BaseModel `bun:"table:locales,alias:l"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull" json:"code"`
	Display   string    `bun:"display_name,notnull" json:"display_name"`
	IsActive  bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	IsDefault bool      `bun:"is_default,notnull,default:false" json:"is_default"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// TreeNode is the read-only nested projection used by navigation UIs.
type TreeNode struct {
	Page       *Page       `json:"page"`
	ChildCount int         `json:"child_count"`
	Children   []*TreeNode `json:"children,omitempty"`
}
