package pages

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSlugRequired       = errors.New("pages: slug is required")
	ErrSlugInvalid        = errors.New("pages: slug contains invalid characters")
	ErrDuplicateSlug      = errors.New("pages: slug already exists among siblings")
	ErrPageNotFound       = errors.New("pages: page not found")
	ErrParentNotFound     = errors.New("pages: parent page not found")
	ErrUnknownLocale      = errors.New("pages: unknown or inactive locale")
	ErrLocaleMismatch     = errors.New("pages: parent belongs to a different locale")
	ErrCircularReference  = errors.New("pages: move would create a hierarchy cycle")
	ErrPageRequired       = errors.New("pages: page id required")
	ErrPositionInvalid    = errors.New("pages: position must be zero or positive")
	ErrInvalidTransition  = errors.New("pages: transition not allowed from current status")
	ErrMissingSchedule    = errors.New("pages: schedule requires publish_at to be set")
	ErrPastSchedule       = errors.New("pages: publish_at must be in the future")
	ErrScheduleInvalid    = errors.New("pages: schedule state combination is invalid")
	ErrSchedulingDisabled = errors.New("pages: scheduling feature disabled")
	ErrWorkflowDisabled   = errors.New("pages: workflow feature disabled")
	ErrTranslationExists  = errors.New("pages: translation already exists for locale")
	ErrConcurrentUpdate   = errors.New("pages: record changed by a concurrent operation")
)

// PageNotFoundError reports a missing page, carrying the lookup key.
type PageNotFoundError struct {
	Key string
}

func (e *PageNotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Key) == "" {
		return ErrPageNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPageNotFound.Error(), e.Key)
}

func (e *PageNotFoundError) Unwrap() error {
	return ErrPageNotFound
}

// DuplicateSlugError captures the sibling scope of a slug collision.
type DuplicateSlugError struct {
	Locale   string
	ParentID string
	Slug     string
}

func (e *DuplicateSlugError) Error() string {
	if e == nil {
		return ErrDuplicateSlug.Error()
	}
	scope := "root"
	if strings.TrimSpace(e.ParentID) != "" {
		scope = e.ParentID
	}
	return fmt.Sprintf("%s: locale=%s parent=%s slug=%s", ErrDuplicateSlug.Error(), e.Locale, scope, e.Slug)
}

func (e *DuplicateSlugError) Unwrap() error {
	return ErrDuplicateSlug
}

// InvalidTransitionError reports a workflow transition attempted from a state
// that does not permit it.
type InvalidTransitionError struct {
	From       string
	Transition string
}

func (e *InvalidTransitionError) Error() string {
	if e == nil {
		return ErrInvalidTransition.Error()
	}
	return fmt.Sprintf("%s: %s from %s", ErrInvalidTransition.Error(), e.Transition, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ScheduleValidationError reports an invalid status/scheduling field
// combination detected before persisting a page.
type ScheduleValidationError struct {
	Status  string
	Message string
}

func (e *ScheduleValidationError) Error() string {
	if e == nil {
		return ErrScheduleInvalid.Error()
	}
	message := strings.TrimSpace(e.Message)
	if message == "" {
		return fmt.Sprintf("%s: status=%s", ErrScheduleInvalid.Error(), e.Status)
	}
	return fmt.Sprintf("%s: %s", ErrScheduleInvalid.Error(), message)
}

func (e *ScheduleValidationError) Unwrap() error {
	return ErrScheduleInvalid
}

// CircularReferenceError identifies the page whose move was rejected.
type CircularReferenceError struct {
	PageID      string
	NewParentID string
}

func (e *CircularReferenceError) Error() string {
	if e == nil {
		return ErrCircularReference.Error()
	}
	return fmt.Sprintf("%s: page=%s parent=%s", ErrCircularReference.Error(), e.PageID, e.NewParentID)
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}
