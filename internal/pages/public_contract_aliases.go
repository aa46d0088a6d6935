package pages

import pt "github.com/goliatone/go-pagetree/pages"

type (
	Service                 = pt.Service
	Repository              = pt.Repository
	LocaleRepository        = pt.LocaleRepository
	Page                    = pt.Page
	Locale                  = pt.Locale
	TreeNode                = pt.TreeNode
	CreatePageRequest       = pt.CreatePageRequest
	RenamePageRequest       = pt.RenamePageRequest
	MovePageRequest         = pt.MovePageRequest
	DeletePageRequest       = pt.DeletePageRequest
	ResequenceRequest       = pt.ResequenceRequest
	TranslatePageRequest    = pt.TranslatePageRequest
	TreeRequest             = pt.TreeRequest
	SubmitForReviewRequest  = pt.SubmitForReviewRequest
	ReviewDecisionRequest   = pt.ReviewDecisionRequest
	PublishPageRequest      = pt.PublishPageRequest
	UnpublishPageRequest    = pt.UnpublishPageRequest
	SchedulePageRequest     = pt.SchedulePageRequest
	UnschedulePageRequest   = pt.UnschedulePageRequest
	ArchivePageRequest      = pt.ArchivePageRequest
	PageNotFoundError       = pt.PageNotFoundError
	DuplicateSlugError      = pt.DuplicateSlugError
	InvalidTransitionError  = pt.InvalidTransitionError
	ScheduleValidationError = pt.ScheduleValidationError
	CircularReferenceError  = pt.CircularReferenceError
)

var (
	ErrSlugRequired       = pt.ErrSlugRequired
	ErrSlugInvalid        = pt.ErrSlugInvalid
	ErrDuplicateSlug      = pt.ErrDuplicateSlug
	ErrPageNotFound       = pt.ErrPageNotFound
	ErrParentNotFound     = pt.ErrParentNotFound
	ErrUnknownLocale      = pt.ErrUnknownLocale
	ErrLocaleMismatch     = pt.ErrLocaleMismatch
	ErrCircularReference  = pt.ErrCircularReference
	ErrPageRequired       = pt.ErrPageRequired
	ErrPositionInvalid    = pt.ErrPositionInvalid
	ErrInvalidTransition  = pt.ErrInvalidTransition
	ErrMissingSchedule    = pt.ErrMissingSchedule
	ErrPastSchedule       = pt.ErrPastSchedule
	ErrScheduleInvalid    = pt.ErrScheduleInvalid
	ErrSchedulingDisabled = pt.ErrSchedulingDisabled
	ErrWorkflowDisabled   = pt.ErrWorkflowDisabled
	ErrTranslationExists  = pt.ErrTranslationExists
	ErrConcurrentUpdate   = pt.ErrConcurrentUpdate
)
