package pages

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-pagetree/internal/domain"
	"github.com/goliatone/go-pagetree/internal/identity"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/workflow"
	"github.com/goliatone/go-pagetree/pkg/activity"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	pt "github.com/goliatone/go-pagetree/pages"
	"github.com/google/uuid"
)

const objectTypePage = "page"

// IDGenerator produces identifiers for new records.
type IDGenerator func() uuid.UUID

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger injects the service logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityEmitter wires change notifications for downstream indexers.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.emitter = emitter
		}
	}
}

// WithSchedulingEnabled toggles the scheduling workflow.
func WithSchedulingEnabled(enabled bool) ServiceOption {
	return func(s *service) {
		s.schedulingEnabled = enabled
	}
}

// WithEngine overrides the workflow engine.
func WithEngine(engine *workflow.Engine) ServiceOption {
	return func(s *service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// service implements Service.
type service struct {
	repo              Repository
	locales           LocaleRepository
	engine            *workflow.Engine
	emitter           *activity.Emitter
	logger            interfaces.Logger
	now               func() time.Time
	id                IDGenerator
	schedulingEnabled bool
}

// NewService constructs a page service with the required dependencies.
func NewService(repo Repository, locales LocaleRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:              repo,
		locales:           locales,
		engine:            workflow.New(),
		logger:            logging.NoOp(),
		now:               time.Now,
		id:                uuid.New,
		schedulingEnabled: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates slug uniqueness within the sibling group, appends the page
// at the end of the group, and persists it with its computed path.
func (s *service) Create(ctx context.Context, req CreatePageRequest) (*Page, error) {
	locale, err := s.resolveLocale(ctx, req.Locale)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if !pt.IsValidSlug(slug) {
		return nil, ErrSlugInvalid
	}

	parentPath := ""
	if req.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, ErrPageNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.Locale != locale.Code {
			return nil, ErrLocaleMismatch
		}
		parentPath = parent.Path
	}

	if err := s.ensureSlugFree(ctx, locale.Code, req.ParentID, slug, uuid.Nil); err != nil {
		return nil, err
	}

	siblings, err := s.repo.ListChildren(ctx, locale.Code, req.ParentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	path := ComputePath(parentPath, slug)

	groupID := req.GroupID
	if groupID == uuid.Nil {
		groupID = identity.GroupUUID(locale.Code, path)
	}

	record := &Page{
		ID:        s.id(),
		GroupID:   groupID,
		Locale:    locale.Code,
		ParentID:  req.ParentID,
		Slug:      slug,
		Path:      path,
		Position:  len(siblings),
		Title:     strings.TrimSpace(req.Title),
		Status:    string(domain.StatusDraft),
		Blocks:    cloneMap(req.Blocks),
		SEO:       cloneMap(req.SEO),
		CreatedBy: req.CreatedBy,
		UpdatedBy: req.UpdatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "created", created, req.CreatedBy)
	return created, nil
}

// Get fetches a page by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	if id == uuid.Nil {
		return nil, ErrPageRequired
	}
	return s.repo.GetByID(ctx, id)
}

// GetByPath fetches a page by its locale-scoped materialized path.
func (s *service) GetByPath(ctx context.Context, locale, path string) (*Page, error) {
	return s.repo.GetByPath(ctx, strings.TrimSpace(locale), strings.TrimSpace(path))
}

// List returns every page in the locale.
func (s *service) List(ctx context.Context, locale string) ([]*Page, error) {
	return s.repo.List(ctx, strings.TrimSpace(locale))
}

// Rename updates the page slug and cascades path recomputation to the full
// descendant subtree inside one repository transaction.
func (s *service) Rename(ctx context.Context, req RenamePageRequest) (*Page, error) {
	page, err := s.Get(ctx, req.PageID)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(req.NewSlug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if !pt.IsValidSlug(slug) {
		return nil, ErrSlugInvalid
	}
	if slug == page.Slug {
		return page, nil
	}

	if err := s.ensureSlugFree(ctx, page.Locale, page.ParentID, slug, page.ID); err != nil {
		return nil, err
	}

	// Load descendants before the path changes; the prefix match depends on
	// the pre-rename path.
	descendants, err := s.repo.ListSubtree(ctx, page.Locale, page.Path)
	if err != nil {
		return nil, err
	}

	vacatedPath := page.Path
	parentPath := parentPathOf(page)
	page.Slug = slug
	page.Path = ComputePath(parentPath, slug)
	recomputeSubtreePaths(page, descendants)

	now := s.now()
	page.UpdatedAt = now
	if req.UpdatedBy != uuid.Nil {
		page.UpdatedBy = req.UpdatedBy
	}

	if err := s.repo.SaveSubtree(ctx, page.Locale, vacatedPath, append([]*Page{page}, descendants...)); err != nil {
		return nil, err
	}

	s.emit(ctx, "updated", page, req.UpdatedBy)
	return page, nil
}

// Move reparents the page, cascades path recomputation, and resequences both
// the old and the new sibling group.
func (s *service) Move(ctx context.Context, req MovePageRequest) (*Page, error) {
	page, err := s.Get(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	if req.NewPosition < 0 {
		return nil, ErrPositionInvalid
	}

	parentPath := ""
	if req.NewParentID != nil {
		if *req.NewParentID == page.ID {
			return nil, &CircularReferenceError{PageID: page.ID.String(), NewParentID: req.NewParentID.String()}
		}
		parent, err := s.repo.GetByID(ctx, *req.NewParentID)
		if err != nil {
			if errors.Is(err, ErrPageNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.Locale != page.Locale {
			return nil, ErrLocaleMismatch
		}
		if err := s.ensureNotDescendant(ctx, page.ID, parent); err != nil {
			return nil, err
		}
		parentPath = parent.Path
	}

	sameParent := sameParentID(page.ParentID, req.NewParentID)
	if !sameParent {
		if err := s.ensureSlugFree(ctx, page.Locale, req.NewParentID, page.Slug, page.ID); err != nil {
			return nil, err
		}
	}

	descendants, err := s.repo.ListSubtree(ctx, page.Locale, page.Path)
	if err != nil {
		return nil, err
	}

	oldParentID := page.ParentID
	vacatedPath := page.Path
	page.ParentID = req.NewParentID
	page.Path = ComputePath(parentPath, page.Slug)
	recomputeSubtreePaths(page, descendants)

	now := s.now()
	page.UpdatedAt = now
	if req.UpdatedBy != uuid.Nil {
		page.UpdatedBy = req.UpdatedBy
	}

	changed := append([]*Page{page}, descendants...)

	// New sibling group: insert at the requested position and rewrite the
	// sequence densely.
	newSiblings, err := s.siblingsExcluding(ctx, page.Locale, req.NewParentID, page.ID)
	if err != nil {
		return nil, err
	}
	changed = append(changed, insertAt(newSiblings, page, req.NewPosition, now)...)

	if !sameParent {
		oldSiblings, err := s.siblingsExcluding(ctx, page.Locale, oldParentID, page.ID)
		if err != nil {
			return nil, err
		}
		changed = append(changed, resequencePages(oldSiblings, now)...)
	}

	// A pure reorder keeps the path; only a real relocation needs the
	// vacated-subtree verification.
	if page.Path == vacatedPath {
		err = s.repo.SaveTree(ctx, dedupePages(changed))
	} else {
		err = s.repo.SaveSubtree(ctx, page.Locale, vacatedPath, dedupePages(changed))
	}
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "updated", page, req.UpdatedBy)
	return page, nil
}

// Delete removes the page and every descendant in one transaction, then
// resequences the sibling group the page left behind.
func (s *service) Delete(ctx context.Context, req DeletePageRequest) error {
	page, err := s.Get(ctx, req.PageID)
	if err != nil {
		return err
	}

	descendants, err := s.repo.ListSubtree(ctx, page.Locale, page.Path)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(descendants)+1)
	ids = append(ids, page.ID)
	for _, descendant := range descendants {
		ids = append(ids, descendant.ID)
	}

	if err := s.repo.DeletePages(ctx, ids); err != nil {
		return err
	}

	if err := s.Resequence(ctx, ResequenceRequest{Locale: page.Locale, ParentID: page.ParentID}); err != nil {
		return err
	}

	s.emit(ctx, "deleted", page, req.DeletedBy)
	for _, descendant := range descendants {
		s.emit(ctx, "deleted", descendant, req.DeletedBy)
	}
	return nil
}

// Resequence rewrites sibling positions to a dense 0..n-1 sequence ordered by
// current position with created_at then id breaking ties. Re-running on an
// already dense group is a no-op.
func (s *service) Resequence(ctx context.Context, req ResequenceRequest) error {
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		return ErrUnknownLocale
	}
	siblings, err := s.repo.ListChildren(ctx, locale, req.ParentID)
	if err != nil {
		return err
	}
	changed := resequencePages(siblings, s.now())
	if len(changed) == 0 {
		return nil
	}
	return s.repo.SaveTree(ctx, changed)
}

// Translate creates a sibling-locale page sharing the source page's
// translation group. The new page attaches under the target locale's
// translation of the source parent when one exists, the locale root otherwise.
func (s *service) Translate(ctx context.Context, req TranslatePageRequest) (*Page, error) {
	source, err := s.Get(ctx, req.PageID)
	if err != nil {
		return nil, err
	}

	locale, err := s.resolveLocale(ctx, req.TargetLocale)
	if err != nil {
		return nil, err
	}
	if locale.Code == source.Locale {
		return nil, ErrTranslationExists
	}

	targetPages, err := s.repo.List(ctx, locale.Code)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[uuid.UUID]*Page, len(targetPages))
	for _, candidate := range targetPages {
		byGroup[candidate.GroupID] = candidate
	}
	if _, exists := byGroup[source.GroupID]; exists {
		return nil, ErrTranslationExists
	}

	var parentID *uuid.UUID
	if source.ParentID != nil {
		sourceParent, err := s.repo.GetByID(ctx, *source.ParentID)
		if err == nil {
			if translated, ok := byGroup[sourceParent.GroupID]; ok {
				id := translated.ID
				parentID = &id
			}
		}
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = source.Slug
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = source.Title
	}

	return s.Create(ctx, CreatePageRequest{
		Locale:    locale.Code,
		ParentID:  parentID,
		Slug:      slug,
		Title:     title,
		GroupID:   source.GroupID,
		Blocks:    cloneMap(source.Blocks),
		SEO:       cloneMap(source.SEO),
		CreatedBy: req.CreatedBy,
		UpdatedBy: req.CreatedBy,
	})
}

// GetTree returns the nested navigation projection for a locale.
func (s *service) GetTree(ctx context.Context, req TreeRequest) ([]*TreeNode, error) {
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		return nil, ErrUnknownLocale
	}
	records, err := s.repo.List(ctx, locale)
	if err != nil {
		return nil, err
	}

	children := make(map[string][]*Page)
	var roots []*Page
	for _, record := range records {
		if record.ParentID == nil {
			roots = append(roots, record)
			continue
		}
		key := record.ParentID.String()
		children[key] = append(children[key], record)
	}

	sortSiblings(roots)
	for key := range children {
		sortSiblings(children[key])
	}

	var build func(nodes []*Page, depth int) []*TreeNode
	build = func(nodes []*Page, depth int) []*TreeNode {
		out := make([]*TreeNode, 0, len(nodes))
		for _, page := range nodes {
			kids := children[page.ID.String()]
			node := &TreeNode{Page: page, ChildCount: len(kids)}
			if req.MaxDepth <= 0 || depth < req.MaxDepth {
				node.Children = build(kids, depth+1)
			}
			out = append(out, node)
		}
		return out
	}

	return build(roots, 1), nil
}

func (s *service) resolveLocale(ctx context.Context, code string) (*Locale, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrUnknownLocale
	}
	locale, err := s.locales.GetByCode(ctx, trimmed)
	if err != nil || locale == nil || !locale.IsActive {
		return nil, ErrUnknownLocale
	}
	return locale, nil
}

// ensureSlugFree enforces the (locale, parent, slug) uniqueness invariant,
// ignoring the page identified by selfID.
func (s *service) ensureSlugFree(ctx context.Context, locale string, parentID *uuid.UUID, slug string, selfID uuid.UUID) error {
	existing, err := s.repo.GetBySlug(ctx, locale, parentID, slug)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != selfID {
		parentKey := ""
		if parentID != nil {
			parentKey = parentID.String()
		}
		return &DuplicateSlugError{Locale: locale, ParentID: parentKey, Slug: slug}
	}
	return nil
}

// ensureNotDescendant walks the candidate parent's ancestor chain and rejects
// the move when the page itself appears, which would detach the subtree into
// a cycle.
func (s *service) ensureNotDescendant(ctx context.Context, pageID uuid.UUID, candidate *Page) error {
	current := candidate
	for depth := 0; depth < maxTreeDepth; depth++ {
		if current.ID == pageID {
			return &CircularReferenceError{PageID: pageID.String(), NewParentID: candidate.ID.String()}
		}
		if current.ParentID == nil {
			return nil
		}
		next, err := s.repo.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, ErrPageNotFound) {
				return nil
			}
			return err
		}
		current = next
	}
	return &CircularReferenceError{PageID: pageID.String(), NewParentID: candidate.ID.String()}
}

func (s *service) siblingsExcluding(ctx context.Context, locale string, parentID *uuid.UUID, exclude uuid.UUID) ([]*Page, error) {
	siblings, err := s.repo.ListChildren(ctx, locale, parentID)
	if err != nil {
		return nil, err
	}
	out := siblings[:0]
	for _, sibling := range siblings {
		if sibling.ID != exclude {
			out = append(out, sibling)
		}
	}
	return out, nil
}

func (s *service) emit(ctx context.Context, verb string, page *Page, actor uuid.UUID) {
	if s.emitter == nil || !s.emitter.Enabled() || page == nil {
		return
	}
	event := activity.Event{
		Verb:       verb,
		ActorID:    actor.String(),
		ObjectType: objectTypePage,
		ObjectID:   page.ID.String(),
		Metadata: map[string]any{
			"locale": page.Locale,
			"path":   page.Path,
			"status": page.Status,
		},
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.Warn("pages.activity.emit_failed", "error", err, "page_id", page.ID)
	}
}

// sortSiblings orders a sibling group deterministically: position first,
// created_at then id breaking ties.
func sortSiblings(siblings []*Page) {
	sort.SliceStable(siblings, func(i, j int) bool {
		if siblings[i].Position != siblings[j].Position {
			return siblings[i].Position < siblings[j].Position
		}
		if !siblings[i].CreatedAt.Equal(siblings[j].CreatedAt) {
			return siblings[i].CreatedAt.Before(siblings[j].CreatedAt)
		}
		return siblings[i].ID.String() < siblings[j].ID.String()
	})
}

// resequencePages rewrites positions to 0..n-1 and returns only the records
// whose position actually changed.
func resequencePages(siblings []*Page, now time.Time) []*Page {
	sortSiblings(siblings)
	var changed []*Page
	for idx, sibling := range siblings {
		if sibling.Position != idx {
			sibling.Position = idx
			sibling.UpdatedAt = now
			changed = append(changed, sibling)
		}
	}
	return changed
}

// insertAt places page into the sibling group at the desired index (clamped
// to append) and rewrites the whole group densely. The returned slice holds
// every record whose position changed, including the inserted page.
func insertAt(siblings []*Page, page *Page, desired int, now time.Time) []*Page {
	sortSiblings(siblings)
	if desired > len(siblings) {
		desired = len(siblings)
	}

	ordered := append([]*Page{}, siblings[:desired]...)
	ordered = append(ordered, page)
	ordered = append(ordered, siblings[desired:]...)

	var changed []*Page
	for idx, sibling := range ordered {
		if sibling.Position != idx || sibling.ID == page.ID {
			sibling.Position = idx
			sibling.UpdatedAt = now
			changed = append(changed, sibling)
		}
	}
	return changed
}

func dedupePages(records []*Page) []*Page {
	seen := make(map[uuid.UUID]struct{}, len(records))
	out := make([]*Page, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.ID]; ok {
			continue
		}
		seen[record.ID] = struct{}{}
		out = append(out, record)
	}
	return out
}

func parentPathOf(page *Page) string {
	idx := strings.LastIndex(page.Path, "/")
	if idx <= 0 {
		return ""
	}
	return page.Path[:idx]
}

func cloneMap(value map[string]any) map[string]any {
	if value == nil {
		return nil
	}
	copied := make(map[string]any, len(value))
	for key, val := range value {
		copied[key] = val
	}
	return copied
}
