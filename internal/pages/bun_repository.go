package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-pagetree/internal/domain"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var pageUpdateColumns = []string{
	"group_id",
	"parent_id",
	"slug",
	"path",
	"position",
	"title",
	"status",
	"publish_at",
	"unpublish_at",
	"published_at",
	"published_by",
	"submitted_for_review_at",
	"reviewed_by",
	"review_notes",
	"blocks",
	"seo",
	"updated_by",
	"updated_at",
}

type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Page]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a Repository backed by bun with optional caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	return &BunRepository{
		db:   db,
		repo: wrapWithCache(NewPageRepository(db), cacheService, keySerializer),
	}
}

func (r *BunRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, mapPageWriteError(err, record)
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return result, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, locale string, parentID *uuid.UUID, slug string) (*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.locale = ?", locale).
				Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return applyParentFilter(q, parentID)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", slug)
	}
	if len(records) == 0 {
		return nil, &PageNotFoundError{Key: slug}
	}
	return records[0], nil
}

func (r *BunRepository) GetByPath(ctx context.Context, locale, path string) (*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.locale = ?", locale).
				Where("?TableAlias.path = ?", path)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", path)
	}
	if len(records) == 0 {
		return nil, &PageNotFoundError{Key: path}
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context, locale string) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if locale != "" {
				q = q.Where("?TableAlias.locale = ?", locale)
			}
			return q.OrderExpr("?TableAlias.path ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", locale)
	}
	return records, nil
}

func (r *BunRepository) ListChildren(ctx context.Context, locale string, parentID *uuid.UUID) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.locale = ?", locale)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return applyParentFilter(q, parentID).OrderExpr("?TableAlias.position ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", locale)
	}
	return records, nil
}

func (r *BunRepository) ListSubtree(ctx context.Context, locale, path string) ([]*Page, error) {
	prefix := ChildPathPrefix(path)
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.locale = ?", locale).
				Where(`?TableAlias.path LIKE ? ESCAPE '\'`, escapeLikePrefix(prefix)+"%").
				OrderExpr("?TableAlias.path ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", path)
	}
	return records, nil
}

func (r *BunRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(pageUpdateColumns...),
	)
	if err != nil {
		return nil, mapPageWriteError(err, record)
	}
	return updated, nil
}

// SaveTree persists structural changes for a batch of pages in one
// transaction so a cascade never leaves the tree half renamed.
func (r *BunRepository) SaveTree(ctx context.Context, records []*Page) error {
	if r.db == nil {
		return fmt.Errorf("page repository: database not configured")
	}
	if len(records) == 0 {
		return nil
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return updatePagesTx(ctx, tx, records)
	})
}

// SaveSubtree persists a relocation cascade, then re-verifies inside the same
// transaction that nothing remains below the vacated path. The batch rows have
// already been re-pathed by the updates, so any row still matching the old
// prefix was created or re-pathed concurrently; the transaction rolls back
// with ErrConcurrentUpdate.
func (r *BunRepository) SaveSubtree(ctx context.Context, locale, vacatedPath string, records []*Page) error {
	if r.db == nil {
		return fmt.Errorf("page repository: database not configured")
	}
	if len(records) == 0 {
		return nil
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := updatePagesTx(ctx, tx, records); err != nil {
			return err
		}

		prefix := ChildPathPrefix(vacatedPath)
		stale, err := tx.NewSelect().
			Model((*Page)(nil)).
			Where("?TableAlias.locale = ?", locale).
			Where(`?TableAlias.path LIKE ? ESCAPE '\'`, escapeLikePrefix(prefix)+"%").
			Count(ctx)
		if err != nil {
			return fmt.Errorf("verify vacated subtree %s: %w", vacatedPath, err)
		}
		if stale > 0 {
			return fmt.Errorf("subtree %s: %d stale rows: %w", vacatedPath, stale, ErrConcurrentUpdate)
		}
		return nil
	})
}

func updatePagesTx(ctx context.Context, tx bun.Tx, records []*Page) error {
	for _, record := range records {
		result, err := tx.NewUpdate().
			Model(record).
			Column(pageUpdateColumns...).
			Where("?TableAlias.id = ?", record.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update page %s: %w", record.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("page update rows affected: %w", err)
		}
		if affected == 0 {
			// The row vanished between the cascade load and the write.
			return fmt.Errorf("page %s: %w", record.ID, ErrConcurrentUpdate)
		}
	}
	return nil
}

// DeletePages removes a batch of pages in one transaction.
func (r *BunRepository) DeletePages(ctx context.Context, ids []uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("page repository: database not configured")
	}
	if len(ids) == 0 {
		return nil
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewDelete().
			Model((*Page)(nil)).
			Where("?TableAlias.id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete pages: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("page delete rows affected: %w", err)
		}
		if int(affected) != len(ids) {
			return &PageNotFoundError{Key: fmt.Sprintf("%d of %d pages", len(ids)-int(affected), len(ids))}
		}
		return nil
	})
}

func (r *BunRepository) ListDuePublish(ctx context.Context, until time.Time, limit int) ([]*Page, error) {
	return r.listDue(ctx, domain.StatusScheduled, "publish_at", until, limit)
}

func (r *BunRepository) ListDueUnpublish(ctx context.Context, until time.Time, limit int) ([]*Page, error) {
	return r.listDue(ctx, domain.StatusPublished, "unpublish_at", until, limit)
}

func (r *BunRepository) listDue(ctx context.Context, status domain.Status, column string, until time.Time, limit int) ([]*Page, error) {
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.status = ?", string(status)).
				Where(fmt.Sprintf("?TableAlias.%s IS NOT NULL", column)).
				Where(fmt.Sprintf("?TableAlias.%s <= ?", column), until).
				OrderExpr(fmt.Sprintf("?TableAlias.%s ASC", column))
		}),
	}
	if limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(limit, 0))
	}
	records, _, err := r.repo.List(ctx, criteria...)
	if err != nil {
		return nil, mapRepositoryError(err, "page", column)
	}
	return records, nil
}

// BunLocaleRepository resolves locales from the locales table.
type BunLocaleRepository struct {
	repo repository.Repository[*Locale]
}

func NewBunLocaleRepository(db *bun.DB) *BunLocaleRepository {
	return &BunLocaleRepository{repo: NewLocaleRepository(db)}
}

func (r *BunLocaleRepository) GetByCode(ctx context.Context, code string) (*Locale, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.code = ?", code)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "locale", code)
	}
	if len(records) == 0 {
		return nil, ErrUnknownLocale
	}
	return records[0], nil
}

func applyParentFilter(q *bun.SelectQuery, parentID *uuid.UUID) *bun.SelectQuery {
	if q == nil {
		return q
	}
	if parentID == nil {
		return q.Where("?TableAlias.parent_id IS NULL")
	}
	return q.Where("?TableAlias.parent_id = ?", *parentID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePrefix(prefix string) string {
	return likeEscaper.Replace(prefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &PageNotFoundError{
			Key: key,
		}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

// mapPageWriteError reports unique-index violations that raced past the
// service's slug pre-check as the same DuplicateSlugError the pre-check
// raises.
func mapPageWriteError(err error, record *Page) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, goerrors.CategoryConflict) {
		parentKey := ""
		if record.ParentID != nil {
			parentKey = record.ParentID.String()
		}
		return &DuplicateSlugError{Locale: record.Locale, ParentID: parentKey, Slug: record.Slug}
	}
	return mapRepositoryError(err, "page", record.Slug)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
