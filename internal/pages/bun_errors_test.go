package pages

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func TestMapPageWriteErrorReportsConflictsAsDuplicateSlug(t *testing.T) {
	parentID := uuid.New()
	record := &Page{Locale: "en", ParentID: &parentID, Slug: "docs"}

	// A unique-index violation that raced past the slug pre-check must come
	// back as the same error the pre-check raises.
	conflict := goerrors.Wrap(errors.New("UNIQUE constraint failed: pages.slug"),
		goerrors.CategoryConflict, "insert failed")
	err := mapPageWriteError(conflict, record)
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected duplicate slug, got %v", err)
	}
	var dup *DuplicateSlugError
	if !errors.As(err, &dup) {
		t.Fatalf("expected typed duplicate error, got %v", err)
	}
	if dup.Locale != "en" || dup.Slug != "docs" || dup.ParentID != parentID.String() {
		t.Fatalf("unexpected duplicate detail: %+v", dup)
	}
}

func TestMapPageWriteErrorKeepsNotFoundMapping(t *testing.T) {
	record := &Page{Locale: "en", Slug: "docs"}

	missing := goerrors.Wrap(errors.New("no rows"),
		repository.CategoryDatabaseNotFound, "select failed")
	if err := mapPageWriteError(missing, record); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	plain := errors.New("disk io")
	if err := mapPageWriteError(plain, record); errors.Is(err, ErrDuplicateSlug) || !errors.Is(err, plain) {
		t.Fatalf("expected passthrough wrap, got %v", err)
	}
}
