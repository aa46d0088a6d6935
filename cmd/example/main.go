package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	pagetree "github.com/goliatone/go-pagetree"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/google/uuid"
)

func main() {
	ctx := context.Background()

	cfg := pagetree.DefaultConfig()
	cfg.Storage.Provider = "memory"
	cfg.Features.Scheduling = true
	cfg.Features.Workflow = true
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "pretty"
	cfg.Logging.Level = "debug"

	locales := pages.NewMemoryLocaleRepository()
	locales.Add(&pages.Locale{ID: uuid.New(), Code: "en", Display: "English", IsActive: true, IsDefault: true})
	locales.Add(&pages.Locale{ID: uuid.New(), Code: "es", Display: "Spanish", IsActive: true})

	module, err := pagetree.New(cfg, pagetree.WithLocaleRepository(locales))
	if err != nil {
		log.Fatalf("initialise pagetree: %v", err)
	}
	svc := module.Pages()
	authorID := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

	docs, err := svc.Create(ctx, pages.CreatePageRequest{
		Locale:    "en",
		Slug:      "docs",
		Title:     "Documentation",
		CreatedBy: authorID,
		UpdatedBy: authorID,
	})
	if err != nil {
		log.Fatalf("create docs: %v", err)
	}

	install, err := svc.Create(ctx, pages.CreatePageRequest{
		Locale:    "en",
		ParentID:  &docs.ID,
		Slug:      "install",
		Title:     "Installation",
		CreatedBy: authorID,
		UpdatedBy: authorID,
	})
	if err != nil {
		log.Fatalf("create install: %v", err)
	}

	if _, err := svc.Create(ctx, pages.CreatePageRequest{
		Locale:    "en",
		ParentID:  &install.ID,
		Slug:      "linux",
		Title:     "Linux",
		CreatedBy: authorID,
		UpdatedBy: authorID,
	}); err != nil {
		log.Fatalf("create linux: %v", err)
	}

	// Renaming a branch cascades to every descendant path.
	if _, err := svc.Rename(ctx, pages.RenamePageRequest{
		PageID:    docs.ID,
		NewSlug:   "guides",
		UpdatedBy: authorID,
	}); err != nil {
		log.Fatalf("rename docs: %v", err)
	}

	tree, err := svc.GetTree(ctx, pages.TreeRequest{Locale: "en"})
	if err != nil {
		log.Fatalf("get tree: %v", err)
	}
	prettyPrint("tree.json", tree)

	// Walk the publishing workflow for the install page.
	if _, err := svc.SubmitForReview(ctx, pages.SubmitForReviewRequest{PageID: install.ID, ActorID: authorID}); err != nil {
		log.Fatalf("submit for review: %v", err)
	}
	if _, err := svc.Approve(ctx, pages.ReviewDecisionRequest{PageID: install.ID, ReviewerID: authorID}); err != nil {
		log.Fatalf("approve: %v", err)
	}

	publishAt := time.Now().Add(2 * time.Second)
	if _, err := svc.Schedule(ctx, pages.SchedulePageRequest{
		PageID:      install.ID,
		PublishAt:   &publishAt,
		ScheduledBy: authorID,
	}); err != nil {
		log.Fatalf("schedule: %v", err)
	}

	// Wait for the window to open, then run one sweep pass by hand instead of
	// starting the interval runner.
	time.Sleep(2500 * time.Millisecond)
	if worker := module.SweepWorker(); worker != nil {
		if err := worker.Process(ctx); err != nil {
			log.Fatalf("sweep: %v", err)
		}
	}

	published, err := svc.Get(ctx, install.ID)
	if err != nil {
		log.Fatalf("get published: %v", err)
	}
	fmt.Printf("page %s status after sweep: %s\n", published.Path, published.Status)

	translated, err := svc.Translate(ctx, pages.TranslatePageRequest{
		PageID:       published.ID,
		TargetLocale: "es",
		Slug:         "instalacion",
		Title:        "Instalación",
		CreatedBy:    authorID,
	})
	if err != nil {
		log.Fatalf("translate: %v", err)
	}
	fmt.Printf("translation %s shares group %s\n", translated.Path, translated.GroupID)
}

func prettyPrint(label string, v any) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("marshal %s: %v", label, err)
		return
	}
	fmt.Printf("--- %s ---\n%s\n", label, payload)
}
