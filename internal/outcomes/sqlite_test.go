package outcomes_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/vetter/internal/outcomes"
	"github.com/JaimeStill/vetter/pkg/pagination"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pageConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func newSQLiteStore(t *testing.T) outcomes.System {
	t.Helper()
	db, err := outcomes.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return outcomes.NewSQLite(db, discardLogger(), pageConfig())
}

func acceptedCommand(product, category string) outcomes.RecordCommand {
	return outcomes.RecordCommand{
		Category:                category,
		SubCategories:           []string{"fresh produce", "apples"},
		ProductName:             product,
		CompanyName:             "Orchard Co",
		Location:                "Yakima, WA",
		Certifications:          []string{"USDA Organic"},
		Decision:                outcomes.DecisionAccepted,
		Reason:                  "Whole fruit, NOVA level 1.",
		SuggestedCertifications: []string{"Non-GMO Project"},
		CatalogVersion:          "2026-10-01",
		ProviderName:            "ollama",
		ModelName:               "llama3",
	}
}

func TestRecordAndFind(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	cmd := acceptedCommand("Honeycrisp Apples", "agriculture")
	cmd.Transcript = []outcomes.Exchange{
		{Question: "Are any additives used?", Answer: "No"},
	}

	before := time.Now().UTC().Add(-time.Second)
	rec, err := store.Record(ctx, cmd)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if rec.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if rec.CreatedAt.Before(before) {
		t.Errorf("created_at %v before %v", rec.CreatedAt, before)
	}

	got, err := store.Find(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if got.ProductName != cmd.ProductName || got.Reason != cmd.Reason {
		t.Errorf("Find = %+v", got)
	}
	if len(got.SubCategories) != 2 || got.SubCategories[0] != "fresh produce" {
		t.Errorf("sub categories = %v", got.SubCategories)
	}
	if len(got.Transcript) != 1 || got.Transcript[0].Answer != "No" {
		t.Errorf("transcript = %v", got.Transcript)
	}
	if len(got.SuggestedCertifications) != 1 {
		t.Errorf("suggested = %v", got.SuggestedCertifications)
	}
	if got.CatalogVersion != "2026-10-01" || got.ModelName != "llama3" {
		t.Errorf("provenance = %s %s", got.CatalogVersion, got.ModelName)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestRecordNotIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	cmd := acceptedCommand("Honeycrisp Apples", "agriculture")

	a, err := store.Record(ctx, cmd)
	if err != nil {
		t.Fatalf("first Record: %v", err)
	}
	b, err := store.Record(ctx, cmd)
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if a.ID == b.ID {
		t.Error("expected distinct ids for repeated records")
	}

	page, err := store.List(ctx, pagination.PageRequest{}, outcomes.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
}

func TestRecordRejectsNonAccepted(t *testing.T) {
	store := newSQLiteStore(t)

	tests := []struct {
		name   string
		mutate func(*outcomes.RecordCommand)
	}{
		{"rejected decision", func(c *outcomes.RecordCommand) { c.Decision = "rejected" }},
		{"empty decision", func(c *outcomes.RecordCommand) { c.Decision = "" }},
		{"blank reason", func(c *outcomes.RecordCommand) { c.Reason = "  " }},
		{"missing category", func(c *outcomes.RecordCommand) { c.Category = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := acceptedCommand("Apples", "agriculture")
			tt.mutate(&cmd)

			_, err := store.Record(context.Background(), cmd)
			if !errors.Is(err, outcomes.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestFindNotFound(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.Find(context.Background(), uuid.New())
	if !errors.Is(err, outcomes.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersAndSearch(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	seed := []outcomes.RecordCommand{
		acceptedCommand("Honeycrisp Apples", "agriculture"),
		acceptedCommand("Wild Salmon Fillet", "seafood"),
		acceptedCommand("Halal Chicken Breast", "meat_poultry"),
	}
	for _, cmd := range seed {
		if _, err := store.Record(ctx, cmd); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	seafood := "seafood"
	search := "chicken"
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		page    pagination.PageRequest
		filters outcomes.Filters
		want    int
	}{
		{"all", pagination.PageRequest{}, outcomes.Filters{}, 3},
		{"by category", pagination.PageRequest{}, outcomes.Filters{Category: &seafood}, 1},
		{"search is case insensitive", pagination.PageRequest{Search: &search}, outcomes.Filters{}, 1},
		{"since past", pagination.PageRequest{}, outcomes.Filters{Since: &past}, 3},
		{"until past", pagination.PageRequest{}, outcomes.Filters{Until: &past}, 0},
		{"since future", pagination.PageRequest{}, outcomes.Filters{Since: &future}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := store.List(ctx, tt.page, tt.filters)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if page.Total != tt.want || len(page.Data) != tt.want {
				t.Errorf("total = %d, len = %d, want %d", page.Total, len(page.Data), tt.want)
			}
		})
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	var last *outcomes.Outcome
	for _, name := range []string{"first", "second", "third"} {
		rec, err := store.Record(ctx, acceptedCommand(name, "other"))
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		last = rec
		time.Sleep(2 * time.Millisecond)
	}

	page, err := store.List(ctx, pagination.PageRequest{Page: 1, PageSize: 2}, outcomes.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if page.Total != 3 || page.TotalPages != 2 || len(page.Data) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Data[0].ID != last.ID {
		t.Errorf("first item = %s, want newest %s", page.Data[0].ProductName, last.ProductName)
	}
}
