package workitems_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"aura/internal/analysis"
	"aura/internal/services"
	"aura/internal/workitems"
)

func openStore(t *testing.T) *workitems.Store {
	t.Helper()
	store, err := workitems.Open(context.Background(), filepath.Join(t.TempDir(), "db", "aura.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aura.db")

	first, err := workitems.Open(ctx, path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	version, err := first.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != "001_initial" {
		t.Fatalf("unexpected schema version %q", version)
	}
	if _, err := first.CreateInitiative(ctx, workitems.Initiative{Title: "Keep me"}); err != nil {
		t.Fatalf("CreateInitiative: %v", err)
	}
	_ = first.Close()

	second, err := workitems.Open(ctx, path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()
	rows, err := second.Execute(ctx, "SELECT COUNT(1) AS n FROM schema_migrations")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n, _ := rows[0]["n"].(int64); n != 1 {
		t.Fatalf("expected one migration row, got %v", rows[0]["n"])
	}
	list, err := second.ListInitiatives(ctx, workitems.InitiativeFilter{})
	if err != nil {
		t.Fatalf("ListInitiatives: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected data to survive reopen, got %d rows", len(list))
	}
}

func TestBuildInitiativesQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter workitems.InitiativeFilter
		query  string
		params []any
	}{
		{
			name:  "no filters",
			query: "SELECT * FROM initiatives ORDER BY created_at DESC",
		},
		{
			name:   "brief only",
			filter: workitems.InitiativeFilter{BusinessBriefID: "BB-1"},
			query:  "SELECT * FROM initiatives WHERE business_brief_id = ? ORDER BY created_at DESC",
			params: []any{"BB-1"},
		},
		{
			name:   "status only",
			filter: workitems.InitiativeFilter{Status: "active"},
			query:  "SELECT * FROM initiatives WHERE status = ? ORDER BY created_at DESC",
			params: []any{"active"},
		},
		{
			name:   "both",
			filter: workitems.InitiativeFilter{BusinessBriefID: "BB-1", Status: "active"},
			query:  "SELECT * FROM initiatives WHERE business_brief_id = ? AND status = ? ORDER BY created_at DESC",
			params: []any{"BB-1", "active"},
		},
		{
			name:   "blank values ignored",
			filter: workitems.InitiativeFilter{BusinessBriefID: "  ", Status: "draft"},
			query:  "SELECT * FROM initiatives WHERE status = ? ORDER BY created_at DESC",
			params: []any{"draft"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params := workitems.BuildInitiativesQuery(tt.filter)
			if query != tt.query {
				t.Fatalf("query = %q, want %q", query, tt.query)
			}
			if diff := cmp.Diff(tt.params, params, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListInitiativesFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	briefID, err := store.CreateBusinessBrief(ctx, workitems.BusinessBrief{Title: "Checkout revamp"})
	if err != nil {
		t.Fatalf("CreateBusinessBrief: %v", err)
	}
	seed := []workitems.Initiative{
		{ID: "INIT-1", BusinessBriefID: briefID, Title: "First", Status: "active"},
		{ID: "INIT-2", BusinessBriefID: briefID, Title: "Second", Status: "draft"},
		{ID: "INIT-3", Title: "Third", Status: "active"},
	}
	for _, item := range seed {
		if _, err := store.CreateInitiative(ctx, item); err != nil {
			t.Fatalf("CreateInitiative %s: %v", item.ID, err)
		}
	}

	all, err := store.ListInitiatives(ctx, workitems.InitiativeFilter{})
	if err != nil {
		t.Fatalf("ListInitiatives: %v", err)
	}
	if got := ids(all); !reflect.DeepEqual(got, []string{"INIT-3", "INIT-2", "INIT-1"}) {
		t.Fatalf("expected newest first, got %v", got)
	}

	active, err := store.ListInitiatives(ctx, workitems.InitiativeFilter{Status: "active"})
	if err != nil {
		t.Fatalf("ListInitiatives status: %v", err)
	}
	if got := ids(active); !reflect.DeepEqual(got, []string{"INIT-3", "INIT-1"}) {
		t.Fatalf("unexpected active rows %v", got)
	}

	both, err := store.ListInitiatives(ctx, workitems.InitiativeFilter{BusinessBriefID: briefID, Status: "active"})
	if err != nil {
		t.Fatalf("ListInitiatives both: %v", err)
	}
	if got := ids(both); !reflect.DeepEqual(got, []string{"INIT-1"}) {
		t.Fatalf("unexpected filtered rows %v", got)
	}
	if both[0]["acceptance_criteria"] != "[]" {
		t.Fatalf("expected empty criteria array, got %v", both[0]["acceptance_criteria"])
	}
}

func TestListInitiativesBindsFilterValues(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if _, err := store.CreateInitiative(ctx, workitems.Initiative{Title: "Only"}); err != nil {
		t.Fatalf("CreateInitiative: %v", err)
	}

	rows, err := store.ListInitiatives(ctx, workitems.InitiativeFilter{Status: "x' OR '1'='1"})
	if err != nil {
		t.Fatalf("ListInitiatives: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected injected text to match nothing, got %d rows", len(rows))
	}
}

func TestExecuteReturnsEmptySliceForNoRows(t *testing.T) {
	store := openStore(t)
	rows, err := store.Execute(context.Background(), "SELECT id FROM initiatives WHERE id = ?", "missing")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func TestExecuteReportsBadSQL(t *testing.T) {
	store := openStore(t)
	if _, err := store.Execute(context.Background(), "SELECT nope FROM nowhere"); err == nil {
		t.Fatal("expected error for bad query")
	}
}

func TestCreateInitiativeRequiresTitle(t *testing.T) {
	store := openStore(t)
	_, err := store.CreateInitiative(context.Background(), workitems.Initiative{Title: "   "})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = store.CreateBusinessBrief(context.Background(), workitems.BusinessBrief{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateInitiativeGeneratesID(t *testing.T) {
	store := openStore(t)
	id, err := store.CreateInitiative(context.Background(), workitems.Initiative{Title: "Generated"})
	if err != nil {
		t.Fatalf("CreateInitiative: %v", err)
	}
	if len(id) <= len("INIT-") || id[:5] != "INIT-" {
		t.Fatalf("unexpected generated id %q", id)
	}
	rows, err := store.Execute(context.Background(), "SELECT priority, status FROM initiatives WHERE id = ?", id)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rows[0]["priority"] != "medium" || rows[0]["status"] != "draft" {
		t.Fatalf("unexpected defaults %#v", rows[0])
	}
}

func ids(rows []workitems.Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		id, _ := row["id"].(string)
		out = append(out, id)
	}
	return out
}

func TestImportAnalysisLinksInitiativesToBrief(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	result := analysis.NewMockAnalyzer(0).Analyze(ctx, analysis.LevelBusinessBrief, false)

	summary, err := store.ImportAnalysis(ctx, result)
	if err != nil {
		t.Fatalf("ImportAnalysis: %v", err)
	}
	if summary.BusinessBriefID == "" || len(summary.InitiativeIDs) != len(result.Initiatives) {
		t.Fatalf("unexpected summary %+v", summary)
	}
	rows, err := store.ListInitiatives(ctx, workitems.InitiativeFilter{BusinessBriefID: summary.BusinessBriefID})
	if err != nil {
		t.Fatalf("ListInitiatives: %v", err)
	}
	if len(rows) != len(result.Initiatives) {
		t.Fatalf("expected %d linked initiatives, got %d", len(result.Initiatives), len(rows))
	}
	if rows[0]["title"] != result.Initiatives[0].Title {
		t.Fatalf("unexpected title %v", rows[0]["title"])
	}

	again, err := store.ImportAnalysis(ctx, result)
	if err != nil {
		t.Fatalf("second ImportAnalysis: %v", err)
	}
	if again.BusinessBriefID == summary.BusinessBriefID {
		t.Fatal("expected fresh ids on re-import")
	}
}

func TestImportAnalysisWithoutBrief(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	result := analysis.NewMockAnalyzer(0).Analyze(ctx, analysis.LevelStory, false)
	summary, err := store.ImportAnalysis(ctx, result)
	if err != nil {
		t.Fatalf("ImportAnalysis: %v", err)
	}
	if summary.BusinessBriefID != "" || len(summary.InitiativeIDs) != 0 {
		t.Fatalf("expected empty import, got %+v", summary)
	}
}
