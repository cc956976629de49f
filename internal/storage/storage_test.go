package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "aixcollect.db")
	s, err := Open(ctx, Config{
		Path:      dbPath,
		EnableWAL: true,
	})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollectionRunsRoundtrip(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-10 * time.Minute).UTC()
	r1 := CollectionRun{
		RunID:            "run-1",
		ServerName:       "aixprod01",
		Hostname:         "aixprod01.example.com",
		Kind:             "errpt",
		Success:          true,
		RecordsCollected: 3,
		StartedAt:        base,
		FinishedAt:       base.Add(2 * time.Second),
		CreatedAt:        base,
	}
	r2 := CollectionRun{
		RunID:        "run-1",
		ServerName:   "aixprod01",
		Kind:         "syslog",
		Success:      false,
		ErrorMessage: "failed to write system log data",
		CreatedAt:    base.Add(1 * time.Minute),
	}
	r3 := CollectionRun{
		RunID:            "run-2",
		ServerName:       "aixprod02",
		Kind:             "errpt",
		Success:          true,
		RecordsCollected: 0,
		CreatedAt:        base.Add(2 * time.Minute),
	}

	if err := s.InsertCollectionRuns(ctx, []CollectionRun{r1, r2, r3}); err != nil {
		t.Fatalf("insert runs: %v", err)
	}

	got, err := s.QueryCollectionRuns(ctx, RunQuery{ServerName: "aixprod01"})
	if err != nil {
		t.Fatalf("query runs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].Kind != "errpt" || got[1].Kind != "syslog" {
		t.Fatalf("unexpected order: %s then %s", got[0].Kind, got[1].Kind)
	}

	failed := false
	got, err = s.QueryCollectionRuns(ctx, RunQuery{Success: &failed})
	if err != nil {
		t.Fatalf("query failed runs: %v", err)
	}
	if len(got) != 1 || got[0].ErrorMessage == "" {
		t.Fatalf("expected the single failed run, got %+v", got)
	}

	count, err := s.CountCollectionRuns(ctx)
	if err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d", count)
	}
}

func TestDeleteCollectionRunsBefore(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-1 * time.Hour).UTC()
	runs := []CollectionRun{
		{ServerName: "a", Kind: "errpt", Success: true, CreatedAt: base},
		{ServerName: "a", Kind: "errpt", Success: true, CreatedAt: base.Add(30 * time.Minute)},
		{ServerName: "a", Kind: "errpt", Success: true, CreatedAt: base.Add(50 * time.Minute)},
	}
	if err := s.InsertCollectionRuns(ctx, runs); err != nil {
		t.Fatalf("insert: %v", err)
	}

	affected, err := s.DeleteCollectionRunsBefore(ctx, base.Add(40*time.Minute))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected = %d, want 2", affected)
	}
}

func TestDeleteCollectionRunsKeepLatest(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-1 * time.Hour).UTC()
	var runs []CollectionRun
	for i := 0; i < 5; i++ {
		runs = append(runs, CollectionRun{
			ServerName: "a",
			Kind:       "syslog",
			Success:    true,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	if err := s.InsertCollectionRuns(ctx, runs); err != nil {
		t.Fatalf("insert: %v", err)
	}

	affected, err := s.DeleteCollectionRunsKeepLatest(ctx, 2)
	if err != nil {
		t.Fatalf("delete keep latest: %v", err)
	}
	if affected != 3 {
		t.Fatalf("affected = %d, want 3", affected)
	}

	count, err := s.CountCollectionRuns(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("remaining = %d, want 2", count)
	}
}
