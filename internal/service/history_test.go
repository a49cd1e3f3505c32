package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

var historyNow = time.Date(2025, time.June, 1, 7, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return historyNow }

func TestHistoryService_RecordCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db, service.WithClock(fixedClock))
	ctx := context.Background()

	record := svc.RecordCompletion(ctx, "dev-1", service.StandardSessionName, 1200, "calm")
	if record.ID == "" {
		t.Fatal("expected record ID to be set")
	}
	if record.CompletedAt != "2025-06-01T07:30:00.000Z" {
		t.Fatalf("unexpected completedAt %q", record.CompletedAt)
	}
	if record.Duration != 1200 || record.SessionName != service.StandardSessionName || record.Notes != "calm" {
		t.Fatalf("unexpected record: %+v", record)
	}

	records := svc.ListCompletions(ctx, "dev-1")
	if len(records) != 1 || records[0] != record {
		t.Fatalf("expected stored record, got %+v", records)
	}

	stats := svc.Stats(ctx, "dev-1")
	want := domain.Stats{TotalSessions: 1, TotalMinutes: 20, CurrentStreak: 1, LastSessionDate: "2025-06-01"}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}

func TestHistoryService_BackToBackCompletions(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db, service.WithClock(fixedClock))
	ctx := context.Background()

	first := svc.RecordCompletion(ctx, "dev-1", "A", 90, "")
	second := svc.RecordCompletion(ctx, "dev-1", "B", 30, "")
	if first.ID == second.ID {
		t.Fatal("expected distinct record IDs")
	}

	records := svc.ListCompletions(ctx, "dev-1")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SessionName != "A" || records[1].SessionName != "B" {
		t.Fatal("expected records in insertion order")
	}

	stats := svc.Stats(ctx, "dev-1")
	if stats.TotalSessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", stats.TotalSessions)
	}
	if stats.TotalMinutes != 3 {
		t.Fatalf("expected 3 minutes, got %d", stats.TotalMinutes)
	}
}

func TestHistoryService_StoredFormat(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db, service.WithClock(fixedClock))
	ctx := context.Background()

	svc.RecordCompletion(ctx, "dev-1", "A", 60, "")

	raw, err := db.Storage("dev-1").Get(ctx, domain.KeySessions)
	if err != nil {
		t.Fatalf("Get sessions: %v", err)
	}
	var docs []map[string]any
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		t.Fatalf("stored sessions are not a JSON array: %v", err)
	}
	for _, field := range []string{"id", "completedAt", "duration", "sessionName"} {
		if _, ok := docs[0][field]; !ok {
			t.Errorf("missing field %q", field)
		}
	}
	if _, ok := docs[0]["notes"]; ok {
		t.Error("empty notes should be omitted")
	}

	rawStats, err := db.Storage("dev-1").Get(ctx, domain.KeyStats)
	if err != nil {
		t.Fatalf("Get stats: %v", err)
	}
	var stats map[string]any
	if err := json.Unmarshal([]byte(rawStats), &stats); err != nil {
		t.Fatalf("stored stats are not JSON: %v", err)
	}
	for _, field := range []string{"totalSessions", "totalMinutes", "currentStreak", "lastSessionDate"} {
		if _, ok := stats[field]; !ok {
			t.Errorf("missing stats field %q", field)
		}
	}
}

func TestHistoryService_EmptyDevice(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db)
	ctx := context.Background()

	records := svc.ListCompletions(ctx, "fresh")
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
	if stats := svc.Stats(ctx, "fresh"); stats != (domain.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestHistoryService_DevicesAreIsolated(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db, service.WithClock(fixedClock))
	ctx := context.Background()

	svc.RecordCompletion(ctx, "dev-1", "A", 60, "")

	if got := svc.ListCompletions(ctx, "dev-2"); len(got) != 0 {
		t.Fatalf("expected no records for dev-2, got %d", len(got))
	}
}

func TestHistoryService_MalformedDataTreatedAsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db, service.WithClock(fixedClock))
	ctx := context.Background()
	kv := db.Storage("dev-1")

	if err := kv.Set(ctx, domain.KeySessions, "{not json"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, domain.KeyStats, "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got := svc.ListCompletions(ctx, "dev-1"); len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
	if stats := svc.Stats(ctx, "dev-1"); stats != (domain.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}

	svc.RecordCompletion(ctx, "dev-1", "A", 60, "")
	if got := svc.ListCompletions(ctx, "dev-1"); len(got) != 1 {
		t.Fatalf("expected history to restart with 1 record, got %d", len(got))
	}
}

func TestHistoryService_UnavailableStorage(t *testing.T) {
	storage := newMemStorage()
	storage.failGet = true
	svc := service.NewHistoryService(storage, service.WithClock(fixedClock))
	ctx := context.Background()

	record := svc.RecordCompletion(ctx, "dev-1", "A", 60, "")
	if record.SessionName != "A" {
		t.Fatalf("expected record to be returned, got %+v", record)
	}
	if storage.setCalled != 0 {
		t.Fatal("nothing should be written when history cannot be read")
	}
	if got := svc.ListCompletions(ctx, "dev-1"); len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
	if stats := svc.Stats(ctx, "dev-1"); stats != (domain.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestHistoryService_FailedWriteKeepsPriorState(t *testing.T) {
	storage := newMemStorage()
	svc := service.NewHistoryService(storage, service.WithClock(fixedClock))
	ctx := context.Background()

	svc.RecordCompletion(ctx, "dev-1", "A", 60, "")
	before, _ := storage.raw("dev-1", domain.KeySessions)

	storage.failSet = true
	svc.RecordCompletion(ctx, "dev-1", "B", 60, "")

	after, _ := storage.raw("dev-1", domain.KeySessions)
	if before != after {
		t.Fatal("failed write should leave stored history untouched")
	}
	if got := svc.Stats(ctx, "dev-1"); got.TotalSessions != 1 {
		t.Fatalf("expected stats from prior state, got %+v", got)
	}
}

func TestHistoryService_FailedStatsWriteKeepsRecordsUnchanged(t *testing.T) {
	storage := newMemStorage()
	svc := service.NewHistoryService(storage, service.WithClock(fixedClock))
	ctx := context.Background()

	svc.RecordCompletion(ctx, "dev-1", "A", 60, "")

	storage.failKey = domain.KeyStats
	svc.RecordCompletion(ctx, "dev-1", "B", 60, "")
	storage.failKey = ""

	records := svc.ListCompletions(ctx, "dev-1")
	stats := svc.Stats(ctx, "dev-1")
	if len(records) != 1 || stats.TotalSessions != 1 {
		t.Fatalf("records and stats out of step: %d records, stats %+v", len(records), stats)
	}

	svc.RecordCompletion(ctx, "dev-1", "C", 60, "")
	records = svc.ListCompletions(ctx, "dev-1")
	stats = svc.Stats(ctx, "dev-1")
	if len(records) != 2 || stats.TotalSessions != 2 || stats.TotalMinutes != 2 {
		t.Fatalf("expected two records after recovery, got %d records, stats %+v", len(records), stats)
	}
}

func TestHistoryService_ConcurrentCompletionsAreAllKept(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db, service.WithClock(fixedClock))
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RecordCompletion(ctx, "dev-1", "Concurrent", 60, "")
		}()
	}
	wg.Wait()

	if got := svc.ListCompletions(ctx, "dev-1"); len(got) != writers {
		t.Fatalf("expected %d records, got %d", writers, len(got))
	}
	if stats := svc.Stats(ctx, "dev-1"); stats.TotalSessions != writers || stats.TotalMinutes != writers {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestHistoryService_ReplaceAllAndClear(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewHistoryService(db, service.WithClock(fixedClock))
	ctx := context.Background()

	demo := service.GenerateDemoHistory(historyNow)
	if err := svc.ReplaceAll(ctx, "dev-1", demo); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if got := svc.ListCompletions(ctx, "dev-1"); len(got) != len(demo) {
		t.Fatalf("expected %d records, got %d", len(demo), len(got))
	}
	stats := svc.Stats(ctx, "dev-1")
	if stats.TotalSessions != 10 || stats.CurrentStreak != 4 {
		t.Fatalf("unexpected demo stats: %+v", stats)
	}

	if err := svc.Clear(ctx, "dev-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := svc.ListCompletions(ctx, "dev-1"); len(got) != 0 {
		t.Fatalf("expected empty history after Clear, got %d", len(got))
	}
	if stats := svc.Stats(ctx, "dev-1"); stats != (domain.Stats{}) {
		t.Fatalf("expected zero stats after Clear, got %+v", stats)
	}
}
