package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/maphash"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/praylude/internal/domain"
)

// deviceLockStripes bounds the number of history write locks regardless of
// how many devices write.
const deviceLockStripes = 64

// timestampLayout matches the ISO-8601 form browsers produce for Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HistoryService records completed sessions per device and keeps the
// aggregate stats in step with them. Reads are fail-soft: missing,
// unreadable or malformed data yields empty results.
type HistoryService struct {
	storage domain.StorageProvider
	now     func() time.Time
	newID   func() string

	seed  maphash.Seed
	locks [deviceLockStripes]sync.Mutex
}

// HistoryOption configures a HistoryService.
type HistoryOption func(*HistoryService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) HistoryOption {
	return func(s *HistoryService) { s.now = now }
}

// NewHistoryService creates a HistoryService over the given storage.
func NewHistoryService(storage domain.StorageProvider, opts ...HistoryOption) *HistoryService {
	s := &HistoryService{
		storage: storage,
		now:     time.Now,
		newID:   uuid.NewString,
		seed:    maphash.MakeSeed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock serialises read-modify-write cycles on a device's history.
func (s *HistoryService) lock(deviceID string) func() {
	mu := &s.locks[maphash.String(s.seed, deviceID)%deviceLockStripes]
	mu.Lock()
	return mu.Unlock
}

// Now returns the service's current time.
func (s *HistoryService) Now() time.Time {
	return s.now()
}

// RecordCompletion appends a record for a finished session and rebuilds the
// stats. Storage failures are logged and leave the previous state in place.
func (s *HistoryService) RecordCompletion(ctx context.Context, deviceID, sessionName string, durationSeconds int, notes string) domain.CompletedSession {
	now := s.now()
	record := domain.CompletedSession{
		ID:          s.newID(),
		CompletedAt: now.UTC().Format(timestampLayout),
		Duration:    durationSeconds,
		SessionName: sessionName,
		Notes:       notes,
	}

	defer s.lock(deviceID)()
	kv := s.storage.Storage(deviceID)
	records, err := readRecords(ctx, kv)
	if err != nil {
		slog.Error("record completion: read sessions", "device", deviceID, "error", err)
		return record
	}
	records = append(records, record)

	if err := s.write(ctx, kv, records, now); err != nil {
		slog.Error("record completion", "device", deviceID, "error", err)
	}
	return record
}

// ListCompletions returns every record of the device in insertion order.
func (s *HistoryService) ListCompletions(ctx context.Context, deviceID string) []domain.CompletedSession {
	records, err := readRecords(ctx, s.storage.Storage(deviceID))
	if err != nil {
		slog.Warn("list completions", "device", deviceID, "error", err)
		return []domain.CompletedSession{}
	}
	return records
}

// Stats returns the persisted aggregate view, or zero stats when none is readable.
func (s *HistoryService) Stats(ctx context.Context, deviceID string) domain.Stats {
	raw, err := s.storage.Storage(deviceID).Get(ctx, domain.KeyStats)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("read stats", "device", deviceID, "error", err)
		}
		return domain.Stats{}
	}

	var stats domain.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		slog.Warn("malformed stats", "device", deviceID, "error", err)
		return domain.Stats{}
	}
	return stats
}

// ReplaceAll overwrites the device's history with records and rebuilds the stats.
func (s *HistoryService) ReplaceAll(ctx context.Context, deviceID string, records []domain.CompletedSession) error {
	defer s.lock(deviceID)()
	return s.write(ctx, s.storage.Storage(deviceID), records, s.now())
}

// Clear removes the device's history and stats.
func (s *HistoryService) Clear(ctx context.Context, deviceID string) error {
	defer s.lock(deviceID)()
	if err := s.storage.Storage(deviceID).Delete(ctx, domain.KeySessions, domain.KeyStats); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *HistoryService) write(ctx context.Context, kv domain.KeyValueStore, records []domain.CompletedSession, now time.Time) error {
	encoded, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	stats, err := json.Marshal(BuildStats(records, now))
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	// Records and stats land together or not at all.
	if err := kv.SetMany(ctx, map[string]string{
		domain.KeySessions: string(encoded),
		domain.KeyStats:    string(stats),
	}); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// readRecords loads the record list. A missing key or malformed document is
// treated as no data; only an unreadable store is an error.
func readRecords(ctx context.Context, kv domain.KeyValueStore) ([]domain.CompletedSession, error) {
	raw, err := kv.Get(ctx, domain.KeySessions)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.CompletedSession{}, nil
		}
		return nil, err
	}

	var records []domain.CompletedSession
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Warn("malformed session history, treating as empty", "error", err)
		return []domain.CompletedSession{}, nil
	}
	if records == nil {
		records = []domain.CompletedSession{}
	}
	return records, nil
}
