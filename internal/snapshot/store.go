// Package snapshot is the durable tier of the cache-aside store: raw
// provider payloads keyed by ticker and organization, append-only.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valuelab/fundpipe/internal/blob"
	"github.com/valuelab/fundpipe/internal/core"
	"go.uber.org/zap"
)

// Store persists raw snapshots in blob storage. Object paths embed the
// fetch time so lexicographic order is chronological:
//
//	{org}/{ticker}/{fetchedAt}.json
type Store struct {
	storage blob.Storage
	logger  *zap.Logger
}

// NewStore creates a snapshot store over the given blob backend.
func NewStore(storage blob.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{storage: storage, logger: log}
}

func objectPath(ticker, org string, fetchedAt time.Time) string {
	return fmt.Sprintf("%s/%s/%s.json", org, ticker,
		fetchedAt.UTC().Format("20060102T150405.000000000"))
}

// Put appends a snapshot. Snapshots are immutable once written.
func (s *Store) Put(ctx context.Context, snap *core.RawSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return core.WrapError(core.ErrPersistenceFailed, err)
	}

	path := objectPath(snap.Ticker, snap.OrganizationID, snap.FetchedAt)
	if err := s.storage.Write(ctx, path, data); err != nil {
		return core.WrapError(core.ErrPersistenceFailed, err)
	}
	return nil
}

// Latest returns the most recent snapshot for (ticker, org) fetched at or
// after notBefore, or nil when none qualifies.
func (s *Store) Latest(ctx context.Context, ticker, org string, notBefore time.Time) (*core.RawSnapshot, error) {
	prefix := fmt.Sprintf("%s/%s/", org, ticker)
	paths, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrPersistenceFailed, err)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	// Paths sort chronologically, so the newest entry is last. Older
	// entries are staler still, so one read decides freshness.
	data, err := s.storage.Read(ctx, paths[len(paths)-1])
	if err != nil {
		return nil, core.WrapError(core.ErrPersistenceFailed, err)
	}

	var snap core.RawSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, core.WrapError(core.ErrPersistenceFailed, err)
	}

	if snap.FetchedAt.Before(notBefore) {
		return nil, nil
	}
	return &snap, nil
}
