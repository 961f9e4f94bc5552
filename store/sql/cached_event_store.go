package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-fusionauth/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const triggerEventCacheKeyPrefix = "go-fusionauth::trigger_event::v1"

// EventLedger is what the trigger writes and the queries read.
type EventLedger interface {
	core.EventRecorder
	core.EventReader
}

// CachedEventStore serves GetEvent through a read-through cache. Ledger rows
// are append-only so a cached entry never goes stale; listings always hit
// the base store.
type CachedEventStore struct {
	base  EventLedger
	cache repositorycache.CacheService
}

func NewCachedEventStore(base EventLedger, cacheService repositorycache.CacheService) (*CachedEventStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base event store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: event cache service is required")
	}
	return &CachedEventStore{base: base, cache: cacheService}, nil
}

// TriggerEventCacheKey returns go-fusionauth::trigger_event::v1::<id> with the
// id URL-path escaped.
func TriggerEventCacheKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", core.NewBadInputError("sqlstore: event id is required")
	}
	return triggerEventCacheKeyPrefix + "::" + url.PathEscape(id), nil
}

func (s *CachedEventStore) RecordEvent(ctx context.Context, event core.EventRecord) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached event store is not configured")
	}
	if err := s.base.RecordEvent(ctx, event); err != nil {
		return err
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil
	}
	cacheKey, err := TriggerEventCacheKey(event.ID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedEventStore) GetEvent(ctx context.Context, id string) (core.EventRecord, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.EventRecord{}, fmt.Errorf("sqlstore: cached event store is not configured")
	}
	cacheKey, err := TriggerEventCacheKey(id)
	if err != nil {
		return core.EventRecord{}, err
	}
	event, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.EventRecord, error) {
		return s.base.GetEvent(ctx, strings.TrimSpace(id))
	})
	if err != nil {
		return core.EventRecord{}, err
	}
	event.Payload = copyAnyMap(event.Payload)
	return event, nil
}

func (s *CachedEventStore) ListEvents(ctx context.Context, filter core.EventFilter) (core.EventPage, error) {
	if s == nil || s.base == nil {
		return core.EventPage{}, fmt.Errorf("sqlstore: cached event store is not configured")
	}
	return s.base.ListEvents(ctx, filter)
}

var _ EventLedger = (*CachedEventStore)(nil)
