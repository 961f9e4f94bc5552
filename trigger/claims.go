package trigger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-fusionauth/core"
)

type dedupeState uint8

const (
	stateInFlight dedupeState = iota
	stateDone
	stateFailed
)

// dedupeSlot tracks one FusionAuth event id. until is the lease end for
// in-flight and done slots and the earliest retry for failed ones.
type dedupeSlot struct {
	state dedupeState
	owner string
	lease time.Duration
	until time.Time
}

func (s dedupeSlot) blocks(now time.Time) bool {
	return now.Before(s.until)
}

// MemoryClaimStore dedupes deliveries within a single process. A completed
// event id stays blocked for its lease; a failed one may be claimed again.
type MemoryClaimStore struct {
	mu     sync.Mutex
	slots  map[string]*dedupeSlot
	owners map[string]string
	Now    func() time.Time
}

func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{
		slots:  map[string]*dedupeSlot{},
		owners: map[string]string{},
	}
}

func (s *MemoryClaimStore) Claim(_ context.Context, key string, lease time.Duration) (string, bool, error) {
	if s == nil {
		return "", false, triggerInternal("trigger: claim store is nil", nil)
	}
	if key = strings.TrimSpace(key); key == "" {
		return "", false, triggerBadInput("trigger: dedupe key is required", nil)
	}
	if lease <= 0 {
		lease = core.DefaultDedupeTTL
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)

	slot, ok := s.slots[key]
	if ok && slot.blocks(now) {
		return "", false, nil
	}
	if !ok {
		slot = &dedupeSlot{}
		s.slots[key] = slot
	} else {
		delete(s.owners, slot.owner)
	}
	slot.state = stateInFlight
	slot.owner = core.GenerateUUID()
	slot.lease = lease
	slot.until = now.Add(lease)
	s.owners[slot.owner] = key
	return slot.owner, true, nil
}

// Complete keeps the key blocked for another lease from now.
func (s *MemoryClaimStore) Complete(_ context.Context, claimID string) error {
	return s.settle(claimID, func(slot *dedupeSlot, now time.Time) {
		slot.state = stateDone
		slot.until = now.Add(slot.lease)
	})
}

// Fail releases the key from retryAt on, or immediately when retryAt is zero.
func (s *MemoryClaimStore) Fail(_ context.Context, claimID string, _ error, retryAt time.Time) error {
	return s.settle(claimID, func(slot *dedupeSlot, now time.Time) {
		if retryAt.IsZero() {
			retryAt = now
		}
		slot.state = stateFailed
		slot.until = retryAt.UTC()
	})
}

// Len returns the number of tracked keys.
func (s *MemoryClaimStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// settle applies fn to the slot owned by claimID. Stale or unknown claim ids
// are ignored.
func (s *MemoryClaimStore) settle(claimID string, fn func(*dedupeSlot, time.Time)) error {
	if s == nil {
		return triggerInternal("trigger: claim store is nil", nil)
	}
	if claimID = strings.TrimSpace(claimID); claimID == "" {
		return triggerBadInput("trigger: claim id is required", nil)
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.owners[claimID]
	if !ok {
		return nil
	}
	delete(s.owners, claimID)
	if slot := s.slots[key]; slot != nil && slot.owner == claimID && slot.state == stateInFlight {
		fn(slot, now)
	}
	return nil
}

// sweep drops completed keys whose lease ran out.
func (s *MemoryClaimStore) sweep(now time.Time) {
	for key, slot := range s.slots {
		if slot.state == stateDone && !slot.blocks(now) {
			delete(s.slots, key)
		}
	}
}

func (s *MemoryClaimStore) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

var _ core.ClaimStore = (*MemoryClaimStore)(nil)
