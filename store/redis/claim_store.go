package redisstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	stateProcessing = "processing"
	stateComplete   = "complete"
)

// completeScript promotes a processing claim to complete and restarts its
// TTL, provided the key still belongs to the claim.
var completeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// releaseScript deletes the key only while the claim still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ClaimStore dedupes trigger deliveries across instances with SET NX.
// A failed claim deletes its key so the next redelivery is accepted.
type ClaimStore struct {
	rdb    redis.UniversalClient
	prefix string
}

type Option func(*ClaimStore)

func WithPrefix(prefix string) Option {
	return func(s *ClaimStore) {
		if trimmed := strings.Trim(strings.TrimSpace(prefix), ":"); trimmed != "" {
			s.prefix = trimmed
		}
	}
}

func NewClaimStore(rdb redis.UniversalClient, opts ...Option) (*ClaimStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redisstore: redis client is required")
	}
	s := &ClaimStore{rdb: rdb, prefix: "fusionauth:claims"}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// NewClient builds a client for addr and pings it.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, core.NewBadInputError("redisstore: redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, redisError(err, "redisstore: ping failed")
	}
	return rdb, nil
}

func (s *ClaimStore) Claim(ctx context.Context, key string, lease time.Duration) (string, bool, error) {
	if s == nil || s.rdb == nil {
		return "", false, fmt.Errorf("redisstore: claim store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, core.NewBadInputError("redisstore: dedupe key is required")
	}
	if lease <= 0 {
		lease = core.DefaultDedupeTTL
	}
	claimID := uuid.NewString()
	accepted, err := s.rdb.SetNX(ctx, s.dedupeKey(key), stateValue(stateProcessing, claimID), lease).Result()
	if err != nil {
		return "", false, redisError(err, "redisstore: claim failed")
	}
	if !accepted {
		return "", false, nil
	}
	index := strconv.FormatInt(lease.Milliseconds(), 10) + "|" + key
	if err := s.rdb.Set(ctx, s.claimKey(claimID), index, lease).Err(); err != nil {
		_ = s.rdb.Del(ctx, s.dedupeKey(key)).Err()
		return "", false, redisError(err, "redisstore: index claim failed")
	}
	return claimID, true, nil
}

func (s *ClaimStore) Complete(ctx context.Context, claimID string) error {
	key, lease, found, err := s.lookup(ctx, claimID)
	if err != nil || !found {
		return err
	}
	if err := completeScript.Run(ctx, s.rdb,
		[]string{s.dedupeKey(key)},
		stateValue(stateProcessing, claimID),
		stateValue(stateComplete, claimID),
		lease.Milliseconds(),
	).Err(); err != nil {
		return redisError(err, "redisstore: complete claim failed")
	}
	return s.forget(ctx, claimID)
}

func (s *ClaimStore) Fail(ctx context.Context, claimID string, _ error, _ time.Time) error {
	key, _, found, err := s.lookup(ctx, claimID)
	if err != nil || !found {
		return err
	}
	if err := releaseScript.Run(ctx, s.rdb,
		[]string{s.dedupeKey(key)},
		stateValue(stateProcessing, claimID),
	).Err(); err != nil {
		return redisError(err, "redisstore: release claim failed")
	}
	return s.forget(ctx, claimID)
}

func (s *ClaimStore) lookup(ctx context.Context, claimID string) (string, time.Duration, bool, error) {
	if s == nil || s.rdb == nil {
		return "", 0, false, fmt.Errorf("redisstore: claim store is not configured")
	}
	claimID = strings.TrimSpace(claimID)
	if claimID == "" {
		return "", 0, false, core.NewBadInputError("redisstore: claim id is required")
	}
	raw, err := s.rdb.Get(ctx, s.claimKey(claimID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, redisError(err, "redisstore: load claim failed")
	}
	leaseRaw, key, ok := strings.Cut(raw, "|")
	if !ok {
		return "", 0, false, nil
	}
	ms, err := strconv.ParseInt(leaseRaw, 10, 64)
	if err != nil || ms <= 0 {
		ms = core.DefaultDedupeTTL.Milliseconds()
	}
	return key, time.Duration(ms) * time.Millisecond, true, nil
}

func (s *ClaimStore) forget(ctx context.Context, claimID string) error {
	if err := s.rdb.Del(ctx, s.claimKey(claimID)).Err(); err != nil {
		return redisError(err, "redisstore: forget claim failed")
	}
	return nil
}

func (s *ClaimStore) dedupeKey(key string) string {
	return s.prefix + ":key:" + key
}

func (s *ClaimStore) claimKey(claimID string) string {
	return s.prefix + ":claim:" + claimID
}

func stateValue(state, claimID string) string {
	return state + ":" + claimID
}

func redisError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithTextCode(core.ErrorExternalFailure).
		WithCode(http.StatusBadGateway)
}

var _ core.ClaimStore = (*ClaimStore)(nil)
