package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-fusionauth/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	claimStatusProcessing = "processing"
	claimStatusRetryReady = "retry_ready"
	claimStatusComplete   = "complete"
)

// ClaimStore shares trigger dedupe state across processes through the
// fusionauth_trigger_claims table. Each reclaim swaps claim_id under a
// compare so two workers never both accept the same key.
type ClaimStore struct {
	db   *bun.DB
	repo repository.Repository[*triggerClaimRecord]
	Now  func() time.Time
}

func NewClaimStore(db *bun.DB) (*ClaimStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*triggerClaimRecord](db, triggerClaimHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid trigger claim repository wiring: %w", err)
		}
	}
	return &ClaimStore{
		db:   db,
		repo: repo,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *ClaimStore) Claim(ctx context.Context, key string, lease time.Duration) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("sqlstore: claim store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, core.NewBadInputError("sqlstore: dedupe key is required")
	}
	if lease <= 0 {
		lease = core.DefaultDedupeTTL
	}
	now := s.now()
	expiresAt := now.Add(lease)
	claimID := uuid.NewString()

	record := &triggerClaimRecord{
		ID:             uuid.NewString(),
		DedupeKey:      key,
		ClaimID:        claimID,
		Status:         claimStatusProcessing,
		Attempts:       1,
		LeaseSeconds:   int64(lease / time.Second),
		LeaseExpiresAt: &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err == nil {
		return claimID, true, nil
	} else if !isUniqueViolation(err) {
		return "", false, err
	}

	accepted := false
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := triggerClaimRecord{}
		if err := tx.NewSelect().
			Model(&existing).
			Where("?TableAlias.dedupe_key = ?", key).
			Limit(1).
			Scan(ctx); err != nil {
			return err
		}
		if !reclaimable(existing, now) {
			return nil
		}
		result, err := tx.NewUpdate().
			Model((*triggerClaimRecord)(nil)).
			Set("claim_id = ?", claimID).
			Set("status = ?", claimStatusProcessing).
			Set("attempts = ?", existing.Attempts+1).
			Set("lease_seconds = ?", int64(lease/time.Second)).
			Set("lease_expires_at = ?", expiresAt).
			Set("retry_at = NULL").
			Set("updated_at = ?", now).
			Where("dedupe_key = ?", key).
			Where("claim_id = ?", existing.ClaimID).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		accepted = rows == 1
		return nil
	})
	if err != nil {
		return "", false, err
	}
	if !accepted {
		return "", false, nil
	}
	return claimID, true, nil
}

func (s *ClaimStore) Complete(ctx context.Context, claimID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: claim store is not configured")
	}
	claimID = strings.TrimSpace(claimID)
	if claimID == "" {
		return core.NewBadInputError("sqlstore: claim id is required")
	}
	existing, found, err := s.findByClaimID(ctx, claimID)
	if err != nil || !found {
		return err
	}
	if existing.Status != claimStatusProcessing {
		return nil
	}
	lease := time.Duration(existing.LeaseSeconds) * time.Second
	if lease <= 0 {
		lease = core.DefaultDedupeTTL
	}
	now := s.now()
	_, err = s.db.NewUpdate().
		Model((*triggerClaimRecord)(nil)).
		Set("status = ?", claimStatusComplete).
		Set("lease_expires_at = ?", now.Add(lease)).
		Set("retry_at = NULL").
		Set("updated_at = ?", now).
		Where("claim_id = ?", claimID).
		Where("status = ?", claimStatusProcessing).
		Exec(ctx)
	return err
}

func (s *ClaimStore) Fail(ctx context.Context, claimID string, cause error, retryAt time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: claim store is not configured")
	}
	claimID = strings.TrimSpace(claimID)
	if claimID == "" {
		return core.NewBadInputError("sqlstore: claim id is required")
	}
	now := s.now()
	if retryAt.IsZero() {
		retryAt = now
	}
	lastError := ""
	if cause != nil {
		lastError = core.ErrorMessage(cause)
	}
	_, err := s.db.NewUpdate().
		Model((*triggerClaimRecord)(nil)).
		Set("status = ?", claimStatusRetryReady).
		Set("retry_at = ?", retryAt.UTC()).
		Set("lease_expires_at = NULL").
		Set("last_error = ?", lastError).
		Set("updated_at = ?", now).
		Where("claim_id = ?", claimID).
		Where("status = ?", claimStatusProcessing).
		Exec(ctx)
	return err
}

// Purge deletes completed claims whose dedupe window has passed.
func (s *ClaimStore) Purge(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: claim store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*triggerClaimRecord)(nil)).
		Where("status = ?", claimStatusComplete).
		Where("lease_expires_at < ?", s.now()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *ClaimStore) findByClaimID(ctx context.Context, claimID string) (triggerClaimRecord, bool, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("claim_id", "=", claimID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return triggerClaimRecord{}, false, err
	}
	if len(records) == 0 || records[0] == nil {
		return triggerClaimRecord{}, false, nil
	}
	return *records[0], true, nil
}

func (s *ClaimStore) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func reclaimable(record triggerClaimRecord, now time.Time) bool {
	switch record.Status {
	case claimStatusComplete, claimStatusProcessing:
		return record.LeaseExpiresAt == nil || !now.Before(*record.LeaseExpiresAt)
	case claimStatusRetryReady:
		return record.RetryAt == nil || !now.Before(*record.RetryAt)
	default:
		return true
	}
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
