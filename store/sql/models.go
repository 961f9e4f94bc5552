package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type triggerEventRecord struct {
	bun.BaseModel `bun:"table:fusionauth_trigger_events,alias:fte"`

	ID         string         `bun:"id,pk"`
	EventID    string         `bun:"event_id,notnull"`
	EventType  string         `bun:"event_type,notnull"`
	TenantID   string         `bun:"tenant_id,notnull"`
	Status     string         `bun:"status,notnull"`
	StatusCode int            `bun:"status_code,notnull"`
	Payload    map[string]any `bun:"payload,type:jsonb,notnull"`
	Error      string         `bun:"error,notnull"`
	ReceivedAt time.Time      `bun:"received_at,nullzero,notnull,default:current_timestamp"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type triggerClaimRecord struct {
	bun.BaseModel `bun:"table:fusionauth_trigger_claims,alias:ftc"`

	ID             string     `bun:"id,pk"`
	DedupeKey      string     `bun:"dedupe_key,notnull"`
	ClaimID        string     `bun:"claim_id,notnull"`
	Status         string     `bun:"status,notnull"`
	Attempts       int        `bun:"attempts,notnull"`
	LeaseSeconds   int64      `bun:"lease_seconds,notnull"`
	LeaseExpiresAt *time.Time `bun:"lease_expires_at,nullzero"`
	RetryAt        *time.Time `bun:"retry_at,nullzero"`
	LastError      string     `bun:"last_error,notnull"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
