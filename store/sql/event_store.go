package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultEventPageSize = 25

// TriggerEventStore is the delivery ledger behind the webhook trigger.
type TriggerEventStore struct {
	repo repository.Repository[*triggerEventRecord]
}

func NewTriggerEventStore(db *bun.DB) (*TriggerEventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*triggerEventRecord](db, triggerEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid trigger event repository wiring: %w", err)
		}
	}
	return &TriggerEventStore{repo: repo}, nil
}

func (s *TriggerEventStore) RecordEvent(ctx context.Context, event core.EventRecord) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: trigger event store is not configured")
	}
	status := strings.TrimSpace(string(event.Status))
	if status == "" {
		return fmt.Errorf("sqlstore: event status is required")
	}
	id := strings.TrimSpace(event.ID)
	if id == "" {
		id = uuid.NewString()
	}
	receivedAt := event.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	record := &triggerEventRecord{
		ID:         id,
		EventID:    strings.TrimSpace(event.EventID),
		EventType:  strings.TrimSpace(event.EventType),
		TenantID:   strings.TrimSpace(event.TenantID),
		Status:     status,
		StatusCode: event.StatusCode,
		Payload:    RedactPayload(event.Payload),
		Error:      strings.TrimSpace(event.Error),
		ReceivedAt: receivedAt.UTC(),
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *TriggerEventStore) GetEvent(ctx context.Context, id string) (core.EventRecord, error) {
	if s == nil || s.repo == nil {
		return core.EventRecord{}, fmt.Errorf("sqlstore: trigger event store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.EventRecord{}, core.NewBadInputError("sqlstore: event id is required")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return core.EventRecord{}, core.NewError(
				fmt.Sprintf("sqlstore: trigger event %q not found", id),
				goerrors.CategoryNotFound,
				core.ErrorNotFound,
			)
		}
		return core.EventRecord{}, err
	}
	return triggerEventToDomain(record), nil
}

func (s *TriggerEventStore) ListEvents(ctx context.Context, filter core.EventFilter) (core.EventPage, error) {
	if s == nil || s.repo == nil {
		return core.EventPage{}, fmt.Errorf("sqlstore: trigger event store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventPageSize
	}
	offset := max(filter.Offset, 0)

	selectors := []repository.SelectCriteria{
		repository.OrderBy("received_at DESC"),
		repository.OrderBy("id DESC"),
		repository.SelectPaginate(limit, offset),
	}
	if eventType := strings.TrimSpace(filter.EventType); eventType != "" {
		selectors = append(selectors, repository.SelectBy("event_type", "=", eventType))
	}
	if tenantID := strings.TrimSpace(filter.TenantID); tenantID != "" {
		selectors = append(selectors, repository.SelectBy("tenant_id", "=", tenantID))
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if filter.Since != nil {
		selectors = append(selectors, repository.SelectByTimetz("received_at", ">=", filter.Since.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.EventPage{}, err
	}
	items := make([]core.EventRecord, 0, len(records))
	for _, record := range records {
		items = append(items, triggerEventToDomain(record))
	}
	return core.EventPage{Items: items, Total: total}, nil
}

func triggerEventToDomain(record *triggerEventRecord) core.EventRecord {
	if record == nil {
		return core.EventRecord{}
	}
	return core.EventRecord{
		ID:         record.ID,
		EventID:    record.EventID,
		EventType:  record.EventType,
		TenantID:   record.TenantID,
		Status:     core.EventStatus(record.Status),
		StatusCode: record.StatusCode,
		Payload:    copyAnyMap(record.Payload),
		Error:      record.Error,
		ReceivedAt: record.ReceivedAt.UTC(),
	}
}

func copyAnyMap(source map[string]any) map[string]any {
	if len(source) == 0 {
		return nil
	}
	out := make(map[string]any, len(source))
	for key, value := range source {
		out[key] = value
	}
	return out
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
