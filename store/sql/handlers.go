package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func triggerEventHandlers() repository.ModelHandlers[*triggerEventRecord] {
	return repository.ModelHandlers[*triggerEventRecord]{
		NewRecord: func() *triggerEventRecord {
			return &triggerEventRecord{}
		},
		GetID: func(record *triggerEventRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *triggerEventRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *triggerEventRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func triggerClaimHandlers() repository.ModelHandlers[*triggerClaimRecord] {
	return repository.ModelHandlers[*triggerClaimRecord]{
		NewRecord: func() *triggerClaimRecord {
			return &triggerClaimRecord{}
		},
		GetID: func(record *triggerClaimRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *triggerClaimRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "dedupe_key"
		},
		GetIdentifierValue: func(record *triggerClaimRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.DedupeKey)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
