package domain

import (
	"context"

	"github.com/felixgeelhaar/chamai/pkg/domain/checklist"
)

// KeyValueStorage is the durable storage behind the response store.
// Get returns ErrNotFound when the key has never been written or was removed.
type KeyValueStorage interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	Remove(key string) error
}

// DefinitionSource loads the checklist definition. It is called once per session.
type DefinitionSource interface {
	LoadDefinition(ctx context.Context) (*checklist.Definition, error)
	// Location describes where the definition comes from, for messages.
	Location() string
}

// AuditLog persists the session history in append order.
type AuditLog interface {
	// Append assigns ID, Timestamp, PrevHash and Hash when unset and stores the event.
	Append(event *Event) error
	LoadAll() ([]*Event, error)
}
