package store

import (
	"context"
	"errors"
)

// ErrNotFound reports an absent display-name record.
var ErrNotFound = errors.New("name not found")

// NameStore is the durable userId -> displayName surface owned by a room
// relay. Writes must be synchronous: a name update is only broadcast after it
// has been persisted, so a relay restart can never lose an acknowledged name.
type NameStore interface {
	// GetName returns the stored display name, or ErrNotFound if the user
	// never set one for this room.
	GetName(ctx context.Context, room, userID string) (string, error)

	// PutName creates or overwrites the display name for a user in a room.
	PutName(ctx context.Context, room, userID, name string) error

	// DeleteName removes the record; deleting an absent record is not an error.
	DeleteName(ctx context.Context, room, userID string) error

	// Close releases the underlying storage.
	Close() error
}
