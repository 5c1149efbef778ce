package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/store"
)

// Registry maps room ids to their exclusive relay instance, creating each on
// first use. It is the in-process realization of the naming/routing layer:
// at most one relay exists per room, and all event processing for a room is
// serialized through that instance. Relay code must not assume anything about
// the registry beyond this exclusivity; attachments live on the connections
// themselves so a rebuilt registry loses no session identity.
type Registry struct {
	names store.NameStore
	log   *zerolog.Logger

	mu     sync.Mutex
	relays map[string]*Relay
}

// NewRegistry constructs an empty registry backed by the given name store.
func NewRegistry(names store.NameStore, logger *zerolog.Logger) *Registry {
	return &Registry{
		names:  names,
		log:    logger,
		relays: make(map[string]*Relay),
	}
}

// Room returns the relay instance that exclusively owns the given room.
func (g *Registry) Room(room string) *Relay {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.relays[room]
	if !ok {
		r = newRelay(room, g.names, g.log)
		g.relays[room] = r
	}
	return r
}
