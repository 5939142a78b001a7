package offline

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultClientLimit bounds how many clients are remembered at once.
const DefaultClientLimit = 1024

type clientEntry struct {
	version string
	seen    uint64
}

// Clients tracks the pages the worker may control. A client is uncontrolled
// until Claim runs with a cache version. Only ids a client has sent back are
// recorded, and past the limit the least recently seen client is forgotten.
type Clients struct {
	mu         sync.Mutex
	limit      int
	tick       uint64
	controlled map[uuid.UUID]*clientEntry
}

func NewClients() *Clients {
	return NewClientsLimit(DefaultClientLimit)
}

// NewClientsLimit returns a registry that remembers at most limit clients.
func NewClientsLimit(limit int) *Clients {
	if limit <= 0 {
		limit = DefaultClientLimit
	}
	return &Clients{limit: limit, controlled: make(map[uuid.UUID]*clientEntry)}
}

// Mint returns a fresh id for a client that has none. It is not recorded
// until the client presents it to Register.
func (c *Clients) Mint() uuid.UUID {
	return uuid.New()
}

// Register records the client identified by raw and reports whether raw was
// a valid id. Invalid ids are ignored.
func (c *Clients) Register(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	if e, ok := c.controlled[id]; ok {
		e.seen = c.tick
		return id, true
	}
	if len(c.controlled) >= c.limit {
		c.evictLocked()
	}
	c.controlled[id] = &clientEntry{seen: c.tick}
	return id, true
}

func (c *Clients) evictLocked() {
	var oldest uuid.UUID
	var oldestSeen uint64
	first := true
	for id, e := range c.controlled {
		if first || e.seen < oldestSeen {
			oldest, oldestSeen, first = id, e.seen, false
		}
	}
	delete(c.controlled, oldest)
}

// Controller returns the cache version controlling id, or "".
func (c *Clients) Controller(id uuid.UUID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.controlled[id]; ok {
		return e.version
	}
	return ""
}

// Claim puts every registered client under version and returns how many
// changed hands.
func (c *Clients) Claim(version string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.controlled {
		if e.version != version {
			e.version = version
			n++
		}
	}
	return n
}

func (c *Clients) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.controlled)
}
