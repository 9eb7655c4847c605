// Package presence tracks which users currently have live connections.
//
// The registry is the shared mutable state between the session gateway and
// the relay engine: the gateway binds a session on connect and unbinds it on
// disconnect, the engine snapshots the live set when fanning out a message.
// Absence of an entry means the user is offline; that is a normal state, not
// an error.
package presence

import "sync"

// Session is a live, authenticated connection handle. The registry holds
// only a non-owning reference; the gateway owns the connection lifecycle.
//
// Push is non-blocking. It returns false when the event could not be queued
// (full send buffer, connection shutting down); callers treat that as a
// dropped push, recovered later through conversation retrieval.
type Session interface {
	ID() string
	UserID() int64
	Push(event string, payload any) bool
}

const shardCount = 32

type shard struct {
	mu    sync.RWMutex
	users map[int64]map[string]Session
}

// Registry maps user IDs to their live sessions. Sharded by user ID so that
// bind/unbind/snapshot for different users proceed in parallel; operations
// for the same user serialize on one bucket lock.
type Registry struct {
	shards [shardCount]*shard
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{users: make(map[int64]map[string]Session)}
	}
	return r
}

func (r *Registry) shardFor(userID int64) *shard {
	return r.shards[uint64(userID)%shardCount]
}

// Bind adds a session to the user's live set. Binding an already-bound
// session is a no-op.
func (r *Registry) Bind(userID int64, s Session) {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	set := sh.users[userID]
	if set == nil {
		set = make(map[string]Session)
		sh.users[userID] = set
	}
	set[s.ID()] = s
}

// Unbind removes a session from the user's live set and drops the entry when
// it becomes empty. Unbinding an unknown session is a no-op.
func (r *Registry) Unbind(userID int64, s Session) {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	set := sh.users[userID]
	if set == nil {
		return
	}
	delete(set, s.ID())
	if len(set) == 0 {
		delete(sh.users, userID)
	}
}

// Live returns a snapshot of the user's live sessions. The snapshot may be
// stale by the time it is used; pushes to a session that disconnected in the
// meantime are simply dropped.
func (r *Registry) Live(userID int64) []Session {
	sh := r.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	set := sh.users[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Session, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	return out
}

// ConnectionCount returns the total number of bound sessions.
func (r *Registry) ConnectionCount() int {
	n := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		for _, set := range sh.users {
			n += len(set)
		}
		sh.mu.RUnlock()
	}
	return n
}
