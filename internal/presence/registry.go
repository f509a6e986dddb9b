package presence

import (
	"context"
	"sync"

	"messenger-service/internal/repositories"
)

// Registry tracks which identities are online. The durable flag lives in the
// account store; the registry's job is to serialize updates for the same
// identity so a disconnect can never race ahead of the connect it follows.
type Registry struct {
	accounts repositories.AccountRepository

	mu    sync.Mutex
	locks map[int64]*idLock
}

// idLock is refcounted so the lock map stays bounded by the number of
// identities with an update in flight, not by every identity ever seen.
type idLock struct {
	mu   sync.Mutex
	refs int
}

// NewRegistry constructs a Registry over the account store.
func NewRegistry(accounts repositories.AccountRepository) *Registry {
	return &Registry{
		accounts: accounts,
		locks:    make(map[int64]*idLock),
	}
}

// SetOnline updates the presence flag for one identity. Transitions to
// offline stamp last_seen. Idempotent: repeating the same value is a no-op
// beyond refreshing last_seen on offline. Returns
// repositories.ErrAccountNotFound for unknown identities; callers log and
// carry on, a presence failure must never take down a connection.
func (r *Registry) SetOnline(ctx context.Context, platformID int64, online bool) error {
	lock := r.acquire(platformID)
	defer r.release(platformID, lock)

	lock.mu.Lock()
	defer lock.mu.Unlock()
	return r.accounts.SetOnline(ctx, platformID, online)
}

// IsOnline reports whether the identity currently has the online flag set.
func (r *Registry) IsOnline(ctx context.Context, platformID int64) (bool, error) {
	return r.accounts.IsOnline(ctx, platformID)
}

func (r *Registry) acquire(platformID int64) *idLock {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[platformID]
	if !ok {
		lock = &idLock{}
		r.locks[platformID] = lock
	}
	lock.refs++
	return lock
}

func (r *Registry) release(platformID int64, lock *idLock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(r.locks, platformID)
	}
}

func (r *Registry) lockCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
