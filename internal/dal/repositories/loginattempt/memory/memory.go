// Package memory keeps failed login attempts per client address in process
// memory. Records are lost on restart.
package memory

import (
	"sync"
	"time"
)

// Record is the failure history of one client address.
type Record struct {
	Count       int
	LockedUntil time.Time
}

// LoginAttemptRepository is safe for concurrent use. Every method is a single
// atomic read-modify-write on one key.
type LoginAttemptRepository struct {
	mu      sync.Mutex
	records map[string]*Record
	now     func() time.Time
}

func NewLoginAttemptRepository(now func() time.Time) *LoginAttemptRepository {
	if now == nil {
		now = time.Now
	}

	return &LoginAttemptRepository{
		records: make(map[string]*Record),
		now:     now,
	}
}

// LockedFor returns how long key stays locked. A lock that has run out is
// cleared together with its failure count.
func (r *LoginAttemptRepository) LockedFor(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	if !ok || rec.LockedUntil.IsZero() {
		return 0
	}

	remaining := rec.LockedUntil.Sub(r.now())
	if remaining <= 0 {
		delete(r.records, key)

		return 0
	}

	return remaining
}

// RegisterFailure counts a failed attempt and locks key for lockout once
// maxAttempts failures have been seen. It returns the updated record.
func (r *LoginAttemptRepository) RegisterFailure(key string, maxAttempts int, lockout time.Duration) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	rec, ok := r.records[key]
	if !ok {
		rec = &Record{}
		r.records[key] = rec
	}
	if !rec.LockedUntil.IsZero() && !now.Before(rec.LockedUntil) {
		*rec = Record{}
	}

	rec.Count++
	if rec.Count >= maxAttempts && rec.LockedUntil.IsZero() {
		rec.LockedUntil = now.Add(lockout)
	}

	return *rec
}

// Reset forgets key.
func (r *LoginAttemptRepository) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, key)
}

// Get returns the record of key, if any.
func (r *LoginAttemptRepository) Get(key string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	if !ok {
		return Record{}, false
	}

	return *rec, true
}
