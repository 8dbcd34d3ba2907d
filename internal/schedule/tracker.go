// Package schedule implements trailing debounce bookkeeping: a later
// schedule for the same key supersedes every earlier one.
package schedule

import (
	"sync"
	"time"
)

// Token identifies one scheduled run.
type Token struct {
	Key string
	seq uint64
	at  time.Time
}

// Scheduled returns when the token was issued.
func (t Token) Scheduled() time.Time {
	return t.at
}

type slot struct {
	seq     uint64
	pending bool
}

// Tracker remembers the latest token per key.
type Tracker struct {
	mu    sync.Mutex
	slots map[string]*slot
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{slots: make(map[string]*slot), now: time.Now}
}

func (t *Tracker) slot(key string) *slot {
	s, ok := t.slots[key]
	if !ok {
		s = &slot{}
		t.slots[key] = s
	}
	return s
}

// Schedule issues a new token for key, superseding earlier ones.
func (t *Tracker) Schedule(key string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(key)
	s.seq++
	s.pending = true
	return Token{Key: key, seq: s.seq, at: t.now()}
}

// Due reports whether tok is still the latest for its key. A token is due at
// most once.
func (t *Tracker) Due(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[tok.Key]
	if !ok || !s.pending || s.seq != tok.seq {
		return false
	}
	s.pending = false
	return true
}

// Pending reports whether key has a token that has not fired yet.
func (t *Tracker) Pending(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	return ok && s.pending
}

// Cancel invalidates every outstanding token for key.
func (t *Tracker) Cancel(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.slots[key]; ok {
		s.pending = false
	}
}
