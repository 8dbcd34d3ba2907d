package resolve

import (
	"context"
	"sync"

	"iconpng/internal/model"
)

// Ticket identifies one resolution request. It goes stale as soon as the
// session's reference changes again.
type Ticket struct {
	gen uint64
	ref model.Reference
}

// Ref returns the reference the ticket was issued for.
func (t Ticket) Ref() model.Reference {
	return t.ref
}

// Result is the outcome of Session.Resolve.
type Result struct {
	Ticket    Ticket
	Handle    *Handle
	Err       error
	Committed bool
}

// Session owns the (packagePath, symbolName, handle) triple shown by a
// surface. Only the most recently requested resolution may commit.
type Session struct {
	reg *Registry

	mu     sync.Mutex
	gen    uint64
	ref    model.Reference
	handle *Handle
	err    error

	// OnCommit, when set, is called after a result has been committed.
	OnCommit func(Result)
}

// NewSession returns an empty session resolving through reg.
func NewSession(reg *Registry) *Session {
	return &Session{reg: reg}
}

// Update records ref as current, clears the handle and returns the ticket
// the matching Resolve call must present.
func (s *Session) Update(ref model.Reference) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.ref = ref
	s.handle = nil
	s.err = nil
	return Ticket{gen: s.gen, ref: ref}
}

// Resolve looks up the ticket's reference. The lookup runs without the lock;
// its result is committed only if no Update happened in the meantime.
func (s *Session) Resolve(ctx context.Context, t Ticket) Result {
	var (
		h   *Handle
		err error
	)
	if t.ref.Complete() {
		h, err = s.reg.Lookup(ctx, t.ref)
	}
	res := Result{Ticket: t, Handle: h, Err: err}

	s.mu.Lock()
	if t.gen == s.gen {
		s.handle = h
		s.err = err
		res.Committed = true
	}
	s.mu.Unlock()

	if res.Committed && s.OnCommit != nil {
		s.OnCommit(res)
	}
	return res
}

// Current reports whether t is still the latest ticket.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.gen == s.gen
}

// Handle returns the committed handle, nil while a lookup is pending or
// after a failure.
func (s *Session) Handle() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Ref returns the current reference.
func (s *Session) Ref() model.Reference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref
}

// Err returns the error of the last committed lookup.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
