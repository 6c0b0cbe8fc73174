package extract

import (
	"context"
	"sync"
	"sync/atomic"
)

// Session tracks the single active image. Every extraction pass takes a ticket
// from Begin; Commit drops results whose ticket was superseded by a later Begin.
type Session struct {
	generation atomic.Uint64
	mu         sync.Mutex
	current    *Result
	ticket     uint64
}

// Begin invalidates all passes started before and returns the new pass' ticket.
func (s *Session) Begin() uint64 {
	return s.generation.Add(1)
}

// Commit stores res as the current result if ticket is still the latest one.
func (s *Session) Commit(ticket uint64, res *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.generation.Load() || ticket < s.ticket {
		return false
	}
	s.current, s.ticket = res, ticket
	return true
}

// Stale reports whether a later pass has begun after ticket.
func (s *Session) Stale(ticket uint64) bool {
	return ticket != s.generation.Load()
}

func (s *Session) Current() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Extract runs one pass. The returned bool is false if the result was stale and discarded.
func (s *Session) Extract(ctx context.Context, data []byte, opts Options) (*Result, bool) {
	ticket := s.Begin()
	res := Extract(ctx, data, opts)
	return res, s.Commit(ticket, res)
}
