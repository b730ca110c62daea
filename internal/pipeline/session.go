package pipeline

import (
	"context"
	"errors"
	"sync"

	"care-feedback-go/internal/types"
)

// ErrSuperseded is returned by Session.Run when a newer run started before
// this one finished. Its result is discarded.
var ErrSuperseded = errors.New("superseded by a newer query")

// Session serializes the feedback queries of one viewer: only the most
// recently started run may deliver a result.
type Session struct {
	p        *Pipeline
	mu       sync.Mutex
	gen      uint64
	inflight int
}

func NewSession(p *Pipeline) *Session {
	return &Session{p: p}
}

func (s *Session) Run(ctx context.Context, q types.FeedbackQuery) (*types.FeedbackReport, error) {
	s.mu.Lock()
	s.gen++
	s.inflight++
	gen := s.gen
	s.mu.Unlock()

	report, err := s.p.Feedback(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if gen != s.gen {
		s.p.log.WithField("floor", q.Floor).WithField("staff", q.Staff).Debug("discarding superseded feedback")
		return nil, ErrSuperseded
	}
	return report, err
}

func (s *Session) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight == 0
}

// Sessions hands out one Session per viewer id. Past the limit, idle
// sessions are evicted; a session with a run in flight is always kept so a
// newer run for the same id still supersedes it.
type Sessions struct {
	p     *Pipeline
	limit int

	mu sync.Mutex
	m  map[string]*Session
}

func NewSessions(p *Pipeline, limit int) *Sessions {
	return &Sessions{p: p, limit: limit, m: map[string]*Session{}}
}

func (s *Sessions) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.m[id]; ok {
		return sess
	}
	if len(s.m) >= s.limit {
		s.evictIdle()
	}
	sess := NewSession(s.p)
	s.m[id] = sess
	return sess
}

func (s *Sessions) evictIdle() {
	for id, sess := range s.m {
		if sess.idle() {
			delete(s.m, id)
		}
	}
}
