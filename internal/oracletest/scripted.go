// Package oracletest provides a scripted oracle for tests.
package oracletest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
)

// Reply is one scripted oracle response.
type Reply struct {
	Text string
	Err  error
}

// Call records a prompt the oracle received.
type Call struct {
	Prompt string
	Format domain.ResponseFormat
}

// Scripted answers calls from a queue. Rules, when set, take precedence:
// the first rule whose key is contained in the prompt answers it.
// An exhausted queue answers with an error.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	rules   []rule
	calls   []Call
}

type rule struct {
	match string
	reply Reply
}

var _ ports.Oracle = (*Scripted)(nil)

// New returns an oracle answering with texts in order.
func New(texts ...string) *Scripted {
	s := &Scripted{}
	for _, t := range texts {
		s.replies = append(s.replies, Reply{Text: t})
	}
	return s
}

// Then queues an additional reply.
func (s *Scripted) Then(r Reply) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
	return s
}

// When answers every prompt containing match with reply.
func (s *Scripted) When(match string, reply Reply) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{match: match, reply: reply})
	return s
}

// Complete implements ports.Oracle.
func (s *Scripted) Complete(_ context.Context, prompt string, format domain.ResponseFormat) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Prompt: prompt, Format: format})

	for _, r := range s.rules {
		if strings.Contains(prompt, r.match) {
			return r.reply.Text, r.reply.Err
		}
	}

	if len(s.replies) == 0 {
		return "", fmt.Errorf("%w: script exhausted", ports.ErrOracleUnavailable)
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.Text, next.Err
}

// Calls returns a copy of every recorded call.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}
