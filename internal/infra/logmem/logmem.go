// Package logmem keeps a bounded in-memory ring of audit events. It is an
// operator aid, not a durable or distributed log.
package logmem

import (
	"context"
	"sync"

	"recall/internal/domain"
)

type Log struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	max    int
}

func New(max int) *Log {
	if max <= 0 {
		max = 1000
	}
	return &Log{max: max}
}

func (l *Log) Append(_ context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	if len(l.events) > l.max {
		l.events = l.events[len(l.events)-l.max:]
	}
	return event, nil
}

// Recent returns up to n events, newest first.
func (l *Log) Recent(_ context.Context, n int) ([]domain.AuditEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}
	out := make([]domain.AuditEvent, 0, n)
	for i := len(l.events) - 1; i >= len(l.events)-n; i-- {
		out = append(out, l.events[i])
	}
	return out, nil
}
