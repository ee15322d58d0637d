package memory

import (
	"context"
	"sync"
)

// PointsLedger accumulates point deltas in memory.
type PointsLedger struct {
	mu     sync.Mutex
	totals map[string]int
}

func NewPointsLedger() *PointsLedger {
	return &PointsLedger{totals: make(map[string]int)}
}

func (l *PointsLedger) ApplyPointsDelta(_ context.Context, userID string, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totals[userID] += delta
	return nil
}

// Total returns the accumulated balance for a user.
func (l *PointsLedger) Total(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[userID]
}
