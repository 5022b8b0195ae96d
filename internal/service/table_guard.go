package service

import (
	"errors"
	"sync"
)

var ErrOperationInFlight ServiceError = errors.New("another operation is in flight for this table")

// tableGuard 同一張桌子同時只允許一個變更請求在途
// 不同桌子之間互不影響
type tableGuard struct {
	mu   sync.Mutex
	busy map[int]bool
}

func newTableGuard() *tableGuard {
	return &tableGuard{busy: make(map[int]bool)}
}

func (g *tableGuard) acquire(tableID int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[tableID] {
		return false
	}
	g.busy[tableID] = true
	return true
}

func (g *tableGuard) release(tableID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, tableID)
}
