package scoreledger

import (
	"context"
	"sync"
)

type InMemAudit struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemAudit() *InMemAudit {
	return &InMemAudit{}
}

func (a *InMemAudit) Append(ctx context.Context, e Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *InMemAudit) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res := make([]Entry, 0)
	for _, e := range a.entries {
		if e.UserID == userID {
			res = append(res, e)
		}
	}
	return res, nil
}
