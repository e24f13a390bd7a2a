package activity

import (
	"sync"

	"github.com/cortexapp/cortex-bridge/internal/bounded"
	"github.com/cortexapp/cortex-bridge/internal/model"
)

// Log is the append-only activity history, trimmed to a fixed capacity.
type Log struct {
	mu     sync.Mutex // serialises id allocation with the append
	nextID int64
	store  *bounded.Store[model.ActivityRecord]
}

// NewLog returns an empty log retaining at most capacity records.
func NewLog(capacity int) *Log {
	return &Log{nextID: 1, store: bounded.New[model.ActivityRecord](capacity)}
}

// Log appends a record and returns its id. Storage order matches id order.
func (l *Log) Log(in model.NewActivityRecord) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.store.Push(model.ActivityRecord{
		ID:         id,
		Timestamp:  in.Timestamp,
		Activity:   in.Activity,
		Productive: in.Productive,
		App:        in.App,
		BundleID:   in.BundleID,
		Domain:     in.Domain,
	})
	return id
}

// Recent returns the newest min(limit, Len()) records in chronological order.
func (l *Log) Recent(limit int64) []model.ActivityRecord {
	if limit <= 0 {
		return []model.ActivityRecord{}
	}
	n := l.store.Cap()
	if limit < int64(n) {
		n = int(limit)
	}
	return l.store.Tail(n)
}

// InRange returns records with start <= Timestamp <= end, in storage order.
func (l *Log) InRange(start, end float64) []model.ActivityRecord {
	if start > end {
		return []model.ActivityRecord{}
	}
	return l.store.Filter(func(r model.ActivityRecord) bool {
		return r.Timestamp >= start && r.Timestamp <= end
	})
}

// Len returns the number of retained records.
func (l *Log) Len() int { return l.store.Len() }

// Cap returns the retention bound.
func (l *Log) Cap() int { return l.store.Cap() }
