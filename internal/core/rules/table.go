package rules

import (
	"sort"
	"sync"
	"time"

	"github.com/cortexapp/cortex-bridge/internal/model"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Table is the in-memory rule table. A single RWMutex guards the map and the id counter.
type Table struct {
	mu     sync.RWMutex
	rules  map[int64]model.Rule
	nextID int64
	now    Clock
}

// NewTable returns an empty table whose first rule gets id 1.
func NewTable(now Clock) *Table {
	if now == nil {
		now = time.Now
	}
	return &Table{rules: make(map[int64]model.Rule), nextID: 1, now: now}
}

// Create stores an active rule under the next id and returns a copy of it.
// Ids are never reused, even after Delete.
func (t *Table) Create(in model.NewRule) model.Rule {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := model.Rule{
		ID:              t.nextID,
		Name:            in.Name,
		NaturalLanguage: in.NaturalLanguage,
		RuleJSON:        in.RuleJSON,
		IsActive:        true,
		CreatedAt:       t.now().UnixMilli(),
	}
	t.nextID++
	t.rules[r.ID] = r
	return r
}

// Get returns a copy of the rule with the given id.
func (t *Table) Get(id int64) (model.Rule, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rules[id]
	if !ok {
		return model.Rule{}, model.RuleNotFound(id)
	}
	return r, nil
}

// ListAll returns every rule, newest first. Rules created in the same millisecond keep creation order.
func (t *Table) ListAll() []model.Rule {
	return t.list(func(model.Rule) bool { return true })
}

// ListActive is ListAll restricted to active rules.
func (t *Table) ListActive() []model.Rule {
	return t.list(func(r model.Rule) bool { return r.IsActive })
}

// Toggle flips IsActive on the rule with the given id.
func (t *Table) Toggle(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rules[id]
	if !ok {
		return model.RuleNotFound(id)
	}
	r.IsActive = !r.IsActive
	t.rules[id] = r
	return nil
}

// Delete removes the rule with the given id.
func (t *Table) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rules[id]; !ok {
		return model.RuleNotFound(id)
	}
	delete(t.rules, id)
	return nil
}

// Len returns the number of stored rules.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}

func (t *Table) list(keep func(model.Rule) bool) []model.Rule {
	t.mu.RLock()
	out := make([]model.Rule, 0, len(t.rules))
	for _, r := range t.rules {
		if keep(r) {
			out = append(out, r)
		}
	}
	t.mu.RUnlock()

	// Map iteration order is random, so the tie-break is explicit: ids follow insertion order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
