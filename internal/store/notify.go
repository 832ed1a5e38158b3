package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Change describes one row-level change on a named table. Subscribers use it
// purely as a refetch trigger: the record carries identity, never the diff.
type Change struct {
	ID    string `json:"id"`
	Table string `json:"table"`
	Op    string `json:"op"` // insert|update|delete
	RowID string `json:"rowId,omitempty"`

	// Optional column-equality hint matching subscription filters,
	// e.g. {"task_id": "task-x7k2p9qa"}.
	Filter map[string]string `json:"filter,omitempty"`
}

// Subscription is one registered interest in a table's changes. Delivery is
// best-effort: a subscriber that stops draining C misses changes rather than
// blocking publishers, which is fine because every change only means
// "refetch".
type Subscription struct {
	C chan Change

	id     int
	table  string
	filter map[string]string
}

// Broker fans table changes out to subscribers. One broker serves a process;
// the web server owns one and publishes after each successful save.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

func NewBroker() *Broker {
	return &Broker{subs: map[int]*Subscription{}}
}

// Subscribe registers interest in a table, optionally restricted to rows
// matching all given column equalities. An empty table matches every table.
func (b *Broker) Subscribe(table string, filter map[string]string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{
		C:      make(chan Change, 64),
		id:     b.nextID,
		table:  strings.TrimSpace(table),
		filter: filter,
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.C)
	}
}

// Publish delivers a change to every matching subscriber without blocking.
func (b *Broker) Publish(table, op, rowID string, filter map[string]string) {
	ch := Change{
		ID:     uuid.NewString(),
		Table:  strings.TrimSpace(table),
		Op:     strings.TrimSpace(op),
		RowID:  strings.TrimSpace(rowID),
		Filter: filter,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.table != "" && sub.table != ch.Table {
			continue
		}
		if !filterMatches(sub.filter, ch.Filter) {
			continue
		}
		select {
		case sub.C <- ch:
		default:
			// Slow subscriber: drop. The next matching change re-triggers the
			// same refetch.
		}
	}
}

func filterMatches(want, got map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}
