// Package memory is an in-process implementation of the drive repositories.
// It backs service tests and STORAGE_BACKEND=memory dev runs.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	models "clouddrive/internal/domain/models/drive"
	"clouddrive/internal/domain/repositories"
)

// Store holds every table. Repositories built from the same Store share state.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	items    map[string]models.Item
	versions map[string]models.FileVersion
	links    map[string]models.PublicLink // by item id
	plans    map[string]models.Plan
	rules    map[string]models.FolderRule // by folder id

	// seq orders rows that share a timestamp
	seq     int64
	itemSeq map[string]int64
	verSeq  map[string]int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		items:    map[string]models.Item{},
		versions: map[string]models.FileVersion{},
		links:    map[string]models.PublicLink{},
		plans:    map[string]models.Plan{},
		rules:    map[string]models.FolderRule{},
		itemSeq:  map[string]int64{},
		verSeq:   map[string]int64{},
	}
}

type snapshot struct {
	items    map[string]models.Item
	versions map[string]models.FileVersion
	links    map[string]models.PublicLink
	plans    map[string]models.Plan
	rules    map[string]models.FolderRule
	seq      int64
	itemSeq  map[string]int64
	verSeq   map[string]int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make(map[string]models.FolderRule, len(s.rules))
	for k, v := range s.rules {
		rules[k] = cloneRule(v)
	}
	return snapshot{
		items:    cloneMap(s.items),
		versions: cloneMap(s.versions),
		links:    cloneMap(s.links),
		plans:    cloneMap(s.plans),
		rules:    rules,
		seq:      s.seq,
		itemSeq:  cloneMap(s.itemSeq),
		verSeq:   cloneMap(s.verSeq),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = snap.items
	s.versions = snap.versions
	s.links = snap.links
	s.plans = snap.plans
	s.rules = snap.rules
	s.seq = snap.seq
	s.itemSeq = snap.itemSeq
	s.verSeq = snap.verSeq
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRule(r models.FolderRule) models.FolderRule {
	flows := make([]models.FlowStep, len(r.Flows))
	for i, step := range r.Flows {
		actions := make([]models.Action, len(step.Actions))
		for j, a := range step.Actions {
			actions[j] = models.Action{Type: a.Type, Settings: append(json.RawMessage(nil), a.Settings...)}
		}
		step.Actions = actions
		flows[i] = step
	}
	r.Flows = flows
	return r
}

type txKey struct{}

// TransactionManager serializes transactions and rolls the store back to its
// pre-transaction snapshot when fn fails.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn atomically. Nested calls join the outer transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tm.store.restore(snap)
		return err
	}
	return nil
}
