package eligibility

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one consistent version of every table the engine reads.
// It is never mutated; updates build a new snapshot and swap it in.
type Snapshot struct {
	Version       uint64
	Rules         *RuleSet
	Shipping      *ShippingTable
	Fees          *FeeModel
	Exchange      ExchangeRate
	MinimumMargin decimal.Decimal
	CreatedAt     time.Time

	calculator *ProfitCalculator
}

// NewSnapshot validates the tables and builds an unversioned snapshot.
// The store assigns the version when the snapshot is installed.
func NewSnapshot(rules *RuleSet, shipping *ShippingTable, fees *FeeModel, exchange ExchangeRate, minimumMargin decimal.Decimal) (*Snapshot, error) {
	if rules == nil {
		rules = EmptyRuleSet()
	}
	calc, err := NewProfitCalculator(shipping, fees, exchange, minimumMargin)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Rules:         rules,
		Shipping:      shipping,
		Fees:          fees,
		Exchange:      exchange,
		MinimumMargin: minimumMargin,
		CreatedAt:     time.Now(),
		calculator:    calc,
	}, nil
}

// Calculator returns the profit calculator bound to this snapshot's tables
func (s *Snapshot) Calculator() *ProfitCalculator {
	return s.calculator
}

// WithRules returns a copy of the snapshot carrying a different rule set
func (s *Snapshot) WithRules(rules *RuleSet) *Snapshot {
	next := *s
	next.Rules = rules
	next.Version = 0
	next.CreatedAt = time.Now()
	return &next
}

// SnapshotStore publishes the current snapshot. Readers call Current once
// per evaluation and keep that pointer, so an evaluation never sees a mix
// of versions.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotStore creates a store holding initial as version 1
func NewSnapshotStore(initial *Snapshot) *SnapshotStore {
	s := &SnapshotStore{}
	next := *initial
	next.Version = 1
	s.current.Store(&next)
	return s
}

// Current returns the snapshot in effect
func (s *SnapshotStore) Current() *Snapshot {
	return s.current.Load()
}

// Replace installs next unconditionally and returns it with its version
func (s *SnapshotStore) Replace(next *Snapshot) *Snapshot {
	for {
		cur := s.current.Load()
		installed := *next
		installed.Version = cur.Version + 1
		if s.current.CompareAndSwap(cur, &installed) {
			return &installed
		}
	}
}

// Update derives a new snapshot from the current one and installs it. fn
// may run more than once under contention and must not have side effects.
func (s *SnapshotStore) Update(fn func(current *Snapshot) (*Snapshot, error)) (*Snapshot, error) {
	for {
		cur := s.current.Load()
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		installed := *next
		installed.Version = cur.Version + 1
		if s.current.CompareAndSwap(cur, &installed) {
			return &installed, nil
		}
	}
}
