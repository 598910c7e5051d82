package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"go.uber.org/zap"
)

// InMemoryRuleChangeNotifier delivers rule changes within one process.
// It is used when Redis is disabled.
type InMemoryRuleChangeNotifier struct {
	mu          sync.RWMutex
	subscribers map[int]func(eligibility.RuleChangeMessage)
	nextID      int
	closed      chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
}

// NewInMemoryRuleChangeNotifier creates an in-process notifier
func NewInMemoryRuleChangeNotifier(logger *zap.Logger) *InMemoryRuleChangeNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryRuleChangeNotifier{
		subscribers: make(map[int]func(eligibility.RuleChangeMessage)),
		closed:      make(chan struct{}),
		logger:      logger,
	}
}

// Publish hands msg to every current subscriber on its own goroutine
func (n *InMemoryRuleChangeNotifier) Publish(_ context.Context, msg eligibility.RuleChangeMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, cb := range n.subscribers {
		go deliver(n.logger, cb, msg)
	}
	return nil
}

// Subscribe registers callback until ctx is cancelled or Close is called
func (n *InMemoryRuleChangeNotifier) Subscribe(ctx context.Context, callback func(msg eligibility.RuleChangeMessage)) error {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = callback
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		delete(n.subscribers, id)
		n.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-n.closed:
		return nil
	}
}

// SubscriberCount returns the number of active subscriptions
func (n *InMemoryRuleChangeNotifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Close ends every subscription
func (n *InMemoryRuleChangeNotifier) Close() error {
	n.closeOnce.Do(func() { close(n.closed) })
	return nil
}

var _ eligibility.RuleChangeNotifier = (*InMemoryRuleChangeNotifier)(nil)
