package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultCloseTimeout = 5 * time.Second
	defaultChannel      = "dropship:rules:changed"
)

// ErrSubscriptionRunning is returned by a second concurrent Subscribe
var ErrSubscriptionRunning = errors.New("subscription already running")

// RedisRuleChangeNotifier implements eligibility.RuleChangeNotifier using Redis Pub/Sub
type RedisRuleChangeNotifier struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// NotifierOption is a functional option for configuring a notifier
type NotifierOption func(*RedisRuleChangeNotifier)

// WithChannel sets the Pub/Sub channel name
func WithChannel(channel string) NotifierOption {
	return func(n *RedisRuleChangeNotifier) {
		if channel != "" {
			n.channel = channel
		}
	}
}

// WithLogger sets the logger for the notifier
func WithLogger(logger *zap.Logger) NotifierOption {
	return func(n *RedisRuleChangeNotifier) {
		n.logger = logger
	}
}

// NewRedisRuleChangeNotifier connects to Redis and verifies the connection
func NewRedisRuleChangeNotifier(ctx context.Context, cfg config.RedisConfig, opts ...NotifierOption) (*RedisRuleChangeNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n := newRedisNotifier(client, true, opts)
	if cfg.Channel != "" && n.channel == defaultChannel {
		n.channel = cfg.Channel
	}
	return n, nil
}

// NewRedisRuleChangeNotifierWithClient creates a notifier on an existing
// client. The caller keeps ownership of the client.
func NewRedisRuleChangeNotifierWithClient(client *redis.Client, opts ...NotifierOption) *RedisRuleChangeNotifier {
	return newRedisNotifier(client, false, opts)
}

func newRedisNotifier(client *redis.Client, owns bool, opts []NotifierOption) *RedisRuleChangeNotifier {
	n := &RedisRuleChangeNotifier{
		client:     client,
		ownsClient: owns,
		channel:    defaultChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Channel returns the Pub/Sub channel in use
func (n *RedisRuleChangeNotifier) Channel() string {
	return n.channel
}

// Publish sends a rule change message to all subscribers
func (n *RedisRuleChangeNotifier) Publish(ctx context.Context, msg eligibility.RuleChangeMessage) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return err
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		n.logger.Error("Failed to publish rule change",
			zap.String("channel", n.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	n.logger.Debug("Published rule change",
		zap.String("action", string(msg.Action)),
		zap.String("kind", msg.Kind),
		zap.String("channel", n.channel))
	return nil
}

// Subscribe listens for rule change messages until ctx is cancelled or
// Close is called. Callbacks run on their own goroutine.
func (n *RedisRuleChangeNotifier) Subscribe(ctx context.Context, callback func(msg eligibility.RuleChangeMessage)) error {
	n.mu.Lock()
	if n.isRunning {
		n.mu.Unlock()
		return ErrSubscriptionRunning
	}
	n.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	n.cancelFn = cancel
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.isRunning = false
		n.mu.Unlock()
		n.markDone()
	}()

	pubsub := n.client.Subscribe(subCtx, n.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	n.logger.Info("Subscribed to rule change channel", zap.String("channel", n.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			n.logger.Info("Rule change subscription stopped")
			return subCtx.Err()
		case raw, ok := <-ch:
			if !ok {
				n.logger.Warn("Rule change channel closed")
				return nil
			}
			msg, err := decodeMessage(raw.Payload)
			if err != nil {
				n.logger.Error("Failed to decode rule change",
					zap.String("payload", raw.Payload),
					zap.Error(err))
				continue
			}
			go deliver(n.logger, callback, msg)
		}
	}
}

func (n *RedisRuleChangeNotifier) markDone() {
	n.doneOnce.Do(func() {
		close(n.doneCh)
	})
}

// Close stops the subscription and closes the client when the notifier owns it
func (n *RedisRuleChangeNotifier) Close() error {
	n.mu.Lock()
	cancelFn := n.cancelFn
	n.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-n.doneCh:
		case <-time.After(defaultCloseTimeout):
			n.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if n.ownsClient {
		return n.client.Close()
	}
	return nil
}

func encodeMessage(msg eligibility.RuleChangeMessage) ([]byte, error) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}

func decodeMessage(payload string) (eligibility.RuleChangeMessage, error) {
	var msg eligibility.RuleChangeMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return msg, err
	}
	if msg.Action == "" {
		return msg, errors.New("rule change message without action")
	}
	return msg, nil
}

func deliver(logger *zap.Logger, callback func(eligibility.RuleChangeMessage), msg eligibility.RuleChangeMessage) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in rule change callback", zap.Any("panic", r))
		}
	}()
	callback(msg)
}

var _ eligibility.RuleChangeNotifier = (*RedisRuleChangeNotifier)(nil)
