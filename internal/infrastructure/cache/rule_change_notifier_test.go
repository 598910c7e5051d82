package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryRuleChangeNotifier_Delivers(t *testing.T) {
	n := NewInMemoryRuleChangeNotifier(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []eligibility.RuleChangeMessage
	done := make(chan error, 1)
	go func() {
		done <- n.Subscribe(ctx, func(msg eligibility.RuleChangeMessage) {
			mu.Lock()
			got = append(got, msg)
			mu.Unlock()
		})
	}()
	require.Eventually(t, func() bool { return n.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, n.Publish(ctx, eligibility.RuleChangeMessage{
		Action: eligibility.RuleChangeCreated,
		Kind:   eligibility.RuleKindBrand,
		Origin: "a",
	}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, eligibility.RuleKindBrand, got[0].Kind)
	assert.NotZero(t, got[0].Timestamp)
	mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, n.SubscriberCount())
}

func TestInMemoryRuleChangeNotifier_CloseEndsSubscriptions(t *testing.T) {
	n := NewInMemoryRuleChangeNotifier(nil)
	done := make(chan error, 1)
	go func() {
		done <- n.Subscribe(context.Background(), func(eligibility.RuleChangeMessage) {})
	}()
	require.Eventually(t, func() bool { return n.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop")
	}
}

func TestInMemoryRuleChangeNotifier_RecoversCallbackPanic(t *testing.T) {
	n := NewInMemoryRuleChangeNotifier(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := make(chan struct{}, 1)
	go func() {
		_ = n.Subscribe(ctx, func(eligibility.RuleChangeMessage) {
			called <- struct{}{}
			panic("boom")
		})
	}()
	require.Eventually(t, func() bool { return n.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, n.Publish(ctx, eligibility.RuleChangeMessage{Action: eligibility.RuleChangeReloaded}))
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestMessageCodec(t *testing.T) {
	data, err := encodeMessage(eligibility.RuleChangeMessage{
		Action:  eligibility.RuleChangeDeleted,
		Kind:    eligibility.RuleKindKeyword,
		RuleID:  "42",
		Origin:  "node-1",
		Version: 7,
	})
	require.NoError(t, err)

	msg, err := decodeMessage(string(data))
	require.NoError(t, err)
	assert.Equal(t, eligibility.RuleChangeDeleted, msg.Action)
	assert.Equal(t, "42", msg.RuleID)
	assert.Equal(t, uint64(7), msg.Version)
	assert.NotZero(t, msg.Timestamp)

	_, err = decodeMessage(`{"kind":"brand"}`)
	assert.Error(t, err)

	_, err = decodeMessage(`not json`)
	assert.Error(t, err)
}

func TestNewRedisRuleChangeNotifier_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisRuleChangeNotifier(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}

func TestRedisRuleChangeNotifier_Options(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	n := NewRedisRuleChangeNotifierWithClient(client, WithChannel("custom"), WithLogger(zap.NewNop()))
	assert.Equal(t, "custom", n.Channel())

	require.NoError(t, n.Close())
	require.NoError(t, client.Close())
}
