package service

import (
	"context"
	"errors"
	"testing"

	"bank-core/internal/model"
	"bank-core/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProducer 记录发布的消息，可注入失败
type fakeProducer struct {
	published []string
	failOn    map[string]bool
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if p.failOn[key] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, key)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func TestRelayProcessPending(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	outbox := store.Repos().Outbox

	for _, key := range []string{"1234567890", "9876543210"} {
		require.NoError(t, outbox.Append(ctx, &model.OutboxMessage{
			Topic:   "bank_events_transaction",
			Key:     key,
			Payload: []byte(`{}`),
		}))
	}

	producer := &fakeProducer{}
	relay := NewRelayService(outbox, producer)
	relay.processPending(ctx)

	assert.Equal(t, []string{"1234567890", "9876543210"}, producer.published)

	// 投递成功的消息置 SENT，不再重复处理
	pending, err := outbox.FindPending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	relay.processPending(ctx)
	assert.Len(t, producer.published, 2)
}

// 发布失败的消息保持 PENDING，下一轮重试 (at-least-once)
func TestRelayRetriesFailedPublish(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	outbox := store.Repos().Outbox

	require.NoError(t, outbox.Append(ctx, &model.OutboxMessage{
		Topic:   "bank_events_transaction",
		Key:     "1234567890",
		Payload: []byte(`{}`),
	}))

	producer := &fakeProducer{failOn: map[string]bool{"1234567890": true}}
	relay := NewRelayService(outbox, producer)
	relay.processPending(ctx)

	pending, err := outbox.FindPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// broker 恢复后成功投递
	producer.failOn = nil
	relay.processPending(ctx)
	assert.Equal(t, []string{"1234567890"}, producer.published)

	pending, err = outbox.FindPending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
