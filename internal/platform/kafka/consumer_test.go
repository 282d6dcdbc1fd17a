package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReader serves queued messages, then cancels the consume context.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestConsumer(offsets ...int64) (*Consumer, *fakeReader, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeReader{cancel: cancel}
	for _, o := range offsets {
		r.queue = append(r.queue, kafkago.Message{Offset: o})
	}
	c := &Consumer{
		reader:     r,
		logger:     zap.NewNop(),
		newBackOff: func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) },
	}
	return c, r, ctx
}

func TestConsume_RetriesFailedMessageBeforeMovingOn(t *testing.T) {
	c, r, ctx := newTestConsumer(10, 11)

	var handled []int64
	failures := 2
	err := c.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		handled = append(handled, msg.Offset)
		if msg.Offset == 10 && failures > 0 {
			failures--
			return errors.New("store unavailable")
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{10, 10, 10, 11}, handled)
	assert.Equal(t, []int64{10, 11}, r.committed)
}

func TestConsume_StopsWithoutCommittingWhenCancelledDuringRetry(t *testing.T) {
	c, r, ctx := newTestConsumer(10, 11)

	attempts := 0
	err := c.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		require.Equal(t, int64(10), msg.Offset)
		attempts++
		if attempts == 3 {
			r.cancel()
		}
		return errors.New("store unavailable")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, attempts, 3)
	assert.Empty(t, r.committed)
}

func TestConsume_SkippedMessagesAreCommitted(t *testing.T) {
	c, r, ctx := newTestConsumer(1, 2, 3)

	err := c.Consume(ctx, func(context.Context, kafkago.Message) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
}
