package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/redirect-gateway/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type chanSubscriber struct {
	msgs         chan *message.Message
	subscribeErr error
	closeErr     error
	once         sync.Once
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{msgs: make(chan *message.Message, 10)}
}

func (s *chanSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}

	return s.msgs, nil
}

func (s *chanSubscriber) Close() error {
	s.once.Do(func() { close(s.msgs) })

	return s.closeErr
}

type outcome int

const (
	acked outcome = iota
	nacked
)

func waitOutcome(t *testing.T, msg *message.Message) outcome {
	t.Helper()

	select {
	case <-msg.Acked():
		return acked
	case <-msg.Nacked():
		return nacked
	case <-time.After(time.Second):
		t.Fatal("message was neither acked nor nacked")
	}

	return -1
}

func encoded(t *testing.T, event any) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

func TestConsumer(t *testing.T) {
	t.Run("delivers decoded events and acks", func(t *testing.T) {
		sub := newChanSubscriber()
		got := make(chan *sampleEvent, 1)

		consumer := messaging.NewConsumer(sub, "link.resolved", func(_ context.Context, e *sampleEvent) error {
			got <- e

			return nil
		}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		t.Cleanup(func() { _ = consumer.Shutdown() })

		assert.Equal(t, "link.resolved", consumer.Topic())

		msg := encoded(t, sampleEvent{ID: "abc"})
		sub.msgs <- msg

		assert.Equal(t, acked, waitOutcome(t, msg))
		assert.Equal(t, "abc", (<-got).ID)
	})

	t.Run("drops undecodable payloads", func(t *testing.T) {
		sub := newChanSubscriber()
		called := false

		consumer := messaging.NewConsumer(sub, "link.resolved", func(context.Context, *sampleEvent) error {
			called = true

			return nil
		}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte("{not json"))
		sub.msgs <- msg

		assert.Equal(t, acked, waitOutcome(t, msg))
		require.NoError(t, consumer.Shutdown())
		assert.False(t, called)
	})

	t.Run("nacks when the handler fails", func(t *testing.T) {
		sub := newChanSubscriber()
		consumer := messaging.NewConsumer(sub, "link.resolved", func(context.Context, *sampleEvent) error {
			return errors.New("sink unavailable")
		}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		t.Cleanup(func() { _ = consumer.Shutdown() })

		msg := encoded(t, sampleEvent{ID: "abc"})
		sub.msgs <- msg

		assert.Equal(t, nacked, waitOutcome(t, msg))
	})

	t.Run("reports outcomes to the observer", func(t *testing.T) {
		sub := newChanSubscriber()
		outcomes := make(chan string, 2)

		consumer := messaging.NewConsumer(sub, "link.issued", func(_ context.Context, e *sampleEvent) error {
			if e.ID == "bad" {
				return errors.New("sink unavailable")
			}

			return nil
		}, zap.NewNop(), messaging.WithObserver(func(topic, outcome string) {
			assert.Equal(t, "link.issued", topic)
			outcomes <- outcome
		}))

		require.NoError(t, consumer.Start(context.Background()))
		t.Cleanup(func() { _ = consumer.Shutdown() })

		sub.msgs <- encoded(t, sampleEvent{ID: "ok"})
		assert.Equal(t, messaging.OutcomeProcessed, <-outcomes)

		sub.msgs <- encoded(t, sampleEvent{ID: "bad"})
		assert.Equal(t, messaging.OutcomeFailed, <-outcomes)

		sub.msgs <- message.NewMessage(uuid.NewString(), []byte("{"))
		assert.Equal(t, messaging.OutcomeDropped, <-outcomes)
	})

	t.Run("subscribe failure", func(t *testing.T) {
		sub := &chanSubscriber{subscribeErr: errors.New("no stream")}
		consumer := messaging.NewConsumer(sub, "link.resolved", func(context.Context, *sampleEvent) error {
			return nil
		}, zap.NewNop())

		require.Error(t, consumer.Start(context.Background()))
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("shutdown before start returns", func(t *testing.T) {
		consumer := messaging.NewConsumer(newChanSubscriber(), "t", func(context.Context, *sampleEvent) error {
			return nil
		}, zap.NewNop())

		assert.NoError(t, consumer.Shutdown())
	})
}
