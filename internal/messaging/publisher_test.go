package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/redirect-gateway/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topic      string
	messages   []*message.Message
	publishErr error
	closeErr   error
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.publishErr != nil {
		return p.publishErr
	}

	p.topic = topic
	p.messages = append(p.messages, msgs...)

	return nil
}

func (p *recordingPublisher) Close() error {
	return p.closeErr
}

type sampleEvent struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func TestNewPublishFunc(t *testing.T) {
	t.Run("encodes and tags the event", func(t *testing.T) {
		pub := &recordingPublisher{}
		publish := messaging.NewPublishFunc[sampleEvent](pub, "link.issued")

		err := publish(context.Background(), &sampleEvent{ID: "tok", Kind: "token"})

		require.NoError(t, err)
		assert.Equal(t, "link.issued", pub.topic)
		require.Len(t, pub.messages, 1)
		assert.JSONEq(t, `{"id":"tok","kind":"token"}`, string(pub.messages[0].Payload))
		assert.Equal(t, "link.issued", pub.messages[0].Metadata.Get(messaging.MetadataEventType))
	})

	t.Run("wraps broker errors", func(t *testing.T) {
		brokerErr := errors.New("broker down")
		publish := messaging.NewPublishFunc[sampleEvent](&recordingPublisher{publishErr: brokerErr}, "link.issued")

		err := publish(context.Background(), &sampleEvent{ID: "tok"})

		require.ErrorIs(t, err, brokerErr)
	})
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, messaging.Discard[sampleEvent]()(context.Background(), &sampleEvent{}))
}

func TestPublisherGroup(t *testing.T) {
	pub := &recordingPublisher{}
	group := messaging.NewPublisherGroup(pub)

	assert.Same(t, pub, group.Publisher())
	require.NoError(t, group.Shutdown())

	failing := messaging.NewPublisherGroup(&recordingPublisher{closeErr: errors.New("close")})
	assert.Error(t, failing.Shutdown())
}
