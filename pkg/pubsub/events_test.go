package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	id  string
	err error
}

func (r fakeResult) Get(context.Context) (string, error) { return r.id, r.err }

type fakePublisher struct {
	msgs []*pubsub.Message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msg *pubsub.Message) publishResult {
	p.msgs = append(p.msgs, msg)
	return fakeResult{id: "server-id", err: p.err}
}

func TestEventPublisherWrapsEnvelope(t *testing.T) {
	fake := &fakePublisher{}
	pub := &EventPublisher{pub: fake, timeout: defaultPublishTimeout}

	err := pub.Publish(context.Background(), Event{
		Type:        EventTypeCartSubmitted,
		AggregateID: "sub-1",
		Data:        map[string]any{"total_amount": 30},
	})
	require.NoError(t, err)
	require.Len(t, fake.msgs, 1)

	msg := fake.msgs[0]
	assert.Equal(t, EventTypeCartSubmitted, msg.Attributes["event_type"])
	assert.Equal(t, "sub-1", msg.Attributes["aggregate_id"])
	assert.NotEmpty(t, msg.Attributes["event_id"])

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, envelopeVersion, env.Version)
	assert.Equal(t, msg.Attributes["event_id"], env.EventID)
	assert.JSONEq(t, `{"total_amount":30}`, string(env.Data))
	assert.False(t, env.OccurredAt.IsZero())
}

func TestEventPublisherSurfacesPublishError(t *testing.T) {
	pub := &EventPublisher{pub: &fakePublisher{err: errors.New("unavailable")}, timeout: defaultPublishTimeout}
	err := pub.Publish(context.Background(), Event{Type: EventTypeCartSubmitted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestEventPublisherRequiresType(t *testing.T) {
	pub := &EventPublisher{pub: &fakePublisher{}, timeout: defaultPublishTimeout}
	assert.Error(t, pub.Publish(context.Background(), Event{}))
}

func TestNewEventPublisherRequiresPublisher(t *testing.T) {
	_, err := NewEventPublisher(nil)
	assert.Error(t, err)
}

func TestTopicResourceName(t *testing.T) {
	name, err := topicResourceName("proj", "subs")
	require.NoError(t, err)
	assert.Equal(t, "projects/proj/topics/subs", name)

	name, err = topicResourceName("", "projects/other/topics/x")
	require.NoError(t, err)
	assert.Equal(t, "projects/other/topics/x", name)

	_, err = topicResourceName("proj", " ")
	assert.ErrorIs(t, err, errNoTopic)
	_, err = topicResourceName("", "subs")
	assert.ErrorIs(t, err, errProjectIDRequired)
}

func TestOrderingKeyIsCarried(t *testing.T) {
	fake := &fakePublisher{}
	pub := &EventPublisher{pub: fake, timeout: defaultPublishTimeout}

	require.NoError(t, pub.Publish(context.Background(), Event{
		Type:        EventTypeCartSubmitted,
		AggregateID: "sub-2",
		OrderingKey: "user-9",
	}))
	require.Len(t, fake.msgs, 1)
	assert.Equal(t, "user-9", fake.msgs[0].OrderingKey)
}

func TestClosedOrEmptyClient(t *testing.T) {
	var c *Client
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
	_, err := (&Client{}).Events()
	assert.Error(t, err)
}
