package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"trend-finder/domain/model"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []*azservicebus.Message
	err    error
	closed bool
}

func (f *fakeSender) SendMessage(_ context.Context, m *azservicebus.Message, _ *azservicebus.SendMessageOptions) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSender) Close(context.Context) error {
	f.closed = true
	return nil
}

func TestResearchServiceBus_Publish(t *testing.T) {
	sender := &fakeSender{}
	bus := &ResearchServiceBus{sender: sender, queue: "research-completed"}

	evt := &model.ResearchEvent{Type: "research_completed", Keywords: "chess", CandidateCount: 1, TopVideoIDs: []string{"vid1"}}
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "application/json", *msg.ContentType)
	assert.Equal(t, "research_completed", *msg.Subject)

	var got model.ResearchEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, []string{"vid1"}, got.TopVideoIDs)

	require.NoError(t, bus.Close(context.Background()))
	assert.True(t, sender.closed)
}

func TestResearchServiceBus_SendError(t *testing.T) {
	bus := &ResearchServiceBus{sender: &fakeSender{err: errors.New("link detached")}, queue: "q"}
	assert.Error(t, bus.Publish(context.Background(), &model.ResearchEvent{}))
}

func TestResearchServiceBus_WithoutClient(t *testing.T) {
	bus, err := NewResearchServiceBus(nil, "q")
	require.NoError(t, err)
	assert.NoError(t, bus.Publish(context.Background(), &model.ResearchEvent{}))
	assert.NoError(t, bus.Close(context.Background()))

	_, err = NewServiceBus(context.Background(), "")
	assert.Error(t, err)
}
