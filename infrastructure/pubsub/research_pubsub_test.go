package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"trend-finder/domain/model"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newFakeClient(t *testing.T) (*pubsub.Client, *pstest.Server) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	client, err := NewPubSub(context.Background(), "test-project", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, srv
}

func TestNewPubSub_RequiresProject(t *testing.T) {
	_, err := NewPubSub(context.Background(), "")
	assert.Error(t, err)
}

func TestResearchPubSub_Publish(t *testing.T) {
	client, srv := newFakeClient(t)
	publisher := NewResearchPubSub(client, "research-completed")
	defer publisher.Close()

	evt := &model.ResearchEvent{
		Type:           "research_completed",
		Keywords:       "chess,go",
		CandidateCount: 2,
		TopVideoIDs:    []string{"vid1", "vid2"},
		OccurredAt:     time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(context.Background(), evt))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "research_completed", msgs[0].Attributes["type"])

	var got model.ResearchEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.Equal(t, *evt, got)
}

func TestResearchPubSub_NilClientIsNoop(t *testing.T) {
	var publisher *ResearchPubSub
	assert.NoError(t, publisher.Publish(context.Background(), &model.ResearchEvent{}))
	assert.NoError(t, NewResearchPubSub(nil, "topic").Publish(context.Background(), &model.ResearchEvent{}))
}

func TestResearchPubSub_CanceledRequestDoesNotBreakLaterPublishes(t *testing.T) {
	client, srv := newFakeClient(t)
	publisher := NewResearchPubSub(client, "research-completed")
	defer publisher.Close()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_ = publisher.Publish(canceled, &model.ResearchEvent{Type: "research_completed", Keywords: "first"})

	require.NoError(t, publisher.Publish(context.Background(), &model.ResearchEvent{Type: "research_completed", Keywords: "second"}))

	msgs := srv.Messages()
	require.NotEmpty(t, msgs)
	var got model.ResearchEvent
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Data, &got))
	assert.Equal(t, "second", got.Keywords)
}
