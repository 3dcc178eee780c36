package pubsub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// ResearchPubSub publishes research events to a Pub/Sub topic
type ResearchPubSub struct {
	client  *pubsub.Client
	topicID string

	mu    sync.Mutex
	topic *pubsub.Topic
}

const topicCheckTimeout = 10 * time.Second

func NewResearchPubSub(client *pubsub.Client, topicID string) *ResearchPubSub {
	return &ResearchPubSub{client: client, topicID: topicID}
}

// ensureTopic creates the topic on first use if it doesn't exist. Only a resolved topic is
// kept; a failed check is retried on the next publish.
func (p *ResearchPubSub) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), topicCheckTimeout)
	defer cancel()
	topic := p.client.Topic(p.topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicID).Info("Topic doesn't exist - creating it")
		if topic, err = p.client.CreateTopic(ctx, p.topicID); err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

func (p *ResearchPubSub) Publish(ctx context.Context, evt *model.ResearchEvent) error {
	if p == nil || p.client == nil || evt == nil {
		return nil
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"type": evt.Type},
	}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).WithField("topic", p.topicID).Info("Research event published")
	return nil
}

// Close stops the topic's background publisher
func (p *ResearchPubSub) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
