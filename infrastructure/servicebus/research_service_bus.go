package servicebus

import (
	"context"
	"encoding/json"

	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// ResearchServiceBus sends research events to a Service Bus queue
type ResearchServiceBus struct {
	sender messageSender
	queue  string
}

// NewResearchServiceBus opens a sender for queue. A nil client gives a no-op publisher.
func NewResearchServiceBus(client *azservicebus.Client, queue string) (*ResearchServiceBus, error) {
	if client == nil {
		return &ResearchServiceBus{queue: queue}, nil
	}
	sender, err := client.NewSender(queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return nil, err
	}
	return &ResearchServiceBus{sender: sender, queue: queue}, nil
}

func (s *ResearchServiceBus) Publish(ctx context.Context, evt *model.ResearchEvent) error {
	if s == nil || s.sender == nil || evt == nil {
		return nil
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	contentType := "application/json"
	subject := evt.Type
	err = s.sender.SendMessage(ctx, &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
	}, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("queue", s.queue).Error("Error while sending message.")
		return err
	}
	return nil
}

func (s *ResearchServiceBus) Close(ctx context.Context) error {
	if s == nil || s.sender == nil {
		return nil
	}
	return s.sender.Close(ctx)
}
