package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NewPubSub creates a Pub/Sub client for the project
func NewPubSub(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id is not configured")
	}
	return pubsub.NewClient(ctx, projectID, opts...)
}
