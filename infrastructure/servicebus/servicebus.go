package servicebus

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus creates a Service Bus client authenticated with the default Azure credential chain.
// namespace is the fully qualified namespace, e.g. <name>.servicebus.windows.net
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("service bus namespace is not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azservicebus.NewClient(namespace, cred, nil)
}
