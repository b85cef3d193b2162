// Package notify publishes portfolio change events to an SNS topic.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"portfolio-api/internal/portfolio"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Event types.
const (
	EventCreated = "portfolio.created"
	EventUpdated = "portfolio.updated"
	EventDeleted = "portfolio.deleted"
)

// Event is the JSON message body.
type Event struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	Portfolio  *portfolio.Portfolio `json:"portfolio,omitempty"`
	OccurredAt string               `json:"occurredAt"`
}

// Notifier is what the handlers publish through.
type Notifier interface {
	Notify(ctx context.Context, eventType, id string, p *portfolio.Portfolio) error
}

// SNSAPI is the part of *sns.Client the publisher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher sends one message per event to a topic.
type SNSPublisher struct {
	client   SNSAPI
	topicArn string
	now      func() time.Time
}

// New returns an SNS publisher for topicArn, or a no-op notifier when
// topicArn is empty.
func New(client SNSAPI, topicArn string) Notifier {
	if strings.TrimSpace(topicArn) == "" {
		return Nop{}
	}
	return &SNSPublisher{client: client, topicArn: topicArn, now: time.Now}
}

// Notify publishes the event. The eventType attribute allows subscription
// filter policies.
func (n *SNSPublisher) Notify(ctx context.Context, eventType, id string, p *portfolio.Portfolio) error {
	body, err := json.Marshal(Event{
		Type:       eventType,
		ID:         id,
		Portfolio:  p,
		OccurredAt: portfolio.Timestamp(n.now()),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", eventType, err)
	}
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, string, string, *portfolio.Portfolio) error { return nil }
