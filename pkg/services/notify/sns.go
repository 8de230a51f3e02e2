package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// PublishAPI is the SNS surface the topic publisher depends on.
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput,
		optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TopicPublisher broadcasts subject+body to a configured SNS topic. An empty
// topic ARN makes every publish a silent no-op.
type TopicPublisher struct {
	client   PublishAPI
	topicARN string
}

func NewTopicPublisher(client PublishAPI, topicARN string) *TopicPublisher {
	return &TopicPublisher{client: client, topicARN: topicARN}
}

func (p *TopicPublisher) Publish(ctx context.Context, subject, body string) error {
	if p.topicARN == "" {
		return nil
	}

	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn:         aws.String(p.topicARN),
		Subject:          aws.String(subject),
		Message:          aws.String(body),
		MessageStructure: aws.String("string"),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to topic: %w", err)
	}
	return nil
}
