package notify

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSConfig holds the settings for the AWS SNS SMS channel.
type SNSConfig struct {
	Region string
}

// SNSSender publishes SMS messages through AWS SNS.
type SNSSender struct {
	client *sns.Client
}

// NewSNSSender loads AWS credentials from the environment and builds the client.
func NewSNSSender(ctx context.Context, cfg SNSConfig) (*SNSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("sns: load aws config: %w", err)
	}
	return &SNSSender{client: sns.NewFromConfig(awsCfg)}, nil
}

// SendSMS publishes a message directly to a phone number.
func (s *SNSSender) SendSMS(ctx context.Context, to, message string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("sns: recipient phone number is required")
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	if err != nil {
		return fmt.Errorf("sns: publish to %s: %w", to, err)
	}
	return nil
}
