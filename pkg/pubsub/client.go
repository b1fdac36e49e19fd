package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub submissions topic is required")
)

// Client owns the Pub/Sub connection and the single publisher used for cart
// submission events. Messages carry an ordering key, so one user's
// submissions arrive in commit order.
type Client struct {
	client    *pubsub.Client
	topic     string
	publisher *pubsub.Publisher
}

// NewClient connects, confirms the submissions topic exists and prepares an
// ordered publisher for it. PUBSUB_EMULATOR_HOST is honoured by the SDK.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	topic, err := topicResourceName(gcp.ProjectID, cfg.SubmissionsTopic)
	if err != nil {
		return nil, err
	}

	psClient, err := pubsub.NewClient(ctx, strings.TrimSpace(gcp.ProjectID))
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: psClient, topic: topic}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	c.publisher = psClient.Publisher(topic)
	c.publisher.EnableMessageOrdering = true

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", topic), "pubsub client initialized")
	}
	return c, nil
}

// Events wraps the submissions publisher for the cart workflow.
func (c *Client) Events() (*EventPublisher, error) {
	if c == nil || c.publisher == nil {
		return nil, errors.New("pubsub client not initialized")
	}
	return NewEventPublisher(c.publisher)
}

// Ping reports whether the submissions topic is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %q does not exist", c.topic)
	default:
		return fmt.Errorf("checking topic %q: %w", c.topic, err)
	}
}

// Close flushes pending publishes before releasing the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	return c.client.Close()
}

// topicResourceName accepts a bare topic id or a full projects/<p>/topics/<t> name.
func topicResourceName(projectID, name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", errNoTopic
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n, nil
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return "", errProjectIDRequired
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n), nil
}
