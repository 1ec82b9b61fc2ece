package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes job events on Redis pub/sub channels so live
// listeners (the web app's SSE bridge) receive updates without polling.
// It replaces the original in-process event bus with an injected
// publish capability.
type RedisNotifier struct {
	client        redis.UniversalClient
	channelPrefix string
}

// NewRedisNotifier creates a notifier publishing on
// "<prefix>:<workspaceId>" channels. An empty prefix defaults to "jobs".
func NewRedisNotifier(client redis.UniversalClient, channelPrefix string) *RedisNotifier {
	if channelPrefix == "" {
		channelPrefix = "jobs"
	}
	return &RedisNotifier{client: client, channelPrefix: channelPrefix}
}

// Verify interface implementation at compile time.
var _ Notifier = (*RedisNotifier)(nil)

// Notify publishes the event as JSON. Subscriber count is not inspected:
// publishing to a channel nobody listens on is a valid no-op.
func (n *RedisNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	channel := n.channelPrefix
	if event.WorkspaceID != "" {
		channel = fmt.Sprintf("%s:%s", n.channelPrefix, event.WorkspaceID)
	}

	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
