package analytics

import (
	"context"

	"github.com/therealhieu/wee/internal/messaging"
	"go.uber.org/zap"
)

// Sink persists analytics events.
type Sink interface {
	SaveURLShortened(ctx context.Context, event *URLShortenedEvent) error
	SaveURLRedirected(ctx context.Context, event *URLRedirectedEvent) error
}

// RegisterConsumers adds a consumer per analytics topic to group, each feeding sink.
func RegisterConsumers(group *messaging.ConsumerGroup, sink Sink, logger *zap.Logger) {
	subscriber := group.Subscriber()

	group.Add(
		messaging.NewConsumer[URLShortenedEvent](subscriber, TopicURLShortened, sink.SaveURLShortened, logger),
		messaging.NewConsumer[URLRedirectedEvent](subscriber, TopicURLRedirected, sink.SaveURLRedirected, logger),
	)
}
