package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/therealhieu/wee/internal/messaging"
)

// Publisher publishes analytics events. The zero value drops every event.
type Publisher struct {
	shortened  messaging.Publish[URLShortenedEvent]
	redirected messaging.Publish[URLRedirectedEvent]
}

// NewPublisher creates a publisher writing both topics through publisher.
func NewPublisher(publisher message.Publisher) *Publisher {
	return &Publisher{
		shortened:  messaging.NewPublishFunc[URLShortenedEvent](publisher, TopicURLShortened),
		redirected: messaging.NewPublishFunc[URLRedirectedEvent](publisher, TopicURLRedirected),
	}
}

// URLShortened publishes a shorten event.
func (p *Publisher) URLShortened(ctx context.Context, event *URLShortenedEvent) error {
	if p == nil || p.shortened == nil {
		return nil
	}

	return p.shortened(ctx, event)
}

// URLRedirected publishes a redirect event.
func (p *Publisher) URLRedirected(ctx context.Context, event *URLRedirectedEvent) error {
	if p == nil || p.redirected == nil {
		return nil
	}

	return p.redirected(ctx, event)
}
