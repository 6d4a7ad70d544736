package cartline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

// Publisher hands a committed line to the external cart/order store.
type Publisher interface {
	PublishCommitted(ctx context.Context, item *Item) error
}

// NoopPublisher drops committed lines. Used when the publish feature
// flag is off or during local development without GCP credentials.
type NoopPublisher struct{}

// PublishCommitted implements Publisher.
func (NoopPublisher) PublishCommitted(context.Context, *Item) error { return nil }

// topicPublisher is the slice of the Pub/Sub publisher we use.
type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// PubSubPublisher emits committed lines on the order-lines topic.
type PubSubPublisher struct {
	publisher topicPublisher
	log       *logger.Logger
}

// NewPubSubPublisher wraps an order-lines topic publisher.
func NewPubSubPublisher(publisher *pubsub.Publisher, log *logger.Logger) *PubSubPublisher {
	return &PubSubPublisher{publisher: publisher, log: log}
}

// PublishCommitted implements Publisher. The attributes let downstream
// consumers filter split lines without decoding the payload.
func (p *PubSubPublisher) PublishCommitted(ctx context.Context, item *Item) error {
	if p.publisher == nil {
		return fmt.Errorf("order-lines publisher not initialized")
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding cart line %s: %w", item.ID, err)
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"lineId":  item.ID.String(),
			"isSplit": strconv.FormatBool(item.IsSplit),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing cart line %s: %w", item.ID, err)
	}
	if p.log != nil {
		p.log.Info(p.log.WithField(ctx, "line_id", item.ID.String()), "cart line handed to order store")
	}
	return nil
}
