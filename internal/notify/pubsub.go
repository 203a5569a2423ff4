package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// gcpPubSubSender implements the Notifier interface for GCP Pub/Sub topics.
type gcpPubSubSender struct {
	id    string
	typ   string
	topic *pubsub.Topic
	log   Logger
}

// newPubSubNotifier creates a new Pub/Sub notifier with the given configuration.
func newPubSubNotifier(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("notifier %q missing gcp_pubsub configuration", cfg.ID)
	}
	return newGCPPubSubSender(ctx, cfg.ID, cfg.PubSub, log)
}

// newGCPPubSubSender dials the Pub/Sub client and resolves the topic handle.
func newGCPPubSubSender(ctx context.Context, id string, cfg *PubSubSinkConfig, log Logger) (Notifier, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubSender{
		id:    id,
		typ:   TypePubSub,
		topic: client.Topic(cfg.Topic),
		log:   ensureLogger(log),
	}, nil
}

func (g *gcpPubSubSender) ID() string   { return g.id }
func (g *gcpPubSubSender) Type() string { return g.typ }

// Send publishes the event to the configured Pub/Sub topic and waits for the
// server acknowledgement.
func (g *gcpPubSubSender) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := g.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": evt.Type,
		},
	})

	if _, err := result.Get(ctx); err != nil {
		g.log.ErrorObj("pubsub notifier publish failed", "notifier_pubsub_error", map[string]any{
			"notifier_id": g.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	g.log.DebugObj("pubsub notifier delivered event", "notifier_pubsub_delivery", map[string]any{
		"notifier_id": g.id,
	})
	return nil
}
