// Package notify fans out article lifecycle events to configured sinks.
// Delivery is best-effort: a failed sink is logged and joined into the
// returned error, but never fails the user action that produced the event.
package notify

import "time"

const (
	// Event types emitted by the write façade.
	EventArticleCreated = "article_created"
	EventArticleMinted  = "article_minted"
)

// Event represents the payload delivered to sinks.
type Event struct {
	Type       string    `json:"type"`
	TokenID    uint64    `json:"token_id,omitempty"`
	TxHash     string    `json:"tx_hash"`
	ContentRef string    `json:"content_ref,omitempty"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event stamped with the current time.
func NewEvent(eventType, txHash, actor string) Event {
	return Event{
		Type:       eventType,
		TxHash:     txHash,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}
