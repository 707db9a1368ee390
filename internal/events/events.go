// Package events describes reconciliation events and the publishers that
// fan them out to live clients and downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type Type string

const (
	OfferIngested           Type = "offer.ingested"
	MatchApproved           Type = "match.approved"
	MatchRejected           Type = "match.rejected"
	ProductCreated          Type = "product.created"
	ProductCreatedFromOffer Type = "product.created_from_offer"
)

// Actor is the user behind a human triggered event.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Event is one reconciliation fact, published after its transaction commits.
type Event struct {
	Type    Type      `json:"type"`
	Key     string    `json:"key"` // offer or product id, used for partitioning
	Actor   *Actor    `json:"user,omitempty"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

// JSON encodes the event with its timestamp defaulted to now.
func (e Event) JSON() ([]byte, error) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
