// Package messaging defines the event bus contract used to fan committed
// events out to projections and other subscribers.
package messaging

import "github.com/shelterpoint/casevault/pkg/domain"

// EventHandler processes a single published event. Returning an error causes
// redelivery on durable transports.
type EventHandler func(event *domain.Event) error

// EventFilter narrows a subscription. Empty slices match everything.
type EventFilter struct {
	// AggregateTypes limits delivery to these aggregate types.
	AggregateTypes []string

	// EventTypes limits delivery to these event types.
	EventTypes []string
}

// Matches reports whether an event passes the filter.
func (f EventFilter) Matches(event *domain.Event) bool {
	if len(f.AggregateTypes) > 0 && !contains(f.AggregateTypes, event.AggregateType) {
		return false
	}
	if len(f.EventTypes) > 0 && !contains(f.EventTypes, event.EventType) {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Subscription is a handle to an active subscription.
type Subscription interface {
	Unsubscribe() error
}

// EventBus publishes committed events and delivers them to subscribers.
type EventBus interface {
	// Publish publishes events in order. Events are already durable in the
	// event store when this is called; publishing is at-least-once.
	Publish(events []*domain.Event) error

	// Subscribe registers a handler for events matching the filter.
	Subscribe(filter EventFilter, handler EventHandler) (Subscription, error)

	// Close shuts down the bus and all subscriptions.
	Close() error
}
