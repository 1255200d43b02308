package engine

import (
	"sync"
	"time"
)

// EventType indicates the category of an engine event.
type EventType string

const (
	// Setup events
	EventCardCreated EventType = "card_created"
	EventDeckBuilt   EventType = "deck_built"

	// Play events
	EventTurtleMoved   EventType = "turtle_moved"
	EventCardDiscarded EventType = "card_discarded"
	EventCardDrawn     EventType = "card_drawn"
	EventWinner        EventType = "winner"

	// Color selection events
	EventColorChoiceRequired  EventType = "color_choice_required"
	EventColorChoiceCancelled EventType = "color_choice_cancelled"
)

// Event is a state change that observers may react to. Only the fields
// relevant to the event type are populated.
type Event struct {
	Type       EventType `json:"type"`
	Card       *Card     `json:"card,omitempty"`
	Cards      []Card    `json:"cards,omitempty"`
	Turtle     Color     `json:"turtle,omitempty"`
	From       int       `json:"from"`
	To         int       `json:"to"`
	Carried    []Color   `json:"carried,omitempty"`
	Candidates []Color   `json:"candidates,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty for listeners of every event
	callback  Listener
}

// EventBus is a synchronous publish/subscribe bus. Listeners run on the
// publishing goroutine in subscription order.
type EventBus struct {
	mu            sync.RWMutex
	subscriptions []subscription
	nextHandle    int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subscriptions = append(bus.subscriptions, subscription{
		handle:    handle,
		eventType: eventType,
		callback:  listener,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscriptions {
		if sub.handle == handle {
			bus.subscriptions = append(bus.subscriptions[:i], bus.subscriptions[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching listener synchronously.
// Listeners may subscribe or unsubscribe while being notified.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subscriptions))
	copy(subs, bus.subscriptions)
	bus.mu.RUnlock()

	for _, sub := range subs {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.callback(event)
		}
	}
}

// Len returns the number of registered listeners
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscriptions)
}
