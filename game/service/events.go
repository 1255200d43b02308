package service

import (
	"fmt"
	"sync"

	"github.com/wricardo/turtle-race-game/game/engine"
)

// EventRecorder buffers engine events between service calls
type EventRecorder struct {
	mu     sync.Mutex
	events []engine.Event
}

// NewEventRecorder subscribes a recorder to bus. Card creation events are
// not recorded.
func NewEventRecorder(bus *engine.EventBus) *EventRecorder {
	r := &EventRecorder{}
	bus.Subscribe(func(ev engine.Event) {
		if ev.Type == engine.EventCardCreated {
			return
		}
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	return r
}

// Drain returns the buffered events and clears the buffer
func (r *EventRecorder) Drain() []engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}

// toGameEvents converts engine events into API events with readable messages
func toGameEvents(events []engine.Event) []GameEvent {
	out := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		ge := GameEvent{
			Type:       string(ev.Type),
			Timestamp:  ev.Timestamp,
			Turtle:     ev.Turtle,
			From:       ev.From,
			To:         ev.To,
			Carried:    ev.Carried,
			Card:       ev.Card,
			Candidates: ev.Candidates,
		}

		switch ev.Type {
		case engine.EventTurtleMoved:
			ge.Message = fmt.Sprintf("%s moved from %d to %d", ev.Turtle, ev.From, ev.To)
			if len(ev.Carried) > 0 {
				ge.Message += fmt.Sprintf(" carrying %v", ev.Carried)
			}
		case engine.EventCardDiscarded:
			ge.Message = fmt.Sprintf("Discarded %s", ev.Card.Label())
		case engine.EventCardDrawn:
			ge.Message = fmt.Sprintf("Drew %s", ev.Card.Label())
		case engine.EventWinner:
			ge.Message = fmt.Sprintf("%s reached the goal first", ev.Turtle)
		case engine.EventColorChoiceRequired:
			ge.Message = fmt.Sprintf("Choose a color for %s from %v", ev.Card.Label(), ev.Candidates)
		case engine.EventColorChoiceCancelled:
			ge.Message = fmt.Sprintf("Cancelled %s", ev.Card.Label())
		case engine.EventDeckBuilt:
			ge.Message = fmt.Sprintf("Deck shuffled with %d cards", len(ev.Cards))
		}

		out = append(out, ge)
	}
	return out
}
