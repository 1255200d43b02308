// Package engine implements the rules of the turtle race.
//
// Five colored turtles race along a linear path from Start (position 0) to
// the Goal (path length + 1). Players move them by playing cards from a
// shared 52 card deck. A turtle that lands on an occupied tile climbs on top
// of the stack there, and every turtle riding on a moving turtle travels
// with it.
//
// Core Types:
//
// PathModel tracks the carrier relation between turtles and tiles. Deck owns
// the shuffled draw pile and the discard pile. Hand is a player's ordered
// set of cards. GameEngine ties them together behind the Engine interface and
// publishes every state change on an EventBus.
//
// Usage:
//
//	bus := engine.NewEventBus()
//	bus.SubscribeTyped(engine.EventTurtleMoved, func(ev engine.Event) {
//		fmt.Printf("%s: %d -> %d\n", ev.Turtle, ev.From, ev.To)
//	})
//
//	game, err := engine.NewEngine(engine.DefaultGameConfig(), engine.WithEventBus(bus))
//	if err != nil {
//		log.Fatal(err)
//	}
//	hand, err := game.DealHand(game.GetConfig().HandSize)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	card := hand.Cards()[0]
//	if _, err := game.PlayCard(hand, card.ID); err != nil {
//		log.Fatal(err)
//	}
//	if game.Phase() == engine.PhaseAwaitingColor {
//		_, err = game.ResolveColor(game.Pending().Candidates[0])
//	}
//
// Card-play protocol:
//
// Color-bound cards move their own turtle immediately. Wildcard cards may
// move any turtle and last-place cards may move any turtle on the rearmost
// occupied tile; both wait in PhaseAwaitingColor until ResolveColor or
// CancelColorChoice. After each resolved play the card is discarded, a
// replacement is drawn and the Goal is checked. The first turtle to reach
// the Goal wins and the game accepts no further plays.
package engine
