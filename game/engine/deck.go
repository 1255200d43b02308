package engine

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// DeckSize is the number of cards in a freshly built deck.
const DeckSize = 52

type deckEntry struct {
	color  Color
	kind   CardKind
	effect Effect
	count  int
}

// composition lists the fixed deck contents in build order.
func composition() []deckEntry {
	entries := make([]deckEntry, 0, len(AllColors())*3+4)
	for _, c := range AllColors() {
		entries = append(entries,
			deckEntry{color: c, kind: ColorBound, effect: DoubleForward, count: 1},
			deckEntry{color: c, kind: ColorBound, effect: Forward, count: 5},
			deckEntry{color: c, kind: ColorBound, effect: Back, count: 2},
		)
	}
	return append(entries,
		deckEntry{color: ColorNone, kind: Wildcard, effect: Forward, count: 5},
		deckEntry{color: ColorNone, kind: Wildcard, effect: Back, count: 2},
		deckEntry{color: ColorNone, kind: LastPlace, effect: DoubleForward, count: 2},
		deckEntry{color: ColorNone, kind: LastPlace, effect: Forward, count: 3},
	)
}

// Deck holds the draw pile and the discard pile. Discarded cards are never
// shuffled back into the draw pile.
type Deck struct {
	draw    []Card
	discard []Card
}

// BuildDeck creates every card of the fixed composition, reporting each one
// to onCreated, then shuffles the draw pile with rng. Card IDs are derived
// from rng so a seeded game is fully reproducible.
func BuildDeck(rng *rand.Rand, onCreated func(Card)) (*Deck, error) {
	cards := make([]Card, 0, DeckSize)
	for _, entry := range composition() {
		for i := 0; i < entry.count; i++ {
			id, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return nil, fmt.Errorf("generate card id: %w", err)
			}
			card := Card{
				ID:     id.String(),
				Color:  entry.color,
				Kind:   entry.kind,
				Effect: entry.effect,
			}
			cards = append(cards, card)
			if onCreated != nil {
				onCreated(card)
			}
		}
	}

	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return &Deck{
		draw:    cards,
		discard: []Card{},
	}, nil
}

// Draw removes and returns the top card of the draw pile
func (d *Deck) Draw() (Card, error) {
	if len(d.draw) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.draw[0]
	d.draw = d.draw[1:]
	return card, nil
}

// Discard places a card on the discard pile
func (d *Deck) Discard(card Card) {
	d.discard = append(d.discard, card)
}

// Remaining returns the number of cards left in the draw pile
func (d *Deck) Remaining() int {
	return len(d.draw)
}

// DrawPile returns a copy of the draw pile, top card first
func (d *Deck) DrawPile() []Card {
	out := make([]Card, len(d.draw))
	copy(out, d.draw)
	return out
}

// DiscardPile returns a copy of the discard pile, oldest first
func (d *Deck) DiscardPile() []Card {
	out := make([]Card, len(d.discard))
	copy(out, d.discard)
	return out
}
