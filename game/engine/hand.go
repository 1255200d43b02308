package engine

// Hand is an insertion-ordered set of cards owned by one player. Only the
// engine mutates it during play.
type Hand struct {
	cards []Card
}

// NewHand creates a hand holding the given cards
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make([]Card, 0, len(cards))}
	h.cards = append(h.cards, cards...)
	return h
}

// Add appends a card to the hand
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
}

// Remove takes the card with the given ID out of the hand
func (h *Hand) Remove(cardID string) bool {
	for i, c := range h.cards {
		if c.ID == cardID {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the card with the given ID
func (h *Hand) Get(cardID string) (Card, bool) {
	for _, c := range h.cards {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

func (h *Hand) Contains(cardID string) bool {
	_, ok := h.Get(cardID)
	return ok
}

// Cards returns a copy of the cards in insertion order
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h *Hand) Len() int {
	return len(h.cards)
}
