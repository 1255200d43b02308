package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func createTestConfig() *GameConfig {
	seed := int64(42)
	config := DefaultGameConfig()
	config.Name = "engine-test"
	config.Seed = &seed
	return config
}

func newTestEngine(t *testing.T, opts ...Option) *GameEngine {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	e, err := NewEngine(createTestConfig(), opts...)
	require.NoError(t, err)
	return e
}

// recordEvents subscribes to every event and returns a pointer to the log
func recordEvents(bus *EventBus) *[]Event {
	var events []Event
	bus.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func redForward() Card {
	return Card{ID: "red-forward", Color: Red, Kind: ColorBound, Effect: Forward}
}

func TestNewEngine_Setup(t *testing.T) {
	bus := NewEventBus()
	events := recordEvents(bus)

	e := newTestEngine(t, WithEventBus(bus))

	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Equal(t, ColorNone, e.Winner())
	assert.Equal(t, DeckSize, e.Deck().Remaining())
	assert.Equal(t, AllColors(), e.Path().ColorsAt(StartPosition))

	created := 0
	built := 0
	for _, ev := range *events {
		switch ev.Type {
		case EventCardCreated:
			created++
		case EventDeckBuilt:
			built++
			assert.Len(t, ev.Cards, DeckSize)
		}
	}
	assert.Equal(t, DeckSize, created)
	assert.Equal(t, 1, built)
	assert.Equal(t, EventDeckBuilt, (*events)[len(*events)-1].Type)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.PathLength = MaxPathLength + 1

	_, err := NewEngine(config)
	assert.Error(t, err)
}

func TestNewEngine_NilConfigUsesDefaults(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPathLength, e.GetConfig().PathLength)
	assert.Equal(t, DefaultPathLength+1, e.Path().Goal())
}

func TestNewEngine_SameSeedSameDeck(t *testing.T) {
	a := newTestEngine(t)
	b := newTestEngine(t)
	c := newTestEngine(t, WithSeed(7))

	assert.Equal(t, a.Deck().DrawPile(), b.Deck().DrawPile())
	assert.NotEqual(t, a.Deck().DrawPile(), c.Deck().DrawPile())
	assert.Equal(t, int64(7), c.Seed())
}

func TestDealHand(t *testing.T) {
	bus := NewEventBus()
	e := newTestEngine(t, WithEventBus(bus))
	top := e.Deck().DrawPile()[:DefaultHandSize]
	events := recordEvents(bus)

	hand, err := e.DealHand(DefaultHandSize)
	require.NoError(t, err)

	assert.Equal(t, top, hand.Cards())
	assert.Equal(t, DeckSize-DefaultHandSize, e.Deck().Remaining())
	assert.Len(t, *events, DefaultHandSize)
	for _, ev := range *events {
		assert.Equal(t, EventCardDrawn, ev.Type)
	}
}

func TestPlayCard_ColorBoundEndToEnd(t *testing.T) {
	bus := NewEventBus()
	e := newTestEngine(t, WithEventBus(bus))
	_, err := e.Path().MoveTurtle(Red, 2)
	require.NoError(t, err)

	card := redForward()
	hand := NewHand(card)
	nextCard := e.Deck().DrawPile()[0]
	events := recordEvents(bus)

	result, err := e.PlayCard(hand, card.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	pos, err := e.Path().PositionOf(Red)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)
	assert.Equal(t, 1, hand.Len(), "hand size is unchanged after a play")
	assert.False(t, hand.Contains(card.ID))
	assert.True(t, hand.Contains(nextCard.ID))
	assert.Equal(t, []Card{card}, e.Deck().DiscardPile())
	assert.Equal(t, DeckSize-1, e.Deck().Remaining())

	assert.Equal(t, []EventType{EventTurtleMoved, EventCardDiscarded, EventCardDrawn}, eventTypes(*events))
	moved := (*events)[0]
	assert.Equal(t, Red, moved.Turtle)
	assert.Equal(t, 2, moved.From)
	assert.Equal(t, 3, moved.To)

	assert.Equal(t, Red, result.Target)
	assert.Equal(t, &nextCard, result.Drawn)
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Equal(t, "The red turtle moved from 2 to 3.", e.GetState(hand).Message)
}

func TestPlayCard_NoMovementStillCyclesCard(t *testing.T) {
	bus := NewEventBus()
	e := newTestEngine(t, WithEventBus(bus))
	card := Card{ID: "red-back", Color: Red, Kind: ColorBound, Effect: Back}
	hand := NewHand(card)
	events := recordEvents(bus)

	result, err := e.PlayCard(hand, card.ID)
	require.NoError(t, err)

	assert.False(t, result.Move.Moved)
	assert.Equal(t, []EventType{EventCardDiscarded, EventCardDrawn}, eventTypes(*events))
	assert.Equal(t, 1, hand.Len())
	assert.Len(t, e.Deck().DiscardPile(), 1)
	assert.Equal(t, e.GetConfig().Messages.NoMovement, e.GetState(hand).Message)
}

func TestPlayCard_NotInHand(t *testing.T) {
	e := newTestEngine(t)
	hand := NewHand(redForward())

	_, err := e.PlayCard(hand, "missing")

	assert.ErrorIs(t, err, ErrInvalidCard)
	assert.Equal(t, 1, hand.Len())
	assert.Equal(t, DeckSize, e.Deck().Remaining())
	assert.Empty(t, e.Deck().DiscardPile())
}

func TestPlayCard_WildcardFlow(t *testing.T) {
	bus := NewEventBus()
	e := newTestEngine(t, WithEventBus(bus))
	wild := Card{ID: "wild", Color: ColorNone, Kind: Wildcard, Effect: Forward}
	hand := NewHand(wild, redForward())
	events := recordEvents(bus)

	result, err := e.PlayCard(hand, wild.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, PhaseAwaitingColor, e.Phase())
	require.NotNil(t, e.Pending())
	assert.Equal(t, AllColors(), e.Pending().Candidates)
	assert.Equal(t, []EventType{EventColorChoiceRequired}, eventTypes(*events))
	assert.Equal(t, 2, hand.Len(), "the card stays in hand until a color is chosen")

	_, err = e.PlayCard(hand, "red-forward")
	assert.ErrorIs(t, err, ErrColorChoicePending)

	result, err = e.ResolveColor(Purple)
	require.NoError(t, err)
	assert.Equal(t, Purple, result.Target)
	assert.Equal(t, ColorNone, result.Card.Color, "the chosen color never overwrites the card")

	pos, err := e.Path().PositionOf(Purple)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Nil(t, e.Pending())
	assert.False(t, hand.Contains(wild.ID))
	assert.Equal(t, 2, hand.Len())
}

func TestResolveColor_InvalidChoiceLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Path().MoveTurtle(Red, 2)
	require.NoError(t, err)
	last := Card{ID: "last", Color: ColorNone, Kind: LastPlace, Effect: DoubleForward}
	hand := NewHand(last)

	_, err = e.PlayCard(hand, last.ID)
	require.NoError(t, err)
	require.Equal(t, []Color{Blue, Purple, Green, Pink}, e.Pending().Candidates)

	_, err = e.ResolveColor(Red)

	assert.ErrorIs(t, err, ErrInvalidColorChoice)
	assert.Equal(t, PhaseAwaitingColor, e.Phase())
	assert.Equal(t, []Card{last}, hand.Cards())
	assert.Equal(t, DeckSize, e.Deck().Remaining())
	assert.Empty(t, e.Deck().DiscardPile())
	redPos, _ := e.Path().PositionOf(Red)
	assert.Equal(t, 2, redPos)

	_, err = e.ResolveColor(Green)
	require.NoError(t, err)
	greenPos, _ := e.Path().PositionOf(Green)
	assert.Equal(t, 2, greenPos)
	assert.Equal(t, []Color{Red, Green}, e.Path().ColorsAt(2))
}

func TestPlayCard_LastPlaceCandidatesBottomToTop(t *testing.T) {
	e := newTestEngine(t)
	for _, c := range AllColors() {
		_, err := e.Path().MoveTurtle(c, 3)
		require.NoError(t, err)
	}
	_, err := e.Path().MoveTurtle(Purple, 1)
	require.NoError(t, err)
	last := Card{ID: "last", Color: ColorNone, Kind: LastPlace, Effect: Forward}
	hand := NewHand(last)

	_, err = e.PlayCard(hand, last.ID)
	require.NoError(t, err)

	assert.Equal(t, []Color{Red, Blue}, e.Pending().Candidates)
}

func TestResolveColor_NoPendingChoice(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ResolveColor(Red)
	assert.ErrorIs(t, err, ErrNoPendingChoice)
	assert.ErrorIs(t, e.CancelColorChoice(), ErrNoPendingChoice)
}

func TestCancelColorChoice(t *testing.T) {
	bus := NewEventBus()
	e := newTestEngine(t, WithEventBus(bus))
	wild := Card{ID: "wild", Color: ColorNone, Kind: Wildcard, Effect: Back}
	hand := NewHand(wild)
	_, err := e.PlayCard(hand, wild.ID)
	require.NoError(t, err)
	events := recordEvents(bus)

	require.NoError(t, e.CancelColorChoice())

	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Nil(t, e.Pending())
	assert.Equal(t, []Card{wild}, hand.Cards())
	assert.Equal(t, DeckSize, e.Deck().Remaining())
	assert.Equal(t, []EventType{EventColorChoiceCancelled}, eventTypes(*events))
}

func TestPlayCard_WinnerDetectedOnce(t *testing.T) {
	bus := NewEventBus()
	e := newTestEngine(t, WithEventBus(bus))
	_, err := e.Path().MoveTurtle(Red, e.Path().Goal()-1)
	require.NoError(t, err)
	hand := NewHand(redForward(), Card{ID: "blue", Color: Blue, Kind: ColorBound, Effect: Forward})
	events := recordEvents(bus)

	result, err := e.PlayCard(hand, "red-forward")
	require.NoError(t, err)

	assert.Equal(t, Red, result.Winner)
	assert.Equal(t, Red, e.Winner())
	assert.Equal(t, PhaseWon, e.Phase())
	assert.True(t, e.IsGameOver())
	assert.Equal(t,
		[]EventType{EventTurtleMoved, EventCardDiscarded, EventCardDrawn, EventWinner},
		eventTypes(*events))
	assert.Equal(t, Red, (*events)[3].Turtle)
	assert.Equal(t, "The red turtle wins the race!", e.GetState(hand).Message)

	_, err = e.PlayCard(hand, "blue")
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestPlayCard_StackArrivalBottomTurtleWins(t *testing.T) {
	e := newTestEngine(t)
	goal := e.Path().Goal()
	_, err := e.Path().MoveTurtle(Red, goal-1)
	require.NoError(t, err)
	_, err = e.Path().MoveTurtle(Blue, goal-1)
	require.NoError(t, err)
	hand := NewHand(redForward())

	result, err := e.PlayCard(hand, "red-forward")
	require.NoError(t, err)

	assert.Equal(t, []Color{Blue}, result.Move.Carried)
	assert.Equal(t, Red, e.Winner())
}

func TestPlayCard_DeckExhausted(t *testing.T) {
	e := newTestEngine(t)
	for e.Deck().Remaining() > 0 {
		_, err := e.Deck().Draw()
		require.NoError(t, err)
	}
	hand := NewHand(redForward(), Card{ID: "blue", Color: Blue, Kind: ColorBound, Effect: Forward})

	result, err := e.PlayCard(hand, "red-forward")

	assert.ErrorIs(t, err, ErrEmptyDeck)
	require.NotNil(t, result)
	assert.Nil(t, result.Drawn)
	assert.True(t, result.Move.Moved)
	assert.Equal(t, PhaseExhausted, e.Phase())
	assert.Equal(t, 1, hand.Len())
	assert.Len(t, e.Deck().DiscardPile(), 1)

	_, err = e.PlayCard(hand, "blue")
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestPlayCard_WinOnLastCardKeepsWin(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Path().MoveTurtle(Red, e.Path().Goal()-1)
	require.NoError(t, err)
	for e.Deck().Remaining() > 0 {
		_, err := e.Deck().Draw()
		require.NoError(t, err)
	}
	hand := NewHand(redForward())

	_, err = e.PlayCard(hand, "red-forward")

	assert.ErrorIs(t, err, ErrEmptyDeck)
	assert.Equal(t, PhaseWon, e.Phase())
	assert.Equal(t, Red, e.Winner())
}

func TestApplyCard_UnknownTurtleIsLoggedNoOp(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e, err := NewEngine(createTestConfig(), WithLogger(zap.New(core)))
	require.NoError(t, err)
	e.path = NewPathModel(DefaultPathLength, []Color{Red})
	wild := Card{ID: "wild", Color: ColorNone, Kind: Wildcard, Effect: Forward}
	hand := NewHand(wild)

	_, err = e.PlayCard(hand, wild.ID)
	require.NoError(t, err)
	result, err := e.ResolveColor(Blue)

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, []Card{wild}, hand.Cards())
	assert.Equal(t, DeckSize, e.Deck().Remaining())
	assert.Empty(t, e.Deck().DiscardPile())
	assert.Equal(t, 1, logs.Len())
}

func TestReset(t *testing.T) {
	e := newTestEngine(t)
	initial := e.Deck().DrawPile()
	hand, err := e.DealHand(DefaultHandSize)
	require.NoError(t, err)

	var colorCard *Card
	for _, c := range hand.Cards() {
		if c.Kind == ColorBound {
			card := c
			colorCard = &card
			break
		}
	}
	if colorCard == nil {
		colorCard = &Card{ID: "red-forward", Color: Red, Kind: ColorBound, Effect: Forward}
		hand.Add(*colorCard)
	}
	_, err = e.PlayCard(hand, colorCard.ID)
	require.NoError(t, err)
	require.Len(t, e.GetPlayHistory(), 1)

	require.NoError(t, e.Reset())

	assert.Equal(t, initial, e.Deck().DrawPile())
	assert.Equal(t, AllColors(), e.Path().ColorsAt(StartPosition))
	assert.Equal(t, PhaseIdle, e.Phase())

	state := e.GetState(nil)
	assert.Equal(t, 1, state.TotalPlays)
	assert.Len(t, state.PlayHistory, 1)
	assert.Empty(t, state.CurrentPlays)
	assert.Equal(t, e.GetConfig().Messages.Welcome, state.Message)
}

func TestGetState(t *testing.T) {
	e := newTestEngine(t)
	hand, err := e.DealHand(DefaultHandSize)
	require.NoError(t, err)

	state := e.GetState(hand)

	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Equal(t, DefaultPathLength, state.PathLength)
	assert.Equal(t, DefaultPathLength+1, state.Goal)
	assert.Len(t, state.Tiles, DefaultPathLength+2)
	assert.Equal(t, AllColors(), state.Tiles[0].Turtles)
	assert.Len(t, state.Positions, 5)
	assert.Len(t, state.Standings, 5)
	assert.Equal(t, hand.Cards(), state.Hand)
	assert.Equal(t, DeckSize-DefaultHandSize, state.DrawRemaining)
	assert.NotNil(t, state.DiscardPile)
	assert.Nil(t, state.Pending)
	assert.Equal(t, ColorNone, state.Winner)
	assert.Equal(t, "engine-test", state.ConfigName)
	assert.False(t, state.GameOver)
	assert.Nil(t, e.GetLastPlay())
}
