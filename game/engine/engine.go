package engine

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Setup
	DealHand(size int) (*Hand, error)
	Reset() error

	// Card-play protocol
	PlayCard(hand *Hand, cardID string) (*PlayResult, error)
	ResolveColor(color Color) (*PlayResult, error)
	CancelColorChoice() error

	// Queries
	Phase() Phase
	Winner() Color
	Pending() *PendingChoice
	IsGameOver() bool
	GetState(hand *Hand) *GameState
	GetConfig() *GameConfig
	Path() *PathModel
	Deck() *Deck
	Events() *EventBus

	// History
	GetPlayHistory() []PlayRecord
	GetLastPlay() *PlayRecord
}

// Option configures a GameEngine at construction
type Option func(*GameEngine)

// WithLogger sets the logger used for defensive warnings
func WithLogger(logger *zap.Logger) Option {
	return func(e *GameEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEventBus publishes engine events on bus. Subscribe before calling
// NewEngine to observe the deck being built.
func WithEventBus(bus *EventBus) Option {
	return func(e *GameEngine) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithSeed fixes the shuffle seed, overriding the config seed
func WithSeed(seed int64) Option {
	return func(e *GameEngine) {
		e.seed = seed
		e.seeded = true
	}
}

type pendingPlay struct {
	card       Card
	hand       *Hand
	candidates []Color
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; hosts serialize calls per game.
type GameEngine struct {
	config *GameConfig
	logger *zap.Logger
	bus    *EventBus
	seed   int64
	seeded bool

	path    *PathModel
	deck    *Deck
	phase   Phase
	winner  Color
	pending *pendingPlay
	message string

	history      []PlayRecord
	currentPlays []PlayRecord
	totalPlays   int
}

// NewEngine creates a game engine and builds the turtles, path and deck.
// A nil config uses DefaultGameConfig.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	cfg := *config
	cfg.applyDefaults()
	if err := ValidateGameConfig(&cfg); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:       &cfg,
		logger:       zap.NewNop(),
		bus:          NewEventBus(),
		history:      []PlayRecord{},
		currentPlays: []PlayRecord{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.seeded {
		if cfg.Seed != nil {
			e.seed = *cfg.Seed
		} else {
			e.seed = time.Now().UnixNano()
		}
	}

	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// setup places every turtle on Start and builds a freshly shuffled deck
func (e *GameEngine) setup() error {
	rng := rand.New(rand.NewSource(e.seed))
	e.path = NewPathModel(e.config.PathLength, AllColors())

	deck, err := BuildDeck(rng, func(card Card) {
		e.publishCard(EventCardCreated, card)
	})
	if err != nil {
		return fmt.Errorf("build deck: %w", err)
	}
	e.deck = deck

	built := NewEvent(EventDeckBuilt)
	built.Cards = deck.DrawPile()
	e.bus.Publish(built)

	e.phase = PhaseIdle
	e.winner = ColorNone
	e.pending = nil
	e.message = e.config.Messages.Welcome

	e.logger.Debug("game set up",
		zap.String("config", e.config.Name),
		zap.Int64("seed", e.seed),
		zap.Int("goal", e.path.Goal()))
	return nil
}

// DealHand draws size cards into a new hand
func (e *GameEngine) DealHand(size int) (*Hand, error) {
	hand := NewHand()
	for i := 0; i < size; i++ {
		card, err := e.deck.Draw()
		if err != nil {
			return hand, fmt.Errorf("deal hand: %w", err)
		}
		hand.Add(card)
		e.publishCard(EventCardDrawn, card)
	}
	return hand, nil
}

// Reset rebuilds the path and deck from the same config and seed. Play
// history is preserved; only the current segment is cleared.
func (e *GameEngine) Reset() error {
	e.currentPlays = []PlayRecord{}
	return e.setup()
}

// PlayCard plays a card from hand. A color-bound card resolves immediately.
// Wildcard and last-place cards switch the engine to PhaseAwaitingColor and
// return a nil result; the play completes with ResolveColor.
func (e *GameEngine) PlayCard(hand *Hand, cardID string) (*PlayResult, error) {
	if e.phase.IsOver() {
		return nil, ErrGameOver
	}
	if e.phase == PhaseAwaitingColor {
		return nil, ErrColorChoicePending
	}

	card, ok := hand.Get(cardID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCard, cardID)
	}

	if !card.NeedsColorChoice() {
		return e.applyCard(card, card.Color, hand)
	}

	candidates := e.candidatesFor(card)
	e.pending = &pendingPlay{card: card, hand: hand, candidates: candidates}
	e.phase = PhaseAwaitingColor
	e.message = e.config.Messages.ChooseColor

	ev := NewEvent(EventColorChoiceRequired)
	ev.Card = &card
	ev.Candidates = append([]Color(nil), candidates...)
	e.bus.Publish(ev)
	return nil, nil
}

// candidatesFor returns the colors a deferred card may move
func (e *GameEngine) candidatesFor(card Card) []Color {
	if card.Kind == LastPlace {
		pos, ok := e.path.FirstOccupiedFromStart()
		if !ok {
			return []Color{}
		}
		return e.path.ColorsAt(pos)
	}
	return AllColors()
}

// ResolveColor completes a pending wildcard or last-place play. A color
// outside the candidate set is rejected and the choice stays pending.
func (e *GameEngine) ResolveColor(color Color) (*PlayResult, error) {
	if e.phase != PhaseAwaitingColor || e.pending == nil {
		return nil, ErrNoPendingChoice
	}
	if !containsColor(e.pending.candidates, color) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidColorChoice, color)
	}

	pending := e.pending
	e.pending = nil
	e.phase = PhaseIdle
	return e.applyCard(pending.card, color, pending.hand)
}

// CancelColorChoice drops a pending play. The card stays in the hand.
func (e *GameEngine) CancelColorChoice() error {
	if e.phase != PhaseAwaitingColor || e.pending == nil {
		return ErrNoPendingChoice
	}

	card := e.pending.card
	e.pending = nil
	e.phase = PhaseIdle

	ev := NewEvent(EventColorChoiceCancelled)
	ev.Card = &card
	e.bus.Publish(ev)
	return nil
}

// applyCard moves the target turtle, cycles the card through the discard
// pile and replaces it from the draw pile, then checks for a winner.
func (e *GameEngine) applyCard(card Card, color Color, hand *Hand) (*PlayResult, error) {
	result := &PlayResult{Card: card, Target: color, Winner: e.winner}

	if !e.path.Has(color) {
		e.logger.Warn("card targets a turtle that is not on the path",
			zap.String("card", card.ID),
			zap.Stringer("color", color))
		result.Skipped = true
		return result, nil
	}

	move, err := e.path.MoveTurtle(color, card.Effect.Steps())
	if err != nil {
		return nil, err
	}
	result.Move = move

	if move.Moved {
		ev := NewEvent(EventTurtleMoved)
		ev.Turtle = move.Turtle
		ev.From = move.From
		ev.To = move.To
		ev.Carried = append([]Color(nil), move.Carried...)
		e.bus.Publish(ev)
		e.message = fmt.Sprintf(e.config.Messages.Moved, color, move.From, move.To)
	} else {
		e.message = e.config.Messages.NoMovement
	}

	hand.Remove(card.ID)
	e.deck.Discard(card)
	e.publishCard(EventCardDiscarded, card)
	e.recordPlay(card, color, move)

	drawn, drawErr := e.deck.Draw()
	if drawErr == nil {
		hand.Add(drawn)
		result.Drawn = &drawn
		e.publishCard(EventCardDrawn, drawn)
	}

	e.checkWinner()
	result.Winner = e.winner

	if drawErr != nil {
		if e.phase != PhaseWon {
			e.phase = PhaseExhausted
			e.message = e.config.Messages.DeckExhausted
		}
		e.logger.Info("draw pile exhausted", zap.String("config", e.config.Name))
		return result, fmt.Errorf("draw replacement card: %w", drawErr)
	}
	return result, nil
}

// checkWinner enters the won phase the first time a turtle is at the Goal
func (e *GameEngine) checkWinner() {
	if e.winner != ColorNone {
		return
	}
	winner := e.path.WinnerAtGoal()
	if winner == ColorNone {
		return
	}

	e.winner = winner
	e.phase = PhaseWon
	e.message = fmt.Sprintf(e.config.Messages.Victory, winner)

	ev := NewEvent(EventWinner)
	ev.Turtle = winner
	ev.To = e.path.Goal()
	e.bus.Publish(ev)
}

func (e *GameEngine) publishCard(eventType EventType, card Card) {
	ev := NewEvent(eventType)
	ev.Card = &card
	e.bus.Publish(ev)
}

func (e *GameEngine) recordPlay(card Card, target Color, move MoveResult) {
	e.totalPlays++
	record := PlayRecord{
		Card:       card,
		Target:     target,
		From:       move.From,
		To:         move.To,
		Carried:    move.Carried,
		Timestamp:  time.Now().Unix(),
		Moved:      move.Moved,
		PlayNumber: e.totalPlays,
	}
	e.history = append(e.history, record)
	e.currentPlays = append(e.currentPlays, record)
}

// Phase returns the current protocol phase
func (e *GameEngine) Phase() Phase {
	return e.phase
}

// Winner returns the winning turtle, or ColorNone while the race is open
func (e *GameEngine) Winner() Color {
	return e.winner
}

// IsGameOver returns whether the game accepts no further plays
func (e *GameEngine) IsGameOver() bool {
	return e.phase.IsOver()
}

// Pending returns the color choice awaiting resolution, if any
func (e *GameEngine) Pending() *PendingChoice {
	if e.pending == nil {
		return nil
	}
	return &PendingChoice{
		Card:       e.pending.card,
		Candidates: append([]Color(nil), e.pending.candidates...),
	}
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

func (e *GameEngine) Path() *PathModel {
	return e.path
}

func (e *GameEngine) Deck() *Deck {
	return e.deck
}

func (e *GameEngine) Events() *EventBus {
	return e.bus
}

// Seed returns the seed the deck was shuffled with
func (e *GameEngine) Seed() int64 {
	return e.seed
}

// GetPlayHistory returns the complete play history
func (e *GameEngine) GetPlayHistory() []PlayRecord {
	return copyPlays(e.history)
}

// GetLastPlay returns the last play made, or nil if no plays
func (e *GameEngine) GetLastPlay() *PlayRecord {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// GetState snapshots the game as seen by the holder of hand
func (e *GameEngine) GetState(hand *Hand) *GameState {
	state := &GameState{
		Phase:             e.phase,
		PathLength:        e.config.PathLength,
		Goal:              e.path.Goal(),
		Tiles:             e.path.Tiles(),
		Positions:         e.path.Positions(),
		Hand:              []Card{},
		DrawRemaining:     e.deck.Remaining(),
		DiscardPile:       e.deck.DiscardPile(),
		Pending:           e.Pending(),
		Winner:            e.winner,
		Message:           e.message,
		ConfigName:        e.config.Name,
		GameOver:          e.phase.IsOver(),
		Standings:         Standings(e.path),
		PlayHistory:       copyPlays(e.history),
		TotalPlays:        e.totalPlays,
		CurrentPlays:      copyPlays(e.currentPlays),
		CurrentPlaysCount: len(e.currentPlays),
	}
	if hand != nil {
		state.Hand = hand.Cards()
	}
	return state
}

func copyPlays(plays []PlayRecord) []PlayRecord {
	out := make([]PlayRecord, len(plays))
	copy(out, plays)
	return out
}

func containsColor(colors []Color, c Color) bool {
	for _, candidate := range colors {
		if candidate == c {
			return true
		}
	}
	return false
}
