package engine

import (
	"fmt"
	"strings"
)

// Color identifies a turtle. ColorNone only appears on cards whose color
// is chosen when they are played.
type Color int

const (
	ColorNone Color = iota
	Red
	Blue
	Purple
	Green
	Pink
)

const (
	// Path and hand limits
	DefaultPathLength = 8
	DefaultHandSize   = 5
	MinPathLength     = 1
	MaxPathLength     = 30
	MinHandSize       = 1
	MaxHandSize       = 10

	// StartPosition is the tile every turtle begins on
	StartPosition = 0
)

var colorNames = map[Color]string{
	ColorNone: "none",
	Red:       "red",
	Blue:      "blue",
	Purple:    "purple",
	Green:     "green",
	Pink:      "pink",
}

// AllColors returns the turtle colors in canonical order.
func AllColors() []Color {
	return []Color{Red, Blue, Purple, Green, Pink}
}

// String returns the lowercase color name
func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// IsTurtle reports whether c names one of the five turtles
func (c Color) IsTurtle() bool {
	return c >= Red && c <= Pink
}

// ParseColor converts a color name (case-insensitive) into a Color
func ParseColor(name string) (Color, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for c, n := range colorNames {
		if n == normalized {
			return c, nil
		}
	}
	return ColorNone, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CardKind determines how a card's target turtle is selected
type CardKind string

const (
	ColorBound CardKind = "color"
	Wildcard   CardKind = "wildcard"
	LastPlace  CardKind = "last_place"
)

// Effect is the movement a card applies to its target turtle
type Effect string

const (
	Forward       Effect = "forward"
	DoubleForward Effect = "double_forward"
	Back          Effect = "back"
)

// Steps returns the signed displacement of the effect
func (e Effect) Steps() int {
	switch e {
	case Forward:
		return 1
	case DoubleForward:
		return 2
	case Back:
		return -1
	}
	return 0
}

// Card is an immutable playing card. Color is ColorNone for wildcard and
// last-place cards; the chosen color never overwrites it.
type Card struct {
	ID     string   `json:"id"`
	Color  Color    `json:"color"`
	Kind   CardKind `json:"kind"`
	Effect Effect   `json:"effect"`
}

// NeedsColorChoice reports whether playing the card defers to a color pick
func (c Card) NeedsColorChoice() bool {
	return c.Kind != ColorBound
}

// Label renders the card for logs and text views, e.g. "red +1" or "wildcard -1"
func (c Card) Label() string {
	target := c.Color.String()
	if c.Kind != ColorBound {
		target = string(c.Kind)
	}
	return fmt.Sprintf("%s %+d", target, c.Effect.Steps())
}

// Phase is the card-play protocol state of a game
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseAwaitingColor Phase = "awaiting_color"
	PhaseWon           Phase = "won"
	PhaseExhausted     Phase = "exhausted"
)

// IsOver reports whether the phase accepts no further plays
func (p Phase) IsOver() bool {
	return p == PhaseWon || p == PhaseExhausted
}

// PendingChoice describes a played card waiting for a color selection
type PendingChoice struct {
	Card       Card    `json:"card"`
	Candidates []Color `json:"candidates"`
}

// TileState lists the turtles on one position, bottom of the stack first
type TileState struct {
	Position int     `json:"position"`
	Turtles  []Color `json:"turtles"`
}

// MoveResult describes the outcome of one turtle movement
type MoveResult struct {
	Turtle  Color   `json:"turtle"`
	From    int     `json:"from"`
	To      int     `json:"to"`
	Carried []Color `json:"carried,omitempty"`
	Moved   bool    `json:"moved"`
}

// PlayResult reports what a completed card play did
type PlayResult struct {
	Card    Card       `json:"card"`
	Target  Color      `json:"target"`
	Move    MoveResult `json:"move"`
	Drawn   *Card      `json:"drawn,omitempty"`
	Skipped bool       `json:"skipped,omitempty"`
	Winner  Color      `json:"winner"`
}

// GameState is a read-only snapshot of a game for hosts and views
type GameState struct {
	Phase         Phase          `json:"phase"`
	PathLength    int            `json:"path_length"`
	Goal          int            `json:"goal"`
	Tiles         []TileState    `json:"tiles"`
	Positions     map[Color]int  `json:"positions"`
	Standings     []Color        `json:"standings"`
	Hand          []Card         `json:"hand"`
	DrawRemaining int            `json:"draw_remaining"`
	DiscardPile   []Card         `json:"discard_pile"`
	Pending       *PendingChoice `json:"pending,omitempty"`
	Winner        Color          `json:"winner"`
	Message       string         `json:"message"`
	ConfigName    string         `json:"config_name"`
	GameOver      bool           `json:"game_over"`

	// PlayHistory is cumulative across resets; CurrentPlays only covers
	// plays since the last reset.
	PlayHistory       []PlayRecord `json:"play_history"`
	TotalPlays        int          `json:"total_plays"`
	CurrentPlays      []PlayRecord `json:"current_plays"`
	CurrentPlaysCount int          `json:"current_plays_count"`
}

// PlayRecord represents a single resolved card play in the game history
type PlayRecord struct {
	Card       Card    `json:"card"`
	Target     Color   `json:"target"`
	From       int     `json:"from"`
	To         int     `json:"to"`
	Carried    []Color `json:"carried,omitempty"`
	Timestamp  int64   `json:"timestamp"`
	Moved      bool    `json:"moved"`
	PlayNumber int     `json:"play_number"`
}
