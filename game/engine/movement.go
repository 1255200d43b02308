package engine

import (
	"fmt"
	"sort"
)

// carrier is what a turtle rests on: another turtle, or a tile when turtle
// is ColorNone.
type carrier struct {
	turtle Color
	tile   int
}

type turtle struct {
	color Color
	on    carrier
	// seq orders arrivals; a rider always has a larger seq than its carrier
	seq uint64
}

// PathModel tracks turtle positions along the path from Start (0) to Goal.
// Every turtle has exactly one carrier and every carrier chain ends on a
// tile, so a turtle's position is the tile at the bottom of its chain.
type PathModel struct {
	goal    int
	turtles map[Color]*turtle
	nextSeq uint64
}

// NewPathModel places the given turtles directly on the Start tile in order.
func NewPathModel(pathLength int, colors []Color) *PathModel {
	p := &PathModel{
		goal:    pathLength + 1,
		turtles: make(map[Color]*turtle, len(colors)),
	}
	for _, c := range colors {
		p.nextSeq++
		p.turtles[c] = &turtle{
			color: c,
			on:    carrier{turtle: ColorNone, tile: StartPosition},
			seq:   p.nextSeq,
		}
	}
	return p
}

// Goal returns the last position of the path
func (p *PathModel) Goal() int {
	return p.goal
}

// Has reports whether a turtle of color c is on the path
func (p *PathModel) Has(c Color) bool {
	_, ok := p.turtles[c]
	return ok
}

// Turtles returns the colors on the path in canonical order
func (p *PathModel) Turtles() []Color {
	colors := make([]Color, 0, len(p.turtles))
	for c := range p.turtles {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
	return colors
}

// PositionOf resolves the tile a turtle is on by following its carrier chain
func (p *PathModel) PositionOf(c Color) (int, error) {
	t, ok := p.turtles[c]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTurtle, c)
	}
	return p.position(t), nil
}

func (p *PathModel) position(t *turtle) int {
	for t.on.turtle != ColorNone {
		t = p.turtles[t.on.turtle]
	}
	return t.on.tile
}

// occupants returns the turtles at pos, bottom of the stack first
func (p *PathModel) occupants(pos int) []*turtle {
	var out []*turtle
	for _, t := range p.turtles {
		if p.position(t) == pos {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// TopOccupant returns the most recently arrived turtle at pos, or ColorNone
// when the tile is empty. The top occupant never carries a rider.
func (p *PathModel) TopOccupant(pos int) Color {
	occ := p.occupants(pos)
	if len(occ) == 0 {
		return ColorNone
	}
	return occ[len(occ)-1].color
}

// ColorsAt lists the turtles at pos from the bottom of the stack to the top
func (p *PathModel) ColorsAt(pos int) []Color {
	occ := p.occupants(pos)
	colors := make([]Color, 0, len(occ))
	for _, t := range occ {
		colors = append(colors, t.color)
	}
	return colors
}

// FirstOccupiedFromStart scans from Start toward Goal and returns the first
// position holding at least one turtle.
func (p *PathModel) FirstOccupiedFromStart() (int, bool) {
	for pos := StartPosition; pos <= p.goal; pos++ {
		if len(p.occupants(pos)) > 0 {
			return pos, true
		}
	}
	return 0, false
}

// WinnerAtGoal returns the first turtle that reached the Goal, or ColorNone
func (p *PathModel) WinnerAtGoal() Color {
	occ := p.occupants(p.goal)
	if len(occ) == 0 {
		return ColorNone
	}
	return occ[0].color
}

// MoveTurtle moves a turtle by delta positions, clamped to [Start, Goal],
// carrying every turtle stacked on it. The turtle lands on top of the
// destination stack. A move that resolves to the current position changes
// nothing.
func (p *PathModel) MoveTurtle(c Color, delta int) (MoveResult, error) {
	t, ok := p.turtles[c]
	if !ok {
		return MoveResult{Turtle: c}, fmt.Errorf("%w: %s", ErrUnknownTurtle, c)
	}

	from := p.position(t)
	to := clampPosition(from+delta, StartPosition, p.goal)
	result := MoveResult{Turtle: c, From: from, To: to}
	if to == from {
		return result, nil
	}

	group := p.group(t)
	if top := p.TopOccupant(to); top != ColorNone {
		t.on = carrier{turtle: top}
	} else {
		t.on = carrier{turtle: ColorNone, tile: to}
	}

	// Restamp bottom to top so the moved group sits above the destination stack
	for _, member := range group {
		p.nextSeq++
		member.seq = p.nextSeq
	}

	for _, member := range group[1:] {
		result.Carried = append(result.Carried, member.color)
	}
	result.Moved = true
	return result, nil
}

// group returns root and every turtle it carries, bottom first
func (p *PathModel) group(root *turtle) []*turtle {
	members := []*turtle{root}
	for i := 0; i < len(members); i++ {
		for _, other := range p.turtles {
			if other.on.turtle == members[i].color {
				members = append(members, other)
			}
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].seq < members[j].seq })
	return members
}

// Tiles snapshots every position from Start to Goal with its stack
func (p *PathModel) Tiles() []TileState {
	tiles := make([]TileState, 0, p.goal+1)
	for pos := StartPosition; pos <= p.goal; pos++ {
		tiles = append(tiles, TileState{Position: pos, Turtles: p.ColorsAt(pos)})
	}
	return tiles
}

// Positions maps every turtle to its current position
func (p *PathModel) Positions() map[Color]int {
	positions := make(map[Color]int, len(p.turtles))
	for c, t := range p.turtles {
		positions[c] = p.position(t)
	}
	return positions
}

func clampPosition(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
