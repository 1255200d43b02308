package engine

import "sort"

// Standings ranks the turtles from leader to last. A turtle further along
// the path ranks higher; within a stack, the turtle on top ranks higher,
// except at the Goal where arrival order decides.
func Standings(path *PathModel) []Color {
	type entry struct {
		color Color
		pos   int
		level int
	}

	var entries []entry
	for pos := path.Goal(); pos >= StartPosition; pos-- {
		for level, c := range path.ColorsAt(pos) {
			entries = append(entries, entry{color: c, pos: pos, level: level})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].pos != entries[j].pos {
			return entries[i].pos > entries[j].pos
		}
		if entries[i].pos == path.Goal() {
			return entries[i].level < entries[j].level
		}
		return entries[i].level > entries[j].level
	})

	out := make([]Color, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.color)
	}
	return out
}

// CountByKind tallies cards by kind
func CountByKind(cards []Card) map[CardKind]int {
	counts := make(map[CardKind]int)
	for _, c := range cards {
		counts[c.Kind]++
	}
	return counts
}

// CountByColor tallies color-bound cards by color
func CountByColor(cards []Card) map[Color]int {
	counts := make(map[Color]int)
	for _, c := range cards {
		if c.Kind == ColorBound {
			counts[c.Color]++
		}
	}
	return counts
}
