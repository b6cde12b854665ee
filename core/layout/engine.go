package layout

import (
	"sort"

	"github.com/censustools/kintree/core/graph"
	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
)

// Position is a 2D coordinate for one tree node. Coordinates are relative to
// the root generation (centered on x=0); translating them into an absolute
// viewport is up to the rendering layer.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Engine calculates positions for family tree nodes using a hierarchical
// layout with family grouping.
type Engine struct {
	config model.LayoutConfig
}

// NewEngine creates a layout engine. A nil config uses the default geometry.
func NewEngine(config *model.LayoutConfig) *Engine {
	if config == nil {
		c := model.DefaultLayoutConfig()
		config = &c
	}
	return &Engine{config: *config}
}

// ComputeLayout calculates a position for every person reachable from the
// center person (or the first person if no center is given, uuid.Nil meaning
// unset). Persons outside the root's connected component get no position;
// the engine lays out one family component at a time.
//
// The result is deterministic: identical inputs produce identical layouts.
func (e *Engine) ComputeLayout(persons []*model.Person, relationships []*model.Relationship, centerID uuid.UUID) map[uuid.UUID]Position {
	positions := map[uuid.UUID]Position{}
	if len(persons) == 0 {
		return positions
	}

	g := graph.Build(relationships)

	rootID := persons[0].ID
	if centerID != uuid.Nil {
		for _, p := range persons {
			if p.ID == centerID {
				rootID = centerID
				break
			}
		}
	}

	levels := graph.AssignLevels(g, rootID)

	levelGroups := map[int][]uuid.UUID{}
	for id, level := range levels {
		levelGroups[level] = append(levelGroups[level], id)
	}

	sortedLevels := make([]int, 0, len(levelGroups))
	for level := range levelGroups {
		sortedLevels = append(sortedLevels, level)
	}
	sort.Ints(sortedLevels)

	for _, level := range sortedLevels {
		ids := levelGroups[level]
		graph.SortIDs(ids)

		y := float64(level) * (e.config.NodeHeight + e.config.LevelSpacing)

		families := e.groupFamilies(ids, g, levels)

		totalWidth := e.levelWidth(families)
		currentX := -totalWidth / 2

		for _, family := range families {
			groupWidth := float64(len(family))*(e.config.NodeWidth+e.config.HorizontalSpacing) - e.config.HorizontalSpacing

			for i, id := range family {
				x := currentX + float64(i)*(e.config.NodeWidth+e.config.HorizontalSpacing)
				positions[id] = Position{X: x, Y: y}
			}

			currentX += groupWidth + e.config.HorizontalSpacing*2
		}
	}

	e.centerUnderParents(positions, g, levelGroups, sortedLevels)

	return positions
}

// groupFamilies groups the persons of one generation into family blocks:
// spouses recorded at this exact level stay together, everyone else is a
// single. A spouse leveled elsewhere by BFS is treated as a single here.
func (e *Engine) groupFamilies(ids []uuid.UUID, g graph.Graph, levels map[uuid.UUID]int) [][]uuid.UUID {
	present := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}

	var families [][]uuid.UUID
	processed := map[uuid.UUID]bool{}

	for _, id := range ids {
		if processed[id] {
			continue
		}

		family := []uuid.UUID{id}
		if node, ok := g[id]; ok {
			for _, spouseID := range graph.Sorted(node.Spouses) {
				if present[spouseID] && !processed[spouseID] && levels[spouseID] == levels[id] {
					family = append(family, spouseID)
					processed[spouseID] = true
				}
			}
		}

		// Sort for consistent positioning within the block
		graph.SortIDs(family)
		families = append(families, family)
		processed[id] = true
	}

	return families
}

// levelWidth calculates the total width needed for a generation
func (e *Engine) levelWidth(families [][]uuid.UUID) float64 {
	totalWidth := 0.0
	for i, family := range families {
		totalWidth += float64(len(family))*(e.config.NodeWidth+e.config.HorizontalSpacing) - e.config.HorizontalSpacing
		if i < len(families)-1 {
			totalWidth += e.config.HorizontalSpacing * 2
		}
	}
	return totalWidth
}

// centerUnderParents recenters children below their parents, one generation
// at a time in ascending level order. A child with two positioned parents
// moves to the midpoint between them, a child with exactly one positioned
// parent moves directly under it. Children with no tracked parents or more
// than two keep their block position.
func (e *Engine) centerUnderParents(positions map[uuid.UUID]Position, g graph.Graph, levelGroups map[int][]uuid.UUID, sortedLevels []int) {
	for _, level := range sortedLevels {
		for _, id := range levelGroups[level] {
			node, ok := g[id]
			if !ok || len(node.Parents) == 0 || len(node.Parents) > 2 {
				continue
			}

			var parentXs []float64
			for _, parentID := range graph.Sorted(node.Parents) {
				if parentPos, ok := positions[parentID]; ok {
					parentXs = append(parentXs, parentPos.X)
				}
			}

			pos := positions[id]
			switch len(parentXs) {
			case 2:
				pos.X = (parentXs[0] + parentXs[1]) / 2
				positions[id] = pos
			case 1:
				pos.X = parentXs[0]
				positions[id] = pos
			}
		}
	}
}
