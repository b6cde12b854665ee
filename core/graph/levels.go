package graph

import (
	"github.com/google/uuid"
)

// AssignLevels computes the generation level of every person reachable from
// rootID using breadth-first traversal. The root is level 0, parents are one
// level up (negative), children one level down (positive) and spouses share
// the level of the person that discovered them.
//
// A node is visited at most once: the level it receives is fixed by BFS
// discovery order, not recomputed as shortest path. Graphs with multiple
// relationship paths (remarriage chains) can therefore end up with levels
// that depend on discovery order; that first-discovery behavior is intended.
//
// Persons not connected to the root do not appear in the result.
func AssignLevels(g Graph, rootID uuid.UUID) map[uuid.UUID]int {
	levels := map[uuid.UUID]int{rootID: 0}
	visited := map[uuid.UUID]bool{rootID: true}
	queue := []uuid.UUID{rootID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		currentLevel := levels[currentID]

		node, ok := g[currentID]
		if !ok {
			continue
		}

		for _, parentID := range Sorted(node.Parents) {
			if !visited[parentID] {
				levels[parentID] = currentLevel - 1
				visited[parentID] = true
				queue = append(queue, parentID)
			}
		}

		for _, childID := range Sorted(node.Children) {
			if !visited[childID] {
				levels[childID] = currentLevel + 1
				visited[childID] = true
				queue = append(queue, childID)
			}
		}

		for _, spouseID := range Sorted(node.Spouses) {
			if !visited[spouseID] {
				levels[spouseID] = currentLevel
				visited[spouseID] = true
				queue = append(queue, spouseID)
			}
		}
	}

	return levels
}
