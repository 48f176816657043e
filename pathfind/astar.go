package pathfind

import (
	"container/heap"
	"math"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// Terrain is the walkability query A* needs.
type Terrain interface {
	IsWalkable(c model.Cell, considerObstacles bool) bool
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// astar finds a path from start to goal over 8-connected walkable cells.
// Diagonal steps may not cut the corner of a blocked cell. Returns nil if
// either end is blocked or no path exists.
func astar(t Terrain, start, goal model.Cell, considerObstacles bool) []model.Cell {
	if !t.IsWalkable(start, considerObstacles) || !t.IsWalkable(goal, considerObstacles) {
		return nil
	}
	if start == goal {
		return []model.Cell{start}
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{c: start, g: 0, f: heuristic(start, goal)})

	came := make(map[model.Cell]model.Cell)
	gScore := map[model.Cell]float64{start: 0}
	closed := make(map[model.Cell]bool)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.c == goal {
			return reconstructPath(came, goal)
		}
		if closed[cur.c] {
			continue
		}
		closed[cur.c] = true

		for _, d := range dirs {
			next := cur.c.Add(d[0], d[1])
			if !t.IsWalkable(next, considerObstacles) {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				if !t.IsWalkable(cur.c.Add(d[0], 0), considerObstacles) || !t.IsWalkable(cur.c.Add(0, d[1]), considerObstacles) {
					continue
				}
				cost = math.Sqrt2
			}
			tentG := gScore[cur.c] + cost
			if old, ok := gScore[next]; ok && tentG >= old {
				continue
			}
			gScore[next] = tentG
			came[next] = cur.c
			heap.Push(open, &node{c: next, g: tentG, f: tentG + heuristic(next, goal)})
		}
	}
	return nil
}

// heuristic is the octile distance, admissible for 8-connected moves.
func heuristic(a, b model.Cell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
}

func reconstructPath(came map[model.Cell]model.Cell, goal model.Cell) []model.Cell {
	path := []model.Cell{goal}
	cur := goal
	for {
		prev, ok := came[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Length is the travelled distance along a path, counting diagonal steps as sqrt(2).
func Length(path []model.Cell) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i-1].Dist(path[i])
	}
	return total
}

// --- Priority queue ---

type node struct {
	c    model.Cell
	g, f float64
}

type nodeHeap []*node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
