// Package cluster holds the spatial grouping primitives shared by expand
// detection, region partitioning and ramp frontier splitting.
package cluster

import (
	"math"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// Vector is a position in up to three dimensions. 2D callers leave Z at 0.
type Vector struct {
	X, Y, Z float64
}

func (v Vector) dist2(o Vector) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

const (
	unvisited = 0
	noise     = -1
)

// DBSCAN groups items by density. An item is a core point when at least
// minPoints *other* items lie within epsilon of it (distance ties included).
// Core points pull every item within epsilon into their cluster; items that
// are never reached from a core point are returned as noise.
//
// Cluster membership is deterministic for a given input set. Cluster order
// follows input order, so callers must not rely on cluster indices.
func DBSCAN[T any](items []T, position func(T) Vector, epsilon float64, minPoints int) (clusters [][]T, noiseItems []T) {
	if len(items) == 0 {
		return nil, nil
	}

	positions := make([]Vector, len(items))
	for i, it := range items {
		positions[i] = position(it)
	}
	index := newBucketIndex(positions, epsilon)

	labels := make([]int, len(items))
	next := 0
	for i := range items {
		if labels[i] != unvisited {
			continue
		}
		neighbors := index.within(i)
		if len(neighbors) < minPoints {
			labels[i] = noise
			continue
		}

		next++
		labels[i] = next
		seeds := neighbors
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == noise {
				// Border point: reachable, but it does not expand the cluster.
				labels[j] = next
				continue
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = next
			if nb := index.within(j); len(nb) >= minPoints {
				seeds = append(seeds, nb...)
			}
		}
	}

	clusters = make([][]T, next)
	for i, l := range labels {
		if l == noise {
			noiseItems = append(noiseItems, items[i])
			continue
		}
		clusters[l-1] = append(clusters[l-1], items[i])
	}
	return clusters, noiseItems
}

// DBSCANCells clusters grid cells in the plane.
func DBSCANCells(cells []model.Cell, epsilon float64, minPoints int) ([][]model.Cell, []model.Cell) {
	return DBSCAN(cells, CellVector, epsilon, minPoints)
}

func CellVector(c model.Cell) Vector {
	return Vector{X: float64(c.X), Y: float64(c.Y)}
}

// bucketIndex hashes positions into cubes of side epsilon so a neighborhood
// query only inspects the 27 surrounding buckets instead of every item.
type bucketIndex struct {
	positions []Vector
	eps2      float64
	size      float64
	buckets   map[[3]int][]int
}

func newBucketIndex(positions []Vector, epsilon float64) *bucketIndex {
	size := epsilon
	if size <= 0 {
		size = 1
	}
	idx := &bucketIndex{
		positions: positions,
		eps2:      epsilon * epsilon,
		size:      size,
		buckets:   make(map[[3]int][]int),
	}
	for i, p := range positions {
		k := idx.key(p)
		idx.buckets[k] = append(idx.buckets[k], i)
	}
	return idx
}

func (b *bucketIndex) key(p Vector) [3]int {
	return [3]int{
		int(math.Floor(p.X / b.size)),
		int(math.Floor(p.Y / b.size)),
		int(math.Floor(p.Z / b.size)),
	}
}

// within returns the indices of every other item at distance <= epsilon of item i.
func (b *bucketIndex) within(i int) []int {
	p := b.positions[i]
	k := b.key(p)
	var out []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				for _, j := range b.buckets[[3]int{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if j != i && b.positions[j].dist2(p) <= b.eps2 {
						out = append(out, j)
					}
				}
			}
		}
	}
	return out
}
