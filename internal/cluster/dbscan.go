package cluster

import (
	"sort"

	"github.com/elliotchance/orderedmap/v2"
)

// Noise is the DBSCAN label of a point that belongs to no cluster.
const Noise = -1

// cosineDistance expects unit vectors. Zero vectors are at distance 1 from
// everything.
func cosineDistance(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	d := 1 - dot
	if d < 0 {
		return 0
	}
	return d
}

// DBSCAN labels vectors with density-based clusters under cosine distance.
// A point is core when at least minSamples points (itself included) lie
// within eps. Clusters are numbered from 0 in order of their first core
// point; border points join the first cluster that reaches them. Unreached
// points are Noise.
func DBSCAN(vectors [][]float32, eps float64, minSamples int) []int {
	n := len(vectors)
	if minSamples < 1 {
		minSamples = 1
	}

	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		neighbors[i] = append(neighbors[i], i)
		for j := i + 1; j < n; j++ {
			if cosineDistance(vectors[i], vectors[j]) <= eps {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}

	core := make([]bool, n)
	for i := range neighbors {
		core[i] = len(neighbors[i]) >= minSamples
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}

	next := 0
	var stack []int
	for i := 0; i < n; i++ {
		if labels[i] != Noise || !core[i] {
			continue
		}
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if labels[p] != Noise {
				continue
			}
			labels[p] = next
			if !core[p] {
				continue
			}
			for _, q := range neighbors[p] {
				if labels[q] == Noise {
					stack = append(stack, q)
				}
			}
		}
		next++
	}
	return labels
}

// Relabel turns raw DBSCAN labels into compact cluster ids starting at 1.
// Ids follow member count, largest first, with ties broken by the first row
// of each cluster. Every noise point becomes its own singleton cluster, so
// singletons come after all multi-member clusters.
func Relabel(labels []int) []int {
	groups := orderedmap.NewOrderedMap[int, []int]()
	for row, label := range labels {
		key := label
		if label == Noise {
			key = -2 - row
		}
		members, _ := groups.Get(key)
		groups.Set(key, append(members, row))
	}

	ordered := make([][]int, 0, groups.Len())
	for el := groups.Front(); el != nil; el = el.Next() {
		ordered = append(ordered, el.Value)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})

	ids := make([]int, len(labels))
	for i, members := range ordered {
		for _, row := range members {
			ids[row] = i + 1
		}
	}
	return ids
}
