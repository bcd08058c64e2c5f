package mines

import (
	"fmt"
	"math/rand/v2"
)

// NewGrid allocates a grid, places params.HazardCount hazards uniformly at
// random without replacement and precomputes adjacency counts.
func NewGrid(params GameParams, r *rand.Rand) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("nil random source")
	}

	grid := newEmptyGrid(params.Rows, params.Cols)

	/*
	 * Sparse grids sample positions and resample on collision. Once
	 * hazards take more than half the grid collisions get frequent, so
	 * pick off a candidate list instead.
	 */
	if 2*params.HazardCount <= params.Size() {
		grid.sampleHazards(params.HazardCount, r)
	} else {
		grid.pickHazards(params.HazardCount, r)
	}

	grid.computeAdjacency()

	Log.Debug("grid generated", "seed", params.Seed())
	return grid, nil
}

// NewGridWithHazards builds a grid with hazards at exactly the given
// positions.
func NewGridWithHazards(rows, cols int, hazards []Point) (*Grid, error) {
	params := GameParams{Rows: rows, Cols: cols, HazardCount: len(hazards)}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	grid := newEmptyGrid(rows, cols)
	for _, p := range hazards {
		if !grid.InBounds(p.Row, p.Col) {
			return nil, &ConfigurationError{params, "hazard " + p.String() + " out of bounds"}
		}
		c := grid.at(p.Row, p.Col)
		if c.hazard {
			return nil, &ConfigurationError{params, "duplicate hazard " + p.String()}
		}
		c.hazard = true
	}

	grid.computeAdjacency()
	return grid, nil
}

func (g *Grid) sampleHazards(n int, r *rand.Rand) {
	placed := 0
	for placed < n {
		i := r.IntN(len(g.cells))
		if g.cells[i].hazard {
			continue
		}
		g.cells[i].hazard = true
		placed++
	}
}

func (g *Grid) pickHazards(n int, r *rand.Rand) {
	candidates := make([]int, len(g.cells))
	for i := range candidates {
		candidates[i] = i
	}

	k := len(candidates)
	for range n {
		i := r.IntN(k)
		g.cells[candidates[i]].hazard = true
		k--
		candidates[i] = candidates[k]
	}
}
