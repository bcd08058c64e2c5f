package mines

import (
	"fmt"
	"math"
	"strings"
)

type GameParams struct {
	Rows        int `json:"rows"`
	Cols        int `json:"cols"`
	HazardCount int `json:"hazard_count"`
}

func (p GameParams) Size() int {
	return p.Rows * p.Cols
}

// Validate checks rows > 0, cols > 0, that rows*cols fits in an int and
// 0 < hazards < rows*cols. The returned error is always a
// [*ConfigurationError].
func (p GameParams) Validate() error {
	switch {
	case p.Rows <= 0 || p.Cols <= 0:
		return &ConfigurationError{p, "rows and columns must be positive"}
	case p.Rows > math.MaxInt/p.Cols:
		return &ConfigurationError{p, "grid is too large"}
	case p.HazardCount <= 0:
		return &ConfigurationError{p, "hazard count must be positive"}
	case p.HazardCount >= p.Size():
		return &ConfigurationError{p, "hazard count must leave at least one safe cell"}
	}
	return nil
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.HazardCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Rows, &p.Cols, &p.HazardCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, nil
}

func (p GameParams) PointInBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}
