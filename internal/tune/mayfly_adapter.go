package tune

import (
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MinPopSize is the smallest population the mayfly library accepts.
const MinPopSize = 20

// MayflyAdapter runs the mayfly algorithm behind the Optimizer interface.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a mayfly optimizer. Populations below MinPopSize are raised to it.
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	if popSize < MinPopSize {
		popSize = MinPopSize
	}
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run implements Optimizer. The library takes scalar bounds, so the bounds
// of the first dimension apply to all of them.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Fall back to the lower corner of the box.
		start := append([]float64(nil), lower[:dim]...)
		return start, eval(start)
	}
	return result.GlobalBest.Position, result.GlobalBest.Cost
}
