package ql

import (
	"fmt"
	"github.com/sw965/omw/mathx"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
	"math/rand/v2"
)

const policySumTolerance = 1e-9

// Policy is a probability per action index.
type Policy []float64

// NewEpsilonGreedyPolicy gives every action epsilon/n and adds 1-epsilon to
// the first action holding the maximum value.
func NewEpsilonGreedyPolicy(qs []float64, epsilon float64) (Policy, error) {
	n := len(qs)
	if n == 0 {
		return nil, fmt.Errorf("%w: qs must not be empty", ErrInvalidParameter)
	}

	if err := validateEpsilon(epsilon); err != nil {
		return nil, err
	}

	p := make(Policy, n)
	base := epsilon / float64(n)
	for i := range p {
		p[i] = base
	}
	p[floats.MaxIdx(qs)] += 1.0 - epsilon
	return p, nil
}

func (p Policy) Validate(actionN int) error {
	if len(p) != actionN {
		return fmt.Errorf("%w: policy size (%d) does not match actionN (%d)", ErrInvalidParameter, len(p), actionN)
	}

	for i, v := range p {
		if v < 0 || mathx.IsNaN(v) || mathx.IsInf(v, 0) {
			return fmt.Errorf("%w: invalid probability value %f for action: %d", ErrInvalidParameter, v, i)
		}
	}

	if sum := floats.Sum(p); math.Abs(sum-1.0) > policySumTolerance {
		return fmt.Errorf("%w: sum of policy probabilities is %.12g, want 1", ErrInvalidParameter, sum)
	}
	return nil
}

// Greedy returns the first index of the highest probability. For a uniform
// policy (epsilon = 1) that is index 0, not the arg-max of the action values.
func (p Policy) Greedy() int {
	return floats.MaxIdx(p)
}

func (p Policy) Sample(rng *rand.Rand) (int, error) {
	if err := p.Validate(len(p)); err != nil {
		return 0, err
	}
	if rng == nil {
		return 0, fmt.Errorf("%w: rng must not be nil", ErrInvalidParameter)
	}
	c := distuv.NewCategorical(p, rng)
	return int(c.Rand()), nil
}
