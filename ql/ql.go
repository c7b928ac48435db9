// Package ql provides a tabular Q-learning agent with an epsilon-greedy policy.
//
// An Agent is driven one step at a time by an external loop: SelectAction picks
// an action for the current state, and Step feeds back the observed transition.
// An Agent is not safe for concurrent use.
package ql

import (
	"errors"
	"fmt"
	"github.com/sw965/omw/mathx"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUndefinedEpsilon = errors.New("undefined epsilon")
)

const DefaultActionN = 6

type Hyperparams struct {
	// learning rate in (0, 1]
	Alpha float64
	// discount rate in [0, 1]
	Gamma float64
}

func DefaultHyperparams() Hyperparams {
	return Hyperparams{Alpha: 0.005, Gamma: 0.95}
}

func (h Hyperparams) Validate() error {
	if mathx.IsNaN(h.Alpha) || h.Alpha <= 0 || h.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1]: alpha=%.6g", ErrInvalidParameter, h.Alpha)
	}
	if mathx.IsNaN(h.Gamma) || h.Gamma < 0 || h.Gamma > 1 {
		return fmt.Errorf("%w: gamma must be in [0, 1]: gamma=%.6g", ErrInvalidParameter, h.Gamma)
	}
	return nil
}

// TDTarget returns the bootstrapped return. A terminal transition has no future.
func TDTarget(reward, nextMaxQ, gamma float64, done bool) float64 {
	if done {
		return reward
	}
	return reward + gamma*nextMaxQ
}

func UpdateQ(q, target, alpha float64) float64 {
	delta := target - q
	return q + alpha*delta
}

func validateEpsilon(epsilon float64) error {
	if mathx.IsNaN(epsilon) || epsilon < 0 || epsilon > 1 {
		return fmt.Errorf("%w: epsilon must be in [0, 1]: epsilon=%.6g", ErrInvalidParameter, epsilon)
	}
	return nil
}

// DecayingEpsilon returns 1/episode, the schedule used when no fixed epsilon is set.
func DecayingEpsilon(episode int) (float64, error) {
	if episode <= 0 {
		return 0, fmt.Errorf("%w: episode must be >= 1: episode=%d", ErrUndefinedEpsilon, episode)
	}
	return 1.0 / float64(episode), nil
}
