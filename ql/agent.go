package ql

import (
	"fmt"
	"github.com/sw965/omw/mathx"
	"github.com/sw965/omw/mathx/randx"
	"gonum.org/v1/gonum/floats"
	"log/slog"
	"math/rand/v2"
)

type Transition[S comparable] struct {
	State     S
	Action    int
	Reward    float64
	NextState S
	Done      bool
}

type options struct {
	epsilon      float64
	fixedEpsilon bool
	rng          *rand.Rand
	logger       *slog.Logger
}

type Option func(*options)

// WithEpsilon fixes the exploration rate instead of decaying it by episode.
func WithEpsilon(epsilon float64) Option {
	return func(o *options) {
		o.epsilon = epsilon
		o.fixedEpsilon = true
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Agent owns its Q table exclusively. Calls on one Agent must not overlap.
type Agent[S comparable] struct {
	q            *Table[S]
	epsilon      float64
	fixedEpsilon bool
	rng          *rand.Rand
	logger       *slog.Logger
}

func NewAgent[S comparable](actionN int, opts ...Option) (*Agent[S], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.fixedEpsilon {
		if err := validateEpsilon(o.epsilon); err != nil {
			return nil, err
		}
	}

	q, err := NewTable[S](actionN)
	if err != nil {
		return nil, err
	}

	if o.rng == nil {
		o.rng = randx.NewPCGFromGlobalSeed()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	a := &Agent[S]{
		q:            q,
		epsilon:      o.epsilon,
		fixedEpsilon: o.fixedEpsilon,
		rng:          o.rng,
		logger:       o.logger,
	}
	a.logger.Debug("ql: agent created", "actionN", actionN, "fixedEpsilon", o.fixedEpsilon, "epsilon", o.epsilon)
	return a, nil
}

func (a *Agent[S]) Q() *Table[S] {
	return a.q
}

func (a *Agent[S]) ActionN() int {
	return a.q.ActionN()
}

func (a *Agent[S]) Epsilon(episode int) (float64, error) {
	if a.fixedEpsilon {
		return a.epsilon, nil
	}
	return DecayingEpsilon(episode)
}

func (a *Agent[S]) entry(s S) []float64 {
	row, created := a.q.entry(s)
	if created {
		a.logger.Debug("ql: state materialized", "state", s, "states", a.q.Len())
	}
	return row
}

// Policy returns the epsilon-greedy distribution for state.
// The epsilon is resolved before the table is touched, so a failure never grows it.
func (a *Agent[S]) Policy(state S, episode int) (Policy, error) {
	epsilon, err := a.Epsilon(episode)
	if err != nil {
		return nil, err
	}
	if err := validateEpsilon(epsilon); err != nil {
		return nil, err
	}

	p, err := NewEpsilonGreedyPolicy(a.entry(state), epsilon)
	if err != nil {
		return nil, err
	}

	if err := p.Validate(a.q.ActionN()); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *Agent[S]) SelectAction(state S, episode int) (int, error) {
	p, err := a.Policy(state, episode)
	if err != nil {
		return 0, err
	}
	return p.Sample(a.rng)
}

// Step applies one Q-learning update. Inputs are validated before the table
// is touched. When done is true, nextState is neither read nor materialized.
func (a *Agent[S]) Step(state S, action int, reward float64, nextState S, done bool, hp Hyperparams) error {
	actionN := a.q.ActionN()
	if action < 0 || action >= actionN {
		return fmt.Errorf("%w: action must be in [0, %d): action=%d", ErrInvalidParameter, actionN, action)
	}

	if mathx.IsNaN(reward) || mathx.IsInf(reward, 0) {
		return fmt.Errorf("%w: reward must be finite: reward=%.6g", ErrInvalidParameter, reward)
	}

	if err := hp.Validate(); err != nil {
		return err
	}

	var nextMaxQ float64
	if !done {
		nextMaxQ = floats.Max(a.entry(nextState))
	}

	row := a.entry(state)
	target := TDTarget(reward, nextMaxQ, hp.Gamma, done)
	old := row[action]
	row[action] = UpdateQ(old, target, hp.Alpha)

	a.logger.Debug("ql: step", "state", state, "action", action, "target", target, "delta", target-old, "q", row[action])
	return nil
}

func (a *Agent[S]) Learn(tr Transition[S], hp Hyperparams) error {
	return a.Step(tr.State, tr.Action, tr.Reward, tr.NextState, tr.Done, hp)
}
