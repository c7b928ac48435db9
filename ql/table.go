package ql

import (
	"fmt"
	"slices"
)

// Table maps a state to one value per action. A state that has never been
// accessed reads as all zeros, and the row is materialized on that access.
type Table[S comparable] struct {
	actionN int
	rows    map[S][]float64
}

func NewTable[S comparable](actionN int) (*Table[S], error) {
	if actionN <= 0 {
		return nil, fmt.Errorf("%w: actionN must be positive: actionN=%d", ErrInvalidParameter, actionN)
	}
	return &Table[S]{actionN: actionN, rows: map[S][]float64{}}, nil
}

func (t *Table[S]) ActionN() int {
	return t.actionN
}

func (t *Table[S]) Len() int {
	return len(t.rows)
}

// entry returns the live row for s, inserting a zero row if absent.
func (t *Table[S]) entry(s S) ([]float64, bool) {
	row, ok := t.rows[s]
	if ok {
		return row, false
	}
	row = make([]float64, t.actionN)
	t.rows[s] = row
	return row, true
}

// Get returns a copy of the row for s, materializing it if needed.
func (t *Table[S]) Get(s S) []float64 {
	row, _ := t.entry(s)
	return slices.Clone(row)
}

// Lookup reports the row for s without materializing it.
func (t *Table[S]) Lookup(s S) ([]float64, bool) {
	row, ok := t.rows[s]
	if !ok {
		return nil, false
	}
	return slices.Clone(row), true
}
