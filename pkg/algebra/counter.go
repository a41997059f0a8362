// Package algebra provides ready-made change algebras.
//
// Counter is the simplest useful algebra: every change adds a signed delta
// to a shared integer. Additions commute, so rebasing is the identity and
// the interesting behaviour of the engine (which commits get replayed, which
// cancel out, what the net change is) is easy to check by arithmetic.
package algebra

import "github.com/daviddao/rebasekit/pkg/model"

// Counter implements model.ChangeAlgebra[int64].
type Counter struct{}

var _ model.ChangeAlgebra[int64] = Counter{}

// Rebase returns change unchanged; integer additions commute.
func (Counter) Rebase(change int64, _ model.TaggedChange[int64]) (int64, error) {
	return change, nil
}

// Invert negates the commit's delta.
func (Counter) Invert(commit *model.Commit[int64], _ bool) (int64, error) {
	return -commit.Change, nil
}

// Compose sums the deltas.
func (Counter) Compose(changes []model.TaggedChange[int64]) (int64, error) {
	var sum int64
	for _, c := range changes {
		sum += c.Change
	}
	return sum, nil
}

// State returns the counter value reached by applying every change from the
// root of head's branch to head.
func State(head *model.Commit[int64]) int64 {
	var v int64
	for c := head; c != nil; c = c.Parent {
		v += c.Change
	}
	return v
}
