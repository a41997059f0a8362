package rebase

import (
	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/revision"
)

// MintCommit returns a new commit with toCopy's revision, session and change,
// parented on parent. toCopy is not modified.
func MintCommit[T any](parent, toCopy *model.Commit[T]) *model.Commit[T] {
	return &model.Commit[T]{
		Revision:  toCopy.Revision,
		SessionID: toCopy.SessionID,
		Change:    toCopy.Change,
		Parent:    parent,
	}
}

// NewCommit authors a commit carrying change on top of parent under a fresh
// revision. A nil parent makes a root.
func NewCommit[T any](parent *model.Commit[T], session model.SessionID, change T, mint revision.Minter) *model.Commit[T] {
	return &model.Commit[T]{
		Revision:  mint(),
		SessionID: session,
		Change:    change,
		Parent:    parent,
	}
}

// TagRollbackInverse wraps an inverse change. newTag identifies the inverse
// itself; rolledBack is the revision of the commit it undoes.
func TagRollbackInverse[T any](change T, newTag, rolledBack revision.Tag) model.TaggedChange[T] {
	return model.TaggedChange[T]{
		Change:     change,
		Revision:   newTag,
		RollbackOf: rolledBack,
	}
}

// rollbackInverse inverts c through the algebra and tags the result as a
// rollback of c.
func rollbackInverse[T any](alg model.ChangeAlgebra[T], mint revision.Minter, c *model.Commit[T]) (model.TaggedChange[T], error) {
	inv, err := alg.Invert(c, true)
	if err != nil {
		return model.TaggedChange[T]{}, err
	}
	return TagRollbackInverse(inv, mint(), c.Revision), nil
}
