// Package rebase relocates branches and loose changes in a commit graph.
//
// Both operations use the sandwich technique. To move a change authored on
// one branch onto another, first rebase it over the inverses of the commits
// it was authored after (peeling local history back to the common
// ancestor), then over the target branch's commits in order. The result
// expresses the same edit as if the target history had happened first.
//
// RebaseBranch additionally recognises commits that appear on both branches
// under the same revision tag (an edit resubmitted after a reconnect, for
// instance). Such commits cancel out: the target's copy is reused and the
// source's copy is neither replayed nor duplicated.
//
// Everything here is pure computation over immutable commits. Nothing is
// mutated, so callers may share graphs across goroutines without locking;
// whoever owns a mutable head pointer must serialise its own updates.
package rebase

import (
	"github.com/golang/glog"

	"github.com/daviddao/rebasekit/pkg/ancestry"
	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/revision"
)

// BranchResult is the outcome of RebaseBranch.
type BranchResult[T any] struct {
	// NewSourceHead is the head of the rebased source branch.
	NewSourceHead *model.Commit[T]
	// SourceChange is the composition of the rollbacks of the source commits
	// past the shared leading run, most recent first, followed by the target
	// commits past that run and the rebased source commits. Applied to the
	// old source head it yields the new source head's state only when every
	// commit pair sharing a revision also carries equal payloads. It is nil
	// when the rebase required no algebra at all.
	SourceChange *T
	// Commits describes which commits left and joined the source branch.
	Commits model.RebasedCommits[T]
}

// RebaseBranch rebases the branch ending at sourceHead onto targetCommit,
// which must lie on the branch ending at targetHead. A nil targetHead means
// targetCommit is itself the target head.
//
// Target commits immediately after targetCommit whose revisions also appear
// on the source branch are absorbed into the new base, so the result may sit
// on a descendant of targetCommit. Source commits sharing a revision with a
// reused target commit are dropped from the new branch; all others keep
// their revision and session and receive a rebased change.
//
// Precondition violations return a *PreconditionError. Errors from alg are
// returned unmodified. On any error the zero BranchResult is returned.
func RebaseBranch[T any](
	alg model.ChangeAlgebra[T],
	mint revision.Minter,
	sourceHead, targetCommit, targetHead *model.Commit[T],
) (BranchResult[T], error) {
	const op = "rebase branch"
	if targetHead == nil {
		targetHead = targetCommit
	}

	var sourcePath, targetPath []*model.Commit[T]
	ancestor := ancestry.FindCommonAncestor(
		ancestry.Into(sourceHead, &sourcePath),
		ancestry.Into(targetHead, &targetPath),
	)
	if ancestor == nil {
		return BranchResult[T]{}, precondition(op, ErrUnrelatedBranches)
	}
	if err := checkDistinctRevisions(sourcePath); err != nil {
		return BranchResult[T]{}, precondition(op, err)
	}
	if err := checkDistinctRevisions(targetPath); err != nil {
		return BranchResult[T]{}, precondition(op, err)
	}

	targetIndex := indexOf(targetPath, targetCommit)
	if targetIndex == -1 {
		// Not past the fork point: either targetCommit is the ancestor or
		// one of its ancestors, and there is nothing to rebase over.
		if !ancestry.IsAncestor(targetCommit, ancestor) {
			return BranchResult[T]{}, precondition(op, ErrTargetNotOnBranch)
		}
		glog.V(2).Infof("[rebase] target %s is behind fork point, nothing to do\n", targetCommit.Revision.Short())
		return BranchResult[T]{
			NewSourceHead: sourceHead,
			Commits:       model.RebasedCommits[T]{NewBase: ancestor},
		}, nil
	}

	// Consume target commits that the source branch already contains. Past
	// targetCommit the scan stops at the first commit the source lacks.
	pending := make(map[revision.Tag]struct{}, len(sourcePath))
	for _, c := range sourcePath {
		pending[c.Revision] = struct{}{}
	}
	newBaseIndex := targetIndex
	for i, c := range targetPath {
		if _, ok := pending[c.Revision]; ok {
			delete(pending, c.Revision)
			if i > targetIndex {
				newBaseIndex = i
			}
		} else if i > targetIndex {
			break
		}
	}
	newBase := targetPath[newBaseIndex]

	commits := model.RebasedCommits[T]{
		NewBase:              newBase,
		DeletedSourceCommits: sourcePath,
		NewSourceCommits:     append([]*model.Commit[T](nil), targetPath[:newBaseIndex+1]...),
	}

	rebasePath := make([]model.TaggedChange[T], 0, newBaseIndex+1+len(sourcePath))
	for _, c := range targetPath[:newBaseIndex+1] {
		rebasePath = append(rebasePath, c.Tagged())
	}

	// A shared leading run contributes nothing on either side.
	remaining := sourcePath
	for len(remaining) > 0 && len(rebasePath) > 0 && remaining[0].Revision == rebasePath[0].Revision {
		remaining = remaining[1:]
		rebasePath = rebasePath[1:]
	}

	newHead := newBase
	if len(rebasePath) == 0 {
		for _, c := range remaining {
			newHead = MintCommit(newHead, c)
			commits.NewSourceCommits = append(commits.NewSourceCommits, newHead)
		}
		glog.V(2).Infof("[rebase] fast-forward %d commit(s) onto %s\n", len(remaining), newBase.Revision.Short())
		return BranchResult[T]{NewSourceHead: newHead, Commits: commits}, nil
	}

	// undo holds rollback inverses in the order their commits were visited;
	// they are applied most recent first.
	var undo []model.TaggedChange[T]
	rebased := 0
	for _, c := range remaining {
		if _, ok := pending[c.Revision]; ok {
			change, err := rebaseOverChanges(alg, c.Change, sandwich(undo, rebasePath))
			if err != nil {
				return BranchResult[T]{}, err
			}
			newHead = &model.Commit[T]{
				Revision:  c.Revision,
				SessionID: c.SessionID,
				Change:    change,
				Parent:    newHead,
			}
			commits.NewSourceCommits = append(commits.NewSourceCommits, newHead)
			rebasePath = append(rebasePath, newHead.Tagged())
			rebased++
		}
		inv, err := rollbackInverse(alg, mint, c)
		if err != nil {
			return BranchResult[T]{}, err
		}
		undo = append(undo, inv)
	}

	net, err := alg.Compose(sandwich(undo, rebasePath))
	if err != nil {
		return BranchResult[T]{}, err
	}
	glog.V(2).Infof("[rebase] rebased %d of %d source commit(s) onto %s (%d cancelled)\n",
		rebased, len(sourcePath), newBase.Revision.Short(), len(sourcePath)-len(pending))
	return BranchResult[T]{
		NewSourceHead: newHead,
		SourceChange:  &net,
		Commits:       commits,
	}, nil
}

// RebaseChange rebases a change that was authored against sourceHead so that
// it applies on top of targetHead. No commits are minted.
func RebaseChange[T any](
	alg model.ChangeAlgebra[T],
	mint revision.Minter,
	change T,
	sourceHead, targetHead *model.Commit[T],
) (T, error) {
	var sourcePath, targetPath []*model.Commit[T]
	ancestor := ancestry.FindCommonAncestor(
		ancestry.Into(sourceHead, &sourcePath),
		ancestry.Into(targetHead, &targetPath),
	)
	if ancestor == nil {
		var zero T
		return zero, precondition("rebase change", ErrUnrelatedBranches)
	}

	over := make([]model.TaggedChange[T], 0, len(sourcePath)+len(targetPath))
	for i := len(sourcePath) - 1; i >= 0; i-- {
		inv, err := rollbackInverse(alg, mint, sourcePath[i])
		if err != nil {
			var zero T
			return zero, err
		}
		over = append(over, inv)
	}
	for _, c := range targetPath {
		over = append(over, c.Tagged())
	}
	return rebaseOverChanges(alg, change, over)
}

// rebaseOverChanges folds alg.Rebase over changes in order.
func rebaseOverChanges[T any](alg model.ChangeAlgebra[T], change T, changes []model.TaggedChange[T]) (T, error) {
	for _, over := range changes {
		var err error
		change, err = alg.Rebase(change, over)
		if err != nil {
			var zero T
			return zero, err
		}
	}
	return change, nil
}

// sandwich returns undo reversed followed by redo.
func sandwich[T any](undo, redo []model.TaggedChange[T]) []model.TaggedChange[T] {
	out := make([]model.TaggedChange[T], 0, len(undo)+len(redo))
	for i := len(undo) - 1; i >= 0; i-- {
		out = append(out, undo[i])
	}
	return append(out, redo...)
}

func indexOf[T any](path []*model.Commit[T], c *model.Commit[T]) int {
	for i, p := range path {
		if p == c {
			return i
		}
	}
	return -1
}

func checkDistinctRevisions[T any](path []*model.Commit[T]) error {
	seen := make(map[revision.Tag]struct{}, len(path))
	for _, c := range path {
		if _, dup := seen[c.Revision]; dup {
			return ErrRevisionCollision
		}
		seen[c.Revision] = struct{}{}
	}
	return nil
}
