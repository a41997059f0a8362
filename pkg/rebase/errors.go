package rebase

import "errors"

// Precondition violations. These signal caller misuse or a corrupted graph
// and are always delivered inside a *PreconditionError.
var (
	ErrUnrelatedBranches = errors.New("branches share no common ancestor")
	ErrTargetNotOnBranch = errors.New("target commit is not on the target branch")
	ErrRevisionCollision = errors.New("revision tag appears twice on one branch")
)

// PreconditionError reports a violated input contract. Errors returned by the
// change algebra are never wrapped in it.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return "rebase: " + e.Op + ": " + e.Err.Error()
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is, or wraps, a *PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func precondition(op string, err error) error {
	return &PreconditionError{Op: op, Err: err}
}
