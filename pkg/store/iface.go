// iface.go defines the StoreInterface for dependency injection and testing.
//
// The concrete *Store type satisfies this interface. Code that depends on
// the store (Graph, the cmd layer) accepts StoreInterface instead of *Store,
// enabling mock injection in tests.
package store

import "github.com/daviddao/rebasekit/pkg/revision"

// StoreInterface defines the full set of store operations.
// The concrete *Store type implements this interface.
type StoreInterface interface {
	// Close closes the database connection.
	Close() error

	// --- Commits ---

	// PutCommit stores a commit node. Idempotent per node id.
	PutCommit(rec *CommitRecord) error

	// GetCommit retrieves a commit node by id.
	GetCommit(id string) (*CommitRecord, error)

	// ListCommitsByRevision returns every node carrying rev.
	ListCommitsByRevision(rev revision.Tag) ([]CommitRecord, error)

	// CountCommits returns the number of stored nodes.
	CountCommits() (int64, error)

	// --- Branches ---

	// SetBranch creates or moves a branch.
	SetBranch(name, headID string) error

	// GetBranch retrieves a branch by name.
	GetBranch(name string) (*BranchRecord, error)

	// ListBranches returns all branches ordered by name.
	ListBranches() ([]BranchRecord, error)

	// DeleteBranch removes a branch.
	DeleteBranch(name string) error
}

// Compile-time check that *Store implements StoreInterface.
var _ StoreInterface = (*Store)(nil)
