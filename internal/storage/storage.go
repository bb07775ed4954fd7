// Package storage defines the interface for issue storage backends.
package storage

import (
	"context"

	"github.com/dufangshi/issues/internal/types"
)

// Storage is the persistence boundary for issue records. A record is
// stored and replaced as one document: its embedded assignees, nodes,
// tags and comments are written together with the scalar fields, and a
// ReplaceIssue is observed by later reads either fully applied or not at
// all.
//
// The store does no locking across read-modify-write cycles. Two callers
// computing an update against the same snapshot and both calling
// ReplaceIssue race, and the later replace wins in full (last write wins
// at whole-document granularity). Comment appends built on GetIssue +
// ReplaceIssue share the same lost-update window.
type Storage interface {
	// CreateIssue persists a new record. It assigns an issue ID when the
	// draft has none, stamps createdAt/updatedAt, and defaults status and
	// priority. Fails with types.ErrConflict when the ID is already used.
	CreateIssue(ctx context.Context, issue *types.Issue) (*types.Issue, error)

	// GetIssue fetches one record by ID. Fails with types.ErrNotFound
	// when absent.
	GetIssue(ctx context.Context, issueID string) (*types.Issue, error)

	// FindIssues returns the records matching every present filter field,
	// newest-created first. Zero matches is an empty result, not an error.
	FindIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, error)

	// ReplaceIssue atomically overwrites the stored document keyed by the
	// record's issue ID. Fails with types.ErrNotFound when the key no
	// longer exists; the previously stored record stays intact on failure.
	ReplaceIssue(ctx context.Context, issue *types.Issue) error

	// DeleteIssue removes a record. Deleting an absent ID fails with
	// types.ErrNotFound.
	DeleteIssue(ctx context.Context, issueID string) error

	// GetStatistics returns per-status counts for one tree.
	GetStatistics(ctx context.Context, treeID string) (*types.Statistics, error)

	// Lifecycle
	Close() error

	// Path identifies the backing store (file path or DSN).
	Path() string
}
