// Package memory implements the storage interface using in-memory data
// structures. It backs tests and ephemeral runs where no database file is
// wanted; the data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dufangshi/issues/internal/types"
	"github.com/dufangshi/issues/internal/utils"
)

// MemoryStorage implements the Storage interface using in-memory maps
type MemoryStorage struct {
	mu     sync.RWMutex
	issues map[string]*types.Issue
	closed bool
}

// New creates a new in-memory storage backend
func New() *MemoryStorage {
	return &MemoryStorage{
		issues: make(map[string]*types.Issue),
	}
}

// CreateIssue persists a new issue document, assigning an ID and defaults
// as needed. A duplicate ID fails with types.ErrConflict.
func (m *MemoryStorage) CreateIssue(ctx context.Context, issue *types.Issue) (*types.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, types.ErrUnavailable
	}

	created := issue.Clone()
	if created.IssueID == "" {
		created.IssueID = utils.NewIssueID()
	}
	if created.Status == "" {
		created.Status = types.StatusOpen
	}
	if created.Priority == "" {
		created.Priority = types.PriorityMedium
	}
	created.Comments = nil

	if err := created.Validate(); err != nil {
		return nil, err
	}

	if _, exists := m.issues[created.IssueID]; exists {
		return nil, fmt.Errorf("issue %s: %w", created.IssueID, types.ErrConflict)
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	m.issues[created.IssueID] = created
	return created.Clone(), nil
}

// GetIssue retrieves an issue by ID
func (m *MemoryStorage) GetIssue(ctx context.Context, issueID string) (*types.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, types.ErrUnavailable
	}

	issue, exists := m.issues[issueID]
	if !exists {
		return nil, fmt.Errorf("issue %s: %w", issueID, types.ErrNotFound)
	}
	return issue.Clone(), nil
}

// FindIssues returns the issues matching every present filter field,
// newest-created first.
func (m *MemoryStorage) FindIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, types.ErrUnavailable
	}

	var matched []*types.Issue
	for _, issue := range m.issues {
		if filter.Matches(issue) {
			matched = append(matched, issue.Clone())
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		// Tie-break on ID for deterministic output
		return matched[i].IssueID < matched[j].IssueID
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// ReplaceIssue overwrites the stored document keyed by the record's ID
func (m *MemoryStorage) ReplaceIssue(ctx context.Context, issue *types.Issue) error {
	if err := issue.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return types.ErrUnavailable
	}

	if _, exists := m.issues[issue.IssueID]; !exists {
		return fmt.Errorf("issue %s: %w", issue.IssueID, types.ErrNotFound)
	}
	m.issues[issue.IssueID] = issue.Clone()
	return nil
}

// DeleteIssue removes an issue; a second delete fails with types.ErrNotFound
func (m *MemoryStorage) DeleteIssue(ctx context.Context, issueID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return types.ErrUnavailable
	}

	if _, exists := m.issues[issueID]; !exists {
		return fmt.Errorf("issue %s: %w", issueID, types.ErrNotFound)
	}
	delete(m.issues, issueID)
	return nil
}

// GetStatistics returns per-status counts for one tree
func (m *MemoryStorage) GetStatistics(ctx context.Context, treeID string) (*types.Statistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, types.ErrUnavailable
	}

	var stats types.Statistics
	for _, issue := range m.issues {
		if issue.TreeID != treeID {
			continue
		}
		stats.TotalIssues++
		switch issue.Status {
		case types.StatusOpen:
			stats.OpenIssues++
		case types.StatusInProgress:
			stats.InProgressIssues++
		case types.StatusResolved:
			stats.ResolvedIssues++
		case types.StatusClosed:
			stats.ClosedIssues++
		}
	}
	return &stats, nil
}

// Close marks the store closed; further calls fail with types.ErrUnavailable
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Path identifies the backing store
func (m *MemoryStorage) Path() string {
	return ":memory:"
}
