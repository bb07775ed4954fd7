package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dufangshi/issues/internal/types"
	"github.com/dufangshi/issues/internal/utils"
)

// CreateIssue persists a new issue document. The draft's ID is assigned
// when empty; status and priority default to open/medium. A duplicate ID
// fails with types.ErrConflict.
func (s *SQLiteStorage) CreateIssue(ctx context.Context, issue *types.Issue) (*types.Issue, error) {
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
	// Comments always start empty; the thread only grows through appends.
	created.Comments = nil

	if err := created.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM issues WHERE issue_id = ?)`, created.IssueID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check issue existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("issue %s: %w", created.IssueID, types.ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO issues (
			issue_id, tree_id, title, description, status, priority,
			due_date, creator_user_id, creator_username,
			resolved_at, resolved_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		created.IssueID, created.TreeID, created.Title, created.Description,
		created.Status, created.Priority, created.DueDate,
		created.Creator.UserID, created.Creator.Username,
		created.ResolvedAt, created.ResolvedBy, created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert issue: %w", err)
	}

	if err := insertChildren(ctx, tx, created); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return created, nil
}

// GetIssue retrieves an issue by ID, including its embedded collections.
func (s *SQLiteStorage) GetIssue(ctx context.Context, issueID string) (*types.Issue, error) {
	issue, err := scanIssueFields(s.db.QueryRowContext(ctx, `
		SELECT issue_id, tree_id, title, description, status, priority,
		       due_date, creator_user_id, creator_username,
		       resolved_at, resolved_by, created_at, updated_at
		FROM issues
		WHERE issue_id = ?
	`, issueID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("issue %s: %w", issueID, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	if err := s.loadChildren(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// FindIssues returns the issues matching every present filter field,
// newest-created first.
func (s *SQLiteStorage) FindIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, error) {
	whereClauses := []string{}
	args := []interface{}{}

	if filter.TreeID != nil {
		whereClauses = append(whereClauses, "tree_id = ?")
		args = append(args, *filter.TreeID)
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Priority != nil {
		whereClauses = append(whereClauses, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.NodeID != nil {
		whereClauses = append(whereClauses, "issue_id IN (SELECT issue_id FROM issue_nodes WHERE node_id = ?)")
		args = append(args, *filter.NodeID)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	limitSQL := ""
	if filter.Limit > 0 {
		limitSQL = " LIMIT ?"
		args = append(args, filter.Limit)
	}

	querySQL := fmt.Sprintf(`
		SELECT issue_id, tree_id, title, description, status, priority,
		       due_date, creator_user_id, creator_username,
		       resolved_at, resolved_by, created_at, updated_at
		FROM issues
		%s
		ORDER BY created_at DESC
		%s
	`, whereSQL, limitSQL)

	rows, err := s.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var issues []*types.Issue
	for rows.Next() {
		issue, err := s.scanIssueRow(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issues: %w", err)
	}

	for _, issue := range issues {
		if err := s.loadChildren(ctx, issue); err != nil {
			return nil, err
		}
	}
	return issues, nil
}

// ReplaceIssue atomically overwrites the whole stored document keyed by
// the record's issue ID. The child rows are rewritten in the same
// transaction, so a failed replace leaves the prior document intact.
func (s *SQLiteStorage) ReplaceIssue(ctx context.Context, issue *types.Issue) error {
	if err := issue.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE issues SET
			tree_id = ?, title = ?, description = ?, status = ?, priority = ?,
			due_date = ?, creator_user_id = ?, creator_username = ?,
			resolved_at = ?, resolved_by = ?, created_at = ?, updated_at = ?
		WHERE issue_id = ?
	`,
		issue.TreeID, issue.Title, issue.Description, issue.Status, issue.Priority,
		issue.DueDate, issue.Creator.UserID, issue.Creator.Username,
		issue.ResolvedAt, issue.ResolvedBy, issue.CreatedAt, issue.UpdatedAt,
		issue.IssueID,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("issue %s: %w", issue.IssueID, types.ErrNotFound)
	}

	for _, table := range []string{"issue_assignees", "issue_nodes", "issue_tags", "issue_comments"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE issue_id = ?`, table), issue.IssueID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertChildren(ctx, tx, issue); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// DeleteIssue removes an issue and its child rows. Deleting an absent ID
// fails with types.ErrNotFound, so a second delete is an error.
func (s *SQLiteStorage) DeleteIssue(ctx context.Context, issueID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE issue_id = ?`, issueID)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("issue %s: %w", issueID, types.ErrNotFound)
	}
	return nil
}

// GetStatistics returns per-status counts for one tree
func (s *SQLiteStorage) GetStatistics(ctx context.Context, treeID string) (*types.Statistics, error) {
	var stats types.Statistics
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END), 0) as open,
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0) as in_progress,
			COALESCE(SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END), 0) as resolved,
			COALESCE(SUM(CASE WHEN status = 'closed' THEN 1 ELSE 0 END), 0) as closed
		FROM issues
		WHERE tree_id = ?
	`, treeID).Scan(
		&stats.TotalIssues, &stats.OpenIssues, &stats.InProgressIssues,
		&stats.ResolvedIssues, &stats.ClosedIssues,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue counts: %w", err)
	}
	return &stats, nil
}

// scanTarget matches both *sql.Row and *sql.Rows
type scanTarget interface {
	Scan(dest ...interface{}) error
}

func scanIssueFields(target scanTarget) (*types.Issue, error) {
	var issue types.Issue
	var dueDate, resolvedAt sql.NullTime
	var resolvedBy sql.NullString

	err := target.Scan(
		&issue.IssueID, &issue.TreeID, &issue.Title, &issue.Description,
		&issue.Status, &issue.Priority, &dueDate,
		&issue.Creator.UserID, &issue.Creator.Username,
		&resolvedAt, &resolvedBy, &issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		issue.DueDate = &dueDate.Time
	}
	if resolvedAt.Valid {
		issue.ResolvedAt = &resolvedAt.Time
	}
	if resolvedBy.Valid {
		issue.ResolvedBy = &resolvedBy.String
	}
	return &issue, nil
}

func (s *SQLiteStorage) scanIssueRow(rows *sql.Rows) (*types.Issue, error) {
	issue, err := scanIssueFields(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}
	return issue, nil
}

// loadChildren attaches the embedded collections to a scanned issue, in
// their stored insertion order.
func (s *SQLiteStorage) loadChildren(ctx context.Context, issue *types.Issue) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, assigned_at
		FROM issue_assignees WHERE issue_id = ? ORDER BY position ASC
	`, issue.IssueID)
	if err != nil {
		return fmt.Errorf("failed to query assignees: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var a types.Assignee
		if err := rows.Scan(&a.UserID, &a.Username, &a.AssignedAt); err != nil {
			return fmt.Errorf("failed to scan assignee: %w", err)
		}
		issue.Assignees = append(issue.Assignees, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating assignees: %w", err)
	}

	nodeRows, err := s.db.QueryContext(ctx, `
		SELECT node_id FROM issue_nodes WHERE issue_id = ? ORDER BY position ASC
	`, issue.IssueID)
	if err != nil {
		return fmt.Errorf("failed to query nodes: %w", err)
	}
	defer func() { _ = nodeRows.Close() }()
	for nodeRows.Next() {
		var n types.NodeRef
		if err := nodeRows.Scan(&n.NodeID); err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}
		issue.Nodes = append(issue.Nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT tag FROM issue_tags WHERE issue_id = ? ORDER BY position ASC
	`, issue.IssueID)
	if err != nil {
		return fmt.Errorf("failed to query tags: %w", err)
	}
	defer func() { _ = tagRows.Close() }()
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		issue.Tags = append(issue.Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("error iterating tags: %w", err)
	}

	commentRows, err := s.db.QueryContext(ctx, `
		SELECT comment_id, user_id, content, created_at
		FROM issue_comments WHERE issue_id = ? ORDER BY position ASC
	`, issue.IssueID)
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() { _ = commentRows.Close() }()
	for commentRows.Next() {
		var c types.Comment
		if err := commentRows.Scan(&c.CommentID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		issue.Comments = append(issue.Comments, c)
	}
	if err := commentRows.Err(); err != nil {
		return fmt.Errorf("error iterating comments: %w", err)
	}
	return nil
}

// insertChildren writes the embedded collections for an issue inside the
// caller's transaction, preserving sequence order via position.
func insertChildren(ctx context.Context, tx *sql.Tx, issue *types.Issue) error {
	for i, a := range issue.Assignees {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issue_assignees (issue_id, position, user_id, username, assigned_at)
			VALUES (?, ?, ?, ?, ?)
		`, issue.IssueID, i, a.UserID, a.Username, a.AssignedAt)
		if err != nil {
			return fmt.Errorf("failed to insert assignee: %w", err)
		}
	}
	for i, n := range issue.Nodes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issue_nodes (issue_id, position, node_id)
			VALUES (?, ?, ?)
		`, issue.IssueID, i, n.NodeID)
		if err != nil {
			return fmt.Errorf("failed to insert node: %w", err)
		}
	}
	for i, tag := range issue.Tags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issue_tags (issue_id, position, tag)
			VALUES (?, ?, ?)
		`, issue.IssueID, i, tag)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	for i, c := range issue.Comments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issue_comments (issue_id, position, comment_id, user_id, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, issue.IssueID, i, c.CommentID, c.UserID, c.Content, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
	}
	return nil
}
