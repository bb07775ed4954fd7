// Package merge implements the pure update operations on an issue record:
// partial-update application, comment append, and assignee replacement.
// Every operation takes the current record, returns a new snapshot, and
// performs no I/O; persisting the result is the caller's job.
package merge

import (
	"fmt"
	"strings"
	"time"

	"github.com/dufangshi/issues/internal/types"
	"github.com/dufangshi/issues/internal/utils"
)

// touch returns the timestamp to stamp on a mutated record. It is always
// strictly after the record's current updatedAt, so updatedAt increases
// on every mutation even when the wall clock has not advanced.
func touch(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// Apply merges a partial update onto an existing record and returns the
// new record. The policy is field-level replace: every field present in
// the patch overwrites the stored field wholesale (a present empty tag
// list clears the tags), and absent fields are left untouched. The issue
// ID, tree ID, creator, createdAt and comments are never changed here.
//
// An empty patch is a no-op: the returned record equals the input in every
// field, including updatedAt.
func Apply(existing *types.Issue, patch types.IssuePatch) (*types.Issue, error) {
	if patch.IsEmpty() {
		return existing.Clone(), nil
	}

	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, &types.ValidationError{Field: "status", Reason: fmt.Sprintf("invalid status: %s", *patch.Status)}
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return nil, &types.ValidationError{Field: "priority", Reason: fmt.Sprintf("invalid priority: %s", *patch.Priority)}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &types.ValidationError{Field: "title", Reason: "title must not be empty"}
	}
	if patch.Assignees != nil {
		if err := types.ValidateAssignees(patch.Assignees); err != nil {
			return nil, err
		}
	}

	updated := existing.Clone()
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.Priority != nil {
		updated.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		updated.DueDate = &due
	}
	if patch.Assignees != nil {
		updated.Assignees = append([]types.Assignee(nil), patch.Assignees...)
	}
	if patch.Nodes != nil {
		updated.Nodes = append([]types.NodeRef(nil), patch.Nodes...)
	}
	if patch.Tags != nil {
		updated.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.ResolvedAt != nil {
		at := *patch.ResolvedAt
		updated.ResolvedAt = &at
	}
	if patch.ResolvedBy != nil {
		by := *patch.ResolvedBy
		updated.ResolvedBy = &by
	}

	updated.UpdatedAt = touch(existing.UpdatedAt)
	return updated, nil
}

// AppendComment appends a new comment to the end of the issue's thread and
// returns the new record. Prior comments are never reordered or mutated.
func AppendComment(existing *types.Issue, authorID, content string) (*types.Issue, error) {
	if authorID == "" {
		return nil, &types.ValidationError{Field: "userId", Reason: "comment author is required"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &types.ValidationError{Field: "content", Reason: "comment content must not be empty"}
	}

	updated := existing.Clone()
	now := touch(existing.UpdatedAt)
	updated.Comments = append(updated.Comments, types.Comment{
		CommentID: utils.NewCommentID(),
		UserID:    authorID,
		Content:   content,
		CreatedAt: now,
	})
	updated.UpdatedAt = now
	return updated, nil
}

// ReplaceAssignees replaces the full assignee list and returns the new
// record. Prior assignees not in the new list are dropped, and every entry
// gets assignedAt set to now, including users who were already assigned.
// The caller submits complete desired membership, so there is no
// incremental add/remove path.
func ReplaceAssignees(existing *types.Issue, users []types.UserRef) (*types.Issue, error) {
	seen := make(map[string]bool, len(users))
	for _, u := range users {
		if u.UserID == "" {
			return nil, &types.ValidationError{Field: "assignees", Reason: "assignee userId is required"}
		}
		if seen[u.UserID] {
			return nil, &types.ValidationError{Field: "assignees", Reason: fmt.Sprintf("duplicate assignee userId: %s", u.UserID)}
		}
		seen[u.UserID] = true
	}

	updated := existing.Clone()
	now := touch(existing.UpdatedAt)
	assignees := make([]types.Assignee, 0, len(users))
	for _, u := range users {
		assignees = append(assignees, types.Assignee{
			UserID:     u.UserID,
			Username:   u.Username,
			AssignedAt: now,
		})
	}
	updated.Assignees = assignees
	updated.UpdatedAt = now
	return updated, nil
}
