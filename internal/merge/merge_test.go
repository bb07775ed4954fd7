package merge

import (
	"reflect"
	"testing"
	"time"

	"github.com/dufangshi/issues/internal/types"
)

func baseIssue() *types.Issue {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return &types.Issue{
		IssueID:     "i-abc123",
		TreeID:      "T1",
		Title:       "Bug",
		Description: "x",
		Status:      types.StatusOpen,
		Priority:    types.PriorityMedium,
		Creator:     types.UserRef{UserID: "u0", Username: "creator"},
		Assignees:   []types.Assignee{{UserID: "a1", AssignedAt: created}},
		Nodes:       []types.NodeRef{{NodeID: "N1"}},
		Tags:        []string{"bug", "ui"},
		Comments:    []types.Comment{{CommentID: "c1", UserID: "u1", Content: "first", CreatedAt: created}},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestApplyEmptyPatchIsNoOp(t *testing.T) {
	existing := baseIssue()
	updated, err := Apply(existing, types.IssuePatch{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !reflect.DeepEqual(existing, updated) {
		t.Errorf("empty patch changed the record:\n got %+v\nwant %+v", updated, existing)
	}
	if !updated.UpdatedAt.Equal(existing.UpdatedAt) {
		t.Error("empty patch must not advance updatedAt")
	}
}

func TestApplyChangesOnlyPresentFields(t *testing.T) {
	existing := baseIssue()
	status := types.StatusInProgress
	updated, err := Apply(existing, types.IssuePatch{Status: &status})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if updated.Status != types.StatusInProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}
	if !updated.UpdatedAt.After(existing.UpdatedAt) {
		t.Error("updatedAt must strictly increase on mutation")
	}

	// Everything else stays bit-identical to the input.
	if updated.IssueID != existing.IssueID ||
		updated.TreeID != existing.TreeID ||
		updated.Title != existing.Title ||
		updated.Description != existing.Description ||
		updated.Priority != existing.Priority ||
		updated.Creator != existing.Creator ||
		!updated.CreatedAt.Equal(existing.CreatedAt) {
		t.Errorf("patch leaked into untouched fields: %+v", updated)
	}
	if !reflect.DeepEqual(updated.Tags, existing.Tags) {
		t.Errorf("tags changed: %v", updated.Tags)
	}
	if !reflect.DeepEqual(updated.Comments, existing.Comments) {
		t.Errorf("comments changed: %v", updated.Comments)
	}
	if !reflect.DeepEqual(updated.Assignees, existing.Assignees) {
		t.Errorf("assignees changed: %v", updated.Assignees)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	existing := baseIssue()
	title := "Renamed"
	if _, err := Apply(existing, types.IssuePatch{Title: &title}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if existing.Title != "Bug" {
		t.Error("Apply mutated its input")
	}
}

func TestApplyEmptyTagListClears(t *testing.T) {
	existing := baseIssue()
	updated, err := Apply(existing, types.IssuePatch{Tags: []string{}})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want empty", updated.Tags)
	}
	// Omitting tags leaves them intact.
	updated2, err := Apply(existing, types.IssuePatch{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !reflect.DeepEqual(updated2.Tags, existing.Tags) {
		t.Errorf("omitted tags were altered: %v", updated2.Tags)
	}
}

func TestApplyValidation(t *testing.T) {
	badStatus := types.Status("bogus")
	badPriority := types.Priority("extreme")
	emptyTitle := "  "

	tests := []struct {
		name  string
		patch types.IssuePatch
	}{
		{"bad status", types.IssuePatch{Status: &badStatus}},
		{"bad priority", types.IssuePatch{Priority: &badPriority}},
		{"empty title", types.IssuePatch{Title: &emptyTitle}},
		{"duplicate assignees", types.IssuePatch{Assignees: []types.Assignee{
			{UserID: "a"}, {UserID: "a"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := baseIssue()
			_, err := Apply(existing, tt.patch)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !types.IsValidation(err) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestAppendComment(t *testing.T) {
	existing := baseIssue()

	first, err := AppendComment(existing, "u1", "looks good")
	if err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}
	second, err := AppendComment(first, "u2", "done")
	if err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}

	if len(second.Comments) != 3 {
		t.Fatalf("comments len = %d, want 3", len(second.Comments))
	}
	// Prior entries are untouched and order is insertion order.
	if !reflect.DeepEqual(second.Comments[:2], first.Comments[:2]) {
		t.Error("append modified prior comments")
	}
	if second.Comments[1].Content != "looks good" || second.Comments[2].Content != "done" {
		t.Errorf("wrong order: %+v", second.Comments)
	}
	ids := map[string]bool{}
	for _, c := range second.Comments {
		if ids[c.CommentID] {
			t.Errorf("duplicate comment ID %s", c.CommentID)
		}
		ids[c.CommentID] = true
	}
	if !second.UpdatedAt.After(existing.UpdatedAt) {
		t.Error("updatedAt must advance on comment append")
	}
}

func TestAppendCommentValidation(t *testing.T) {
	existing := baseIssue()
	if _, err := AppendComment(existing, "u1", "   "); err == nil || !types.IsValidation(err) {
		t.Errorf("empty content: got %v, want ValidationError", err)
	}
	if _, err := AppendComment(existing, "", "text"); err == nil || !types.IsValidation(err) {
		t.Errorf("empty author: got %v, want ValidationError", err)
	}
}

func TestReplaceAssignees(t *testing.T) {
	existing := baseIssue()

	updated, err := ReplaceAssignees(existing, []types.UserRef{
		{UserID: "a1", Username: "alice"},
		{UserID: "b2"},
	})
	if err != nil {
		t.Fatalf("ReplaceAssignees failed: %v", err)
	}

	if len(updated.Assignees) != 2 {
		t.Fatalf("assignees len = %d, want 2", len(updated.Assignees))
	}
	if updated.Assignees[0].UserID != "a1" || updated.Assignees[1].UserID != "b2" {
		t.Errorf("wrong membership: %+v", updated.Assignees)
	}
	// Re-assignment resets assignedAt, even for a1 who was already assigned.
	if !updated.Assignees[0].AssignedAt.After(existing.Assignees[0].AssignedAt) {
		t.Error("assignedAt was not rewritten on replace")
	}
	if !updated.UpdatedAt.After(existing.UpdatedAt) {
		t.Error("updatedAt must advance on assignee replace")
	}
}

func TestReplaceAssigneesClears(t *testing.T) {
	existing := baseIssue()
	updated, err := ReplaceAssignees(existing, nil)
	if err != nil {
		t.Fatalf("ReplaceAssignees failed: %v", err)
	}
	if len(updated.Assignees) != 0 {
		t.Errorf("assignees = %+v, want empty", updated.Assignees)
	}
}

func TestReplaceAssigneesRejectsDuplicates(t *testing.T) {
	existing := baseIssue()
	_, err := ReplaceAssignees(existing, []types.UserRef{{UserID: "a"}, {UserID: "a"}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !types.IsValidation(err) {
		t.Errorf("got %v, want ValidationError", err)
	}
}
