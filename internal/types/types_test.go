package types

import (
	"testing"
	"time"
)

func validIssue() *Issue {
	return &Issue{
		IssueID:  "i-test1",
		TreeID:   "T1",
		Title:    "Test issue",
		Status:   StatusOpen,
		Priority: PriorityMedium,
		Creator:  UserRef{UserID: "u1"},
	}
}

func TestIssueValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Issue)
		wantErr bool
	}{
		{"valid", func(i *Issue) {}, false},
		{"empty title", func(i *Issue) { i.Title = "" }, true},
		{"whitespace title", func(i *Issue) { i.Title = "   " }, true},
		{"missing tree", func(i *Issue) { i.TreeID = "" }, true},
		{"missing creator", func(i *Issue) { i.Creator.UserID = "" }, true},
		{"bad status", func(i *Issue) { i.Status = "bogus" }, true},
		{"bad priority", func(i *Issue) { i.Priority = "extreme" }, true},
		{"duplicate assignees", func(i *Issue) {
			i.Assignees = []Assignee{{UserID: "a"}, {UserID: "a"}}
		}, true},
		{"distinct assignees", func(i *Issue) {
			i.Assignees = []Assignee{{UserID: "a"}, {UserID: "b"}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := validIssue()
			tt.mutate(issue)
			err := issue.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("Validate() returned non-validation error: %v", err)
			}
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "blocked", "OPEN", "done"} {
		if s.IsValid() {
			t.Errorf("%s should be invalid", s)
		}
	}
}

func TestPriorityIsValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.IsValid() {
			t.Errorf("%s should be valid", p)
		}
	}
	for _, p := range []Priority{"", "critical", "High"} {
		if p.IsValid() {
			t.Errorf("%s should be invalid", p)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	issue := validIssue()
	issue.Nodes = []NodeRef{{NodeID: "N1"}, {NodeID: "N3"}}

	str := func(s string) *string { return &s }
	status := func(s Status) *Status { return &s }
	priority := func(p Priority) *Priority { return &p }

	tests := []struct {
		name   string
		filter IssueFilter
		want   bool
	}{
		{"empty filter matches everything", IssueFilter{}, true},
		{"tree match", IssueFilter{TreeID: str("T1")}, true},
		{"tree mismatch", IssueFilter{TreeID: str("T2")}, false},
		{"node match", IssueFilter{NodeID: str("N3")}, true},
		{"node mismatch", IssueFilter{NodeID: str("N9")}, false},
		{"status match", IssueFilter{Status: status(StatusOpen)}, true},
		{"status mismatch", IssueFilter{Status: status(StatusClosed)}, false},
		{"priority match", IssueFilter{Priority: priority(PriorityMedium)}, true},
		{"priority mismatch", IssueFilter{Priority: priority(PriorityUrgent)}, false},
		{"all fields AND-combined", IssueFilter{
			TreeID: str("T1"), NodeID: str("N1"), Status: status(StatusOpen), Priority: priority(PriorityMedium),
		}, true},
		{"one mismatch fails the AND", IssueFilter{
			TreeID: str("T1"), Status: status(StatusResolved),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(issue); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatchIsEmpty(t *testing.T) {
	var patch IssuePatch
	if !patch.IsEmpty() {
		t.Error("zero patch should be empty")
	}

	title := "x"
	patch.Title = &title
	if patch.IsEmpty() {
		t.Error("patch with title should not be empty")
	}

	// A present-but-empty slice is a field to apply, not an absent one.
	patch = IssuePatch{Tags: []string{}}
	if patch.IsEmpty() {
		t.Error("patch with empty tag list should not be empty")
	}
}

func TestCloneIsDeep(t *testing.T) {
	due := time.Now()
	issue := validIssue()
	issue.DueDate = &due
	issue.Tags = []string{"a", "b"}
	issue.Comments = []Comment{{CommentID: "c1", UserID: "u1", Content: "hi"}}

	dup := issue.Clone()
	dup.Tags[0] = "mutated"
	dup.Comments[0].Content = "mutated"
	*dup.DueDate = due.Add(time.Hour)

	if issue.Tags[0] != "a" {
		t.Error("clone shares tags backing array")
	}
	if issue.Comments[0].Content != "hi" {
		t.Error("clone shares comments backing array")
	}
	if !issue.DueDate.Equal(due) {
		t.Error("clone shares dueDate pointer")
	}
}
