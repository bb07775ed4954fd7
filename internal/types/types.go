package types

import (
	"fmt"
	"strings"
	"time"
)

// Issue represents a tracked work item attached to nodes of a tree.
type Issue struct {
	IssueID     string     `json:"issueId"`
	TreeID      string     `json:"treeId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Creator     UserRef    `json:"creator"`
	Assignees   []Assignee `json:"assignees"`
	Nodes       []NodeRef  `json:"nodes"`
	Tags        []string   `json:"tags"`
	Comments    []Comment  `json:"comments"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy  *string    `json:"resolvedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// UserRef identifies a user, optionally with a display name.
type UserRef struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
}

// Assignee is a user assigned to an issue.
type Assignee struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username,omitempty"`
	AssignedAt time.Time `json:"assignedAt"`
}

// NodeRef attaches an issue to a single tree node.
type NodeRef struct {
	NodeID string `json:"nodeId"`
}

// Comment is one entry in an issue's append-only comment thread.
// Once appended, a comment is never mutated or removed.
type Comment struct {
	CommentID string    `json:"commentId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks if the issue has valid field values
func (i *Issue) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return &ValidationError{Field: "title", Reason: "title is required"}
	}
	if i.TreeID == "" {
		return &ValidationError{Field: "treeId", Reason: "treeId is required"}
	}
	if i.Creator.UserID == "" {
		return &ValidationError{Field: "creator", Reason: "creator userId is required"}
	}
	if !i.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid status: %s", i.Status)}
	}
	if !i.Priority.IsValid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("invalid priority: %s", i.Priority)}
	}
	if err := ValidateAssignees(i.Assignees); err != nil {
		return err
	}
	return nil
}

// ValidateAssignees rejects a list containing two entries with the same userId.
func ValidateAssignees(assignees []Assignee) error {
	seen := make(map[string]bool, len(assignees))
	for _, a := range assignees {
		if a.UserID == "" {
			return &ValidationError{Field: "assignees", Reason: "assignee userId is required"}
		}
		if seen[a.UserID] {
			return &ValidationError{Field: "assignees", Reason: fmt.Sprintf("duplicate assignee userId: %s", a.UserID)}
		}
		seen[a.UserID] = true
	}
	return nil
}

// Clone returns a deep copy of the issue. Mutating the copy never affects
// the original, including its embedded collections.
func (i *Issue) Clone() *Issue {
	dup := *i
	if i.DueDate != nil {
		t := *i.DueDate
		dup.DueDate = &t
	}
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		dup.ResolvedAt = &t
	}
	if i.ResolvedBy != nil {
		s := *i.ResolvedBy
		dup.ResolvedBy = &s
	}
	if i.Assignees != nil {
		dup.Assignees = append([]Assignee(nil), i.Assignees...)
	}
	if i.Nodes != nil {
		dup.Nodes = append([]NodeRef(nil), i.Nodes...)
	}
	if i.Tags != nil {
		dup.Tags = append([]string(nil), i.Tags...)
	}
	if i.Comments != nil {
		dup.Comments = append([]Comment(nil), i.Comments...)
	}
	return &dup
}

// Status represents the current state of an issue
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority represents the urgency of an issue
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority value is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// IssuePatch carries a partial update. A nil pointer (or nil slice) means
// the field was omitted and keeps its stored value; a non-nil empty slice
// replaces the stored collection with an empty one. Identifiers, the
// creator, comments and createdAt have no patch fields: they cannot be
// changed through an update.
type IssuePatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Assignees   []Assignee `json:"assignees,omitempty"`
	Nodes       []NodeRef  `json:"nodes,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy  *string    `json:"resolvedBy,omitempty"`
}

// IsEmpty reports whether no field is present in the patch.
func (p *IssuePatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Status == nil &&
		p.Priority == nil &&
		p.DueDate == nil &&
		p.Assignees == nil &&
		p.Nodes == nil &&
		p.Tags == nil &&
		p.ResolvedAt == nil &&
		p.ResolvedBy == nil
}

// IssueFilter is used to filter issue queries. All fields are optional and
// AND-combined; an empty filter matches every issue.
type IssueFilter struct {
	TreeID   *string
	NodeID   *string
	Status   *Status
	Priority *Priority
	Limit    int
}

// Matches reports whether the issue satisfies every present filter field.
func (f *IssueFilter) Matches(issue *Issue) bool {
	if f.TreeID != nil && issue.TreeID != *f.TreeID {
		return false
	}
	if f.Status != nil && issue.Status != *f.Status {
		return false
	}
	if f.Priority != nil && issue.Priority != *f.Priority {
		return false
	}
	if f.NodeID != nil {
		found := false
		for _, n := range issue.Nodes {
			if n.NodeID == *f.NodeID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Statistics provides per-tree aggregate metrics
type Statistics struct {
	TotalIssues      int `json:"total_issues"`
	OpenIssues       int `json:"open_issues"`
	InProgressIssues int `json:"in_progress_issues"`
	ResolvedIssues   int `json:"resolved_issues"`
	ClosedIssues     int `json:"closed_issues"`
}
