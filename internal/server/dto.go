package server

import (
	"time"

	"github.com/dufangshi/issues/internal/types"
)

// CreateIssueRequest is the wire shape for issue creation. The issue ID is
// optional; the store generates one when it is absent.
type CreateIssueRequest struct {
	IssueID     string           `json:"issueId,omitempty"`
	TreeID      string           `json:"treeId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      types.Status     `json:"status,omitempty"`
	Priority    types.Priority   `json:"priority,omitempty"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Creator     types.UserRef    `json:"creator"`
	Assignees   []types.UserRef  `json:"assignees,omitempty"`
	Nodes       []types.NodeRef  `json:"nodes,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
}

// CommentRequest is the wire shape for appending a comment.
type CommentRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

// AssigneesRequest is the wire shape for replacing the assignee list. The
// full desired membership is submitted; there is no add/remove delta.
type AssigneesRequest struct {
	Assignees []types.UserRef `json:"assignees"`
}
