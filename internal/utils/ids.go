// Package utils provides identifier generation helpers.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

// shortCode returns a compact lowercase hex token derived from a random UUID.
func shortCode(n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(id) {
		n = len(id)
	}
	return id[:n]
}

// NewIssueID generates an opaque issue identifier. Collisions are guarded
// by the store's uniqueness check at create time.
func NewIssueID() string {
	return "i-" + shortCode(12)
}

// NewCommentID generates a comment identifier unique within an issue.
func NewCommentID() string {
	return "c-" + shortCode(12)
}
