package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dufangshi/issues/internal/merge"
	"github.com/dufangshi/issues/internal/storage"
	"github.com/dufangshi/issues/internal/types"
)

// IssueHandlers contains the HTTP handlers for the issue API. Each handler
// maps one inbound operation onto the store and the pure merge operations;
// updates are read-modify-write against the store with last-write-wins
// semantics at whole-document granularity.
type IssueHandlers struct {
	store storage.Storage
}

// NewIssueHandlers creates the handler set backed by the given store.
func NewIssueHandlers(store storage.Storage) *IssueHandlers {
	return &IssueHandlers{store: store}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// CreateIssue handles POST /api/issues
func (h *IssueHandlers) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req CreateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	assignees := make([]types.Assignee, 0, len(req.Assignees))
	now := time.Now().UTC()
	for _, u := range req.Assignees {
		assignees = append(assignees, types.Assignee{
			UserID:     u.UserID,
			Username:   u.Username,
			AssignedAt: now,
		})
	}

	issue := &types.Issue{
		IssueID:     req.IssueID,
		TreeID:      req.TreeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Creator:     req.Creator,
		Assignees:   assignees,
		Nodes:       req.Nodes,
		Tags:        req.Tags,
	}

	created, err := h.store.CreateIssue(r.Context(), issue)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetIssue handles GET /api/issues/{issueID}
func (h *IssueHandlers) GetIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := h.store.GetIssue(r.Context(), chi.URLParam(r, "issueID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// ListIssues handles GET /api/issues with tree_id, node_id, status and
// priority query parameters, all optional and AND-combined.
func (h *IssueHandlers) ListIssues(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	issues, err := h.store.FindIssues(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}
	if issues == nil {
		issues = []*types.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

func filterFromQuery(r *http.Request) (types.IssueFilter, error) {
	var filter types.IssueFilter
	q := r.URL.Query()

	if treeID := q.Get("tree_id"); treeID != "" {
		filter.TreeID = &treeID
	}
	if nodeID := q.Get("node_id"); nodeID != "" {
		filter.NodeID = &nodeID
	}
	if s := q.Get("status"); s != "" {
		status := types.Status(s)
		if !status.IsValid() {
			return filter, &types.ValidationError{Field: "status", Reason: fmt.Sprintf("invalid status: %s", s)}
		}
		filter.Status = &status
	}
	if p := q.Get("priority"); p != "" {
		priority := types.Priority(p)
		if !priority.IsValid() {
			return filter, &types.ValidationError{Field: "priority", Reason: fmt.Sprintf("invalid priority: %s", p)}
		}
		filter.Priority = &priority
	}
	return filter, nil
}

// UpdateIssue handles PATCH /api/issues/{issueID}. Identifier, creator and
// createdAt fields in the payload are ignored, not errored: the patch
// struct simply has no slot for them.
func (h *IssueHandlers) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	var patch types.IssuePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	issueID := chi.URLParam(r, "issueID")
	existing, err := h.store.GetIssue(r.Context(), issueID)
	if err != nil {
		WriteError(w, err)
		return
	}

	updated, err := merge.Apply(existing, patch)
	if err != nil {
		WriteError(w, err)
		return
	}

	// An empty patch changed nothing; skip the store round trip.
	if !patch.IsEmpty() {
		if err := h.store.ReplaceIssue(r.Context(), updated); err != nil {
			WriteError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, updated)
}

// AppendComment handles POST /api/issues/{issueID}/comments
func (h *IssueHandlers) AppendComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	issueID := chi.URLParam(r, "issueID")
	existing, err := h.store.GetIssue(r.Context(), issueID)
	if err != nil {
		WriteError(w, err)
		return
	}

	updated, err := merge.AppendComment(existing, req.UserID, req.Content)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.store.ReplaceIssue(r.Context(), updated); err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated)
}

// ReplaceAssignees handles PUT /api/issues/{issueID}/assignees
func (h *IssueHandlers) ReplaceAssignees(w http.ResponseWriter, r *http.Request) {
	var req AssigneesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	issueID := chi.URLParam(r, "issueID")
	existing, err := h.store.GetIssue(r.Context(), issueID)
	if err != nil {
		WriteError(w, err)
		return
	}

	updated, err := merge.ReplaceAssignees(existing, req.Assignees)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.store.ReplaceIssue(r.Context(), updated); err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteIssue handles DELETE /api/issues/{issueID}
func (h *IssueHandlers) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteIssue(r.Context(), chi.URLParam(r, "issueID")); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatistics handles GET /api/issues/stats?tree_id=...
func (h *IssueHandlers) GetStatistics(w http.ResponseWriter, r *http.Request) {
	treeID := r.URL.Query().Get("tree_id")
	if treeID == "" {
		WriteError(w, &types.ValidationError{Field: "tree_id", Reason: "tree_id is required"})
		return
	}
	stats, err := h.store.GetStatistics(r.Context(), treeID)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HealthHandler reports service liveness
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
