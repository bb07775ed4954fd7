package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dufangshi/issues/internal/storage/memory"
	"github.com/dufangshi/issues/internal/types"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(NewRouter(store, logger))
	t.Cleanup(func() {
		ts.Close()
		_ = store.Close()
	})
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func createIssue(t *testing.T, ts *httptest.Server, req CreateIssueRequest) types.Issue {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/issues", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", resp.StatusCode, body)
	}
	var issue types.Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		t.Fatalf("unmarshal issue: %v", err)
	}
	return issue
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()

	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		t.Fatalf("unmarshal error body %s: %v", body, err)
	}
	return eb.Error.Code
}

func TestCreateIssueEndpoint(t *testing.T) {
	ts := setupServer(t)

	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID:      "T1",
		Title:       "Bug",
		Description: "x",
		Creator:     types.UserRef{UserID: "u1"},
	})

	if issue.Status != types.StatusOpen || issue.Priority != types.PriorityMedium {
		t.Errorf("defaults wrong: %+v", issue)
	}
	if len(issue.Assignees) != 0 || len(issue.Comments) != 0 {
		t.Errorf("collections should start empty: %+v", issue)
	}
	if !issue.CreatedAt.Equal(issue.UpdatedAt) {
		t.Error("createdAt should equal updatedAt at creation")
	}
}

func TestCreateIssueValidation(t *testing.T) {
	ts := setupServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/issues", CreateIssueRequest{
		TreeID:  "T1",
		Creator: types.UserRef{UserID: "u1"},
		// Title missing
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeValidation {
		t.Errorf("code = %s, want VALIDATION", code)
	}
}

func TestCreateIssueConflict(t *testing.T) {
	ts := setupServer(t)

	req := CreateIssueRequest{
		IssueID: "i-fixed",
		TreeID:  "T1",
		Title:   "First",
		Creator: types.UserRef{UserID: "u1"},
	}
	createIssue(t, ts, req)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/issues", req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeConflict {
		t.Errorf("code = %s, want CONFLICT", code)
	}
}

func TestGetIssueNotFound(t *testing.T) {
	ts := setupServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/issues/i-missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeNotFound {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestUpdateIssueEndpoint(t *testing.T) {
	ts := setupServer(t)
	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "Bug", Creator: types.UserRef{UserID: "u1"},
	})

	resp, body := doJSON(t, http.MethodPatch, ts.URL+"/api/issues/"+issue.IssueID,
		map[string]interface{}{"status": "in_progress"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var updated types.Issue
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.Status != types.StatusInProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}
	if updated.Title != issue.Title || !updated.CreatedAt.Equal(issue.CreatedAt) {
		t.Errorf("patch leaked into other fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(issue.UpdatedAt) {
		t.Error("updatedAt should advance")
	}
}

func TestUpdateIssueIgnoresImmutableFields(t *testing.T) {
	ts := setupServer(t)
	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "Bug", Creator: types.UserRef{UserID: "u1"},
	})

	// issueId and creator in the payload are ignored, not errored.
	resp, body := doJSON(t, http.MethodPatch, ts.URL+"/api/issues/"+issue.IssueID,
		map[string]interface{}{
			"issueId": "i-hijack",
			"creator": map[string]string{"userId": "intruder"},
			"title":   "Renamed",
		})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var updated types.Issue
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.IssueID != issue.IssueID {
		t.Errorf("issueId changed to %s", updated.IssueID)
	}
	if updated.Creator.UserID != "u1" {
		t.Errorf("creator changed to %s", updated.Creator.UserID)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %s, want Renamed", updated.Title)
	}
}

func TestUpdateIssueBadStatus(t *testing.T) {
	ts := setupServer(t)
	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "Bug", Creator: types.UserRef{UserID: "u1"},
	})

	resp, body := doJSON(t, http.MethodPatch, ts.URL+"/api/issues/"+issue.IssueID,
		map[string]interface{}{"status": "bogus"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeValidation {
		t.Errorf("code = %s, want VALIDATION", code)
	}

	// Stored record is unchanged.
	_, getBody := doJSON(t, http.MethodGet, ts.URL+"/api/issues/"+issue.IssueID, nil)
	var got types.Issue
	if err := json.Unmarshal(getBody, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != types.StatusOpen {
		t.Errorf("stored status = %s, want open", got.Status)
	}
}

func TestUpdateIssueClearsTags(t *testing.T) {
	ts := setupServer(t)
	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "Bug", Tags: []string{"a", "b"},
		Creator: types.UserRef{UserID: "u1"},
	})

	// Explicit empty array clears; omitting the key keeps.
	resp, body := doJSON(t, http.MethodPatch, ts.URL+"/api/issues/"+issue.IssueID,
		map[string]interface{}{"tags": []string{}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var updated types.Issue
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want cleared", updated.Tags)
	}

	resp, body = doJSON(t, http.MethodPatch, ts.URL+"/api/issues/"+issue.IssueID,
		map[string]interface{}{"description": "only this"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(updated.Tags) != 0 || updated.Description != "only this" {
		t.Errorf("unexpected record: %+v", updated)
	}
}

func TestCommentEndpoint(t *testing.T) {
	ts := setupServer(t)
	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "Bug", Creator: types.UserRef{UserID: "u1"},
	})

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/issues/"+issue.IssueID+"/comments",
		CommentRequest{UserID: "u1", Content: "looks good"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/issues/"+issue.IssueID+"/comments",
		CommentRequest{UserID: "u2", Content: "done"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var updated types.Issue
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(updated.Comments) != 2 {
		t.Fatalf("comments len = %d, want 2", len(updated.Comments))
	}
	if updated.Comments[0].Content != "looks good" || updated.Comments[1].Content != "done" {
		t.Errorf("wrong order: %+v", updated.Comments)
	}
	if updated.Comments[0].CommentID == updated.Comments[1].CommentID {
		t.Error("comment IDs must be distinct")
	}

	// Empty content is rejected.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/issues/"+issue.IssueID+"/comments",
		CommentRequest{UserID: "u1", Content: "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeValidation {
		t.Errorf("code = %s, want VALIDATION", code)
	}
}

func TestAssigneesEndpoint(t *testing.T) {
	ts := setupServer(t)
	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "Bug", Creator: types.UserRef{UserID: "u1"},
		Assignees: []types.UserRef{{UserID: "old"}},
	})

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/issues/"+issue.IssueID+"/assignees",
		AssigneesRequest{Assignees: []types.UserRef{{UserID: "a"}, {UserID: "b", Username: "bob"}}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var updated types.Issue
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(updated.Assignees) != 2 || updated.Assignees[0].UserID != "a" || updated.Assignees[1].UserID != "b" {
		t.Errorf("assignees = %+v", updated.Assignees)
	}
	for _, a := range updated.Assignees {
		if a.UserID == "old" {
			t.Error("full replace should drop prior assignees")
		}
	}

	// Duplicate userId is rejected.
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/issues/"+issue.IssueID+"/assignees",
		AssigneesRequest{Assignees: []types.UserRef{{UserID: "a"}, {UserID: "a"}}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeValidation {
		t.Errorf("code = %s, want VALIDATION", code)
	}
}

func TestListIssuesEndpoint(t *testing.T) {
	ts := setupServer(t)

	createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "open", Creator: types.UserRef{UserID: "u1"},
	})
	createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "attached", Creator: types.UserRef{UserID: "u1"},
		Nodes: []types.NodeRef{{NodeID: "N3"}},
	})
	createIssue(t, ts, CreateIssueRequest{
		TreeID: "T2", Title: "other", Creator: types.UserRef{UserID: "u1"},
	})

	var issues []types.Issue

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/issues?tree_id=T1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &issues); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/issues?tree_id=T1&node_id=N3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &issues); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "attached" {
		t.Fatalf("got %+v, want only the attached issue", issues)
	}

	// Zero matches returns an empty array, not null and not an error.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/issues?tree_id=T9", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if string(bytes.TrimSpace(body)) != "[]" {
		t.Errorf("empty result body = %s, want []", body)
	}

	// Invalid enum in a filter is rejected at the boundary.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/issues?tree_id=T1&status=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeValidation {
		t.Errorf("code = %s, want VALIDATION", code)
	}
}

func TestDeleteIssueEndpoint(t *testing.T) {
	ts := setupServer(t)
	issue := createIssue(t, ts, CreateIssueRequest{
		TreeID: "T1", Title: "Doomed", Creator: types.UserRef{UserID: "u1"},
	})

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/issues/"+issue.IssueID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodDelete, ts.URL+"/api/issues/"+issue.IssueID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeNotFound {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := setupServer(t)
	for i := 0; i < 3; i++ {
		createIssue(t, ts, CreateIssueRequest{
			TreeID: "T1", Title: fmt.Sprintf("issue %d", i), Creator: types.UserRef{UserID: "u1"},
		})
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/issues/stats?tree_id=T1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var stats types.Statistics
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.TotalIssues != 3 || stats.OpenIssues != 3 {
		t.Errorf("stats = %+v", stats)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/issues/stats", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing tree_id status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, body); code != ErrorCodeValidation {
		t.Errorf("code = %s, want VALIDATION", code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if health["status"] != "OK" {
		t.Errorf("status = %s, want OK", health["status"])
	}
}
