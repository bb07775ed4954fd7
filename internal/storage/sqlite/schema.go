package sqlite

const schema = `
-- Issues table
CREATE TABLE IF NOT EXISTS issues (
    issue_id TEXT PRIMARY KEY,
    tree_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'open',
    priority TEXT NOT NULL DEFAULT 'medium',
    due_date DATETIME,
    creator_user_id TEXT NOT NULL,
    creator_username TEXT NOT NULL DEFAULT '',
    resolved_at DATETIME,
    resolved_by TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_issues_tree ON issues(tree_id);
CREATE INDEX IF NOT EXISTS idx_issues_tree_status ON issues(tree_id, status);
CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at);

-- Assignees table (ordered per issue)
CREATE TABLE IF NOT EXISTS issue_assignees (
    issue_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    assigned_at DATETIME NOT NULL,
    PRIMARY KEY (issue_id, user_id),
    FOREIGN KEY (issue_id) REFERENCES issues(issue_id) ON DELETE CASCADE
);

-- Node attachments table
CREATE TABLE IF NOT EXISTS issue_nodes (
    issue_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    node_id TEXT NOT NULL,
    FOREIGN KEY (issue_id) REFERENCES issues(issue_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issue_nodes_node ON issue_nodes(node_id);
CREATE INDEX IF NOT EXISTS idx_issue_nodes_issue ON issue_nodes(issue_id);

-- Tags table (sequence, duplicates allowed)
CREATE TABLE IF NOT EXISTS issue_tags (
    issue_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    FOREIGN KEY (issue_id) REFERENCES issues(issue_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issue_tags_issue ON issue_tags(issue_id);

-- Comments table (append-only thread)
CREATE TABLE IF NOT EXISTS issue_comments (
    issue_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    comment_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (issue_id, comment_id),
    FOREIGN KEY (issue_id) REFERENCES issues(issue_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issue_comments_issue ON issue_comments(issue_id);
`
