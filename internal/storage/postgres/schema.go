package postgres

const schema = `
CREATE TABLE IF NOT EXISTS issues (
    issue_id TEXT PRIMARY KEY,
    tree_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'open',
    priority TEXT NOT NULL DEFAULT 'medium',
    due_date TIMESTAMPTZ,
    creator_user_id TEXT NOT NULL,
    creator_username TEXT NOT NULL DEFAULT '',
    resolved_at TIMESTAMPTZ,
    resolved_by TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_issues_tree ON issues(tree_id);
CREATE INDEX IF NOT EXISTS idx_issues_tree_status ON issues(tree_id, status);
CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at);

CREATE TABLE IF NOT EXISTS issue_assignees (
    issue_id TEXT NOT NULL REFERENCES issues(issue_id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    assigned_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (issue_id, user_id)
);

CREATE TABLE IF NOT EXISTS issue_nodes (
    issue_id TEXT NOT NULL REFERENCES issues(issue_id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    node_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_issue_nodes_node ON issue_nodes(node_id);
CREATE INDEX IF NOT EXISTS idx_issue_nodes_issue ON issue_nodes(issue_id);

CREATE TABLE IF NOT EXISTS issue_tags (
    issue_id TEXT NOT NULL REFERENCES issues(issue_id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    tag TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_issue_tags_issue ON issue_tags(issue_id);

CREATE TABLE IF NOT EXISTS issue_comments (
    issue_id TEXT NOT NULL REFERENCES issues(issue_id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    comment_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (issue_id, comment_id)
);

CREATE INDEX IF NOT EXISTS idx_issue_comments_issue ON issue_comments(issue_id);
`
