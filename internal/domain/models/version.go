package models

import "time"

// Version authors.
const (
	AuthorUser = "user"
	AuthorAI   = "ai"
)

// Version is an immutable point-in-time record of a document's content.
// Versions are appended by the version store and never mutated; they are
// deleted only when their parent document is deleted.
type Version struct {
	ID            string      `json:"id"`
	DocumentID    string      `json:"document_id"`
	Version       int         `json:"version"`
	ParentVersion *int        `json:"parent_version,omitempty"`
	Snapshot      *Content    `json:"snapshot"`
	Diff          []DiffEntry `json:"diff,omitempty"`
	Author        string      `json:"author"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Diff operations.
const (
	DiffAdd    = "add"
	DiffRemove = "remove"
	DiffChange = "change"
)

// DiffEntry is one key-level delta between a parent snapshot and its child.
// Path uses dotted JSON-path notation ("sections.1.heading").
type DiffEntry struct {
	Op   string `json:"op"`
	Path string `json:"path"`
	From any    `json:"from,omitempty"`
	To   any    `json:"to,omitempty"`
}
