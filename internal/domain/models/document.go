package models

import (
	"time"
)

// Kind is the document kind discriminator.
type Kind string

const (
	KindWord  Kind = "word"
	KindExcel Kind = "excel"
)

// Valid reports whether the kind is one of the supported document kinds.
func (k Kind) Valid() bool {
	return k == KindWord || k == KindExcel
}

// SchemaVersion is the content schema version stamped on new documents.
const SchemaVersion = "1.0.0"

// Verification status values for word sections. Accuracy is the AI prompt's
// concern; these markers only record what the generator claimed.
const (
	VerificationVerified = "verified"
	VerificationNeeded   = "needs_verification"
)

// Document is a user- or AI-generated structured artifact of kind word or
// excel. OwnerID is nil for anonymous documents, which are readable by anyone
// holding the id.
type Document struct {
	ID             string    `json:"id"`
	OwnerID        *string   `json:"owner_id,omitempty"`
	Kind           Kind      `json:"type"`
	Title          string    `json:"title"`
	Content        *Content  `json:"content"`
	CurrentVersion int       `json:"current_version"`
	SchemaVersion  string    `json:"schema_version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OwnedBy reports whether the document is owned by the given user ID.
func (d *Document) OwnedBy(userID string) bool {
	return d.OwnerID != nil && userID != "" && *d.OwnerID == userID
}

// Content is the canonical kind-tagged content union. Word documents carry
// sections, excel documents carry sheets; sources are common to both.
// All three keys are always serialized so canonical content round-trips to
// identical bytes.
type Content struct {
	Sections []Section `json:"sections"`
	Sheets   []Sheet   `json:"sheets"`
	Sources  []Source  `json:"sources"`
}

// Section is one node of a word document's section tree. Children recurse up
// to the configured depth cap.
type Section struct {
	Heading            string    `json:"heading"`
	Level              int       `json:"level"`
	Content            string    `json:"content"`
	VerificationStatus string    `json:"verification_status,omitempty"`
	Children           []Section `json:"children,omitempty"`
}

// Sheet is one tab of an excel document.
type Sheet struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Column declares a sheet column. IDs are the keys rows address cells by.
type Column struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Row holds scalar cell values keyed by column id. A declared column with no
// value is present with an explicit JSON null so row arity stays stable for
// export.
type Row struct {
	Cells map[string]any `json:"cells"`
}

// Source is a citation attached to generated content.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
