// Package export renders canonical document content into office file
// formats. Exports always read the stored canonical content; they never
// re-run validation or touch the AI collaborators.
package export

import (
	"fmt"
	"strings"

	"merry/internal/domain"
	"merry/internal/domain/models"
)

// Format is a supported export format.
type Format string

const (
	FormatWord  Format = "word"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// File is a rendered export artifact.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// Render renders a document into the requested format. Word documents render
// to docx or pdf, excel documents to xlsx or pdf; a format that does not
// match the document kind is a validation error.
func Render(doc *models.Document, format Format) (*File, error) {
	if doc.Content == nil {
		return nil, &domain.ValidationError{Message: "document has no content to export"}
	}

	switch format {
	case FormatWord:
		if doc.Kind != models.KindWord {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("cannot export %s document as word", doc.Kind),
			}
		}
		data, err := renderDocx(doc)
		if err != nil {
			return nil, fmt.Errorf("render docx: %w", err)
		}
		return &File{Name: exportName(doc.Title, "docx"), ContentType: contentTypeDocx, Data: data}, nil

	case FormatExcel:
		if doc.Kind != models.KindExcel {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("cannot export %s document as excel", doc.Kind),
			}
		}
		data, err := renderXlsx(doc)
		if err != nil {
			return nil, fmt.Errorf("render xlsx: %w", err)
		}
		return &File{Name: exportName(doc.Title, "xlsx"), ContentType: contentTypeXlsx, Data: data}, nil

	case FormatPDF:
		data, err := renderPDF(doc)
		if err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		return &File{Name: exportName(doc.Title, "pdf"), ContentType: contentTypePDF, Data: data}, nil

	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unsupported export format %q", format),
		}
	}
}

// exportName builds a safe attachment filename from the document title.
func exportName(title, ext string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "document"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	safe := strings.Trim(b.String(), "_")
	if safe == "" {
		safe = "document"
	}
	if len(safe) > 64 {
		safe = safe[:64]
	}
	return safe + "." + ext
}

// cellString renders a cell value for output. Canonical cells are scalars or
// explicit nulls; nulls render empty.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
