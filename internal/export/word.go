package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"merry/internal/domain/models"
)

// Heading sizes in half-points per level, title first.
var headingSizes = []string{"32", "28", "24", "22"}

// renderDocx renders a word document's section tree to docx bytes.
func renderDocx(doc *models.Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	title := w.AddParagraph().Justification("center")
	title.AddText(doc.Title).Size("36").Bold()
	w.AddParagraph()

	for _, section := range doc.Content.Sections {
		writeSection(w, &section)
	}

	if len(doc.Content.Sources) > 0 {
		w.AddParagraph()
		w.AddParagraph().AddText("Sources").Size("28").Bold()
		for _, src := range doc.Content.Sources {
			line := src.Title
			if src.URL != "" {
				line = fmt.Sprintf("%s (%s)", src.Title, src.URL)
			}
			w.AddParagraph().AddText(line).Size("20")
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSection(w *docx.Docx, section *models.Section) {
	size := headingSizes[len(headingSizes)-1]
	if section.Level >= 1 && section.Level < len(headingSizes) {
		size = headingSizes[section.Level]
	}

	heading := w.AddParagraph()
	heading.AddText(section.Heading).Size(size).Bold()

	if section.Content != "" {
		w.AddParagraph().AddText(section.Content).Size("22")
	}
	w.AddParagraph()

	for _, child := range section.Children {
		writeSection(w, &child)
	}
}
