package config

const (
	// MaxTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxTitleLength = 255

	// MaxSheetNameLength is the hard cap office formats place on sheet
	// tab names. Longer names are truncated, not rejected.
	MaxSheetNameLength = 31

	// MaxSectionDepth caps word section nesting. Heading levels only go to
	// 3, and an unbounded tree from an adversarial payload would otherwise
	// recurse arbitrarily deep.
	MaxSectionDepth = 3

	// MinPromptLength and MaxPromptLength bound AI generation prompts.
	MinPromptLength = 10
	MaxPromptLength = 2000

	// MaxRewriteContentLength bounds the section body accepted by the
	// rewrite endpoint.
	MaxRewriteContentLength = 10000

	// MaxRewriteInstructionsLength bounds rewrite instructions.
	MaxRewriteInstructionsLength = 500
)
