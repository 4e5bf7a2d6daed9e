package search

import (
	"fmt"
	"strings"
)

// FormatContext renders search results into the prompt-context block the
// intent parser feeds to the LLM. Returns "" when there is nothing usable,
// which callers treat as "could not verify" rather than an error.
func FormatContext(resp *Response) string {
	if resp == nil || (len(resp.Results) == 0 && resp.Answer == "") {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Web Search Results (USE ONLY THIS DATA):\n\n")

	if resp.Answer != "" {
		sb.WriteString("### Summary:\n")
		sb.WriteString(resp.Answer)
		sb.WriteString("\n\n")
	}

	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "### Source %d: %s\n", i+1, r.Title)
		fmt.Fprintf(&sb, "URL: %s\n", r.URL)
		fmt.Fprintf(&sb, "Content: %s\n\n", r.Snippet)
	}

	sb.WriteString("## IMPORTANT: Only use information from the sources above. Do not make up data.")
	return sb.String()
}
