package services

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"merry/internal/config"
	"merry/internal/domain/models"
)

// IntentService turns free-text prompts into candidate document content via
// the LLM collaborator, grounded by web search context. The candidate always
// passes through the content schema validator before being returned; a
// malformed or empty LLM result degrades to a minimal "could not verify"
// document instead of failing the request.
type IntentService interface {
	// ParseIntent parses a prompt into a candidate document.
	// requesterID is empty for anonymous callers; authenticated callers
	// get their usage counter bumped.
	ParseIntent(ctx context.Context, requesterID string, req *ParseIntentRequest) (*ParseIntentResponse, error)

	// RewriteSection rewrites a section body per the instructions,
	// optionally grounded with fresh search context.
	RewriteSection(ctx context.Context, req *RewriteRequest) (*RewriteResponse, error)

	// SuggestColumns suggests spreadsheet columns for a topic.
	SuggestColumns(ctx context.Context, req *SuggestColumnsRequest) ([]models.Column, error)
}

// ParseIntentRequest is the prompt to parse.
type ParseIntentRequest struct {
	Prompt string `json:"prompt"`
}

// Validate checks prompt bounds.
func (r *ParseIntentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Prompt,
			validation.Required,
			validation.Length(config.MinPromptLength, config.MaxPromptLength),
		),
	)
}

// ParseIntentResponse is the validated candidate document.
type ParseIntentResponse struct {
	Type     models.Kind     `json:"type"`
	Topic    string          `json:"topic"`
	Tone     string          `json:"tone"`
	Title    string          `json:"title"`
	Content  *models.Content `json:"content"`
	Warnings []string        `json:"warnings,omitempty"`
}

// RewriteRequest asks for a section body rewrite.
type RewriteRequest struct {
	SectionID       string  `json:"section_id"`
	Instructions    string  `json:"instructions"`
	Content         string  `json:"content"`
	PreserveHeading bool    `json:"preserve_heading"`
	SearchQuery     *string `json:"search_query"`
}

// Validate checks rewrite bounds.
func (r *RewriteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SectionID, validation.Required),
		validation.Field(&r.Instructions,
			validation.Required,
			validation.Length(1, config.MaxRewriteInstructionsLength),
		),
		validation.Field(&r.Content,
			validation.Required,
			validation.Length(1, config.MaxRewriteContentLength),
		),
	)
}

// RewriteResponse carries the rewritten body.
type RewriteResponse struct {
	Content string `json:"content"`
}

// SuggestColumnsRequest asks for column suggestions for a topic.
type SuggestColumnsRequest struct {
	Topic string `json:"topic"`
}

// Validate checks the topic bound.
func (r *SuggestColumnsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Topic,
			validation.Required,
			validation.Length(1, 200),
		),
	)
}
