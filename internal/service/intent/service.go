package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"merry/internal/content"
	"merry/internal/domain"
	"merry/internal/domain/models"
	"merry/internal/domain/services"
	"merry/internal/llm"
	"merry/internal/search"
	"merry/internal/service"
)

// intentService implements the IntentService interface
type intentService struct {
	llmClient    llm.Client
	searchClient search.Client
	users        *service.UserService
	settings     *Settings
	logger       *slog.Logger
}

// NewIntentService creates a new intent service
func NewIntentService(
	llmClient llm.Client,
	searchClient search.Client,
	users *service.UserService,
	settings *Settings,
	logger *slog.Logger,
) services.IntentService {
	return &intentService{
		llmClient:    llmClient,
		searchClient: searchClient,
		users:        users,
		settings:     settings,
		logger:       logger,
	}
}

// ParseIntent turns a prompt into a validated candidate document. Search
// failures degrade to an unverified result; only an LLM transport failure is
// a hard (503) error.
func (s *intentService) ParseIntent(ctx context.Context, requesterID string, req *services.ParseIntentRequest) (*services.ParseIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	prompt := strings.TrimSpace(req.Prompt)

	searchCtx, sources := s.gatherContext(ctx, prompt)

	completion, err := s.llmClient.Complete(ctx, buildParsePrompt(prompt, searchCtx), true)
	if err != nil {
		s.logger.Error("llm completion failed", "error", err)
		return nil, &domain.ServiceError{Message: "AI service error: " + err.Error()}
	}

	s.users.RecordPromptUse(ctx, requesterID)

	cand, ok := decodeCandidate(completion)
	if !ok {
		s.logger.Warn("llm returned unusable candidate, falling back", "prompt_len", len(prompt))
		return s.fallbackResponse(prompt), nil
	}

	kind := models.Kind(cand.DocumentType)
	if sources != nil {
		cand.Raw["sources"] = sources
	}

	canonical, warnings, err := content.Normalize(cand.Raw, kind)
	if err != nil {
		// Structurally invalid candidate: degrade, never surface the
		// model's mess to the client as their own validation error.
		s.logger.Warn("candidate failed schema validation, falling back", "error", err)
		return s.fallbackResponse(prompt), nil
	}

	topic := cand.Topic
	if topic == "" {
		topic = truncate(prompt, 50)
	}

	return &services.ParseIntentResponse{
		Type:     kind,
		Topic:    topic,
		Tone:     cand.Tone,
		Title:    topic,
		Content:  canonical,
		Warnings: warnings,
	}, nil
}

// RewriteSection rewrites a section body, optionally grounded with fresh
// search context.
func (s *intentService) RewriteSection(ctx context.Context, req *services.RewriteRequest) (*services.RewriteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	searchCtx := ""
	if req.SearchQuery != nil && *req.SearchQuery != "" {
		resp, err := s.searchClient.Search(ctx, *req.SearchQuery, search.Options{MaxResults: s.settings.Budgets.Rewrite})
		if err != nil {
			s.logger.Warn("rewrite search failed, continuing without context", "error", err)
		} else {
			searchCtx = search.FormatContext(resp)
		}
	}

	prompt := fmt.Sprintf("Rewrite this content: %s\n\n%s\nContent:\n%s\n\nReturn only the rewritten text.",
		req.Instructions, searchCtx, req.Content)

	rewritten, err := s.llmClient.Complete(ctx, prompt, false)
	if err != nil {
		return nil, &domain.ServiceError{Message: "rewrite failed: " + err.Error()}
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return nil, &domain.ServiceError{Message: "AI returned empty response"}
	}

	return &services.RewriteResponse{Content: rewritten}, nil
}

// SuggestColumns suggests spreadsheet columns for a topic.
func (s *intentService) SuggestColumns(ctx context.Context, req *services.SuggestColumnsRequest) ([]models.Column, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	prompt := fmt.Sprintf(`Suggest columns for a spreadsheet about: %s. Return JSON {"columns": [{"name": "..."}]}.`, req.Topic)
	completion, err := s.llmClient.Complete(ctx, prompt, true)
	if err != nil {
		return nil, &domain.ServiceError{Message: "column suggestion failed: " + err.Error()}
	}

	payload := extractJSON(completion)
	if payload == "" {
		return []models.Column{}, nil
	}

	columns := []models.Column{}
	for i, item := range gjson.Get(payload, "columns").Array() {
		name := item.Get("name").String()
		if name == "" {
			name = item.String()
		}
		if name == "" {
			continue
		}
		columns = append(columns, models.Column{
			ID:   fmt.Sprintf("c%d", i+1),
			Name: name,
		})
	}
	return columns, nil
}

// gatherContext runs the web search with the keyword-driven result budget
// and returns the prompt context plus citation sources. Search failure is a
// degradation, not an error.
func (s *intentService) gatherContext(ctx context.Context, prompt string) (string, []any) {
	budget := s.settings.SearchBudget(prompt)

	resp, err := s.searchClient.Search(ctx, prompt, search.Options{MaxResults: budget})
	if err != nil {
		s.logger.Warn("search failed, generating without context", "error", err)
		return "", nil
	}

	searchCtx := search.FormatContext(resp)
	if searchCtx == "" {
		return "", nil
	}

	sources := make([]any, 0, len(resp.Results))
	for _, r := range resp.Results {
		sources = append(sources, map[string]any{"title": r.Title, "url": r.URL})
	}
	return searchCtx, sources
}

func buildParsePrompt(prompt, searchCtx string) string {
	if searchCtx != "" {
		return fmt.Sprintf(`%s

%s

User Request: %s

IMPORTANT: Base your response ONLY on the search results above. Do not invent data.
Respond with valid JSON only.`, systemPrompt, searchCtx, prompt)
	}

	return fmt.Sprintf(`%s

[No search results available - inform user that real-time data could not be fetched]

User Request: %s

Respond with valid JSON only. If data cannot be verified, say so clearly.`, systemPrompt, prompt)
}

// fallbackResponse is the minimal one-section document returned when the
// collaborator yields nothing usable. The request still succeeds; the user
// sees an explicit "could not verify" document instead of a 5xx.
func (s *intentService) fallbackResponse(prompt string) *services.ParseIntentResponse {
	topic := truncate(prompt, 50)
	return &services.ParseIntentResponse{
		Type:  models.KindWord,
		Topic: topic,
		Tone:  "formal",
		Title: topic,
		Content: &models.Content{
			Sections: []models.Section{
				{
					Heading:            "Unable to Verify",
					Level:              1,
					Content:            "The requested information could not be verified against live sources. Please try again or refine your prompt.",
					VerificationStatus: models.VerificationNeeded,
				},
			},
			Sheets:  []models.Sheet{},
			Sources: []models.Source{},
		},
		Warnings: []string{"generated without verified search context"},
	}
}

// truncate caps s at n runes. Byte slicing would split a multi-byte rune
// on non-ASCII prompts.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
