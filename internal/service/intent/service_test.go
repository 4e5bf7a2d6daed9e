package intent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"merry/internal/domain"
	"merry/internal/domain/models"
	"merry/internal/domain/services"
	"merry/internal/search"
	"merry/internal/service"
)

type stubLLM struct {
	completion string
	err        error
	lastPrompt string
}

func (s *stubLLM) Complete(_ context.Context, prompt string, _ bool) (string, error) {
	s.lastPrompt = prompt
	return s.completion, s.err
}

func (s *stubLLM) ModelName() string { return "stub" }

type stubSearch struct {
	resp *search.Response
	err  error
	opts search.Options
}

func (s *stubSearch) Search(_ context.Context, query string, opts search.Options) (*search.Response, error) {
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &search.Response{Query: query, Timestamp: time.Now()}, nil
}

type noopUserRepo struct{}

func (noopUserRepo) Upsert(context.Context, *models.User) error          { return nil }
func (noopUserRepo) GetByID(context.Context, string) (*models.User, error) {
	return nil, domain.ErrNotFound
}
func (noopUserRepo) IncrementPromptsUsed(context.Context, string) error { return nil }

func newTestIntentService(llmStub *stubLLM, searchStub *stubSearch) services.IntentService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	settings, err := LoadSettings()
	if err != nil {
		panic(err)
	}
	users := service.NewUserService(noopUserRepo{}, logger)
	return NewIntentService(llmStub, searchStub, users, settings, logger)
}

func TestParseIntent_WordDocument(t *testing.T) {
	llmStub := &stubLLM{completion: `{
		"document_type": "word",
		"topic": "Solar Power",
		"tone": "technical",
		"sections": [{"heading": "Overview", "content": "Solar basics."}]
	}`}
	searchStub := &stubSearch{resp: &search.Response{
		Results: []search.Result{
			{Title: "Solar 101", URL: "https://example.com/solar", Snippet: "basics"},
		},
		Timestamp: time.Now(),
	}}
	svc := newTestIntentService(llmStub, searchStub)

	resp, err := svc.ParseIntent(context.Background(), "user-1", &services.ParseIntentRequest{
		Prompt: "write a report about solar power",
	})
	if err != nil {
		t.Fatalf("parse intent: %v", err)
	}

	if resp.Type != models.KindWord {
		t.Errorf("expected word, got %s", resp.Type)
	}
	if resp.Topic != "Solar Power" {
		t.Errorf("topic wrong: %q", resp.Topic)
	}
	if len(resp.Content.Sections) != 1 {
		t.Errorf("expected 1 section, got %d", len(resp.Content.Sections))
	}
	if len(resp.Content.Sources) != 1 || resp.Content.Sources[0].URL != "https://example.com/solar" {
		t.Errorf("search results should become sources, got %+v", resp.Content.Sources)
	}
	if !strings.Contains(llmStub.lastPrompt, "Solar 101") {
		t.Error("search context should be injected into the prompt")
	}
}

func TestParseIntent_FencedCompletion(t *testing.T) {
	llmStub := &stubLLM{completion: "```json\n" + `{
		"document_type": "word",
		"topic": "Tea",
		"sections": [{"heading": "History", "content": "Old."}]
	}` + "\n```"}
	svc := newTestIntentService(llmStub, &stubSearch{})

	resp, err := svc.ParseIntent(context.Background(), "", &services.ParseIntentRequest{
		Prompt: "write about the history of tea",
	})
	if err != nil {
		t.Fatalf("parse intent: %v", err)
	}
	if resp.Topic != "Tea" {
		t.Errorf("fenced JSON should decode, got topic %q", resp.Topic)
	}
}

func TestParseIntent_MalformedFallsBack(t *testing.T) {
	llmStub := &stubLLM{completion: "Sorry, I can't produce JSON today."}
	svc := newTestIntentService(llmStub, &stubSearch{})

	resp, err := svc.ParseIntent(context.Background(), "", &services.ParseIntentRequest{
		Prompt: "write a report about something"})
	if err != nil {
		t.Fatalf("malformed completion must not fail the request: %v", err)
	}

	if resp.Type != models.KindWord {
		t.Errorf("fallback should be a word document, got %s", resp.Type)
	}
	if len(resp.Content.Sections) != 1 {
		t.Fatalf("fallback should have exactly 1 section, got %d", len(resp.Content.Sections))
	}
	if resp.Content.Sections[0].VerificationStatus != models.VerificationNeeded {
		t.Error("fallback section should be marked as needing verification")
	}
}

func TestParseIntent_LLMFailureIsServiceError(t *testing.T) {
	llmStub := &stubLLM{err: errors.New("connection refused")}
	svc := newTestIntentService(llmStub, &stubSearch{})

	_, err := svc.ParseIntent(context.Background(), "", &services.ParseIntentRequest{
		Prompt: "write a report about something"})
	if !errors.Is(err, domain.ErrService) {
		t.Errorf("expected service error, got %v", err)
	}
}

func TestParseIntent_SearchFailureDegrades(t *testing.T) {
	llmStub := &stubLLM{completion: `{
		"document_type": "word",
		"topic": "Offline",
		"sections": [{"heading": "Note", "content": "No live data."}]
	}`}
	searchStub := &stubSearch{err: errors.New("search provider down")}
	svc := newTestIntentService(llmStub, searchStub)

	resp, err := svc.ParseIntent(context.Background(), "", &services.ParseIntentRequest{
		Prompt: "write a report about something"})
	if err != nil {
		t.Fatalf("search failure must not fail the request: %v", err)
	}
	if len(resp.Content.Sources) != 0 {
		t.Errorf("no sources expected without search, got %d", len(resp.Content.Sources))
	}
	if !strings.Contains(llmStub.lastPrompt, "No search results available") {
		t.Error("prompt should tell the model search context is missing")
	}
}

func TestParseIntent_DataPromptGetsLargerBudget(t *testing.T) {
	llmStub := &stubLLM{completion: `{
		"document_type": "excel",
		"topic": "Planets",
		"columns": ["Name"],
		"sample_data": [{"Name": "Mars"}]
	}`}
	searchStub := &stubSearch{}
	svc := newTestIntentService(llmStub, searchStub)

	_, err := svc.ParseIntent(context.Background(), "", &services.ParseIntentRequest{
		Prompt: "make a spreadsheet of the planets"})
	if err != nil {
		t.Fatalf("parse intent: %v", err)
	}

	settings, _ := LoadSettings()
	if searchStub.opts.MaxResults != settings.Budgets.Data {
		t.Errorf("data prompt should request %d results, got %d",
			settings.Budgets.Data, searchStub.opts.MaxResults)
	}
}

func TestParseIntent_PromptBounds(t *testing.T) {
	svc := newTestIntentService(&stubLLM{}, &stubSearch{})

	_, err := svc.ParseIntent(context.Background(), "", &services.ParseIntentRequest{Prompt: "short"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for short prompt, got %v", err)
	}
}

func TestRewriteSection(t *testing.T) {
	llmStub := &stubLLM{completion: "  A cleaner paragraph.  "}
	svc := newTestIntentService(llmStub, &stubSearch{})

	resp, err := svc.RewriteSection(context.Background(), &services.RewriteRequest{
		SectionID:    "s1",
		Instructions: "make it concise",
		Content:      "A very long and rambling paragraph.",
	})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if resp.Content != "A cleaner paragraph." {
		t.Errorf("rewrite should be trimmed, got %q", resp.Content)
	}
}

func TestRewriteSection_EmptyCompletion(t *testing.T) {
	svc := newTestIntentService(&stubLLM{completion: "   "}, &stubSearch{})

	_, err := svc.RewriteSection(context.Background(), &services.RewriteRequest{
		SectionID:    "s1",
		Instructions: "make it concise",
		Content:      "text",
	})
	if !errors.Is(err, domain.ErrService) {
		t.Errorf("empty rewrite should be a service error, got %v", err)
	}
}

func TestSuggestColumns(t *testing.T) {
	llmStub := &stubLLM{completion: `{"columns": [{"name": "Country"}, {"name": "Population"}]}`}
	svc := newTestIntentService(llmStub, &stubSearch{})

	columns, err := svc.SuggestColumns(context.Background(), &services.SuggestColumnsRequest{
		Topic: "world demographics",
	})
	if err != nil {
		t.Fatalf("suggest columns: %v", err)
	}
	if len(columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(columns))
	}
	if columns[0].ID != "c1" || columns[0].Name != "Country" {
		t.Errorf("column mapping wrong: %+v", columns[0])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short ascii untouched", "hello", 10, "hello"},
		{"long ascii capped", "abcdefgh", 3, "abc"},
		{"multibyte capped on rune boundary", "日本語のレポートを作成して", 5, "日本語のレ"},
		{"emoji kept whole", "📊📈📉", 2, "📊📈"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}
