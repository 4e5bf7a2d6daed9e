package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"merry/internal/domain"
	"merry/internal/domain/models"
	"merry/internal/domain/repositories"
	"merry/internal/domain/services"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		return &domain.ConflictError{Message: "document exists", ResourceType: "document", ResourceID: doc.ID}
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Document{}
	for _, doc := range r.docs {
		if doc.OwnerID != nil && *doc.OwnerID == ownerID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

type fakeVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]*models.Version // keyed by document ID
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]*models.Version)}
}

func (r *fakeVersionRepo) Append(_ context.Context, v *models.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.versions[v.DocumentID] {
		if existing.Version == v.Version {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d already exists for document %s", v.Version, v.DocumentID),
				ResourceType: "version",
				ResourceID:   existing.ID,
			}
		}
	}
	copied := *v
	r.versions[v.DocumentID] = append(r.versions[v.DocumentID], &copied)
	return nil
}

func (r *fakeVersionRepo) History(_ context.Context, documentID string) ([]*models.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Version, 0, len(r.versions[documentID]))
	for _, v := range r.versions[documentID] {
		copied := *v
		out = append(out, &copied)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Version < out[i].Version {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeVersionRepo) AtVersion(_ context.Context, documentID string, version int) (*models.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions[documentID] {
		if v.Version == version {
			copied := *v
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("version %d: %w", version, domain.ErrNotFound)
}

func (r *fakeVersionRepo) DeleteByDocument(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.versions, documentID)
	return nil
}

// fakeTxManager runs the function directly; the fakes are already atomic
// enough for these tests.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func newTestService() (services.DocumentService, *fakeDocumentRepo, *fakeVersionRepo) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewDocumentService(docRepo, versionRepo, fakeTxManager{}, logger)
	return svc, docRepo, versionRepo
}

func wordCreateRequest(title string) *services.CreateDocumentRequest {
	return &services.CreateDocumentRequest{
		Title: title,
		Type:  "word",
		Sections: []any{
			map[string]any{"heading": "Intro", "content": "text"},
		},
	}
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestCreate_StartsAtVersionOne(t *testing.T) {
	svc, _, versionRepo := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, "user-1", wordCreateRequest("Report"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if doc.CurrentVersion != 1 {
		t.Errorf("expected current_version 1, got %d", doc.CurrentVersion)
	}
	if doc.SchemaVersion != models.SchemaVersion {
		t.Errorf("expected schema version stamp, got %q", doc.SchemaVersion)
	}
	if doc.OwnerID == nil || *doc.OwnerID != "user-1" {
		t.Errorf("owner not recorded: %v", doc.OwnerID)
	}

	history, err := versionRepo.History(ctx, doc.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 version row, got %d", len(history))
	}
	if history[0].ParentVersion != nil {
		t.Errorf("first version must have no parent, got %v", *history[0].ParentVersion)
	}
	if history[0].Snapshot == nil {
		t.Error("first version must carry a snapshot")
	}
}

func TestCreate_InvalidType(t *testing.T) {
	svc, _, _ := newTestService()

	req := wordCreateRequest("Report")
	req.Type = "pdf"
	_, err := svc.Create(context.Background(), "user-1", req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdate_VersionProgression(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, "user-1", wordCreateRequest("Report"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const updates = 4
	for i := 0; i < updates; i++ {
		doc, err = svc.Update(ctx, "user-1", doc.ID, &services.UpdateDocumentRequest{
			Sections: []any{
				map[string]any{"heading": "Intro", "content": fmt.Sprintf("revision %d", i)},
			},
		})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	if doc.CurrentVersion != 1+updates {
		t.Errorf("expected current_version %d, got %d", 1+updates, doc.CurrentVersion)
	}

	history, err := svc.History(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1+updates {
		t.Fatalf("expected %d versions, got %d", 1+updates, len(history))
	}
	for i, v := range history {
		if v.Version != i+1 {
			t.Errorf("history not contiguous at %d: version %d", i, v.Version)
		}
		if i > 0 {
			if v.ParentVersion == nil || *v.ParentVersion != i {
				t.Errorf("version %d: wrong parent %v", v.Version, v.ParentVersion)
			}
			if len(v.Diff) == 0 {
				t.Errorf("version %d: expected a non-empty diff", v.Version)
			}
		}
	}
}

func TestUpdate_PartialMergeKeepsOtherFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := wordCreateRequest("Report")
	req.Sources = []any{map[string]any{"title": "Ref", "url": "https://example.com"}}
	doc, err := svc.Create(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTitle := "Renamed"
	doc, err = svc.Update(ctx, "user-1", doc.ID, &services.UpdateDocumentRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if doc.Title != "Renamed" {
		t.Errorf("title not updated: %q", doc.Title)
	}
	if len(doc.Content.Sections) != 1 {
		t.Errorf("sections lost on title-only update: %d", len(doc.Content.Sections))
	}
	if len(doc.Content.Sources) != 1 {
		t.Errorf("sources lost on title-only update: %d", len(doc.Content.Sources))
	}
}

func TestDelete_RemovesVersions(t *testing.T) {
	svc, docRepo, versionRepo := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, "user-1", wordCreateRequest("Report"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "user-1", doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := docRepo.GetByID(ctx, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("document should be gone, got %v", err)
	}
	history, _ := versionRepo.History(ctx, doc.ID)
	if len(history) != 0 {
		t.Errorf("versions should be gone, got %d", len(history))
	}
}

// ============================================================================
// Ownership
// ============================================================================

func TestOwnership_Matrix(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	owned, err := svc.Create(ctx, "owner", wordCreateRequest("Owned"))
	if err != nil {
		t.Fatalf("create owned: %v", err)
	}
	ownerless, err := svc.Create(ctx, "", wordCreateRequest("Ownerless"))
	if err != nil {
		t.Fatalf("create ownerless: %v", err)
	}

	tests := []struct {
		name      string
		docID     string
		requester string
		wantErr   error
	}{
		{"owner reads own", owned.ID, "owner", nil},
		{"stranger blocked from owned", owned.ID, "stranger", domain.ErrForbidden},
		{"anonymous blocked from owned", owned.ID, "", domain.ErrForbidden},
		{"anonymous reads ownerless", ownerless.ID, "", nil},
		{"authenticated reads ownerless", ownerless.ID, "anyone", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(ctx, tt.requester, tt.docID)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDelete_RequiresAuthentication(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ownerless, err := svc.Create(ctx, "", wordCreateRequest("Ownerless"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "", ownerless.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("anonymous delete of ownerless doc should be forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "someone", ownerless.ID); err != nil {
		t.Errorf("authenticated delete of ownerless doc should work, got %v", err)
	}
}

func TestList_AnonymousGetsEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "owner", wordCreateRequest("Owned")); err != nil {
		t.Fatalf("create: %v", err)
	}

	docs, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("anonymous list should not error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("anonymous list should be empty, got %d", len(docs))
	}
}

// ============================================================================
// Concurrency
// ============================================================================

// Two updates racing from the same parent version: exactly one appends
// version 2, the loser gets a conflict instead of silently overwriting.
func TestUpdate_ConcurrentWritersOneWins(t *testing.T) {
	versionRepo := newFakeVersionRepo()
	ctx := context.Background()

	base := &models.Version{ID: "v1", DocumentID: "doc", Version: 1}
	if err := versionRepo.Append(ctx, base); err != nil {
		t.Fatalf("seed: %v", err)
	}

	const writers = 2
	results := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			parent := 1
			results <- versionRepo.Append(ctx, &models.Version{
				ID:            fmt.Sprintf("v2-%d", n),
				DocumentID:    "doc",
				Version:       2,
				ParentVersion: &parent,
			})
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Errorf("expected exactly one winner and one conflict, got %d/%d", wins, conflicts)
	}
}

func TestAtVersion_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, "user-1", wordCreateRequest("Report"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AtVersion(ctx, "user-1", doc.ID, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
