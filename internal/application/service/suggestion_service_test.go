package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
)

type suggestionFixture struct {
	svc         SuggestionService
	docRepo     *mockDocumentRepo
	suggRepo    *mockSuggestionRepo
	improveRepo *mockImprovementRepo
	analyzer    *mockAnalyzer
	extractor   *mockExtractor
	storage     *mockFileStorage
	tx          *mockTxManager
}

func newSuggestionFixture(docs ...*entity.Document) *suggestionFixture {
	f := &suggestionFixture{
		docRepo:     newMockDocumentRepo(docs...),
		suggRepo:    newMockSuggestionRepo(),
		improveRepo: newMockImprovementRepo(),
		analyzer:    &mockAnalyzer{result: &port.AnalysisResult{}},
		extractor:   &mockExtractor{text: "document body"},
		storage:     newMockFileStorage(),
		tx:          &mockTxManager{},
	}
	f.docRepo.tx = f.tx
	f.suggRepo.tx = f.tx
	f.svc = NewSuggestionService(
		f.docRepo, f.suggRepo, f.improveRepo,
		f.analyzer, f.extractor, f.storage, &mockFolderManager{},
		f.tx, nil, noopLogger{},
	)
	return f
}

func TestSuggestionService_GetSuggestions_EmptyListScoresFull(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})

	list, err := f.svc.GetSuggestions(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %d", len(list.Suggestions))
	}
	if list.Score != 100 {
		t.Errorf("expected score 100, got %d", list.Score)
	}
}

func TestSuggestionService_GenerateSuggestions(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1", DocumentType: "passport", FilePath: "doc-1/passport.pdf"})
	f.analyzer.result = &port.AnalysisResult{
		Findings: []port.SuggestionFinding{
			{Message: "photo page is blurry", Severity: entity.SeverityCritical},
			{Message: "missing signature", Severity: entity.SeverityImportant},
			{Message: "unclear finding", Severity: "bogus"},
		},
		RawJSON: `{"summary":"two issues"}`,
	}

	list, err := f.svc.GenerateSuggestions(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(list.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(list.Suggestions))
	}
	// Unrecognized severities degrade to MINOR rather than being dropped
	if list.Suggestions[2].Severity != entity.SeverityMinor {
		t.Errorf("expected MINOR for unknown severity, got %q", list.Suggestions[2].Severity)
	}
	if list.Score != 65 {
		t.Errorf("expected score 65, got %d", list.Score)
	}
	if f.docRepo.docs["doc-1"].AnalysisData == "" {
		t.Error("analysis snapshot not stored")
	}
}

func TestSuggestionService_GenerateSuggestions_SwapAndSnapshotShareOneTransaction(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1", FilePath: "doc-1/a.pdf"})
	f.analyzer.result = &port.AnalysisResult{
		Findings: []port.SuggestionFinding{{Message: "finding", Severity: entity.SeverityMinor}},
		RawJSON:  `{"summary":"one issue"}`,
	}

	if _, err := f.svc.GenerateSuggestions(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", f.tx.calls)
	}
	if f.suggRepo.txReplaces != 1 {
		t.Errorf("list swap must run inside the transaction, got %d", f.suggRepo.txReplaces)
	}
	if f.docRepo.txWrites != 1 {
		t.Errorf("analysis snapshot must run inside the transaction, got %d", f.docRepo.txWrites)
	}
	if f.docRepo.bareWrites != 0 {
		t.Errorf("no write may bypass the transaction, got %d", f.docRepo.bareWrites)
	}
}

func TestSuggestionService_GenerateSuggestions_ReplacesPriorList(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1", FilePath: "doc-1/a.pdf"})
	f.suggRepo.suggestions["doc-1"] = []*entity.OptimizationSuggestion{
		{DocumentID: "doc-1", Index: 0, Message: "stale finding", Severity: entity.SeverityCritical},
	}
	f.analyzer.result = &port.AnalysisResult{
		Findings: []port.SuggestionFinding{{Message: "fresh finding", Severity: entity.SeverityMinor}},
	}

	list, err := f.svc.GenerateSuggestions(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Suggestions) != 1 || list.Suggestions[0].Message != "fresh finding" {
		t.Errorf("stale suggestions must be replaced, got %+v", list.Suggestions)
	}
}

func TestSuggestionService_GenerateSuggestions_ExtractionFailure(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1", FilePath: "doc-1/a.pdf"})
	f.extractor.err = errors.New("unreadable file")

	if _, err := f.svc.GenerateSuggestions(context.Background(), "doc-1"); err == nil {
		t.Fatal("expected extraction failure to surface")
	}
	if len(f.suggRepo.suggestions["doc-1"]) != 0 {
		t.Error("suggestions must not change when extraction fails")
	}
}

func TestSuggestionService_ApplySuggestion(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})
	f.suggRepo.suggestions["doc-1"] = []*entity.OptimizationSuggestion{
		{DocumentID: "doc-1", Index: 0, Severity: entity.SeverityMinor},
		{DocumentID: "doc-1", Index: 1, Severity: entity.SeverityImportant},
	}

	list, err := f.svc.ApplySuggestion(context.Background(), "doc-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !list.Suggestions[1].Applied {
		t.Error("suggestion not marked applied")
	}
	// Applied suggestions still count toward the score
	if list.Score != 85 {
		t.Errorf("expected score 85, got %d", list.Score)
	}
}

func TestSuggestionService_ApplySuggestion_Idempotent(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})
	f.suggRepo.suggestions["doc-1"] = []*entity.OptimizationSuggestion{
		{DocumentID: "doc-1", Index: 0, Severity: entity.SeverityMinor, Applied: true},
	}

	if _, err := f.svc.ApplySuggestion(context.Background(), "doc-1", 0); err != nil {
		t.Fatalf("re-applying must not error: %v", err)
	}
	if f.suggRepo.markHits != 0 {
		t.Errorf("re-applying must not hit the store, got %d writes", f.suggRepo.markHits)
	}
}

func TestSuggestionService_ApplySuggestion_IndexOutOfRange(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})
	f.suggRepo.suggestions["doc-1"] = []*entity.OptimizationSuggestion{
		{DocumentID: "doc-1", Index: 0, Severity: entity.SeverityMinor},
	}

	for _, index := range []int{-1, 1, 99} {
		if _, err := f.svc.ApplySuggestion(context.Background(), "doc-1", index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("index %d: expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
}

func TestSuggestionService_WorkflowLifecycle(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})
	ctx := context.Background()

	active, err := f.svc.IsWorkflowActive(ctx, "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active {
		t.Error("workflow must not be active before start")
	}

	wf, err := f.svc.StartWorkflow(ctx, "doc-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if wf.Status != entity.ImprovementStatusStarted || wf.StartedAt == nil {
		t.Errorf("unexpected workflow state: %+v", wf)
	}

	active, _ = f.svc.IsWorkflowActive(ctx, "doc-1")
	if !active {
		t.Error("workflow must be active after start")
	}

	done, err := f.svc.CompleteWorkflow(ctx, "doc-1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if done.Status != entity.ImprovementStatusCompleted || done.CompletedAt == nil {
		t.Errorf("unexpected workflow state: %+v", done)
	}

	active, _ = f.svc.IsWorkflowActive(ctx, "doc-1")
	if active {
		t.Error("workflow must not be active after completion")
	}
}

func TestSuggestionService_CompleteWorkflow_NotStarted(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})

	if _, err := f.svc.CompleteWorkflow(context.Background(), "doc-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestSuggestionService_UploadImprovedDocument(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})

	rec, err := f.svc.UploadImprovedDocument(context.Background(), "doc-1", ImprovedUpload{
		FileName: "passport_v2.pdf",
		Content:  []byte("%PDF-1.4"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.ImprovedDocumentID == "" {
		t.Error("improved document id not assigned")
	}
	if rec.OriginalDocumentID != "doc-1" {
		t.Errorf("original id not recorded, got %q", rec.OriginalDocumentID)
	}
	if !strings.HasSuffix(rec.FilePath, ".pdf") {
		t.Errorf("stored path must keep the file extension, got %q", rec.FilePath)
	}
	if !f.storage.Exists(context.Background(), rec.FilePath) {
		t.Errorf("file not stored at %q", rec.FilePath)
	}
	if f.improveRepo.improved[rec.ImprovedDocumentID] == nil {
		t.Error("improved document record not persisted")
	}
}

func TestSuggestionService_UploadImprovedDocument_StorageFailure(t *testing.T) {
	f := newSuggestionFixture(&entity.Document{ID: "doc-1"})
	f.storage.saveErr = errors.New("disk full")

	_, err := f.svc.UploadImprovedDocument(context.Background(), "doc-1", ImprovedUpload{
		FileName: "passport_v2.pdf",
		Content:  []byte("data"),
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
}

func TestSuggestionService_GetComparison(t *testing.T) {
	f := newSuggestionFixture(
		&entity.Document{ID: "doc-1", AnalysisData: `{"score":60}`},
		&entity.Document{ID: "doc-2", AnalysisData: `{"score":95}`},
	)

	cmp, err := f.svc.GetComparison(context.Background(), "doc-1", "doc-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp.OriginalAnalysis != `{"score":60}` || cmp.ImprovedAnalysis != `{"score":95}` {
		t.Errorf("unexpected comparison payload: %+v", cmp)
	}
}

func TestSuggestionService_GetComparison_MissingAnalysis(t *testing.T) {
	f := newSuggestionFixture(
		&entity.Document{ID: "doc-1", AnalysisData: `{"score":60}`},
		&entity.Document{ID: "doc-2"},
	)

	if _, err := f.svc.GetComparison(context.Background(), "doc-1", "doc-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
