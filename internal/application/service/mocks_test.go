package service

import (
	"context"
	"fmt"
	"time"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	calls  int
	active bool
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.active {
		return fn(ctx)
	}
	m.calls++
	m.active = true
	defer func() { m.active = false }()
	return fn(ctx)
}

type mockDocumentRepo struct {
	docs             map[string]*entity.Document
	updateDetailsErr error
	detailWrites     int

	// When tx is set, writes are counted against the open transaction
	tx         *mockTxManager
	txWrites   int
	bareWrites int
}

func (m *mockDocumentRepo) recordWrite() {
	if m.tx != nil && m.tx.active {
		m.txWrites++
	} else {
		m.bareWrites++
	}
}

func newMockDocumentRepo(docs ...*entity.Document) *mockDocumentRepo {
	m := &mockDocumentRepo{docs: make(map[string]*entity.Document)}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return m.docs[id], nil
}

func (m *mockDocumentRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	m.recordWrite()
	doc, ok := m.docs[id]
	if !ok {
		return port.NewStoreError("update status", fmt.Errorf("no document %s", id))
	}
	doc.VerificationStatus = status
	return nil
}

func (m *mockDocumentRepo) UpdateDetails(ctx context.Context, id string, details *entity.VerificationDetails) error {
	m.recordWrite()
	m.detailWrites++
	if m.updateDetailsErr != nil {
		return m.updateDetailsErr
	}
	doc, ok := m.docs[id]
	if !ok {
		return port.NewStoreError("update details", fmt.Errorf("no document %s", id))
	}
	doc.VerificationDetails = details
	return nil
}

func (m *mockDocumentRepo) UpdateAnalysis(ctx context.Context, id string, analysis string) error {
	m.recordWrite()
	doc, ok := m.docs[id]
	if !ok {
		return port.NewStoreError("update analysis", fmt.Errorf("no document %s", id))
	}
	doc.AnalysisData = analysis
	return nil
}

type mockSuggestionRepo struct {
	suggestions map[string][]*entity.OptimizationSuggestion
	markHits    int

	tx         *mockTxManager
	txReplaces int
}

func newMockSuggestionRepo() *mockSuggestionRepo {
	return &mockSuggestionRepo{suggestions: make(map[string][]*entity.OptimizationSuggestion)}
}

func (m *mockSuggestionRepo) GetByDocumentID(ctx context.Context, documentID string) ([]*entity.OptimizationSuggestion, error) {
	return m.suggestions[documentID], nil
}

func (m *mockSuggestionRepo) Replace(ctx context.Context, documentID string, suggestions []*entity.OptimizationSuggestion) error {
	if m.tx != nil && m.tx.active {
		m.txReplaces++
	}
	m.suggestions[documentID] = suggestions
	return nil
}

func (m *mockSuggestionRepo) MarkApplied(ctx context.Context, documentID string, index int) error {
	m.markHits++
	for _, s := range m.suggestions[documentID] {
		if s.Index == index {
			s.Applied = true
			return nil
		}
	}
	return port.NewStoreError("mark applied", fmt.Errorf("no suggestion at index %d", index))
}

type mockSubmissionRepo struct {
	submissions []*entity.ProviderSubmission
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *entity.ProviderSubmission) error {
	sub.ID = int64(len(m.submissions) + 1)
	m.submissions = append(m.submissions, sub)
	return nil
}

func (m *mockSubmissionRepo) GetByReference(ctx context.Context, reference string) (*entity.ProviderSubmission, error) {
	for _, s := range m.submissions {
		if s.Reference == reference {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSubmissionRepo) GetByDocumentID(ctx context.Context, documentID string) ([]*entity.ProviderSubmission, error) {
	var out []*entity.ProviderSubmission
	for _, s := range m.submissions {
		if s.DocumentID == documentID {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockImprovementRepo struct {
	workflows map[string]*entity.ImprovementWorkflow
	improved  map[string]*entity.ImprovedDocumentRecord
}

func newMockImprovementRepo() *mockImprovementRepo {
	return &mockImprovementRepo{
		workflows: make(map[string]*entity.ImprovementWorkflow),
		improved:  make(map[string]*entity.ImprovedDocumentRecord),
	}
}

func (m *mockImprovementRepo) GetWorkflow(ctx context.Context, documentID string) (*entity.ImprovementWorkflow, error) {
	return m.workflows[documentID], nil
}

func (m *mockImprovementRepo) UpsertWorkflow(ctx context.Context, wf *entity.ImprovementWorkflow) error {
	m.workflows[wf.DocumentID] = wf
	return nil
}

func (m *mockImprovementRepo) InsertImprovedDocument(ctx context.Context, rec *entity.ImprovedDocumentRecord) error {
	m.improved[rec.ImprovedDocumentID] = rec
	return nil
}

func (m *mockImprovementRepo) GetImprovedDocument(ctx context.Context, improvedID string) (*entity.ImprovedDocumentRecord, error) {
	return m.improved[improvedID], nil
}

type mockProviderClient struct {
	catalog      []*entity.VerificationProvider
	catalogErr   error
	submitErr    error
	submitHits   int
	status       *entity.ProviderStatus
	statusErr    error
	statusChecks int
}

func (m *mockProviderClient) FetchCatalog(ctx context.Context) ([]*entity.VerificationProvider, error) {
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	return m.catalog, nil
}

func (m *mockProviderClient) Submit(ctx context.Context, documentID, providerID, reference string) error {
	m.submitHits++
	return m.submitErr
}

func (m *mockProviderClient) CheckStatus(ctx context.Context, reference string) (*entity.ProviderStatus, error) {
	m.statusChecks++
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if m.status != nil {
		return m.status, nil
	}
	return &entity.ProviderStatus{Status: entity.ProviderStatusInProgress, LastUpdated: time.Now()}, nil
}

type mockAnalyzer struct {
	result *port.AnalysisResult
	err    error
}

func (m *mockAnalyzer) Analyze(ctx context.Context, documentType, text string) (*port.AnalysisResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockFileStorage struct {
	files   map[string][]byte
	saveErr error
}

func newMockFileStorage() *mockFileStorage {
	return &mockFileStorage{files: make(map[string][]byte)}
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.files[path] = content
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no file %s", path)
	}
	return content, nil
}

func (m *mockFileStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *mockFileStorage) Delete(ctx context.Context, path string) error {
	delete(m.files, path)
	return nil
}

func (m *mockFileStorage) GetFullPath(relativePath string) string {
	return "/storage/" + relativePath
}

type mockFolderManager struct {
	createErr error
}

func (m *mockFolderManager) CreateFolder(ctx context.Context, documentID string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	return documentID, nil
}

func (m *mockFolderManager) GetPath(name string) string { return name }

func (m *mockFolderManager) Exists(ctx context.Context, name string) bool { return true }

func (m *mockFolderManager) SanitizeName(name string) string { return name }
