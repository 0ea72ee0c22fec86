package entity

import "time"

// OptimizationSuggestion is a flagged quality or completeness issue on a
// document. Index is the position in the owning document's suggestion list
// and is stable for the life of the list. Applied is monotonic: once true it
// never reverts.
type OptimizationSuggestion struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"`
	Message    string    `json:"message"`
	Severity   string    `json:"severity"`
	Applied    bool      `json:"applied"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImprovementWorkflow tracks the improve-and-reupload workflow for a document
type ImprovementWorkflow struct {
	DocumentID  string     `json:"document_id"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Active returns true exactly while the workflow has been started and not completed
func (w *ImprovementWorkflow) Active() bool {
	return w != nil && w.Status == ImprovementStatusStarted
}

// ImprovedDocumentRecord links an uploaded improved document back to its original
type ImprovedDocumentRecord struct {
	ImprovedDocumentID string    `json:"improved_document_id"`
	OriginalDocumentID string    `json:"original_document_id"`
	FilePath           string    `json:"file_path"`
	FileURL            string    `json:"file_url"`
	CreatedAt          time.Time `json:"created_at"`
}

// ComparisonResult pairs the analysis snapshots of an original document and
// its improved version
type ComparisonResult struct {
	OriginalDocumentID string `json:"original_document_id"`
	ImprovedDocumentID string `json:"improved_document_id"`
	OriginalAnalysis   string `json:"original_analysis"`
	ImprovedAnalysis   string `json:"improved_analysis"`
}

// Optimization score weights per severity
const (
	scoreWeightCritical  = 20
	scoreWeightImportant = 10
	scoreWeightMinor     = 5
)

// OptimizationScore derives the 0-100 score from the current suggestion list.
// The score is a function of severity counts only; the applied flag does not
// change it.
func OptimizationScore(suggestions []*OptimizationSuggestion) int {
	score := 100
	for _, s := range suggestions {
		switch s.Severity {
		case SeverityCritical:
			score -= scoreWeightCritical
		case SeverityImportant:
			score -= scoreWeightImportant
		case SeverityMinor:
			score -= scoreWeightMinor
		}
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
