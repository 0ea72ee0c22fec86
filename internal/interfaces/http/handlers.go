package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/application/service"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/report"
)

// maxUploadBytes caps multipart file uploads
const maxUploadBytes = 32 << 20

// HealthFunc reports process health plus per-component detail
type HealthFunc func() (healthy bool, detail interface{})

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	reporter *report.ExcelWriter
	healthFn HealthFunc
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, reporter *report.ExcelWriter, healthFn HealthFunc, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		reporter: reporter,
		healthFn: healthFn,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health. With a wired health function it reports
// per-component health and returns 503 when any component is down.
func (h *Handlers) HealthCheck(c *gin.Context) {
	if h.healthFn != nil {
		healthy, detail := h.healthFn()
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, Response{Success: healthy, Data: detail})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateDocument handles POST /api/documents (multipart: file, document_type)
func (h *Handlers) CreateDocument(c *gin.Context) {
	documentType := c.PostForm("document_type")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.fail(c, http.StatusBadRequest, "file too large")
		return
	}

	content, err := readMultipartFile(fileHeader)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "error", err)
		h.fail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	doc, err := h.services.Document.Create(c.Request.Context(), service.DocumentUpload{
		DocumentType: documentType,
		FileName:     fileHeader.Filename,
		Content:      content,
	})
	if err != nil {
		h.serviceError(c, err, "create document")
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: doc})
}

// GetDocument handles GET /api/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	doc, err := h.services.Document.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "get document")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// GetVerificationStatus handles GET /api/documents/:id/verification
func (h *Handlers) GetVerificationStatus(c *gin.Context) {
	info, err := h.services.Status.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "get verification status")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: info})
}

// RequestVerification handles POST /api/documents/:id/verification/request
func (h *Handlers) RequestVerification(c *gin.Context) {
	var req service.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := h.services.Status.RequestVerification(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.serviceError(c, err, "request verification")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: info})
}

// CancelVerification handles POST /api/documents/:id/verification/cancel
func (h *Handlers) CancelVerification(c *gin.Context) {
	info, err := h.services.Status.CancelVerification(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "cancel verification")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: info})
}

// ApplyOutcome handles POST /api/documents/:id/verification/outcome
func (h *Handlers) ApplyOutcome(c *gin.Context) {
	var outcome service.Outcome
	if err := c.ShouldBindJSON(&outcome); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := h.services.Status.ApplyOutcome(c.Request.Context(), c.Param("id"), outcome)
	if err != nil {
		h.serviceError(c, err, "apply outcome")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: info})
}

// GetCurrentStep handles GET /api/documents/:id/verification/step
func (h *Handlers) GetCurrentStep(c *gin.Context) {
	step, err := h.services.Request.CurrentStep(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "get current step")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: step})
}

// SubmitAdditionalInfo handles POST /api/documents/:id/verification/additional-info
func (h *Handlers) SubmitAdditionalInfo(c *gin.Context) {
	var info entity.AdditionalInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	step, err := h.services.Request.SubmitAdditionalInfo(c.Request.Context(), c.Param("id"), info)
	if err != nil {
		h.serviceError(c, err, "submit additional info")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: step})
}

// UploadSupportingDocument handles POST /api/documents/:id/verification/supporting-documents
func (h *Handlers) UploadSupportingDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.fail(c, http.StatusBadRequest, "file too large")
		return
	}

	content, err := readMultipartFile(fileHeader)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "error", err)
		h.fail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	step, err := h.services.Request.UploadSupportingDocument(c.Request.Context(), c.Param("id"), service.SupportingDocumentUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		h.serviceError(c, err, "upload supporting document")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: step})
}

// GetSuggestions handles GET /api/documents/:id/suggestions
func (h *Handlers) GetSuggestions(c *gin.Context) {
	list, err := h.services.Suggestion.GetSuggestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "get suggestions")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// GenerateSuggestions handles POST /api/documents/:id/suggestions/generate
func (h *Handlers) GenerateSuggestions(c *gin.Context) {
	list, err := h.services.Suggestion.GenerateSuggestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "generate suggestions")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// ApplySuggestion handles POST /api/documents/:id/suggestions/:index/apply
func (h *Handlers) ApplySuggestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, "invalid suggestion index")
		return
	}

	list, err := h.services.Suggestion.ApplySuggestion(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		h.serviceError(c, err, "apply suggestion")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// GetImprovementWorkflow handles GET /api/documents/:id/improvement
func (h *Handlers) GetImprovementWorkflow(c *gin.Context) {
	active, err := h.services.Suggestion.IsWorkflowActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "get improvement workflow")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"active": active}})
}

// StartImprovement handles POST /api/documents/:id/improvement/start
func (h *Handlers) StartImprovement(c *gin.Context) {
	wf, err := h.services.Suggestion.StartWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "start improvement workflow")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: wf})
}

// UploadImprovedDocument handles POST /api/documents/:id/improvement/upload
func (h *Handlers) UploadImprovedDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.fail(c, http.StatusBadRequest, "file too large")
		return
	}

	content, err := readMultipartFile(fileHeader)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "error", err)
		h.fail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	rec, err := h.services.Suggestion.UploadImprovedDocument(c.Request.Context(), c.Param("id"), service.ImprovedUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		h.serviceError(c, err, "upload improved document")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rec})
}

// CompleteImprovement handles POST /api/documents/:id/improvement/complete
func (h *Handlers) CompleteImprovement(c *gin.Context) {
	wf, err := h.services.Suggestion.CompleteWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "complete improvement workflow")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: wf})
}

// GetComparison handles GET /api/documents/:id/comparison/:improvedId
func (h *Handlers) GetComparison(c *gin.Context) {
	result, err := h.services.Suggestion.GetComparison(c.Request.Context(), c.Param("id"), c.Param("improvedId"))
	if err != nil {
		h.serviceError(c, err, "get comparison")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ListProviders handles GET /api/providers
func (h *Handlers) ListProviders(c *gin.Context) {
	providers, err := h.services.Provider.ListProviders(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "list providers")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: providers})
}

// SelectProviderRequest is the body for provider selection
type SelectProviderRequest struct {
	ProviderID string `json:"provider_id"`
}

// SelectProvider handles POST /api/documents/:id/provider/select
func (h *Handlers) SelectProvider(c *gin.Context) {
	var req SelectProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.services.Provider.SelectProvider(c.Request.Context(), c.Param("id"), req.ProviderID); err != nil {
		h.serviceError(c, err, "select provider")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"provider_id": req.ProviderID}})
}

// SubmitToProvider handles POST /api/documents/:id/provider/submit
func (h *Handlers) SubmitToProvider(c *gin.Context) {
	var req SelectProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.services.Provider.SubmitToProvider(c.Request.Context(), c.Param("id"), req.ProviderID)
	if err != nil {
		h.serviceError(c, err, "submit to provider")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ListSubmissions handles GET /api/documents/:id/provider/submissions
func (h *Handlers) ListSubmissions(c *gin.Context) {
	subs, err := h.services.Provider.ListSubmissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "list submissions")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: subs})
}

// CheckProviderStatus handles GET /api/documents/:id/provider/status/:reference
func (h *Handlers) CheckProviderStatus(c *gin.Context) {
	status, err := h.services.Provider.CheckProviderStatus(c.Request.Context(), c.Param("id"), c.Param("reference"))
	if err != nil {
		h.serviceError(c, err, "check provider status")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: status})
}

// DownloadReport handles GET /api/documents/:id/report
func (h *Handlers) DownloadReport(c *gin.Context) {
	ctx := c.Request.Context()
	documentID := c.Param("id")

	doc, err := h.services.Document.Get(ctx, documentID)
	if err != nil {
		h.serviceError(c, err, "load document for report")
		return
	}

	list, err := h.services.Suggestion.GetSuggestions(ctx, documentID)
	if err != nil {
		h.serviceError(c, err, "load suggestions for report")
		return
	}

	subs, err := h.services.Provider.ListSubmissions(ctx, documentID)
	if err != nil {
		h.serviceError(c, err, "load submissions for report")
		return
	}

	content, err := h.reporter.Write(&report.Summary{
		Document:    doc,
		Suggestions: list.Suggestions,
		Score:       list.Score,
		Submissions: subs,
	})
	if err != nil {
		h.serviceError(c, err, "generate report")
		return
	}

	fileName := fmt.Sprintf("verification-report-%s.xlsx", documentID)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// serviceError maps application errors to HTTP statuses
func (h *Handlers) serviceError(c *gin.Context, err error, op string) {
	status := http.StatusInternalServerError

	var providerErr *port.ProviderError
	var storeErr *port.StoreError

	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrIndexOutOfRange):
		status = http.StatusBadRequest
	case errors.As(err, &providerErr):
		status = http.StatusBadGateway
	case errors.As(err, &storeErr), errors.Is(err, service.ErrUploadFailed):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "op", op, "error", err)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func (h *Handlers) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
}
