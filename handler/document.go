package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/anothercodingguy/vidhived/config"
	"github.com/anothercodingguy/vidhived/model"
	"github.com/anothercodingguy/vidhived/pkg/logger"
	"github.com/anothercodingguy/vidhived/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	minioService *service.MinioService
	ocrService   *service.OCRService
	aiService    *service.AIService
	analyzer     *service.Analyzer
	store        *service.DocumentStore
	ocrConfig    *config.OCRConfig
}

func NewDocumentHandler(minioSvc *service.MinioService, ocrSvc *service.OCRService, aiSvc *service.AIService, ocrCfg *config.OCRConfig) *DocumentHandler {
	return &DocumentHandler{
		minioService: minioSvc,
		ocrService:   ocrSvc,
		aiService:    aiSvc,
		analyzer:     service.NewAnalyzer(aiSvc),
		store:        service.GetDocumentStore(),
		ocrConfig:    ocrCfg,
	}
}

// Upload handles contract PDF upload and starts the analysis pipeline
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part in the request"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}

	// Validate file type - PDF only
	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")
	if ext != ".pdf" || (contentType != "" && contentType != "application/pdf" && contentType != "application/octet-stream") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Please upload a PDF."})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	// Parse the PDF for page count and native page dimensions; this also
	// rejects files that only claim to be PDFs
	pages, err := service.InspectPDF(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Please upload a PDF."})
		return
	}

	documentID := uuid.New().String()

	objectName, err := h.minioService.UploadPDF(c.Request.Context(), documentID, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file: " + err.Error()})
		return
	}

	// Presigned URL lets the OCR service fetch the PDF directly
	pdfURL, err := h.minioService.GetPresignedURL(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	doc := &model.Document{
		ID:        documentID,
		Filename:  header.Filename,
		PDFURL:    pdfURL,
		PageCount: len(pages),
		Pages:     pages,
		Status:    model.StatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	h.store.Save(doc)

	logger.Info(c.Request.Context(), "upload accepted, starting analysis",
		"document_id", documentID,
		"filename", header.Filename,
		"pages", len(pages),
	)

	go h.processAnalysisTask(documentID, pdfURL)

	c.JSON(http.StatusAccepted, gin.H{
		"message":    "File uploaded successfully. Analysis started.",
		"documentId": documentID,
	})
}

// processAnalysisTask runs the OCR + scoring pipeline asynchronously
func (h *DocumentHandler) processAnalysisTask(documentID, pdfURL string) {
	ctx := context.Background()

	resp, err := h.ocrService.CreateTask(pdfURL, documentID)
	if err != nil {
		logger.Error(ctx, "failed to create OCR task", "document_id", documentID, "error", err)
		h.store.UpdateStatus(documentID, model.StatusFailed, err.Error())
		return
	}

	taskID := resp.Data.TaskID
	h.store.SetOCRTaskID(documentID, taskID)

	logger.Info(ctx, "OCR task created", "document_id", documentID, "task_id", taskID)

	// Poll for the result unless a callback is configured
	if h.ocrConfig.CallbackURL == "" {
		h.pollOCRResult(ctx, documentID, taskID)
	}
}

// pollOCRResult polls the OCR service until the task reaches a terminal state
func (h *DocumentHandler) pollOCRResult(ctx context.Context, documentID, taskID string) {
	interval := time.Duration(h.ocrConfig.PollSeconds) * time.Second

	for attempt := 1; attempt <= h.ocrConfig.MaxPollCount; attempt++ {
		time.Sleep(interval)

		status, err := h.ocrService.GetTaskStatus(taskID)
		if err != nil {
			logger.Warn(ctx, "OCR poll attempt failed", "document_id", documentID, "attempt", attempt, "error", err)
			continue
		}

		switch status.Data.State {
		case "done":
			h.completeAnalysis(ctx, documentID, status.Data.ResultURL)
			return
		case "failed":
			logger.Error(ctx, "OCR task failed", "document_id", documentID, "error", status.Data.ErrorMsg)
			h.store.UpdateStatus(documentID, model.StatusFailed, status.Data.ErrorMsg)
			return
		case "running":
			if status.Data.ExtractProgress.TotalPages > 0 {
				logger.Debug(ctx, "OCR progress",
					"document_id", documentID,
					"extracted_pages", status.Data.ExtractProgress.ExtractedPages,
					"total_pages", status.Data.ExtractProgress.TotalPages,
				)
			}
		}
	}

	logger.Error(ctx, "OCR task polling timeout", "document_id", documentID)
	h.store.UpdateStatus(documentID, model.StatusFailed, "Task polling timeout")
}

// completeAnalysis fetches the layout result, builds the clause list and
// stores the terminal result
func (h *DocumentHandler) completeAnalysis(ctx context.Context, documentID string, resultURL string) {
	if resultURL == "" {
		h.store.UpdateStatus(documentID, model.StatusFailed, "OCR task finished without a result")
		return
	}

	layout, err := h.ocrService.FetchLayoutResult(resultURL)
	if err != nil {
		logger.Error(ctx, "failed to fetch layout result", "document_id", documentID, "error", err)
		h.store.UpdateStatus(documentID, model.StatusFailed, "Failed to fetch layout result: "+err.Error())
		return
	}

	fullText, clauses := h.analyzer.BuildClauses(ctx, layout)
	h.store.SetResult(documentID, fullText, clauses)

	logger.Info(ctx, "analysis completed", "document_id", documentID, "clauses", len(clauses))

	if err := h.minioService.SaveResultJSON(ctx, documentID, gin.H{
		"documentId": documentID,
		"status":     model.StatusCompleted,
		"analysis":   clauses,
	}); err != nil {
		logger.Warn(ctx, "failed to persist result JSON", "document_id", documentID, "error", err)
	}
}

// Get returns the status and, once completed, the analysis of a document.
// This is the endpoint the viewer's job tracker polls.
func (h *DocumentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	doc := h.store.Get(id)
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	resp := gin.H{
		"documentId": doc.ID,
		"status":     doc.Status,
	}
	switch doc.Status {
	case model.StatusCompleted:
		resp["analysis"] = doc.Analysis
	case model.StatusFailed:
		resp["error"] = doc.ErrorMsg
	}

	c.JSON(http.StatusOK, resp)
}

type AskRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	Query      string `json:"query" binding:"required"`
}

// Ask answers a free-form question scoped to a completed document
func (h *DocumentHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing documentId or query in request body"})
		return
	}

	doc := h.store.Get(req.DocumentID)
	if doc == nil || doc.Status != model.StatusCompleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document analysis is not complete or does not exist."})
		return
	}

	answer, err := h.aiService.Answer(c.Request.Context(), doc.FullText, req.Query)
	if err != nil {
		logger.Error(c.Request.Context(), "AI answer failed", "document_id", doc.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get explanation from AI model"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// Delete removes a document and its stored analysis
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	doc := h.store.Get(id)
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	h.store.Delete(id)

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
