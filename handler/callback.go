package handler

import (
	"encoding/json"
	"net/http"

	"github.com/anothercodingguy/vidhived/config"
	"github.com/anothercodingguy/vidhived/model"
	"github.com/anothercodingguy/vidhived/pkg/logger"
	"github.com/anothercodingguy/vidhived/service"
	"github.com/gin-gonic/gin"
)

// CallbackHandler receives push-style completion notices from the OCR
// service, as an alternative to polling.
type CallbackHandler struct {
	ocrService *service.OCRService
	analyzer   *service.Analyzer
	store      *service.DocumentStore
	ocrConfig  *config.OCRConfig
}

func NewCallbackHandler(ocrSvc *service.OCRService, aiSvc *service.AIService, ocrCfg *config.OCRConfig) *CallbackHandler {
	return &CallbackHandler{
		ocrService: ocrSvc,
		analyzer:   service.NewAnalyzer(aiSvc),
		store:      service.GetDocumentStore(),
		ocrConfig:  ocrCfg,
	}
}

type CallbackRequest struct {
	Checksum string `json:"checksum"`
	Content  string `json:"content"`
}

type CallbackContent struct {
	TaskID    string `json:"task_id"`
	DataID    string `json:"data_id"`
	State     string `json:"state"`
	ResultURL string `json:"result_url"`
	ErrorMsg  string `json:"err_msg"`
}

// HandleCallback receives a completion callback from the OCR service
func (h *CallbackHandler) HandleCallback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Parse content
	var content CallbackContent
	if err := json.Unmarshal([]byte(req.Content), &content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content format"})
		return
	}

	if h.ocrConfig.Seed != "" && !h.ocrService.VerifyCallback(req.Checksum, req.Content, content.DataID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Checksum verification failed"})
		return
	}

	// Find document by DataID (which is our documentID)
	doc := h.store.Get(content.DataID)
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	ctx := c.Request.Context()

	switch content.State {
	case "done":
		if content.ResultURL == "" {
			h.store.UpdateStatus(doc.ID, model.StatusFailed, "OCR callback carried no result")
			break
		}
		layout, err := h.ocrService.FetchLayoutResult(content.ResultURL)
		if err != nil {
			h.store.UpdateStatus(doc.ID, model.StatusFailed, "Failed to fetch layout result: "+err.Error())
			break
		}
		fullText, clauses := h.analyzer.BuildClauses(ctx, layout)
		h.store.SetResult(doc.ID, fullText, clauses)
		logger.Info(ctx, "analysis completed via callback", "document_id", doc.ID, "clauses", len(clauses))
	case "failed":
		h.store.UpdateStatus(doc.ID, model.StatusFailed, content.ErrorMsg)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Callback received"})
}
