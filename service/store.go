package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/anothercodingguy/vidhived/config"
	"github.com/anothercodingguy/vidhived/model"
)

// DocumentStore is an in-memory store for documents and their analysis results
// In production, this should be replaced with a database
type DocumentStore struct {
	documents    map[string]*model.Document
	mu           sync.RWMutex
	maxDocuments int // Maximum documents to keep, 0 = unlimited
}

var (
	globalStore *DocumentStore
	storeOnce   sync.Once
)

// InitDocumentStore initializes the global document store with configuration
func InitDocumentStore(cfg *config.StoreConfig) {
	storeOnce.Do(func() {
		maxDocuments := cfg.MaxDocuments
		if maxDocuments < 0 {
			maxDocuments = 0
		}
		globalStore = &DocumentStore{
			documents:    make(map[string]*model.Document),
			maxDocuments: maxDocuments,
		}
		slog.Info("document store initialized", "max_documents", maxDocuments)
	})
}

// GetDocumentStore returns the global document store
func GetDocumentStore() *DocumentStore {
	if globalStore == nil {
		// Fallback initialization with default settings
		globalStore = &DocumentStore{
			documents:    make(map[string]*model.Document),
			maxDocuments: 100, // Default: keep 100 documents
		}
	}
	return globalStore
}

func (s *DocumentStore) Save(doc *model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.UpdatedAt = time.Now()
	s.documents[doc.ID] = doc

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
}

// Get returns a snapshot of the document, or nil. Callers never see the
// stored value directly, so the background pipeline cannot race a handler
// that is serializing the document.
func (s *DocumentStore) Get(id string) *model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil
	}
	snapshot := *doc
	return &snapshot
}

// SetOCRTaskID records the extraction task handle assigned to a document
func (s *DocumentStore) SetOCRTaskID(id, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.documents[id]; ok {
		d.OCRTaskID = taskID
		d.UpdatedAt = time.Now()
	}
}

func (s *DocumentStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
}

func (s *DocumentStore) UpdateStatus(id, status string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.documents[id]; ok {
		d.Status = status
		d.ErrorMsg = errMsg
		if status == model.StatusFailed {
			// A failed analysis keeps no partial result
			d.Analysis = nil
		}
		d.UpdatedAt = time.Now()
	}
}

// SetResult stores a completed analysis. The clause list fully replaces any
// prior result for the document.
func (s *DocumentStore) SetResult(id string, fullText string, clauses []model.Clause) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.documents[id]; ok {
		d.FullText = fullText
		d.Analysis = clauses
		d.Status = model.StatusCompleted
		d.ErrorMsg = ""
		d.UpdatedAt = time.Now()
	}
}

// cleanupIfNeeded removes oldest documents if store exceeds maxDocuments
// Must be called with lock held
func (s *DocumentStore) cleanupIfNeeded() {
	if s.maxDocuments <= 0 {
		return // Unlimited
	}

	if len(s.documents) <= s.maxDocuments {
		return
	}

	// Sort documents by creation time
	documents := make([]*model.Document, 0, len(s.documents))
	for _, d := range s.documents {
		documents = append(documents, d)
	}
	sort.Slice(documents, func(i, j int) bool {
		return documents[i].CreatedAt.Before(documents[j].CreatedAt)
	})

	// Remove oldest documents
	removeCount := len(documents) - s.maxDocuments
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old document",
			"document_id", documents[i].ID,
			"created_at", documents[i].CreatedAt,
		)
		delete(s.documents, documents[i].ID)
	}
}

// Count returns the number of documents in the store
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
