package model

import (
	"time"
)

// Document represents an uploaded contract and its analysis lifecycle
type Document struct {
	ID         string     `json:"id"`
	Filename   string     `json:"filename"`
	PDFURL     string     `json:"pdf_url"`
	PageCount  int        `json:"page_count"`
	Pages      []PageInfo `json:"pages,omitempty"`
	Status     string     `json:"status"` // processing, completed, failed
	OCRTaskID  string     `json:"ocr_task_id,omitempty"`
	FullText   string     `json:"full_text,omitempty"`
	Analysis   []Clause   `json:"analysis,omitempty"`
	ErrorMsg   string     `json:"error_msg,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PageInfo holds a page's native raster dimensions as measured at analysis time
type PageInfo struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clause is a single extracted, risk-tagged insight tied to a location
// in the source document.
type Clause struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Category    string   `json:"category"` // high, medium, low
	Score       float64  `json:"score"`
	Text        string   `json:"text,omitempty"`
	Explanation string   `json:"explanation"`
	Location    Location `json:"location"`
}

// Location is a clause's page number plus its bounding box in the page's
// native, unscaled coordinate space.
type Location struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document status constants
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Risk categories
const (
	CategoryHigh   = "high"
	CategoryMedium = "medium"
	CategoryLow    = "low"
)
