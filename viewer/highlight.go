package viewer

import (
	"sync"
	"time"

	"github.com/anothercodingguy/vidhived/model"
)

// DefaultScrollSettle is how long the page-level scroll is given to settle
// before the finer region scroll fires. The sub-region only becomes
// addressable once the page itself has scrolled into the rendering viewport.
const DefaultScrollSettle = 500 * time.Millisecond

// HighlightState is the visual state of one clause overlay
type HighlightState int

const (
	HighlightNone HighlightState = iota
	HighlightHovered
	HighlightActive
)

// Highlighter keys selection and hover state over the extracted clauses and
// resolves a selected clause to its page and scroll target.
type Highlighter struct {
	mu       sync.Mutex
	registry *PageRegistry
	clauses  map[string]model.Clause
	active   string
	hovered  string
	settle   time.Duration
	after    func(time.Duration, func()) // injectable for tests
}

func NewHighlighter(registry *PageRegistry) *Highlighter {
	return &Highlighter{
		registry: registry,
		clauses:  make(map[string]model.Clause),
		settle:   DefaultScrollSettle,
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// SetClauses loads a completed analysis result. It fully replaces the prior
// clause set and clears any selection into it.
func (h *Highlighter) SetClauses(clauses []model.Clause) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clauses = make(map[string]model.Clause, len(clauses))
	for _, cl := range clauses {
		h.clauses[cl.ID] = cl
	}
	h.active = ""
	h.hovered = ""
}

// Select marks a clause as active and scrolls it into view in two phases:
// first the page surface, then, after the page scroll has settled, the exact
// overlay region. When the clause's page has no registered surface the
// selection is still recorded and no scroll happens.
func (h *Highlighter) Select(clauseID string) {
	h.mu.Lock()
	h.active = clauseID
	clause, known := h.clauses[clauseID]
	settle := h.settle
	after := h.after
	h.mu.Unlock()

	if !known {
		return
	}

	page := clause.Location.Page
	surface, ok := h.registry.Surface(page)
	if !ok {
		return
	}

	surface.ScrollIntoView()

	after(settle, func() {
		// Displayed size is read at fire time, after the layout has settled
		box := Rect{
			X:      clause.Location.X,
			Y:      clause.Location.Y,
			Width:  clause.Location.Width,
			Height: clause.Location.Height,
		}
		region, ok := h.registry.Project(page, box)
		if !ok {
			return
		}
		if surface, ok := h.registry.Surface(page); ok {
			surface.ScrollToRegion(region)
		}
	})
}

// Hover marks a clause as hovered; an empty ID clears the hover state.
// Hovering has no scrolling side effect.
func (h *Highlighter) Hover(clauseID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hovered = clauseID
}

// Active returns the active clause ID, or ""
func (h *Highlighter) Active() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Hovered returns the hovered clause ID, or ""
func (h *Highlighter) Hovered() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hovered
}

// StateOf returns the visual state for a clause. Active overrides hovered
// when both apply to the same clause.
func (h *Highlighter) StateOf(clauseID string) HighlightState {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch clauseID {
	case "":
		return HighlightNone
	case h.active:
		return HighlightActive
	case h.hovered:
		return HighlightHovered
	default:
		return HighlightNone
	}
}

// Overlay projects a clause's stored location onto its page's current
// displayed dimensions. ok is false when the page's native size has not been
// captured yet, in which case the overlay must not render.
func (h *Highlighter) Overlay(clauseID string) (Rect, bool) {
	h.mu.Lock()
	clause, known := h.clauses[clauseID]
	h.mu.Unlock()

	if !known {
		return Rect{}, false
	}
	return h.registry.Project(clause.Location.Page, Rect{
		X:      clause.Location.X,
		Y:      clause.Location.Y,
		Width:  clause.Location.Width,
		Height: clause.Location.Height,
	})
}
