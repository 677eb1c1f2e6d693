package viewer

import (
	"sync"
)

// Zoom bounds and step
const (
	ZoomMin  = 0.5
	ZoomMax  = 3.0
	ZoomStep = 0.25
)

// A page becomes "current" once more than half of it is visible
const visibilityThreshold = 0.5

// Viewport owns the zoom level and the current-page tracking for one
// document view. Zoom changes never scroll or resize anything themselves;
// display sizes are re-read from the registry on the next render pass.
type Viewport struct {
	mu         sync.Mutex
	registry   *PageRegistry
	pageCount  int
	zoom       float64
	current    int
	visibility map[int]float64
}

func NewViewport(registry *PageRegistry, pageCount int) *Viewport {
	return &Viewport{
		registry:   registry,
		pageCount:  pageCount,
		zoom:       1.0,
		current:    1,
		visibility: make(map[int]float64),
	}
}

func (v *Viewport) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// ZoomIn raises the zoom by one step, clamped to ZoomMax
func (v *Viewport) ZoomIn() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom += ZoomStep
	if v.zoom > ZoomMax {
		v.zoom = ZoomMax
	}
}

// ZoomOut lowers the zoom by one step, clamped to ZoomMin
func (v *Viewport) ZoomOut() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom -= ZoomStep
	if v.zoom < ZoomMin {
		v.zoom = ZoomMin
	}
}

// CurrentPage returns the 1-based page currently considered visible
func (v *Viewport) CurrentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// ObserveVisibility records the visible fraction of a page and derives the
// current page from the full visibility state: whichever page has the
// largest fraction above the threshold wins. Below-threshold signals leave
// the current page unchanged.
func (v *Viewport) ObserveVisibility(page int, fraction float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if page < 1 || page > v.pageCount {
		return
	}
	v.visibility[page] = fraction

	best := 0
	bestFraction := visibilityThreshold
	for p, f := range v.visibility {
		// earlier page wins a tie so map iteration order cannot flip the result
		if f > bestFraction || (f == bestFraction && best != 0 && p < best) {
			best = p
			bestFraction = f
		}
	}
	if best != 0 {
		v.current = best
	}
}

// NextPage advances to the following page and scrolls it into view.
// No-op on the last page.
func (v *Viewport) NextPage() {
	v.navigate(1)
}

// PrevPage moves to the preceding page and scrolls it into view.
// No-op on the first page.
func (v *Viewport) PrevPage() {
	v.navigate(-1)
}

func (v *Viewport) navigate(delta int) {
	v.mu.Lock()
	target := v.current + delta
	if target < 1 || target > v.pageCount {
		v.mu.Unlock()
		return
	}
	v.current = target
	v.mu.Unlock()

	// The next visibility signal reconciles this override
	if surface, ok := v.registry.Surface(target); ok {
		surface.ScrollIntoView()
	}
}
