package viewer

import (
	"sync"
)

// Surface is a live rendered page the registry can measure and scroll.
type Surface interface {
	// DeclaredSize is the page's own declared, unscaled size. It is read once,
	// at first successful render, to capture the native dimensions.
	DeclaredSize() Size
	// DisplayedSize is the surface's current on-screen size, which changes
	// with zoom and window resize.
	DisplayedSize() Size
	// ScrollIntoView brings the whole page into the viewport
	ScrollIntoView()
	// ScrollToRegion brings a region, in displayed coordinates, into the viewport
	ScrollToRegion(r Rect)
}

type pageRecord struct {
	surface Surface
	native  Size
	// native dimensions are captured exactly once; re-renders at a different
	// zoom must not overwrite them
	captured bool
}

// PageRegistry maps page numbers to their live rendered surfaces and captured
// native dimensions. Entries live until the document is discarded.
type PageRegistry struct {
	mu    sync.RWMutex
	pages map[int]*pageRecord
}

func NewPageRegistry() *PageRegistry {
	return &PageRegistry{pages: make(map[int]*pageRecord)}
}

// Register records a page's rendered surface. The first registration with a
// valid declared size captures the page's native dimensions; later
// registrations only refresh the surface reference.
func (r *PageRegistry) Register(page int, s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.pages[page]
	if !ok {
		rec = &pageRecord{}
		r.pages[page] = rec
	}
	rec.surface = s

	if !rec.captured {
		declared := s.DeclaredSize()
		if declared.Width > 0 && declared.Height > 0 {
			rec.native = declared
			rec.captured = true
		}
	}
}

// Surface returns the live surface for a page, if registered
func (r *PageRegistry) Surface(page int) (Surface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.pages[page]
	if !ok || rec.surface == nil {
		return nil, false
	}
	return rec.surface, true
}

// NativeSize returns a page's captured native dimensions. ok is false until
// the page has rendered successfully once.
func (r *PageRegistry) NativeSize(page int) (Size, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.pages[page]
	if !ok || !rec.captured {
		return Size{}, false
	}
	return rec.native, true
}

// DisplayedSize reads a page's current on-screen size directly from the live
// surface. It is never cached.
func (r *PageRegistry) DisplayedSize(page int) (Size, bool) {
	r.mu.RLock()
	rec, ok := r.pages[page]
	r.mu.RUnlock()

	if !ok || rec.surface == nil {
		return Size{}, false
	}
	return rec.surface.DisplayedSize(), true
}

// Project maps a box from a page's native coordinate space onto its current
// displayed dimensions. ok is false when the page has no captured native size
// or no live surface, in which case the overlay must not render.
func (r *PageRegistry) Project(page int, box Rect) (Rect, bool) {
	native, ok := r.NativeSize(page)
	if !ok {
		return Rect{}, false
	}
	displayed, ok := r.DisplayedSize(page)
	if !ok {
		return Rect{}, false
	}
	return MapRect(box, native, displayed)
}

// Clear drops every entry. Called on reset so a stale document's pages never
// leak into a new document's coordinate calculations.
func (r *PageRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = make(map[int]*pageRecord)
}
