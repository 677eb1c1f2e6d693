// Package viewer implements the client-side core of the legal co-pilot: the
// analysis job lifecycle, the geometric projection of clause locations onto a
// live document view, and the interaction state around it.
package viewer

// Rect is an axis-aligned bounding box
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Size holds a surface's width and height in pixels
type Size struct {
	Width  float64
	Height float64
}

// MapRect projects a box expressed in a page's native coordinate space onto
// the page's currently displayed dimensions. Scale factors are computed
// independently per axis, so a non-uniform resize stretches the box
// accordingly. It holds no state and must be called freshly whenever the
// displayed dimensions may have changed.
//
// Returns ok=false when the native dimensions are unknown or degenerate; the
// caller must suppress the overlay rather than render from undefined scale.
func MapRect(box Rect, native, displayed Size) (Rect, bool) {
	if native.Width <= 0 || native.Height <= 0 {
		return Rect{}, false
	}

	sx := displayed.Width / native.Width
	sy := displayed.Height / native.Height

	return Rect{
		X:      box.X * sx,
		Y:      box.Y * sy,
		Width:  box.Width * sx,
		Height: box.Height * sy,
	}, true
}
