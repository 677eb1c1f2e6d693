package viewer

import "testing"

// fakeSurface is a test double for a rendered page
type fakeSurface struct {
	declared         Size
	displayed        Size
	scrolledIntoView int
	regions          []Rect
}

func (s *fakeSurface) DeclaredSize() Size  { return s.declared }
func (s *fakeSurface) DisplayedSize() Size { return s.displayed }
func (s *fakeSurface) ScrollIntoView()     { s.scrolledIntoView++ }
func (s *fakeSurface) ScrollToRegion(r Rect) {
	s.regions = append(s.regions, r)
}

func TestPageRegistryCapturesNativeSizeOnce(t *testing.T) {
	registry := NewPageRegistry()

	first := &fakeSurface{
		declared:  Size{Width: 612, Height: 792},
		displayed: Size{Width: 612, Height: 792},
	}
	registry.Register(1, first)

	native, ok := registry.NativeSize(1)
	if !ok {
		t.Fatal("Expected native size after first registration")
	}
	if native != (Size{Width: 612, Height: 792}) {
		t.Errorf("Unexpected native size: %+v", native)
	}

	// A re-render at a different zoom declares scaled dimensions; the
	// captured native size must not move
	second := &fakeSurface{
		declared:  Size{Width: 1224, Height: 1584},
		displayed: Size{Width: 1224, Height: 1584},
	}
	registry.Register(1, second)

	native, ok = registry.NativeSize(1)
	if !ok {
		t.Fatal("Expected native size to survive re-registration")
	}
	if native != (Size{Width: 612, Height: 792}) {
		t.Errorf("Native size was overwritten: %+v", native)
	}

	// The surface reference itself must refresh
	surface, ok := registry.Surface(1)
	if !ok || surface != Surface(second) {
		t.Error("Expected surface reference to refresh on re-registration")
	}
}

func TestPageRegistrySkipsDegenerateDeclaredSize(t *testing.T) {
	registry := NewPageRegistry()

	registry.Register(1, &fakeSurface{declared: Size{Width: 0, Height: 0}})

	if _, ok := registry.NativeSize(1); ok {
		t.Fatal("Expected no native size for a zero declared size")
	}
	if _, ok := registry.Project(1, Rect{X: 1, Y: 1, Width: 1, Height: 1}); ok {
		t.Fatal("Expected projection to be suppressed without a native size")
	}

	// A later successful render captures it
	registry.Register(1, &fakeSurface{declared: Size{Width: 612, Height: 792}})
	if _, ok := registry.NativeSize(1); !ok {
		t.Error("Expected native size after a valid registration")
	}
}

func TestPageRegistryDisplayedSizeIsLive(t *testing.T) {
	registry := NewPageRegistry()

	surface := &fakeSurface{
		declared:  Size{Width: 612, Height: 792},
		displayed: Size{Width: 612, Height: 792},
	}
	registry.Register(1, surface)

	surface.displayed = Size{Width: 918, Height: 1188}

	displayed, ok := registry.DisplayedSize(1)
	if !ok {
		t.Fatal("Expected displayed size")
	}
	if displayed != (Size{Width: 918, Height: 1188}) {
		t.Errorf("Expected the live displayed size, got %+v", displayed)
	}
}

func TestPageRegistryProject(t *testing.T) {
	registry := NewPageRegistry()
	registry.Register(2, &fakeSurface{
		declared:  Size{Width: 612, Height: 792},
		displayed: Size{Width: 1224, Height: 1584},
	})

	got, ok := registry.Project(2, Rect{X: 10, Y: 20, Width: 100, Height: 30})
	if !ok {
		t.Fatal("Expected projection to succeed")
	}
	if got != (Rect{X: 20, Y: 40, Width: 200, Height: 60}) {
		t.Errorf("Unexpected projection: %+v", got)
	}

	if _, ok := registry.Project(99, Rect{}); ok {
		t.Error("Expected projection on an unregistered page to fail")
	}
}

func TestPageRegistryClear(t *testing.T) {
	registry := NewPageRegistry()
	registry.Register(1, &fakeSurface{declared: Size{Width: 612, Height: 792}})

	registry.Clear()

	if _, ok := registry.Surface(1); ok {
		t.Error("Expected no surface after Clear")
	}
	if _, ok := registry.NativeSize(1); ok {
		t.Error("Expected no native size after Clear")
	}
}
