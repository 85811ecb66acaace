package display

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestMapper_FullHDOnWideSurface(t *testing.T) {
	m, err := NewMapper(800, 450, 1920, 1080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Scale()-0.41667) > 1e-4 {
		t.Fatalf("unexpected scale %f", m.Scale())
	}
	ox, oy := m.Offset()
	if math.Abs(ox) > 1e-9 || math.Abs(oy) > 1e-9 {
		t.Fatalf("expected no letterbox, got %f,%f", ox, oy)
	}
	sx, sy := m.ToSource(400, 225)
	if abs(sx-960) > 1 || abs(sy-540) > 1 {
		t.Fatalf("expected frame center, got %d,%d", sx, sy)
	}
}

func TestMapper_Letterbox(t *testing.T) {
	// 4:3 source on a 16:9 surface leaves bars left and right.
	m, err := NewMapper(1600, 900, 640, 480)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Scale() != 1.875 {
		t.Fatalf("unexpected scale %f", m.Scale())
	}
	ox, oy := m.Offset()
	if ox != 200 || oy != 0 {
		t.Fatalf("unexpected offsets %f,%f", ox, oy)
	}
	if x, y := m.ToSource(200, 0); x != 0 || y != 0 {
		t.Fatalf("expected origin, got %d,%d", x, y)
	}
	// Clicks on the bars clamp into the frame.
	if x, _ := m.ToSource(10, 100); x != 0 {
		t.Fatalf("left bar should clamp to 0, got %d", x)
	}
	if x, y := m.ToSource(1599, 899); x != 639 || y != 479 {
		t.Fatalf("expected bottom-right pixel, got %d,%d", x, y)
	}
}

func TestMapper_RoundTrip(t *testing.T) {
	m, _ := NewMapper(1024, 768, 1920, 1080)
	for _, p := range [][2]int{{0, 0}, {100, 200}, {1919, 1079}, {960, 540}} {
		dx, dy := m.ToDisplay(p[0], p[1])
		sx, sy := m.ToSource(dx, dy)
		if sx != p[0] || sy != p[1] {
			t.Errorf("round trip %v -> %d,%d", p, sx, sy)
		}
	}
}

func TestMapper_NotReady(t *testing.T) {
	if _, err := NewMapper(1, 400, 1920, 1080); errors.Cause(err) != ErrSurfaceNotReady {
		t.Fatalf("expected ErrSurfaceNotReady, got %v", err)
	}
	if _, err := NewMapper(800, 450, 0, 0); errors.Cause(err) != ErrNoSource {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}

	m, _ := NewMapper(800, 450, 1920, 1080)
	before := m.Scale()
	if err := m.Update(0, 0, 1920, 1080); err == nil {
		t.Fatalf("expected error on degenerate update")
	}
	if m.Scale() != before {
		t.Fatalf("failed update changed the mapping")
	}
}

func TestMapper_HandleTolerance(t *testing.T) {
	m, _ := NewMapper(960, 540, 1920, 1080)
	if got := m.HandleTolerance(8); got != 16 {
		t.Fatalf("expected 16 source px, got %f", got)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
