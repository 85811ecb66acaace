package region

import "testing"

func TestRectangle_ContainsPointInclusive(t *testing.T) {
	r := NewRectangle(10, 20, 30, 40, "a")
	cases := []struct {
		x, y int
		want bool
	}{
		{10, 20, true},
		{40, 60, true},
		{25, 30, true},
		{9, 30, false},
		{41, 30, false},
		{25, 61, false},
	}
	for _, c := range cases {
		if got := r.ContainsPoint(c.x, c.y); got != c.want {
			t.Errorf("ContainsPoint(%d,%d)=%v want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestRectangle_ResizeClampsToOne(t *testing.T) {
	r := NewRectangle(0, 0, 5, 5, "a")
	r.Resize(0, -3)
	if r.Width != 1 || r.Height != 1 {
		t.Fatalf("expected 1x1, got %dx%d", r.Width, r.Height)
	}
}

func TestRectangle_ConstrainToBoundsIdempotent(t *testing.T) {
	cases := []struct {
		x, y, w, h, maxW, maxH int
	}{
		{-5, -5, 50, 50, 100, 100},
		{90, 90, 50, 50, 100, 100},
		{200, 200, 10, 10, 100, 100},
		{0, 0, 1000, 1000, 1920, 1080},
		{1919, 1079, 5, 5, 1920, 1080},
		{3, 4, 1, 1, 1, 1},
	}
	for _, c := range cases {
		r := NewRectangle(c.x, c.y, c.w, c.h, "r")
		r.ConstrainToBounds(c.maxW, c.maxH)
		once := *r
		r.ConstrainToBounds(c.maxW, c.maxH)
		if *r != once {
			t.Errorf("not idempotent for %+v: %+v then %+v", c, once, *r)
		}
		if !r.InBounds(c.maxW, c.maxH) {
			t.Errorf("out of bounds for %+v: %+v", c, *r)
		}
		if !r.IsValid() {
			t.Errorf("constrained rectangle lost its area for %+v: %+v", c, *r)
		}
	}
}

func TestRectangle_RecordRoundTrip(t *testing.T) {
	r := &Rectangle{X: 12, Y: 34, Width: 56, Height: 78, Name: "face", Color: "#00FFFF"}
	got := FromRecord(r.Record())
	if got.X != r.X || got.Y != r.Y || got.Width != r.Width || got.Height != r.Height ||
		got.Name != r.Name || got.Color != r.Color {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, r)
	}
}

func TestRectangle_FromRecordDefaultsColor(t *testing.T) {
	r := FromRecord(Record{X: 1, Y: 2, Width: 3, Height: 4, Name: "n"})
	if r.Color != "#FF0000" {
		t.Fatalf("expected default color, got %q", r.Color)
	}
}

func TestRectangle_Normalized(t *testing.T) {
	r := NewRectangle(480, 270, 960, 540, "a")
	n := r.Normalized(1920, 1080)
	if n.X != 0.25 || n.Y != 0.25 || n.Width != 0.5 || n.Height != 0.5 {
		t.Fatalf("unexpected normalized rect %+v", n)
	}
}
