package types

import "testing"

func TestEqFromAdjustment(t *testing.T) {
	cases := []struct {
		b, c int
		want EqSpec
	}{
		{0, 0, EqSpec{Brightness: 0, Contrast: 1}},
		{100, 100, EqSpec{Brightness: 1, Contrast: 2}},
		{-100, -100, EqSpec{Brightness: -1, Contrast: 0.1}},
		{50, -50, EqSpec{Brightness: 0.5, Contrast: 0.5}},
		{300, 500, EqSpec{Brightness: 1, Contrast: 3}},
	}
	for _, tc := range cases {
		got := EqFromAdjustment(tc.b, tc.c)
		if got != tc.want {
			t.Errorf("EqFromAdjustment(%d,%d)=%+v want %+v", tc.b, tc.c, got, tc.want)
		}
	}
	if !EqFromAdjustment(0, 0).IsIdentity() {
		t.Fatalf("zero adjustment should be identity")
	}
}

func TestFilters(t *testing.T) {
	if got := (CropSpec{X: 10, Y: 20, Width: 300, Height: 200}).Filter(); got != "crop=300:200:10:20" {
		t.Fatalf("unexpected crop filter %q", got)
	}
	if got := (EqSpec{Brightness: 0.25, Contrast: 1.5}).Filter(); got != "eq=brightness=0.250:contrast=1.500" {
		t.Fatalf("unexpected eq filter %q", got)
	}
}
