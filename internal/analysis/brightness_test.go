package analysis

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
)

func uniform(v uint8) image.Image {
	return imaging.New(8, 8, color.NRGBA{R: v, G: v, B: v, A: 255})
}

func split(lo, hi uint8) image.Image {
	img := imaging.New(8, 8, color.NRGBA{R: lo, G: lo, B: lo, A: 255})
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: hi, G: hi, B: hi, A: 255})
		}
	}
	return img
}

func TestAnalyzeFrame_Dark(t *testing.T) {
	s := DefaultThresholds.AnalyzeFrame(uniform(40))
	if s.Mean != 40 || s.StdDev != 0 || s.DynamicRange != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if s.DarkRatio != 1 || s.BrightRatio != 0 || s.MidRatio != 0 {
		t.Fatalf("unexpected ratios %+v", s)
	}
	if len(s.Peaks) != 1 || s.Peaks[0] != 40 {
		t.Fatalf("unexpected peaks %v", s.Peaks)
	}

	got := DefaultThresholds.Suggest(s)
	if got != (Suggestion{Brightness: 40, Contrast: 40}) {
		t.Fatalf("unexpected suggestion %+v", got)
	}
	if d := DefaultThresholds.Describe(s); d != "Video is significantly under-exposed (very dark), low contrast (appears flat or washed out)" {
		t.Fatalf("unexpected description %q", d)
	}
}

func TestAnalyzeFrame_HighContrast(t *testing.T) {
	s := DefaultThresholds.AnalyzeFrame(split(0, 255))
	if s.Mean != 127.5 || s.RMSContrast != 127.5 || s.DynamicRange != 255 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if s.DarkRatio != 0.5 || s.BrightRatio != 0.5 {
		t.Fatalf("unexpected ratios %+v", s)
	}
	if len(s.Peaks) != 0 {
		t.Fatalf("histogram ends are never peaks, got %v", s.Peaks)
	}

	got := DefaultThresholds.Suggest(s)
	if got != (Suggestion{Brightness: 0, Contrast: -14}) {
		t.Fatalf("unexpected suggestion %+v", got)
	}
	if d := DefaultThresholds.Describe(s); d != "Video brightness is in optimal range, high contrast (may appear harsh)" {
		t.Fatalf("unexpected description %q", d)
	}
}

func TestSuggest(t *testing.T) {
	cases := []struct {
		name  string
		stats FrameStats
		want  Suggestion
	}{
		{"optimal", FrameStats{Mean: 120, RMSContrast: 60}, Suggestion{}},
		{"slightly dark", FrameStats{Mean: 70, DarkRatio: 0.2, RMSContrast: 60}, Suggestion{Brightness: 10}},
		{"very dark capped", FrameStats{Mean: 10, DarkRatio: 0.9, RMSContrast: 60}, Suggestion{Brightness: 50}},
		{"very bright", FrameStats{Mean: 220, BrightRatio: 0.9, RMSContrast: 60}, Suggestion{Brightness: -44}},
		{"slightly bright capped", FrameStats{Mean: 250, BrightRatio: 0.1, RMSContrast: 60}, Suggestion{Brightness: -30}},
		{"flat", FrameStats{Mean: 120, RMSContrast: 30}, Suggestion{Contrast: 16}},
	}
	for _, c := range cases {
		if got := DefaultThresholds.Suggest(c.stats); got != c.want {
			t.Errorf("%s: got %+v want %+v", c.name, got, c.want)
		}
	}
}

func TestAverage(t *testing.T) {
	avg := DefaultThresholds.Average([]FrameStats{
		{Mean: 40, RMSContrast: 10, Peaks: []int{40}},
		{Mean: 60, RMSContrast: 30, Peaks: []int{45, 120}},
	})
	if avg.Mean != 50 || avg.RMSContrast != 20 {
		t.Fatalf("unexpected average %+v", avg)
	}
	if len(avg.Peaks) != 2 || avg.Peaks[0] != 40 || avg.Peaks[1] != 120 {
		t.Fatalf("unexpected merged peaks %v", avg.Peaks)
	}
	if got := DefaultThresholds.Average(nil); got.Mean != 0 {
		t.Fatalf("expected zero stats")
	}
}

func TestSampleTimestamps(t *testing.T) {
	got := SampleTimestamps(10, 25, 3)
	want := []float64{0, 4.98, 9.96}
	if len(got) != len(want) {
		t.Fatalf("unexpected samples %v", got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("unexpected samples %v", got)
		}
	}
	if s := SampleTimestamps(10, 25, 1); len(s) != 1 || s[0] != 0 {
		t.Fatalf("single sample should be the first frame, got %v", s)
	}
	if SampleTimestamps(0, 25, 5) != nil {
		t.Fatalf("expected no samples for an empty video")
	}
}
