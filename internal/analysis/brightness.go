package analysis

import (
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/exp/slices"
)

// FrameStats describes the luma distribution of one frame, or the average
// of several.
type FrameStats struct {
	Mean         float64
	StdDev       float64
	DarkRatio    float64
	BrightRatio  float64
	MidRatio     float64
	DynamicRange float64
	RMSContrast  float64
	Min          float64
	Max          float64
	Peaks        []int
}

// Suggestion is a brightness/contrast adjustment in the -100..100 UI range.
type Suggestion struct {
	Brightness int
	Contrast   int
}

// Thresholds drive the exposure and contrast assessment.
type Thresholds struct {
	Dark             int // luma below this is dark
	Bright           int // luma at or above this is bright
	MeanLow          float64
	MeanHigh         float64
	LowContrast      float64
	ContrastLow      float64
	ContrastHigh     float64
	PeakMinFraction  float64
	PeakGroupSpacing int
}

// DefaultThresholds are tuned for 8-bit SDR footage.
var DefaultThresholds = Thresholds{
	Dark:             85,
	Bright:           170,
	MeanLow:          90,
	MeanHigh:         165,
	LowContrast:      40,
	ContrastLow:      50,
	ContrastHigh:     80,
	PeakMinFraction:  0.01,
	PeakGroupSpacing: 10,
}

// AnalyzeFrame computes luma statistics of img.
func (t Thresholds) AnalyzeFrame(img image.Image) FrameStats {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()

	var hist [256]float64
	var sum float64
	n := 0
	lo, hi := 255, 0
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			v := int(row[x])
			hist[v]++
			sum += float64(v)
			lo, hi = min(lo, v), max(hi, v)
			n++
		}
	}
	if n == 0 {
		return FrameStats{}
	}

	mean := sum / float64(n)
	var sq float64
	for v, c := range hist {
		d := float64(v) - mean
		sq += d * d * c
	}
	std := math.Sqrt(sq / float64(n))

	for i := range hist {
		hist[i] /= float64(n)
	}
	var dark, bright float64
	for v, p := range hist {
		switch {
		case v < t.Dark:
			dark += p
		case v >= t.Bright:
			bright += p
		}
	}

	return FrameStats{
		Mean:         mean,
		StdDev:       std,
		DarkRatio:    dark,
		BrightRatio:  bright,
		MidRatio:     1 - dark - bright,
		DynamicRange: float64(hi - lo),
		RMSContrast:  std,
		Min:          float64(lo),
		Max:          float64(hi),
		Peaks:        t.peaks(hist[:]),
	}
}

// peaks returns local maxima of a normalized histogram above PeakMinFraction.
func (t Thresholds) peaks(hist []float64) []int {
	var out []int
	for i := 1; i < len(hist)-1; i++ {
		if hist[i] > t.PeakMinFraction && hist[i] > hist[i-1] && hist[i] > hist[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// Average combines per-frame stats. Peaks from all frames are merged, keeping
// one representative per PeakGroupSpacing band.
func (t Thresholds) Average(frames []FrameStats) FrameStats {
	if len(frames) == 0 {
		return FrameStats{}
	}

	var avg FrameStats
	var peaks []int
	for _, f := range frames {
		avg.Mean += f.Mean
		avg.StdDev += f.StdDev
		avg.DarkRatio += f.DarkRatio
		avg.BrightRatio += f.BrightRatio
		avg.MidRatio += f.MidRatio
		avg.DynamicRange += f.DynamicRange
		avg.RMSContrast += f.RMSContrast
		avg.Min += f.Min
		avg.Max += f.Max
		peaks = append(peaks, f.Peaks...)
	}
	n := float64(len(frames))
	avg.Mean /= n
	avg.StdDev /= n
	avg.DarkRatio /= n
	avg.BrightRatio /= n
	avg.MidRatio /= n
	avg.DynamicRange /= n
	avg.RMSContrast /= n
	avg.Min /= n
	avg.Max /= n

	slices.Sort(peaks)
	for _, p := range peaks {
		if len(avg.Peaks) == 0 || p-avg.Peaks[len(avg.Peaks)-1] > t.PeakGroupSpacing {
			avg.Peaks = append(avg.Peaks, p)
		}
	}
	return avg
}

// Suggest proposes an adjustment that moves s toward the optimal ranges.
func (t Thresholds) Suggest(s FrameStats) Suggestion {
	var out Suggestion

	switch {
	case s.Mean < t.MeanLow:
		if s.DarkRatio > 0.3 {
			out.Brightness = min(50, trunc((t.MeanLow-s.Mean)*0.8))
		} else {
			out.Brightness = min(30, trunc((t.MeanLow-s.Mean)*0.5))
		}
	case s.Mean > t.MeanHigh:
		if s.BrightRatio > 0.3 {
			out.Brightness = max(-50, trunc((t.MeanHigh-s.Mean)*0.8))
		} else {
			out.Brightness = max(-30, trunc((t.MeanHigh-s.Mean)*0.5))
		}
	}

	switch {
	case s.RMSContrast < t.LowContrast:
		out.Contrast = min(40, trunc((t.ContrastLow-s.RMSContrast)*0.8))
	case s.RMSContrast > t.ContrastHigh:
		out.Contrast = max(-20, trunc((t.ContrastHigh-s.RMSContrast)*0.3))
	}
	return out
}

// Describe summarizes exposure and contrast in one sentence.
func (t Thresholds) Describe(s FrameStats) string {
	var parts []string

	switch {
	case s.Mean < t.MeanLow && s.DarkRatio > 0.4:
		parts = append(parts, "video is significantly under-exposed (very dark)")
	case s.Mean < t.MeanLow:
		parts = append(parts, "video is somewhat under-exposed (dark)")
	case s.Mean > t.MeanHigh && s.BrightRatio > 0.4:
		parts = append(parts, "video is significantly over-exposed (very bright)")
	case s.Mean > t.MeanHigh:
		parts = append(parts, "video is somewhat over-exposed (bright)")
	default:
		parts = append(parts, "video brightness is in optimal range")
	}

	switch {
	case s.RMSContrast < t.LowContrast:
		parts = append(parts, "low contrast (appears flat or washed out)")
	case s.RMSContrast > t.ContrastHigh:
		parts = append(parts, "high contrast (may appear harsh)")
	default:
		parts = append(parts, "good contrast")
	}

	text := strings.Join(parts, ", ")
	return strings.ToUpper(text[:1]) + text[1:]
}

// SampleTimestamps spreads n timestamps evenly from the first to the last
// frame of a video.
func SampleTimestamps(duration, fps float64, n int) []float64 {
	if n <= 0 || duration <= 0 {
		return nil
	}
	last := duration
	if fps > 0 {
		last = math.Max(0, duration-1/fps)
	}
	if n == 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = last * float64(i) / float64(n-1)
	}
	return out
}

func trunc(v float64) int {
	return int(math.Trunc(v))
}
