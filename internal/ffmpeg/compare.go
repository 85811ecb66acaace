package ffmpeg

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Field names a comparable metadata property.
type Field string

const (
	FieldFPS        Field = "fps"
	FieldResolution Field = "resolution"
	FieldWidth      Field = "width"
	FieldHeight     Field = "height"
	FieldDuration   Field = "duration"
	FieldFrameCount Field = "frame_count"
	FieldCodec      Field = "video_codec"
	FieldAudioCodec Field = "audio_codec"
	FieldBitrate    Field = "bitrate"
	FieldAspect     Field = "aspect_ratio"
	FieldFormat     Field = "format"
	FieldSizeMB     Field = "file_size_mb"
)

var fieldLabels = map[Field]string{
	FieldFPS:        "Frame Rate (FPS)",
	FieldResolution: "Resolution",
	FieldWidth:      "Width",
	FieldHeight:     "Height",
	FieldDuration:   "Duration",
	FieldFrameCount: "Frame Count",
	FieldCodec:      "Video Codec",
	FieldAudioCodec: "Audio Codec",
	FieldBitrate:    "Bitrate",
	FieldAspect:     "Aspect Ratio",
	FieldFormat:     "Container",
	FieldSizeMB:     "File Size (MB)",
}

// ComparableFields lists every field Compare understands, in display order.
var ComparableFields = []Field{
	FieldResolution, FieldWidth, FieldHeight, FieldAspect, FieldFPS, FieldDuration,
	FieldFrameCount, FieldCodec, FieldAudioCodec, FieldBitrate, FieldFormat, FieldSizeMB,
}

// DefaultCompareFields is what a plain multi-file probe compares.
var DefaultCompareFields = []Field{FieldResolution, FieldFPS, FieldCodec, FieldAudioCodec, FieldDuration}

// NotAvailable stands in for a missing value.
const NotAvailable = "N/A"

// Label returns the display name of f.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// ParseField validates a field name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := fieldLabels[f]; !ok {
		return "", errors.Errorf("unknown metadata field %q", name)
	}
	return f, nil
}

// Name is the short name a video is listed under in comparisons.
func (m *VideoMetadata) Name() string {
	if m.Path == "" {
		return "unknown"
	}
	return filepath.Base(m.Path)
}

// AspectRatio returns the reduced width:height ratio, e.g. "16:9".
func (m *VideoMetadata) AspectRatio() string {
	if m.Width <= 0 || m.Height <= 0 {
		return NotAvailable
	}
	g := gcd(m.Width, m.Height)
	return fmt.Sprintf("%d:%d", m.Width/g, m.Height/g)
}

// Numeric returns f as a number, false for text fields and missing values.
func (m *VideoMetadata) Numeric(f Field) (float64, bool) {
	var v float64
	switch f {
	case FieldFPS:
		v = m.FrameRate
	case FieldWidth:
		v = float64(m.Width)
	case FieldHeight:
		v = float64(m.Height)
	case FieldDuration:
		v = m.Duration
	case FieldFrameCount:
		v = float64(m.FrameCount)
	case FieldBitrate:
		v = float64(m.Bitrate)
	case FieldSizeMB:
		v = float64(m.Size) / (1024 * 1024)
	default:
		return 0, false
	}
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// Value returns f formatted for comparison. Numbers are rounded to two
// decimals so 29.970 and 29.97 compare equal.
func (m *VideoMetadata) Value(f Field) string {
	if v, ok := m.Numeric(f); ok {
		return strconv.FormatFloat(round2(v), 'f', -1, 64)
	}
	var s string
	switch f {
	case FieldResolution:
		if m.Width > 0 && m.Height > 0 {
			s = m.Resolution()
		}
	case FieldAspect:
		s = m.AspectRatio()
	case FieldCodec:
		s = m.Codec
	case FieldAudioCodec:
		s = m.AudioCodec
	case FieldFormat:
		s = m.Format
	}
	if s == "" {
		return NotAvailable
	}
	return s
}

// FieldComparison is the outcome for one field across a set of videos.
type FieldComparison struct {
	Field    Field
	AllMatch bool
	// Values are the distinct values in first-seen order.
	Values []string
	// Videos maps each value to the videos that have it.
	Videos map[string][]string
}

// Common returns the shared value when every video agrees.
func (fc FieldComparison) Common() (string, bool) {
	if !fc.AllMatch || len(fc.Values) == 0 {
		return "", false
	}
	return fc.Values[0], true
}

// Comparison is the result of comparing several videos.
type Comparison struct {
	Total       int
	Fields      []FieldComparison
	Matching    []Field
	Mismatching []Field
}

// Consistent reports whether every compared field matched.
func (c *Comparison) Consistent() bool {
	return len(c.Mismatching) == 0
}

// Compare checks which fields agree across metas. Fields default to
// DefaultCompareFields.
func Compare(metas []*VideoMetadata, fields []Field) (*Comparison, error) {
	if len(metas) == 0 {
		return nil, errors.New("no metadata provided for comparison")
	}
	if len(fields) == 0 {
		fields = DefaultCompareFields
	}

	c := &Comparison{Total: len(metas)}
	for _, f := range fields {
		if _, ok := fieldLabels[f]; !ok {
			return nil, errors.Errorf("unknown metadata field %q", f)
		}
		fc := FieldComparison{Field: f, Videos: make(map[string][]string)}
		for _, m := range metas {
			v := m.Value(f)
			if _, seen := fc.Videos[v]; !seen {
				fc.Values = append(fc.Values, v)
			}
			fc.Videos[v] = append(fc.Videos[v], m.Name())
		}
		fc.AllMatch = len(fc.Values) == 1
		c.Fields = append(c.Fields, fc)
		if fc.AllMatch {
			c.Matching = append(c.Matching, f)
		} else {
			c.Mismatching = append(c.Mismatching, f)
		}
	}
	return c, nil
}

// CriteriaFailure is one field of one video that missed its expected value.
type CriteriaFailure struct {
	Video    string
	Field    Field
	Expected string
	Actual   string
}

// CheckCriteria returns every mismatch between metas and the expected
// field values. Numeric expectations are compared after rounding.
func CheckCriteria(metas []*VideoMetadata, criteria map[Field]string) []CriteriaFailure {
	fields := make([]Field, 0, len(criteria))
	for f := range criteria {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	var failures []CriteriaFailure
	for _, m := range metas {
		for _, f := range fields {
			want := normalizeExpected(criteria[f])
			if got := m.Value(f); got != want {
				failures = append(failures, CriteriaFailure{Video: m.Name(), Field: f, Expected: want, Actual: got})
			}
		}
	}
	return failures
}

func normalizeExpected(s string) string {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(round2(v), 'f', -1, 64)
	}
	return s
}

// FieldStats summarizes a numeric field across videos.
type FieldStats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Range  float64
	StdDev float64
}

// Summarize computes statistics for a numeric field. It reports false when
// no video has a value for f.
func Summarize(metas []*VideoMetadata, f Field) (FieldStats, bool) {
	values, _ := numericValues(metas, f)
	if len(values) == 0 {
		return FieldStats{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	s := FieldStats{
		Count:  len(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Mean:   mean,
		StdDev: std,
	}
	s.Range = s.Max - s.Min
	if n := len(sorted); n%2 == 0 {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		s.Median = sorted[n/2]
	}
	return s, true
}

// Anomaly is a video whose value strays from the group mean.
type Anomaly struct {
	Video     string
	Value     float64
	Mean      float64
	Deviation float64
	// Percent is the deviation relative to the mean.
	Percent float64
}

// DetectAnomalies flags videos whose value of f differs from the mean by
// more than threshold (a fraction of the mean). At least two values are
// needed.
func DetectAnomalies(metas []*VideoMetadata, f Field, threshold float64) []Anomaly {
	values, names := numericValues(metas, f)
	if len(values) < 2 {
		return nil
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 || mean == 0 {
		return nil
	}

	var out []Anomaly
	for i, v := range values {
		dev := math.Abs(v - mean)
		if rel := dev / mean; rel > threshold {
			out = append(out, Anomaly{Video: names[i], Value: v, Mean: mean, Deviation: dev, Percent: rel * 100})
		}
	}
	return out
}

func numericValues(metas []*VideoMetadata, f Field) ([]float64, []string) {
	var values []float64
	var names []string
	for _, m := range metas {
		if v, ok := m.Numeric(f); ok {
			values = append(values, v)
			names = append(names, m.Name())
		}
	}
	return values, names
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
