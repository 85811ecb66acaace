package processor

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/ffmpeg"
	"github.com/ZacxDev/video-toolkit/internal/logging"
)

// CompareResult is the metadata comparison of a set of videos.
type CompareResult struct {
	Metadata   []*ffmpeg.VideoMetadata
	Comparison *ffmpeg.Comparison
	Failures   []ffmpeg.CriteriaFailure
	Stats      map[ffmpeg.Field]ffmpeg.FieldStats
	Anomalies  map[ffmpeg.Field][]ffmpeg.Anomaly
	// Unreadable lists inputs that could not be probed.
	Unreadable []string
}

// Comparer probes several videos and reports where their metadata differs.
type Comparer struct {
	opts    *config.CompareOptions
	encoder Encoder
	logger  *zap.Logger
}

// NewComparer creates a new metadata comparer
func NewComparer(opts *config.CompareOptions, encoder Encoder, logger *zap.Logger) *Comparer {
	return &Comparer{
		opts:    opts,
		encoder: encoder,
		logger:  logging.OrNop(logger),
	}
}

func (c *Comparer) fields() ([]ffmpeg.Field, error) {
	var fields []ffmpeg.Field
	for _, name := range c.opts.Fields {
		f, err := ffmpeg.ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		fields = ffmpeg.DefaultCompareFields
	}
	return fields, nil
}

// Process probes every input. Inputs that cannot be probed are skipped with
// a warning; it fails only when none can be read.
func (c *Comparer) Process() (*CompareResult, error) {
	fields, err := c.fields()
	if err != nil {
		return nil, err
	}
	criteria := make(map[ffmpeg.Field]string, len(c.opts.Expect))
	for name, want := range c.opts.Expect {
		f, err := ffmpeg.ParseField(name)
		if err != nil {
			return nil, err
		}
		criteria[f] = want
	}

	res := &CompareResult{
		Stats:     make(map[ffmpeg.Field]ffmpeg.FieldStats),
		Anomalies: make(map[ffmpeg.Field][]ffmpeg.Anomaly),
	}
	for _, path := range c.opts.InputPaths {
		m, err := c.encoder.GetVideoMetadata(path)
		if err != nil {
			c.logger.Warn("could not read metadata", zap.String("path", path), zap.Error(err))
			res.Unreadable = append(res.Unreadable, path)
			continue
		}
		if m.Path == "" {
			m.Path = path
		}
		res.Metadata = append(res.Metadata, m)
	}
	if len(res.Metadata) == 0 {
		return res, fmt.Errorf("no metadata could be read from %d input(s)", len(c.opts.InputPaths))
	}

	res.Comparison, err = ffmpeg.Compare(res.Metadata, fields)
	if err != nil {
		return res, errors.WithStack(err)
	}
	if len(criteria) > 0 {
		res.Failures = ffmpeg.CheckCriteria(res.Metadata, criteria)
	}

	threshold := c.opts.AnomalyThreshold
	if threshold <= 0 {
		threshold = config.DefaultAnomalyThreshold
	}
	for _, f := range fields {
		if s, ok := ffmpeg.Summarize(res.Metadata, f); ok {
			res.Stats[f] = s
			if a := ffmpeg.DetectAnomalies(res.Metadata, f, threshold); len(a) > 0 {
				res.Anomalies[f] = a
			}
		}
	}

	c.logger.Info("compared video metadata",
		zap.Int("videos", len(res.Metadata)),
		zap.Int("mismatching_fields", len(res.Comparison.Mismatching)),
		zap.Int("criteria_failures", len(res.Failures)))
	return res, nil
}
