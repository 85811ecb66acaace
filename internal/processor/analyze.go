package processor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/analysis"
	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/logging"
)

// AnalyzeResult is the exposure assessment of a video.
type AnalyzeResult struct {
	Stats       analysis.FrameStats
	Frames      int
	Suggestion  analysis.Suggestion
	Description string
}

// Analyzer samples still frames of a video and suggests a brightness and
// contrast adjustment.
type Analyzer struct {
	opts       *config.AnalyzeOptions
	encoder    Encoder
	frames     FrameGrabber
	thresholds analysis.Thresholds
	logger     *zap.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(opts *config.AnalyzeOptions, encoder Encoder, frames FrameGrabber, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		opts:       opts,
		encoder:    encoder,
		frames:     frames,
		thresholds: analysis.DefaultThresholds,
		logger:     logging.OrNop(logger),
	}
}

// Process samples the video and returns the averaged assessment. Frames that
// cannot be grabbed are skipped.
func (a *Analyzer) Process(ctx context.Context) (*AnalyzeResult, error) {
	metadata, err := a.encoder.GetVideoMetadata(a.opts.VideoPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get video metadata")
	}

	samples := a.opts.Samples
	if samples <= 0 {
		samples = config.DefaultAnalysisSamples
	}
	if metadata.FrameCount > 0 {
		samples = min(samples, metadata.FrameCount)
	}

	var stats []analysis.FrameStats
	for _, ts := range analysis.SampleTimestamps(metadata.Duration, metadata.FrameRate, samples) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := a.frames.Still(ctx, a.opts.VideoPath, ts)
		if err != nil {
			a.logger.Warn("skipping frame", zap.Float64("timestamp", ts), zap.Error(err))
			continue
		}
		s := a.thresholds.AnalyzeFrame(frame)
		a.logger.Debug("analyzed frame",
			zap.Float64("timestamp", ts), zap.Float64("mean", s.Mean), zap.Float64("contrast", s.RMSContrast))
		stats = append(stats, s)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("could not analyze any frames from video: %s", a.opts.VideoPath)
	}

	avg := a.thresholds.Average(stats)
	return &AnalyzeResult{
		Stats:       avg,
		Frames:      len(stats),
		Suggestion:  a.thresholds.Suggest(avg),
		Description: a.thresholds.Describe(avg),
	}, nil
}
