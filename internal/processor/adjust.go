package processor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/profile"
	"github.com/ZacxDev/video-toolkit/pkg/types"
)

// Adjuster applies brightness and contrast to a video.
type Adjuster struct {
	opts     *config.AdjustOptions
	encoder  Encoder
	progress Progress
	logger   *zap.Logger
}

// NewAdjuster creates a new adjuster
func NewAdjuster(opts *config.AdjustOptions, encoder Encoder, logger *zap.Logger) *Adjuster {
	return &Adjuster{
		opts:     opts,
		encoder:  encoder,
		progress: SilentProgress,
		logger:   logging.OrNop(logger),
	}
}

// WithProgress sets the progress sink factory.
func (a *Adjuster) WithProgress(p Progress) *Adjuster {
	if p != nil {
		a.progress = p
	}
	return a
}

// AdjustedName returns the default output name, <stem>_b<±n>_c<±n><ext>.
func AdjustedName(inputPath string, brightness, contrast int) string {
	return fmt.Sprintf("%s_b%+d_c%+d%s", stem(inputPath), brightness, contrast, filepath.Ext(inputPath))
}

// OutputPath resolves where the adjusted video is written.
func (a *Adjuster) OutputPath() string {
	if a.opts.OutputPath != "" {
		return a.opts.OutputPath
	}
	dir := a.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(a.opts.InputPath)
	}
	return filepath.Join(dir, AdjustedName(a.opts.InputPath, a.opts.Brightness, a.opts.Contrast))
}

// Process writes the adjusted video and returns its path.
func (a *Adjuster) Process(ctx context.Context) (string, error) {
	for name, v := range map[string]int{"brightness": a.opts.Brightness, "contrast": a.opts.Contrast} {
		if v < config.MinAdjustment || v > config.MaxAdjustment {
			return "", fmt.Errorf("%s %d out of range [%d, %d]", name, v, config.MinAdjustment, config.MaxAdjustment)
		}
	}

	prof := profile.MustGet(profile.Quality)
	if a.opts.Profile != "" {
		p, err := profile.Get(a.opts.Profile)
		if err != nil {
			return "", errors.WithStack(err)
		}
		prof = p
	}

	if samePath(a.OutputPath(), a.opts.InputPath) {
		return "", errors.Errorf("output %s would overwrite the input", a.OutputPath())
	}

	metadata, err := a.encoder.GetVideoMetadata(a.opts.InputPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to get video metadata")
	}

	outputPath, err := ensureOutputPath(a.OutputPath())
	if err != nil {
		return "", err
	}

	spec := types.EqFromAdjustment(a.opts.Brightness, a.opts.Contrast)
	a.logger.Info("adjusting video",
		zap.String("input", a.opts.InputPath),
		zap.String("output", outputPath),
		zap.Float64("brightness", spec.Brightness),
		zap.Float64("contrast", spec.Contrast))

	w := a.progress(filepath.Base(outputPath), metadata.Duration)
	defer w.Finish()
	if err := a.encoder.Adjust(ctx, a.opts.InputPath, outputPath, spec, prof, w); err != nil {
		return "", err
	}
	return outputPath, nil
}
