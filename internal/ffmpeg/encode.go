package ffmpeg

import (
	"context"
	"io"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/profile"
	"github.com/ZacxDev/video-toolkit/pkg/types"
)

// Crop writes the spec window of inputPath to outputPath.
func (p *Processor) Crop(ctx context.Context, inputPath, outputPath string, spec types.CropSpec, prof profile.Profile, stderr io.Writer) error {
	outputKwargs := outputArgs(prof)
	outputKwargs["vf"] = spec.Filter()

	p.logger.Debug("cropping region",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("region", spec.Name),
		zap.String("filter", spec.Filter()),
		zap.String("profile", prof.GetName()))

	stream := ffmpeg.Input(inputPath).Output(outputPath, outputKwargs)
	if err := p.run(ctx, stream, stderr); err != nil {
		return errors.Wrapf(err, "failed to crop region %q", spec.Name)
	}
	return nil
}

// Adjust applies an eq filter. An identity spec re-encodes without a filter.
func (p *Processor) Adjust(ctx context.Context, inputPath, outputPath string, spec types.EqSpec, prof profile.Profile, stderr io.Writer) error {
	outputKwargs := outputArgs(prof)
	if !spec.IsIdentity() {
		outputKwargs["vf"] = spec.Filter()
	}

	p.logger.Debug("adjusting video",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Float64("brightness", spec.Brightness),
		zap.Float64("contrast", spec.Contrast))

	stream := ffmpeg.Input(inputPath).Output(outputPath, outputKwargs)
	if err := p.run(ctx, stream, stderr); err != nil {
		return errors.Wrap(err, "failed to adjust video")
	}
	return nil
}

// Segment writes duration seconds of inputPath starting at start.
func (p *Processor) Segment(ctx context.Context, inputPath, outputPath string, start, duration float64, prof profile.Profile, stderr io.Writer) error {
	inputKwargs := ffmpeg.KwArgs{
		"ss": start,
	}
	if duration > 0 {
		inputKwargs["t"] = duration
	}

	p.logger.Debug("writing segment",
		zap.String("output", outputPath),
		zap.Float64("start", start),
		zap.Float64("duration", duration))

	stream := ffmpeg.Input(inputPath, inputKwargs).Output(outputPath, outputArgs(prof))
	if err := p.run(ctx, stream, stderr); err != nil {
		return errors.Wrapf(err, "failed to write segment at %.2fs", start)
	}
	return nil
}

func outputArgs(prof profile.Profile) ffmpeg.KwArgs {
	args := profile.OutputArgs(prof)
	if !prof.StreamCopy() {
		args["threads"] = GetOptimalThreadCount()
	}
	return args
}

// run executes the compiled command and kills it when ctx is cancelled.
func (p *Processor) run(ctx context.Context, stream *ffmpeg.Stream, stderr io.Writer) error {
	if stderr == nil {
		stderr = NewProgressWriter("", 0, nil)
	}

	cmd := stream.OverWriteOutput().WithErrorOutput(stderr).Compile()
	p.logger.Debug("running ffmpeg", zap.Strings("args", cmd.Args))

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start ffmpeg")
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return ctx.Err()
	case err := <-done:
		if err == nil {
			return nil
		}
		if t, ok := stderr.(interface{ Tail() string }); ok && t.Tail() != "" {
			return errors.Wrapf(err, "ffmpeg: %s", t.Tail())
		}
		return errors.WithStack(err)
	}
}
