package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/profile"
)

// Snippet is one clip cut around a timestamp.
type Snippet struct {
	Timestamp  float64
	Start      float64
	End        float64
	OutputPath string
	// Skipped is set when the clamped window is shorter than
	// config.MinSnippetDuration, e.g. a timestamp past the end.
	Skipped bool
}

// Duration returns the clip length in seconds.
func (s Snippet) Duration() float64 {
	return s.End - s.Start
}

// Snippeter cuts short clips from a video around given timestamps.
type Snippeter struct {
	opts     *config.SnippetOptions
	encoder  Encoder
	progress Progress
	logger   *zap.Logger
}

// NewSnippeter creates a new snippet extractor
func NewSnippeter(opts *config.SnippetOptions, encoder Encoder, logger *zap.Logger) *Snippeter {
	return &Snippeter{
		opts:     opts,
		encoder:  encoder,
		progress: SilentProgress,
		logger:   logging.OrNop(logger),
	}
}

// WithProgress sets the progress sink factory.
func (s *Snippeter) WithProgress(p Progress) *Snippeter {
	if p != nil {
		s.progress = p
	}
	return s
}

func (s *Snippeter) before() float64 {
	if s.opts.Before > 0 {
		return s.opts.Before
	}
	return config.DefaultSnippetBefore
}

func (s *Snippeter) after() float64 {
	if s.opts.After > 0 {
		return s.opts.After
	}
	return config.DefaultSnippetAfter
}

// Window returns the clip around at, clamped to [0, duration].
func (s *Snippeter) Window(at, duration float64) (start, end float64) {
	start = max(0, at-s.before())
	end = at + s.after()
	if duration > 0 {
		end = min(duration, end)
	}
	return start, end
}

// Plan lays out one snippet per timestamp. Clips are named
// <stem>_HHMMSS[_label]<ext> inside OutputDir; repeated names get _1, _2, ...
func (s *Snippeter) Plan(timestamps []float64, duration float64) []Snippet {
	name := sanitizeFilename(stem(s.opts.InputPath))
	ext := filepath.Ext(s.opts.InputPath)
	label := ""
	if strings.TrimSpace(s.opts.Label) != "" {
		label = "_" + sanitizeFilename(s.opts.Label)
	}

	used := make(map[string]bool, len(timestamps))
	snippets := make([]Snippet, 0, len(timestamps))
	for _, at := range timestamps {
		start, end := s.Window(at, duration)
		sn := Snippet{Timestamp: at, Start: start, End: end}
		if sn.Duration() < config.MinSnippetDuration {
			sn.Skipped = true
			snippets = append(snippets, sn)
			continue
		}
		base := filepath.Join(s.opts.OutputDir, name+"_"+hhmmss(at)+label)
		sn.OutputPath = uniquePath(base, ext, used)
		used[sn.OutputPath] = true
		snippets = append(snippets, sn)
	}
	return snippets
}

// Process cuts every timestamp of the options. Windows too short to be
// useful are reported as skipped. With DryRun only the plan is returned.
func (s *Snippeter) Process(ctx context.Context) ([]Snippet, error) {
	if len(s.opts.Timestamps) == 0 {
		return nil, fmt.Errorf("at least one timestamp is required")
	}
	timestamps := make([]float64, 0, len(s.opts.Timestamps))
	for _, ts := range s.opts.Timestamps {
		at, err := ParseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		timestamps = append(timestamps, at)
	}

	prof := profile.MustGet(profile.Chunk)
	if s.opts.Profile != "" {
		p, err := profile.Get(s.opts.Profile)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		prof = p
	}

	metadata, err := s.encoder.GetVideoMetadata(s.opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get video metadata: %v", err)
	}
	snippets := s.Plan(timestamps, metadata.Duration)
	s.logger.Info("extracting snippets",
		zap.String("input", s.opts.InputPath),
		zap.Float64("before", s.before()),
		zap.Float64("after", s.after()),
		zap.Int("snippets", len(snippets)))

	if s.opts.DryRun {
		return snippets, nil
	}
	if err := os.MkdirAll(s.opts.OutputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory %s", s.opts.OutputDir)
	}

	done := make([]Snippet, 0, len(snippets))
	for i, sn := range snippets {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if sn.Skipped {
			s.logger.Warn("snippet too short, skipping",
				zap.Float64("timestamp", sn.Timestamp), zap.Float64("duration", sn.Duration()))
			done = append(done, sn)
			continue
		}

		w := s.progress(fmt.Sprintf("snippet %d/%d", i+1, len(snippets)), sn.Duration())
		err := s.encoder.Segment(ctx, s.opts.InputPath, sn.OutputPath, sn.Start, sn.Duration(), prof, w)
		w.Finish()
		if err != nil {
			return done, errors.Wrapf(err, "error extracting snippet at %s", hhmmss(sn.Timestamp))
		}
		s.logger.Debug("snippet written", zap.String("output", sn.OutputPath),
			zap.Float64("start", sn.Start), zap.Float64("end", sn.End))
		done = append(done, sn)
	}
	return done, nil
}

// uniquePath returns base+ext, or base_N+ext when that is already taken on
// disk or in this run.
func uniquePath(base, ext string, used map[string]bool) string {
	taken := func(p string) bool {
		if used[p] {
			return true
		}
		_, err := os.Stat(p)
		return err == nil
	}
	path := base + ext
	for n := 1; taken(path); n++ {
		path = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
	return path
}

var parenTimestamp = regexp.MustCompile(`\((\d{1,2}):(\d{2}):(\d{2})\)`)

// ParseTimestamp reads "HH:MM:SS[.fff]", "MM:SS", "(h:mm:ss)" or plain
// seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if m := parenTimestamp.FindStringSubmatch(s); m != nil {
		s = m[1] + ":" + m[2] + ":" + m[3]
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, errors.Errorf("invalid timestamp %q", s)
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return 0, errors.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

func hhmmss(seconds float64) string {
	t := int(seconds)
	return fmt.Sprintf("%02d%02d%02d", t/3600, t%3600/60, t%60)
}
