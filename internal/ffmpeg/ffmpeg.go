package ffmpeg

import (
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/logging"
)

// VideoMetadata contains metadata about a video file
type VideoMetadata struct {
	Path       string
	Duration   float64
	Width      int
	Height     int
	Codec      string
	FrameRate  float64
	FrameCount int
	Bitrate    int64
	AudioCodec string
	Format     string
	Size       int64
}

// Resolution returns "WxH".
func (m *VideoMetadata) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Info returns the metadata as a template video_info record.
func (m *VideoMetadata) Info() map[string]any {
	return map[string]any{
		"path":        m.Path,
		"duration":    m.Duration,
		"frame_count": m.FrameCount,
		"fps":         m.FrameRate,
		"width":       m.Width,
		"height":      m.Height,
		"resolution":  m.Resolution(),
	}
}

// Processor wraps FFmpeg functionality
type Processor struct {
	logger *zap.Logger
}

// NewProcessor creates a new FFmpeg processor
func NewProcessor(logger *zap.Logger) *Processor {
	return &Processor{
		logger: logging.OrNop(logger),
	}
}

// GetVideoMetadata retrieves metadata about a video file
func (p *Processor) GetVideoMetadata(inputPath string) (*VideoMetadata, error) {
	probe, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, fmt.Errorf("error probing video: %v", err)
	}

	metadata, err := ParseProbe(probe)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read metadata of %s", inputPath)
	}
	metadata.Path = inputPath

	p.logger.Debug("video metadata",
		zap.String("path", inputPath),
		zap.Float64("duration", metadata.Duration),
		zap.String("resolution", metadata.Resolution()),
		zap.String("codec", metadata.Codec),
		zap.Float64("fps", metadata.FrameRate))
	return metadata, nil
}

// ParseProbe decodes ffprobe JSON output.
func ParseProbe(probe string) (*VideoMetadata, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, ok := data["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		return nil, fmt.Errorf("no streams found in video")
	}

	var videoStream, audioStream map[string]interface{}
	for _, stream := range streams {
		s, ok := stream.(map[string]interface{})
		if !ok {
			continue
		}
		switch s["codec_type"] {
		case "video":
			if videoStream == nil {
				videoStream = s
			}
		case "audio":
			if audioStream == nil {
				audioStream = s
			}
		}
	}

	if videoStream == nil {
		return nil, fmt.Errorf("no video stream found")
	}

	format, _ := data["format"].(map[string]interface{})
	frameRate := parseFrameRate(stringField(videoStream, "r_frame_rate"))
	if frameRate == 0 {
		frameRate = parseFrameRate(stringField(videoStream, "avg_frame_rate"))
	}

	// First try video stream duration
	duration := floatField(videoStream, "duration")

	// If stream duration is not available, try format duration
	if duration == 0 {
		duration = floatField(format, "duration")
	}

	// If still no duration found, try calculating from frames and frame rate
	frames := floatField(videoStream, "nb_frames")
	if duration == 0 && frames > 0 && frameRate > 0 {
		duration = frames / frameRate
	}

	if duration == 0 {
		return nil, fmt.Errorf("could not determine video duration")
	}
	if frames == 0 && frameRate > 0 {
		frames = math.Round(duration * frameRate)
	}

	width, _ := videoStream["width"].(float64)
	height, _ := videoStream["height"].(float64)

	metadata := &VideoMetadata{
		Duration:   duration,
		Width:      int(width),
		Height:     int(height),
		Codec:      stringField(videoStream, "codec_name"),
		FrameRate:  frameRate,
		FrameCount: int(frames),
		Format:     stringField(format, "format_name"),
		Size:       int64(floatField(format, "size")),
	}
	if audioStream != nil {
		metadata.AudioCodec = stringField(audioStream, "codec_name")
	}
	metadata.Bitrate = bitrate(metadata, format, videoStream)

	return metadata, nil
}

// bitrate prefers the container bit_rate, then the video stream, then an
// estimate from file size and duration.
func bitrate(metadata *VideoMetadata, format, videoStream map[string]interface{}) int64 {
	if b := floatField(format, "bit_rate"); b > 0 {
		return int64(b)
	}
	if b := floatField(videoStream, "bit_rate"); b > 0 {
		return int64(b)
	}
	if metadata.Size > 0 && metadata.Duration > 0 {
		return int64(float64(metadata.Size*8) / metadata.Duration)
	}
	return 0
}

func parseFrameRate(rate string) float64 {
	nums := strings.Split(rate, "/")
	if len(nums) != 2 {
		f, _ := strconv.ParseFloat(strings.TrimSpace(rate), 64)
		return f
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// floatField reads a numeric field that ffprobe may emit as a string or a number.
func floatField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func GetOptimalThreadCount() int {
	cpuCount := runtime.NumCPU()
	// Use 75% of available cores to prevent overload
	return int(math.Max(1, float64(cpuCount)*0.75))
}
