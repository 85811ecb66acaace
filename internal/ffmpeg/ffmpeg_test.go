package ffmpeg

import (
	"context"
	"image"
	"math"
	"strings"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const probeJSON = `{
  "streams": [
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
     "r_frame_rate": "30000/1001", "duration": "12.5", "nb_frames": "375", "bit_rate": "4000000"}
  ],
  "format": {"format_name": "mov,mp4,m4a", "duration": "12.6", "size": "6500000", "bit_rate": "4125000"}
}`

func TestParseProbe(t *testing.T) {
	m, err := ParseProbe(probeJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Width != 1920 || m.Height != 1080 || m.Codec != "h264" || m.AudioCodec != "aac" {
		t.Fatalf("unexpected metadata %+v", m)
	}
	if m.Duration != 12.5 {
		t.Fatalf("stream duration should win, got %f", m.Duration)
	}
	if math.Abs(m.FrameRate-29.97) > 0.01 {
		t.Fatalf("unexpected frame rate %f", m.FrameRate)
	}
	if m.Bitrate != 4125000 || m.Size != 6500000 || m.FrameCount != 375 {
		t.Fatalf("unexpected bitrate/size/frames %+v", m)
	}
	if m.Resolution() != "1920x1080" || m.Info()["resolution"] != "1920x1080" {
		t.Fatalf("unexpected resolution")
	}
}

func TestParseProbe_DurationFallbacks(t *testing.T) {
	m, err := ParseProbe(`{"streams":[{"codec_type":"video","width":640,"height":480,"r_frame_rate":"25/1"}],"format":{"duration":"8.0"}}`)
	if err != nil || m.Duration != 8 {
		t.Fatalf("expected format duration, got %v %v", m, err)
	}
	if m.FrameCount != 200 {
		t.Fatalf("expected frame count estimated from duration, got %d", m.FrameCount)
	}

	m, err = ParseProbe(`{"streams":[{"codec_type":"video","width":640,"height":480,"r_frame_rate":"25/1","nb_frames":"50"}]}`)
	if err != nil || m.Duration != 2 {
		t.Fatalf("expected duration from frames, got %v %v", m, err)
	}

	if _, err := ParseProbe(`{"streams":[{"codec_type":"video","width":640,"height":480}]}`); err == nil {
		t.Fatalf("expected error without any duration")
	}
	if _, err := ParseProbe(`{"streams":[{"codec_type":"audio"}]}`); err == nil {
		t.Fatalf("expected error without a video stream")
	}
}

func TestParseProgressTime(t *testing.T) {
	cases := map[string]float64{
		"frame=  120 fps= 30 q=28.0 size=    512kB time=00:00:04.00 bitrate=1048.6kbits/s": 4,
		"time=01:02:03.50": 3723.5,
	}
	for line, want := range cases {
		got, ok := ParseProgressTime(line)
		if !ok || got != want {
			t.Errorf("ParseProgressTime(%q)=%v,%v want %v", line, got, ok, want)
		}
	}
	if _, ok := ParseProgressTime("Stream mapping:"); ok {
		t.Fatalf("expected no match")
	}
}

func TestProgressWriter(t *testing.T) {
	w := NewProgressWriter("test", 10, nil)
	w.Write([]byte("Input #0, mov\nframe=1 time=00:00:02.50 bitrate=1\r"))
	w.Write([]byte("frame=2 time=00:00:0"))
	if w.Seconds() != 2.5 {
		t.Fatalf("partial line must not be consumed, got %f", w.Seconds())
	}
	w.Write([]byte("5.00 bitrate=1\rError while filtering\n"))
	if w.Seconds() != 5 || w.Percent() != 50 {
		t.Fatalf("unexpected progress %f %f", w.Seconds(), w.Percent())
	}
	if w.Tail() != "Error while filtering" {
		t.Fatalf("unexpected tail %q", w.Tail())
	}

	w.Write([]byte(strings.Repeat("x", tailSize*2) + "\n"))
	if len(w.tail) > tailSize {
		t.Fatalf("tail not bounded: %d", len(w.tail))
	}
	w.Finish()
}

func TestFrameSource_Caches(t *testing.T) {
	calls := 0
	cache, _ := lru.New[frameKey, image.Image](2)
	fs := &FrameSource{
		grab: func(_ context.Context, path string, ts float64) (image.Image, error) {
			calls++
			return image.NewGray(image.Rect(0, 0, 4, 4)), nil
		},
		cache:  cache,
		logger: zap.NewNop(),
	}

	ctx := context.Background()
	fs.Still(ctx, "a.mp4", 1)
	fs.Still(ctx, "a.mp4", 1)
	if calls != 1 {
		t.Fatalf("expected cache hit, got %d grabs", calls)
	}
	fs.Still(ctx, "a.mp4", 2)
	fs.Still(ctx, "b.mp4", 1)
	fs.Still(ctx, "a.mp4", 1)
	if calls != 4 {
		t.Fatalf("expected eviction of the oldest frame, got %d grabs", calls)
	}
}
