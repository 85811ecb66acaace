package ffmpeg

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"sync"

	"github.com/schollz/progressbar/v3"
)

var progressRegex = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)

const tailSize = 4096

// ParseProgressTime extracts the encoded position in seconds from an ffmpeg
// status line.
func ParseProgressTime(line string) (float64, bool) {
	matches := progressRegex.FindStringSubmatch(line)
	if matches == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60) + seconds, true
}

// ProgressWriter consumes ffmpeg stderr. It tracks the encoded position,
// drives an optional progress bar and keeps the tail of the output for error
// messages.
type ProgressWriter struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	total   float64
	seconds float64
	line    []byte
	tail    []byte
}

// NewProgressWriter creates a writer for an encode of total seconds. When out
// is nil no bar is drawn.
func NewProgressWriter(description string, total float64, out io.Writer) *ProgressWriter {
	w := &ProgressWriter{total: total}
	if out != nil && total > 0 {
		w.bar = progressbar.NewOptions64(int64(total*100),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionOnCompletion(func() { io.WriteString(out, "\n") }),
		)
	}
	return w
}

// Write implements io.Writer.
func (w *ProgressWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tail = append(w.tail, p...)
	if len(w.tail) > tailSize {
		w.tail = w.tail[len(w.tail)-tailSize:]
	}

	// ffmpeg terminates status lines with \r
	for _, b := range p {
		if b == '\r' || b == '\n' {
			w.consume(string(w.line))
			w.line = w.line[:0]
			continue
		}
		w.line = append(w.line, b)
	}
	return len(p), nil
}

func (w *ProgressWriter) consume(line string) {
	s, ok := ParseProgressTime(line)
	if !ok {
		return
	}
	if w.total > 0 && s > w.total {
		s = w.total
	}
	w.seconds = s
	if w.bar != nil {
		w.bar.Set64(int64(s * 100))
	}
}

// Seconds returns the last reported position.
func (w *ProgressWriter) Seconds() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seconds
}

// Percent returns progress in 0..100, 0 when the total is unknown.
func (w *ProgressWriter) Percent() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.total <= 0 {
		return 0
	}
	return w.seconds / w.total * 100
}

// Tail returns the last non-empty line ffmpeg wrote.
func (w *ProgressWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	lines := bytes.FieldsFunc(w.tail, func(r rune) bool { return r == '\n' || r == '\r' })
	for i := len(lines) - 1; i >= 0; i-- {
		if t := bytes.TrimSpace(lines[i]); len(t) > 0 {
			return string(t)
		}
	}
	return ""
}

// Finish completes the bar.
func (w *ProgressWriter) Finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bar != nil {
		w.bar.Finish()
	}
}
