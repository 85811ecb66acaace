package ffmpeg

import (
	"fmt"
	"math"
	"testing"
)

func metadataJSON(codec string, width, height int, rate, duration string) string {
	return fmt.Sprintf(`{"streams":[{"codec_type":"video","codec_name":%q,"width":%d,"height":%d,"r_frame_rate":%q,"duration":%q}],"format":{"format_name":"mov,mp4,m4a","size":"1048576"}}`,
		codec, width, height, rate, duration)
}

func parseFixtures(t *testing.T, paths []string, docs ...string) []*VideoMetadata {
	t.Helper()
	var metas []*VideoMetadata
	for i, p := range docs {
		m, err := ParseProbe(p)
		if err != nil {
			t.Fatalf("parse fixture %d: %v", i, err)
		}
		m.Path = paths[i]
		metas = append(metas, m)
	}
	return metas
}

func TestCompare(t *testing.T) {
	hd30 := metadataJSON("h264", 1920, 1080, "30/1", "10.0")
	ntsc := metadataJSON("h264", 1920, 1080, "30000/1001", "10.0")
	hevc := metadataJSON("hevc", 1280, 720, "30/1", "20.0")

	cases := []struct {
		name     string
		docs     []string
		fields   []Field
		mismatch []Field
	}{
		{"identical", []string{hd30, hd30}, nil, nil},
		{"frame rate differs", []string{hd30, ntsc}, nil, []Field{FieldFPS}},
		{"everything differs", []string{hd30, hevc}, nil, []Field{FieldResolution, FieldCodec, FieldDuration}},
		{"selected fields", []string{hd30, hevc}, []Field{FieldFPS, FieldFormat, FieldAspect}, nil},
		{"single video", []string{hevc}, nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			paths := []string{"/in/a.mp4", "/in/b.mp4", "/in/c.mp4"}[:len(tc.docs)]
			c, err := Compare(parseFixtures(t, paths, tc.docs...), tc.fields)
			if err != nil {
				t.Fatalf("compare: %v", err)
			}
			if c.Total != len(tc.docs) {
				t.Fatalf("total %d", c.Total)
			}
			if fmt.Sprint(c.Mismatching) != fmt.Sprint(tc.mismatch) {
				t.Fatalf("mismatching %v want %v", c.Mismatching, tc.mismatch)
			}
			if c.Consistent() != (len(tc.mismatch) == 0) {
				t.Fatalf("consistent=%v with mismatches %v", c.Consistent(), c.Mismatching)
			}
			if len(c.Matching)+len(c.Mismatching) != len(c.Fields) {
				t.Fatalf("fields not partitioned: %+v", c)
			}
		})
	}
}

func TestCompare_GroupsVideosByValue(t *testing.T) {
	metas := parseFixtures(t, []string{"/a/one.mp4", "/b/two.mp4", "/c/three.mp4"},
		metadataJSON("h264", 1920, 1080, "30/1", "10.0"),
		metadataJSON("hevc", 1920, 1080, "30/1", "10.0"),
		metadataJSON("h264", 1920, 1080, "30/1", "10.0"))

	c, err := Compare(metas, []Field{FieldCodec, FieldAudioCodec, FieldResolution})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	codec := c.Fields[0]
	if codec.AllMatch || len(codec.Values) != 2 || codec.Values[0] != "h264" {
		t.Fatalf("unexpected codec comparison %+v", codec)
	}
	if got := codec.Videos["h264"]; len(got) != 2 || got[0] != "one.mp4" || got[1] != "three.mp4" {
		t.Fatalf("unexpected h264 group %v", got)
	}
	if v, ok := c.Fields[1].Common(); !ok || v != NotAvailable {
		t.Fatalf("missing audio should compare as %s, got %q %v", NotAvailable, v, ok)
	}
	if v, ok := c.Fields[2].Common(); !ok || v != "1920x1080" {
		t.Fatalf("unexpected common resolution %q", v)
	}

	if _, err := Compare(metas, []Field{"colour"}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := Compare(nil, nil); err == nil {
		t.Fatalf("expected error without metadata")
	}
}

func TestMetadataValue(t *testing.T) {
	m, err := ParseProbe(probeJSON)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[Field]string{
		FieldFPS:        "29.97",
		FieldResolution: "1920x1080",
		FieldAspect:     "16:9",
		FieldDuration:   "12.5",
		FieldFrameCount: "375",
		FieldCodec:      "h264",
		FieldAudioCodec: "aac",
		FieldFormat:     "mov,mp4,m4a",
		FieldBitrate:    "4125000",
		FieldSizeMB:     "6.2",
	}
	for f, want := range cases {
		if got := m.Value(f); got != want {
			t.Errorf("Value(%s)=%q want %q", f, got, want)
		}
	}
	if _, err := ParseField("fps"); err != nil {
		t.Fatalf("fps should parse: %v", err)
	}
	if _, err := ParseField("nope"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestCheckCriteria(t *testing.T) {
	metas := parseFixtures(t, []string{"a.mp4", "b.mp4"},
		metadataJSON("h264", 1920, 1080, "30000/1001", "10.0"),
		metadataJSON("h264", 1280, 720, "25/1", "10.0"))

	failures := CheckCriteria(metas, map[Field]string{FieldFPS: "29.970", FieldResolution: "1920x1080"})
	if len(failures) != 2 {
		t.Fatalf("expected two failures, got %+v", failures)
	}
	for _, f := range failures {
		if f.Video != "b.mp4" {
			t.Fatalf("a.mp4 meets the criteria, got %+v", f)
		}
	}
	if failures[0].Field != FieldFPS || failures[0].Expected != "29.97" || failures[0].Actual != "25" {
		t.Fatalf("unexpected failure %+v", failures[0])
	}
}

func TestSummarizeAndAnomalies(t *testing.T) {
	var metas []*VideoMetadata
	for i, d := range []string{"10.0", "10.0", "10.0", "30.0"} {
		m, err := ParseProbe(metadataJSON("h264", 640, 480, "25/1", d))
		if err != nil {
			t.Fatal(err)
		}
		m.Path = fmt.Sprintf("clip%d.mp4", i)
		metas = append(metas, m)
	}

	s, ok := Summarize(metas, FieldDuration)
	if !ok {
		t.Fatalf("expected duration stats")
	}
	if s.Count != 4 || s.Min != 10 || s.Max != 30 || s.Range != 20 || math.Abs(s.Mean-15) > 1e-9 || s.Median != 10 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(75)) > 1e-9 {
		t.Fatalf("expected population std dev, got %f", s.StdDev)
	}

	anomalies := DetectAnomalies(metas, FieldDuration, 0.5)
	if len(anomalies) != 1 || anomalies[0].Video != "clip3.mp4" || math.Abs(anomalies[0].Deviation-15) > 1e-9 {
		t.Fatalf("unexpected anomalies %+v", anomalies)
	}
	if got := DetectAnomalies(metas, FieldWidth, 0.1); got != nil {
		t.Fatalf("identical widths cannot be anomalous, got %+v", got)
	}
	if _, ok := Summarize(metas, FieldCodec); ok {
		t.Fatalf("codec is not numeric")
	}
}
