package profile

import "testing"

func TestRegistry(t *testing.T) {
	names := GetSupportedProfiles()
	want := []string{"chunk", "copy", "fast", "quality"}
	if len(names) != len(want) {
		t.Fatalf("unexpected profiles %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected profiles %v", names)
		}
	}
	if _, err := Get("tiktok"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}

func TestOutputArgs(t *testing.T) {
	args := OutputArgs(MustGet(Copy))
	if len(args) != 1 || args["c"] != "copy" {
		t.Fatalf("unexpected copy args %v", args)
	}

	args = OutputArgs(MustGet(Fast))
	if args["c:v"] != "libx264" || args["preset"] != "fast" || args["crf"] != 23 || args["c:a"] != "copy" {
		t.Fatalf("unexpected fast args %v", args)
	}

	args = OutputArgs(MustGet(Quality))
	if args["crf"] != 18 || args["preset"] != "medium" {
		t.Fatalf("unexpected quality args %v", args)
	}
}
