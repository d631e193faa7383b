package engine

import (
	"os"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"255,255,255,255", Color{1, 1, 1, 1}},
		{"0,0,0,255", Color{0, 0, 0, 1}},
		{"255,0,0", Color{1, 0, 0, 1}}, // missing alpha defaults opaque
		{"0,0,0", Color{0, 0, 0, 1}},
		{"0,255,0", Color{0, 1, 0, 1}},
		{"255,0,0,0", Color{1, 0, 0, 0}}, // explicit zero alpha stays zero
	}
	for _, tt := range tests {
		got := ParseColor(tt.in)
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg := DefaultConfig()
	cfg.OutputFile = "out.csv"
	cfg.ScreenWidth = 1280
	cfg.ScreenHeight = 720
	cfg.NumberOfTrials = 42
	cfg.WarmupTrials = 5
	cfg.StimulusDuration = 750
	cfg.InterTrialInterval = 1250
	cfg.Fullscreen = true
	cfg.UseFixation = false
	cfg.Feedback = true
	cfg.SaveCache()

	loaded := DefaultConfig()
	loaded.LoadCache()
	if loaded.OutputFile != "out.csv" || loaded.ScreenWidth != 1280 || loaded.ScreenHeight != 720 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.NumberOfTrials != 42 || loaded.WarmupTrials != 5 {
		t.Fatalf("trial counts = %d/%d", loaded.NumberOfTrials, loaded.WarmupTrials)
	}
	if loaded.StimulusDuration != 750 || loaded.InterTrialInterval != 1250 {
		t.Fatalf("timings = %g/%g", loaded.StimulusDuration, loaded.InterTrialInterval)
	}
	if !loaded.Fullscreen || loaded.UseFixation || !loaded.Feedback {
		t.Fatalf("toggles = %+v", loaded)
	}
}

func TestLoadCacheMissingFile(t *testing.T) {
	wd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(wd)

	cfg := DefaultConfig()
	cfg.LoadCache() // no file: defaults stay intact
	if cfg.NumberOfTrials != DefaultConfig().NumberOfTrials {
		t.Fatal("missing cache file modified defaults")
	}
}

func TestReactionConfigExtraction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumberOfTrials = 7
	cfg.TargetKey = "Return"
	rc := cfg.ReactionConfig()
	if rc.NumberOfTrials != 7 || rc.TargetKey != "Return" {
		t.Fatalf("reaction config = %+v", rc)
	}
	if rc.StimulusColor != cfg.StimulusColor || rc.BackgroundColor != cfg.BGColor {
		t.Fatalf("colors not carried over: %+v", rc)
	}
}
