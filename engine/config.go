package engine

import (
	"fmt"
	"os"
	"strings"
)

// Config collects everything the presentation runtime needs for one
// reaction-test session: window setup, timing parameters and the optional
// peripherals.
type Config struct {
	OutputFile    string
	StimuliDir    string
	StartSplash   string
	EndSplash     string
	FontFile      string
	TriggerDevice string
	FontSize      int
	ScreenWidth   int
	ScreenHeight  int
	DisplayIndex  int
	TargetFPS     float64
	Fullscreen    bool
	VSync         bool
	UseFixation   bool
	Feedback      bool

	StimulusDuration   float64
	InterTrialInterval float64
	NumberOfTrials     int
	WarmupTrials       int
	TargetKey          string

	BGColor       Color
	StimulusColor Color
	FixationColor Color
	TextColor     Color
}

// ParseColor reads an "R,G,B,A" byte quadruple into a float color. A
// missing alpha defaults to opaque; an explicit zero alpha stays zero.
func ParseColor(s string) Color {
	var r, g, b, a uint8
	n, _ := fmt.Sscanf(s, "%d,%d,%d,%d", &r, &g, &b, &a)
	if n == 3 {
		a = 255
	}
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

func formatColor(c Color) string {
	return fmt.Sprintf("%d,%d,%d,%d", clampByte(c.R), clampByte(c.G), clampByte(c.B), clampByte(c.A))
}

const CacheFile = ".reactest_cache"

// SaveCache persists the user-adjustable settings to the dotfile consulted
// by the setup screen on the next launch.
func (cfg *Config) SaveCache() {
	f, err := os.Create(CacheFile)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "output_file=%s\n", cfg.OutputFile)
	fmt.Fprintf(f, "screen_w=%d\n", cfg.ScreenWidth)
	fmt.Fprintf(f, "screen_h=%d\n", cfg.ScreenHeight)
	fmt.Fprintf(f, "trials=%d\n", cfg.NumberOfTrials)
	fmt.Fprintf(f, "warmup=%d\n", cfg.WarmupTrials)
	fmt.Fprintf(f, "stimulus_ms=%g\n", cfg.StimulusDuration)
	fmt.Fprintf(f, "iti_ms=%g\n", cfg.InterTrialInterval)
	boolVal := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}
	fmt.Fprintf(f, "use_fixation=%s\n", boolVal(cfg.UseFixation))
	fmt.Fprintf(f, "fullscreen=%s\n", boolVal(cfg.Fullscreen))
	fmt.Fprintf(f, "feedback=%s\n", boolVal(cfg.Feedback))
	fmt.Fprintf(f, "bg_color=%s\n", formatColor(cfg.BGColor))
	fmt.Fprintf(f, "stimulus_color=%s\n", formatColor(cfg.StimulusColor))
	fmt.Fprintf(f, "fixation_color=%s\n", formatColor(cfg.FixationColor))
}

// LoadCache merges previously saved settings into cfg. Unknown keys and a
// missing file are ignored.
func (cfg *Config) LoadCache() {
	data, err := os.ReadFile(CacheFile)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := parts[0], strings.TrimSpace(parts[1])

		switch key {
		case "output_file":
			cfg.OutputFile = val
		case "screen_w":
			fmt.Sscanf(val, "%d", &cfg.ScreenWidth)
		case "screen_h":
			fmt.Sscanf(val, "%d", &cfg.ScreenHeight)
		case "trials":
			fmt.Sscanf(val, "%d", &cfg.NumberOfTrials)
		case "warmup":
			fmt.Sscanf(val, "%d", &cfg.WarmupTrials)
		case "stimulus_ms":
			fmt.Sscanf(val, "%g", &cfg.StimulusDuration)
		case "iti_ms":
			fmt.Sscanf(val, "%g", &cfg.InterTrialInterval)
		case "use_fixation":
			cfg.UseFixation = (val != "0")
		case "fullscreen":
			cfg.Fullscreen = (val != "0")
		case "feedback":
			cfg.Feedback = (val != "0")
		case "bg_color":
			cfg.BGColor = ParseColor(val)
		case "stimulus_color":
			cfg.StimulusColor = ParseColor(val)
		case "fixation_color":
			cfg.FixationColor = ParseColor(val)
		}
	}
}

func DefaultConfig() *Config {
	return &Config{
		OutputFile:         "results.csv",
		FontSize:           24,
		ScreenWidth:        1920,
		ScreenHeight:       1080,
		TargetFPS:          60,
		VSync:              true,
		UseFixation:        true,
		Feedback:           false,
		StimulusDuration:   1000,
		InterTrialInterval: 1500,
		NumberOfTrials:     20,
		WarmupTrials:       3,
		TargetKey:          "Space",
		BGColor:            Color{R: 0, G: 0, B: 0, A: 1},
		StimulusColor:      Color{R: 0, G: 0.8, B: 0, A: 1},
		FixationColor:      Color{R: 1, G: 1, B: 1, A: 1},
		TextColor:          Color{R: 1, G: 1, B: 1, A: 1},
	}
}

// ReactionConfig extracts the immutable trial parameters handed to the
// scheduler.
func (cfg *Config) ReactionConfig() ReactionTestConfig {
	return ReactionTestConfig{
		StimulusDuration:   cfg.StimulusDuration,
		InterTrialInterval: cfg.InterTrialInterval,
		NumberOfTrials:     cfg.NumberOfTrials,
		WarmupTrials:       cfg.WarmupTrials,
		TargetKey:          cfg.TargetKey,
		StimulusColor:      cfg.StimulusColor,
		BackgroundColor:    cfg.BGColor,
	}
}
