package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/DAmesberger/qdesigner-modern-sub009/engine"
	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
)

func init() {
	// SDL requires the main thread for window and event handling.
	runtime.LockOSThread()
}

func main() {
	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	cfg := engine.DefaultConfig()

	outputFile := flag.String("output", cfg.OutputFile, "Output CSV file")
	startSplash := flag.String("start-splash", "", "Instruction splash image")
	endSplash := flag.String("end-splash", "", "End splash image")
	fontFile := flag.String("font", "", "TTF font file")
	fontSize := flag.Int("font-size", cfg.FontSize, "Font size")
	triggerDevice := flag.String("trigger", "", "DLP-IO8-G trigger device")
	stimuliDir := flag.String("stimuli-dir", "", "Directory with feedback sounds (hit.wav, miss.wav)")
	screenW := flag.Int("width", cfg.ScreenWidth, "Screen width")
	screenH := flag.Int("height", cfg.ScreenHeight, "Screen height")
	displayIdx := flag.Int("display", 0, "Display index")
	targetFPS := flag.Float64("fps", cfg.TargetFPS, "Target frame rate")
	trials := flag.Int("trials", cfg.NumberOfTrials, "Number of trials")
	warmup := flag.Int("warmup", cfg.WarmupTrials, "Number of warmup trials")
	stimulusMS := flag.Float64("stimulus-ms", cfg.StimulusDuration, "Stimulus timeout in ms")
	itiMS := flag.Float64("iti-ms", cfg.InterTrialInterval, "Inter-trial interval in ms")
	targetKey := flag.String("key", cfg.TargetKey, "Response key name")
	noVSync := flag.Bool("no-vsync", false, "Disable VSync")
	noFixation := flag.Bool("no-fixation", false, "Disable fixation cross")
	feedback := flag.Bool("feedback", false, "Enable auditory feedback")
	fullscreen := flag.Bool("fullscreen", false, "Enable fullscreen")
	bgColorStr := flag.String("bg-color", "0,0,0,255", "Background color (R,G,B,A)")
	stimColorStr := flag.String("stimulus-color", "0,204,0,255", "Stimulus color (R,G,B,A)")
	fixColorStr := flag.String("fixation-color", "255,255,255,255", "Fixation color (R,G,B,A)")

	flag.Parse()

	cfg.OutputFile = *outputFile
	cfg.StartSplash = *startSplash
	cfg.EndSplash = *endSplash
	cfg.FontFile = *fontFile
	cfg.FontSize = *fontSize
	cfg.TriggerDevice = *triggerDevice
	cfg.StimuliDir = *stimuliDir
	cfg.ScreenWidth = *screenW
	cfg.ScreenHeight = *screenH
	cfg.DisplayIndex = *displayIdx
	cfg.TargetFPS = *targetFPS
	cfg.NumberOfTrials = *trials
	cfg.WarmupTrials = *warmup
	cfg.StimulusDuration = *stimulusMS
	cfg.InterTrialInterval = *itiMS
	cfg.TargetKey = *targetKey
	cfg.VSync = !*noVSync
	cfg.UseFixation = !*noFixation
	cfg.Feedback = *feedback
	cfg.Fullscreen = *fullscreen
	cfg.BGColor = engine.ParseColor(*bgColorStr)
	cfg.StimulusColor = engine.ParseColor(*stimColorStr)
	cfg.FixationColor = engine.ParseColor(*fixColorStr)

	if err := engine.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
