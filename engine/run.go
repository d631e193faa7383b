package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

// Run executes one full reaction-test session: window and renderer setup,
// instruction splash, the trial loop, results screen and CSV export. It
// must be called from the main thread with the SDL binaries loaded.
func Run(cfg *Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl init: %w", err)
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		return fmt.Errorf("ttf init: %w", err)
	}
	defer ttf.Quit()

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}
	window, sdlRenderer, err := sdl.CreateWindowAndRenderer("Reaction Test", cfg.ScreenWidth, cfg.ScreenHeight, windowFlags)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	defer sdlRenderer.Destroy()

	if cfg.VSync {
		sdlRenderer.SetVSync(1)
	} else {
		sdlRenderer.SetVSync(0)
	}

	var font *ttf.Font
	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = DefaultFontPath()
	}
	if fontPath != "" {
		font, err = ttf.OpenFont(fontPath, float32(cfg.FontSize))
		if err != nil {
			fmt.Printf("Failed to load font %s: %v\n", fontPath, err)
		}
	}
	defer func() {
		if font != nil {
			font.Close()
		}
	}()

	backend, err := NewSDLBackend(sdlRenderer, cfg.ScreenWidth, cfg.ScreenHeight)
	if err != nil {
		return err
	}

	clock := TickClock{}
	renderer, err := NewRenderer(backend, clock, RendererConfig{
		Width:      cfg.ScreenWidth,
		Height:     cfg.ScreenHeight,
		TargetFPS:  cfg.TargetFPS,
		ClearColor: cfg.BGColor,
	})
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	var resources *ResourceManager
	if cfg.StimuliDir != "" {
		resources = NewResourceManager(cfg.StimuliDir)
		defer resources.Destroy()
	}

	var feedback *FeedbackPlayer
	if cfg.Feedback {
		mixer := NewMixer()
		spec := mixerSpec()
		cb := sdl.NewAudioStreamCallback(mixer.Callback)
		stream := sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(&spec, cb)
		if stream == nil {
			fmt.Println("Failed to open audio stream, feedback disabled")
		} else {
			defer stream.Destroy()
			stream.ResumeDevice()
			feedback = NewFeedbackPlayer(mixer)
			if resources != nil {
				// hit.wav / miss.wav in the stimuli directory replace
				// the synthesized tones; absent files keep the defaults.
				var hit, miss *SoundResource
				if s, err := resources.LoadSound("hit.wav"); err == nil {
					hit = s
				}
				if s, err := resources.LoadSound("miss.wav"); err == nil {
					miss = s
				}
				feedback.SetSounds(hit, miss)
			}
		}
	}

	var trigger *TriggerBox
	if cfg.TriggerDevice != "" {
		trigger, err = OpenTriggerBox(cfg.TriggerDevice, 9600)
		if err != nil {
			fmt.Printf("Failed to open trigger box: %v\n", err)
		} else {
			defer trigger.Close()
		}
	}

	if !DisplaySplash(sdlRenderer, cfg.StartSplash, cfg.ScreenWidth, cfg.ScreenHeight, cfg.BGColor) {
		return nil
	}
	instructions := []string{
		"Reaction time test",
		"",
		fmt.Sprintf("Press %s as fast as you can when the screen changes color.", cfg.TargetKey),
		fmt.Sprintf("%d trials, the first %d are practice.", cfg.NumberOfTrials, cfg.WarmupTrials),
		"",
		"Press any key to begin. Escape aborts.",
	}
	if !DisplayTextScreen(sdlRenderer, font, instructions, cfg.ScreenWidth, cfg.ScreenHeight, cfg.BGColor, cfg.TextColor) {
		return nil
	}

	done := false
	test := NewReactionTest(renderer, clock, cfg.ReactionConfig(), func(results []TrialResult) {
		done = true
	})
	test.SetFixation(cfg.UseFixation)
	test.SetFixationColor(cfg.FixationColor)
	if feedback != nil {
		test.SetFeedback(feedback)
	}
	if trigger != nil {
		test.SetTrigger(trigger)
	}

	test.Start()

	aborted := false
	for test.Running() {
		now := clock.Now()

		for {
			var ev sdl.Event
			if !sdl.PollEvent(&ev) {
				break
			}
			switch ev.Type {
			case sdl.EVENT_QUIT:
				aborted = true
				test.Stop()
			case sdl.EVENT_KEY_DOWN:
				stamp := clock.Now()
				key := ev.KeyboardEvent().Key
				if key == sdl.K_ESCAPE {
					aborted = true
					test.Stop()
				} else {
					test.HandleKey(key.KeyName(), stamp)
				}
			case sdl.EVENT_WINDOW_RESIZED:
				we := ev.WindowEvent()
				renderer.Resize(int(we.Data1), int(we.Data2))
			}
		}

		test.Update(now)
		renderer.Step(now)

		if !cfg.VSync {
			sdl.Delay(1)
		}
	}

	results := test.Results()
	if aborted || !done {
		fmt.Println("\nTest aborted.")
		return nil
	}

	stats := test.Stats()
	fmt.Printf("\n%d valid trials, mean %.1f ms, median %.1f ms, %d missed\n",
		stats.ValidTrials, stats.Mean, stats.Median, stats.MissedTrials)

	summary := []string{
		"Done!",
		"",
		fmt.Sprintf("Valid trials: %d   Missed: %d", stats.ValidTrials, stats.MissedTrials),
		fmt.Sprintf("Mean: %.1f ms   Median: %.1f ms", stats.Mean, stats.Median),
		fmt.Sprintf("Best: %.1f ms   Worst: %.1f ms   SD: %.1f ms", stats.Min, stats.Max, stats.StdDev),
		"",
		"Press any key to exit.",
	}
	if cfg.EndSplash != "" {
		DisplaySplash(sdlRenderer, cfg.EndSplash, cfg.ScreenWidth, cfg.ScreenHeight, cfg.BGColor)
	} else {
		DisplayTextScreen(sdlRenderer, font, summary, cfg.ScreenWidth, cfg.ScreenHeight, cfg.BGColor, cfg.TextColor)
	}

	outputName := TimestampedPath(cfg.OutputFile)
	if err := SaveResults(outputName, results); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	fmt.Printf("Results saved to %s\n", outputName)
	return nil
}
