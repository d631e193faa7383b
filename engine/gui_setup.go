package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

type resOption struct {
	W, H  int
	Label string
}

var setupResolutions = []resOption{
	{800, 600, "800x600 (SVGA)"},
	{1024, 768, "1024x768 (XGA)"},
	{1280, 720, "1280x720 (HD)"},
	{1920, 1080, "1920x1080 (FHD)"},
	{2560, 1440, "2560x1440 (QHD)"},
	{3840, 2160, "3840x2160 (4K UHD)"},
}

// RunSetup shows a small mouse-driven configuration window before the test:
// output file, resolution, trial counts and the feature toggles. Reports
// false when the user closed the window instead of starting.
func RunSetup(cfg *Config) bool {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		fmt.Printf("SDL_Init Error: %v\n", err)
		return false
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		fmt.Printf("TTF_Init Error: %v\n", err)
		return false
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("Reaction Test Setup", 640, 720, 0)
	if err != nil {
		fmt.Printf("CreateWindowAndRenderer Error: %v\n", err)
		return false
	}
	defer window.Destroy()
	defer renderer.Destroy()

	fontPath := DefaultFontPath()
	if fontPath == "" {
		fmt.Println("Error: no font found for the setup screen")
		return false
	}
	guiFont, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		fmt.Printf("Failed to load setup font: %v\n", err)
		return false
	}
	defer guiFont.Close()

	ui := setupUI{renderer: renderer, font: guiFont}

	selectedRes := 3
	for i, res := range setupResolutions {
		if cfg.ScreenWidth == res.W && cfg.ScreenHeight == res.H {
			selectedRes = i
			break
		}
	}

	type stepper struct {
		label string
		value *int
		min   int
	}
	steppers := []stepper{
		{"Trials", &cfg.NumberOfTrials, 1},
		{"Warmup trials", &cfg.WarmupTrials, 0},
	}
	type toggle struct {
		label string
		value *bool
	}
	toggles := []toggle{
		{"Show fixation cross", &cfg.UseFixation},
		{"Auditory feedback", &cfg.Feedback},
		{"Fullscreen mode", &cfg.Fullscreen},
	}

	const (
		resY    = 60
		stepY   = 330
		toggleY = 430
		buttonY = 620
		rowH    = 40
		toggleH = 45
		fileY   = 580
	)

	done := false
	start := false
	for !done {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				done = true
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				mx, my := me.X, me.Y

				for i := range setupResolutions {
					if mx >= 40 && mx <= 320 && my >= float32(resY+i*rowH) && my <= float32(resY+i*rowH+25) {
						selectedRes = i
					}
				}
				for i := range steppers {
					y := float32(stepY + i*rowH)
					if my >= y && my <= y+30 {
						if mx >= 260 && mx <= 290 && *steppers[i].value > steppers[i].min {
							*steppers[i].value--
						}
						if mx >= 340 && mx <= 370 {
							*steppers[i].value++
						}
					}
				}
				for i := range toggles {
					y := float32(toggleY + i*toggleH)
					if mx >= 40 && mx <= 320 && my >= y && my <= y+25 {
						*toggles[i].value = !*toggles[i].value
					}
				}
				if mx >= 500 && mx <= 600 && my >= fileY && my <= fileY+30 {
					cb := sdl.NewDialogFileCallback(func(fileList []string, filter int32) {
						if len(fileList) > 0 {
							cfg.OutputFile = fileList[0]
						}
					})
					sdl.ShowSaveFileDialog(cb, window, nil, cfg.OutputFile)
				}
				if mx >= 260 && mx <= 380 && my >= buttonY && my <= buttonY+40 {
					if cfg.WarmupTrials >= cfg.NumberOfTrials {
						cfg.WarmupTrials = cfg.NumberOfTrials - 1
					}
					cfg.ScreenWidth = setupResolutions[selectedRes].W
					cfg.ScreenHeight = setupResolutions[selectedRes].H
					cfg.SaveCache()
					start = true
					done = true
				}
			}
		}

		renderer.SetDrawColor(240, 240, 240, 255)
		renderer.Clear()

		ui.label("Resolution", 40, 25)
		for i, opt := range setupResolutions {
			ui.checkbox(opt.Label, 40, float32(resY+i*rowH), selectedRes == i)
		}
		for i, s := range steppers {
			y := float32(stepY + i*rowH)
			ui.label(s.label, 40, y+5)
			ui.button("-", 260, y, 30, 30)
			ui.label(fmt.Sprintf("%d", *s.value), 305, y+5)
			ui.button("+", 340, y, 30, 30)
		}
		for i, t := range toggles {
			ui.checkbox(t.label, 40, float32(toggleY+i*toggleH), *t.value)
		}
		ui.label("Output: "+cfg.OutputFile, 40, fileY+5)
		ui.button("...", 500, fileY, 100, 30)
		ui.startButton("START", 260, buttonY, 120, 40)

		renderer.Present()
		sdl.Delay(10)
	}

	return start
}

type setupUI struct {
	renderer *sdl.Renderer
	font     *ttf.Font
}

func (u *setupUI) text(s string, x, y float32, c sdl.Color) {
	surf, err := u.font.RenderTextBlended(s, c)
	if err != nil || surf == nil {
		return
	}
	tex, err := u.renderer.CreateTextureFromSurface(surf)
	w, h := float32(surf.W), float32(surf.H)
	surf.Destroy()
	if err != nil {
		return
	}
	r := sdl.FRect{X: x, Y: y, W: w, H: h}
	u.renderer.RenderTexture(tex, nil, &r)
	tex.Destroy()
}

func (u *setupUI) label(s string, x, y float32) {
	u.text(s, x, y, sdl.Color{R: 0, G: 0, B: 0, A: 255})
}

func (u *setupUI) checkbox(label string, x, y float32, checked bool) {
	u.renderer.SetDrawColor(255, 255, 255, 255)
	box := sdl.FRect{X: x, Y: y, W: 20, H: 20}
	u.renderer.RenderFillRect(&box)
	u.renderer.SetDrawColor(0, 0, 0, 255)
	u.renderer.RenderRect(&box)
	if checked {
		mark := sdl.FRect{X: x + 4, Y: y + 4, W: 12, H: 12}
		u.renderer.SetDrawColor(0, 150, 0, 255)
		u.renderer.RenderFillRect(&mark)
	}
	u.label(label, x+30, y)
}

func (u *setupUI) button(label string, x, y, w, h float32) {
	u.renderer.SetDrawColor(200, 200, 200, 255)
	btn := sdl.FRect{X: x, Y: y, W: w, H: h}
	u.renderer.RenderFillRect(&btn)
	u.renderer.SetDrawColor(0, 0, 0, 255)
	u.renderer.RenderRect(&btn)
	u.label(label, x+w/2-5, y+5)
}

func (u *setupUI) startButton(label string, x, y, w, h float32) {
	u.renderer.SetDrawColor(0, 150, 0, 255)
	btn := sdl.FRect{X: x, Y: y, W: w, H: h}
	u.renderer.RenderFillRect(&btn)
	u.text(label, x+w/2-30, y+10, sdl.Color{R: 255, G: 255, B: 255, A: 255})
}
