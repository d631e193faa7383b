package engine

import (
	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

func sdlColor(c Color) sdl.Color {
	return sdl.Color{R: clampByte(c.R), G: clampByte(c.G), B: clampByte(c.B), A: clampByte(c.A)}
}

// DisplaySplash shows an image centered on the background color and waits
// for a key press. Reports false when the user quit instead. A missing or
// unloadable image skips the splash.
func DisplaySplash(renderer *sdl.Renderer, filePath string, screenW, screenH int, bg Color) bool {
	if filePath == "" {
		return true
	}
	tex, err := img.LoadTexture(renderer, filePath)
	if err != nil {
		return true
	}
	defer tex.Destroy()

	tw, th, _ := tex.Size()
	dst := sdl.FRect{
		X: (float32(screenW) - tw) / 2,
		Y: (float32(screenH) - th) / 2,
		W: tw,
		H: th,
	}

	c := sdlColor(bg)
	renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	renderer.Clear()
	renderer.RenderTexture(tex, nil, &dst)
	renderer.Present()

	return waitForKey()
}

// DisplayTextScreen renders the lines centered on screen and waits for a
// key press. Used for instructions and the results summary.
func DisplayTextScreen(renderer *sdl.Renderer, font *ttf.Font, lines []string, screenW, screenH int, bg, fg Color) bool {
	if font == nil {
		return true
	}

	c := sdlColor(bg)
	renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	renderer.Clear()

	lineGap := float32(12)
	type rendered struct {
		tex  *sdl.Texture
		w, h float32
	}
	var texs []rendered
	total := float32(0)
	for _, line := range lines {
		if line == "" {
			texs = append(texs, rendered{})
			total += 24 + lineGap
			continue
		}
		surf, err := font.RenderTextBlended(line, sdlColor(fg))
		if err != nil || surf == nil {
			continue
		}
		tex, err := renderer.CreateTextureFromSurface(surf)
		w, h := float32(surf.W), float32(surf.H)
		surf.Destroy()
		if err != nil {
			continue
		}
		texs = append(texs, rendered{tex: tex, w: w, h: h})
		total += h + lineGap
	}

	y := (float32(screenH) - total) / 2
	for _, r := range texs {
		if r.tex == nil {
			y += 24 + lineGap
			continue
		}
		dst := sdl.FRect{X: (float32(screenW) - r.w) / 2, Y: y, W: r.w, H: r.h}
		renderer.RenderTexture(r.tex, nil, &dst)
		y += r.h + lineGap
		r.tex.Destroy()
	}
	renderer.Present()

	return waitForKey()
}

func waitForKey() bool {
	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			return true
		}
		if event.Type == sdl.EVENT_QUIT {
			return false
		}
		if event.Type == sdl.EVENT_KEY_DOWN {
			return true
		}
	}
}
