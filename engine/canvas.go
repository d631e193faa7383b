package engine

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is the software 2D surface backing a CanvasStimulus. Pixels are
// tightly packed RGBA, ready for a full texture upload.
type Canvas struct {
	img    *image.RGBA
	width  int
	height int
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
}

func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Pix returns the raw pixel buffer. Pitch is bytes per row.
func (c *Canvas) Pix() []byte { return c.img.Pix }
func (c *Canvas) Pitch() int  { return c.img.Stride }

func clampByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}

func rgba(c Color) color.RGBA {
	return color.RGBA{R: clampByte(c.R), G: clampByte(c.G), B: clampByte(c.B), A: clampByte(c.A)}
}

func (c *Canvas) Clear(col Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(rgba(col)), image.Point{}, draw.Src)
}

func (c *Canvas) FillRect(x, y, w, h int, col Color) {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.img.Bounds())
	draw.Draw(c.img, r, image.NewUniform(rgba(col)), image.Point{}, draw.Src)
}

func (c *Canvas) FillCircle(cx, cy, radius int, col Color) {
	src := rgba(col)
	r2 := radius * radius
	for y := cy - radius; y <= cy+radius; y++ {
		if y < 0 || y >= c.height {
			continue
		}
		dy := y - cy
		for x := cx - radius; x <= cx+radius; x++ {
			if x < 0 || x >= c.width {
				continue
			}
			dx := x - cx
			if dx*dx+dy*dy <= r2 {
				c.img.SetRGBA(x, y, src)
			}
		}
	}
}

// DrawText renders s with the built-in bitmap face, baseline at (x, y).
func (c *Canvas) DrawText(s string, x, y int, col Color) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(rgba(col)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// DrawImage copies src into the canvas at (x, y).
func (c *Canvas) DrawImage(src *image.RGBA, x, y int) {
	b := src.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(c.img, r, src, b.Min, draw.Over)
}
