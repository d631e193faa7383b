package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"
)

// Color is an RGBA color with float components. Values outside [0,1] are
// passed through to the backend unclamped; what the backend does with them
// is its own business.
type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

// RectF is a pixel-space rectangle, origin top-left.
type RectF struct {
	X, Y, W, H float32
}

// Texture is a GPU texture handle. Each stimulus owns the textures it
// creates and must destroy them itself; the renderer never touches them.
type Texture interface {
	// Update replaces the whole texture content. pix is tightly packed
	// RGBA, pitch is bytes per row.
	Update(pix []byte, pitch int) error
	Size() (w, h int)
	Destroy()
}

// Backend abstracts the display surface the renderer draws to. The
// production implementation wraps an SDL renderer; tests use an in-memory
// recording backend.
//
// DrawTriangles takes normalized device coordinates (x,y pairs, three
// vertices per triangle, y up) so the pixel-to-NDC conversion stays in the
// command executor where it can be tested.
type Backend interface {
	Clear(c Color)
	DrawTriangles(ndc []float32, c Color)
	CreateTexture(w, h int) (Texture, error)
	DrawTexture(t Texture, dst RectF)
	SetViewport(w, h int)
	Present()
	Destroy()
}

// Clock provides the high-resolution timestamp, in milliseconds, used for
// frame pacing and stimulus onset. Tests substitute a fake.
type Clock interface {
	Now() float64
}

// TickClock reads SDL's nanosecond tick counter.
type TickClock struct{}

func (TickClock) Now() float64 {
	return float64(sdl.TicksNS()) / 1e6
}

// SDLBackend drives an SDL renderer.
type SDLBackend struct {
	renderer *sdl.Renderer
	width    int
	height   int
}

// NewSDLBackend wraps an existing SDL renderer. A nil renderer is a fatal
// construction error, mirroring a missing GPU context.
func NewSDLBackend(renderer *sdl.Renderer, width, height int) (*SDLBackend, error) {
	if renderer == nil {
		return nil, fmt.Errorf("sdl backend: renderer is nil")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("sdl backend: invalid surface size %dx%d", width, height)
	}
	return &SDLBackend{renderer: renderer, width: width, height: height}, nil
}

func colorByte(v float32) uint8 {
	return uint8(v * 255)
}

func (b *SDLBackend) Clear(c Color) {
	b.renderer.SetDrawColor(colorByte(c.R), colorByte(c.G), colorByte(c.B), colorByte(c.A))
	b.renderer.Clear()
}

func (b *SDLBackend) DrawTriangles(ndc []float32, c Color) {
	fc := sdl.FColor{R: c.R, G: c.G, B: c.B, A: c.A}
	verts := make([]sdl.Vertex, 0, len(ndc)/2)
	for i := 0; i+1 < len(ndc); i += 2 {
		// NDC back to pixel space for SDL's 2D geometry path.
		px := (ndc[i] + 1) / 2 * float32(b.width)
		py := (1 - ndc[i+1]) / 2 * float32(b.height)
		verts = append(verts, sdl.Vertex{
			Position: sdl.FPoint{X: px, Y: py},
			Color:    fc,
		})
	}
	b.renderer.RenderGeometry(nil, verts, nil)
}

type sdlTexture struct {
	tex  *sdl.Texture
	w, h int
}

func (t *sdlTexture) Update(pix []byte, pitch int) error {
	return t.tex.Update(nil, pix, int32(pitch))
}

func (t *sdlTexture) Size() (int, int) { return t.w, t.h }

func (t *sdlTexture) Destroy() {
	if t.tex != nil {
		t.tex.Destroy()
		t.tex = nil
	}
}

func (b *SDLBackend) CreateTexture(w, h int) (Texture, error) {
	tex, err := b.renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, w, h)
	if err != nil {
		return nil, fmt.Errorf("create texture %dx%d: %w", w, h, err)
	}
	// Clamp-to-edge sampling with linear filtering.
	tex.SetScaleMode(sdl.SCALEMODE_LINEAR)
	return &sdlTexture{tex: tex, w: w, h: h}, nil
}

func (b *SDLBackend) DrawTexture(t Texture, dst RectF) {
	st, ok := t.(*sdlTexture)
	if !ok || st.tex == nil {
		return
	}
	r := sdl.FRect{X: dst.X, Y: dst.Y, W: dst.W, H: dst.H}
	b.renderer.RenderTexture(st.tex, nil, &r)
}

func (b *SDLBackend) SetViewport(w, h int) {
	b.width = w
	b.height = h
}

func (b *SDLBackend) Present() {
	b.renderer.Present()
}

// Destroy releases backend-owned state. The SDL renderer itself belongs to
// the window setup code, not to the backend.
func (b *SDLBackend) Destroy() {
	b.renderer = nil
}
