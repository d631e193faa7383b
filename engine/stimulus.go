package engine

import (
	"fmt"
	"image"
)

// StimulusState tracks where a stimulus is in its lifecycle. Transitions go
// strictly forward: constructed, preloading, ready, prepared, disposed.
// Skipping a state is an error.
type StimulusState int

const (
	StateConstructed StimulusState = iota
	StatePreloading
	StateReady
	StatePrepared
	StateDisposed
)

func (s StimulusState) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StatePreloading:
		return "preloading"
	case StateReady:
		return "ready"
	case StatePrepared:
		return "prepared"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// ResourceLoader is the slice of the host's resource manager a stimulus
// needs during preload. The engine does not care how it is implemented.
type ResourceLoader interface {
	LoadImage(path string) (*image.RGBA, error)
}

// StimulusConfig carries the surface parameters a stimulus needs when
// allocating GPU resources.
type StimulusConfig struct {
	Width      int
	Height     int
	PixelRatio float64
}

// Stimulus is the capability contract every stimulus kind implements:
// preload external assets, allocate GPU resources, draw once per frame
// while active, release GPU resources. A Stimulus is also a Renderable so
// the renderer can drive it directly.
//
// Prepare must be called exactly once per instance; calling it again
// without an intervening lifecycle reset would leak the GPU handles from
// the first call, so out-of-order calls are rejected.
type Stimulus interface {
	Renderable
	Preload(res ResourceLoader) error
	Prepare(b Backend, cfg StimulusConfig) error
	Cleanup(b Backend)
	State() StimulusState
}

// UpdatePolicy selects how a canvas-backed stimulus refreshes its texture.
type UpdatePolicy int

const (
	// UpdateStatic renders once; the texture is re-uploaded only after
	// Invalidate.
	UpdateStatic UpdatePolicy = iota
	// UpdateDynamic re-renders and re-uploads every frame.
	UpdateDynamic
)

// CanvasStimulus composites a software-rendered 2D surface into a GPU
// texture. The draw callback paints the canvas; uploads always replace the
// whole texture, never a partial region.
type CanvasStimulus struct {
	id     string
	layer  int
	width  int
	height int
	policy UpdatePolicy
	draw   func(*Canvas, *RenderContext)

	state       StimulusState
	canvas      *Canvas
	texture     Texture
	needsUpdate bool
	dst         RectF
}

func NewCanvasStimulus(id string, layer, width, height int, policy UpdatePolicy, draw func(*Canvas, *RenderContext)) *CanvasStimulus {
	return &CanvasStimulus{
		id:     id,
		layer:  layer,
		width:  width,
		height: height,
		policy: policy,
		draw:   draw,
		state:  StateConstructed,
	}
}

func (s *CanvasStimulus) ID() string           { return s.id }
func (s *CanvasStimulus) Layer() int           { return s.layer }
func (s *CanvasStimulus) State() StimulusState { return s.state }

// Preload resolves immediately: a canvas stimulus has no external assets.
func (s *CanvasStimulus) Preload(res ResourceLoader) error {
	if s.state != StateConstructed {
		return fmt.Errorf("stimulus %s: preload in state %s", s.id, s.state)
	}
	// Nothing to fetch: the preloading state resolves immediately.
	s.state = StateReady
	return nil
}

// Prepare allocates the canvas and texture and renders the initial content.
func (s *CanvasStimulus) Prepare(b Backend, cfg StimulusConfig) error {
	if s.state != StateReady {
		return fmt.Errorf("stimulus %s: prepare in state %s", s.id, s.state)
	}
	s.canvas = NewCanvas(s.width, s.height)
	tex, err := b.CreateTexture(s.width, s.height)
	if err != nil {
		return fmt.Errorf("stimulus %s: %w", s.id, err)
	}
	s.texture = tex
	if s.draw != nil {
		s.draw(s.canvas, &RenderContext{Width: cfg.Width, Height: cfg.Height, PixelRatio: cfg.PixelRatio})
	}
	s.upload()
	// Centered in the surface by default.
	s.dst = RectF{
		X: float32(cfg.Width-s.width) / 2,
		Y: float32(cfg.Height-s.height) / 2,
		W: float32(s.width),
		H: float32(s.height),
	}
	s.state = StatePrepared
	return nil
}

// SetDest overrides the default centered placement.
func (s *CanvasStimulus) SetDest(dst RectF) {
	s.dst = dst
}

// Invalidate flags a static stimulus for one re-render and re-upload on the
// next frame.
func (s *CanvasStimulus) Invalidate() {
	s.needsUpdate = true
}

func (s *CanvasStimulus) upload() {
	if s.texture == nil || s.canvas == nil {
		return
	}
	s.texture.Update(s.canvas.Pix(), s.canvas.Pitch())
}

func (s *CanvasStimulus) Render(b Backend, rc *RenderContext) {
	if s.state != StatePrepared {
		return
	}
	switch s.policy {
	case UpdateDynamic:
		if s.draw != nil {
			s.draw(s.canvas, rc)
		}
		s.upload()
	case UpdateStatic:
		if s.needsUpdate {
			if s.draw != nil {
				s.draw(s.canvas, rc)
			}
			s.upload()
			s.needsUpdate = false
		}
	}
	b.DrawTexture(s.texture, s.dst)
}

// Cleanup releases the texture. Safe on a never-prepared stimulus.
func (s *CanvasStimulus) Cleanup(b Backend) {
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	s.canvas = nil
	s.state = StateDisposed
}

// ImageStimulus presents a picture loaded through the resource manager
// during preload.
type ImageStimulus struct {
	id    string
	layer int
	path  string
	scale float32

	state   StimulusState
	img     *image.RGBA
	texture Texture
	dst     RectF
}

func NewImageStimulus(id string, layer int, path string, scale float32) *ImageStimulus {
	if scale <= 0 {
		scale = 1
	}
	return &ImageStimulus{id: id, layer: layer, path: path, scale: scale, state: StateConstructed}
}

func (s *ImageStimulus) ID() string           { return s.id }
func (s *ImageStimulus) Layer() int           { return s.layer }
func (s *ImageStimulus) State() StimulusState { return s.state }

func (s *ImageStimulus) Preload(res ResourceLoader) error {
	if s.state != StateConstructed {
		return fmt.Errorf("stimulus %s: preload in state %s", s.id, s.state)
	}
	s.state = StatePreloading
	img, err := res.LoadImage(s.path)
	if err != nil {
		return fmt.Errorf("stimulus %s: %w", s.id, err)
	}
	s.img = img
	s.state = StateReady
	return nil
}

func (s *ImageStimulus) Prepare(b Backend, cfg StimulusConfig) error {
	if s.state != StateReady {
		return fmt.Errorf("stimulus %s: prepare in state %s", s.id, s.state)
	}
	bounds := s.img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tex, err := b.CreateTexture(w, h)
	if err != nil {
		return fmt.Errorf("stimulus %s: %w", s.id, err)
	}
	s.texture = tex
	s.texture.Update(s.img.Pix, s.img.Stride)
	sw, sh := float32(w)*s.scale, float32(h)*s.scale
	s.dst = RectF{
		X: (float32(cfg.Width) - sw) / 2,
		Y: (float32(cfg.Height) - sh) / 2,
		W: sw,
		H: sh,
	}
	s.state = StatePrepared
	return nil
}

func (s *ImageStimulus) Render(b Backend, rc *RenderContext) {
	if s.state != StatePrepared {
		return
	}
	b.DrawTexture(s.texture, s.dst)
}

func (s *ImageStimulus) Cleanup(b Backend) {
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	s.state = StateDisposed
}
