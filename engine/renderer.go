package engine

import (
	"fmt"
	"math"
)

// Renderable is a unit of drawable state registered with the renderer.
// IDs are unique across the registry; layers are not.
type Renderable interface {
	ID() string
	Layer() int
	Render(b Backend, rc *RenderContext)
}

// RenderContext is recomputed for every frame and handed to each renderable.
// All times are in milliseconds. StimulusTime is zero until an onset has
// been marked, then counts up from the onset timestamp.
type RenderContext struct {
	Time         float64
	DeltaTime    float64
	StimulusTime float64
	Width        int
	Height       int
	PixelRatio   float64
}

// FrameStats is recomputed over a rolling one-second window. DroppedFrames
// never decreases for the life of a renderer instance.
type FrameStats struct {
	FPS           float64
	FrameTime     float64
	DroppedFrames uint64
	TargetFPS     float64
}

// RendererConfig is supplied once at construction.
type RendererConfig struct {
	Width      int
	Height     int
	TargetFPS  float64
	PixelRatio float64
	ClearColor Color
}

// layerBucket keeps the ids registered on one layer in insertion order.
// Removal tombstones the slot so other entries keep their position; the
// slice compacts once tombstones dominate, keeping mutation O(1) amortized.
type layerBucket struct {
	order []string
	index map[string]int
	dead  int
}

func newLayerBucket() *layerBucket {
	return &layerBucket{index: make(map[string]int)}
}

func (lb *layerBucket) add(id string) {
	lb.index[id] = len(lb.order)
	lb.order = append(lb.order, id)
}

func (lb *layerBucket) remove(id string) {
	i, ok := lb.index[id]
	if !ok {
		return
	}
	delete(lb.index, id)
	lb.order[i] = ""
	lb.dead++
	if lb.dead > len(lb.order)/2 {
		lb.compact()
	}
}

func (lb *layerBucket) compact() {
	kept := lb.order[:0]
	for _, id := range lb.order {
		if id == "" {
			continue
		}
		lb.index[id] = len(kept)
		kept = append(kept, id)
	}
	lb.order = kept
	lb.dead = 0
}

func (lb *layerBucket) empty() bool {
	return len(lb.index) == 0
}

// Renderer owns the backend surface and a registry of renderables grouped
// by draw layer, and runs the self-throttled draw loop. All methods must be
// called from the thread that owns the display; there is no internal
// locking.
type Renderer struct {
	backend Backend
	clock   Clock
	exec    *CommandExecutor

	width      int
	height     int
	pixelRatio float64
	clearColor Color

	targetFPS     float64
	frameInterval float64

	items      map[string]Renderable
	layers     map[int]*layerBucket
	layerOrder []int

	running   bool
	destroyed bool

	firstFrame    bool
	lastFrameTime float64
	stimulusOnset float64

	droppedFrames uint64
	frameCount    int
	windowStart   float64
	fps           float64
	frameTime     float64
}

// NewRenderer constructs a renderer over the given backend. A nil backend
// or clock is fatal; there is no software fallback and construction is
// never retried.
func NewRenderer(backend Backend, clock Clock, cfg RendererConfig) (*Renderer, error) {
	if backend == nil {
		return nil, fmt.Errorf("renderer: no usable backend")
	}
	if clock == nil {
		return nil, fmt.Errorf("renderer: no clock")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("renderer: invalid surface size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}
	return &Renderer{
		backend:       backend,
		clock:         clock,
		exec:          NewCommandExecutor(backend, cfg.Width, cfg.Height),
		width:         cfg.Width,
		height:        cfg.Height,
		pixelRatio:    cfg.PixelRatio,
		clearColor:    cfg.ClearColor,
		targetFPS:     cfg.TargetFPS,
		frameInterval: 1000 / cfg.TargetFPS,
		items:         make(map[string]Renderable),
		layers:        make(map[int]*layerBucket),
	}, nil
}

// Start begins the loop. No-op if already running.
func (r *Renderer) Start() {
	if r.running || r.destroyed {
		return
	}
	r.running = true
	r.firstFrame = true
	r.frameCount = 0
}

// Stop cancels further frames. Idempotent; GPU resources stay alive.
func (r *Renderer) Stop() {
	r.running = false
}

func (r *Renderer) Running() bool {
	return r.running
}

// Resize updates the backing surface dimensions and the viewport
// synchronously.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width = width
	r.height = height
	r.backend.SetViewport(width, height)
	r.exec.setViewport(width, height)
}

// AddRenderable registers a renderable under its id. Re-adding an existing
// id replaces the previous registration.
func (r *Renderer) AddRenderable(item Renderable) {
	id := item.ID()
	if _, ok := r.items[id]; ok {
		r.RemoveRenderable(id)
	}
	r.items[id] = item
	layer := item.Layer()
	lb, ok := r.layers[layer]
	if !ok {
		lb = newLayerBucket()
		r.layers[layer] = lb
		r.insertLayer(layer)
	}
	lb.add(id)
}

func (r *Renderer) insertLayer(layer int) {
	i := 0
	for i < len(r.layerOrder) && r.layerOrder[i] < layer {
		i++
	}
	r.layerOrder = append(r.layerOrder, 0)
	copy(r.layerOrder[i+1:], r.layerOrder[i:])
	r.layerOrder[i] = layer
}

func (r *Renderer) RemoveRenderable(id string) {
	item, ok := r.items[id]
	if !ok {
		return
	}
	delete(r.items, id)
	layer := item.Layer()
	lb := r.layers[layer]
	if lb == nil {
		return
	}
	lb.remove(id)
	if lb.empty() {
		delete(r.layers, layer)
		for i, l := range r.layerOrder {
			if l == layer {
				r.layerOrder = append(r.layerOrder[:i], r.layerOrder[i+1:]...)
				break
			}
		}
	}
}

func (r *Renderer) ClearRenderables() {
	r.items = make(map[string]Renderable)
	r.layers = make(map[int]*layerBucket)
	r.layerOrder = r.layerOrder[:0]
}

// SetClearColor changes the color the frame loop clears to.
func (r *Renderer) SetClearColor(c Color) {
	r.clearColor = c
}

// ExecuteCommand delegates to the command executor.
func (r *Renderer) ExecuteCommand(cmd RenderCommand) error {
	if r.destroyed {
		return nil
	}
	return r.exec.Execute(cmd)
}

// MarkStimulusOnset captures the current high-resolution timestamp as the
// onset reference and returns it. Subsequent render contexts report
// StimulusTime relative to it.
func (r *Renderer) MarkStimulusOnset() float64 {
	r.stimulusOnset = r.clock.Now()
	return r.stimulusOnset
}

// ClearStimulusOnset resets the onset reference; StimulusTime reads zero
// again.
func (r *Renderer) ClearStimulusOnset() {
	r.stimulusOnset = 0
}

func (r *Renderer) StimulusOnset() float64 {
	return r.stimulusOnset
}

// Step runs one refresh-signal invocation at timestamp now. It renders at
// most once per frame interval: refresh signals arriving early are skipped,
// which throttles a faster display down to the target rate without busy
// waiting. Reports whether a frame was rendered.
//
// Renderables that panic during Render are not recovered here; the panic
// propagates to the host loop.
func (r *Renderer) Step(now float64) bool {
	if !r.running || r.destroyed {
		return false
	}
	if r.firstFrame {
		// First frame after Start renders unconditionally and anchors
		// the pacing reference. An explicit flag, because the host
		// clock may legitimately read 0 here.
		r.firstFrame = false
		r.lastFrameTime = now
		r.windowStart = now
		r.renderFrame(now, r.frameInterval)
		return true
	}
	delta := now - r.lastFrameTime
	if delta < r.frameInterval {
		return false
	}
	expected := math.Floor(delta / r.frameInterval)
	if expected > 1 {
		// The loop fell behind by at least one full interval.
		r.droppedFrames += uint64(expected) - 1
	}
	r.renderFrame(now, delta)
	// Drift correction: carry the remainder instead of snapping to now, so
	// timing error does not compound across frames.
	r.lastFrameTime = now - math.Mod(delta, r.frameInterval)
	return true
}

func (r *Renderer) renderFrame(now, delta float64) {
	rc := RenderContext{
		Time:       now,
		DeltaTime:  delta,
		Width:      r.width,
		Height:     r.height,
		PixelRatio: r.pixelRatio,
	}
	if r.stimulusOnset > 0 {
		rc.StimulusTime = now - r.stimulusOnset
	}
	r.backend.Clear(r.clearColor)
	for _, layer := range r.layerOrder {
		lb := r.layers[layer]
		for _, id := range lb.order {
			if id == "" {
				continue
			}
			r.items[id].Render(r.backend, &rc)
		}
	}
	r.backend.Present()

	r.frameCount++
	if elapsed := now - r.windowStart; elapsed >= 1000 {
		r.fps = float64(r.frameCount) * 1000 / elapsed
		r.frameTime = elapsed / float64(r.frameCount)
		r.frameCount = 0
		r.windowStart = now
	}
}

func (r *Renderer) Stats() FrameStats {
	return FrameStats{
		FPS:           r.fps,
		FrameTime:     r.frameTime,
		DroppedFrames: r.droppedFrames,
		TargetFPS:     r.targetFPS,
	}
}

// Backend exposes the raw backend for advanced callers.
func (r *Renderer) Backend() Backend {
	return r.backend
}

// Destroy stops the loop and releases the renderer's own backend resources.
// Renderables keep ownership of their textures; each stimulus releases its
// own GPU state through Cleanup. Safe to call more than once.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.running = false
	r.destroyed = true
	r.backend.Destroy()
}
