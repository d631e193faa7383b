package engine

// In-memory test doubles: a recording backend and a manual clock, so the
// pacing and scheduling logic runs without a display.

type drawCall struct {
	ndc   []float32
	color Color
}

type fakeTexture struct {
	w, h      int
	uploads   int
	destroyed int
}

func (t *fakeTexture) Update(pix []byte, pitch int) error {
	t.uploads++
	return nil
}

func (t *fakeTexture) Size() (int, int) { return t.w, t.h }
func (t *fakeTexture) Destroy()         { t.destroyed++ }

type fakeBackend struct {
	clears    []Color
	draws     []drawCall
	presents  int
	textures  []*fakeTexture
	viewportW int
	viewportH int
	destroyed int
	failTex   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{viewportW: 800, viewportH: 600}
}

func (b *fakeBackend) Clear(c Color) {
	b.clears = append(b.clears, c)
}

func (b *fakeBackend) DrawTriangles(ndc []float32, c Color) {
	cp := make([]float32, len(ndc))
	copy(cp, ndc)
	b.draws = append(b.draws, drawCall{ndc: cp, color: c})
}

func (b *fakeBackend) CreateTexture(w, h int) (Texture, error) {
	if b.failTex {
		return nil, errTexture
	}
	t := &fakeTexture{w: w, h: h}
	b.textures = append(b.textures, t)
	return t, nil
}

func (b *fakeBackend) DrawTexture(t Texture, dst RectF) {}

func (b *fakeBackend) SetViewport(w, h int) {
	b.viewportW = w
	b.viewportH = h
}

func (b *fakeBackend) Present() { b.presents++ }
func (b *fakeBackend) Destroy() { b.destroyed++ }

type fakeClock struct {
	t float64
}

func (c *fakeClock) Now() float64 { return c.t }

type testError string

func (e testError) Error() string { return string(e) }

const errTexture = testError("texture creation failed")

// orderRenderable appends its id to a shared log when rendered.
type orderRenderable struct {
	id    string
	layer int
	log   *[]string
}

func (r *orderRenderable) ID() string { return r.id }
func (r *orderRenderable) Layer() int { return r.layer }

func (r *orderRenderable) Render(b Backend, rc *RenderContext) {
	*r.log = append(*r.log, r.id)
}

func newTestRenderer(b Backend, c Clock) *Renderer {
	r, err := NewRenderer(b, c, RendererConfig{Width: 800, Height: 600, TargetFPS: 60})
	if err != nil {
		panic(err)
	}
	return r
}
