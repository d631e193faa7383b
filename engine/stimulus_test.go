package engine

import (
	"fmt"
	"image"
	"testing"
)

type fakeLoader struct {
	images map[string]*image.RGBA
}

func (l *fakeLoader) LoadImage(path string) (*image.RGBA, error) {
	img, ok := l.images[path]
	if !ok {
		return nil, fmt.Errorf("no such image %s", path)
	}
	return img, nil
}

func TestCanvasStimulusLifecycle(t *testing.T) {
	b := newFakeBackend()
	s := NewCanvasStimulus("stim", 1, 64, 64, UpdateStatic, nil)

	if s.State() != StateConstructed {
		t.Fatalf("initial state = %s", s.State())
	}
	// Prepare before preload skips a state.
	if err := s.Prepare(b, StimulusConfig{Width: 800, Height: 600}); err == nil {
		t.Fatal("prepare before preload should fail")
	}
	if err := s.Preload(nil); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateReady {
		t.Fatalf("state after preload = %s, want ready", s.State())
	}
	// Preload twice is out of order.
	if err := s.Preload(nil); err == nil {
		t.Fatal("second preload should fail")
	}
	if err := s.Prepare(b, StimulusConfig{Width: 800, Height: 600}); err != nil {
		t.Fatal(err)
	}
	if s.State() != StatePrepared {
		t.Fatalf("state after prepare = %s, want prepared", s.State())
	}
	// A second prepare would leak the texture from the first.
	if err := s.Prepare(b, StimulusConfig{Width: 800, Height: 600}); err == nil {
		t.Fatal("second prepare should fail")
	}
	if len(b.textures) != 1 {
		t.Fatalf("allocated %d textures, want 1", len(b.textures))
	}

	s.Cleanup(b)
	if s.State() != StateDisposed {
		t.Fatalf("state after cleanup = %s, want disposed", s.State())
	}
	if b.textures[0].destroyed != 1 {
		t.Fatalf("texture destroyed %d times, want 1", b.textures[0].destroyed)
	}
}

func TestCleanupOnNeverPreparedStimulus(t *testing.T) {
	s := NewCanvasStimulus("stim", 0, 32, 32, UpdateStatic, nil)
	// Must be a no-op, not a crash.
	s.Cleanup(newFakeBackend())
	if s.State() != StateDisposed {
		t.Fatalf("state = %s, want disposed", s.State())
	}
}

func TestStaticUpdatePolicy(t *testing.T) {
	b := newFakeBackend()
	s := NewCanvasStimulus("stim", 0, 32, 32, UpdateStatic, func(c *Canvas, rc *RenderContext) {
		c.Clear(Color{R: 1, A: 1})
	})
	s.Preload(nil)
	if err := s.Prepare(b, StimulusConfig{Width: 800, Height: 600}); err != nil {
		t.Fatal(err)
	}
	tex := b.textures[0]
	if tex.uploads != 1 {
		t.Fatalf("uploads after prepare = %d, want 1 (initial content)", tex.uploads)
	}

	rc := &RenderContext{Width: 800, Height: 600}
	s.Render(b, rc)
	s.Render(b, rc)
	if tex.uploads != 1 {
		t.Fatalf("static stimulus re-uploaded without invalidation: %d uploads", tex.uploads)
	}

	s.Invalidate()
	s.Render(b, rc)
	if tex.uploads != 2 {
		t.Fatalf("uploads after invalidate+render = %d, want 2", tex.uploads)
	}
	s.Render(b, rc)
	if tex.uploads != 2 {
		t.Fatalf("invalidation should be one-shot, got %d uploads", tex.uploads)
	}
}

func TestDynamicUpdatePolicy(t *testing.T) {
	b := newFakeBackend()
	calls := 0
	s := NewCanvasStimulus("stim", 0, 32, 32, UpdateDynamic, func(c *Canvas, rc *RenderContext) {
		calls++
	})
	s.Preload(nil)
	if err := s.Prepare(b, StimulusConfig{Width: 800, Height: 600}); err != nil {
		t.Fatal(err)
	}
	tex := b.textures[0]

	rc := &RenderContext{Width: 800, Height: 600}
	s.Render(b, rc)
	s.Render(b, rc)
	s.Render(b, rc)
	// One upload from prepare plus one per frame.
	if tex.uploads != 4 {
		t.Fatalf("uploads = %d, want 4", tex.uploads)
	}
	if calls != 4 {
		t.Fatalf("draw callback ran %d times, want 4", calls)
	}
}

func TestPrepareTextureFailure(t *testing.T) {
	b := newFakeBackend()
	b.failTex = true
	s := NewCanvasStimulus("stim", 0, 32, 32, UpdateStatic, nil)
	s.Preload(nil)
	if err := s.Prepare(b, StimulusConfig{Width: 800, Height: 600}); err == nil {
		t.Fatal("expected prepare to surface texture creation failure")
	}
}

func TestImageStimulusPreload(t *testing.T) {
	b := newFakeBackend()
	loader := &fakeLoader{images: map[string]*image.RGBA{
		"probe.png": image.NewRGBA(image.Rect(0, 0, 10, 20)),
	}}

	s := NewImageStimulus("img", 1, "probe.png", 2)
	if err := s.Preload(loader); err != nil {
		t.Fatal(err)
	}
	if err := s.Prepare(b, StimulusConfig{Width: 800, Height: 600}); err != nil {
		t.Fatal(err)
	}
	if len(b.textures) != 1 || b.textures[0].w != 10 || b.textures[0].h != 20 {
		t.Fatalf("texture = %+v, want 10x20", b.textures)
	}
	// Scale 2 centers a 20x40 rect.
	if s.dst.W != 20 || s.dst.H != 40 || s.dst.X != 390 || s.dst.Y != 280 {
		t.Fatalf("dst = %+v", s.dst)
	}

	missing := NewImageStimulus("img2", 1, "absent.png", 1)
	if err := missing.Preload(loader); err == nil {
		t.Fatal("expected preload failure for missing asset")
	}
}
