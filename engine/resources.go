package engine

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	xdraw "golang.org/x/image/draw"
)

// ResourceManager loads and caches stimulus assets from a base directory.
// It satisfies ResourceLoader for stimulus preloading and also carries the
// optional feedback sounds. Cached entries live until Destroy.
type ResourceManager struct {
	baseDir string
	images  map[string]*image.RGBA
	sounds  map[string]*SoundResource
}

func NewResourceManager(baseDir string) *ResourceManager {
	return &ResourceManager{
		baseDir: baseDir,
		images:  make(map[string]*image.RGBA),
		sounds:  make(map[string]*SoundResource),
	}
}

// LoadImage decodes the image at path (relative to the base directory) into
// RGBA pixels, caching the result.
func (m *ResourceManager) LoadImage(path string) (*image.RGBA, error) {
	if img, ok := m.images[path]; ok {
		return img, nil
	}
	f, err := os.Open(filepath.Join(m.baseDir, path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	img := toRGBA(src)
	m.images[path] = img
	return img, nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return dst
}

// ScaledImage returns the image resized to w by h with bilinear filtering.
// Scaled variants are cached separately from the original.
func (m *ResourceManager) ScaledImage(path string, w, h int) (*image.RGBA, error) {
	key := fmt.Sprintf("%s@%dx%d", path, w, h)
	if img, ok := m.images[key]; ok {
		return img, nil
	}
	src, err := m.LoadImage(path)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	m.images[key] = dst
	return dst, nil
}

// LoadSound loads a WAV file and converts it to the mixer's output format.
func (m *ResourceManager) LoadSound(path string) (*SoundResource, error) {
	if snd, ok := m.sounds[path]; ok {
		return snd, nil
	}
	full := filepath.Join(m.baseDir, path)
	spec := &sdl.AudioSpec{}
	data, err := sdl.LoadWAV(full, spec)
	if err != nil {
		return nil, fmt.Errorf("load wav %s: %w", path, err)
	}
	target := mixerSpec()
	if spec.Format != target.Format || spec.Channels != target.Channels || spec.Freq != target.Freq {
		converted, err := sdl.ConvertAudioSamples(spec, data, &target)
		if err != nil {
			return nil, fmt.Errorf("convert wav %s: %w", path, err)
		}
		data = converted
	}
	snd := &SoundResource{Data: data, Spec: target}
	m.sounds[path] = snd
	return snd, nil
}

func (m *ResourceManager) Destroy() {
	m.images = make(map[string]*image.RGBA)
	m.sounds = make(map[string]*SoundResource)
}

// DefaultFontPath finds a usable TTF font, preferring a local fonts
// directory over well-known system locations.
func DefaultFontPath() string {
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".ttf" || ext == ".ttc" {
				return filepath.Join("fonts", entry.Name())
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
