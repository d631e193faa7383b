package engine

import (
	"math"
	"sync"
	"unsafe"

	"github.com/Zyko0/go-sdl3/sdl"
)

const (
	maxVoices         = 8
	audioScratchBytes = 4096
	mixerFreq         = 44100
)

func mixerSpec() sdl.AudioSpec {
	return sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: 2, Freq: mixerFreq}
}

// SoundResource holds decoded samples in the mixer's output format.
type SoundResource struct {
	Data []byte
	Spec sdl.AudioSpec
}

type voice struct {
	sound  *SoundResource
	pos    uint32
	active bool
}

// Mixer feeds the SDL audio stream from a fixed set of voices with
// saturating int16 addition. The callback runs on SDL's audio thread, so
// voice state is the one place in the engine that needs a lock.
type Mixer struct {
	voices  [maxVoices]voice
	mu      sync.Mutex
	scratch []byte
}

func NewMixer() *Mixer {
	return &Mixer{scratch: make([]byte, audioScratchBytes)}
}

func (m *Mixer) Callback(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := remaining
		if chunk > audioScratchBytes {
			chunk = audioScratchBytes
		}
		for i := 0; i < chunk; i++ {
			m.scratch[i] = 0
		}

		m.mu.Lock()
		dst := unsafe.Slice((*int16)(unsafe.Pointer(&m.scratch[0])), chunk/2)
		for i := range m.voices {
			v := &m.voices[i]
			if !v.active {
				continue
			}
			left := uint32(len(v.sound.Data)) - v.pos
			toMix := uint32(chunk)
			if toMix > left {
				toMix = left
			}
			src := unsafe.Slice((*int16)(unsafe.Pointer(&v.sound.Data[v.pos])), toMix/2)
			for j := range src {
				sum := int32(dst[j]) + int32(src[j])
				if sum > 32767 {
					sum = 32767
				} else if sum < -32768 {
					sum = -32768
				}
				dst[j] = int16(sum)
			}
			v.pos += toMix
			if v.pos >= uint32(len(v.sound.Data)) {
				v.active = false
			}
		}
		m.mu.Unlock()

		stream.PutData(m.scratch[:chunk])
		remaining -= chunk
	}
}

// Play starts res on a free voice. Reports false when all voices are busy.
func (m *Mixer) Play(res *SoundResource) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		if !m.voices[i].active {
			m.voices[i] = voice{sound: res, active: true}
			return true
		}
	}
	return false
}

// Tone synthesizes a stereo sine beep with a short attack/release ramp to
// avoid clicks, in the mixer's output format.
func Tone(freqHz float64, durMS int) *SoundResource {
	frames := mixerFreq * durMS / 1000
	ramp := mixerFreq / 100 // 10 ms
	if ramp > frames/2 {
		ramp = frames / 2
	}
	data := make([]byte, frames*4)
	samples := unsafe.Slice((*int16)(unsafe.Pointer(&data[0])), frames*2)
	for i := 0; i < frames; i++ {
		amp := 0.35
		if i < ramp {
			amp *= float64(i) / float64(ramp)
		} else if frames-i < ramp {
			amp *= float64(frames-i) / float64(ramp)
		}
		s := int16(amp * 32767 * math.Sin(2*math.Pi*freqHz*float64(i)/mixerFreq))
		samples[2*i] = s
		samples[2*i+1] = s
	}
	return &SoundResource{Data: data, Spec: mixerSpec()}
}

// FeedbackPlayer plays a short confirmation beep on a scored response and a
// lower buzz on a miss.
type FeedbackPlayer struct {
	mixer *Mixer
	hit   *SoundResource
	miss  *SoundResource
}

func NewFeedbackPlayer(mixer *Mixer) *FeedbackPlayer {
	return &FeedbackPlayer{
		mixer: mixer,
		hit:   Tone(880, 80),
		miss:  Tone(220, 160),
	}
}

// SetSounds overrides the synthesized tones, e.g. with WAV resources.
func (p *FeedbackPlayer) SetSounds(hit, miss *SoundResource) {
	if hit != nil {
		p.hit = hit
	}
	if miss != nil {
		p.miss = miss
	}
}

func (p *FeedbackPlayer) Hit()  { p.mixer.Play(p.hit) }
func (p *FeedbackPlayer) Miss() { p.mixer.Play(p.miss) }
