package engine

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// Foreperiod bounds: uniformly random delay in [ForeperiodMinMS,
// ForeperiodMaxMS) between trial start and stimulus onset.
const (
	ForeperiodMinMS = 1000.0
	ForeperiodMaxMS = 3000.0
)

// ReactionTestConfig is supplied once at construction and immutable for the
// test's lifetime. Durations are in milliseconds.
type ReactionTestConfig struct {
	StimulusDuration   float64
	InterTrialInterval float64
	NumberOfTrials     int
	WarmupTrials       int
	TargetKey          string
	StimulusColor      Color
	BackgroundColor    Color
}

// TrialResult is appended exactly once per trial. A missed trial carries -1
// in ReactionTime and KeyPressTime.
type TrialResult struct {
	TrialNumber       int     `json:"trialNumber"`
	ReactionTime      float64 `json:"reactionTime"`
	StimulusOnsetTime float64 `json:"stimulusOnsetTime"`
	KeyPressTime      float64 `json:"keyPressTime"`
	Correct           bool    `json:"correct"`
	IsWarmup          bool    `json:"isWarmup"`
}

// ReactionTestStats aggregates the non-warmup, successfully-responded
// trials. MissedTrials counts every incorrect trial, warmup included.
type ReactionTestStats struct {
	ValidTrials  int     `json:"validTrials"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"stdDev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	MissedTrials int     `json:"missedTrials"`
}

type trialPhase int

const (
	phaseIdle trialPhase = iota
	phaseForeperiod
	phaseStimulus
	phaseInterTrial
)

// Renderable ids and layers used by the scheduler. The fixation cross sits
// below the stimulus fill.
const (
	fixationID    = "reaction-fixation"
	stimulusID    = "reaction-stimulus"
	fixationLayer = 0
	stimulusLayer = 1
)

// ReactionTest drives a sequence of simple reaction-time trials through the
// renderer: randomized foreperiod, stimulus onset, qualifying key press or
// timeout, inter-trial interval. Timers are deadline slots checked on every
// Update; a zero deadline means the timer is unarmed, so cancellation is a
// single assignment and an already-fired timer cannot be cleared twice.
type ReactionTest struct {
	cfg      ReactionTestConfig
	renderer *Renderer
	clock    Clock
	rng      *rand.Rand

	onComplete    func([]TrialResult)
	trigger       *TriggerBox
	feedback      *FeedbackPlayer
	fixation      bool
	fixationColor Color

	running   bool
	listening bool
	phase     trialPhase
	trial     int
	results   []TrialResult

	foreperiodDeadline float64
	stimulusDeadline   float64
	interTrialDeadline float64
	onsetTime          float64
}

// NewReactionTest wires a scheduler to a renderer. onComplete may be nil.
func NewReactionTest(renderer *Renderer, clock Clock, cfg ReactionTestConfig, onComplete func([]TrialResult)) *ReactionTest {
	if cfg.TargetKey == "" {
		cfg.TargetKey = "Space"
	}
	return &ReactionTest{
		cfg:           cfg,
		renderer:      renderer,
		clock:         clock,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		onComplete:    onComplete,
		fixation:      true,
		fixationColor: Color{R: 1, G: 1, B: 1, A: 1},
	}
}

// SetTrigger attaches an optional hardware trigger box, pulsed at stimulus
// onset so external equipment can validate latencies.
func (t *ReactionTest) SetTrigger(tb *TriggerBox) { t.trigger = tb }

// SetFeedback attaches optional auditory feedback for responses and misses.
func (t *ReactionTest) SetFeedback(fp *FeedbackPlayer) { t.feedback = fp }

// SetFixation toggles the fixation cross shown between stimuli.
func (t *ReactionTest) SetFixation(on bool) { t.fixation = on }

func (t *ReactionTest) SetFixationColor(c Color) { t.fixationColor = c }

func (t *ReactionTest) Running() bool { return t.running }

// Start resets results and the trial counter, attaches key handling, starts
// the renderer and begins trial zero. No-op if already running.
func (t *ReactionTest) Start() {
	if t.running {
		return
	}
	t.running = true
	t.listening = true
	t.trial = 0
	t.results = t.results[:0]
	t.renderer.SetClearColor(t.cfg.BackgroundColor)
	t.renderer.Start()
	if t.fixation {
		t.renderer.AddRenderable(&fixationCross{color: t.fixationColor})
	}
	t.beginTrial(t.clock.Now())
}

// Stop halts the run: flips the running flag, clears all timer slots,
// detaches key handling and stops the renderer. Safe to call repeatedly and
// from within the completion callback.
func (t *ReactionTest) Stop() {
	t.running = false
	t.foreperiodDeadline = 0
	t.stimulusDeadline = 0
	t.interTrialDeadline = 0
	if t.listening {
		t.listening = false
	}
	t.hideStimulus()
	t.renderer.RemoveRenderable(fixationID)
	t.renderer.Stop()
}

func (t *ReactionTest) beginTrial(now float64) {
	t.phase = phaseForeperiod
	t.foreperiodDeadline = now + ForeperiodMinMS + t.rng.Float64()*(ForeperiodMaxMS-ForeperiodMinMS)
}

func (t *ReactionTest) showStimulus() {
	t.renderer.AddRenderable(&fillRenderable{id: stimulusID, layer: stimulusLayer, color: t.cfg.StimulusColor})
	t.onsetTime = t.renderer.MarkStimulusOnset()
	if t.trigger != nil {
		t.trigger.Set("1")
	}
}

func (t *ReactionTest) hideStimulus() {
	t.renderer.RemoveRenderable(stimulusID)
	t.renderer.ClearStimulusOnset()
	if t.trigger != nil {
		t.trigger.Unset("1")
	}
}

// Update advances the state machine to timestamp now. The host loop calls
// it once per refresh, before the renderer step, so end-of-trial bookkeeping
// for trial N always lands before trial N+1's foreperiod is armed.
func (t *ReactionTest) Update(now float64) {
	if !t.running {
		return
	}
	switch t.phase {
	case phaseForeperiod:
		if t.foreperiodDeadline > 0 && now >= t.foreperiodDeadline {
			t.foreperiodDeadline = 0
			t.phase = phaseStimulus
			t.showStimulus()
			t.stimulusDeadline = t.onsetTime + t.cfg.StimulusDuration
		}
	case phaseStimulus:
		if t.stimulusDeadline > 0 && now >= t.stimulusDeadline {
			t.stimulusDeadline = 0
			t.results = append(t.results, TrialResult{
				TrialNumber:       t.trial,
				ReactionTime:      -1,
				StimulusOnsetTime: t.onsetTime,
				KeyPressTime:      -1,
				Correct:           false,
				IsWarmup:          t.trial < t.cfg.WarmupTrials,
			})
			if t.feedback != nil {
				t.feedback.Miss()
			}
			t.endTrial(now)
		}
	case phaseInterTrial:
		if t.interTrialDeadline > 0 && now >= t.interTrialDeadline {
			t.interTrialDeadline = 0
			if t.trial >= t.cfg.NumberOfTrials {
				t.complete()
			} else {
				t.beginTrial(now)
			}
		}
	}
}

// HandleKey feeds one key press with its high-resolution timestamp. Only a
// press of the target key while a stimulus onset is active scores the
// trial; anything else is ignored.
func (t *ReactionTest) HandleKey(key string, now float64) {
	if !t.running || !t.listening || key != t.cfg.TargetKey {
		return
	}
	if t.phase != phaseStimulus || t.onsetTime == 0 {
		return
	}
	t.stimulusDeadline = 0
	t.results = append(t.results, TrialResult{
		TrialNumber:       t.trial,
		ReactionTime:      now - t.onsetTime,
		StimulusOnsetTime: t.onsetTime,
		KeyPressTime:      now,
		Correct:           true,
		IsWarmup:          t.trial < t.cfg.WarmupTrials,
	})
	if t.feedback != nil {
		t.feedback.Hit()
	}
	t.endTrial(now)
}

func (t *ReactionTest) endTrial(now float64) {
	t.hideStimulus()
	t.onsetTime = 0
	t.trial++
	t.phase = phaseInterTrial
	t.interTrialDeadline = now + t.cfg.InterTrialInterval
}

func (t *ReactionTest) complete() {
	t.Stop()
	t.phase = phaseIdle
	if t.onComplete != nil {
		t.onComplete(t.Results())
	}
}

// Results returns a defensive copy of the trial results recorded so far.
func (t *ReactionTest) Results() []TrialResult {
	out := make([]TrialResult, len(t.results))
	copy(out, t.results)
	return out
}

// Stats aggregates reaction times over non-warmup trials that were answered
// correctly. With an even number of samples the median is the upper-middle
// element after sorting, not an averaged midpoint.
func (t *ReactionTest) Stats() ReactionTestStats {
	var times []float64
	missed := 0
	for _, r := range t.results {
		if !r.Correct {
			missed++
			continue
		}
		if r.IsWarmup {
			continue
		}
		times = append(times, r.ReactionTime)
	}
	stats := ReactionTestStats{MissedTrials: missed}
	if len(times) == 0 {
		return stats
	}
	sort.Float64s(times)
	sum := 0.0
	for _, v := range times {
		sum += v
	}
	n := float64(len(times))
	mean := sum / n
	variance := 0.0
	for _, v := range times {
		d := v - mean
		variance += d * d
	}
	stats.ValidTrials = len(times)
	stats.Mean = mean
	stats.Median = times[len(times)/2]
	stats.StdDev = math.Sqrt(variance / n)
	stats.Min = times[0]
	stats.Max = times[len(times)-1]
	return stats
}

// fillRenderable paints the whole viewport in one color. The scheduler uses
// it as the visual stimulus.
type fillRenderable struct {
	id    string
	layer int
	color Color
}

func (f *fillRenderable) ID() string { return f.id }
func (f *fillRenderable) Layer() int { return f.layer }

func (f *fillRenderable) Render(b Backend, rc *RenderContext) {
	fullscreenQuad(b, f.color)
}

const crossArmPx = 20

// fixationCross draws a centered cross from two thin quads.
type fixationCross struct {
	color Color
}

func (f *fixationCross) ID() string { return fixationID }
func (f *fixationCross) Layer() int { return fixationLayer }

func (f *fixationCross) Render(b Backend, rc *RenderContext) {
	w, h := float32(rc.Width), float32(rc.Height)
	if w == 0 || h == 0 {
		return
	}
	arm := float32(crossArmPx)
	thick := float32(2)
	quad := func(x, y, qw, qh float32) {
		x0 := x/w*2 - 1
		x1 := (x+qw)/w*2 - 1
		y0 := 1 - y/h*2
		y1 := 1 - (y+qh)/h*2
		b.DrawTriangles([]float32{
			x0, y0, x1, y0, x0, y1,
			x1, y0, x1, y1, x0, y1,
		}, f.color)
	}
	quad(w/2-arm, h/2-thick/2, 2*arm, thick)
	quad(w/2-thick/2, h/2-arm, thick, 2*arm)
}
