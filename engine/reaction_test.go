package engine

import (
	"testing"
)

func newTestReaction(cfg ReactionTestConfig, onComplete func([]TrialResult)) (*ReactionTest, *fakeClock, *Renderer) {
	clock := &fakeClock{t: 10000}
	r := newTestRenderer(newFakeBackend(), clock)
	rt := NewReactionTest(r, clock, cfg, onComplete)
	return rt, clock, r
}

// passForeperiod advances past the longest possible foreperiod so the next
// Update marks stimulus onset at the current clock time.
func passForeperiod(rt *ReactionTest, clock *fakeClock) {
	clock.t += ForeperiodMaxMS
	rt.Update(clock.t)
}

// respondAfter presses the target key the given interval after onset.
func respondAfter(rt *ReactionTest, clock *fakeClock, key string, ms float64) {
	clock.t += ms
	rt.HandleKey(key, clock.t)
}

func passInterTrial(rt *ReactionTest, clock *fakeClock, cfg ReactionTestConfig) {
	clock.t += cfg.InterTrialInterval
	rt.Update(clock.t)
}

func TestReactionTestFullRun(t *testing.T) {
	cfg := ReactionTestConfig{
		StimulusDuration:   1000,
		InterTrialInterval: 500,
		NumberOfTrials:     3,
		WarmupTrials:       1,
		TargetKey:          "Space",
	}
	var completed [][]TrialResult
	rt, clock, r := newTestReaction(cfg, func(results []TrialResult) {
		completed = append(completed, results)
	})

	rt.Start()
	if !rt.Running() || !r.Running() {
		t.Fatal("start should run scheduler and renderer")
	}

	rts := []float64{250, 310, 275}
	for _, want := range rts {
		passForeperiod(rt, clock)
		if r.StimulusOnset() == 0 {
			t.Fatal("onset not marked after foreperiod elapsed")
		}
		respondAfter(rt, clock, "Space", want)
		if r.StimulusOnset() != 0 {
			t.Fatal("onset not reset at trial end")
		}
		passInterTrial(rt, clock, cfg)
	}

	if len(completed) != 1 {
		t.Fatalf("completion callback ran %d times, want exactly 1", len(completed))
	}
	if rt.Running() || r.Running() {
		t.Fatal("test and renderer should be stopped at completion")
	}

	results := completed[0]
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].IsWarmup || results[1].IsWarmup || results[2].IsWarmup {
		t.Fatalf("warmup flags = %v %v %v, want true false false",
			results[0].IsWarmup, results[1].IsWarmup, results[2].IsWarmup)
	}
	for i, want := range rts {
		got := results[i]
		if got.TrialNumber != i || !got.Correct {
			t.Fatalf("result %d = %+v", i, got)
		}
		if got.ReactionTime != want {
			t.Fatalf("trial %d reactionTime = %f, want %f", i, got.ReactionTime, want)
		}
		if got.KeyPressTime-got.StimulusOnsetTime != want {
			t.Fatalf("trial %d timestamps inconsistent: %+v", i, got)
		}
	}

	// Warmup excluded: stats cover 310 and 275 only.
	stats := rt.Stats()
	if stats.ValidTrials != 2 {
		t.Fatalf("validTrials = %d, want 2", stats.ValidTrials)
	}
	if stats.Mean != 292.5 || stats.Min != 275 || stats.Max != 310 {
		t.Fatalf("stats = %+v", stats)
	}
	// Even-length set: upper-middle element, not an averaged midpoint.
	if stats.Median != 310 {
		t.Fatalf("median = %f, want 310 (upper-middle)", stats.Median)
	}
	if stats.MissedTrials != 0 {
		t.Fatalf("missedTrials = %d, want 0", stats.MissedTrials)
	}
}

func TestMissedTrial(t *testing.T) {
	cfg := ReactionTestConfig{
		StimulusDuration:   500,
		InterTrialInterval: 200,
		NumberOfTrials:     1,
		TargetKey:          "Space",
	}
	rt, clock, _ := newTestReaction(cfg, nil)
	rt.Start()

	passForeperiod(rt, clock)
	// No key press: the stimulus timeout fires.
	clock.t += cfg.StimulusDuration
	rt.Update(clock.t)
	passInterTrial(rt, clock, cfg)

	results := rt.Results()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	miss := results[0]
	if miss.Correct || miss.ReactionTime != -1 || miss.KeyPressTime != -1 {
		t.Fatalf("missed result = %+v, want sentinel -1 fields", miss)
	}
	stats := rt.Stats()
	if stats.MissedTrials != 1 || stats.ValidTrials != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestStatsAllMissed(t *testing.T) {
	rt, _, _ := newTestReaction(ReactionTestConfig{NumberOfTrials: 2}, nil)
	rt.results = []TrialResult{
		{TrialNumber: 0, ReactionTime: -1, KeyPressTime: -1},
		{TrialNumber: 1, ReactionTime: -1, KeyPressTime: -1},
	}
	stats := rt.Stats()
	if stats.ValidTrials != 0 {
		t.Fatalf("validTrials = %d, want 0", stats.ValidTrials)
	}
	if stats.Mean != 0 || stats.Median != 0 || stats.StdDev != 0 || stats.Min != 0 || stats.Max != 0 {
		t.Fatalf("timing fields should all be zero: %+v", stats)
	}
	if stats.MissedTrials != 2 {
		t.Fatalf("missedTrials = %d, want 2", stats.MissedTrials)
	}
}

func TestWarmupMissCountsAsMissed(t *testing.T) {
	rt, _, _ := newTestReaction(ReactionTestConfig{NumberOfTrials: 2, WarmupTrials: 1}, nil)
	rt.results = []TrialResult{
		{TrialNumber: 0, ReactionTime: -1, KeyPressTime: -1, IsWarmup: true},
		{TrialNumber: 1, ReactionTime: 300, KeyPressTime: 300, Correct: true},
	}
	stats := rt.Stats()
	if stats.MissedTrials != 1 {
		t.Fatalf("warmup miss not counted: %+v", stats)
	}
	if stats.ValidTrials != 1 || stats.Mean != 300 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestNonTargetKeyIgnored(t *testing.T) {
	cfg := ReactionTestConfig{StimulusDuration: 1000, InterTrialInterval: 100, NumberOfTrials: 1, TargetKey: "Space"}
	rt, clock, _ := newTestReaction(cfg, nil)
	rt.Start()
	passForeperiod(rt, clock)

	respondAfter(rt, clock, "Return", 100)
	if len(rt.Results()) != 0 {
		t.Fatal("non-target key scored a trial")
	}
	respondAfter(rt, clock, "Space", 50)
	results := rt.Results()
	if len(results) != 1 || results[0].ReactionTime != 150 {
		t.Fatalf("results = %+v", results)
	}
}

func TestPrematureKeyIgnored(t *testing.T) {
	cfg := ReactionTestConfig{StimulusDuration: 1000, InterTrialInterval: 100, NumberOfTrials: 1, TargetKey: "Space"}
	rt, clock, _ := newTestReaction(cfg, nil)
	rt.Start()

	// Key press during the foreperiod: no onset is active yet.
	clock.t += 100
	rt.HandleKey("Space", clock.t)
	if len(rt.Results()) != 0 {
		t.Fatalf("premature key press recorded a result: %+v", rt.Results())
	}
}

func TestStopTwiceAndFromCallback(t *testing.T) {
	cfg := ReactionTestConfig{StimulusDuration: 100, InterTrialInterval: 100, NumberOfTrials: 1, TargetKey: "Space"}
	var rt *ReactionTest
	var clock *fakeClock
	rt, clock, _ = newTestReaction(cfg, func([]TrialResult) {
		rt.Stop() // re-entrant stop from the completion callback
	})
	rt.Start()
	passForeperiod(rt, clock)
	respondAfter(rt, clock, "Space", 50)
	passInterTrial(rt, clock, cfg)

	rt.Stop()
	rt.Stop()
	if rt.Running() {
		t.Fatal("still running after stop")
	}
}

func TestStartIsNoOpWhileRunning(t *testing.T) {
	cfg := ReactionTestConfig{StimulusDuration: 100, InterTrialInterval: 100, NumberOfTrials: 2, TargetKey: "Space"}
	rt, clock, _ := newTestReaction(cfg, nil)
	rt.Start()
	passForeperiod(rt, clock)
	respondAfter(rt, clock, "Space", 50)

	rt.Start()
	if len(rt.Results()) != 1 {
		t.Fatal("start while running reset the results")
	}
}

func TestResultsReturnsDefensiveCopy(t *testing.T) {
	cfg := ReactionTestConfig{StimulusDuration: 100, InterTrialInterval: 100, NumberOfTrials: 2, TargetKey: "Space"}
	rt, clock, _ := newTestReaction(cfg, nil)
	rt.Start()
	passForeperiod(rt, clock)
	respondAfter(rt, clock, "Space", 50)

	got := rt.Results()
	got[0].ReactionTime = 9999
	if rt.results[0].ReactionTime == 9999 {
		t.Fatal("Results exposed the live slice")
	}
}

func TestForeperiodBounds(t *testing.T) {
	cfg := ReactionTestConfig{StimulusDuration: 100, InterTrialInterval: 10, NumberOfTrials: 200, TargetKey: "Space"}
	rt, clock, _ := newTestReaction(cfg, nil)
	rt.Start()
	for i := 0; i < 50 && rt.Running(); i++ {
		fp := rt.foreperiodDeadline - clock.t
		if fp < ForeperiodMinMS || fp >= ForeperiodMaxMS {
			t.Fatalf("foreperiod %f outside [%f,%f)", fp, ForeperiodMinMS, ForeperiodMaxMS)
		}
		passForeperiod(rt, clock)
		respondAfter(rt, clock, "Space", 50)
		passInterTrial(rt, clock, cfg)
	}
}
