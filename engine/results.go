package engine

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"
)

// SaveResults writes the trial results as CSV. Missed trials keep their -1
// sentinel timing fields so the output round-trips the recorded data.
func SaveResults(path string, results []TrialResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"trial", "reaction_ms", "onset_ms", "keypress_ms", "correct", "warmup"})
	for _, r := range results {
		w.Write([]string{
			strconv.Itoa(r.TrialNumber),
			strconv.FormatFloat(r.ReactionTime, 'f', 3, 64),
			strconv.FormatFloat(r.StimulusOnsetTime, 'f', 3, 64),
			strconv.FormatFloat(r.KeyPressTime, 'f', 3, 64),
			strconv.FormatBool(r.Correct),
			strconv.FormatBool(r.IsWarmup),
		})
	}
	return w.Error()
}

// TimestampedPath inserts a run timestamp before the extension so repeated
// runs never clobber earlier results.
func TimestampedPath(path string) string {
	stamp := time.Now().Format("20060102-150405")
	if i := strings.LastIndex(path, "."); i > 0 {
		return path[:i] + "_" + stamp + path[i:]
	}
	return path + "_" + stamp
}
