// Package confidence derives the 0-100 confidence shown next to a
// solution, either from its feedback history or from a match score.
package confidence

import "math"

// Neutral is the confidence of a solution nobody has rated yet.
const Neutral = 50

// Recalculate returns round(success / (success + failure) * 100), or
// Neutral when there is no feedback. Halves round away from zero. The
// division is done on integers so exact halves such as 29/200 round up.
func Recalculate(success, failure int) int {
	if success < 0 {
		success = 0
	}
	if failure < 0 {
		failure = 0
	}
	total := success + failure
	if total == 0 {
		return Neutral
	}
	return clamp((200*success + total) / (2 * total))
}

// FromScore converts a fuzzy score (0 = identical, 1 = unrelated) into a
// percentage.
func FromScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return clamp(int(math.Round((1 - score) * 100)))
}

// Rated reports whether any feedback has been recorded.
func Rated(success, failure int) bool {
	return success+failure > 0
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
