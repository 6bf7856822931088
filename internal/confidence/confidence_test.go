package confidence

import "testing"

func TestRecalculate(t *testing.T) {
	tests := []struct {
		name             string
		success, failure int
		want             int
	}{
		{"no feedback", 0, 0, 50},
		{"all success", 4, 0, 100},
		{"all failure", 0, 3, 0},
		{"two thirds", 2, 1, 67},
		{"one third", 1, 2, 33},
		{"half", 1, 1, 50},
		{"rounds half up", 1, 7, 13},            // 12.5
		{"seven eighths", 7, 1, 88},             // 87.5
		{"exact half below float", 29, 171, 15}, // 14.5
		{"three eighths", 3, 5, 38},             // 37.5
		{"negative counts ignored", -3, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recalculate(tt.success, tt.failure); got != tt.want {
				t.Errorf("Recalculate(%d, %d) = %d, want %d", tt.success, tt.failure, got, tt.want)
			}
		})
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	first := Recalculate(5, 3)
	second := Recalculate(5, 3)
	if first != second {
		t.Fatalf("Recalculate not stable: %d vs %d", first, second)
	}
}

func TestRecalculateBounds(t *testing.T) {
	for s := 0; s < 20; s++ {
		for f := 0; f < 20; f++ {
			got := Recalculate(s, f)
			if got < 0 || got > 100 {
				t.Fatalf("Recalculate(%d, %d) = %d out of range", s, f, got)
			}
		}
	}
}

func TestFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0, 100},
		{0.1, 90},
		{0.25, 75},
		{0.4, 60},
		{1, 0},
		{1.5, 0},
		{-0.2, 100},
	}
	for _, tt := range tests {
		if got := FromScore(tt.score); got != tt.want {
			t.Errorf("FromScore(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestRated(t *testing.T) {
	if Rated(0, 0) {
		t.Error("expected unrated for zero counts")
	}
	if !Rated(0, 1) {
		t.Error("expected rated with a failure")
	}
}
