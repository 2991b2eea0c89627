package features

import (
	"math"
	"testing"

	"VolScan/internal/domain/models"
)

func barsFromCloses(closes ...float64) []models.PriceBar {
	out := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = models.PriceBar{Close: c}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	r := ComputeLogReturns(barsFromCloses(100, 110, 0, 99))
	if len(r) != 3 {
		t.Fatalf("len = %d", len(r))
	}
	if math.Abs(r[0]-math.Log(1.1)) > 1e-12 {
		t.Fatalf("r[0] = %v", r[0])
	}
	if r[1] != 0 || r[2] != 0 {
		t.Fatalf("non-positive closes should yield zero returns: %v", r)
	}
	if ComputeLogReturns(barsFromCloses(100)) != nil {
		t.Fatalf("single bar should yield nil")
	}
}

func TestTrailingStats(t *testing.T) {
	values := []float64{100, 1, 2, 3, 4, 5}
	mean, std, n := TrailingStats(values, 5)
	if n != 5 {
		t.Fatalf("n = %d", n)
	}
	if mean != 3 {
		t.Fatalf("mean = %v", mean)
	}
	// sample variance of 1..5 is 2.5
	if math.Abs(std-math.Sqrt(2.5)) > 1e-12 {
		t.Fatalf("std = %v", std)
	}

	_, _, n = TrailingStats(values, 50)
	if n != len(values) {
		t.Fatalf("oversized window should clamp, n = %d", n)
	}
}

func TestZScoreDegenerate(t *testing.T) {
	if _, ok := ZScore(1, 1, 0); ok {
		t.Fatalf("zero std must not produce a score")
	}
	if _, ok := ZScore(1, 1, math.NaN()); ok {
		t.Fatalf("NaN std must not produce a score")
	}
	z, ok := ZScore(3, 1, 2)
	if !ok || z != 1 {
		t.Fatalf("z = %v ok = %v", z, ok)
	}
}

func TestPercentMove(t *testing.T) {
	if got := PercentMove(100, 105); math.Abs(got-5) > 1e-12 {
		t.Fatalf("got %v", got)
	}
	if got := PercentMove(0, 105); got != 0 {
		t.Fatalf("zero prev should give 0, got %v", got)
	}
}
