package worm

import "testing"

func TestRandIsDeterministic(t *testing.T) {
	a, b := NewRand(12345), NewRand(12345)
	for i := 0; i < 100; i++ {
		if x, y := a.NextU64(), b.NextU64(); x != y {
			t.Fatalf("step %d: %d != %d", i, x, y)
		}
	}
}

func TestRandZeroSeedStillRuns(t *testing.T) {
	r := NewRand(0)
	if r.NextU64() == 0 && r.NextU64() == 0 {
		t.Fatal("zero seed produced a stuck generator")
	}
}

func TestRandRanges(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		if v := r.Intn(3); v < 0 || v >= 3 {
			t.Fatalf("Intn(3) = %d", v)
		}
		if v := r.Range(2, 4); v < 2 || v > 4 {
			t.Fatalf("Range(2,4) = %d", v)
		}
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("Float64() = %v", v)
		}
	}
	if v := r.Intn(0); v != 0 {
		t.Fatalf("Intn(0) = %d, want 0", v)
	}
	if v := r.Range(5, 5); v != 5 {
		t.Fatalf("Range(5,5) = %d, want 5", v)
	}
}
