package fingerprint

import (
	"context"
	"math"
	"testing"

	"scanforge/internal/errs"
)

func TestClassifySeqConstant(t *testing.T) {
	// S8: evenly spaced ISNs (low variance) classify as Constant.
	isns := []uint32{1000, 2000, 3000, 4000}
	seq := classifySeq(isns)

	if seq.GCD != 1000 {
		t.Errorf("expected gcd 1000, got %d", seq.GCD)
	}
	if seq.Predictability != PredictabilityConstant {
		t.Errorf("expected Constant, got %v", seq.Predictability)
	}
	if seq.Samples != 4 {
		t.Errorf("expected 4 samples, got %d", seq.Samples)
	}
}

func TestClassifySeqUnknownBelowTwoSamples(t *testing.T) {
	for _, isns := range [][]uint32{nil, {42}} {
		seq := classifySeq(isns)
		if seq.Predictability != PredictabilityUnknown {
			t.Errorf("expected Unknown for %d samples, got %v", len(isns), seq.Predictability)
		}
	}
}

func TestClassifySeqRandom(t *testing.T) {
	isns := []uint32{10, 4_000_000_000, 500_000, 3_200_000_000, 77}
	seq := classifySeq(isns)
	if seq.Predictability != PredictabilityRandom {
		t.Errorf("expected Random for widely scattered ISNs, got %v", seq.Predictability)
	}
}

func TestCollectClockSkewInsufficientData(t *testing.T) {
	// A non-routable address never replies, so every timestamp sample
	// fails and the collector must surface InsufficientData rather than
	// fabricate a regression from zero points.
	_, err := CollectClockSkew("203.0.113.1", 1, 1)
	if err == nil {
		t.Fatal("expected an error for an unreachable target")
	}
	e, ok := err.(*errs.Error)
	if !ok {
		t.Fatalf("expected *errs.Error, got %T", err)
	}
	if e.Kind != errs.InsufficientData {
		t.Errorf("expected InsufficientData, got %v", e.Kind)
	}
}

func TestFitOLSRecoversKnownSlope(t *testing.T) {
	samples := make([]tsSample, 0, 20)
	for i := 0; i < 20; i++ {
		local := float64(i * 100000)
		samples = append(samples, tsSample{localUs: local, remoteTS: uint32(local * 1.0001)})
	}
	m, _, sigma := fitOLS(samples)

	if math.Abs(m-1.0001) > 1e-6 {
		t.Errorf("expected slope ~1.0001, got %v", m)
	}
	if sigma > 1 {
		t.Errorf("expected near-zero residual for exact-fit samples, got %v", sigma)
	}
}

func TestClassifyClockFrequency(t *testing.T) {
	cases := map[float64]string{
		1000: "Linux HZ=1000 / macOS",
		250:  "Linux HZ=250",
		100:  "Linux HZ=100 / Windows / BSD",
		64:   "legacy Windows",
		7:    "unknown",
	}
	for hz, want := range cases {
		if got := classifyClockFrequency(hz); got != want {
			t.Errorf("classifyClockFrequency(%v) = %q, want %q", hz, got, want)
		}
	}
}

func TestCollectPassiveEmptyInput(t *testing.T) {
	if r := CollectPassive(nil); r != nil {
		t.Errorf("expected nil for no packets, got %+v", r)
	}
}

func TestModeInt(t *testing.T) {
	counts := map[int]int{64: 5, 128: 2, 255: 1}
	if got := modeInt(counts); got != 64 {
		t.Errorf("expected mode 64, got %d", got)
	}
}

func TestPassiveConfidenceClampedToOne(t *testing.T) {
	r := &PassiveFingerprintResult{SampleCount: 100, MostCommonTTL: 64, MostCommonMSS: 1460}
	c := passiveConfidence(r, true)
	if c != 1.0 {
		t.Errorf("expected confidence clamped to 1.0, got %v", c)
	}
}

func TestCollectNoOpenPortsReturnsNilWithoutOtherEvidence(t *testing.T) {
	// With no open ports and an unreachable target, nothing contributes
	// and Collect must report "no fingerprint" rather than an empty shell.
	fp := Collect(context.Background(), "203.0.113.2", nil, true)
	if fp != nil {
		t.Errorf("expected nil fingerprint, got %+v", fp)
	}
}
