package matcher

import (
	"testing"

	"scanforge/internal/fingerprint"
	"scanforge/internal/sigdb"
)

func TestMatchLinuxFingerprintScoresHighConfidence(t *testing.T) {
	// S6: TTL=64, window=29200, DF=true, MSS=1460 — a textbook Linux
	// stack — should match the Linux family at High confidence or above.
	fp := &fingerprint.OsFingerprint{
		Target: "10.0.0.1",
		TCP: &fingerprint.TcpFingerprint{
			InitialTTL: 64,
			WindowSize: 29200,
			MSS:        1460,
			DFFlag:     true,
		},
		ICMP: &fingerprint.IcmpFingerprint{
			EchoReplyTTL:       64,
			PayloadEchoedExact: true,
		},
	}

	db := sigdb.NewBuiltinDatabase()
	results := Match(fp, db, 0)

	if len(results) == 0 {
		t.Fatal("expected at least one match")
	}
	top := results[0]
	if top.OsFamily != "Linux" {
		t.Errorf("expected top match family Linux, got %q (%v)", top.OsFamily, results)
	}
	if top.Confidence < High {
		t.Errorf("expected confidence >= High, got %v (score %v)", top.Confidence, top.Score)
	}
}

func TestMatchReturnsAtMostTopK(t *testing.T) {
	fp := &fingerprint.OsFingerprint{
		TCP: &fingerprint.TcpFingerprint{InitialTTL: 64, WindowSize: 29200, DFFlag: true},
	}
	db := sigdb.NewBuiltinDatabase()
	results := Match(fp, db, 0)
	if len(results) > topK {
		t.Errorf("expected at most %d results, got %d", topK, len(results))
	}
}

func TestMatchFiltersBelowThreshold(t *testing.T) {
	fp := &fingerprint.OsFingerprint{
		TCP: &fingerprint.TcpFingerprint{InitialTTL: 1, WindowSize: 1, DFFlag: false},
	}
	db := sigdb.NewBuiltinDatabase()
	results := Match(fp, db, 0.99)
	if len(results) != 0 {
		t.Errorf("expected no matches above an unreachable threshold, got %d", len(results))
	}
}

func TestMatchNilFingerprintReturnsNoResults(t *testing.T) {
	if r := Match(nil, sigdb.NewBuiltinDatabase(), 0); r != nil {
		t.Errorf("expected nil results for a nil fingerprint, got %v", r)
	}
}

func TestScoreTCPExactTTLMatch(t *testing.T) {
	sig := &sigdb.TcpSignature{TTLMin: 64, TTLMax: 64, WindowMin: 29200, WindowMax: 29200, DFFlag: true}
	fp := &fingerprint.TcpFingerprint{InitialTTL: 64, WindowSize: 29200, DFFlag: true}
	score, matched, mismatched := scoreTCP(fp, sig)
	if score != 1.0 {
		t.Errorf("expected perfect score 1.0, got %v (matched=%v mismatched=%v)", score, matched, mismatched)
	}
}

func TestScoreTCPOffByTenTTLGetsPartialCredit(t *testing.T) {
	sig := &sigdb.TcpSignature{TTLMin: 64, TTLMax: 64, WindowMin: 29200, WindowMax: 29200, DFFlag: true}
	fp := &fingerprint.TcpFingerprint{InitialTTL: 74, WindowSize: 29200, DFFlag: true}
	score, _, _ := scoreTCP(fp, sig)
	if score <= 0 || score >= 1.0 {
		t.Errorf("expected partial credit for TTL off by 10, got %v", score)
	}
}

func TestClassify(t *testing.T) {
	cases := map[float64]ConfidenceClass{
		0.95: Certain,
		0.80: High,
		0.60: Medium,
		0.10: Low,
	}
	for score, want := range cases {
		if got := classify(score); got != want {
			t.Errorf("classify(%v) = %v, want %v", score, got, want)
		}
	}
}
