package model

import "testing"

func TestParsePortExprRoundTrip(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"80", "80"},
		{"80,443", "80,443"},
		{"1-5", "1-5"},
		{"1-3,5,7-9", "1-3,5,7-9"},
		{"443,80", "80,443"},  // sorted
		{"80,80,81", "80-81"}, // deduplicated, collapsed into a run
	}
	for _, c := range cases {
		ps, err := ParsePortExpr(c.expr)
		if err != nil {
			t.Fatalf("ParsePortExpr(%q): %v", c.expr, err)
		}
		if got := ps.String(); got != c.want {
			t.Errorf("ParsePortExpr(%q).String() = %q, want %q", c.expr, got, c.want)
		}
	}
}

func TestParsePortExprRejectsInvertedRange(t *testing.T) {
	if _, err := ParsePortExpr("100-50"); err == nil {
		t.Error("expected an error for lo > hi")
	}
}

func TestParsePortExprRejectsEmptyExpression(t *testing.T) {
	if _, err := ParsePortExpr(""); err == nil {
		t.Error("expected an error for an empty expression")
	}
	if _, err := ParsePortExpr("80,,443"); err == nil {
		t.Error("expected an error for an empty item between commas")
	}
}

func TestParsePortExprRejectsOutOfRangeNumbers(t *testing.T) {
	if _, err := ParsePortExpr("0"); err == nil {
		t.Error("expected an error for port 0")
	}
	if _, err := ParsePortExpr("65536"); err == nil {
		t.Error("expected an error for port 65536")
	}
	if _, err := ParsePortExpr("abc"); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestParsePortExprResolvesPresets(t *testing.T) {
	ps, err := ParsePortExpr("web")
	if err != nil {
		t.Fatalf("ParsePortExpr(web): %v", err)
	}
	if len(ps) != len(Presets["web"]) {
		t.Errorf("expected preset web to resolve to %d ports, got %d", len(Presets["web"]), len(ps))
	}
}
