package discovery

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPProberDetectsOpenPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:80")
	if err != nil {
		t.Skipf("cannot bind :80 in this environment: %v", err)
	}
	defer ln.Close()

	p := NewTCPProber()
	res, err := p.Probe(context.Background(), "127.0.0.1", 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !res.Alive {
		t.Fatal("expected alive=true for a host with an open probe port")
	}
}

func TestDiscoverOneFallsBackWhenUnavailable(t *testing.T) {
	res := DiscoverOne(context.Background(), "127.0.0.1", MethodARP, 200*time.Millisecond, 0)
	if res.Method == MethodARP {
		t.Fatalf("expected a fallback method, got %q", res.Method)
	}
}

func TestDiscoverManyPreservesOrder(t *testing.T) {
	targets := []string{"127.0.0.1", "127.0.0.2", "127.0.0.3"}
	results := DiscoverMany(context.Background(), targets, MethodTCP, 200*time.Millisecond, 0, 2)
	if len(results) != len(targets) {
		t.Fatalf("got %d results, want %d", len(results), len(targets))
	}
	for i, r := range results {
		if r.Target != targets[i] {
			t.Fatalf("result[%d].Target = %q, want %q", i, r.Target, targets[i])
		}
	}
}
