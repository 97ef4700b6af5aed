package netsim

import "testing"

func TestLoopbackReceivers(t *testing.T) {
	loop := NewLoopback()
	if recv := loop.Receivers(nil); recv != nil {
		t.Fatalf("expected no receivers before attach, got %v", recv)
	}

	n := &Node{index: 0}
	if err := loop.attach(n); err != nil {
		t.Fatalf("unexpected attach error: %v", err)
	}

	recv := loop.Receivers(n)
	if len(recv) != 1 || recv[0] != n {
		t.Fatalf("expected loopback to return the sender, got %v", recv)
	}
}

func TestLoopbackDoubleAttachFails(t *testing.T) {
	loop := NewLoopback()
	if err := loop.attach(&Node{index: 0}); err != nil {
		t.Fatalf("unexpected error on first attach: %v", err)
	}
	if err := loop.attach(&Node{index: 1}); err == nil {
		t.Fatal("expected the second attach to fail")
	}
}

func TestWANReceiversExcludesSender(t *testing.T) {
	w := NewWAN()
	a := &Node{index: 0}
	b := &Node{index: 1}
	c := &Node{index: 2}
	w.attach(a)
	w.attach(b)
	w.attach(c)

	recv := w.Receivers(a)
	if len(recv) != 2 {
		t.Fatalf("expected 2 receivers, got %d", len(recv))
	}
	for _, n := range recv {
		if n == a {
			t.Fatal("sender should not receive its own WAN frame")
		}
	}
}

func TestProbExponentDenominator(t *testing.T) {
	absent := ProbExponent{}
	if d := absent.Denominator(); d != 0 {
		t.Fatalf("expected an absent ProbExponent to have denominator 0, got %d", d)
	}

	always := ProbExponent{Set: true, K: 0}
	if d := always.Denominator(); d != 1 {
		t.Fatalf("expected K=0 to mean denominator 1, got %d", d)
	}

	oneIn8 := ProbExponent{Set: true, K: 3}
	if d := oneIn8.Denominator(); d != 8 {
		t.Fatalf("expected K=3 to mean denominator 8, got %d", d)
	}
}
