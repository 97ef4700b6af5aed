package netsim

import (
	"errors"
	"testing"

	"github.com/bassosimone/netsim/internal"
)

func testSimCfg() SimulatorConfig {
	return SimulatorConfig{Logger: &internal.NullLogger{}, Seed: int64Ptr(1)}
}

func TestBuildRejectsMissingModule(t *testing.T) {
	rec := &TopologyRecord{Hosts: []HostRecord{{Name: "a"}}}
	_, err := Build(rec, func(api NodeAPI) NodeImpl { return noopNode{} }, testSimCfg())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestBuildRejectsDuplicateHostNames(t *testing.T) {
	rec := &TopologyRecord{
		Module: "echo",
		Hosts: []HostRecord{
			{Name: "a"},
			{Name: "a"},
		},
	}
	_, err := Build(rec, func(api NodeAPI) NodeImpl { return noopNode{} }, testSimCfg())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a duplicate host name, got %v", err)
	}
}

func TestBuildRejectsUnknownLinkPeer(t *testing.T) {
	rec := &TopologyRecord{
		Module: "echo",
		Hosts: []HostRecord{
			{Name: "a", Links: []LinkRecord{{To: "ghost"}}},
		},
	}
	_, err := Build(rec, func(api NodeAPI) NodeImpl { return noopNode{} }, testSimCfg())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a link to an unknown host, got %v", err)
	}
}

func TestBuildAssignsDefaultHostNames(t *testing.T) {
	rec := &TopologyRecord{
		Module: "echo",
		Hosts:  []HostRecord{{}, {}},
	}
	sim, err := Build(rec, func(api NodeAPI) NodeImpl { return noopNode{} }, testSimCfg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim.nodes[0].name != "Host 1" || sim.nodes[1].name != "Host 2" {
		t.Fatalf("expected default names \"Host 1\"/\"Host 2\", got %q/%q", sim.nodes[0].name, sim.nodes[1].name)
	}
}

func TestBuildAppliesDefaultLinkParameters(t *testing.T) {
	rec := &TopologyRecord{
		Module: "echo",
		Hosts: []HostRecord{
			{Name: "a", Links: []LinkRecord{{To: "b"}}},
			{Name: "b"},
		},
	}
	sim, err := Build(rec, func(api NodeAPI) NodeImpl { return noopNode{} }, testSimCfg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantBandwidth, _ := ParseBandwidth(defaultBandwidthLiteral)
	wantDelay, _ := ParseDuration(defaultPropagationDelayLiteral)

	link := sim.nodes[0].links[1]
	if link.info.BandwidthBitsPerSecond != wantBandwidth {
		t.Fatalf("expected default bandwidth %d, got %d", wantBandwidth, link.info.BandwidthBitsPerSecond)
	}
	if link.info.PropagationDelayMicros != wantDelay {
		t.Fatalf("expected default propagation delay %d, got %d", wantDelay, link.info.PropagationDelayMicros)
	}
}

func TestBuildDedupesLinkDeclaredFromEitherEnd(t *testing.T) {
	one := uint(2)
	rec := &TopologyRecord{
		Module: "echo",
		Hosts: []HostRecord{
			{Name: "a", Links: []LinkRecord{{To: "b", ProbFrameLoss: &one}}},
			{Name: "b", Links: []LinkRecord{{To: "a"}}},
		},
	}
	sim, err := Build(rec, func(api NodeAPI) NodeImpl { return noopNode{} }, testSimCfg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both hosts declare the same pair: it must resolve to a single
	// shared WAN link, not two independent ones.
	if len(sim.nodes[0].links) != 2 || len(sim.nodes[1].links) != 2 {
		t.Fatalf("expected exactly one WAN link per node (plus loopback), got %d/%d",
			len(sim.nodes[0].links), len(sim.nodes[1].links))
	}
	aSide := sim.nodes[0].links[1]
	bSide := sim.nodes[1].links[1]
	if aSide.link != bSide.link {
		t.Fatal("expected both ends to reference the same underlying WAN link")
	}

	// "a"'s own declaration carries the override; "b" never declared
	// its own loss probability for this pair, so it falls back to the
	// topology default (absent).
	if !aSide.info.LossProb.Set || aSide.info.LossProb.K != 2 {
		t.Fatalf("expected a's side to carry the declared override, got %+v", aSide.info.LossProb)
	}
	if bSide.info.LossProb.Set {
		t.Fatalf("expected b's side to fall back to the topology default, got %+v", bSide.info.LossProb)
	}
}

func TestBuildHostMessageRateOverridesTopologyDefault(t *testing.T) {
	rec := &TopologyRecord{
		Module:      "echo",
		MessageRate: "2s",
		Hosts: []HostRecord{
			{Name: "a", MessageRate: "500ms"},
			{Name: "b"},
		},
	}
	sim, err := Build(rec, func(api NodeAPI) NodeImpl { return noopNode{} }, testSimCfg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim.nodes[0].messageRateMicros != 500_000 {
		t.Fatalf("expected host-level override of 500ms, got %d", sim.nodes[0].messageRateMicros)
	}
	if sim.nodes[1].messageRateMicros != 2_000_000 {
		t.Fatalf("expected topology-level default of 2s, got %d", sim.nodes[1].messageRateMicros)
	}
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	if pairKey("a", "b") != pairKey("b", "a") {
		t.Fatal("expected pairKey to be symmetric")
	}
}
