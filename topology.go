package netsim

//
// Topology construction contract (§4.J, §6)
//

import (
	"fmt"
	"sort"
)

// defaultMessageRateMicros is the fallback inter-application-message
// mean when neither a host nor the topology specifies one (1s).
const defaultMessageRateMicros = 1_000_000

// defaultBandwidthLiteral and defaultPropagationDelayLiteral are §6's
// WAN-link defaults.
const (
	defaultBandwidthLiteral        = "56Kbps"
	defaultPropagationDelayLiteral = "2500ms"
)

// LinkRecord is one entry in a [HostRecord]'s "links" array (§6).
type LinkRecord struct {
	To               string `json:"to"`
	Bandwidth        string `json:"bandwidth,omitempty"`
	PropagationDelay string `json:"propagationdelay,omitempty"`
	ProbFrameCorrupt *uint  `json:"probframecorrupt,omitempty"`
	ProbFrameLoss    *uint  `json:"probframeloss,omitempty"`
}

// HostRecord is one entry in a [TopologyRecord]'s "hosts" array (§6).
type HostRecord struct {
	Name        string       `json:"name,omitempty"`
	MessageRate string       `json:"messagerate,omitempty"`
	Links       []LinkRecord `json:"links,omitempty"`
}

// TopologyRecord is the parsed form of the topology JSON file
// described in §6. cmd/netsim/topologyjson.go decodes the file's raw
// JSON into this struct; [Build] never touches JSON itself, so that
// the core package has no encoding/json dependency (the JSON decoding
// step belongs to the external CLI collaborator per §1).
type TopologyRecord struct {
	Module           string       `json:"module"`
	MessageRate      string       `json:"messagerate,omitempty"`
	Bandwidth        string       `json:"bandwidth,omitempty"`
	PropagationDelay string       `json:"propagationdelay,omitempty"`
	ProbFrameCorrupt *uint        `json:"probframecorrupt,omitempty"`
	ProbFrameLoss    *uint        `json:"probframeloss,omitempty"`
	Hosts            []HostRecord `json:"hosts"`
}

// probExponentFromRecord turns an optional JSON exponent into a
// [ProbExponent], preserving the absent/set distinction (§9).
func probExponentFromRecord(k *uint) ProbExponent {
	if k == nil {
		return ProbExponent{}
	}
	return ProbExponent{Set: true, K: *k}
}

// pairKey canonicalizes an unordered pair of host names (§9): a link
// declared from either end resolves to the same underlying [WAN],
// rather than being keyed on declaration order.
func pairKey(a, b string) string {
	names := []string{a, b}
	sort.Strings(names)
	return names[0] + "\x00" + names[1]
}

// Build constructs a [Simulator] and its nodes and links from rec,
// using factory to construct every node's [NodeImpl] (a topology names
// a single module for the whole run, per §6 — resolving that module
// name to a [NodeFactory] is the CLI's job, not the core's: see
// cmd/netsim/modules.go). simCfg is used as given except that its
// DefaultLossProb/DefaultCorruptProb are overwritten from rec.
func Build(rec *TopologyRecord, factory NodeFactory, simCfg SimulatorConfig) (*Simulator, error) {
	if rec.Module == "" {
		return nil, fmt.Errorf("%w: topology is missing a \"module\" field", ErrConfiguration)
	}

	topologyMessageRate := int64(defaultMessageRateMicros)
	if rec.MessageRate != "" {
		v, err := ParseDuration(rec.MessageRate)
		if err != nil {
			return nil, err
		}
		topologyMessageRate = v
	}

	defaultBandwidth, err := bandwidthOrDefault(rec.Bandwidth, defaultBandwidthLiteral)
	if err != nil {
		return nil, err
	}
	defaultPropDelay, err := durationOrDefault(rec.PropagationDelay, defaultPropagationDelayLiteral)
	if err != nil {
		return nil, err
	}
	defaultLoss := probExponentFromRecord(rec.ProbFrameLoss)
	defaultCorrupt := probExponentFromRecord(rec.ProbFrameCorrupt)

	simCfg.DefaultLossProb = defaultLoss
	simCfg.DefaultCorruptProb = defaultCorrupt
	sim := NewSimulator(simCfg)

	// names[i] is rec.Hosts[i]'s resolved display name, computed once
	// up front so every later lookup (links, duplicate checks) agrees
	// with what was actually used to create the node.
	names := make([]string, len(rec.Hosts))
	nameToIndex := map[string]int{}
	for i, host := range rec.Hosts {
		name := host.Name
		if name == "" {
			name = fmt.Sprintf("Host %d", i+1)
		}
		if _, dup := nameToIndex[name]; dup {
			return nil, fmt.Errorf("%w: duplicate host name %q", ErrConfiguration, name)
		}
		names[i] = name

		rate := topologyMessageRate
		if host.MessageRate != "" {
			v, err := ParseDuration(host.MessageRate)
			if err != nil {
				return nil, err
			}
			rate = v
		}

		index := sim.AddNode(name, rate, factory)
		nameToIndex[name] = index
	}

	if err := buildLinks(sim, rec, names, nameToIndex, defaultBandwidth, defaultPropDelay, defaultLoss, defaultCorrupt); err != nil {
		return nil, err
	}

	return sim, nil
}

// buildLinks implements the two-pass WAN-link construction described
// by the resolved Open Question in SPEC_FULL.md: first collect each
// host's own declared overrides per unordered pair, then create one
// [WAN] per distinct pair with each side's [LinkInfo] built from that
// side's own declaration (or the topology defaults, if that side never
// declared the link itself).
func buildLinks(
	sim *Simulator,
	rec *TopologyRecord,
	names []string,
	nameToIndex map[string]int,
	defaultBandwidth int64,
	defaultPropDelay int64,
	defaultLoss ProbExponent,
	defaultCorrupt ProbExponent,
) error {
	type declaration struct {
		hostName string
		link     LinkRecord
	}
	declByPair := map[string][]declaration{}
	var pairOrder []string
	leftOf := map[string]string{}
	rightOf := map[string]string{}

	for i, host := range rec.Hosts {
		hostName := names[i]
		for _, link := range host.Links {
			if _, ok := nameToIndex[link.To]; !ok {
				return fmt.Errorf("%w: link to unknown host %q", ErrConfiguration, link.To)
			}
			key := pairKey(hostName, link.To)
			if _, seen := declByPair[key]; !seen {
				pairOrder = append(pairOrder, key)
				pair := []string{hostName, link.To}
				sort.Strings(pair)
				leftOf[key] = pair[0]
				rightOf[key] = pair[1]
			}
			declByPair[key] = append(declByPair[key], declaration{hostName: hostName, link: link})
		}
	}

	for _, key := range pairOrder {
		leftName := leftOf[key]
		rightName := rightOf[key]

		base := LinkInfo{Type: LinkWAN, Up: true, BandwidthBitsPerSecond: defaultBandwidth, PropagationDelayMicros: defaultPropDelay, LossProb: defaultLoss, CorruptProb: defaultCorrupt}
		leftInfo := base
		rightInfo := base

		for _, d := range declByPair[key] {
			info, err := applyOverride(base, d.link)
			if err != nil {
				return err
			}
			if d.hostName == leftName {
				leftInfo = info
			} else {
				rightInfo = info
			}
		}

		sim.AddWANLink(nameToIndex[leftName], nameToIndex[rightName], leftInfo, rightInfo)
	}

	return nil
}

// applyOverride returns base with link's per-direction overrides applied.
func applyOverride(base LinkInfo, link LinkRecord) (LinkInfo, error) {
	out := base
	if link.Bandwidth != "" {
		v, err := ParseBandwidth(link.Bandwidth)
		if err != nil {
			return out, err
		}
		out.BandwidthBitsPerSecond = v
	}
	if link.PropagationDelay != "" {
		v, err := ParseDuration(link.PropagationDelay)
		if err != nil {
			return out, err
		}
		out.PropagationDelayMicros = v
	}
	if link.ProbFrameLoss != nil {
		out.LossProb = ProbExponent{Set: true, K: *link.ProbFrameLoss}
	}
	if link.ProbFrameCorrupt != nil {
		out.CorruptProb = ProbExponent{Set: true, K: *link.ProbFrameCorrupt}
	}
	return out, nil
}

func bandwidthOrDefault(s, fallback string) (int64, error) {
	if s == "" {
		s = fallback
	}
	return ParseBandwidth(s)
}

func durationOrDefault(s, fallback string) (int64, error) {
	if s == "" {
		s = fallback
	}
	return ParseDuration(s)
}
