package netsim

//
// Time and bandwidth literal parsing (§4.A)
//

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// timeSuffixToMicros maps a recognised time-literal suffix to the
// number of microseconds it denotes. An empty suffix means microseconds.
var timeSuffixToMicros = map[string]int64{
	"":   1,
	"us": 1,
	"ms": 1_000,
	"s":  1_000_000,
	"m":  60 * 1_000_000,
	"h":  3_600 * 1_000_000,
}

// bandwidthSuffixToBitsPerSecond maps a recognised bandwidth-literal
// suffix to the number of bit/s it denotes. An empty suffix means bit/s.
var bandwidthSuffixToBitsPerSecond = map[string]int64{
	"":     1,
	"bps":  1,
	"Kbps": 1 << 10,
	"Mbps": 1 << 20,
	"Gbps": 1 << 30,
}

// literalPattern matches "<digits><optional whitespace><suffix>".
var literalPattern = regexp.MustCompile(`^\s*(\d+)\s*([A-Za-z]*)\s*$`)

// parseLiteral splits s into its numeric and suffix parts.
func parseLiteral(s string) (int64, string, error) {
	m := literalPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", fmt.Errorf("%w: malformed literal %q", ErrConfiguration, s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: malformed literal %q: %s", ErrConfiguration, s, err.Error())
	}
	return n, m[2], nil
}

// ParseDuration parses a time literal such as "500ms" or "10s" into a
// microsecond count. An empty suffix is interpreted as microseconds.
func ParseDuration(s string) (int64, error) {
	n, suffix, err := parseLiteral(s)
	if err != nil {
		return 0, err
	}
	factor, ok := timeSuffixToMicros[suffix]
	if !ok {
		return 0, fmt.Errorf("%w: unknown time suffix %q in %q", ErrConfiguration, suffix, s)
	}
	return n * factor, nil
}

// ParseBandwidth parses a bandwidth literal such as "1Mbps" or "56Kbps"
// into a bit/s count. An empty suffix is interpreted as bit/s.
func ParseBandwidth(s string) (int64, error) {
	n, suffix, err := parseLiteral(s)
	if err != nil {
		return 0, err
	}
	factor, ok := bandwidthSuffixToBitsPerSecond[strings.TrimSpace(suffix)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown bandwidth suffix %q in %q", ErrConfiguration, suffix, s)
	}
	return n * factor, nil
}
