package netsim

//
// Seedable PRNG and Poisson sampler (§4.D)
//

import (
	cryptorand "crypto/rand"
	"math"
	"math/rand/v2"
	"time"
)

// randomSource is the simulator's single seedable source of
// randomness for loss, corruption, destination choice, and Poisson
// inter-arrival sampling. The zero value is invalid; use
// [newRandomSource].
type randomSource struct {
	rnd *rand.Rand
}

// newRandomSource creates a [randomSource]. When seed is nil, the
// source is seeded non-deterministically; otherwise two simulators
// constructed with the same seed and driving the same topology
// produce byte-identical results (§8 invariant 6).
func newRandomSource(seed *int64) *randomSource {
	var s1, s2 uint64
	if seed != nil {
		s1 = uint64(*seed)
		s2 = uint64(*seed) ^ 0x9E3779B97F4A7C15
	} else {
		s1 = uint64(time.Now().UnixNano())
		s2 = s1 ^ 0x9E3779B97F4A7C15
	}
	return &randomSource{rnd: rand.New(rand.NewPCG(s1, s2))}
}

// float64 returns a pseudo-random number in [0, 1).
func (r *randomSource) float64() float64 {
	return r.rnd.Float64()
}

// intn returns a pseudo-random number in [0, n).
func (r *randomSource) intn(n int) int {
	return r.rnd.IntN(n)
}

// shouldOccur reports whether an event with probability 1/denominator
// occurs this trial. denominator <= 0 means "never" (§4.B absent
// exponent, §4.E step 4/5).
func (r *randomSource) shouldOccur(denominator int64) bool {
	if denominator <= 0 {
		return false
	}
	return r.intn(int(denominator)) == 0
}

// poissonMicros draws from a Poisson distribution with the given mean
// (in microseconds) using Knuth's multiplicative algorithm. For means
// above 64 the mean is halved repeatedly until it is at most 64 (to
// avoid math.Exp underflowing to 0), the sample is drawn at the
// reduced mean, then scaled back up and floored — this preserves the
// mean while avoiding the underflow (§4.D).
func (r *randomSource) poissonMicros(meanMicros int64) int64 {
	lambda := float64(meanMicros)
	mult := 1.0
	for lambda > 64.0 {
		lambda /= 2.0
		mult *= 2.0
	}
	return int64(math.Floor(float64(r.poisson(lambda)) * mult))
}

// poisson draws a single Poisson(mean) sample via Knuth's algorithm.
// Precondition: mean <= 64 (caller-enforced by poissonMicros).
func (r *randomSource) poisson(mean float64) int64 {
	l := math.Exp(-mean)
	var k int64
	p := 1.0
	for {
		k++
		p *= r.float64()
		if p <= l {
			break
		}
	}
	return k - 1
}

// cryptoPayload returns n cryptographically random bytes, used for
// synthetic application-message payloads (§4.F step 2). This is
// deliberately independent of the seeded [randomSource]: payload
// content never affects scheduling decisions or CSV output, so it
// does not need to be reproducible.
func cryptoPayload(n int) []byte {
	buf := make([]byte, n)
	Must1(cryptorand.Read(buf))
	return buf
}
