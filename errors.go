package netsim

//
// Error taxonomy (§7)
//

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates a bad CLI argument, an unknown unit
// suffix, an invalid topology record, or a missing module — reported
// to the caller before any simulation work happens.
var ErrConfiguration = errors.New("netsim: configuration error")

// ErrContractViolation indicates a programming error in a [NodeImpl]
// or in the caller of the [Simulator] API: a handler of the wrong type
// passed to SetHandler, a negative timer delay, an API call outside of
// the node's own callback, or a recursive scheduler call. A lookup of
// a dead timer is reported with [ErrUnknownTimer] instead. The
// simulator run aborts when this happens.
var ErrContractViolation = errors.New("netsim: contract violation")

// ErrNodeHandler wraps a panic raised from inside a user callback. The
// node index that raised it is always present in the error text.
var ErrNodeHandler = errors.New("netsim: node handler failure")

// ErrUnknownTimer indicates that [NodeAPI.TimerData] was called for a
// timer ID that is not currently live.
var ErrUnknownTimer = errors.New("netsim: unknown timer")

// ErrLinkIndexRange indicates that a link index passed to
// [NodeAPI.LinkInfo] is out of range for the calling node.
// [NodeAPI.WritePhysical] reports an out-of-range index by returning
// false with a nil error instead.
var ErrLinkIndexRange = errors.New("netsim: link index out of range")

// errContractf wraps [ErrContractViolation] with a formatted message.
func errContractf(format string, v ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, v...))
}
