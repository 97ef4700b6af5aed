// Package netsim is a discrete-event simulator for data-link-layer
// network protocols.
//
// The simulator drives a single virtual clock, measured in
// microseconds, and advances it from event to event: there is no
// wall-clock sleeping and no parallelism. Three sources feed the
// clock: per-node Poisson application traffic (see the traffic
// generator in traffic.go), frame deliveries scheduled on [Link]s
// (see [Loopback] and [WAN]), and timers started by node code (see
// [Timer]).
//
// A simulated topology is a set of [Node]s connected by [Link]s. Each
// [Node] wraps a user-supplied protocol implementation that only ever
// observes the simulation through the callback surface in model.go
// ([NodeAPI]): write and read frames, start and stop timers, and
// enable or disable outgoing application traffic. The implementation
// runs inside [Simulator.Run], which repeatedly asks the scheduler
// for the next chronological action and dispatches exactly one
// callback into user code for it. Callbacks are not reentrant: a
// callback that tries to invoke the scheduler is a programming error
// and the simulator panics.
//
// Construct a [Simulator] with [NewSimulator], add [Node]s with
// [Simulator.AddNode], connect them with [Simulator.AddWANLink], boot
// them with [Simulator.Boot], then call [Simulator.Run] until it
// reports the run is over. [Build] does the construction steps from a
// [TopologyRecord]; package cmd/netsim decodes a JSON topology file
// into that record, hands it to [Build], then boots and runs the result.
package netsim
