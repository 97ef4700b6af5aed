package main

//
// Module dispatch table: maps a topology's "module" string to a
// netsim.NodeFactory (§4.J). Go has no dynamic import by file path,
// so the table is a static registry populated at build time.
//

import (
	"fmt"

	"github.com/bassosimone/netsim"
	"github.com/bassosimone/netsim/protocols/stopandwait"
)

var moduleRegistry = map[string]netsim.NodeFactory{
	"stopandwait": stopandwait.New,
}

// resolveModule looks up name in the module registry.
func resolveModule(name string) (netsim.NodeFactory, error) {
	factory, ok := moduleRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown module %q", netsim.ErrConfiguration, name)
	}
	return factory, nil
}
