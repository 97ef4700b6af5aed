package main

//
// Topology JSON-file decoding (§6 schema)
//

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bassosimone/netsim"
)

// loadTopology reads and decodes the topology JSON file at path into a
// [netsim.TopologyRecord]. Decoding belongs to the CLI, not the core
// package, per §1's external-collaborators boundary.
func loadTopology(path string) (*netsim.TopologyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", netsim.ErrConfiguration, err.Error())
	}

	var rec netsim.TopologyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: malformed topology file %s: %s", netsim.ErrConfiguration, path, err.Error())
	}
	return &rec, nil
}
