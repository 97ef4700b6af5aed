package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bassosimone/netsim"
	"github.com/stretchr/testify/require"
)

func TestLoadTopologyParsesValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	const body = `{
		"module": "stopandwait",
		"hosts": [
			{"name": "a", "links": [{"to": "b"}]},
			{"name": "b"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	rec, err := loadTopology(path)
	require.NoError(t, err)
	require.Equal(t, "stopandwait", rec.Module)
	require.Len(t, rec.Hosts, 2)
	require.Equal(t, "a", rec.Hosts[0].Name)
	require.Equal(t, "b", rec.Hosts[0].Links[0].To)
}

func TestLoadTopologyMissingFileFails(t *testing.T) {
	_, err := loadTopology(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.Error(t, err)
	require.True(t, errors.Is(err, netsim.ErrConfiguration))
}

func TestLoadTopologyMalformedJSONFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := loadTopology(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, netsim.ErrConfiguration))
}
