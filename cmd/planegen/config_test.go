package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	name := filepath.Join(t.TempDir(), "planegen.ini")
	require.NoError(t, os.WriteFile(name, []byte(data), 0644))
	return name
}

func TestReadConfig(t *testing.T) {
	name := writeConfig(t, `
[Generator]
Seed = 42
MaxAngle = 0.25
Neighbours = 7

[Server]
Addr = :9000
`)

	cfg := defaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	apply := bindFlags(fs, &cfg)
	require.NoError(t, fs.Parse([]string{"-n", "3", "-deltaZ", "0.5"}))

	require.NoError(t, readConfig(name, &cfg))
	apply()

	assert.Equal(t, int64(42), cfg.Generator.Seed)
	assert.Equal(t, 0.25, cfg.Generator.MaxAngle)
	assert.Equal(t, 3, cfg.Generator.Neighbours, "flags override the file")
	assert.Equal(t, 0.5, cfg.Generator.DeltaZ)
	assert.Equal(t, -1.0, cfg.Generator.MinZ, "defaults survive")
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.NoError(t, cfg.validate())
}

func TestReadConfig_Invalid(t *testing.T) {
	cfg := defaultConfig()
	assert.Error(t, readConfig(writeConfig(t, "[Generator]\nBogus = 1\n"), &cfg))
	assert.Error(t, readConfig(filepath.Join(t.TempDir(), "missing.ini"), &cfg))

	cfg = defaultConfig()
	cfg.Server.WalkInterval = 0
	assert.Error(t, cfg.validate())

	cfg = defaultConfig()
	cfg.Generator.DeltaAngle = math.NaN()
	assert.Error(t, cfg.validate())

	cfg = defaultConfig()
	cfg.Generator.MaxZ = math.Inf(1)
	assert.Error(t, cfg.validate())
}

func TestPrintFunctions(t *testing.T) {
	cfg := defaultConfig().Generator
	cfg.Neighbours = 4

	var buf bytes.Buffer
	require.NoError(t, printFunctions(&buf, rand.New(rand.NewSource(3)), cfg))

	var res generated
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	require.Len(t, res.Neighbours, 4)

	z := res.Function.Z(0, 0)
	assert.True(t, z >= cfg.MinZ-1e-9 && z <= cfg.MaxZ+1e-9)
	n, _ := res.Function.Params()
	assert.True(t, math.Acos(math.Min(1, n.Z)) <= cfg.MaxAngle+1e-9)
	for _, g := range res.Neighbours {
		assert.InDelta(t, z, g.Z(0, 0), cfg.DeltaZ+1e-9)
	}
}
