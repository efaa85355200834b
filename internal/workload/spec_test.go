package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	spec, err := Parse([]byte("seed: 9\nops: 10\n"))
	require.NoError(t, err)

	want := Default()
	want.Seed = 9
	want.Ops = 10
	assert.Equal(t, want, spec)
}

func TestParse_Steps(t *testing.T) {
	data := []byte(`
region: 16
max: 4
min: 2
steps:
  - {op: alloc, size: 3}
  - {op: alloc, size: 2}
  - {op: realloc, size: 4, target: 1}
  - {op: free}
`)
	spec, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 16, spec.Region)
	assert.Equal(t, []Step{
		{Op: OpAlloc, Size: 3},
		{Op: OpAlloc, Size: 2},
		{Op: OpRealloc, Size: 4, Target: 1},
		{Op: OpFree},
	}, spec.Steps)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field": "regoin: 16\n",
		"unknown op":    "steps: [{op: grow, size: 1}]\n",
		"negative ops":  "ops: -1\n",
		"max_request":   "max_request: 0\n",
		"negative size": "steps: [{op: alloc, size: -1}]\n",
		"bad yaml":      "region: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ops: 3\n"), 0o644))

	spec, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, spec.Ops)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGenerate_Deterministic(t *testing.T) {
	spec := Default()
	spec.Ops = 200

	a := Generate(spec)
	b := Generate(spec)
	require.Len(t, a, 200)
	assert.Equal(t, a, b)

	spec.Seed++
	assert.NotEqual(t, a, Generate(spec))
}

func TestGenerate_SizesInRange(t *testing.T) {
	spec := Default()
	spec.MaxRequest = 10
	spec.Ops = 500

	for _, st := range Generate(spec) {
		switch st.Op {
		case OpAlloc, OpRealloc:
			assert.GreaterOrEqual(t, st.Size, 1)
			assert.LessOrEqual(t, st.Size, 10)
		case OpFree:
			assert.Zero(t, st.Size)
		default:
			t.Fatalf("unexpected op %q", st.Op)
		}
	}
}

func TestGenerate_ExplicitStepsCopied(t *testing.T) {
	spec := Default()
	spec.Steps = []Step{{Op: OpAlloc, Size: 1}}

	steps := Generate(spec)
	steps[0].Size = 99
	assert.Equal(t, 1, spec.Steps[0].Size)
}
