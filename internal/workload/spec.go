// Package workload describes, generates and replays allocation workloads
// against a SegregatedSlab backed by a real memory region.
package workload

import (
	"bytes"
	"math/rand"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Op is the kind of a workload step.
type Op string

const (
	OpAlloc   Op = "alloc"
	OpFree    Op = "free"
	OpRealloc Op = "realloc"
)

// Step is one operation of a workload.
//
// Target selects a live allocation by position in allocation order, taken
// modulo the number of live allocations. It is ignored for alloc.
type Step struct {
	Op     Op  `yaml:"op"`
	Size   int `yaml:"size,omitempty"`
	Target int `yaml:"target,omitempty"`
}

// Spec describes a workload and the allocator it runs against.
//
// Region, Max and Min are passed to suballoc.Pot. When Steps is empty, Ops
// steps are generated from Seed with request sizes in [1, MaxRequest].
type Spec struct {
	Region     int    `yaml:"region"`
	Max        int    `yaml:"max"`
	Min        int    `yaml:"min"`
	Seed       int64  `yaml:"seed"`
	Ops        int    `yaml:"ops"`
	MaxRequest int    `yaml:"max_request"`
	Steps      []Step `yaml:"steps,omitempty"`
}

// Default returns a 64 KiB region with classes 8 to 256 and 1000 random steps.
func Default() Spec {
	return Spec{
		Region:     1 << 16,
		Max:        256,
		Min:        8,
		Seed:       1,
		Ops:        1000,
		MaxRequest: 256,
	}
}

// Parse decodes a YAML workload. Fields missing from data keep their Default value.
func Parse(data []byte) (Spec, error) {
	spec := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return Spec{}, errors.Wrap(err, "workload: decode")
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Load reads and parses a YAML workload file.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, errors.Wrapf(err, "workload: read %s", path)
	}
	spec, err := Parse(data)
	if err != nil {
		return Spec{}, errors.Wrapf(err, "workload: %s", path)
	}
	return spec, nil
}

// Validate checks the fields that suballoc.Pot does not.
func (s Spec) Validate() error {
	if s.Ops < 0 {
		return errors.Newf("workload: ops %d is negative", s.Ops)
	}
	if len(s.Steps) == 0 && s.MaxRequest <= 0 {
		return errors.Newf("workload: max_request %d must be positive", s.MaxRequest)
	}
	for i, st := range s.Steps {
		switch st.Op {
		case OpAlloc, OpRealloc:
			if st.Size < 0 {
				return errors.Newf("workload: step %d: negative size %d", i, st.Size)
			}
		case OpFree:
		default:
			return errors.Newf("workload: step %d: unknown op %q", i, st.Op)
		}
		if st.Target < 0 {
			return errors.Newf("workload: step %d: negative target %d", i, st.Target)
		}
	}
	return nil
}

// Generate returns the steps of s: a copy of s.Steps when present, otherwise
// s.Ops pseudo-random steps derived from s.Seed. The result depends only on s.
func Generate(s Spec) []Step {
	if len(s.Steps) > 0 {
		return slices.Clone(s.Steps)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	steps := make([]Step, 0, s.Ops)
	for _i := 0; _i < s.Ops; _i++ {
		switch n := rng.Intn(10); {
		case n < 5:
			steps = append(steps, Step{Op: OpAlloc, Size: 1 + rng.Intn(s.MaxRequest)})
		case n < 8:
			steps = append(steps, Step{Op: OpFree, Target: rng.Intn(1 << 20)})
		default:
			steps = append(steps, Step{
				Op:     OpRealloc,
				Size:   1 + rng.Intn(s.MaxRequest),
				Target: rng.Intn(1 << 20),
			})
		}
	}
	return steps
}
