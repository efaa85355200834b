package workload

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/internal/region"
	"github.com/joshuapare/slabkit/mem"
	"github.com/joshuapare/slabkit/suballoc"
)

// ErrCorrupted is returned when a live allocation no longer holds the pattern
// written into it.
var ErrCorrupted = errors.New("workload: payload corrupted")

// handle is a live allocation and the byte it was filled with.
type handle struct {
	rng mem.RangeOf[byte]
	tag byte
}

// Runner replays a workload against a SegregatedSlab over a mapped region.
//
// Every allocation is filled with a tag byte. Moving reallocations copy the
// payload with mem.CopyWithin, and every free or reallocate first checks that
// the payload is intact.
type Runner struct {
	spec     Spec
	validate bool

	alloc  *suballoc.SegregatedSlab[byte]
	region *region.Region
	memory []byte

	live    []handle // allocation order
	nextTag byte
}

// Option configures a Runner.
type Option func(*Runner)

// WithValidation runs SegregatedSlab.Validate after every step.
func WithValidation(enabled bool) Option {
	return func(r *Runner) { r.validate = enabled }
}

// NewRunner maps a region of spec.Region bytes and builds the allocator over it.
func NewRunner(spec Spec, opts ...Option) (*Runner, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	cfg, err := suballoc.Pot(mem.NewRange[byte](0, spec.Region), spec.Max, spec.Min)
	if err != nil {
		return nil, err
	}
	sa, err := suballoc.NewSegregatedSlab(cfg)
	if err != nil {
		return nil, err
	}
	reg, err := region.New(spec.Region)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		spec:   spec,
		alloc:  sa,
		region: reg,
		memory: reg.Bytes(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Allocator returns the allocator the runner drives.
func (r *Runner) Allocator() *suballoc.SegregatedSlab[byte] {
	return r.alloc
}

// Close releases the mapped region.
func (r *Runner) Close() error {
	r.memory = nil
	return r.region.Close()
}

// Run replays every step of the workload. It stops early when ctx is done and
// returns the partial report with ctx.Err().
func (r *Runner) Run(ctx context.Context) (Report, error) {
	steps := Generate(r.spec)
	rep := Report{Failures: map[string]int{}}

	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			rep.finish(r.alloc)
			return rep, err
		}
		if err := r.step(st, &rep); err != nil {
			rep.finish(r.alloc)
			return rep, errors.Wrapf(err, "step %d (%s)", i, st.Op)
		}
		if r.validate {
			if err := r.alloc.Validate(); err != nil {
				rep.finish(r.alloc)
				return rep, errors.Wrapf(err, "step %d (%s): invalid allocator state", i, st.Op)
			}
		}
		rep.Steps++
		rep.PeakLive = max(rep.PeakLive, len(r.live))
	}

	rep.finish(r.alloc)
	logger.L.Info("workload: done",
		"steps", rep.Steps, "live", rep.Stats.Allocations,
		"moves", rep.Moves, "failures", rep.failureCount())
	return rep, nil
}

func (r *Runner) step(st Step, rep *Report) error {
	switch st.Op {
	case OpAlloc:
		rep.Allocs++
		rng, err := r.alloc.Allocate(st.Size)
		if err != nil {
			rep.fail(err)
			return nil
		}
		h := handle{rng: rng, tag: r.tag()}
		r.fill(h.rng, 0, h.tag)
		r.live = append(r.live, h)
		return nil

	case OpFree:
		rep.Frees++
		if len(r.live) == 0 {
			rep.Skipped++
			return nil
		}
		pos := st.Target % len(r.live)
		h := r.live[pos]
		if err := r.verify(h); err != nil {
			return err
		}
		if err := r.alloc.Deallocate(h.rng); err != nil {
			return err
		}
		r.live = slices.Delete(r.live, pos, pos+1)
		return nil

	case OpRealloc:
		rep.Reallocs++
		if len(r.live) == 0 {
			rep.Skipped++
			return nil
		}
		pos := st.Target % len(r.live)
		h := r.live[pos]
		if err := r.verify(h); err != nil {
			return err
		}
		moved, err := r.alloc.Reallocate(h.rng, st.Size)
		if err != nil {
			rep.fail(err)
			return nil
		}
		if moved.Offset != h.rng.Offset {
			mem.CopyWithin(r.memory, h.rng, moved)
			rep.Moves++
		} else {
			rep.InPlace++
		}
		// Extend the pattern over a grown tail.
		r.fill(moved, h.rng.Size, h.tag)
		h.rng = moved
		r.live[pos] = h
		return r.verify(h)

	default:
		return errors.Newf("unknown op %q", st.Op)
	}
}

// tag returns the next non-zero fill byte.
func (r *Runner) tag() byte {
	r.nextTag++
	if r.nextTag == 0 {
		r.nextTag = 1
	}
	return r.nextTag
}

// fill writes tag over rng starting at unit from.
func (r *Runner) fill(rng mem.RangeOf[byte], from int, tag byte) {
	for i := rng.Offset + from; i < rng.End(); i++ {
		r.memory[i] = tag
	}
}

func (r *Runner) verify(h handle) error {
	for i := h.rng.Offset; i < h.rng.End(); i++ {
		if r.memory[i] != h.tag {
			return errors.Wrapf(ErrCorrupted, "%s: byte %d is %#x, want %#x", h.rng, i, r.memory[i], h.tag)
		}
	}
	return nil
}
