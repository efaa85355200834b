package workload

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/suballoc"
)

// Report summarizes a workload run.
type Report struct {
	Steps    int `json:"steps"`
	Allocs   int `json:"allocs"`
	Frees    int `json:"frees"`
	Reallocs int `json:"reallocs"`

	Moves    int `json:"moves"`     // reallocations that changed offset
	InPlace  int `json:"in_place"`  // reallocations that kept their slot
	Skipped  int `json:"skipped"`   // free or realloc with nothing live
	PeakLive int `json:"peak_live"` // most live allocations at once

	// Failures counts failed operations by error kind: invalid_size,
	// size_too_big, not_allocated or insufficient_space.
	Failures map[string]int `json:"failures"`

	Stats suballoc.Stats `json:"stats"`
}

func (rep *Report) fail(err error) {
	kind := failureKind(err)
	rep.Failures[kind]++
	if logger.Debug() {
		logger.L.Debug("workload: operation failed", "kind", kind, "error", err.Error())
	}
}

func (rep *Report) finish(sa *suballoc.SegregatedSlab[byte]) {
	rep.Stats = sa.Stats()
}

func (rep *Report) failureCount() int {
	n := 0
	for _, c := range rep.Failures {
		n += c
	}
	return n
}

// failureKind names the most specific sentinel err matches.
func failureKind(err error) string {
	switch {
	case errors.Is(err, suballoc.ErrInvalidSize):
		return "invalid_size"
	case errors.Is(err, suballoc.ErrSizeTooBig):
		return "size_too_big"
	case errors.Is(err, suballoc.ErrNotAllocated):
		return "not_allocated"
	case errors.Is(err, suballoc.ErrInsufficientSpace):
		return "insufficient_space"
	default:
		return "other"
	}
}
