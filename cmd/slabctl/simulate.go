package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/internal/workload"
)

var (
	simPreset     string
	simLayout     layout
	simSeed       int64
	simOps        int
	simMaxRequest int
	simValidate   bool
	simDump       bool
)

func init() {
	rootCmd.AddCommand(newSimulateCmd())
}

func newSimulateCmd() *cobra.Command {
	def := workload.Default()
	cmd := &cobra.Command{
		Use:   "simulate [workload.yaml]",
		Short: "Replay an allocation workload and report occupancy",
		Long: `The simulate command replays a workload against a segregated slab
allocator over an anonymous memory mapping. Every allocation is filled with a
pattern, moved payloads are copied and checked, and the final occupancy and
fragmentation are reported.

Without a workload file, a pseudo-random workload is generated from --seed.
Flags given explicitly override the file.

Example:
  slabctl simulate
  slabctl simulate --preset small --ops 10000 --validate
  slabctl simulate workload.yaml --json
  slabctl simulate --seed 7 --dump`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args)
		},
	}
	addLayoutFlags(cmd, &simPreset, &simLayout)
	cmd.Flags().Int64Var(&simSeed, "seed", def.Seed, "Seed for generated workloads")
	cmd.Flags().IntVar(&simOps, "ops", def.Ops, "Number of generated steps")
	cmd.Flags().IntVar(&simMaxRequest, "max-request", 0, "Largest generated request (default: --max)")
	cmd.Flags().BoolVar(&simValidate, "validate", false, "Check allocator invariants after every step")
	cmd.Flags().BoolVar(&simDump, "dump", false, "Print every slab after the run")
	return cmd
}

// simulationSpec builds the workload from the optional file, the preset and
// explicitly set flags, in increasing priority.
func simulationSpec(cmd *cobra.Command, args []string) (workload.Spec, error) {
	spec := workload.Default()
	if len(args) == 1 {
		printVerbose("Loading workload: %s\n", args[0])
		loaded, err := workload.Load(args[0])
		if err != nil {
			return workload.Spec{}, err
		}
		spec = loaded
	}

	if len(args) == 0 || cmd.Flags().Changed("preset") {
		l, err := lookupPreset(simPreset)
		if err != nil {
			return workload.Spec{}, err
		}
		spec.Region, spec.Max, spec.Min = l.Region, l.Max, l.Min
		spec.MaxRequest = l.Max
	}

	l := overrideLayout(cmd, layout{Region: spec.Region, Max: spec.Max, Min: spec.Min}, simLayout)
	spec.Region, spec.Max, spec.Min = l.Region, l.Max, l.Min
	if cmd.Flags().Changed("max") && !cmd.Flags().Changed("max-request") {
		spec.MaxRequest = l.Max
	}

	if cmd.Flags().Changed("seed") {
		spec.Seed = simSeed
	}
	if cmd.Flags().Changed("ops") {
		spec.Ops = simOps
	}
	if cmd.Flags().Changed("max-request") {
		spec.MaxRequest = simMaxRequest
	}
	return spec, spec.Validate()
}

func runSimulate(cmd *cobra.Command, args []string) error {
	spec, err := simulationSpec(cmd, args)
	if err != nil {
		return err
	}
	printVerbose("Workload: region=%d max=%d min=%d seed=%d ops=%d max_request=%d steps=%d\n",
		spec.Region, spec.Max, spec.Min, spec.Seed, spec.Ops, spec.MaxRequest, len(spec.Steps))

	runner, err := workload.NewRunner(spec, workload.WithValidation(simValidate))
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	rep, runErr := runner.Run(ctx)

	if jsonOut {
		if err := printJSON(rep); err != nil {
			return err
		}
	} else {
		printReport(spec, runner.Allocator().Classes(), rep)
	}
	if simDump && !quiet {
		printInfo("\nSlabs:\n")
		if err := runner.Allocator().Dump(os.Stdout); err != nil {
			return err
		}
	}
	return runErr
}

func printReport(spec workload.Spec, classes []int, rep workload.Report) {
	st := rep.Stats

	classNames := make([]string, len(classes))
	for i, c := range classes {
		classNames[i] = numbers.Sprintf("%d", c)
	}

	printInfo("Region:        %d bytes, slab %d, classes %s\n", spec.Region, spec.Max, strings.Join(classNames, " "))
	printInfo("Steps:         %d (alloc %d, free %d, realloc %d)\n", rep.Steps, rep.Allocs, rep.Frees, rep.Reallocs)
	printInfo("Reallocations: %d moved, %d in place, %d skipped\n", rep.Moves, rep.InPlace, rep.Skipped)
	printInfo("Peak live:     %d\n", rep.PeakLive)

	if len(rep.Failures) == 0 {
		printInfo("Failures:      none\n")
	} else {
		kinds := make([]string, 0, len(rep.Failures))
		for kind := range rep.Failures {
			kinds = append(kinds, kind)
		}
		slices.Sort(kinds)
		parts := make([]string, len(kinds))
		for i, kind := range kinds {
			parts[i] = numbers.Sprintf("%s %d", kind, rep.Failures[kind])
		}
		printInfo("Failures:      %s\n", strings.Join(parts, ", "))
	}

	printInfo("\nSlabs:         %d (empty %d, partial %d, full %d, never assigned %d)\n",
		st.Slabs, st.Empty, st.Partial, st.Full, st.Unassigned)
	printInfo("Live:          %d allocations, %d requested / %d reserved bytes\n",
		st.Allocations, st.Requested, st.Reserved)
	printInfo("Fragmentation: %d bytes (%.1f%%)\n", st.Fragmentation(), 100*st.FragmentationRatio())

	printInfo("\n%10s %8s %10s %10s\n", "CLASS", "SLABS", "SLOTS", "USED")
	for _, c := range st.Classes {
		if c.Slabs == 0 {
			continue
		}
		printInfo("%10d %8d %10d %10d\n", c.Class, c.Slabs, c.Slots, c.UsedSlots)
	}
}
